/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package jfconfig

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/ned0000/jiufeng-go/jferr"
)

// Settings is a -s <setting-file> reader for one daemon: a viper instance
// plus optional fsnotify-driven change notification.
type Settings struct {
	mu       sync.RWMutex
	v        *viper.Viper
	onChange []func()
}

// Default daemon-wide settings keys, read via the typed getters below.
const (
	KeyForeground = "foreground"
	KeyLogLevel   = "log.level"
	KeyLogFile    = "log.file"
	KeyLogSize    = "log.size"
	KeyLogStdout  = "log.stdout"
)

// Load parses path (any format viper supports: yaml, json, toml, ...) and
// begins watching it for changes.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault(KeyForeground, false)
	v.SetDefault(KeyLogLevel, 3)
	v.SetDefault(KeyLogStdout, false)

	if err := v.ReadInConfig(); err != nil {
		return nil, jferr.New(jferr.NotInitialized, err)
	}

	s := &Settings{v: v}
	v.OnConfigChange(func(fsnotify.Event) {
		s.mu.RLock()
		hooks := append([]func(){}, s.onChange...)
		s.mu.RUnlock()
		for _, h := range hooks {
			h()
		}
	})
	v.WatchConfig()

	return s, nil
}

// OnChange registers f to run whenever the underlying settings file is
// rewritten. Safe to call from any goroutine.
func (s *Settings) OnChange(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, f)
}

func (s *Settings) GetString(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetString(key)
}

func (s *Settings) GetInt(key string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetInt(key)
}

func (s *Settings) GetInt64(key string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetInt64(key)
}

func (s *Settings) GetBool(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.v.GetBool(key)
}
