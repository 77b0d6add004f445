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

package jflog

import (
	"os"
	"sync"

	"github.com/ned0000/jiufeng-go/jferr"
)

// sizeCappedFile is an io.WriteCloser over a single log file that rotates
// to <path>.1 (overwriting any previous one) once a write would push the
// file past maxBytes. maxBytes <= 0 disables the cap.
type sizeCappedFile struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	f        *os.File
	size     int64
}

func newSizeCappedFile(path string, maxBytes int64) (*sizeCappedFile, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, jferr.New(jferr.NotInitialized, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, jferr.New(jferr.NotInitialized, err)
	}
	return &sizeCappedFile{path: path, maxBytes: maxBytes, f: f, size: info.Size()}, nil
}

func (s *sizeCappedFile) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxBytes > 0 && s.size+int64(len(p)) > s.maxBytes {
		if err := s.rotateLocked(); err != nil {
			return 0, err
		}
	}

	n, err := s.f.Write(p)
	s.size += int64(n)
	if err != nil {
		return n, jferr.New(jferr.NotInitialized, err)
	}
	return n, nil
}

func (s *sizeCappedFile) rotateLocked() error {
	if err := s.f.Close(); err != nil {
		return jferr.New(jferr.NotInitialized, err)
	}
	_ = os.Rename(s.path, s.path+".1")

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return jferr.New(jferr.NotInitialized, err)
	}
	s.f = f
	s.size = 0
	return nil
}

func (s *sizeCappedFile) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
