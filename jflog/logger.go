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
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps a *logrus.Logger with this repo's output/level surface.
// Embedding keeps every logrus.Logger method (WithField, Debugf, ...)
// available unchanged.
type Logger struct {
	*logrus.Logger
	rotating *sizeCappedFile
}

// New builds a Logger at lvl, writing to stdout by default.
func New(lvl Level) *Logger {
	l := logrus.New()
	l.SetLevel(lvl.toLogrus())
	l.SetOutput(os.Stdout)
	return &Logger{Logger: l}
}

// SetLevel updates the minimum level of message this Logger emits.
func (l *Logger) SetLevel(lvl Level) {
	l.Logger.SetLevel(lvl.toLogrus())
}

// SetOutputStdout directs output to the process's standard output.
func (l *Logger) SetOutputStdout() {
	l.closeRotating()
	l.Logger.SetOutput(os.Stdout)
}

// SetOutputTTY is SetOutputStdout with forced color, for the "-O"
// interactive-foreground CLI flag.
func (l *Logger) SetOutputTTY() {
	l.closeRotating()
	l.Logger.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	l.Logger.SetOutput(os.Stdout)
}

// SetOutputFile directs output to path, rotating to path+".1" once a
// write would exceed maxSizeBytes (the "-S <bytes>" CLI flag). maxSizeBytes
// <= 0 disables the cap.
func (l *Logger) SetOutputFile(path string, maxSizeBytes int64) error {
	f, err := newSizeCappedFile(path, maxSizeBytes)
	if err != nil {
		return err
	}
	l.closeRotating()
	l.rotating = f
	l.Logger.SetOutput(f)
	return nil
}

// SetOutput installs an arbitrary io.Writer, bypassing the size-capped
// rotation — for tests and embedding in larger pipelines.
func (l *Logger) SetOutput(w io.Writer) {
	l.closeRotating()
	l.Logger.SetOutput(w)
}

func (l *Logger) closeRotating() {
	if l.rotating != nil {
		_ = l.rotating.Close()
		l.rotating = nil
	}
}

// Close releases any open rotating file output.
func (l *Logger) Close() error {
	l.closeRotating()
	return nil
}
