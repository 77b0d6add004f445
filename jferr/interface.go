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

package jferr

import (
	"fmt"
	"runtime"
)

// Error extends the standard error with a CodeError classification and the
// call site where it was raised.
type Error interface {
	error

	// Code returns the classification of this error.
	Code() CodeError
	// Is reports whether target carries the same CodeError, so that
	// errors.Is(err, jferr.New(jferr.Timeout, nil)) works without caring
	// about the wrapped cause or call site.
	Is(target error) bool
	// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
	Unwrap() error
	// File and Line return the call site New captured.
	File() string
	Line() int
}

type jfError struct {
	code  CodeError
	cause error
	file  string
	line  int
}

// New builds an Error of the given code, optionally wrapping cause.
func New(code CodeError, cause error) Error {
	_, file, line, _ := runtime.Caller(1)
	return &jfError{code: code, cause: cause, file: file, line: line}
}

func (e *jfError) Code() CodeError { return e.code }
func (e *jfError) File() string    { return e.file }
func (e *jfError) Line() int       { return e.line }
func (e *jfError) Unwrap() error   { return e.cause }

func (e *jfError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.code.String(), e.cause.Error())
	}
	return e.code.String()
}

func (e *jfError) Is(target error) bool {
	o, ok := target.(*jfError)
	if !ok {
		return false
	}
	return o.code == e.code
}

// Is reports whether err is a jferr.Error carrying the given code. It is the
// common-case helper most callers reach for instead of a type assertion.
func Is(err error, code CodeError) bool {
	e, ok := err.(Error)
	if !ok {
		return false
	}
	return e.Code() == code
}
