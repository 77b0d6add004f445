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

// CodeError classifies an Error the way the rest of this module reasons
// about failure: by kind, not by message.
type CodeError uint16

const (
	OutOfMemory CodeError = iota + 1
	InvalidParam
	NotInitialized
	AlreadyRunning

	IncompleteData
	InvalidData
	BufferTooSmall

	FailCreateProcess
	FailTerminateProcess
	FailWaitProcessTermination

	FailCreateSocket
	FailConnect
	FailSendData
	FailRecvData
	Timeout

	HSMStateNotFound
	PreviousMsgNotSent
	ReachMaxResources
)

var codeText = map[CodeError]string{
	OutOfMemory:                "out of memory",
	InvalidParam:               "invalid parameter",
	NotInitialized:             "not initialized",
	AlreadyRunning:             "already running",
	IncompleteData:             "incomplete data",
	InvalidData:                "invalid data",
	BufferTooSmall:             "buffer too small",
	FailCreateProcess:          "failed to create process",
	FailTerminateProcess:       "failed to terminate process",
	FailWaitProcessTermination: "failed waiting for process termination",
	FailCreateSocket:           "failed to create socket",
	FailConnect:                "failed to connect",
	FailSendData:               "failed to send data",
	FailRecvData:               "failed to receive data",
	Timeout:                    "operation timed out",
	HSMStateNotFound:           "hsm state not found",
	PreviousMsgNotSent:         "previous dispatcher message not sent",
	ReachMaxResources:          "reached max resources",
}

// String returns the human-readable label of the code, or "unknown error
// code" if c was not built by this package.
func (c CodeError) String() string {
	if s, ok := codeText[c]; ok {
		return s
	}
	return "unknown error code"
}
