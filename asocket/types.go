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

package asocket

// Ownership tags a buffer passed to Send, controlling who may touch it
// afterward and when it is safe to reuse.
type Ownership uint8

const (
	// OwnedByAsocket transfers the buffer to the asocket; the caller must
	// not touch it again.
	OwnedByAsocket Ownership = iota
	// UserStatic borrows the buffer for the duration of the send; the
	// caller must not mutate it until OnSendOK fires for it.
	UserStatic
	// UserCopyable is copied immediately; the caller may reuse the buffer
	// as soon as Send returns.
	UserCopyable
)

// State is an asocket's lifecycle stage.
type State uint8

const (
	StateFree State = iota
	StateConnecting
	StateConnected
	StateDraining
)

// OnDataFunc delivers newly-received bytes. begin/end bound the unconsumed
// region of buf; the callback advances *begin by however many bytes it
// consumed. Setting *pause stops further reads until Resume is called.
type OnDataFunc func(buf []byte, begin *int, end int, user interface{}, pause *bool)

// OnConnectFunc reports the outcome of an outstanding non-blocking connect.
type OnConnectFunc func(user interface{}, err error)

// OnDisconnectFunc reports a socket error or peer close.
type OnDisconnectFunc func(user interface{}, err error)

// OnSendOKFunc reports that one queued Send has been fully flushed.
type OnSendOKFunc func(user interface{})

type pendingSend struct {
	buf       []byte
	ownership Ownership
	written   int
}
