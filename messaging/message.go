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

package messaging

import "sync/atomic"

// Message is a reference-counted dispatcher message: a contiguous payload
// whose first HeaderSize bytes are its Header. Create starts it at
// refcount 1; Retain and Release adjust it; once the count reaches zero
// nothing frees the payload explicitly, it is left to the garbage
// collector. Release below zero is a double-free and
// panics rather than silently corrupting the count.
type Message struct {
	refcount int32
	payload  []byte
}

// Create wraps payload (which must already carry an encoded Header in its
// first HeaderSize bytes) as a new Message with refcount 1.
func Create(payload []byte) *Message {
	return &Message{refcount: 1, payload: payload}
}

// Retain increments the reference count, e.g. when the xfer fans a
// message out to more than one destination.
func (m *Message) Retain() {
	atomic.AddInt32(&m.refcount, 1)
}

// Release decrements the reference count. It panics if the count would go
// negative, i.e. on a double-release.
func (m *Message) Release() {
	if atomic.AddInt32(&m.refcount, -1) < 0 {
		panic("messaging: Message released more times than retained")
	}
}

// RefCount returns the current reference count, for tests and diagnostics.
func (m *Message) RefCount() int32 {
	return atomic.LoadInt32(&m.refcount)
}

// Bytes returns the message's payload, header included.
func (m *Message) Bytes() []byte {
	return m.payload
}

// Header decodes the message's leading Header.
func (m *Message) Header() (Header, error) {
	return ReadHeader(m.payload)
}
