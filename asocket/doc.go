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

// Package asocket implements the async socket: a chain.Object owning one
// non-blocking socket, a growable receive buffer, and a pending-send queue.
//
// Reads deliver bytes to an OnData callback as (buffer, &begin, end); the
// callback advances begin by however much it consumed, and unconsumed bytes
// remain for the next readable event. Writes flush the pending-send queue
// head-first and report completion via OnSendOK. An outstanding
// non-blocking connect is reported via OnConnect; socket errors via
// OnDisconnect.
//
// Like every other object a chain.Chain drives, an Asocket is thread-hostile
// outside the chain's own goroutine: Send, Pause, and Resume must only be
// called from there (or through a properly-synchronized façade such as
// package xfer).
package asocket
