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

// Package xferpool drives one destination endpoint's connection lifecycle:
// an acsocket for the actual outbound connection, a utimer for retry and
// idle timers, and an hsm.HSM whose four states (INITIAL, CONNECTING,
// OPERATIVE, IDLE) and four events (SEND-DATA, CONNECTED, DATA-SENT,
// DISCONNECTED) exactly mirror a destination's connect/send/idle/retry
// cycle. It is owned by exactly one xfer, which binds messages to it one
// at a time via SendMsg and learns of completion through OnMessageSent.
//
// Connect-failure retries never reach the HSM as events: per the
// pool-internal backoff policy, a failed connect simply re-attempts the
// connect directly from the retry timer, without leaving CONNECTING.
package xferpool
