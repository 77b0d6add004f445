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

package xferpool

import (
	"github.com/ned0000/jiufeng-go/hsm"
	"github.com/ned0000/jiufeng-go/messaging"
	"github.com/ned0000/jiufeng-go/rawsocket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Pool retry backoff (white-box)", func() {
	It("produces delays 1,2,4,8,16 seconds then resets on the sixth failure (property 8)", func() {
		p := New(rawsocket.UnixAddr(rawsocket.NetworkUnix, "/nonexistent/jiufeng-xferpool.sock"), nil)

		wantBackoffAfterCall := []int{1, 2, 3, 4, 0, 1}
		for _, want := range wantBackoffAfterCall {
			p.scheduleRetry()
			Expect(p.backoff).To(Equal(want))
		}
	})
})

var _ = Describe("Pool HSM scripted event sequence (white-box)", func() {
	It("follows the exact trajectory of scenario S6", func() {
		p := New(rawsocket.UnixAddr(rawsocket.NetworkUnix, "/nonexistent/jiufeng-xferpool.sock"), nil)

		expectState := func(want hsm.StateID) {
			Expect(p.h.CurrentState()).To(Equal(want))
		}

		// A has-pending flag the DATA-SENT guards below consult directly,
		// standing in for a real pending message without driving actual
		// socket I/O: this test exercises only the HSM's own transition
		// table against the exact scripted event order, not the transport.
		setPending := func(v bool) {
			p.mu.Lock()
			if v {
				p.pending = &messaging.Message{}
			} else {
				p.pending = nil
			}
			p.mu.Unlock()
		}

		expectState(StateInitial)

		setPending(true)
		p.h.Process(EventSendData, p)
		expectState(StateConnecting)

		p.h.Process(EventConnected, p)
		expectState(StateOperative)

		setPending(false)
		p.h.Process(EventDataSent, p)
		expectState(StateIdle)

		setPending(true)
		p.h.Process(EventSendData, p)
		expectState(StateOperative)

		p.h.Process(EventDisconnected, p)
		expectState(StateInitial)

		setPending(true)
		p.h.Process(EventSendData, p)
		expectState(StateConnecting)

		p.h.Process(EventConnected, p)
		expectState(StateOperative)

		// DATA-SENT while another message is already bound: has-pending
		// guard fires, the pool stays OPERATIVE to send it.
		p.h.Process(EventDataSent, p)
		expectState(StateOperative)

		setPending(false)
		p.h.Process(EventDataSent, p)
		expectState(StateIdle)
	})
})
