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

package xfer

import (
	"sync"

	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/jferr"
	"github.com/ned0000/jiufeng-go/messaging"
	"github.com/ned0000/jiufeng-go/rawsocket"
	"github.com/ned0000/jiufeng-go/xferpool"
)

// Xfer is a chain.Object: a mutex-guarded send queue feeding one xferpool.
type Xfer struct {
	mu       sync.Mutex
	queue    []*messaging.Message
	maxLen   int
	paused   bool
	wake     func()
	pool     *xferpool.Pool
}

// New builds an Xfer targeting addr. maxLen <= 0 means unbounded. wake,
// typically a chain.Chain's Wakeup, is invoked whenever Send transitions
// the queue from empty to non-empty, or Resume re-enables dispatch.
func New(addr rawsocket.Addr, maxLen int, wake func()) *Xfer {
	x := &Xfer{maxLen: maxLen, wake: wake}
	x.pool = xferpool.New(addr, wake)
	x.pool.OnMessageSent = x.onMessageSent
	return x
}

// Send enqueues m, waking the chain if the queue was empty. It is safe to
// call from any goroutine.
func (x *Xfer) Send(m *messaging.Message) error {
	x.mu.Lock()
	if x.maxLen > 0 && len(x.queue) >= x.maxLen {
		x.mu.Unlock()
		return jferr.New(jferr.ReachMaxResources, nil)
	}
	wasEmpty := len(x.queue) == 0
	x.queue = append(x.queue, m)
	x.mu.Unlock()

	if wasEmpty && x.wake != nil {
		x.wake()
	}
	return nil
}

// Pause stops new messages from being bound to the xferpool; messages
// already in flight are unaffected. Safe to call from any goroutine.
func (x *Xfer) Pause() {
	x.mu.Lock()
	x.paused = true
	x.mu.Unlock()
}

// Resume re-enables dispatch and wakes the chain. Safe to call from any
// goroutine.
func (x *Xfer) Resume() {
	x.mu.Lock()
	x.paused = false
	x.mu.Unlock()
	if x.wake != nil {
		x.wake()
	}
}

// Clear drains the queue, releasing each message's reference. A message
// already bound inside the xferpool is unaffected. Safe to call from any
// goroutine.
func (x *Xfer) Clear() {
	bound := x.pool.Pending()
	x.mu.Lock()
	drained := x.queue
	x.queue = nil
	if bound && len(drained) > 0 {
		// The bound message is always the queue head; keep it so
		// onMessageSent dequeues and releases it exactly once.
		x.queue = drained[:1:1]
		drained = drained[1:]
	}
	x.mu.Unlock()

	for _, m := range drained {
		m.Release()
	}
}

// Len reports the number of messages currently queued, including the head
// while it is bound inside the xferpool and not yet sent.
func (x *Xfer) Len() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return len(x.queue)
}

// Snapshot exposes the underlying xferpool's state, for tests and
// operational visibility.
func (x *Xfer) Snapshot() xferpool.Snapshot {
	return x.pool.Snapshot()
}

// onMessageSent is xferpool's OnMessageSent hook: it dequeues the
// just-completed message (releasing the xfer's reference to it) and stages
// the next queued message, if dispatch isn't paused, for the pool's
// has-pending guard to see.
func (x *Xfer) onMessageSent(sent *messaging.Message) *messaging.Message {
	x.mu.Lock()
	if len(x.queue) > 0 && x.queue[0] == sent {
		x.queue = x.queue[1:]
	}
	var next *messaging.Message
	if !x.paused && len(x.queue) > 0 {
		next = x.queue[0]
	}
	x.mu.Unlock()

	sent.Release()
	return next
}

// PreSelect binds the queue head to the xferpool if dispatch is live and
// nothing is already bound, then delegates to the pool's own PreSelect.
func (x *Xfer) PreSelect(read, write, errs *chain.FDSet, blockMS *int) {
	x.mu.Lock()
	var head *messaging.Message
	if !x.paused && len(x.queue) > 0 {
		head = x.queue[0]
	}
	x.mu.Unlock()

	if head != nil && !x.pool.Pending() {
		_ = x.pool.SendMsg(head)
	}

	x.pool.PreSelect(read, write, errs, blockMS)
}

// PostSelect delegates to the pool's own PostSelect.
func (x *Xfer) PostSelect(nReady int, read, write, errs *chain.FDSet) {
	x.pool.PostSelect(nReady, read, write, errs)
}

// Close releases the underlying xferpool's connection.
func (x *Xfer) Close() error {
	return x.pool.Close()
}
