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
	"sync"

	"github.com/ned0000/jiufeng-go/acsocket"
	"github.com/ned0000/jiufeng-go/asocket"
	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/chain/utimer"
	"github.com/ned0000/jiufeng-go/hsm"
	"github.com/ned0000/jiufeng-go/jferr"
	"github.com/ned0000/jiufeng-go/messaging"
	"github.com/ned0000/jiufeng-go/rawsocket"
)

// States and events of the xferpool HSM (§4.I's table, reproduced exactly).
const (
	StateInitial hsm.StateID = iota
	StateConnecting
	StateOperative
	StateIdle
)

const (
	EventSendData hsm.EventID = iota
	EventConnected
	EventDataSent
	EventDisconnected
)

const (
	idleTimeoutMS = 300_000
	freeTimeoutMS = 300_000
)

// Pool is one xferpool: the connection lifecycle for a single destination
// endpoint, modeled as an hsm.HSM and driven by one acsocket slot plus one
// utimer. It is a chain.Object.
type Pool struct {
	mu sync.Mutex

	addr  rawsocket.Addr
	ac    *acsocket.Acsocket
	timer *utimer.Timer
	h     *hsm.HSM

	asock   *asocket.Asocket
	pending *messaging.Message
	backoff int

	idleToken, freeToken *int

	// OnMessageSent is invoked once the in-flight message has been fully
	// flushed to the peer. It returns the next message to bind (or nil),
	// which the pool stages before evaluating the has-pending guard.
	OnMessageSent func(sent *messaging.Message) *messaging.Message
	// OnPoolIdle is invoked if the pool sits in INITIAL with nothing
	// pending for freeTimeoutMS; the owner may discard the pool.
	OnPoolIdle func()
	// OnData forwards bytes received over the destination connection
	// (e.g. a response stream), if the protocol expects any.
	OnData asocket.OnDataFunc
}

// New builds a Pool for addr. wake, typically a chain.Chain's Wakeup, lets
// the pool's connection and timer activity interrupt a blocked select.
func New(addr rawsocket.Addr, wake func()) *Pool {
	p := &Pool{
		addr:      addr,
		timer:     utimer.New(wake),
		idleToken: new(int),
		freeToken: new(int),
	}
	p.ac = acsocket.New(2, wake, acsocket.Handler{
		OnConnect:    p.handleConnectResult,
		OnDisconnect: p.handleDisconnect,
		OnData:       p.handleData,
	})
	p.h = hsm.New(table(), StateInitial)
	p.h.AddStateCallback(StateIdle, p.enterIdle, p.exitIdle)
	p.h.AddStateCallback(StateInitial, p.enterInitial, p.exitInitial)
	return p
}

func table() hsm.Table {
	return hsm.Table{
		{Current: StateInitial, Event: EventSendData, Action: startConnectAction, Next: StateConnecting},
		{Current: StateConnecting, Event: EventConnected, Action: sendAction, Next: StateOperative},
		{Current: StateOperative, Event: EventDataSent, Guard: hasPendingGuard, Action: sendAction, Next: StateOperative},
		{Current: StateOperative, Event: EventDataSent, Guard: noPendingGuard, Next: StateIdle},
		{Current: StateOperative, Event: EventDisconnected, Action: clearAsocketAction, Next: StateInitial},
		{Current: StateIdle, Event: EventDisconnected, Action: clearAsocketAction, Next: StateInitial},
		{Current: StateIdle, Event: EventSendData, Guard: hasPendingGuard, Action: sendAction, Next: StateOperative},
	}
}

func poolOf(data interface{}) *Pool { return data.(*Pool) }

func startConnectAction(data interface{}) { poolOf(data).attemptConnect() }
func sendAction(data interface{})         { poolOf(data).sendPending() }
func clearAsocketAction(data interface{}) {
	p := poolOf(data)
	p.mu.Lock()
	p.asock = nil
	p.pending = nil
	p.mu.Unlock()
}

func hasPendingGuard(data interface{}) bool {
	p := poolOf(data)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

func noPendingGuard(data interface{}) bool { return !hasPendingGuard(data) }

// SendMsg binds m as the pool's in-flight message and posts SEND-DATA. It
// fails with PreviousMsgNotSent if a message is already bound.
func (p *Pool) SendMsg(m *messaging.Message) error {
	p.mu.Lock()
	if p.pending != nil {
		p.mu.Unlock()
		return jferr.New(jferr.PreviousMsgNotSent, nil)
	}
	p.pending = m
	p.mu.Unlock()

	p.h.Process(EventSendData, p)
	return nil
}

// Pending reports whether a message is currently bound, for the owning
// xfer's pre_select check.
func (p *Pool) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}

// Snapshot is a read-only view of the pool's HSM state and backoff
// counter, for tests and diagnostics; no metric is exported from it.
type Snapshot struct {
	State   hsm.StateID
	Backoff int
}

func (p *Pool) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{State: p.h.CurrentState(), Backoff: p.backoff}
}

func (p *Pool) attemptConnect() {
	err := p.ac.ConnectTo(p.addr, p)
	if err != nil {
		p.scheduleRetry()
	}
}

func (p *Pool) scheduleRetry() {
	p.mu.Lock()
	delayS := 1 << p.backoff
	p.backoff++
	if p.backoff > 4 {
		p.backoff = 0
	}
	p.mu.Unlock()

	p.timer.Add(p, int64(delayS)*1000, func(interface{}) { p.attemptConnect() }, nil)
}

func (p *Pool) handleConnectResult(a *asocket.Asocket, user interface{}, err error) {
	if err != nil {
		p.scheduleRetry()
		return
	}

	p.mu.Lock()
	p.asock = a
	p.backoff = 0
	p.mu.Unlock()

	a.OnData = p.handleData
	a.OnSendOK = func(interface{}) { p.handleSendOK() }

	// Deferred rather than called directly: a local connect can complete
	// synchronously inside ConnectTo, which would otherwise reenter
	// Process while the SEND-DATA transition that triggered it is still
	// being applied (topCurrent not yet moved to CONNECTING).
	p.timer.Add(p, 0, func(interface{}) { p.h.Process(EventConnected, p) }, nil)
}

func (p *Pool) handleDisconnect(user interface{}, err error) {
	p.h.Process(EventDisconnected, p)
}

func (p *Pool) handleData(buf []byte, begin *int, end int, user interface{}, pause *bool) {
	if p.OnData != nil {
		p.OnData(buf, begin, end, user, pause)
		return
	}
	*begin = end
}

func (p *Pool) sendPending() {
	p.mu.Lock()
	a := p.asock
	m := p.pending
	p.mu.Unlock()
	if a == nil || m == nil {
		return
	}
	a.Send(m.Bytes(), asocket.UserCopyable)
}

func (p *Pool) handleSendOK() {
	p.mu.Lock()
	sent := p.pending
	p.mu.Unlock()

	var next *messaging.Message
	if p.OnMessageSent != nil {
		next = p.OnMessageSent(sent)
	}

	p.mu.Lock()
	p.pending = next
	p.mu.Unlock()

	p.h.Process(EventDataSent, p)
}

func (p *Pool) enterIdle(data interface{}) {
	p.timer.Add(p.idleToken, idleTimeoutMS, func(interface{}) {
		p.mu.Lock()
		a := p.asock
		p.mu.Unlock()
		if a != nil {
			_ = a.Close()
		}
	}, nil)
}

func (p *Pool) exitIdle(data interface{}) {
	p.timer.Remove(p.idleToken)
}

func (p *Pool) enterInitial(data interface{}) {
	p.timer.Add(p.freeToken, freeTimeoutMS, func(interface{}) {
		if !p.Pending() && p.OnPoolIdle != nil {
			p.OnPoolIdle()
		}
	}, nil)
}

func (p *Pool) exitInitial(data interface{}) {
	p.timer.Remove(p.freeToken)
}

// PreSelect delegates to the pool's acsocket and its own retry/idle timer.
func (p *Pool) PreSelect(read, write, errs *chain.FDSet, blockMS *int) {
	p.ac.PreSelect(read, write, errs, blockMS)
	p.timer.PreSelect(read, write, errs, blockMS)
}

// PostSelect delegates to the pool's acsocket and its own retry/idle timer.
func (p *Pool) PostSelect(nReady int, read, write, errs *chain.FDSet) {
	p.ac.PostSelect(nReady, read, write, errs)
	p.timer.PostSelect(nReady, read, write, errs)
}

// Close releases the pool's connection, if any.
func (p *Pool) Close() error {
	return p.ac.Close()
}
