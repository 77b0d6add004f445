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

package assocket

import (
	"net"
	"sync"

	"github.com/ned0000/jiufeng-go/asocket"
	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/rawsocket"
)

// Handler bundles the callbacks an Assocket forwards per accepted
// connection. OnConnect returns the opaque user value that is threaded
// through every subsequent callback for that connection; returning accept
// false drops the connection immediately after accept.
type Handler struct {
	OnConnect    func(a *asocket.Asocket, remote net.Addr) (user interface{}, accept bool)
	OnData       asocket.OnDataFunc
	OnDisconnect func(user interface{}, err error)
	OnSendOK     asocket.OnSendOKFunc
}

type slot struct {
	as     *asocket.Asocket
	active bool
}

// Assocket is a chain.Object: one listening socket plus a fixed-size slab
// of client asockets.
type Assocket struct {
	mu    sync.Mutex
	ln    *rawsocket.Listener
	lnFd  int
	wake  func()
	h     Handler
	slots []*slot
}

// New wraps ln with a pool of poolSize client slots. wake, typically a
// chain.Chain's Wakeup, lets accepted asockets interrupt a blocked select.
func New(ln *rawsocket.Listener, poolSize int, wake func(), h Handler) (*Assocket, error) {
	fd, err := ln.Fd()
	if err != nil {
		return nil, err
	}

	slots := make([]*slot, poolSize)
	for i := range slots {
		slots[i] = &slot{}
	}

	return &Assocket{
		ln:    ln,
		lnFd:  fd,
		wake:  wake,
		h:     h,
		slots: slots,
	}, nil
}

// Len returns the number of client slots currently occupied.
func (s *Assocket) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countLocked()
}

// Free returns the number of client slots currently unoccupied.
func (s *Assocket) Free() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots) - s.countLocked()
}

func (s *Assocket) countLocked() int {
	n := 0
	for _, sl := range s.slots {
		if sl.active {
			n++
		}
	}
	return n
}

func (s *Assocket) freeSlotLocked() *slot {
	for _, sl := range s.slots {
		if !sl.active {
			return sl
		}
	}
	return nil
}

func (s *Assocket) activeSlotsLocked() []*slot {
	out := make([]*slot, 0, len(s.slots))
	for _, sl := range s.slots {
		if sl.active {
			out = append(out, sl)
		}
	}
	return out
}

// PreSelect advertises listener read-interest only while a slot is free,
// then delegates to every active connection's own PreSelect.
func (s *Assocket) PreSelect(read, write, errs *chain.FDSet, blockMS *int) {
	s.mu.Lock()
	hasFree := s.freeSlotLocked() != nil
	active := s.activeSlotsLocked()
	s.mu.Unlock()

	if hasFree {
		read.Set(s.lnFd)
	}
	for _, sl := range active {
		sl.as.PreSelect(read, write, errs, blockMS)
	}
}

// PostSelect accepts one pending connection if the listener is ready, then
// delegates to every active connection's own PostSelect.
func (s *Assocket) PostSelect(nReady int, read, write, errs *chain.FDSet) {
	if read.IsSet(s.lnFd) {
		s.acceptOne()
	}

	s.mu.Lock()
	active := s.activeSlotsLocked()
	s.mu.Unlock()

	for _, sl := range active {
		sl.as.PostSelect(nReady, read, write, errs)
	}
}

func (s *Assocket) acceptOne() {
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}

	s.mu.Lock()
	sl := s.freeSlotLocked()
	s.mu.Unlock()
	if sl == nil {
		// pool filled in the window between PreSelect and Accept.
		_ = conn.Close()
		return
	}

	a, err := asocket.New(conn, false, s.wake)
	if err != nil {
		_ = conn.Close()
		return
	}

	var (
		user   interface{}
		accept = true
	)
	if s.h.OnConnect != nil {
		user, accept = s.h.OnConnect(a, conn.RemoteAddr())
	}
	if !accept {
		_ = a.Close()
		return
	}
	a.SetUser(user)
	a.OnData = s.h.OnData
	a.OnSendOK = s.h.OnSendOK
	a.OnDisconnect = func(u interface{}, discErr error) {
		if s.h.OnDisconnect != nil {
			s.h.OnDisconnect(u, discErr)
		}
		s.release(sl)
	}

	s.mu.Lock()
	sl.as = a
	sl.active = true
	s.mu.Unlock()
}

func (s *Assocket) release(sl *slot) {
	s.mu.Lock()
	sl.as = nil
	sl.active = false
	s.mu.Unlock()
	if s.wake != nil {
		s.wake()
	}
}

// Close releases the listener and every active connection.
func (s *Assocket) Close() error {
	s.mu.Lock()
	active := s.activeSlotsLocked()
	s.mu.Unlock()
	for _, sl := range active {
		_ = sl.as.Close()
	}
	return s.ln.Close()
}
