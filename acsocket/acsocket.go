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

package acsocket

import (
	"sync"

	"github.com/ned0000/jiufeng-go/asocket"
	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/jferr"
	"github.com/ned0000/jiufeng-go/rawsocket"
)

// Handler bundles the callbacks an Acsocket forwards per outbound
// connection.
type Handler struct {
	OnConnect    func(a *asocket.Asocket, user interface{}, err error)
	OnData       asocket.OnDataFunc
	OnDisconnect func(user interface{}, err error)
	OnSendOK     asocket.OnSendOKFunc
}

type slot struct {
	as     *asocket.Asocket
	active bool
}

// Acsocket is a chain.Object: a fixed-size pool of outbound connections.
type Acsocket struct {
	mu    sync.Mutex
	wake  func()
	h     Handler
	slots []*slot
}

// New creates a pool of poolSize outbound connection slots.
func New(poolSize int, wake func(), h Handler) *Acsocket {
	slots := make([]*slot, poolSize)
	for i := range slots {
		slots[i] = &slot{}
	}
	return &Acsocket{wake: wake, h: h, slots: slots}
}

// Len returns the number of slots currently holding a connection attempt or
// established connection.
func (c *Acsocket) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.countLocked()
}

// Free returns the number of unoccupied slots.
func (c *Acsocket) Free() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots) - c.countLocked()
}

func (c *Acsocket) countLocked() int {
	n := 0
	for _, sl := range c.slots {
		if sl.active {
			n++
		}
	}
	return n
}

func (c *Acsocket) freeSlotLocked() *slot {
	for _, sl := range c.slots {
		if !sl.active {
			return sl
		}
	}
	return nil
}

func (c *Acsocket) activeSlotsLocked() []*slot {
	out := make([]*slot, 0, len(c.slots))
	for _, sl := range c.slots {
		if sl.active {
			out = append(out, sl)
		}
	}
	return out
}

// ConnectTo assigns a free slot and starts a non-blocking connect to addr.
// It returns ReachMaxResources immediately if every slot is occupied. A
// connect that completes at once fires Handler.OnConnect before ConnectTo
// returns; a connect that fails at once (socket() failing, or connect()
// failing with anything but EINPROGRESS) is returned as the error and the
// slot is freed. Only a connect left in progress reports its outcome,
// success or failure, asynchronously through Handler.OnConnect.
func (c *Acsocket) ConnectTo(addr rawsocket.Addr, user interface{}) error {
	c.mu.Lock()
	sl := c.freeSlotLocked()
	if sl == nil {
		c.mu.Unlock()
		return jferr.New(jferr.ReachMaxResources, nil)
	}
	sl.active = true
	c.mu.Unlock()

	sock, connected, err := rawsocket.ConnectNonBlocking(addr)
	if err != nil {
		c.mu.Lock()
		sl.active = false
		c.mu.Unlock()
		return err
	}

	a, err := asocket.New(sock, !connected, c.wake)
	if err != nil {
		_ = sock.Close()
		c.mu.Lock()
		sl.active = false
		c.mu.Unlock()
		return err
	}
	a.SetUser(user)
	a.OnData = c.h.OnData
	a.OnSendOK = c.h.OnSendOK
	a.OnConnect = func(u interface{}, connErr error) {
		if connErr != nil {
			_ = a.Close()
			c.release(sl)
		}
		if c.h.OnConnect != nil {
			c.h.OnConnect(a, u, connErr)
		}
	}
	a.OnDisconnect = func(u interface{}, discErr error) {
		if c.h.OnDisconnect != nil {
			c.h.OnDisconnect(u, discErr)
		}
		c.release(sl)
	}

	c.mu.Lock()
	sl.as = a
	c.mu.Unlock()

	if connected {
		a.OnConnect(user, nil)
	}
	return nil
}

func (c *Acsocket) release(sl *slot) {
	c.mu.Lock()
	sl.as = nil
	sl.active = false
	c.mu.Unlock()
	if c.wake != nil {
		c.wake()
	}
}

// PreSelect delegates to every occupied slot's own PreSelect.
func (c *Acsocket) PreSelect(read, write, errs *chain.FDSet, blockMS *int) {
	c.mu.Lock()
	active := c.activeSlotsLocked()
	c.mu.Unlock()
	for _, sl := range active {
		sl.as.PreSelect(read, write, errs, blockMS)
	}
}

// PostSelect delegates to every occupied slot's own PostSelect.
func (c *Acsocket) PostSelect(nReady int, read, write, errs *chain.FDSet) {
	c.mu.Lock()
	active := c.activeSlotsLocked()
	c.mu.Unlock()
	for _, sl := range active {
		sl.as.PostSelect(nReady, read, write, errs)
	}
}

// Close releases every occupied connection.
func (c *Acsocket) Close() error {
	c.mu.Lock()
	active := c.activeSlotsLocked()
	c.mu.Unlock()
	for _, sl := range active {
		_ = sl.as.Close()
	}
	return nil
}
