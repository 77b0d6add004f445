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

import (
	"net"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/jferr"
	"github.com/ned0000/jiufeng-go/rawsocket"
)

const (
	initialBufSize  = 4096
	maxBufMultiplier = 16
)

// Asocket is a chain.Object wrapping one non-blocking connection.
type Asocket struct {
	mu    sync.Mutex
	sock  *rawsocket.Socket
	fd    int
	wake  func()
	state State

	paused bool
	noRead bool

	recvBuf    []byte
	begin, end int

	sendQueue []*pendingSend

	user interface{}

	OnData       OnDataFunc
	OnConnect    OnConnectFunc
	OnDisconnect OnDisconnectFunc
	OnSendOK     OnSendOKFunc
}

// New wraps sock (already connected, or mid non-blocking connect when
// connecting is true) as an Asocket. wake, typically a chain.Chain's
// Wakeup, is called whenever Resume or Send should make the reactor
// re-evaluate this socket's readiness sooner than its current wait.
func New(sock *rawsocket.Socket, connecting bool, wake func()) (*Asocket, error) {
	if err := sock.SetNonBlocking(true); err != nil {
		return nil, err
	}
	fd, err := sock.Fd()
	if err != nil {
		return nil, err
	}

	state := StateConnected
	if connecting {
		state = StateConnecting
	}

	return &Asocket{
		sock:    sock,
		fd:      fd,
		wake:    wake,
		state:   state,
		recvBuf: make([]byte, initialBufSize),
	}, nil
}

// SetUser attaches an opaque per-connection value delivered back through
// every callback.
func (a *Asocket) SetUser(user interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.user = user
}

// User returns the asocket's attached user value.
func (a *Asocket) User() interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

// State returns the asocket's current lifecycle stage.
func (a *Asocket) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// RemoteAddr returns the peer's network address.
func (a *Asocket) RemoteAddr() net.Addr { return a.sock.RemoteAddr() }

// Pause stops delivering OnData even if bytes are already buffered.
func (a *Asocket) Pause() {
	a.mu.Lock()
	a.paused = true
	a.mu.Unlock()
}

// Resume re-enables reading and delivery and wakes the chain. Bytes already
// held in the receive buffer are delivered together with the next readable
// event, not on their own.
func (a *Asocket) Resume() {
	a.mu.Lock()
	a.paused = false
	a.mu.Unlock()
	if a.wake != nil {
		a.wake()
	}
}

// Send enqueues buf for sending. OwnedByAsocket and UserStatic queue buf by
// reference; UserCopyable copies it immediately.
func (a *Asocket) Send(buf []byte, ownership Ownership) {
	b := buf
	if ownership == UserCopyable {
		b = append([]byte(nil), buf...)
	}

	a.mu.Lock()
	a.sendQueue = append(a.sendQueue, &pendingSend{buf: b, ownership: ownership})
	a.mu.Unlock()

	if a.wake != nil {
		a.wake()
	}
}

// Close releases the underlying socket.
func (a *Asocket) Close() error {
	return a.sock.Close()
}

// PreSelect registers the fd for read (unless paused, NO_READ, or free) and
// for write (when a connect is outstanding or sends are pending).
func (a *Asocket) PreSelect(read, write, errs *chain.FDSet, blockMS *int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateFree {
		return
	}
	if !a.paused && !a.noRead {
		read.Set(a.fd)
	}
	if a.state == StateConnecting || len(a.sendQueue) > 0 {
		write.Set(a.fd)
	}
	errs.Set(a.fd)
}

// PostSelect handles readiness in the order spec §4.F describes: error,
// then write (connect completion or send flush), then read.
func (a *Asocket) PostSelect(nReady int, read, write, errs *chain.FDSet) {
	a.mu.Lock()

	if a.state == StateFree {
		a.mu.Unlock()
		return
	}

	if errs.IsSet(a.fd) {
		errNo, _ := unix.GetsockoptInt(a.fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if errNo != 0 {
			a.state = StateDraining
			user := a.user
			a.mu.Unlock()
			a.fireDisconnect(user, jferr.New(jferr.FailRecvData, unix.Errno(errNo)))
			return
		}
	}

	if write.IsSet(a.fd) {
		if a.state == StateConnecting {
			a.handleConnectCompleteLocked()
		} else {
			a.flushSendsLocked()
		}
	}

	var (
		deliverData bool
		data        []byte
		endAt       int
		user        interface{}
	)
	if read.IsSet(a.fd) && a.state != StateFree {
		disc := a.readIntoBufferLocked()
		if disc != nil {
			user = a.user
			a.mu.Unlock()
			a.fireDisconnect(user, disc)
			return
		}
		if a.end > a.begin {
			deliverData = true
			data = a.recvBuf
			endAt = a.end
			user = a.user
		}
	}

	a.mu.Unlock()

	if deliverData {
		a.fireOnData(data, endAt, user)
	}
}

func (a *Asocket) handleConnectCompleteLocked() {
	errNo, _ := unix.GetsockoptInt(a.fd, unix.SOL_SOCKET, unix.SO_ERROR)
	user := a.user
	if errNo != 0 {
		a.state = StateDraining
		a.mu.Unlock()
		a.fireConnect(user, jferr.New(jferr.FailConnect, unix.Errno(errNo)))
		a.mu.Lock()
		return
	}
	a.state = StateConnected
	a.mu.Unlock()
	a.fireConnect(user, nil)
	a.mu.Lock()
}

func (a *Asocket) flushSendsLocked() {
	for len(a.sendQueue) > 0 {
		ps := a.sendQueue[0]
		n, err := unix.Write(a.fd, ps.buf[ps.written:])
		if n > 0 {
			ps.written += n
		}
		if err != nil {
			if err == unix.EAGAIN {
				return
			}
			a.state = StateDraining
			user := a.user
			a.mu.Unlock()
			a.fireDisconnect(user, jferr.New(jferr.FailSendData, err))
			a.mu.Lock()
			return
		}
		if ps.written >= len(ps.buf) {
			a.sendQueue = a.sendQueue[1:]
			user := a.user
			a.mu.Unlock()
			a.fireSendOK(user)
			a.mu.Lock()
			continue
		}
	}
}

// readIntoBufferLocked reads until EAGAIN or EOF, growing the buffer up to
// maxBufMultiplier times its initial size. Returns a non-nil error only for
// a hard disconnect (read error or EOF).
func (a *Asocket) readIntoBufferLocked() error {
	maxSize := initialBufSize * maxBufMultiplier

	for {
		if a.end == len(a.recvBuf) {
			if len(a.recvBuf) >= maxSize {
				// caller has not consumed enough to make room; stop
				// reading this pass, try again next time it's readable.
				return nil
			}
			grown := make([]byte, minInt(len(a.recvBuf)*2, maxSize))
			copy(grown, a.recvBuf[:a.end])
			a.recvBuf = grown
		}

		n, err := unix.Read(a.fd, a.recvBuf[a.end:])
		if n > 0 {
			a.end += n
		}
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			return jferr.New(jferr.FailRecvData, err)
		}
		if n == 0 {
			return jferr.New(jferr.FailRecvData, nil)
		}
	}
}

func (a *Asocket) fireOnData(buf []byte, end int, user interface{}) {
	if a.OnData == nil {
		return
	}

	a.mu.Lock()
	begin := a.begin
	a.mu.Unlock()

	pause := false
	a.OnData(buf, &begin, end, user, &pause)

	a.mu.Lock()
	a.begin = begin
	if a.begin >= a.end {
		a.begin, a.end = 0, 0
	} else if a.begin > 0 {
		copy(a.recvBuf, a.recvBuf[a.begin:a.end])
		a.end -= a.begin
		a.begin = 0
	}
	if pause {
		a.paused = true
	}
	a.mu.Unlock()
}

func (a *Asocket) fireConnect(user interface{}, err error) {
	if a.OnConnect != nil {
		a.OnConnect(user, err)
	}
}

func (a *Asocket) fireDisconnect(user interface{}, err error) {
	a.mu.Lock()
	a.state = StateFree
	a.mu.Unlock()
	if a.OnDisconnect != nil {
		a.OnDisconnect(user, err)
	}
}

func (a *Asocket) fireSendOK(user interface{}) {
	if a.OnSendOK != nil {
		a.OnSendOK(user)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
