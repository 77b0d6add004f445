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

package rawsocket

import (
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/ned0000/jiufeng-go/jferr"
)

// Socket wraps a connected stream (TCP or Unix) endpoint.
type Socket struct {
	conn net.Conn
}

// Connect dials addr and blocks until the connection succeeds or fails.
func Connect(addr Addr) (*Socket, error) {
	conn, err := net.Dial(addr.Network.String(), addr.String())
	if err != nil {
		return nil, jferr.New(jferr.FailConnect, err)
	}
	return &Socket{conn: conn}, nil
}

// ConnectTimeout dials addr, failing with a Timeout error if it does not
// complete within timeout.
func ConnectTimeout(addr Addr, timeout time.Duration) (*Socket, error) {
	conn, err := net.DialTimeout(addr.Network.String(), addr.String(), timeout)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, jferr.New(jferr.Timeout, err)
		}
		return nil, jferr.New(jferr.FailConnect, err)
	}
	return &Socket{conn: conn}, nil
}

// NewSocket wraps an already-established connection, e.g. one returned by
// Listener.Accept.
func NewSocket(conn net.Conn) *Socket {
	return &Socket{conn: conn}
}

// Send issues one write syscall; a short write is not an error.
func (s *Socket) Send(p []byte) (int, error) {
	n, err := s.conn.Write(p)
	if err != nil {
		return n, jferr.New(jferr.FailSendData, err)
	}
	return n, nil
}

// Recv issues one read syscall; a short read is not an error.
func (s *Socket) Recv(p []byte) (int, error) {
	n, err := s.conn.Read(p)
	if err != nil {
		return n, jferr.New(jferr.FailRecvData, err)
	}
	return n, nil
}

// SendN loops until every byte of p has been written.
func (s *Socket) SendN(p []byte) error {
	for written := 0; written < len(p); {
		n, err := s.conn.Write(p[written:])
		if err != nil {
			return jferr.New(jferr.FailSendData, err)
		}
		written += n
	}
	return nil
}

// RecvN loops until p is completely filled.
func (s *Socket) RecvN(p []byte) error {
	for read := 0; read < len(p); {
		n, err := s.conn.Read(p[read:])
		if err != nil {
			return jferr.New(jferr.FailRecvData, err)
		}
		read += n
	}
	return nil
}

// SendTimeout bounds Send to timeout, reporting a Timeout error if it
// elapses before the write completes.
func (s *Socket) SendTimeout(p []byte, timeout time.Duration) (int, error) {
	if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return 0, jferr.New(jferr.FailSendData, err)
	}
	defer s.conn.SetWriteDeadline(time.Time{})

	n, err := s.conn.Write(p)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return n, jferr.New(jferr.Timeout, err)
		}
		return n, jferr.New(jferr.FailSendData, err)
	}
	return n, nil
}

// RecvTimeout bounds Recv to timeout, reporting a Timeout error if it
// elapses before any data arrives.
func (s *Socket) RecvTimeout(p []byte, timeout time.Duration) (int, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, jferr.New(jferr.FailRecvData, err)
	}
	defer s.conn.SetReadDeadline(time.Time{})

	n, err := s.conn.Read(p)
	if err != nil {
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return n, jferr.New(jferr.Timeout, err)
		}
		return n, jferr.New(jferr.FailRecvData, err)
	}
	return n, nil
}

// SetNonBlocking toggles the underlying file descriptor's blocking mode
// directly, for callers (such as asocket) that drive I/O from a reactor
// instead of relying on Go's runtime netpoller deadlines.
func (s *Socket) SetNonBlocking(enable bool) error {
	sc, ok := s.conn.(syscallConner)
	if !ok {
		return jferr.New(jferr.InvalidParam, nil)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return jferr.New(jferr.InvalidParam, err)
	}

	var opErr error
	err = rc.Control(func(fd uintptr) {
		opErr = unix.SetNonblock(int(fd), enable)
	})
	if err != nil {
		return jferr.New(jferr.InvalidParam, err)
	}
	if opErr != nil {
		return jferr.New(jferr.InvalidParam, opErr)
	}
	return nil
}

// syscallConner is implemented by *net.TCPConn and *net.UnixConn.
type syscallConner interface {
	SyscallConn() (syscall.RawConn, error)
}

// Fd returns the underlying file descriptor, for callers (such as asocket)
// that register it directly with a chain's select loop instead of going
// through Go's runtime netpoller.
func (s *Socket) Fd() (int, error) {
	sc, ok := s.conn.(syscallConner)
	if !ok {
		return -1, jferr.New(jferr.InvalidParam, nil)
	}
	rc, err := sc.SyscallConn()
	if err != nil {
		return -1, jferr.New(jferr.InvalidParam, err)
	}

	var fd int
	err = rc.Control(func(f uintptr) {
		fd = int(f)
	})
	if err != nil {
		return -1, jferr.New(jferr.InvalidParam, err)
	}
	return fd, nil
}

// RemoteAddr returns the peer's network address in net.Addr form.
func (s *Socket) RemoteAddr() net.Addr { return s.conn.RemoteAddr() }

// LocalAddr returns the local endpoint's network address.
func (s *Socket) LocalAddr() net.Addr { return s.conn.LocalAddr() }

// Close closes the socket.
func (s *Socket) Close() error { return s.conn.Close() }
