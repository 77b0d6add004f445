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
	"os"

	"github.com/ned0000/jiufeng-go/filemode"
	"github.com/ned0000/jiufeng-go/jferr"
)

// Listener wraps a stream listening socket. For Unix-domain listeners, mode
// is applied to the socket path's file permissions after bind.
type Listener struct {
	ln net.Listener
}

// Listen binds and listens on addr. mode is ignored for non-Unix networks;
// a zero mode leaves the path's default permissions untouched.
func Listen(addr Addr, mode filemode.Perm) (*Listener, error) {
	if addr.Network.IsUnix() {
		_ = os.Remove(addr.Path)
	}

	ln, err := net.Listen(addr.Network.String(), addr.String())
	if err != nil {
		return nil, jferr.New(jferr.FailCreateSocket, err)
	}

	if addr.Network.IsUnix() && mode != 0 {
		if err := os.Chmod(addr.Path, mode.FileMode()); err != nil {
			_ = ln.Close()
			return nil, jferr.New(jferr.FailCreateSocket, err)
		}
	}

	return &Listener{ln: ln}, nil
}

// Accept blocks for the next inbound connection.
func (l *Listener) Accept() (*Socket, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, jferr.New(jferr.FailCreateSocket, err)
	}
	return NewSocket(conn), nil
}

// Addr returns the listener's bound local address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Fd returns the underlying file descriptor, for callers (such as assocket)
// that register the listening socket directly with a chain's select loop.
func (l *Listener) Fd() (int, error) {
	sc, ok := l.ln.(syscallConner)
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

// Close stops accepting and releases the listening socket.
func (l *Listener) Close() error { return l.ln.Close() }
