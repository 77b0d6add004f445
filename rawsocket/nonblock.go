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

	"golang.org/x/sys/unix"

	"github.com/ned0000/jiufeng-go/jferr"
)

// ConnectNonBlocking starts a non-blocking connect to addr, for callers
// (acsocket) that drive completion through a reactor's write-ready event
// instead of blocking the calling goroutine. It returns connected=true if
// the connect completed immediately (the usual case for local Unix
// sockets); otherwise the caller must watch the returned Socket for
// writability and read SO_ERROR to learn the outcome.
func ConnectNonBlocking(addr Addr) (sock *Socket, connected bool, err error) {
	domain := unix.AF_INET
	typ := unix.SOCK_STREAM
	if addr.Network.IsUnix() {
		domain = unix.AF_UNIX
	}
	if addr.Network == NetworkUDP || addr.Network == NetworkUDP4 || addr.Network == NetworkUDP6 || addr.Network == NetworkUnixgram {
		typ = unix.SOCK_DGRAM
	}

	fd, sockErr := unix.Socket(domain, typ, 0)
	if sockErr != nil {
		return nil, false, jferr.New(jferr.FailCreateSocket, sockErr)
	}
	if sockErr := unix.SetNonblock(fd, true); sockErr != nil {
		_ = unix.Close(fd)
		return nil, false, jferr.New(jferr.FailCreateSocket, sockErr)
	}

	var sa unix.Sockaddr
	if addr.Network.IsUnix() {
		sa = &unix.SockaddrUnix{Name: addr.Path}
	} else {
		var ip4 [4]byte
		copy(ip4[:], addr.IP.To4())
		sa = &unix.SockaddrInet4{Port: addr.Port, Addr: ip4}
	}

	connErr := unix.Connect(fd, sa)
	switch connErr {
	case nil:
		connected = true
	case unix.EINPROGRESS:
		connected = false
	default:
		_ = unix.Close(fd)
		return nil, false, jferr.New(jferr.FailConnect, connErr)
	}

	f := os.NewFile(uintptr(fd), addr.String())
	conn, fileErr := net.FileConn(f)
	_ = f.Close() // FileConn dup'd the descriptor; release our copy
	if fileErr != nil {
		_ = unix.Close(fd)
		return nil, false, jferr.New(jferr.FailCreateSocket, fileErr)
	}

	return &Socket{conn: conn}, connected, nil
}
