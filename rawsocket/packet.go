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

	"golang.org/x/net/ipv4"
	"golang.org/x/sys/unix"

	"github.com/ned0000/jiufeng-go/jferr"
)

// PacketSocket wraps a UDP endpoint for sendto/recvfrom, multicast join and
// broadcast enable.
type PacketSocket struct {
	conn *net.UDPConn
	p4   *ipv4.PacketConn
}

// ListenPacket binds a UDP socket on addr (IP may be unspecified to bind
// all interfaces).
func ListenPacket(addr Addr) (*PacketSocket, error) {
	udp, err := net.ListenUDP(addr.Network.String(), &net.UDPAddr{IP: addr.IP, Port: addr.Port})
	if err != nil {
		return nil, jferr.New(jferr.FailCreateSocket, err)
	}
	return &PacketSocket{conn: udp, p4: ipv4.NewPacketConn(udp)}, nil
}

// SendTo sends b to the given peer address.
func (p *PacketSocket) SendTo(b []byte, to Addr) (int, error) {
	n, err := p.conn.WriteToUDP(b, &net.UDPAddr{IP: to.IP, Port: to.Port})
	if err != nil {
		return n, jferr.New(jferr.FailSendData, err)
	}
	return n, nil
}

// RecvFrom reads the next datagram into b, returning the sender's address.
func (p *PacketSocket) RecvFrom(b []byte) (int, Addr, error) {
	n, src, err := p.conn.ReadFromUDP(b)
	if err != nil {
		return n, Addr{}, jferr.New(jferr.FailRecvData, err)
	}
	return n, Addr{Network: NetworkUDP, IP: src.IP, Port: src.Port}, nil
}

// JoinMulticast joins the multicast group on iface (nil selects the default
// interface).
func (p *PacketSocket) JoinMulticast(group net.IP, iface *net.Interface) error {
	if err := p.p4.JoinGroup(iface, &net.UDPAddr{IP: group}); err != nil {
		return jferr.New(jferr.FailCreateSocket, err)
	}
	return nil
}

// SetBroadcast enables or disables SO_BROADCAST on the underlying socket.
func (p *PacketSocket) SetBroadcast(enable bool) error {
	rc, err := p.conn.SyscallConn()
	if err != nil {
		return jferr.New(jferr.InvalidParam, err)
	}

	v := 0
	if enable {
		v = 1
	}

	var opErr error
	err = rc.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), syscall.SOL_SOCKET, unix.SO_BROADCAST, v)
	})
	if err != nil {
		return jferr.New(jferr.InvalidParam, err)
	}
	if opErr != nil {
		return jferr.New(jferr.InvalidParam, opErr)
	}
	return nil
}

// Close releases the socket.
func (p *PacketSocket) Close() error { return p.conn.Close() }
