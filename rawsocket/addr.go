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
	"strconv"
)

// Network is the protocol family a socket speaks, mirroring the teacher's
// network/protocol enum.
type Network uint8

const (
	NetworkTCP Network = iota
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkUnix
	NetworkUnixgram
)

func (n Network) String() string {
	switch n {
	case NetworkTCP:
		return "tcp"
	case NetworkTCP4:
		return "tcp4"
	case NetworkTCP6:
		return "tcp6"
	case NetworkUDP:
		return "udp"
	case NetworkUDP4:
		return "udp4"
	case NetworkUDP6:
		return "udp6"
	case NetworkUnix:
		return "unix"
	case NetworkUnixgram:
		return "unixgram"
	default:
		return "unknown"
	}
}

// IsUnix reports whether n addresses a filesystem path rather than an IP
// endpoint.
func (n Network) IsUnix() bool {
	return n == NetworkUnix || n == NetworkUnixgram
}

// Addr is jf_ipaddr_t: either an IP endpoint or a Unix-domain path, never
// both. Port is ignored when the network is a Unix family.
type Addr struct {
	Network Network
	IP      net.IP
	Port    int
	Path    string
}

// IPAddr builds an Addr for an IPv4/IPv6/TCP/UDP endpoint.
func IPAddr(network Network, ip net.IP, port int) Addr {
	return Addr{Network: network, IP: ip, Port: port}
}

// UnixAddr builds an Addr for a Unix-domain socket path.
func UnixAddr(network Network, path string) Addr {
	return Addr{Network: network, Path: path}
}

// String renders the address the way net.Dial/net.Listen expect it.
func (a Addr) String() string {
	if a.Network.IsUnix() {
		return a.Path
	}
	return net.JoinHostPort(a.IP.String(), strconv.Itoa(a.Port))
}
