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

package assocket_test

import (
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/ned0000/jiufeng-go/asocket"
	"github.com/ned0000/jiufeng-go/assocket"
	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/rawsocket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func tick(a *assocket.Assocket) {
	read, write, errs := chain.NewFDSet(), chain.NewFDSet(), chain.NewFDSet()
	blockMS := chain.MaxBlockMS
	a.PreSelect(read, write, errs, &blockMS)
	a.PostSelect(1, read, write, errs)
}

var _ = Describe("Assocket", func() {
	It("accepts up to the pool size and defers the rest until a slot frees up", func() {
		sockPath := filepath.Join(os.TempDir(), "jiufeng-assocket-pool-test.sock")
		_ = os.Remove(sockPath)

		ln, err := rawsocket.Listen(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath), 0)
		Expect(err).ToNot(HaveOccurred())
		defer func() {
			_ = ln.Close()
			_ = os.Remove(sockPath)
		}()

		var connected []net.Addr
		h := assocket.Handler{
			OnConnect: func(a *asocket.Asocket, remote net.Addr) (interface{}, bool) {
				connected = append(connected, remote)
				return nil, true
			},
		}
		srv, err := assocket.New(ln, 2, nil, h)
		Expect(err).ToNot(HaveOccurred())
		defer srv.Close()

		c1, err := rawsocket.Connect(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath))
		Expect(err).ToNot(HaveOccurred())
		defer c1.Close()
		c2, err := rawsocket.Connect(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath))
		Expect(err).ToNot(HaveOccurred())
		defer c2.Close()
		c3, err := rawsocket.Connect(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath))
		Expect(err).ToNot(HaveOccurred())
		defer c3.Close()

		tick(srv) // accepts c1
		tick(srv) // accepts c2
		tick(srv) // pool full: c3 stays queued, not accepted

		Expect(srv.Len()).To(Equal(2))
		Expect(srv.Free()).To(Equal(0))
		Expect(connected).To(HaveLen(2))

		c1.Close()
		time.Sleep(20 * time.Millisecond)
		tick(srv) // observes c1's EOF, releases its slot

		Expect(srv.Len()).To(Equal(1))
		Expect(srv.Free()).To(Equal(1))

		tick(srv) // slot free again: c3 is finally accepted

		Expect(srv.Len()).To(Equal(2))
		Expect(connected).To(HaveLen(3))
	})

	It("declines a connection when OnConnect returns accept=false", func() {
		sockPath := filepath.Join(os.TempDir(), "jiufeng-assocket-decline-test.sock")
		_ = os.Remove(sockPath)

		ln, err := rawsocket.Listen(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath), 0)
		Expect(err).ToNot(HaveOccurred())
		defer func() {
			_ = ln.Close()
			_ = os.Remove(sockPath)
		}()

		h := assocket.Handler{
			OnConnect: func(a *asocket.Asocket, remote net.Addr) (interface{}, bool) {
				return nil, false
			},
		}
		srv, err := assocket.New(ln, 2, nil, h)
		Expect(err).ToNot(HaveOccurred())
		defer srv.Close()

		cli, err := rawsocket.Connect(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath))
		Expect(err).ToNot(HaveOccurred())
		defer cli.Close()

		tick(srv)

		Expect(srv.Len()).To(Equal(0))
	})
})
