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

package acsocket_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ned0000/jiufeng-go/acsocket"
	"github.com/ned0000/jiufeng-go/asocket"
	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/jferr"
	"github.com/ned0000/jiufeng-go/rawsocket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Acsocket", func() {
	It("connects, reports success, and frees the slot on disconnect", func() {
		sockPath := filepath.Join(os.TempDir(), "jiufeng-acsocket-test.sock")
		_ = os.Remove(sockPath)

		ln, err := rawsocket.Listen(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath), 0)
		Expect(err).ToNot(HaveOccurred())
		defer func() {
			_ = ln.Close()
			_ = os.Remove(sockPath)
		}()

		acceptedCh := make(chan *rawsocket.Socket, 1)
		go func() {
			s, acceptErr := ln.Accept()
			Expect(acceptErr).ToNot(HaveOccurred())
			acceptedCh <- s
		}()

		var connectErr error
		connected := false
		disconnected := false
		h := acsocket.Handler{
			OnConnect: func(a *asocket.Asocket, user interface{}, err error) {
				connected = true
				connectErr = err
			},
			OnDisconnect: func(user interface{}, err error) {
				disconnected = true
			},
		}

		c := acsocket.New(1, nil, h)
		Expect(c.ConnectTo(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath), "peer-1")).To(Succeed())

		Expect(connected).To(BeTrue())
		Expect(connectErr).ToNot(HaveOccurred())
		Expect(c.Len()).To(Equal(1))
		Expect(c.Free()).To(Equal(0))

		srv := <-acceptedCh
		Expect(srv.Close()).To(Succeed())
		time.Sleep(20 * time.Millisecond)

		read, write, errs := chain.NewFDSet(), chain.NewFDSet(), chain.NewFDSet()
		blockMS := chain.MaxBlockMS
		c.PreSelect(read, write, errs, &blockMS)
		c.PostSelect(1, read, write, errs)

		Expect(disconnected).To(BeTrue())
		Expect(c.Len()).To(Equal(0))
	})

	It("refuses ConnectTo once every slot is occupied", func() {
		sockPath := filepath.Join(os.TempDir(), "jiufeng-acsocket-full-test.sock")
		_ = os.Remove(sockPath)

		ln, err := rawsocket.Listen(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath), 0)
		Expect(err).ToNot(HaveOccurred())
		defer func() {
			_ = ln.Close()
			_ = os.Remove(sockPath)
		}()

		go func() { _, _ = ln.Accept() }()

		c := acsocket.New(1, nil, acsocket.Handler{})
		Expect(c.ConnectTo(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath), nil)).To(Succeed())

		err = c.ConnectTo(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath), nil)
		Expect(jferr.Is(err, jferr.ReachMaxResources)).To(BeTrue())
	})

	It("reports a connect failure when nothing is listening", func() {
		sockPath := filepath.Join(os.TempDir(), "jiufeng-acsocket-refused.sock")
		_ = os.Remove(sockPath)

		c := acsocket.New(1, nil, acsocket.Handler{})
		err := c.ConnectTo(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath), nil)
		Expect(err).To(HaveOccurred())
		Expect(c.Len()).To(Equal(0))
	})
})
