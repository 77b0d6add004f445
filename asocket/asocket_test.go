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

package asocket_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ned0000/jiufeng-go/asocket"
	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/rawsocket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func newPair() (*rawsocket.Socket, *rawsocket.Socket, func()) {
	sockPath := filepath.Join(os.TempDir(), "jiufeng-asocket-test.sock")
	_ = os.Remove(sockPath)

	ln, err := rawsocket.Listen(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath), 0)
	Expect(err).ToNot(HaveOccurred())

	serverCh := make(chan *rawsocket.Socket, 1)
	go func() {
		s, err := ln.Accept()
		Expect(err).ToNot(HaveOccurred())
		serverCh <- s
	}()

	cli, err := rawsocket.Connect(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath))
	Expect(err).ToNot(HaveOccurred())

	srv := <-serverCh
	return srv, cli, func() {
		_ = ln.Close()
		_ = os.Remove(sockPath)
	}
}

var _ = Describe("Asocket", func() {
	It("delivers the remaining unconsumed bytes at position 0 on the next event", func() {
		srv, cli, cleanup := newPair()
		defer cleanup()
		defer cli.Close()

		a, err := asocket.New(srv, false, nil)
		Expect(err).ToNot(HaveOccurred())
		defer a.Close()

		var delivered [][]byte
		a.OnData = func(buf []byte, begin *int, end int, user interface{}, pause *bool) {
			cp := append([]byte(nil), buf[*begin:end]...)
			delivered = append(delivered, cp)
			if len(delivered) == 1 {
				*begin += 4 // consume only "0123" out of "0123456789"
			} else {
				*begin = end // consume everything on the second delivery
			}
		}

		_, err = cli.Send([]byte("0123456789"))
		Expect(err).ToNot(HaveOccurred())
		time.Sleep(20 * time.Millisecond)

		read, write, errs := chain.NewFDSet(), chain.NewFDSet(), chain.NewFDSet()
		blockMS := chain.MaxBlockMS
		a.PreSelect(read, write, errs, &blockMS)
		a.PostSelect(1, read, write, errs)

		Expect(delivered).To(HaveLen(1))
		Expect(string(delivered[0])).To(Equal("0123456789"))

		_, err = cli.Send([]byte("ABC"))
		Expect(err).ToNot(HaveOccurred())
		time.Sleep(20 * time.Millisecond)

		read2, write2, errs2 := chain.NewFDSet(), chain.NewFDSet(), chain.NewFDSet()
		a.PreSelect(read2, write2, errs2, &blockMS)
		a.PostSelect(1, read2, write2, errs2)

		Expect(delivered).To(HaveLen(2))
		Expect(string(delivered[1])).To(Equal("456789ABC"))
	})

	It("stops delivering OnData while paused even if bytes are buffered", func() {
		srv, cli, cleanup := newPair()
		defer cleanup()
		defer cli.Close()

		a, err := asocket.New(srv, false, nil)
		Expect(err).ToNot(HaveOccurred())
		defer a.Close()

		calls := 0
		a.OnData = func(buf []byte, begin *int, end int, user interface{}, pause *bool) {
			calls++
			*begin = end
		}
		a.Pause()

		_, err = cli.Send([]byte("hello"))
		Expect(err).ToNot(HaveOccurred())
		time.Sleep(20 * time.Millisecond)

		read, write, errs := chain.NewFDSet(), chain.NewFDSet(), chain.NewFDSet()
		blockMS := chain.MaxBlockMS
		a.PreSelect(read, write, errs, &blockMS)
		a.PostSelect(1, read, write, errs)
		Expect(calls).To(Equal(0)) // still paused: PostSelect must not deliver

		a.Resume()
		read2, write2, errs2 := chain.NewFDSet(), chain.NewFDSet(), chain.NewFDSet()
		a.PreSelect(read2, write2, errs2, &blockMS)
		a.PostSelect(1, read2, write2, errs2)
		Expect(calls).To(Equal(1))
	})

	It("completes a queued send and fires OnSendOK", func() {
		srv, cli, cleanup := newPair()
		defer cleanup()
		defer cli.Close()

		a, err := asocket.New(srv, false, nil)
		Expect(err).ToNot(HaveOccurred())
		defer a.Close()

		sent := false
		a.OnSendOK = func(user interface{}) { sent = true }
		a.Send([]byte("payload"), asocket.UserCopyable)

		read, write, errs := chain.NewFDSet(), chain.NewFDSet(), chain.NewFDSet()
		blockMS := chain.MaxBlockMS
		a.PreSelect(read, write, errs, &blockMS)
		a.PostSelect(1, read, write, errs)

		Expect(sent).To(BeTrue())

		buf := make([]byte, 7)
		Expect(cli.RecvN(buf)).To(Succeed())
		Expect(string(buf)).To(Equal("payload"))
	})
})
