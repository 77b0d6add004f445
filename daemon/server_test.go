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

package daemon_test

import (
	"os"
	"path/filepath"
	"time"

	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/daemon"
	"github.com/ned0000/jiufeng-go/filemode"
	"github.com/ned0000/jiufeng-go/rawsocket"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const testMagic uint32 = 0x4A465453 // "JFTS"

func sendFrame(conn *rawsocket.Socket, magic uint32, msgID uint8, body []byte) error {
	buf := make([]byte, daemon.HeaderSize+len(body))
	if err := daemon.WriteHeader(buf, daemon.Header{MsgID: msgID, Seq: 1, Magic: magic, PayloadSize: uint32(len(body))}); err != nil {
		return err
	}
	copy(buf[daemon.HeaderSize:], body)
	return conn.SendN(buf)
}

func recvFrame(conn *rawsocket.Socket) (daemon.Header, []byte, error) {
	hbuf := make([]byte, daemon.HeaderSize)
	if err := conn.RecvN(hbuf); err != nil {
		return daemon.Header{}, nil, err
	}
	hdr, err := daemon.ReadHeader(hbuf)
	if err != nil {
		return daemon.Header{}, nil, err
	}
	body := make([]byte, hdr.PayloadSize)
	if hdr.PayloadSize > 0 {
		if err := conn.RecvN(body); err != nil {
			return daemon.Header{}, nil, err
		}
	}
	return hdr, body, nil
}

var _ = Describe("Server", func() {
	var (
		sockPath string
		chn      *chain.Chain
		srv      *daemon.Server
		tree     *daemon.ConfigTree
	)

	BeforeEach(func() {
		sockPath = filepath.Join(os.TempDir(), "jiufeng-daemon-server-test.sock")
		_ = os.Remove(sockPath)

		var err error
		chn, err = chain.New()
		Expect(err).ToNot(HaveOccurred())

		tree = daemon.NewConfigTree()
		srv, err = daemon.NewServer(
			rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath),
			testMagic, 4, filemode.Perm(0600), chn.Wakeup,
			daemon.NewConfigHandler(tree),
		)
		Expect(err).ToNot(HaveOccurred())
		chn.Append(srv)

		go func() { _ = chn.Run() }()
	})

	AfterEach(func() {
		chn.Stop()
		_ = srv.Close()
		_ = os.Remove(sockPath)
	})

	It("answers GET on a missing key with NOT_FOUND, then SET/GET round-trips the value (S4)", func() {
		conn, err := rawsocket.Connect(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath))
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		Expect(sendFrame(conn, testMagic, daemon.MsgConfigGet, daemon.EncodeGetRequest("a.b.c"))).To(Succeed())
		hdr, body, err := recvFrame(conn)
		Expect(err).ToNot(HaveOccurred())
		Expect(hdr.Result).To(Equal(daemon.ResultNotFound))
		Expect(body).To(BeEmpty())

		Expect(sendFrame(conn, testMagic, daemon.MsgConfigSet, daemon.EncodeSetRequest("a.b.c", "v"))).To(Succeed())
		hdr, _, err = recvFrame(conn)
		Expect(err).ToNot(HaveOccurred())
		Expect(hdr.Result).To(Equal(daemon.ResultOK))

		Expect(sendFrame(conn, testMagic, daemon.MsgConfigGet, daemon.EncodeGetRequest("a.b.c"))).To(Succeed())
		hdr, body, err = recvFrame(conn)
		Expect(err).ToNot(HaveOccurred())
		Expect(hdr.Result).To(Equal(daemon.ResultOK))
		Expect(string(body)).To(Equal("v"))
	})

	It("discards a request with the wrong magic but keeps the connection usable (S5)", func() {
		conn, err := rawsocket.Connect(rawsocket.UnixAddr(rawsocket.NetworkUnix, sockPath))
		Expect(err).ToNot(HaveOccurred())
		defer conn.Close()

		Expect(sendFrame(conn, 0xDEADBEEF, daemon.MsgConfigGet, daemon.EncodeGetRequest("x"))).To(Succeed())
		// Give the server's own select pass a chance to read and discard the
		// malformed frame on its own before the well-formed one is written,
		// so the two are never coalesced into a single on-data invocation.
		time.Sleep(20 * time.Millisecond)

		tree.Set("ok.key", "still-open")
		Expect(sendFrame(conn, testMagic, daemon.MsgConfigGet, daemon.EncodeGetRequest("ok.key"))).To(Succeed())

		hdr, body, err := recvFrame(conn)
		Expect(err).ToNot(HaveOccurred())
		Expect(hdr.Result).To(Equal(daemon.ResultOK))
		Expect(string(body)).To(Equal("still-open"))
	})
})
