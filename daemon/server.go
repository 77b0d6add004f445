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

package daemon

import (
	"net"
	"os"
	"path/filepath"

	"github.com/ned0000/jiufeng-go/asocket"
	"github.com/ned0000/jiufeng-go/assocket"
	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/filemode"
	"github.com/ned0000/jiufeng-go/jferr"
	"github.com/ned0000/jiufeng-go/rawsocket"
)

// Handler answers one fully-framed request. req carries the decoded
// header of the inbound message; body is exactly req.PayloadSize bytes.
// The returned Header's MsgID/Result/payload are the caller's concern;
// Seq, Magic, and TxID are stamped by the Server to match the request.
type Handler interface {
	Handle(req Header, body []byte) (resp Header, respBody []byte)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(req Header, body []byte) (Header, []byte)

func (f HandlerFunc) Handle(req Header, body []byte) (Header, []byte) { return f(req, body) }

// Server is a chain.Object: one assocket bound to a fixed Unix-domain
// path, parsing the 32-byte request header off every connection and
// dispatching full frames to a Handler.
type Server struct {
	magic   uint32
	ln      *rawsocket.Listener
	as      *assocket.Assocket
	handler Handler
}

// EnsureParentDir mkdirs the parent of path, tolerating "already exists" —
// the contract spec §6 states for dispatcher endpoints under
// /tmp/dispatcher/.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return jferr.New(jferr.NotInitialized, err)
	}
	return nil
}

// NewServer binds addr (removing any stale Unix-domain socket file first)
// and wraps it with a poolSize-slot assocket dispatching to handler under
// magic. wake is typically the owning chain.Chain's Wakeup.
func NewServer(addr rawsocket.Addr, magic uint32, poolSize int, perm filemode.Perm, wake func(), handler Handler) (*Server, error) {
	if addr.Network.IsUnix() {
		if err := EnsureParentDir(addr.Path); err != nil {
			return nil, err
		}
		_ = os.Remove(addr.Path)
	}

	ln, err := rawsocket.Listen(addr, perm)
	if err != nil {
		return nil, err
	}

	s := &Server{magic: magic, ln: ln, handler: handler}

	as, err := assocket.New(ln, poolSize, wake, assocket.Handler{
		OnConnect: func(a *asocket.Asocket, remote net.Addr) (interface{}, bool) {
			a.SetUser(a)
			return a, true
		},
		OnData: s.onData,
	})
	if err != nil {
		_ = ln.Close()
		return nil, err
	}
	s.as = as
	return s, nil
}

// onData implements the shared framing contract of §4.L: fewer than
// HeaderSize bytes available retains (NeedMore); a decoded magic that
// does not match discards everything currently buffered (Invalid,
// scenario S5); otherwise each complete frame is dispatched to the
// handler and a response frame written back before advancing past it.
func (s *Server) onData(buf []byte, begin *int, end int, user interface{}, pause *bool) {
	a, _ := user.(*asocket.Asocket)

	for {
		avail := end - *begin
		if avail < HeaderSize {
			return
		}

		hdr, err := ReadHeader(buf[*begin : *begin+HeaderSize])
		if err != nil {
			return
		}

		if hdr.Magic != s.magic {
			*begin = end
			return
		}

		total := HeaderSize + int(hdr.PayloadSize)
		if avail < total {
			return
		}

		body := buf[*begin+HeaderSize : *begin+total]
		respHdr, respBody := s.handler.Handle(hdr, body)
		respHdr.Seq = hdr.Seq
		respHdr.Magic = s.magic
		respHdr.TxID = hdr.TxID
		respHdr.PayloadSize = uint32(len(respBody))

		out := make([]byte, HeaderSize+len(respBody))
		_ = WriteHeader(out, respHdr)
		copy(out[HeaderSize:], respBody)
		if a != nil {
			a.Send(out, asocket.OwnedByAsocket)
		}

		*begin += total
	}
}

// Len/Free expose the underlying assocket's pool occupancy.
func (s *Server) Len() int  { return s.as.Len() }
func (s *Server) Free() int { return s.as.Free() }

// PreSelect delegates to the underlying assocket.
func (s *Server) PreSelect(read, write, errs *chain.FDSet, blockMS *int) {
	s.as.PreSelect(read, write, errs, blockMS)
}

// PostSelect delegates to the underlying assocket.
func (s *Server) PostSelect(nReady int, read, write, errs *chain.FDSet) {
	s.as.PostSelect(nReady, read, write, errs)
}

// Close shuts down every connection and the listening socket.
func (s *Server) Close() error {
	return s.as.Close()
}
