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
	"encoding/binary"

	"github.com/ned0000/jiufeng-go/jferr"
)

// HeaderSize is the fixed request/response header every daemon protocol
// carries ahead of its message-id-specific body.
const HeaderSize = 32

// Result codes carried in a response Header's Result field. These are
// wire-level outcomes, distinct from jferr's Go-side error classification.
const (
	ResultOK             uint32 = 0
	ResultNotFound       uint32 = 1
	ResultInvalidRequest uint32 = 2
	ResultNotImplemented uint32 = 3
)

// Header is the 32-byte request/response header: {u8 msg-id, u8 rsv[3],
// u32 seq, u32 magic, u32 payload-size, u32 result, u32 tx-id, u32
// rsv[2]}, matching configmgrmsg.h's config_mgr_msg_header_t field for
// field. The trailing 8 reserved bytes are reserved, not dead: they are
// left for a transaction-ID extension the header's own surrounding
// struct comments anticipate, so WriteHeader zeroes them and ReadHeader
// ignores them rather than the two sides disagreeing on frame length.
// Byte order is host-native, unlike messaging.Header's wire-portable big
// endian, matching this protocol's own stated byte-order rule.
type Header struct {
	MsgID       uint8
	Seq         uint32
	Magic       uint32
	PayloadSize uint32
	Result      uint32
	TxID        uint32
}

// WriteHeader encodes h into buf[:HeaderSize].
func WriteHeader(buf []byte, h Header) error {
	if len(buf) < HeaderSize {
		return jferr.New(jferr.BufferTooSmall, nil)
	}
	buf[0] = h.MsgID
	buf[1], buf[2], buf[3] = 0, 0, 0
	binary.NativeEndian.PutUint32(buf[4:8], h.Seq)
	binary.NativeEndian.PutUint32(buf[8:12], h.Magic)
	binary.NativeEndian.PutUint32(buf[12:16], h.PayloadSize)
	binary.NativeEndian.PutUint32(buf[16:20], h.Result)
	binary.NativeEndian.PutUint32(buf[20:24], h.TxID)
	binary.NativeEndian.PutUint32(buf[24:28], 0)
	binary.NativeEndian.PutUint32(buf[28:32], 0)
	return nil
}

// ReadHeader decodes a Header from buf[:HeaderSize].
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, jferr.New(jferr.IncompleteData, nil)
	}
	return Header{
		MsgID:       buf[0],
		Seq:         binary.NativeEndian.Uint32(buf[4:8]),
		Magic:       binary.NativeEndian.Uint32(buf[8:12]),
		PayloadSize: binary.NativeEndian.Uint32(buf[12:16]),
		Result:      binary.NativeEndian.Uint32(buf[16:20]),
		TxID:        binary.NativeEndian.Uint32(buf[20:24]),
	}, nil
}
