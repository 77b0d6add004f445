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

package messaging

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/ned0000/jiufeng-go/jferr"
)

// HeaderSize is the encoded length of Header at the front of every
// dispatcher message's payload.
const HeaderSize = 20

// RESERVED_MSG_ID is the first message ID reserved for infrastructure use
// (heartbeats, etc); IDs at or above it must never reach a user message
// handler.
const RESERVED_MSG_ID uint32 = 0xF0000000

// Header is jf_messaging_header_t: the fixed framing every dispatcher
// message carries as the first HeaderSize bytes of its payload.
type Header struct {
	ID          uint32
	Priority    uint8
	SrcPID      int32
	DstPID      int32
	PayloadSize uint32
}

// IsReserved reports whether id falls in the infrastructure-reserved range.
func (h Header) IsReserved() bool {
	return h.ID >= RESERVED_MSG_ID
}

// WriteHeader encodes h into the first HeaderSize bytes of buf.
func WriteHeader(buf []byte, h Header) error {
	if len(buf) < HeaderSize {
		return jferr.New(jferr.InvalidParam, nil)
	}
	binary.BigEndian.PutUint32(buf[0:4], h.ID)
	buf[4] = h.Priority
	buf[5], buf[6], buf[7] = 0, 0, 0
	binary.BigEndian.PutUint32(buf[8:12], uint32(h.SrcPID))
	binary.BigEndian.PutUint32(buf[12:16], uint32(h.DstPID))
	binary.BigEndian.PutUint32(buf[16:20], h.PayloadSize)
	return nil
}

// ReadHeader decodes the first HeaderSize bytes of buf.
func ReadHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, jferr.New(jferr.InvalidParam, nil)
	}
	return Header{
		ID:          binary.BigEndian.Uint32(buf[0:4]),
		Priority:    buf[4],
		SrcPID:      int32(binary.BigEndian.Uint32(buf[8:12])),
		DstPID:      int32(binary.BigEndian.Uint32(buf[12:16])),
		PayloadSize: binary.BigEndian.Uint32(buf[16:20]),
	}, nil
}

// NewCorrelationID mints a tx-id for the daemon request/response header
// (§4.L). The wire field is a u32, so this takes the last 4 bytes of a
// fresh uuid (v7, or v4 if v7 generation fails). In a v7 uuid those bytes
// are random, not part of the timestamp, so ids are random 32-bit values
// that keep no generator state and do not restart from zero the way a
// process-local counter would.
func NewCorrelationID() uint32 {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	b := id[:]
	return binary.BigEndian.Uint32(b[len(b)-4:])
}
