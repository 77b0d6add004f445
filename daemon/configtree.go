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
	"sync"
)

// Message IDs the config-manager protocol understands. Everything else is
// answered with ResultNotImplemented, matching the config tree's
// transaction routines, which the original declares but leaves
// unimplemented (see DESIGN.md).
const (
	MsgConfigGet uint8 = 1
	MsgConfigSet uint8 = 2
)

// ConfigTree is the config-manager daemon's in-memory settings store: a
// flat map keyed by dotted name, guarded by a RWMutex since GET vastly
// outnumbers SET in the target workload. It does not persist to SQLite or
// a flat file — that backend is an explicit non-goal this repo's core
// never implements.
type ConfigTree struct {
	mu   sync.RWMutex
	vals map[string]string
}

// NewConfigTree builds an empty tree.
func NewConfigTree() *ConfigTree {
	return &ConfigTree{vals: make(map[string]string)}
}

// Get returns the value at name and whether it was present.
func (t *ConfigTree) Get(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.vals[name]
	return v, ok
}

// Set stores value at name, creating or overwriting it.
func (t *ConfigTree) Set(name, value string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.vals[name] = value
}

// ConfigHandler is the Handler for the config-manager daemon's GET/SET
// protocol (scenario S4). Wire body layout is host-byte-order, mirroring
// this protocol's header:
//
//	GET request  : name (the entire body)
//	GET response : value (empty if not found), Result = OK or NotFound
//	SET request  : u16 name-length, name, value (whichever bytes remain)
//	SET response : empty body, Result = OK
type ConfigHandler struct {
	Tree *ConfigTree
}

// NewConfigHandler builds a Handler bound to tree.
func NewConfigHandler(tree *ConfigTree) *ConfigHandler {
	return &ConfigHandler{Tree: tree}
}

func (h *ConfigHandler) Handle(req Header, body []byte) (Header, []byte) {
	switch req.MsgID {
	case MsgConfigGet:
		return h.handleGet(req, body)
	case MsgConfigSet:
		return h.handleSet(req, body)
	default:
		return Header{MsgID: req.MsgID, Result: ResultNotImplemented}, nil
	}
}

func (h *ConfigHandler) handleGet(req Header, body []byte) (Header, []byte) {
	name := string(body)
	value, found := h.Tree.Get(name)
	if !found {
		return Header{MsgID: req.MsgID, Result: ResultNotFound}, nil
	}
	return Header{MsgID: req.MsgID, Result: ResultOK}, []byte(value)
}

func (h *ConfigHandler) handleSet(req Header, body []byte) (Header, []byte) {
	if len(body) < 2 {
		return Header{MsgID: req.MsgID, Result: ResultInvalidRequest}, nil
	}
	nameLen := int(binary.NativeEndian.Uint16(body[:2]))
	if len(body) < 2+nameLen {
		return Header{MsgID: req.MsgID, Result: ResultInvalidRequest}, nil
	}
	name := string(body[2 : 2+nameLen])
	value := string(body[2+nameLen:])
	h.Tree.Set(name, value)
	return Header{MsgID: req.MsgID, Result: ResultOK}, nil
}

// EncodeGetRequest builds a GET request body for name.
func EncodeGetRequest(name string) []byte {
	return []byte(name)
}

// EncodeSetRequest builds a SET request body for name/value.
func EncodeSetRequest(name, value string) []byte {
	buf := make([]byte, 2+len(name)+len(value))
	binary.NativeEndian.PutUint16(buf[:2], uint16(len(name)))
	copy(buf[2:], name)
	copy(buf[2+len(name):], value)
	return buf
}
