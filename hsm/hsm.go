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

package hsm

// nestedTable is the per-parent-state child machine: its own ordered table,
// its own current state, and the initial state it is reset to whenever its
// parent is (re-)entered.
type nestedTable struct {
	table   Table
	initial StateID
	current StateID
}

// HSM is a hierarchical state machine: one top-level table plus zero or
// more nested tables keyed by the top-level state that owns them.
type HSM struct {
	top        Table
	topCurrent StateID

	nested    map[StateID]*nestedTable
	callbacks map[StateID]*callback
}

// New builds an HSM starting in initial with the given top-level table.
// Nested tables and per-state callbacks are attached afterward with
// AddNestedTable and AddStateCallback.
func New(top Table, initial StateID) *HSM {
	return &HSM{
		top:        top,
		topCurrent: initial,
		nested:     make(map[StateID]*nestedTable),
		callbacks:  make(map[StateID]*callback),
	}
}

// AddNestedTable attaches (or replaces) the nested table entered whenever a
// top-level transition leaves the current state equal to state. The nested
// table's current state is forced to initial on every such entry.
func (h *HSM) AddNestedTable(state StateID, table Table, initial StateID) {
	h.nested[state] = &nestedTable{table: table, initial: initial, current: initial}
}

// AddStateCallback attaches (or replaces) the entry/exit pair fired when
// state becomes current (onEntry) or stops being current (onExit). Either
// may be nil.
func (h *HSM) AddStateCallback(state StateID, onEntry EntryFunc, onExit ExitFunc) {
	h.callbacks[state] = &callback{onEntry: onEntry, onExit: onExit}
}

// CurrentState returns the nested table's current state if the top-level
// current state owns one, otherwise the top-level current state itself.
func (h *HSM) CurrentState() StateID {
	if nt, ok := h.nested[h.topCurrent]; ok {
		return nt.current
	}
	return h.topCurrent
}

// Snapshot is a read-only view of an HSM's current trajectory, exposed for
// assertions that should not reach into unexported fields.
type Snapshot struct {
	Top    StateID
	Nested map[StateID]StateID
}

// Snapshot returns the current top-level state plus every nested table's
// current state, keyed by the parent state that owns it.
func (h *HSM) Snapshot() Snapshot {
	s := Snapshot{Top: h.topCurrent, Nested: make(map[StateID]StateID, len(h.nested))}
	for parent, nt := range h.nested {
		s.Nested[parent] = nt.current
	}
	return s
}

// Process dispatches event against the top-level table first; only if
// nothing there matches does it fall through to the nested table (if any)
// owned by the top-level's current state. It reports whether some entry
// matched; an unmatched event is silently dropped, per design.
func (h *HSM) Process(event EventID, data interface{}) bool {
	if h.tryTable(h.top, &h.topCurrent, event, data, true) {
		return true
	}

	if nt, ok := h.nested[h.topCurrent]; ok {
		return h.tryTable(nt.table, &nt.current, event, data, false)
	}
	return false
}

// tryTable scans table in declaration order for the first entry whose
// (Current, Event) matches *current/event and whose Guard (if any) passes.
// isTop controls whether a state change additionally resets a newly-entered
// top-level state's nested table to its initial state.
func (h *HSM) tryTable(table Table, current *StateID, event EventID, data interface{}, isTop bool) bool {
	for _, t := range table {
		if t.Current != *current || t.Event != event {
			continue
		}
		if t.Guard != nil && !t.Guard(data) {
			continue
		}

		if t.Action != nil {
			t.Action(data)
		}

		if t.Next != *current {
			from := *current
			h.fireExit(from, data)
			*current = t.Next
			h.fireEntry(t.Next, data)

			if isTop {
				if nt, ok := h.nested[t.Next]; ok {
					nt.current = nt.initial
				}
			}
		}
		return true
	}
	return false
}

func (h *HSM) fireEntry(state StateID, data interface{}) {
	if cb, ok := h.callbacks[state]; ok && cb.onEntry != nil {
		cb.onEntry(data)
	}
}

func (h *HSM) fireExit(state StateID, data interface{}) {
	if cb, ok := h.callbacks[state]; ok && cb.onExit != nil {
		cb.onExit(data)
	}
}
