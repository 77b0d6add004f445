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

// StateID identifies a state within a table. LastStateID is reserved as a
// sentinel and must never be used as a real state.
type StateID uint32

// EventID identifies an event a table may react to. LastEventID is reserved
// as a sentinel and must never be used as a real event.
type EventID uint32

const (
	// LastStateID terminates a hand-built transition table; unused by Table
	// itself (which is a plain slice) but kept for callers porting tables
	// from a fixed-size representation.
	LastStateID StateID = ^StateID(0)
	// LastEventID is the event-table counterpart of LastStateID.
	LastEventID EventID = ^EventID(0)
)

// Guard gates whether a Transition may fire. Guards must not mutate state;
// the engine may call one without committing to the transition.
type Guard func(data interface{}) bool

// Action runs once a Transition has been committed to, before the state
// change (if any) takes effect.
type Action func(data interface{})

// EntryFunc and ExitFunc are per-state callbacks, fired only when the state
// actually changes.
type EntryFunc func(data interface{})
type ExitFunc func(data interface{})

// Transition is one row of a table: on Event seen while in Current, if Guard
// is nil or returns true, Action runs and the table moves to Next.
type Transition struct {
	Current StateID
	Event   EventID
	Guard   Guard
	Action  Action
	Next    StateID
}

// Table is an ordered list of transitions, tried top to bottom; the first
// whose (Current, Event) matches and whose Guard passes wins.
type Table []Transition

type callback struct {
	onEntry EntryFunc
	onExit  ExitFunc
}
