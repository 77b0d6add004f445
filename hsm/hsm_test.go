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

package hsm_test

import (
	"github.com/ned0000/jiufeng-go/hsm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const (
	stateA hsm.StateID = iota
	stateB
	stateC
)

const eventX hsm.EventID = 1

var _ = Describe("HSM", func() {
	It("picks the first guard that passes, not the first entry declared", func() {
		var hitA, hitB bool

		table := hsm.Table{
			{Current: stateA, Event: eventX, Guard: func(interface{}) bool { return false }, Action: func(interface{}) { hitA = true }, Next: stateB},
			{Current: stateA, Event: eventX, Guard: func(interface{}) bool { return true }, Action: func(interface{}) { hitB = true }, Next: stateC},
		}
		m := hsm.New(table, stateA)

		ok := m.Process(eventX, nil)
		Expect(ok).To(BeTrue())
		Expect(hitA).To(BeFalse())
		Expect(hitB).To(BeTrue())
		Expect(m.CurrentState()).To(Equal(stateC))
	})

	It("drops events with no matching entry", func() {
		m := hsm.New(hsm.Table{
			{Current: stateA, Event: eventX, Next: stateB},
		}, stateA)

		ok := m.Process(hsm.EventID(999), nil)
		Expect(ok).To(BeFalse())
		Expect(m.CurrentState()).To(Equal(stateA))
	})

	It("fires exit then entry only when the state actually changes", func() {
		var order []string
		m := hsm.New(hsm.Table{
			{Current: stateA, Event: eventX, Next: stateA}, // self-loop: no callbacks
			{Current: stateA, Event: eventX + 1, Next: stateB},
		}, stateA)
		m.AddStateCallback(stateA, func(interface{}) { order = append(order, "enterA") }, func(interface{}) { order = append(order, "exitA") })
		m.AddStateCallback(stateB, func(interface{}) { order = append(order, "enterB") }, func(interface{}) { order = append(order, "exitB") })

		m.Process(eventX, nil) // self-loop, same state: no callbacks fire
		Expect(order).To(BeEmpty())

		m.Process(eventX+1, nil) // A -> B: exitA then enterB
		Expect(order).To(Equal([]string{"exitA", "enterB"}))
	})

	It("resets a nested table to its initial state every time its parent is re-entered", func() {
		const (
			parentP hsm.StateID = 10
			parentQ hsm.StateID = 11
			childS0 hsm.StateID = 20
			childS1 hsm.StateID = 21
		)
		const eventAdvance hsm.EventID = 1
		const eventToQ hsm.EventID = 2
		const eventToP hsm.EventID = 3

		top := hsm.Table{
			{Current: parentP, Event: eventToQ, Next: parentQ},
			{Current: parentQ, Event: eventToP, Next: parentP},
		}
		m := hsm.New(top, parentP)
		m.AddNestedTable(parentP, hsm.Table{
			{Current: childS0, Event: eventAdvance, Next: childS1},
		}, childS0)

		Expect(m.Process(eventAdvance, nil)).To(BeTrue())
		Expect(m.CurrentState()).To(Equal(childS1))

		Expect(m.Process(eventToQ, nil)).To(BeTrue())
		Expect(m.Process(eventToP, nil)).To(BeTrue())

		Expect(m.Snapshot().Nested[parentP]).To(Equal(childS0))
		Expect(m.CurrentState()).To(Equal(childS0))
	})

	It("only falls through to the nested table when the top-level table has no match", func() {
		const childS0 hsm.StateID = 20
		const childS1 hsm.StateID = 21
		const eventChildOnly hsm.EventID = 5

		top := hsm.Table{}
		m := hsm.New(top, stateA)
		m.AddNestedTable(stateA, hsm.Table{
			{Current: childS0, Event: eventChildOnly, Next: childS1},
		}, childS0)

		ok := m.Process(eventChildOnly, nil)
		Expect(ok).To(BeTrue())
		Expect(m.CurrentState()).To(Equal(childS1))
	})

	It("passes event data through to guards, actions and callbacks", func() {
		type payload struct{ hasPending bool }
		var sawGuard, sawAction bool

		table := hsm.Table{
			{
				Current: stateA,
				Event:   eventX,
				Guard:   func(d interface{}) bool { sawGuard = d.(payload).hasPending; return true },
				Action:  func(d interface{}) { sawAction = d.(payload).hasPending },
				Next:    stateB,
			},
		}
		m := hsm.New(table, stateA)
		m.Process(eventX, payload{hasPending: true})

		Expect(sawGuard).To(BeTrue())
		Expect(sawAction).To(BeTrue())
	})
})
