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

package utimer_test

import (
	"time"

	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/chain/utimer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Timer", func() {
	It("fires items in ascending expiry order once their deadline passes", func() {
		t := utimer.New(nil)

		var fired []string
		t.Add("late", 60, func(p interface{}) { fired = append(fired, p.(string)) }, nil)
		t.Add("early", 10, func(p interface{}) { fired = append(fired, p.(string)) }, nil)
		t.Add("mid", 30, func(p interface{}) { fired = append(fired, p.(string)) }, nil)

		Expect(t.Len()).To(Equal(3))

		time.Sleep(80 * time.Millisecond)
		t.PostSelect(0, nil, nil, nil)

		Expect(fired).To(Equal([]string{"early", "mid", "late"}))
		Expect(t.Len()).To(Equal(0))
	})

	It("lowers blockMS to the time remaining until the earliest item", func() {
		t := utimer.New(nil)
		t.Add("x", 5, nil, nil)

		blockMS := chain.MaxBlockMS
		t.PreSelect(nil, nil, nil, &blockMS)

		Expect(blockMS).To(BeNumerically("<=", 5))
		Expect(blockMS).To(BeNumerically(">=", 0))
	})

	It("leaves blockMS untouched when it is already smaller than the earliest item", func() {
		t := utimer.New(nil)
		t.Add("x", 5000, nil, nil)

		blockMS := 10
		t.PreSelect(nil, nil, nil, &blockMS)

		Expect(blockMS).To(Equal(10))
	})

	It("calls wake only when Add changes the earliest item", func() {
		wakeCount := 0
		t := utimer.New(func() { wakeCount++ })

		t.Add("first", 100, nil, nil)
		Expect(wakeCount).To(Equal(1))

		t.Add("later-but-not-earliest", 200, nil, nil)
		Expect(wakeCount).To(Equal(1))

		t.Add("new-earliest", 10, nil, nil)
		Expect(wakeCount).To(Equal(2))
	})

	It("calls onDestroy, not onFire, for items removed before they fire", func() {
		t := utimer.New(nil)

		var destroyed, fired []string
		t.Add("keep-me", 5000, func(p interface{}) { fired = append(fired, p.(string)) }, func(p interface{}) { destroyed = append(destroyed, p.(string)) })
		t.Add("remove-me", 5000, func(p interface{}) { fired = append(fired, p.(string)) }, func(p interface{}) { destroyed = append(destroyed, p.(string)) })

		t.Remove("remove-me")

		Expect(destroyed).To(Equal([]string{"remove-me"}))
		Expect(fired).To(BeEmpty())
		Expect(t.Len()).To(Equal(1))
	})
})
