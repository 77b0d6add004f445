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
	"sync"
	"time"

	"github.com/ned0000/jiufeng-go/chain"
	"github.com/ned0000/jiufeng-go/chain/utimer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Timer driven by a real Chain (scenario S1)", func() {
	It("fires three items scheduled at 100, 50, 200ms in order 50, 100, 200", func() {
		c, err := chain.New()
		Expect(err).ToNot(HaveOccurred())
		defer c.Close()

		t := utimer.New(c.Wakeup)
		c.Append(t)

		var mu sync.Mutex
		var order []string
		record := func(name string) func(interface{}) {
			return func(interface{}) {
				mu.Lock()
				order = append(order, name)
				mu.Unlock()
			}
		}

		start := time.Now()
		t.Add("a", 100, record("a"), nil)
		t.Add("b", 50, record("b"), nil)
		t.Add("c", 200, record("c"), nil)

		done := make(chan error, 1)
		go func() { done <- c.Run() }()

		time.Sleep(500 * time.Millisecond)
		c.Stop()
		Eventually(done, time.Second).Should(Receive(BeNil()))

		Expect(time.Since(start)).To(BeNumerically(">=", 200*time.Millisecond))

		mu.Lock()
		defer mu.Unlock()
		Expect(order).To(Equal([]string{"b", "a", "c"}))
	})
})
