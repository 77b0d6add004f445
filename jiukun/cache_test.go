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

package jiukun_test

import (
	"github.com/ned0000/jiufeng-go/jiukun"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Cache", func() {
	It("zeroes every object handed out by a ZERO-flagged cache", func() {
		pool := jiukun.NewPool(jiukun.DefaultPageSize, 2, false)
		c := jiukun.NewCache("test-zero", 64, jiukun.CacheZero, pool)

		var objs []*jiukun.Object
		for i := 0; i < 100; i++ {
			o, err := c.AllocObject()
			Expect(err).ToNot(HaveOccurred())
			for j := range o.Bytes() {
				o.Bytes()[j] = 0xAA
			}
			objs = append(objs, o)
		}
		for _, o := range objs {
			c.FreeObject(o)
		}

		for i := 0; i < 100; i++ {
			o, err := c.AllocObject()
			Expect(err).ToNot(HaveOccurred())
			for _, b := range o.Bytes() {
				Expect(b).To(Equal(byte(0)))
			}
		}
	})

	It("grows additional slabs transparently as objects are requested", func() {
		pool := jiukun.NewPool(jiukun.DefaultPageSize, 2, false)
		c := jiukun.NewCache("test-grow", 128, 0, pool)

		for i := 0; i < 500; i++ {
			_, err := c.AllocObject()
			Expect(err).ToNot(HaveOccurred())
		}
		Expect(c.Stats().ObjectsUp).To(Equal(500))
	})

	It("panics on double free when CacheDebugFree is set", func() {
		pool := jiukun.NewPool(jiukun.DefaultPageSize, 2, false)
		c := jiukun.NewCache("test-debug", 64, jiukun.CacheDebugFree, pool)

		o, err := c.AllocObject()
		Expect(err).ToNot(HaveOccurred())
		c.FreeObject(o)
		Expect(func() { c.FreeObject(o) }).To(Panic())
	})

	It("reaps empty slabs back to the page pool unless CacheNeverReap is set", func() {
		pool := jiukun.NewPool(jiukun.DefaultPageSize, 4, false)
		c := jiukun.NewCache("test-reap", 512, 0, pool)

		objs := make([]*jiukun.Object, 0, 8)
		for i := 0; i < 8; i++ {
			o, err := c.AllocObject()
			Expect(err).ToNot(HaveOccurred())
			objs = append(objs, o)
		}
		for _, o := range objs {
			c.FreeObject(o)
		}

		n, err := c.Reap()
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(BeNumerically(">", 0))
		Expect(c.Stats().Slabs).To(Equal(0))
	})

	It("keeps empty slabs when CacheNeverReap is set", func() {
		pool := jiukun.NewPool(jiukun.DefaultPageSize, 4, false)
		c := jiukun.NewCache("test-never-reap", 512, jiukun.CacheNeverReap, pool)

		o, err := c.AllocObject()
		Expect(err).ToNot(HaveOccurred())
		c.FreeObject(o)

		n, err := c.Reap()
		Expect(err).ToNot(HaveOccurred())
		Expect(n).To(Equal(0))
		Expect(c.Stats().Slabs).To(BeNumerically(">", 0))
	})
})
