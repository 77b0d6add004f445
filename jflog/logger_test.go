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

package jflog_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/ned0000/jiufeng-go/jflog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Level", func() {
	It("accepts exactly 0..5 and rejects anything else", func() {
		for n := 0; n <= 5; n++ {
			_, err := jflog.ParseLevel(n)
			Expect(err).ToNot(HaveOccurred())
		}
		_, err := jflog.ParseLevel(6)
		Expect(err).To(HaveOccurred())
		_, err = jflog.ParseLevel(-1)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Logger", func() {
	It("filters messages below its configured level", func() {
		var buf bytes.Buffer
		l := jflog.New(jflog.LevelWarn)
		l.SetOutput(&buf)

		l.Info("should be filtered")
		l.Warning("should appear")

		out := buf.String()
		Expect(out).ToNot(ContainSubstring("should be filtered"))
		Expect(out).To(ContainSubstring("should appear"))
	})

	It("rotates a size-capped file once it would exceed the cap", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "daemon.log")

		l := jflog.New(jflog.LevelDebug)
		Expect(l.SetOutputFile(path, 64)).To(Succeed())
		defer l.Close()

		for i := 0; i < 50; i++ {
			l.Info(strings.Repeat("x", 20))
		}

		_, err := os.Stat(path + ".1")
		Expect(err).ToNot(HaveOccurred())
	})
})
