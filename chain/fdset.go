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

package chain

import "golang.org/x/sys/unix"

const fdSetBitsPerWord = 64

// FDSet is a descriptor set a chain-object's PreSelect registers interest
// in and PostSelect inspects for readiness. It also tracks the highest fd
// set, needed to size the select(2) call.
type FDSet struct {
	raw unix.FdSet
	max int
}

// NewFDSet returns an empty descriptor set.
func NewFDSet() *FDSet {
	return &FDSet{max: -1}
}

// Set marks fd as a member of the set.
func (s *FDSet) Set(fd int) {
	s.raw.Bits[fd/fdSetBitsPerWord] |= 1 << (uint(fd) % fdSetBitsPerWord)
	if fd > s.max {
		s.max = fd
	}
}

// Clear removes fd from the set.
func (s *FDSet) Clear(fd int) {
	s.raw.Bits[fd/fdSetBitsPerWord] &^= 1 << (uint(fd) % fdSetBitsPerWord)
}

// IsSet reports whether fd is a member of the set.
func (s *FDSet) IsSet(fd int) bool {
	return s.raw.Bits[fd/fdSetBitsPerWord]&(1<<(uint(fd)%fdSetBitsPerWord)) != 0
}

func (s *FDSet) maxOf(other *FDSet) int {
	if other.max > s.max {
		return other.max
	}
	return s.max
}
