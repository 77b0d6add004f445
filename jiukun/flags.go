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

package jiukun

// PageFlag controls AllocPage behavior.
type PageFlag uint8

const (
	// PageNoWait fails immediately with OutOfMemory if no region fits.
	PageNoWait PageFlag = 0
	// PageWait blocks until space is released instead of failing.
	PageWait PageFlag = 1 << iota
	// PageZero zeroes the returned region.
	PageZero
)

func (f PageFlag) has(bit PageFlag) bool { return f&bit != 0 }

// CacheFlag controls a Cache's allocation/reap behavior.
type CacheFlag uint8

const (
	// CacheZero zeroes every object handed out by AllocObject.
	CacheZero CacheFlag = 1 << iota
	// CacheNeverReap keeps empty slabs instead of returning them to the
	// page layer on reap pressure.
	CacheNeverReap
	// CacheNoGrow refuses to request a new slab once the cache cannot
	// satisfy an allocation from its existing slabs.
	CacheNoGrow
	// CacheDebugFree tracks per-object allocation state to detect
	// double-free and free-of-unallocated.
	CacheDebugFree
	// CacheWaitOnFail blocks (via the backing Pool's PageWait) instead of
	// failing when no slab can be grown.
	CacheWaitOnFail
)

func (f CacheFlag) has(bit CacheFlag) bool { return f&bit != 0 }
