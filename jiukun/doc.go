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

// Package jiukun is the page/object allocator shared by every daemon in this
// module: a buddy page pool (Pool) plus named, fixed-size object caches
// (Cache) layered on top of it.
//
// A Pool carves one or more arenas into power-of-two page runs up to
// the pool's maximum order (MaxPageOrder by default); every allocated run is
// returned intact and buddies merge back on free. A Cache hands out
// objSize-sized regions backed by pages drawn from a Pool, optionally zeroing
// them and optionally tracking allocation state to catch double-free and
// free-of-unallocated under CacheDebugFree.
//
// Default returns the process-wide Pool; every Pool is safe for concurrent
// use from any goroutine;
// Cache inherits that safety. Neither type is tied to a chain/reactor — this
// is the one layer of the core that is not single-threaded by contract.
package jiukun
