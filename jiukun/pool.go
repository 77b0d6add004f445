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

import (
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/ned0000/jiufeng-go/jferr"
)

// MaxPageOrder is the default ceiling on a single arena's buddy order: an
// arena holds 2^MaxPageOrder base pages, so the largest single allocation is
// PageSize * 2^MaxPageOrder bytes.
const MaxPageOrder = 10

// DefaultPageSize is the size, in bytes, of an order-0 page.
const DefaultPageSize = 4096

// Page is a handle to a page run returned by Pool.AllocPage. It must be
// passed back to the same Pool's FreePage exactly once.
type Page struct {
	buf   []byte
	order int
	ar    *arena
	index int
}

// Bytes returns the page run's backing storage.
func (p *Page) Bytes() []byte { return p.buf }

// Order returns the buddy order (power-of-two page count) of this run.
func (p *Page) Order() int { return p.order }

type arena struct {
	base     []byte
	pageSize int
	maxOrder int
	free     []*bitset.BitSet // free[order] = bitmap of free block indices at that order
}

func newArena(pageSize, maxOrder int) *arena {
	a := &arena{
		base:     make([]byte, pageSize<<uint(maxOrder)),
		pageSize: pageSize,
		maxOrder: maxOrder,
		free:     make([]*bitset.BitSet, maxOrder+1),
	}
	for order := range a.free {
		a.free[order] = bitset.New(uint(1) << uint(maxOrder-order))
	}
	a.free[maxOrder].Set(0)
	return a
}

func (a *arena) takeAny(order int) (int, bool) {
	idx, ok := a.free[order].NextSet(0)
	if !ok {
		return 0, false
	}
	a.free[order].Clear(idx)
	return int(idx), true
}

// tryAlloc attempts to satisfy order from this arena only, splitting larger
// free blocks as needed. Returns ok=false if nothing of sufficient order is
// free anywhere in the arena.
func (a *arena) tryAlloc(order int) (int, bool) {
	if order > a.maxOrder {
		return 0, false
	}
	if idx, ok := a.takeAny(order); ok {
		return idx, true
	}
	parent, ok := a.tryAlloc(order + 1)
	if !ok {
		return 0, false
	}
	// split parent into two order-sized buddies; keep the second, return the first
	a.free[order].Set(uint(parent*2 + 1))
	return parent * 2, true
}

func (a *arena) free0(order, index int) {
	for order < a.maxOrder {
		buddy := uint(index ^ 1)
		if !a.free[order].Test(buddy) {
			break
		}
		a.free[order].Clear(buddy)
		index /= 2
		order++
	}
	a.free[order].Set(uint(index))
}

func (a *arena) offset(order, index int) int {
	return index * a.pageSize << uint(order)
}

func (a *arena) bytesFree() int {
	n := 0
	for order, bs := range a.free {
		n += int(bs.Count()) * (a.pageSize << uint(order))
	}
	return n
}

// Pool is a buddy page allocator. The zero value is not usable; build one
// with NewPool.
type Pool struct {
	mu       sync.Mutex
	cond     *sync.Cond
	pageSize int
	maxOrder int
	noGrow   bool
	arenas   []*arena
	inUse    map[*Page]struct{}
}

// NewPool builds a Pool with one initial arena. If noGrow is true, the pool
// never spawns additional arenas and alloc fails once the first is
// exhausted.
func NewPool(pageSize int, maxOrder int, noGrow bool) *Pool {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if maxOrder <= 0 {
		maxOrder = MaxPageOrder
	}
	p := &Pool{
		pageSize: pageSize,
		maxOrder: maxOrder,
		noGrow:   noGrow,
		arenas:   []*arena{newArena(pageSize, maxOrder)},
		inUse:    make(map[*Page]struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	return p
}

var defaultPool *Pool
var defaultPoolOnce sync.Once

// Default returns the process-wide growable pool used when a daemon does
// not build its own.
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool(DefaultPageSize, MaxPageOrder, false)
	})
	return defaultPool
}

// AllocPage returns a page run of the requested order (2^order base pages).
// With PageWait set it blocks until space is released instead of returning
// OutOfMemory.
func (p *Pool) AllocPage(order int, flags PageFlag) (*Page, error) {
	if order < 0 {
		return nil, jferr.New(jferr.InvalidParam, nil)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if pg, ok := p.tryAllocLocked(order); ok {
			if flags.has(PageZero) {
				for i := range pg.buf {
					pg.buf[i] = 0
				}
			}
			p.inUse[pg] = struct{}{}
			return pg, nil
		}

		if !p.noGrow {
			p.arenas = append(p.arenas, newArena(p.pageSize, maxInt(p.maxOrder, order)))
			continue
		}

		if !flags.has(PageWait) {
			return nil, jferr.New(jferr.OutOfMemory, nil)
		}
		p.cond.Wait()
	}
}

func (p *Pool) tryAllocLocked(order int) (*Page, bool) {
	for _, a := range p.arenas {
		if idx, ok := a.tryAlloc(order); ok {
			off := a.offset(order, idx)
			size := a.pageSize << uint(order)
			return &Page{buf: a.base[off : off+size], order: order, ar: a, index: idx}, true
		}
	}
	return nil, false
}

// FreePage returns a page run previously obtained from AllocPage. Freeing a
// pointer this Pool never returned, or freeing the same Page twice, is a
// programming error and panics rather than corrupting the allocator state.
func (p *Pool) FreePage(pg *Page) {
	if pg == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.inUse[pg]; !ok {
		panic("jiukun: free of pointer not returned by this pool (or double free)")
	}
	delete(p.inUse, pg)
	pg.ar.free0(pg.order, pg.index)
	p.cond.Broadcast()
}

// Stats reports current utilization across every arena of the pool.
type Stats struct {
	BytesInUse int
	BytesFree  int
}

// Stats returns the pool's current utilization.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	var s Stats
	for _, a := range p.arenas {
		free := a.bytesFree()
		s.BytesFree += free
		s.BytesInUse += len(a.base) - free
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
