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

	"github.com/hashicorp/go-multierror"

	"github.com/ned0000/jiufeng-go/jferr"
)

// Object is a handle to one object-sized region handed out by a Cache.
type Object struct {
	buf  []byte
	slab *slab
}

// Bytes returns the object's backing storage.
func (o *Object) Bytes() []byte { return o.buf }

type slab struct {
	page    *Page
	total   int
	objects []*Object
	free    int
}

// Cache is a named, fixed-size object allocator backed by a Pool.
type Cache struct {
	name    string
	objSize int
	flags   CacheFlag
	pool    *Pool

	mu       sync.Mutex
	slabs    []*slab
	freeList []*Object
	inUse    map[*Object]struct{} // only populated when CacheDebugFree is set
}

// NewCache creates a cache of objSize-byte objects backed by pool.
func NewCache(name string, objSize int, flags CacheFlag, pool *Pool) *Cache {
	if pool == nil {
		pool = Default()
	}
	c := &Cache{
		name:    name,
		objSize: objSize,
		flags:   flags,
		pool:    pool,
	}
	if flags.has(CacheDebugFree) {
		c.inUse = make(map[*Object]struct{})
	}
	return c
}

// Name returns the cache's name.
func (c *Cache) Name() string { return c.name }

// AllocObject returns one object-sized region, zeroed if CacheZero is set.
func (c *Cache) AllocObject() (*Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.freeList) == 0 {
		if err := c.growLocked(); err != nil {
			return nil, err
		}
	}

	n := len(c.freeList) - 1
	obj := c.freeList[n]
	c.freeList = c.freeList[:n]
	obj.slab.free--

	if c.flags.has(CacheZero) {
		for i := range obj.buf {
			obj.buf[i] = 0
		}
	}
	if c.inUse != nil {
		c.inUse[obj] = struct{}{}
	}
	return obj, nil
}

func (c *Cache) growLocked() error {
	if c.flags.has(CacheNoGrow) && len(c.slabs) > 0 {
		return jferr.New(jferr.OutOfMemory, nil)
	}

	order := 0
	pageBytes := c.pool.pageSize
	for pageBytes < c.objSize && order < c.pool.maxOrder {
		order++
		pageBytes <<= 1
	}

	var pageFlags PageFlag
	if c.flags.has(CacheWaitOnFail) {
		pageFlags |= PageWait
	}

	pg, err := c.pool.AllocPage(order, pageFlags)
	if err != nil {
		return err
	}

	n := len(pg.Bytes()) / c.objSize
	if n == 0 {
		n = 1
	}
	s := &slab{page: pg, total: n, free: n}
	buf := pg.Bytes()
	for i := 0; i < n; i++ {
		o := &Object{buf: buf[i*c.objSize : (i+1)*c.objSize], slab: s}
		s.objects = append(s.objects, o)
		c.freeList = append(c.freeList, o)
	}
	c.slabs = append(c.slabs, s)
	return nil
}

// FreeObject returns obj to the cache. Under CacheDebugFree, freeing an
// object twice or one this cache never allocated panics instead of
// corrupting the free list.
func (c *Cache) FreeObject(obj *Object) {
	if obj == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inUse != nil {
		if _, ok := c.inUse[obj]; !ok {
			panic("jiukun: double free or free of unallocated object in cache " + c.name)
		}
		delete(c.inUse, obj)
	}

	obj.slab.free++
	c.freeList = append(c.freeList, obj)
}

// Reap returns empty slabs to the page layer, unless CacheNeverReap is set.
// It returns the number of slabs reaped.
func (c *Cache) Reap() (int, error) {
	if c.flags.has(CacheNeverReap) {
		return 0, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var merr *multierror.Error
	reaped := 0
	kept := c.slabs[:0]
	for _, s := range c.slabs {
		if s.free != s.total {
			kept = append(kept, s)
			continue
		}
		c.removeSlabFreeList(s)
		func() {
			defer func() {
				if r := recover(); r != nil {
					merr = multierror.Append(merr, jferr.New(jferr.InvalidParam, nil))
				}
			}()
			c.pool.FreePage(s.page)
		}()
		reaped++
	}
	c.slabs = kept
	return reaped, merr.ErrorOrNil()
}

func (c *Cache) removeSlabFreeList(s *slab) {
	filtered := c.freeList[:0]
	for _, o := range c.freeList {
		if o.slab != s {
			filtered = append(filtered, o)
		}
	}
	c.freeList = filtered
}

// CacheStats reports a cache's current utilization.
type CacheStats struct {
	Slabs     int
	ObjectsUp int // objects currently allocated
	ObjectsFree int
}

// Stats returns the cache's current utilization.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var s CacheStats
	s.Slabs = len(c.slabs)
	for _, sl := range c.slabs {
		s.ObjectsFree += sl.free
		s.ObjectsUp += sl.total - sl.free
	}
	return s
}
