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

package utimer

import (
	"sync"
	"time"

	"github.com/ned0000/jiufeng-go/chain"
)

// FireFunc and DestroyFunc are an Item's callbacks: FireFunc runs when the
// item's expiry has passed, DestroyFunc runs when the item is removed
// before it ever fires.
type FireFunc func(payload interface{})
type DestroyFunc func(payload interface{})

// Item is one scheduled timer entry.
type Item struct {
	expiry    int64 // absolute, milliseconds
	payload   interface{}
	onFire    FireFunc
	onDestroy DestroyFunc
}

// Payload returns the value this item was scheduled with.
func (it *Item) Payload() interface{} { return it.payload }

// Timer is a chain.Object maintaining a list of Items in ascending expiry
// order. It must be registered with a chain.Chain via Append to actually
// run; Add/Remove are safe to call from the chain's own goroutine or, like
// other chain.Object state, must be externally synchronized if called off
// it.
type Timer struct {
	mu    sync.Mutex
	items []*Item
	wake  func()
	now   func() int64
}

// New builds a Timer. wake is called (typically chain.Chain.Wakeup) whenever
// Add changes the earliest pending item, so a blocked select(2) is
// re-evaluated against the new deadline instead of waiting out the old one.
func New(wake func()) *Timer {
	return &Timer{
		wake: wake,
		now:  func() int64 { return time.Now().UnixMilli() },
	}
}

// Add schedules payload to fire after delayMS milliseconds.
func (t *Timer) Add(payload interface{}, delayMS int64, onFire FireFunc, onDestroy DestroyFunc) *Item {
	t.mu.Lock()
	defer t.mu.Unlock()

	it := &Item{
		expiry:    t.now() + delayMS,
		payload:   payload,
		onFire:    onFire,
		onDestroy: onDestroy,
	}

	wasHead := len(t.items) == 0 || it.expiry < t.items[0].expiry
	t.insertLocked(it)

	if wasHead && t.wake != nil {
		t.wake()
	}
	return it
}

func (t *Timer) insertLocked(it *Item) {
	i := 0
	for i < len(t.items) && t.items[i].expiry <= it.expiry {
		i++
	}
	t.items = append(t.items, nil)
	copy(t.items[i+1:], t.items[i:])
	t.items[i] = it
}

// Remove removes every scheduled item whose payload equals payload,
// invoking onDestroy (not onFire) for each one removed.
func (t *Timer) Remove(payload interface{}) {
	t.mu.Lock()
	var removed []*Item
	kept := t.items[:0]
	for _, it := range t.items {
		if it.payload == payload {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	t.items = kept
	t.mu.Unlock()

	for _, it := range removed {
		if it.onDestroy != nil {
			it.onDestroy(it.payload)
		}
	}
}

// Len reports the number of items currently scheduled.
func (t *Timer) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.items)
}

// PreSelect lowers blockMS to the time remaining until the earliest item,
// if that is sooner than blockMS already is.
func (t *Timer) PreSelect(read, write, errs *chain.FDSet, blockMS *int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.items) == 0 {
		return
	}
	remaining := int(t.items[0].expiry - t.now())
	if remaining < 0 {
		remaining = 0
	}
	if remaining < *blockMS {
		*blockMS = remaining
	}
}

// PostSelect fires every item whose expiry has passed, in ascending order.
func (t *Timer) PostSelect(nReady int, read, write, errs *chain.FDSet) {
	now := t.now()

	t.mu.Lock()
	i := 0
	for i < len(t.items) && t.items[i].expiry <= now {
		i++
	}
	due := t.items[:i]
	t.items = t.items[i:]
	t.mu.Unlock()

	for _, it := range due {
		if it.onFire != nil {
			it.onFire(it.payload)
		}
	}
}
