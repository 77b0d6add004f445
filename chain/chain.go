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

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sys/unix"

	"github.com/ned0000/jiufeng-go/jferr"
)

// MaxBlockMS is the ceiling a pre_select pass may shrink block_ms toward,
// but never exceed: roughly 24 hours, per spec.
const MaxBlockMS = 24 * 60 * 60 * 1000

const (
	wakeByteStop   = 'S'
	wakeByteWakeup = 'W'
)

// Chain is a single-threaded select-based reactor. The zero value is not
// usable; build one with New.
type Chain struct {
	mu      sync.Mutex
	objects []Object

	wakeRead, wakeWrite int
	stopping            atomic.Bool
	running             atomic.Bool
}

// Metrics shared across every Chain in the process: a chain is normally a
// process-wide singleton per daemon, and registering a fresh collector pair
// per instance would panic promauto's default registerer on the second
// construction (e.g. in tests).
var (
	metricsOnce sync.Once
	iterations  prometheus.Counter
	blockWait   prometheus.Histogram
)

func initMetrics() {
	metricsOnce.Do(func() {
		iterations = promauto.NewCounter(prometheus.CounterOpts{
			Name: "jiufeng_chain_loop_iterations_total",
			Help: "Number of reactor loop iterations completed.",
		})
		blockWait = promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "jiufeng_chain_block_ms",
			Help:    "block_ms observed entering each select(2) call.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		})
	})
}

// New allocates a Chain and its wakeup socket pair.
func New() (*Chain, error) {
	initMetrics()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, jferr.New(jferr.FailCreateSocket, err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		return nil, jferr.New(jferr.FailCreateSocket, err)
	}

	return &Chain{
		wakeRead:  fds[0],
		wakeWrite: fds[1],
	}, nil
}

// Append links obj at the tail of the chain's object list. Safe to call
// before Run starts; undefined ordering relative to Run once it has
// started (the object list is snapshotted once per iteration).
func (c *Chain) Append(obj Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.objects = append(c.objects, obj)
}

// Run executes the select loop until Stop is called (from any goroutine)
// or a fatal select(2) error occurs. Only one goroutine may be inside Run
// at a time.
func (c *Chain) Run() error {
	c.running.Store(true)
	defer c.running.Store(false)

	for {
		read := NewFDSet()
		write := NewFDSet()
		errs := NewFDSet()
		blockMS := MaxBlockMS

		read.Set(c.wakeRead)

		c.mu.Lock()
		objs := make([]Object, len(c.objects))
		copy(objs, c.objects)
		c.mu.Unlock()

		for _, o := range objs {
			o.PreSelect(read, write, errs, &blockMS)
		}
		if blockMS > MaxBlockMS {
			blockMS = MaxBlockMS
		}
		if blockMS < 0 {
			blockMS = 0
		}

		maxFd := read.maxOf(write)
		maxFd = maxOfInt(maxFd, errs.max)

		tv := unix.NsecToTimeval(int64(blockMS) * int64(time.Millisecond))
		blockWait.Observe(float64(blockMS))

		n, err := unix.Select(maxFd+1, &read.raw, &write.raw, &errs.raw, &tv)
		iterations.Inc()
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return jferr.New(jferr.FailRecvData, err)
		}

		if read.IsSet(c.wakeRead) {
			c.drainWake()
		}

		for _, o := range objs {
			o.PostSelect(n, read, write, errs)
		}

		if c.stopping.Load() {
			return nil
		}
	}
}

func (c *Chain) drainWake() {
	buf := make([]byte, 64)
	for {
		n, err := unix.Read(c.wakeRead, buf)
		if n <= 0 || err != nil {
			return
		}
		for i := 0; i < n; i++ {
			if buf[i] == wakeByteStop {
				c.stopping.Store(true)
			}
		}
		if n < len(buf) {
			return
		}
	}
}

// Stop requests the loop to exit after its current pass. Safe from any
// goroutine.
func (c *Chain) Stop() {
	_, _ = unix.Write(c.wakeWrite, []byte{wakeByteStop})
}

// Wakeup interrupts a blocked select(2) without requesting termination.
// Safe from any goroutine.
func (c *Chain) Wakeup() {
	_, _ = unix.Write(c.wakeWrite, []byte{wakeByteWakeup})
}

// Running reports whether a goroutine is currently inside Run.
func (c *Chain) Running() bool { return c.running.Load() }

// Close releases the wakeup socket pair. Call only after Run has returned.
func (c *Chain) Close() error {
	_ = unix.Close(c.wakeWrite)
	return unix.Close(c.wakeRead)
}

func maxOfInt(a, b int) int {
	if b > a {
		return b
	}
	return a
}
