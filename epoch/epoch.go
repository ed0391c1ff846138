// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package epoch

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
	"github.com/valyala/fastrand"
)

const (
	// readerSlots is the maximum number of concurrently pinned guards.
	// Must be a power of 2 for cheap masking during probe.
	readerSlots = 128

	// inactive marks a reader slot with no pinned guard.
	inactive = ^uint64(0)

	// retirePressure is the number of pending retirements that triggers
	// an opportunistic Advance.
	retirePressure = 64
)

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte

// readerRecord holds the epoch a pinned guard observed, or inactive.
// Each record occupies its own cache line: records are written by
// independent goroutines on every Enter/Leave.
type readerRecord struct {
	epoch atomix.Uint64
	_     padShort
}

// Collector coordinates epoch advancement and deferred reclamation.
//
// The zero value is not usable; create collectors with [NewCollector].
// Most callers use the package-level default via [Enter] and [Advance].
type Collector struct {
	_       pad
	global  atomix.Uint64 // Current epoch, monotonically increasing
	_       padShort
	pending atomix.Int64 // Retired callbacks not yet run
	_       padShort
	readers [readerSlots]readerRecord
	retired retireStack
}

// NewCollector creates an empty collector with all reader slots free.
func NewCollector() *Collector {
	c := &Collector{}
	for i := range c.readers {
		c.readers[i].epoch.StoreRelaxed(inactive)
	}
	return c
}

// defaultCollector serves package-level Enter/Advance.
var defaultCollector = NewCollector()

// Default returns the package-level collector.
func Default() *Collector {
	return defaultCollector
}

// Enter pins the current epoch on the default collector.
func Enter() Guard {
	return defaultCollector.Enter()
}

// Advance attempts to advance the default collector's epoch and runs
// deferred retirements that have become safe.
func Advance() {
	defaultCollector.Advance()
}

// Enter pins the current epoch and returns the guard holding the pin.
//
// While the guard is pinned, no object retired afterwards is destroyed,
// so pointers loaded from shared structures stay valid. The guard must be
// released exactly once with [Guard.Leave].
//
// If all reader slots are occupied, Enter spins until one frees. Holding
// more than 128 guards pinned simultaneously is a caller bug.
func (c *Collector) Enter() Guard {
	sw := spin.Wait{}
	start := int(fastrand.Uint32n(readerSlots))
	for {
		for i := range readerSlots {
			slot := (start + i) & (readerSlots - 1)
			r := &c.readers[slot]
			e := c.global.LoadAcquire()
			if !r.epoch.CompareAndSwapAcqRel(inactive, e) {
				continue
			}
			// Republish until the stored epoch matches the global one,
			// so a concurrent Advance cannot miss this reader.
			for {
				g := c.global.Load()
				if g == e {
					return Guard{c: c, slot: slot}
				}
				r.epoch.Store(g)
				e = g
			}
		}
		sw.Once()
	}
}

// Advance attempts to advance the global epoch and runs every deferred
// retirement that no pinned guard can still observe.
//
// A single call advances the epoch by at most one step; a retirement needs
// the epoch two steps past its retire point before it runs, so draining
// all pending work can take multiple calls.
func (c *Collector) Advance() {
	c.tryAdvance()
	c.reclaim()
}

// tryAdvance moves the global epoch forward by one step. It fails when
// any pinned reader has not yet observed the current epoch.
func (c *Collector) tryAdvance() bool {
	e := c.global.LoadAcquire()
	for i := range c.readers {
		r := c.readers[i].epoch.LoadAcquire()
		if r != inactive && r != e {
			return false
		}
	}
	return c.global.CompareAndSwapAcqRel(e, e+1)
}

// Guard is a scoped pin on a collector's epoch.
//
// The zero Guard is the unprotected guard: it performs no pinning and
// runs retirements immediately. See [Unprotected].
type Guard struct {
	c    *Collector
	slot int
}

// Unprotected returns a guard that does not pin any epoch.
//
// Valid only when the caller can prove no concurrent access to the
// protected structure is possible, such as exclusive teardown. Retire
// calls through an unprotected guard run their callback immediately, and
// Leave is a no-op.
func Unprotected() Guard {
	return Guard{}
}

// Leave releases the pin. After Leave returns, pointers loaded under the
// guard must no longer be dereferenced. Leave must be called exactly once
// per Enter.
func (g *Guard) Leave() {
	if g.c == nil {
		return
	}
	c := g.c
	c.readers[g.slot].epoch.Store(inactive)
	if c.pending.Load() >= retirePressure {
		c.Advance()
	}
}

// Retire schedules fn to run once no pinned guard can observe the object
// it destroys. Retire must be called while g is still pinned and after
// the object has been unlinked from the shared structure.
//
// On an unprotected guard, fn runs before Retire returns.
func (g *Guard) Retire(fn func()) {
	if g.c == nil {
		fn()
		return
	}
	g.c.retire(fn)
}
