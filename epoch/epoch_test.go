// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package epoch_test

import (
	"testing"

	"code.hybscloud.com/useq/epoch"
)

// TestRetireDeferredWhilePinned verifies a retirement cannot run while
// the retiring guard is still pinned, and runs once the epoch has moved
// two steps past the retire point.
func TestRetireDeferredWhilePinned(t *testing.T) {
	c := epoch.NewCollector()

	g := c.Enter()
	ran := false
	g.Retire(func() { ran = true })

	// The pinned guard blocks the second advance the callback needs.
	for range 4 {
		c.Advance()
	}
	if ran {
		t.Fatal("retirement ran while guard was pinned")
	}

	g.Leave()
	for range 4 {
		c.Advance()
	}
	if !ran {
		t.Fatal("retirement did not run after leave and advance")
	}
}

// TestUnprotectedRunsImmediately verifies the unprotected guard executes
// retirements inline.
func TestUnprotectedRunsImmediately(t *testing.T) {
	g := epoch.Unprotected()
	ran := false
	g.Retire(func() { ran = true })
	if !ran {
		t.Fatal("unprotected retire did not run immediately")
	}
	g.Leave() // no-op, must not panic
}

// TestRetireBatch verifies every callback in a batch eventually runs.
func TestRetireBatch(t *testing.T) {
	c := epoch.NewCollector()

	const n = 100
	ran := 0
	g := c.Enter()
	for range n {
		g.Retire(func() { ran++ })
	}
	g.Leave()

	for range 8 {
		c.Advance()
	}
	if ran != n {
		t.Fatalf("ran %d of %d retirements", ran, n)
	}
}

// TestSecondGuardBlocksAdvance verifies a stale pinned guard stalls
// reclamation for retirements it might observe.
func TestSecondGuardBlocksAdvance(t *testing.T) {
	c := epoch.NewCollector()

	old := c.Enter() // pinned at the current epoch, never repins

	g := c.Enter()
	ran := false
	g.Retire(func() { ran = true })
	g.Leave()

	for range 8 {
		c.Advance()
	}
	if ran {
		t.Fatal("retirement ran while an older guard was still pinned")
	}

	old.Leave()
	for range 4 {
		c.Advance()
	}
	if !ran {
		t.Fatal("retirement did not run after the old guard left")
	}
}

// TestDefaultCollector smoke-tests the package-level entry points.
func TestDefaultCollector(t *testing.T) {
	if epoch.Default() == nil {
		t.Fatal("Default returned nil")
	}
	g := epoch.Enter()
	ran := false
	g.Retire(func() { ran = true })
	g.Leave()
	for range 4 {
		epoch.Advance()
	}
	if !ran {
		t.Fatal("default collector did not reclaim")
	}
}
