// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package epoch provides epoch-based deferred memory reclamation for
// lock-free data structures.
//
// A [Guard] pins the current global epoch for the duration of a critical
// section. Any pointer loaded while a guard is pinned remains valid until
// the guard is released: objects removed from a shared structure are not
// destroyed directly but handed to [Guard.Retire], which defers the
// destruction callback until no pinned guard can still observe the object.
//
// # Usage
//
//	g := epoch.Enter()
//	defer g.Leave()
//	// loads of shared pointers are protected here
//	g.Retire(func() { free(node) })
//
// Reclamation runs opportunistically once enough retirements accumulate,
// or explicitly via [Advance]. A callback retired at epoch e runs only
// after the global epoch has advanced two steps past e, and the epoch can
// only advance when every pinned guard has observed the current value.
//
// [Unprotected] returns a guard for contexts that are provably exclusive
// (for example, teardown of a structure no other goroutine can reach).
// Retirements through an unprotected guard run immediately.
//
// The package uses [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, [code.hybscloud.com/spin] for CPU pause
// instructions, and [github.com/valyala/fastrand] for reader-slot probing.
package epoch
