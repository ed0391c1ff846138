// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package useq

import (
	"unsafe"

	"code.hybscloud.com/useq/epoch"
)

// Producer is the interface for inserting elements.
//
// Push is infallible: the queue is unbounded and retries contention
// internally. The element is passed by pointer to avoid copying large
// structs; the queue stores a copy of the pointed-to value, so the
// original can be modified after Push returns.
type Producer[T any] interface {
	// Push inserts an element at the logical tail.
	// The guard must be pinned for the duration of the call.
	// Safe for any number of concurrent producers.
	Push(v *T, g *epoch.Guard)
}

// Consumer is the interface for removing elements.
//
// Both operations act on the oldest committed element only and return
// ErrWouldBlock when nothing can be removed. The returned pointer aims
// into queue storage and is valid only while the caller's guard stays
// pinned.
type Consumer[T any] interface {
	// Pop removes and returns the head element.
	// Returns (nil, ErrWouldBlock) if the queue is empty.
	// Safe for any number of concurrent consumers.
	Pop(g *epoch.Guard) (*T, error)

	// PopIf removes the head element only if pred accepts it. Not a
	// scan: a head element failing pred returns (nil, ErrWouldBlock)
	// even when a later element would match.
	PopIf(pred func(*T) bool, g *epoch.Guard) (*T, error)
}

// FIFO is the combined producer-consumer interface, implemented by
// [Queue].
//
// The interface intentionally excludes length because accurate counts in
// lock-free algorithms require expensive cross-core synchronization.
// Track counts in application logic when needed.
type FIFO[T any] interface {
	Producer[T]
	Consumer[T]
}

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte

// padPtr is padding to fill cache line after pointer-sized field.
type padPtr [64 - ptrSize]byte
