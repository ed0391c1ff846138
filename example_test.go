// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file contains examples that use atomix concurrency primitives.
// These trigger false positives with Go's race detector because atomix
// atomic operations appear as regular memory accesses to the detector.
// The examples are correct; they're excluded from race testing.

package useq_test

import (
	"fmt"

	"code.hybscloud.com/useq"
	"code.hybscloud.com/useq/epoch"
)

// ExampleNew demonstrates basic push and pop through a guard.
func ExampleNew() {
	q := useq.New[int]()

	g := epoch.Enter()
	defer g.Leave()

	for i := 1; i <= 5; i++ {
		v := i * 10
		q.Push(&v, &g)
	}

	for {
		p, err := q.Pop(&g)
		if err != nil {
			break
		}
		fmt.Println(*p)
	}

	// Output:
	// 10
	// 20
	// 30
	// 40
	// 50
}

// ExampleQueue_PopIf demonstrates predicate gating: only the head
// element is offered to the predicate.
func ExampleQueue_PopIf() {
	q := useq.New[int]()

	g := epoch.Enter()
	defer g.Leave()

	a, b := 5, 10
	q.Push(&a, &g)
	q.Push(&b, &g)

	is := func(want int) func(*int) bool {
		return func(x *int) bool { return *x == want }
	}

	if _, err := q.PopIf(is(10), &g); useq.IsWouldBlock(err) {
		fmt.Println("10 is not at the head")
	}
	if p, err := q.PopIf(is(5), &g); err == nil {
		fmt.Println("took", *p)
	}
	if p, err := q.PopIf(is(10), &g); err == nil {
		fmt.Println("took", *p)
	}

	// Output:
	// 10 is not at the head
	// took 5
	// took 10
}

// ExampleNewPoolAllocator demonstrates segment recycling.
func ExampleNewPoolAllocator() {
	q := useq.NewQueue[string](useq.NewPoolAllocator[string]())

	g := epoch.Enter()
	defer g.Leave()

	for _, s := range []string{"a", "b", "c"} {
		q.Push(&s, &g)
	}
	for {
		p, err := q.Pop(&g)
		if err != nil {
			break
		}
		fmt.Println(*p)
	}

	// Output:
	// a
	// b
	// c
}
