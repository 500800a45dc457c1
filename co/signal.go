// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Signal a rendezvous point for goroutines waiting for the occurrence of an event.
// It's channel based, so waiting can be combined with other channels in a select.
// The zero value is ready to use.
type Signal struct {
	l  sync.Mutex
	ch chan struct{}
}

func (s *Signal) init() {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
}

// Broadcast wakes all goroutines that are waiting on s.
func (s *Signal) Broadcast() {
	s.l.Lock()

	s.init()
	close(s.ch)
	s.ch = make(chan struct{})

	s.l.Unlock()
}

// NewWaiter create a Waiter for acquiring channels to wait on.
// Broadcasts that happen after the waiter is created are never missed.
func (s *Signal) NewWaiter() *Waiter {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	return &Waiter{s: s, ref: s.ch}
}

// Waiter tracks the broadcasts observed by one goroutine.
type Waiter struct {
	s   *Signal
	ref chan struct{}
}

// C returns the channel closed by the next unobserved broadcast.
func (w *Waiter) C() <-chan struct{} {
	ch := w.ref

	w.s.l.Lock()
	w.s.init()
	w.ref = w.s.ch
	w.s.l.Unlock()

	return ch
}
