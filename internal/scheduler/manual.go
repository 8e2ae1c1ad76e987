// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_scheduler

import (
	"sort"
	"sync"
	"time"
)

type manualInterval struct {
	every time.Duration
	due   time.Time
	fn    func()
}

// Manual is a deterministic Scheduler: frames run on Frame, intervals on Advance.
type Manual struct {
	mu        sync.Mutex
	now       time.Time
	next      Handle
	frames    map[Handle]func()
	intervals map[Handle]*manualInterval
}

func NewManual(start time.Time) *Manual {
	return &Manual{
		now:       start,
		frames:    make(map[Handle]func()),
		intervals: make(map[Handle]*manualInterval),
	}
}

func (m *Manual) RequestFrame(fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.frames[m.next] = fn
	return m.next
}

func (m *Manual) CancelFrame(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.frames, h)
}

func (m *Manual) SetInterval(d time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.next++
	m.intervals[m.next] = &manualInterval{every: d, due: m.now.Add(d), fn: fn}
	return m.next
}

func (m *Manual) ClearInterval(h Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.intervals, h)
}

func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Frame runs every callback pending at the time of the call, in request order.
// Callbacks requested while running wait for the next Frame.
func (m *Manual) Frame() int {
	m.mu.Lock()
	handles := make([]Handle, 0, len(m.frames))
	for h := range m.frames {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	fns := make([]func(), 0, len(handles))
	for _, h := range handles {
		fns = append(fns, m.frames[h])
		delete(m.frames, h)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Advance moves the clock forward and fires intervals that came due.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()

	for {
		m.mu.Lock()
		var (
			nextH Handle
			next  *manualInterval
		)
		for h, iv := range m.intervals {
			if iv.due.After(target) {
				continue
			}
			if next == nil || iv.due.Before(next.due) || (iv.due.Equal(next.due) && h < nextH) {
				nextH, next = h, iv
			}
		}
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.due
		next.due = next.due.Add(next.every)
		fn := next.fn
		m.mu.Unlock()
		fn()
	}
}

func (m *Manual) PendingFrames() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.frames)
}

func (m *Manual) ActiveIntervals() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.intervals)
}
