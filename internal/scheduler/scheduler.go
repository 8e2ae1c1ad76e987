// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_scheduler

import (
	"sync"
	"time"
)

// Handle identifies a pending frame callback or interval. Zero is never issued.
type Handle uint64

// Scheduler is the tick abstraction the recorders drive their level loop and
// elapsed-time display with. A frame callback fires once; loops re-request.
type Scheduler interface {
	RequestFrame(fn func()) Handle
	CancelFrame(h Handle)
	SetInterval(d time.Duration, fn func()) Handle
	ClearInterval(h Handle)
	Now() time.Time
}

// tickerScheduler runs callbacks on timer goroutines.
type tickerScheduler struct {
	mu            sync.Mutex
	frameInterval time.Duration
	next          Handle
	frames        map[Handle]*time.Timer
	intervals     map[Handle]chan struct{}
}

// NewTickerScheduler emulates a display refresh with the given frame interval
// (16ms for ~60 frames per second).
func NewTickerScheduler(frameInterval time.Duration) Scheduler {
	if frameInterval <= 0 {
		frameInterval = 16 * time.Millisecond
	}
	return &tickerScheduler{
		frameInterval: frameInterval,
		frames:        make(map[Handle]*time.Timer),
		intervals:     make(map[Handle]chan struct{}),
	}
}

func (s *tickerScheduler) RequestFrame(fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	s.frames[h] = time.AfterFunc(s.frameInterval, func() {
		s.mu.Lock()
		_, pending := s.frames[h]
		delete(s.frames, h)
		s.mu.Unlock()
		if pending {
			fn()
		}
	})
	return h
}

func (s *tickerScheduler) CancelFrame(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.frames[h]; ok {
		t.Stop()
		delete(s.frames, h)
	}
}

func (s *tickerScheduler) SetInterval(d time.Duration, fn func()) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	h := s.next
	stop := make(chan struct{})
	s.intervals[h] = stop
	go func() {
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				// a tick racing with ClearInterval is dropped
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

func (s *tickerScheduler) ClearInterval(h Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stop, ok := s.intervals[h]; ok {
		close(stop)
		delete(s.intervals, h)
	}
}

func (s *tickerScheduler) Now() time.Time { return time.Now() }
