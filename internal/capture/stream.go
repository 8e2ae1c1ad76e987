// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_capture

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rapidaai/linguastream/pkg/commons"
)

const (
	// FrameDuration is the capture buffer length delivered per Frame.
	FrameDuration = 20 * time.Millisecond
	// DefaultSubscriberBuffer holds about two seconds of frames.
	DefaultSubscriberBuffer = 100
	// ArchiveSubscriberBuffer holds thirty seconds of frames for consumers
	// whose output must match capture, such as encoders and file taps.
	ArchiveSubscriberBuffer = 1500
)

// Frame is one buffer of interleaved 16-bit PCM.
type Frame struct {
	Samples    []int16
	SampleRate int
	Channels   int
	Timestamp  time.Time
}

// Track is the single audio track of a Stream.
type Track struct {
	stream   *Stream
	settings Settings
}

func (t *Track) Kind() string { return "audio" }

func (t *Track) Label() string { return t.settings.Label }

func (t *Track) Settings() Settings { return t.settings }

// Stop ends the track. Stopping the only track ends the stream.
func (t *Track) Stop() { t.stream.stop() }

func (t *Track) Live() bool { return t.stream.Active() }

// Stream fans out frames read from one Input to any number of subscribers.
// Subscribers that fall behind lose frames rather than stall capture.
type Stream struct {
	id     string
	logger commons.Logger
	input  Input
	tracks []*Track

	mu      sync.Mutex
	subs    map[int]chan Frame
	nextSub int
	stopped bool
	dropped int

	stopOnce sync.Once
	done     chan struct{}
}

func newStream(logger commons.Logger, input Input) *Stream {
	s := &Stream{
		id:     uuid.NewString(),
		logger: logger,
		input:  input,
		subs:   make(map[int]chan Frame),
		done:   make(chan struct{}),
	}
	s.tracks = []*Track{{stream: s, settings: input.Settings()}}
	go s.pump()
	return s
}

func (s *Stream) ID() string { return s.id }

func (s *Stream) Tracks() []*Track { return s.tracks }

func (s *Stream) Settings() Settings { return s.input.Settings() }

func (s *Stream) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}

// Subscribe returns a channel of frames and a function that unsubscribes.
// The channel is closed when the stream ends or on unsubscribe.
func (s *Stream) Subscribe(buffer int) (<-chan Frame, func()) {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	ch := make(chan Frame, buffer)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

// Dropped is the number of frames discarded for lagging subscribers.
func (s *Stream) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Done is closed once the pump exited and every subscriber channel is closed.
func (s *Stream) Done() <-chan struct{} { return s.done }

func (s *Stream) stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		if err := s.input.Close(); err != nil {
			s.logger.Warnf("capture: closing input of stream %s: %v", s.id, err)
		}
		<-s.done
	})
}

func (s *Stream) pump() {
	defer s.finish()
	settings := s.input.Settings()
	samplesPerFrame := settings.SampleRate * settings.ChannelCount * int(FrameDuration/time.Millisecond) / 1000
	if samplesPerFrame <= 0 {
		samplesPerFrame = 320
	}
	buf := make([]int16, samplesPerFrame)
	for {
		if err := s.input.Read(buf); err != nil {
			if !errors.Is(err, io.EOF) && s.Active() {
				s.logger.Errorf("capture: stream %s read failed: %v", s.id, err)
			}
			return
		}
		frame := Frame{
			Samples:    append([]int16(nil), buf...),
			SampleRate: settings.SampleRate,
			Channels:   settings.ChannelCount,
			Timestamp:  time.Now(),
		}
		s.broadcast(frame)
	}
}

func (s *Stream) broadcast(f Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	for _, ch := range s.subs {
		select {
		case ch <- f:
		default:
			s.dropped++
			if s.dropped%50 == 1 {
				s.logger.Warnf("capture: stream %s subscriber lagging, %d frames dropped", s.id, s.dropped)
			}
		}
	}
}

func (s *Stream) finish() {
	s.mu.Lock()
	s.stopped = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.mu.Unlock()
	close(s.done)
}
