// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio_graph

import (
	"errors"
	"sync"

	internal_audio_analyser "github.com/rapidaai/linguastream/internal/audio/analyser"
	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	"github.com/rapidaai/linguastream/pkg/commons"
)

type State string

const (
	StateRunning State = "running"
	StateClosed  State = "closed"
)

var ErrContextClosed = errors.New("audio context is closed")

// Sink consumes interleaved PCM pushed through the graph.
type Sink interface {
	Write(samples []int16, channels int)
}

// Context owns the processing graph built on top of capture streams. Closing
// it disconnects every source it created.
type Context struct {
	logger     commons.Logger
	sampleRate int

	mu      sync.Mutex
	state   State
	sources []*MediaStreamSource
}

func NewContext(logger commons.Logger, sampleRate int) *Context {
	return &Context{logger: logger, sampleRate: sampleRate, state: StateRunning}
}

func (c *Context) SampleRate() int { return c.sampleRate }

func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Context) CreateAnalyser(fftSize int, opts ...internal_audio_analyser.Option) (*internal_audio_analyser.Analyser, error) {
	if c.State() == StateClosed {
		return nil, ErrContextClosed
	}
	return internal_audio_analyser.New(fftSize, opts...)
}

func (c *Context) CreateMediaStreamSource(stream *internal_capture.Stream) (*MediaStreamSource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateClosed {
		return nil, ErrContextClosed
	}
	src := &MediaStreamSource{logger: c.logger, stream: stream}
	c.sources = append(c.sources, src)
	return src, nil
}

// Close is idempotent.
func (c *Context) Close() error {
	c.mu.Lock()
	if c.state == StateClosed {
		c.mu.Unlock()
		return nil
	}
	c.state = StateClosed
	sources := c.sources
	c.sources = nil
	c.mu.Unlock()

	for _, src := range sources {
		src.Disconnect()
	}
	c.logger.Debugf("audio context closed, %d sources disconnected", len(sources))
	return nil
}

// MediaStreamSource feeds frames of a capture stream into connected sinks.
type MediaStreamSource struct {
	logger commons.Logger
	stream *internal_capture.Stream

	mu          sync.Mutex
	sinks       []Sink
	unsubscribe func()
	done        chan struct{}
}

func (s *MediaStreamSource) Connect(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
	if s.done != nil {
		return
	}
	frames, unsubscribe := s.stream.Subscribe(internal_capture.DefaultSubscriberBuffer)
	s.unsubscribe = unsubscribe
	s.done = make(chan struct{})
	go s.run(frames, s.done)
}

func (s *MediaStreamSource) run(frames <-chan internal_capture.Frame, done chan struct{}) {
	defer close(done)
	for f := range frames {
		s.mu.Lock()
		sinks := append([]Sink(nil), s.sinks...)
		s.mu.Unlock()
		for _, sink := range sinks {
			sink.Write(f.Samples, f.Channels)
		}
	}
}

// Disconnect detaches every sink and waits for in-flight frames to drain.
func (s *MediaStreamSource) Disconnect() {
	s.mu.Lock()
	unsubscribe, done := s.unsubscribe, s.done
	s.unsubscribe, s.done, s.sinks = nil, nil, nil
	s.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
		<-done
	}
}
