// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recorder

import (
	"context"
	"sync"

	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	internal_clip "github.com/rapidaai/linguastream/internal/clip"
	internal_scheduler "github.com/rapidaai/linguastream/internal/scheduler"
	internal_type "github.com/rapidaai/linguastream/internal/type"
	"github.com/rapidaai/linguastream/pkg/commons"
	"github.com/rapidaai/linguastream/pkg/utils"
)

// core is the capture state machine shared by both recorders. Callbacks from
// the media recorder and the scheduler take mu; mu is never held while
// waiting for them.
type core struct {
	logger  commons.Logger
	devices MediaSource
	opts    *options

	mu            sync.Mutex
	session       *session
	mediaRecorder internal_type.MediaRecorder
	chunks        [][]byte
	recording     bool
	stopped       chan struct{}
	// bumped per recording and on cleanup so late chunks are dropped
	generation uint64

	levelHandle     internal_scheduler.Handle
	levelGeneration uint64
}

func newCore(logger commons.Logger, devices MediaSource, opts []Option) core {
	return core{logger: logger, devices: devices, opts: newOptions(logger, opts)}
}

// acquire opens a new session and installs it. While recording the current
// session is kept and acquire reports success.
func (c *core) acquire(ctx context.Context) error {
	c.mu.Lock()
	if c.recording && c.session != nil {
		c.mu.Unlock()
		c.logger.Warnf("microphone already in use by an active recording")
		return nil
	}
	c.mu.Unlock()

	s, err := openSession(ctx, c.logger, c.devices, c.opts.constraints, c.opts.fftSize)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.recording && c.session != nil {
		c.mu.Unlock()
		s.release()
		return nil
	}
	previous := c.session
	c.session = s
	c.mu.Unlock()

	if previous != nil {
		previous.release()
	}
	c.logger.Infof("microphone access granted on stream %s", s.stream.ID())
	return nil
}

func (c *core) hasSession() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Stream is the acquired microphone stream, nil before acquisition.
func (c *core) Stream() *internal_capture.Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	return c.session.stream
}

func (c *core) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// startLocked wires a fresh media recorder to the session. c.mu must be held.
func (c *core) startLocked() bool {
	if c.recording {
		c.logger.Warnf("recording already in progress, start ignored")
		return false
	}
	if c.session == nil {
		c.logger.Errorf("no microphone stream available")
		return false
	}
	mr, err := c.opts.mediaRecorder(c.session.stream)
	if err != nil {
		c.logger.Errorf("error starting recording: %v", err)
		return false
	}

	c.generation++
	generation := c.generation
	stopped := make(chan struct{})
	var once sync.Once
	mr.OnDataAvailable(func(data []byte) { c.collect(generation, data) })
	mr.OnStop(func() { once.Do(func() { close(stopped) }) })

	c.chunks = nil
	c.recording = true
	if err := mr.Start(c.opts.timeslice); err != nil {
		c.recording = false
		c.logger.Errorf("error starting recording: %v", err)
		return false
	}
	c.mediaRecorder = mr
	c.stopped = stopped
	c.logger.Infof("recording started")
	return true
}

// collect appends a delivered chunk when it is non-empty and belongs to the
// current recording.
func (c *core) collect(generation uint64, data []byte) {
	if len(data) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.recording || generation != c.generation {
		return
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	c.chunks = append(c.chunks, chunk)
}

// stop finalizes the active recording into a blob. It returns nil, nil when
// idle and an error only when ctx ends before the stop event.
func (c *core) stop(ctx context.Context) (*internal_clip.Blob, error) {
	c.mu.Lock()
	if !c.recording || c.mediaRecorder == nil {
		c.mu.Unlock()
		return nil, nil
	}
	mr, stopped, generation := c.mediaRecorder, c.stopped, c.generation
	c.mu.Unlock()

	mr.Stop()
	select {
	case <-stopped:
	case <-ctx.Done():
		c.logger.Errorf("error stopping recording: %v", ctx.Err())
		return nil, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.recording || generation != c.generation {
		return nil, nil
	}
	blob := internal_clip.NewBlob(c.chunks, internal_clip.MimeTypeWebM)
	c.recording = false
	c.mediaRecorder = nil
	c.stopped = nil
	c.chunks = nil
	c.logger.Infof("recording stopped, %d bytes", blob.Size())
	return blob, nil
}

// level samples the analyser; 0 while idle or without a session.
func (c *core) level() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.recording || c.session == nil || c.session.analyser == nil {
		return 0
	}
	c.session.analyser.GetByteFrequencyData(c.session.data)
	return utils.AverageUint8(c.session.data)
}

// monitor runs tick on every frame while recording. It replaces any running
// loop.
func (c *core) monitor(tick func()) {
	c.mu.Lock()
	c.opts.scheduler.CancelFrame(c.levelHandle)
	c.levelHandle = 0
	c.levelGeneration++
	generation := c.levelGeneration
	c.mu.Unlock()

	var frame func()
	frame = func() {
		if !c.IsRecording() {
			return
		}
		tick()
		c.mu.Lock()
		defer c.mu.Unlock()
		if generation != c.levelGeneration || !c.recording {
			return
		}
		c.levelHandle = c.opts.scheduler.RequestFrame(frame)
	}
	frame()
}

func (c *core) stopMonitor() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts.scheduler.CancelFrame(c.levelHandle)
	c.levelHandle = 0
	c.levelGeneration++
}

// teardown releases everything. It is safe from any state.
func (c *core) teardown() {
	c.stopMonitor()

	c.mu.Lock()
	s, mr := c.session, c.mediaRecorder
	c.session = nil
	c.mediaRecorder = nil
	c.stopped = nil
	c.recording = false
	c.chunks = nil
	c.generation++
	c.mu.Unlock()

	if mr != nil {
		mr.Stop()
	}
	if s != nil {
		s.release()
	}
}
