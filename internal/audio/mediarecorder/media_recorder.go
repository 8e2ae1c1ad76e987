// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio_mediarecorder

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/at-wat/ebml-go/webm"
	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	"github.com/rapidaai/linguastream/pkg/commons"
)

type State string

const (
	StateInactive  State = "inactive"
	StateRecording State = "recording"
)

const (
	MimeTypeWebM     = "audio/webm"
	MimeTypeWebMOpus = "audio/webm;codecs=opus"

	// muxer flush deadline after the last block was written
	finalizeTimeout = 2 * time.Second
)

var (
	ErrUnsupportedMimeType = errors.New("unsupported mime type")
	ErrInvalidState        = errors.New("media recorder is not inactive")
)

// IsTypeSupported reports whether mimeType can be produced.
func IsTypeSupported(mimeType string) bool {
	switch normalizeMimeType(mimeType) {
	case MimeTypeWebM, MimeTypeWebMOpus:
		return true
	}
	return false
}

func normalizeMimeType(mimeType string) string {
	return strings.ToLower(strings.ReplaceAll(mimeType, " ", ""))
}

type Options struct {
	MimeType string
	// Encoder defaults to NewOpusEncoder.
	Encoder EncoderFactory
}

// MediaRecorder encodes a capture stream into WebM/Opus and hands out the
// container in timeslice-sized chunks. Chunks and the stop event are
// delivered from a single goroutine, in order, with the stop event last.
type MediaRecorder struct {
	logger   commons.Logger
	stream   *internal_capture.Stream
	mimeType string
	encoder  EncoderFactory

	mu       sync.Mutex
	state    State
	ondata   func([]byte)
	onstop   func()
	stopCh   chan struct{}
	stopOnce *sync.Once
	done     chan struct{}
}

func NewMediaRecorder(logger commons.Logger, stream *internal_capture.Stream, opts Options) (*MediaRecorder, error) {
	mimeType := opts.MimeType
	if mimeType == "" {
		mimeType = MimeTypeWebMOpus
	}
	if !IsTypeSupported(mimeType) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMimeType, mimeType)
	}
	encoder := opts.Encoder
	if encoder == nil {
		encoder = NewOpusEncoder
	}
	return &MediaRecorder{
		logger:   logger,
		stream:   stream,
		mimeType: mimeType,
		encoder:  encoder,
		state:    StateInactive,
	}, nil
}

func (m *MediaRecorder) MimeType() string { return m.mimeType }

func (m *MediaRecorder) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *MediaRecorder) OnDataAvailable(fn func([]byte)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ondata = fn
}

func (m *MediaRecorder) OnStop(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onstop = fn
}

// Start begins encoding. With a positive timeslice a chunk is emitted every
// timeslice, otherwise a single chunk is emitted on stop.
func (m *MediaRecorder) Start(timeslice time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateInactive {
		return ErrInvalidState
	}
	if !m.stream.Active() {
		return fmt.Errorf("stream %s has ended", m.stream.ID())
	}

	settings := m.stream.Settings()
	enc, err := m.encoder(settings.SampleRate, settings.ChannelCount)
	if err != nil {
		return fmt.Errorf("creating encoder: %w", err)
	}
	sink := newChunkSink()
	blocks, err := webm.NewSimpleBlockWriter(sink, []webm.TrackEntry{{
		Name:        "Audio",
		TrackNumber: 1,
		TrackUID:    1,
		CodecID:     "A_OPUS",
		TrackType:   2,
		Audio: &webm.Audio{
			SamplingFrequency: float64(settings.SampleRate),
			Channels:          uint64(settings.ChannelCount),
		},
	}})
	if err != nil {
		return fmt.Errorf("creating webm muxer: %w", err)
	}

	frames, unsubscribe := m.stream.Subscribe(internal_capture.ArchiveSubscriberBuffer)
	m.state = StateRecording
	m.stopCh = make(chan struct{})
	m.stopOnce = &sync.Once{}
	m.done = make(chan struct{})

	w := &worker{
		logger:      m.logger,
		encoder:     enc,
		block:       blocks[0],
		sink:        sink,
		sampleRate:  settings.SampleRate,
		channels:    settings.ChannelCount,
		frameLength: settings.SampleRate * settings.ChannelCount / 50,
		packet:      make([]byte, maxPacketSize),
	}
	go m.run(w, frames, unsubscribe, timeslice, m.stopCh, m.done)
	m.logger.Debugf("media recorder started on stream %s with timeslice %s", m.stream.ID(), timeslice)
	return nil
}

// Stop requests the final chunk and the stop event. It returns immediately;
// it is a no-op when the recorder is inactive.
func (m *MediaRecorder) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateRecording {
		return
	}
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// Done is closed after the stop event of the current recording was delivered.
func (m *MediaRecorder) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return m.done
}

func (m *MediaRecorder) run(w *worker, frames <-chan internal_capture.Frame, unsubscribe func(), timeslice time.Duration, stop <-chan struct{}, done chan struct{}) {
	defer close(done)

	var tick <-chan time.Time
	if timeslice > 0 {
		ticker := time.NewTicker(timeslice)
		defer ticker.Stop()
		tick = ticker.C
	}

loop:
	for {
		select {
		case f, ok := <-frames:
			if !ok {
				break loop
			}
			w.push(f.Samples)
		case <-tick:
			m.emit(w.sink.Drain())
		case <-stop:
			break loop
		}
	}

	unsubscribe()
	w.finish()
	m.emit(w.sink.Drain())

	m.mu.Lock()
	m.state = StateInactive
	onstop := m.onstop
	m.mu.Unlock()
	if onstop != nil {
		onstop()
	}
}

func (m *MediaRecorder) emit(data []byte) {
	m.mu.Lock()
	ondata := m.ondata
	m.mu.Unlock()
	if ondata != nil {
		ondata(data)
	}
}

// worker owns the encoder and the muxer of one recording.
type worker struct {
	logger      commons.Logger
	encoder     Encoder
	block       webm.BlockWriteCloser
	sink        *chunkSink
	sampleRate  int
	channels    int
	frameLength int
	packet      []byte

	pending []int16
	encoded int
	failed  bool
}

func (w *worker) push(samples []int16) {
	w.pending = append(w.pending, samples...)
	for len(w.pending) >= w.frameLength {
		w.encode(w.pending[:w.frameLength])
		w.pending = w.pending[w.frameLength:]
	}
}

func (w *worker) encode(frame []int16) {
	if w.failed {
		return
	}
	n, err := w.encoder.Encode(frame, w.packet)
	if err != nil {
		w.logger.Errorf("media recorder: encoding frame failed: %v", err)
		w.failed = true
		return
	}
	timestamp := int64(w.encoded/w.channels) * 1000 / int64(w.sampleRate)
	// the muxer marshals blocks on its own goroutine, so each block owns its bytes
	block := append([]byte(nil), w.packet[:n]...)
	if _, err := w.block.Write(true, timestamp, block); err != nil {
		w.logger.Errorf("media recorder: writing block failed: %v", err)
		w.failed = true
		return
	}
	w.encoded += len(frame)
}

// finish pads and encodes the trailing partial frame, then flushes the muxer.
func (w *worker) finish() {
	if len(w.pending) > 0 {
		frame := make([]int16, w.frameLength)
		copy(frame, w.pending)
		w.encode(frame)
		w.pending = nil
	}
	if err := w.block.Close(); err != nil {
		w.logger.Warnf("media recorder: closing muxer: %v", err)
	}
	select {
	case <-w.sink.closed:
	case <-time.After(finalizeTimeout):
		w.logger.Warnf("media recorder: muxer did not flush within %s", finalizeTimeout)
	}
}
