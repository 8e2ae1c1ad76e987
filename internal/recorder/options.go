// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recorder

import (
	"context"
	"time"

	internal_audio_mediarecorder "github.com/rapidaai/linguastream/internal/audio/mediarecorder"
	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	internal_scheduler "github.com/rapidaai/linguastream/internal/scheduler"
	internal_type "github.com/rapidaai/linguastream/internal/type"
	"github.com/rapidaai/linguastream/pkg/commons"
)

const (
	DefaultTimeslice     = 100 * time.Millisecond
	DefaultTimerInterval = 100 * time.Millisecond
	DefaultFFTSize       = 256
)

// MediaSource hands out microphone streams; *internal_capture.MediaDevices
// is the production implementation.
type MediaSource interface {
	GetUserMedia(ctx context.Context, c internal_capture.Constraints) (*internal_capture.Stream, error)
}

// MediaRecorderFactory builds the encoder pipeline for one recording.
type MediaRecorderFactory func(stream *internal_capture.Stream) (internal_type.MediaRecorder, error)

// NewWebMRecorderFactory produces WebM/Opus media recorders for mimeType.
func NewWebMRecorderFactory(logger commons.Logger, mimeType string) MediaRecorderFactory {
	return func(stream *internal_capture.Stream) (internal_type.MediaRecorder, error) {
		return internal_audio_mediarecorder.NewMediaRecorder(logger, stream, internal_audio_mediarecorder.Options{MimeType: mimeType})
	}
}

type options struct {
	scheduler     internal_scheduler.Scheduler
	mediaRecorder MediaRecorderFactory
	constraints   internal_capture.Constraints
	timeslice     time.Duration
	timerInterval time.Duration
	fftSize       int
}

type Option func(*options)

func WithScheduler(s internal_scheduler.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

func WithMediaRecorderFactory(f MediaRecorderFactory) Option {
	return func(o *options) { o.mediaRecorder = f }
}

func WithConstraints(c internal_capture.Constraints) Option {
	return func(o *options) { o.constraints = c }
}

// WithTimeslice sets the chunk interval handed to the media recorder.
func WithTimeslice(d time.Duration) Option {
	return func(o *options) { o.timeslice = d }
}

// WithTimerInterval sets how often the elapsed time display is refreshed.
func WithTimerInterval(d time.Duration) Option {
	return func(o *options) { o.timerInterval = d }
}

func WithFFTSize(n int) Option {
	return func(o *options) { o.fftSize = n }
}

func newOptions(logger commons.Logger, opts []Option) *options {
	o := &options{
		constraints:   internal_capture.DefaultConstraints(),
		timeslice:     DefaultTimeslice,
		timerInterval: DefaultTimerInterval,
		fftSize:       DefaultFFTSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.scheduler == nil {
		o.scheduler = internal_scheduler.NewTickerScheduler(0)
	}
	if o.mediaRecorder == nil {
		o.mediaRecorder = NewWebMRecorderFactory(logger, internal_audio_mediarecorder.MimeTypeWebMOpus)
	}
	return o
}
