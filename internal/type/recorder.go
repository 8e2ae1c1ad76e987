// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_type

import (
	"context"
	"time"

	internal_clip "github.com/rapidaai/linguastream/internal/clip"
)

// MediaRecorder encodes a stream into chunks. OnStop fires once per Start,
// after the last OnDataAvailable of that recording.
type MediaRecorder interface {
	OnDataAvailable(func([]byte))
	OnStop(func())
	Start(timeslice time.Duration) error
	// Stop is asynchronous; completion is signalled through OnStop.
	Stop()
}

// FrequencyAnalyser exposes the byte frequency spectrum of the live input.
type FrequencyAnalyser interface {
	FrequencyBinCount() int
	GetByteFrequencyData(dst []uint8)
}

// Recorder captures microphone audio into a clip.
type Recorder interface {
	// RequestMicrophonePermission acquires the capture session. It never
	// returns an error; failures are logged and reported as false.
	RequestMicrophonePermission(ctx context.Context) bool
	StartRecording(ctx context.Context) bool
	// StopRecording returns nil, nil when nothing is being recorded.
	StopRecording(ctx context.Context) (*internal_clip.Blob, error)
	IsRecording() bool
	Cleanup()
}
