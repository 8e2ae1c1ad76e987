// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recorder

import (
	"context"

	internal_clip "github.com/rapidaai/linguastream/internal/clip"
	internal_type "github.com/rapidaai/linguastream/internal/type"
	"github.com/rapidaai/linguastream/pkg/commons"
)

// Recorder is the basic recorder: the caller acquires the microphone first
// and drives level visualization through a callback.
type Recorder struct {
	core
}

var _ internal_type.Recorder = (*Recorder)(nil)

func NewRecorder(logger commons.Logger, devices MediaSource, opts ...Option) *Recorder {
	return &Recorder{core: newCore(logger, devices, opts)}
}

func (r *Recorder) RequestMicrophonePermission(ctx context.Context) bool {
	if err := r.acquire(ctx); err != nil {
		r.logger.Errorf("error accessing microphone: %v", err)
		return false
	}
	return true
}

// StartRecording requires a prior successful RequestMicrophonePermission.
func (r *Recorder) StartRecording(ctx context.Context) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.startLocked()
}

func (r *Recorder) StopRecording(ctx context.Context) (*internal_clip.Blob, error) {
	return r.stop(ctx)
}

// GetAudioLevel is the mean of the frequency bins in [0, 255], 0 when idle.
func (r *Recorder) GetAudioLevel() float64 {
	return r.level()
}

// StartAudioLevelMonitoring calls callback with the level once per frame
// while recording.
func (r *Recorder) StartAudioLevelMonitoring(callback func(level float64)) {
	r.monitor(func() { callback(r.GetAudioLevel()) })
}

func (r *Recorder) StopAudioLevelMonitoring() {
	r.stopMonitor()
}

// Cleanup is idempotent and safe before acquisition.
func (r *Recorder) Cleanup() {
	r.teardown()
	r.logger.Debugf("recorder cleaned up")
}
