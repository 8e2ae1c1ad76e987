// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recorder

import (
	"context"
	"fmt"
	"strconv"
	"time"

	internal_clip "github.com/rapidaai/linguastream/internal/clip"
	internal_permission "github.com/rapidaai/linguastream/internal/permission"
	internal_presenter "github.com/rapidaai/linguastream/internal/presenter"
	internal_scheduler "github.com/rapidaai/linguastream/internal/scheduler"
	internal_type "github.com/rapidaai/linguastream/internal/type"
	transcription_client "github.com/rapidaai/linguastream/pkg/clients/transcription"
	"github.com/rapidaai/linguastream/pkg/commons"
	"github.com/rapidaai/linguastream/pkg/utils"
)

// UploadRecorder acquires the microphone on demand, remembers the grant,
// renders the timer and level bar through a presenter and uploads the clip
// for transcription.
type UploadRecorder struct {
	core
	store     internal_permission.Store
	client    transcription_client.TranscriptionServiceClient
	presenter internal_presenter.Presenter

	// guarded by core.mu
	startTime   time.Time
	timerHandle internal_scheduler.Handle
}

var _ internal_type.Recorder = (*UploadRecorder)(nil)

func NewUploadRecorder(
	logger commons.Logger,
	devices MediaSource,
	store internal_permission.Store,
	client transcription_client.TranscriptionServiceClient,
	presenter internal_presenter.Presenter,
	opts ...Option,
) *UploadRecorder {
	return &UploadRecorder{
		core:      newCore(logger, devices, opts),
		store:     store,
		client:    client,
		presenter: presenter,
	}
}

// RequestMicrophonePermission acquires the microphone and persists the grant;
// on failure the persisted grant is cleared.
func (u *UploadRecorder) RequestMicrophonePermission(ctx context.Context) bool {
	if err := u.acquire(ctx); err != nil {
		u.logger.Errorf("error accessing microphone: %v", err)
		if err := internal_permission.Revoke(ctx, u.store); err != nil {
			u.logger.Warnf("failed to clear microphone permission: %v", err)
		}
		return false
	}
	if err := internal_permission.Grant(ctx, u.store); err != nil {
		u.logger.Warnf("failed to persist microphone permission: %v", err)
	}
	return true
}

// StartRecording acquires the microphone first when needed.
func (u *UploadRecorder) StartRecording(ctx context.Context) bool {
	if u.IsRecording() {
		u.logger.Warnf("recording already in progress, start ignored")
		return false
	}
	if !u.hasSession() && !u.RequestMicrophonePermission(ctx) {
		u.logger.Errorf("error starting recording: microphone access denied")
		return false
	}

	u.mu.Lock()
	if !u.startLocked() {
		u.mu.Unlock()
		return false
	}
	u.startTime = u.opts.scheduler.Now()
	u.timerHandle = u.opts.scheduler.SetInterval(u.opts.timerInterval, u.updateTimer)
	hasAnalyser := u.session.analyser != nil
	u.mu.Unlock()

	if hasAnalyser {
		u.monitor(u.updateLevel)
	}
	return true
}

// StopRecording also stops the timer and the level bar.
func (u *UploadRecorder) StopRecording(ctx context.Context) (*internal_clip.Blob, error) {
	blob, err := u.stop(ctx)
	if blob == nil {
		return blob, err
	}
	u.clearTimer()
	u.StopAudioLevelMonitoring()
	return blob, nil
}

func (u *UploadRecorder) clearTimer() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.opts.scheduler.ClearInterval(u.timerHandle)
	u.timerHandle = 0
}

func (u *UploadRecorder) updateTimer() {
	u.mu.Lock()
	start := u.startTime
	u.mu.Unlock()
	if start.IsZero() {
		return
	}
	u.presenter.SetText(internal_presenter.RecordingTimer, FormatElapsed(u.opts.scheduler.Now().Sub(start)))
}

// FormatElapsed renders d as zero padded MM:SS.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes := int(d / time.Minute)
	seconds := int((d % time.Minute) / time.Second)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// LevelPercentage maps a [0, 255] level to the bar width, capped at 100.
func LevelPercentage(level float64) float64 {
	return utils.MinFloat64(level*2, 100)
}

func (u *UploadRecorder) updateLevel() {
	width := strconv.FormatFloat(LevelPercentage(u.level()), 'f', -1, 64) + "%"
	u.presenter.SetStyle(internal_presenter.AudioLevelBar, "width", width)
}

// StopAudioLevelMonitoring cancels the level loop and empties the bar.
func (u *UploadRecorder) StopAudioLevelMonitoring() {
	u.stopMonitor()
	u.presenter.SetStyle(internal_presenter.AudioLevelBar, "width", "0%")
}

// ProcessRecordedAudio uploads blob; failures come back as an unsuccessful
// result, never as an error.
func (u *UploadRecorder) ProcessRecordedAudio(ctx context.Context, blob *internal_clip.Blob) transcription_client.UploadResult {
	return u.client.ProcessAudio(ctx, blob)
}

func (u *UploadRecorder) UpdateUI(status, message string) {
	internal_presenter.UpdateUI(u.presenter, status, message)
}

func (u *UploadRecorder) GetStatusColor(status string) string {
	return internal_presenter.StatusColor(status)
}

// Cleanup is idempotent and safe before acquisition.
func (u *UploadRecorder) Cleanup() {
	u.StopAudioLevelMonitoring()
	u.clearTimer()
	u.teardown()
	u.mu.Lock()
	u.startTime = time.Time{}
	u.mu.Unlock()
	u.logger.Debugf("upload recorder cleaned up")
}
