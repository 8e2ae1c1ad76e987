// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_controller

import (
	"context"
	"errors"

	internal_clip "github.com/rapidaai/linguastream/internal/clip"
	internal_permission "github.com/rapidaai/linguastream/internal/permission"
	internal_presenter "github.com/rapidaai/linguastream/internal/presenter"
	internal_type "github.com/rapidaai/linguastream/internal/type"
	transcription_client "github.com/rapidaai/linguastream/pkg/clients/transcription"
	"github.com/rapidaai/linguastream/pkg/commons"
)

var ErrStartFailed = errors.New("error starting recording: microphone access denied")

// Recorder is the upload-capable recorder the controller drives.
type Recorder interface {
	internal_type.Recorder
	ProcessRecordedAudio(ctx context.Context, blob *internal_clip.Blob) transcription_client.UploadResult
	UpdateUI(status, message string)
}

// Controller owns one recorder and translates record/stop actions into
// presenter updates.
type Controller struct {
	logger    commons.Logger
	recorder  Recorder
	store     internal_permission.Store
	presenter internal_presenter.Presenter
}

func NewController(logger commons.Logger, recorder Recorder, store internal_permission.Store, presenter internal_presenter.Presenter) *Controller {
	return &Controller{logger: logger, recorder: recorder, store: store, presenter: presenter}
}

// Ready resets the buttons and the status line.
func (c *Controller) Ready() {
	c.showRecordButton()
	c.recorder.UpdateUI(internal_presenter.StatusReady, "Ready to record")
}

// Restore re-requests the microphone when a previous run was granted access.
// It reports whether the microphone is now acquired.
func (c *Controller) Restore(ctx context.Context) bool {
	granted, err := internal_permission.IsGranted(ctx, c.store)
	if err != nil {
		c.logger.Errorf("error checking microphone permission: %v", err)
		return false
	}
	if !granted {
		c.logger.Infof("microphone permission has not been granted yet")
		return false
	}
	c.logger.Infof("microphone permission was granted before, requesting access again")
	if c.recorder.RequestMicrophonePermission(ctx) {
		c.logger.Infof("microphone access confirmed")
		return true
	}
	c.logger.Warnf("microphone access denied")
	if err := internal_permission.Revoke(ctx, c.store); err != nil {
		c.logger.Warnf("failed to clear microphone permission: %v", err)
	}
	return false
}

func (c *Controller) Start(ctx context.Context) error {
	if !c.recorder.StartRecording(ctx) {
		c.presenter.Alert(ErrStartFailed.Error())
		return ErrStartFailed
	}
	c.presenter.SetStyle(internal_presenter.RecordButton, "display", "none")
	c.presenter.SetStyle(internal_presenter.StopButton, "display", "inline-block")
	c.recorder.UpdateUI(internal_presenter.StatusRecording, "Recording...")
	return nil
}

// Finish stops recording and restores the buttons. The blob is nil when
// nothing was being recorded.
func (c *Controller) Finish(ctx context.Context) (*internal_clip.Blob, error) {
	blob, err := c.recorder.StopRecording(ctx)
	if err != nil {
		c.recorder.UpdateUI(internal_presenter.StatusError, "❌ Error: "+err.Error())
		return nil, err
	}
	if blob == nil {
		return nil, nil
	}
	c.showRecordButton()
	return blob, nil
}

// Upload sends blob for transcription and renders the outcome.
func (c *Controller) Upload(ctx context.Context, blob *internal_clip.Blob) transcription_client.UploadResult {
	c.recorder.UpdateUI(internal_presenter.StatusProcessing, "Processing audio...")
	result := c.recorder.ProcessRecordedAudio(ctx, blob)
	if result.Success {
		c.recorder.UpdateUI(internal_presenter.StatusSuccess, "✅ Transcription: "+result.Transcription)
	} else {
		c.recorder.UpdateUI(internal_presenter.StatusError, "❌ Error: "+result.Error)
	}
	return result
}

// Stop finishes the recording and uploads it. It returns nil, nil when
// nothing was being recorded.
func (c *Controller) Stop(ctx context.Context) (*transcription_client.UploadResult, error) {
	blob, err := c.Finish(ctx)
	if err != nil || blob == nil {
		return nil, err
	}
	result := c.Upload(ctx, blob)
	return &result, nil
}

func (c *Controller) showRecordButton() {
	c.presenter.SetStyle(internal_presenter.RecordButton, "display", "inline-block")
	c.presenter.SetStyle(internal_presenter.StopButton, "display", "none")
}
