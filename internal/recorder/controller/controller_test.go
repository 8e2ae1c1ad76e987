// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rapidaai/linguastream/config"
	internal_audio_mediarecorder "github.com/rapidaai/linguastream/internal/audio/mediarecorder"
	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	internal_clip "github.com/rapidaai/linguastream/internal/clip"
	internal_permission "github.com/rapidaai/linguastream/internal/permission"
	internal_presenter "github.com/rapidaai/linguastream/internal/presenter"
	internal_recorder "github.com/rapidaai/linguastream/internal/recorder"
	internal_type "github.com/rapidaai/linguastream/internal/type"
	transcription_client "github.com/rapidaai/linguastream/pkg/clients/transcription"
	"github.com/rapidaai/linguastream/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecorder struct {
	permission bool
	start      bool
	blob       *internal_clip.Blob
	stopErr    error
	result     transcription_client.UploadResult

	permissionCalls int
	uploads         int
	presenter       internal_presenter.Presenter
}

func (f *fakeRecorder) RequestMicrophonePermission(ctx context.Context) bool {
	f.permissionCalls++
	return f.permission
}

func (f *fakeRecorder) StartRecording(ctx context.Context) bool { return f.start }

func (f *fakeRecorder) StopRecording(ctx context.Context) (*internal_clip.Blob, error) {
	return f.blob, f.stopErr
}

func (f *fakeRecorder) IsRecording() bool { return false }

func (f *fakeRecorder) Cleanup() {}

func (f *fakeRecorder) ProcessRecordedAudio(ctx context.Context, blob *internal_clip.Blob) transcription_client.UploadResult {
	f.uploads++
	return f.result
}

func (f *fakeRecorder) UpdateUI(status, message string) {
	internal_presenter.UpdateUI(f.presenter, status, message)
}

func newFixture(t *testing.T, rec *fakeRecorder) (*Controller, *internal_presenter.Recording, internal_permission.Store) {
	t.Helper()
	p := internal_presenter.NewRecording()
	rec.presenter = p
	store := internal_permission.NewFileStore(commons.NewNopLogger(), filepath.Join(t.TempDir(), "permission.json"))
	return NewController(commons.NewNopLogger(), rec, store, p), p, store
}

func TestController_StartSuccess(t *testing.T) {
	c, p, _ := newFixture(t, &fakeRecorder{start: true})

	require.NoError(t, c.Start(context.Background()))
	assert.Equal(t, "none", p.Style(internal_presenter.RecordButton, "display"))
	assert.Equal(t, "inline-block", p.Style(internal_presenter.StopButton, "display"))
	assert.Equal(t, "Recording...", p.Text(internal_presenter.RecordingStatus))
	assert.Equal(t, "#ff4444", p.Style(internal_presenter.RecordingStatus, "color"))
	assert.Empty(t, p.Alerts())
}

func TestController_StartFailureAlerts(t *testing.T) {
	c, p, _ := newFixture(t, &fakeRecorder{start: false})

	err := c.Start(context.Background())
	assert.ErrorIs(t, err, ErrStartFailed)
	assert.Equal(t, []string{ErrStartFailed.Error()}, p.Alerts())
	assert.Empty(t, p.WritesTo(internal_presenter.StopButton))
}

func TestController_StopWithoutRecording(t *testing.T) {
	rec := &fakeRecorder{}
	c, p, _ := newFixture(t, rec)

	result, err := c.Stop(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, p.Writes())
	assert.Equal(t, 0, rec.uploads)
}

func TestController_StopUploadsAndRendersSuccess(t *testing.T) {
	rec := &fakeRecorder{
		blob:   internal_clip.NewBlob([][]byte{[]byte("x")}, internal_clip.MimeTypeWebM),
		result: transcription_client.UploadResult{Success: true, Transcription: "hello"},
	}
	c, p, _ := newFixture(t, rec)

	result, err := c.Stop(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "hello", result.Transcription)
	assert.Equal(t, 1, rec.uploads)
	assert.Equal(t, "inline-block", p.Style(internal_presenter.RecordButton, "display"))
	assert.Equal(t, "none", p.Style(internal_presenter.StopButton, "display"))
	assert.Equal(t, "✅ Transcription: hello", p.Text(internal_presenter.RecordingStatus))
	assert.Equal(t, "#4CAF50", p.Style(internal_presenter.RecordingStatus, "color"))

	var statuses []string
	for _, w := range p.WritesTo(internal_presenter.RecordingStatus) {
		if w.Kind == "text" {
			statuses = append(statuses, w.Value)
		}
	}
	assert.Equal(t, []string{"Processing audio...", "✅ Transcription: hello"}, statuses)
}

func TestController_StopRendersFailure(t *testing.T) {
	rec := &fakeRecorder{
		blob:   internal_clip.NewBlob([][]byte{[]byte("x")}, internal_clip.MimeTypeWebM),
		result: transcription_client.UploadResult{Success: false, Error: "HTTP 500"},
	}
	c, p, _ := newFixture(t, rec)

	result, err := c.Stop(context.Background())
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "❌ Error: HTTP 500", p.Text(internal_presenter.RecordingStatus))
	assert.Equal(t, "#f44336", p.Style(internal_presenter.RecordingStatus, "color"))
}

func TestController_StopError(t *testing.T) {
	rec := &fakeRecorder{stopErr: context.DeadlineExceeded}
	c, p, _ := newFixture(t, rec)

	_, err := c.Stop(context.Background())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, 0, rec.uploads)
	assert.Equal(t, "#f44336", p.Style(internal_presenter.RecordingStatus, "color"))
}

func TestController_Ready(t *testing.T) {
	c, p, _ := newFixture(t, &fakeRecorder{})
	c.Ready()
	assert.Equal(t, "Ready to record", p.Text(internal_presenter.RecordingStatus))
	assert.Equal(t, "#666", p.Style(internal_presenter.RecordingStatus, "color"))
	assert.Equal(t, "none", p.Style(internal_presenter.StopButton, "display"))
}

func TestController_Restore(t *testing.T) {
	ctx := context.Background()

	t.Run("not granted", func(t *testing.T) {
		rec := &fakeRecorder{permission: true}
		c, _, _ := newFixture(t, rec)
		assert.False(t, c.Restore(ctx))
		assert.Equal(t, 0, rec.permissionCalls)
	})

	t.Run("granted and confirmed", func(t *testing.T) {
		rec := &fakeRecorder{permission: true}
		c, _, store := newFixture(t, rec)
		require.NoError(t, internal_permission.Grant(ctx, store))
		assert.True(t, c.Restore(ctx))
		assert.Equal(t, 1, rec.permissionCalls)
		granted, err := internal_permission.IsGranted(ctx, store)
		require.NoError(t, err)
		assert.True(t, granted)
	})

	t.Run("granted but denied now", func(t *testing.T) {
		rec := &fakeRecorder{permission: false}
		c, _, store := newFixture(t, rec)
		require.NoError(t, internal_permission.Grant(ctx, store))
		assert.False(t, c.Restore(ctx))
		granted, err := internal_permission.IsGranted(ctx, store)
		require.NoError(t, err)
		assert.False(t, granted)
	})
}

type constantEncoder struct{}

func (constantEncoder) Encode(pcm []int16, data []byte) (int, error) {
	return copy(data, []byte{0xF8, 0xFF, 0xFE}), nil
}

func TestController_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	received := make(chan []byte, 1)
	engine := gin.New()
	engine.POST(transcription_client.ProcessAudioPath, func(c *gin.Context) {
		fh, err := c.FormFile(transcription_client.AudioField)
		if !assert.NoError(t, err) {
			c.Status(http.StatusBadRequest)
			return
		}
		f, _ := fh.Open()
		defer f.Close()
		data, _ := io.ReadAll(f)
		received <- data
		c.JSON(http.StatusOK, gin.H{"success": true, "transcription": "hello", "duration": 0.2})
	})
	srv := httptest.NewServer(engine)
	defer srv.Close()

	logger := commons.NewNopLogger()
	p := internal_presenter.NewRecording()
	store := internal_permission.NewFileStore(logger, filepath.Join(t.TempDir(), "permission.json"))
	client := transcription_client.NewTranscriptionServiceClient(&config.TranscriptionConfig{BaseURL: srv.URL, Timeout: 5 * time.Second}, logger)
	devices := internal_capture.NewMediaDevices(logger, &internal_capture.SyntheticDevice{Realtime: true})
	factory := func(stream *internal_capture.Stream) (internal_type.MediaRecorder, error) {
		return internal_audio_mediarecorder.NewMediaRecorder(logger, stream, internal_audio_mediarecorder.Options{
			Encoder: func(int, int) (internal_audio_mediarecorder.Encoder, error) { return constantEncoder{}, nil },
		})
	}
	rec := internal_recorder.NewUploadRecorder(logger, devices, store, client, p,
		internal_recorder.WithMediaRecorderFactory(factory))
	defer rec.Cleanup()

	c := NewController(logger, rec, store, p)
	ctx := context.Background()
	assert.False(t, c.Restore(ctx))
	require.NoError(t, c.Start(ctx))
	time.Sleep(250 * time.Millisecond)

	result, err := c.Stop(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, "hello", result.Transcription)
	assert.Equal(t, 0.2, result.Duration)

	body := <-received
	assert.Equal(t, []byte{0x1A, 0x45, 0xDF, 0xA3}, body[:4])
	assert.Equal(t, "✅ Transcription: hello", p.Text(internal_presenter.RecordingStatus))
	assert.Equal(t, "0%", p.Style(internal_presenter.AudioLevelBar, "width"))
	assert.NotEmpty(t, p.Text(internal_presenter.RecordingTimer))

	// permission was remembered, so the next run restores access
	assert.True(t, c.Restore(ctx))
}
