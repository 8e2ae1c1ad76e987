// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package transcription_client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/mitchellh/mapstructure"
	"github.com/rapidaai/linguastream/config"
	internal_clip "github.com/rapidaai/linguastream/internal/clip"
	"github.com/rapidaai/linguastream/pkg/commons"
)

const (
	ProcessAudioPath = "/api/process_audio"
	HealthPath       = "/api/health"

	AudioField    = "audio"
	AudioFilename = "recording.webm"
)

// UploadResult is the decoded response of the processing endpoint. Raw holds
// the body exactly as the server sent it.
type UploadResult struct {
	Success       bool           `json:"success" mapstructure:"success"`
	Transcription string         `json:"transcription" mapstructure:"transcription"`
	Error         string         `json:"error,omitempty" mapstructure:"error"`
	Duration      float64        `json:"duration,omitempty" mapstructure:"duration"`
	Raw           map[string]any `json:"-" mapstructure:"-"`
}

func failure(format string, args ...any) UploadResult {
	msg := fmt.Sprintf(format, args...)
	return UploadResult{
		Success: false,
		Error:   msg,
		Raw:     map[string]any{"success": false, "error": msg},
	}
}

type HealthStatus struct {
	Status     string          `json:"status"`
	Components map[string]bool `json:"components"`
}

type TranscriptionServiceClient interface {
	// ProcessAudio uploads a clip and never returns an error; failures are
	// reported through UploadResult.
	ProcessAudio(ctx context.Context, blob *internal_clip.Blob) UploadResult
	Health(ctx context.Context) (*HealthStatus, error)
}

type transcriptionServiceClient struct {
	logger commons.Logger
	client *resty.Client
}

func NewTranscriptionServiceClient(cfg *config.TranscriptionConfig, logger commons.Logger) TranscriptionServiceClient {
	return &transcriptionServiceClient{
		logger: logger,
		client: resty.New().
			SetBaseURL(cfg.BaseURL).
			SetTimeout(cfg.Timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *transcriptionServiceClient) ProcessAudio(ctx context.Context, blob *internal_clip.Blob) UploadResult {
	if blob == nil {
		return failure("no audio to upload")
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetMultipartField(AudioField, AudioFilename, blob.Type(), blob.Reader()).
		Post(ProcessAudioPath)
	if err != nil {
		c.logger.Errorf("error processing audio: %v", err)
		return failure("failed to send audio to server: %v", err)
	}
	if !resp.IsSuccess() {
		c.logger.Errorf("error processing audio: server replied %s", resp.Status())
		return failure("failed to send audio to server: HTTP %d", resp.StatusCode())
	}

	raw := map[string]any{}
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		c.logger.Errorf("error decoding processing result: %v", err)
		return failure("invalid response from server: %v", err)
	}
	result := UploadResult{Raw: raw}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &result,
	})
	if err == nil {
		err = decoder.Decode(raw)
	}
	if err != nil {
		c.logger.Warnf("processing result has unexpected field types: %v", err)
	}
	c.logger.Debugf("processed %d bytes of audio, success=%v", blob.Size(), result.Success)
	return result
}

func (c *transcriptionServiceClient) Health(ctx context.Context) (*HealthStatus, error) {
	status := &HealthStatus{}
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(status).
		Get(HealthPath)
	if err != nil {
		return nil, fmt.Errorf("health check failed: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("health check failed: %s", resp.Status())
	}
	return status, nil
}
