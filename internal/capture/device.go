// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_capture

import (
	"context"
	"strings"

	"github.com/rapidaai/linguastream/pkg/commons"
)

// Device is a platform audio input backend.
type Device interface {
	Name() string
	Open(ctx context.Context, c Constraints) (Input, error)
	Devices() ([]DeviceInfo, error)
}

// Input is an opened device. Read blocks until buf holds len(buf) interleaved
// samples; after Close it returns io.EOF.
type Input interface {
	Read(buf []int16) error
	Settings() Settings
	Close() error
}

type DeviceInfo struct {
	ID                string
	Name              string
	IsDefault         bool
	MaxInputChannels  int
	DefaultSampleRate float64
}

// MediaDevices hands out microphone streams.
type MediaDevices struct {
	logger commons.Logger
	device Device
}

func NewMediaDevices(logger commons.Logger, device Device) *MediaDevices {
	return &MediaDevices{logger: logger, device: device}
}

// GetUserMedia opens the input with the given constraints and starts pumping
// frames. Errors wrap ErrNotSupported or ErrPermissionDenied where applicable.
func (m *MediaDevices) GetUserMedia(ctx context.Context, c Constraints) (*Stream, error) {
	if m == nil || m.device == nil {
		return nil, ErrNotSupported
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	input, err := m.device.Open(ctx, c)
	if err != nil {
		return nil, err
	}
	settings := input.Settings()
	if missing := settings.Unhonored(c); len(missing) > 0 {
		m.logger.Debugf("capture: %s does not apply %s", m.device.Name(), strings.Join(missing, ", "))
	}
	m.logger.Infof("capture: opened %q at %dHz x%d", settings.Label, settings.SampleRate, settings.ChannelCount)
	return newStream(m.logger, input), nil
}

// EnumerateDevices lists inputs known to the backend.
func (m *MediaDevices) EnumerateDevices() ([]DeviceInfo, error) {
	if m == nil || m.device == nil {
		return nil, ErrNotSupported
	}
	return m.device.Devices()
}
