// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_capture

import (
	"errors"
	"fmt"
)

var (
	// ErrNotSupported means there is no capture API or input device on this host.
	ErrNotSupported = errors.New("capture: audio input is not supported")
	// ErrPermissionDenied means the platform refused access to the input device.
	ErrPermissionDenied = errors.New("capture: permission denied")
)

// Constraints requested when acquiring the microphone.
type Constraints struct {
	SampleRate       int
	ChannelCount     int
	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
}

// DefaultConstraints is mono 16kHz speech capture with every voice-processing
// feature requested.
func DefaultConstraints() Constraints {
	return Constraints{
		SampleRate:       16000,
		ChannelCount:     1,
		EchoCancellation: true,
		NoiseSuppression: true,
		AutoGainControl:  true,
	}
}

func (c Constraints) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("capture: illegal sample rate %d", c.SampleRate)
	}
	if c.ChannelCount <= 0 {
		return fmt.Errorf("capture: illegal channel count %d", c.ChannelCount)
	}
	return nil
}

// Settings are the values an input actually applied. Voice-processing flags are
// false when the backend cannot honor them.
type Settings struct {
	DeviceID         string
	Label            string
	SampleRate       int
	ChannelCount     int
	EchoCancellation bool
	NoiseSuppression bool
	AutoGainControl  bool
}

// Unhonored lists the requested voice-processing features the settings lack.
func (s Settings) Unhonored(c Constraints) []string {
	var out []string
	if c.EchoCancellation && !s.EchoCancellation {
		out = append(out, "echoCancellation")
	}
	if c.NoiseSuppression && !s.NoiseSuppression {
		out = append(out, "noiseSuppression")
	}
	if c.AutoGainControl && !s.AutoGainControl {
		out = append(out, "autoGainControl")
	}
	return out
}
