// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_capture

import (
	"context"
	"io"
	"math"
	"sync"
	"time"
)

// SyntheticDevice generates a sine tone instead of reading a microphone.
// It backs tests and `--device synthetic`.
type SyntheticDevice struct {
	// Frequency of the tone in Hz; 440 when zero.
	Frequency float64
	// Amplitude in [0,1]; 0.5 when zero. Use Silent for digital silence.
	Amplitude float64
	Silent    bool
	// Realtime paces reads at the capture rate.
	Realtime bool
	// Deny makes Open fail with ErrPermissionDenied.
	Deny bool
	// MaxSamples ends the input with io.EOF after this many samples when > 0.
	MaxSamples int
}

func (d *SyntheticDevice) Name() string { return "synthetic" }

func (d *SyntheticDevice) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{
		ID:                "synthetic",
		Name:              "Synthetic tone generator",
		IsDefault:         true,
		MaxInputChannels:  2,
		DefaultSampleRate: 16000,
	}}, nil
}

func (d *SyntheticDevice) Open(ctx context.Context, c Constraints) (Input, error) {
	if d.Deny {
		return nil, ErrPermissionDenied
	}
	freq := d.Frequency
	if freq == 0 {
		freq = 440
	}
	amp := d.Amplitude
	if amp == 0 {
		amp = 0.5
	}
	if d.Silent {
		amp = 0
	}
	return &syntheticInput{
		settings: Settings{
			DeviceID:         "synthetic",
			Label:            "Synthetic tone generator",
			SampleRate:       c.SampleRate,
			ChannelCount:     c.ChannelCount,
			EchoCancellation: c.EchoCancellation,
			NoiseSuppression: c.NoiseSuppression,
			AutoGainControl:  c.AutoGainControl,
		},
		freq:       freq,
		amp:        amp,
		realtime:   d.Realtime,
		maxSamples: d.MaxSamples,
		start:      time.Now(),
		closed:     make(chan struct{}),
	}, nil
}

type syntheticInput struct {
	settings   Settings
	freq, amp  float64
	realtime   bool
	maxSamples int
	start      time.Time

	mu        sync.Mutex
	position  int
	closeOnce sync.Once
	closed    chan struct{}
}

func (in *syntheticInput) Settings() Settings { return in.settings }

func (in *syntheticInput) Read(buf []int16) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	select {
	case <-in.closed:
		return io.EOF
	default:
	}
	if in.maxSamples > 0 && in.position >= in.maxSamples {
		return io.EOF
	}

	channels := in.settings.ChannelCount
	rate := float64(in.settings.SampleRate)
	for i := range buf {
		frameIndex := (in.position + i) / channels
		v := in.amp * math.Sin(2*math.Pi*in.freq*float64(frameIndex)/rate)
		buf[i] = int16(v * math.MaxInt16)
	}
	in.position += len(buf)

	if in.realtime {
		due := in.start.Add(time.Duration(float64(in.position/channels) / rate * float64(time.Second)))
		select {
		case <-time.After(time.Until(due)):
		case <-in.closed:
			return io.EOF
		}
	}
	return nil
}

func (in *syntheticInput) Close() error {
	in.closeOnce.Do(func() { close(in.closed) })
	return nil
}
