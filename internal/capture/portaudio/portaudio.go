// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.

// Package internal_capture_portaudio reads the microphone through PortAudio.
// Linking requires the PortAudio C library.
package internal_capture_portaudio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/gordonklaus/portaudio"
	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	"github.com/rapidaai/linguastream/pkg/commons"
)

// Device opens the input named DeviceName, or the default input when empty.
type Device struct {
	logger     commons.Logger
	DeviceName string
}

func NewDevice(logger commons.Logger, deviceName string) *Device {
	return &Device{logger: logger, DeviceName: deviceName}
}

func (d *Device) Name() string { return "portaudio" }

func (d *Device) Devices() ([]internal_capture.DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", internal_capture.ErrNotSupported, err)
	}
	defer portaudio.Terminate()

	def, _ := portaudio.DefaultInputDevice()
	all, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	var out []internal_capture.DeviceInfo
	for _, info := range all {
		if info.MaxInputChannels == 0 {
			continue
		}
		out = append(out, internal_capture.DeviceInfo{
			ID:                strconv.Itoa(info.Index),
			Name:              info.Name,
			IsDefault:         def != nil && def.Index == info.Index,
			MaxInputChannels:  info.MaxInputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
		})
	}
	return out, nil
}

func (d *Device) Open(ctx context.Context, c internal_capture.Constraints) (internal_capture.Input, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", internal_capture.ErrNotSupported, err)
	}
	info, err := d.lookup()
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	samplesPerBuffer := c.SampleRate * int(internal_capture.FrameDuration.Milliseconds()) / 1000
	params := portaudio.LowLatencyParameters(info, nil)
	params.Input.Channels = c.ChannelCount
	params.SampleRate = float64(c.SampleRate)
	params.FramesPerBuffer = samplesPerBuffer

	in := &input{
		buffer: make([]int16, samplesPerBuffer*c.ChannelCount),
		settings: internal_capture.Settings{
			DeviceID:     strconv.Itoa(info.Index),
			Label:        info.Name,
			SampleRate:   c.SampleRate,
			ChannelCount: c.ChannelCount,
		},
		logger: d.logger,
	}
	stream, err := portaudio.OpenStream(params, in.buffer)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: opening %q: %v", internal_capture.ErrPermissionDenied, info.Name, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: starting %q: %v", internal_capture.ErrPermissionDenied, info.Name, err)
	}
	in.stream = stream
	return in, nil
}

func (d *Device) lookup() (*portaudio.DeviceInfo, error) {
	if d.DeviceName == "" {
		info, err := portaudio.DefaultInputDevice()
		if err != nil || info == nil {
			return nil, fmt.Errorf("%w: no default input device", internal_capture.ErrNotSupported)
		}
		return info, nil
	}
	all, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internal_capture.ErrNotSupported, err)
	}
	for _, info := range all {
		if info.MaxInputChannels > 0 && (info.Name == d.DeviceName || strconv.Itoa(info.Index) == d.DeviceName) {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w: input device %q not found", internal_capture.ErrNotSupported, d.DeviceName)
}

// input serialises Read and Close: PortAudio streams must not be closed while
// a blocking read is in flight.
type input struct {
	mu       sync.Mutex
	stream   *portaudio.Stream
	buffer   []int16
	settings internal_capture.Settings
	closed   bool
	logger   commons.Logger
}

func (in *input) Settings() internal_capture.Settings { return in.settings }

func (in *input) Read(buf []int16) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return io.EOF
	}
	for filled := 0; filled < len(buf); {
		if err := in.stream.Read(); err != nil {
			if errors.Is(err, portaudio.InputOverflowed) {
				in.logger.Debugf("portaudio: input overflowed")
			} else {
				return err
			}
		}
		filled += copy(buf[filled:], in.buffer)
	}
	return nil
}

func (in *input) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	in.closed = true
	stopErr := in.stream.Stop()
	closeErr := in.stream.Close()
	portaudio.Terminate()
	return errors.Join(stopErr, closeErr)
}
