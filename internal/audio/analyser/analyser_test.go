// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio_analyser

import (
	"math"
	"testing"

	"github.com/rapidaai/linguastream/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(freq float64, rate, n int, amp float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amp * math.MaxInt16 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestNew_FFTSizeValidation(t *testing.T) {
	for _, size := range []int{0, 16, 100, 65536} {
		_, err := New(size)
		assert.Error(t, err, "size %d", size)
	}
	a, err := New(256)
	require.NoError(t, err)
	assert.Equal(t, 128, a.FrequencyBinCount())
}

func TestNew_OptionValidation(t *testing.T) {
	_, err := New(256, WithDecibelRange(-30, -100))
	assert.Error(t, err)
	_, err = New(256, WithSmoothingTimeConstant(1.5))
	assert.Error(t, err)
}

func TestGetByteFrequencyData_Silence(t *testing.T) {
	a, err := New(256)
	require.NoError(t, err)
	a.Write(make([]int16, 512), 1)

	data := make([]uint8, a.FrequencyBinCount())
	a.GetByteFrequencyData(data)
	assert.Equal(t, 0.0, utils.AverageUint8(data))
}

func TestGetByteFrequencyData_TonePeaksAtBin(t *testing.T) {
	a, err := New(256, WithSmoothingTimeConstant(0))
	require.NoError(t, err)
	// bin width is 16000/256 = 62.5Hz, so 1000Hz lands on bin 16
	a.Write(tone(1000, 16000, 1024, 0.05), 1)

	data := make([]uint8, a.FrequencyBinCount())
	a.GetByteFrequencyData(data)

	peak := 0
	for k := range data {
		if data[k] > data[peak] {
			peak = k
		}
	}
	assert.Equal(t, 16, peak)
	assert.Greater(t, int(data[16]), 200)
	assert.Less(t, int(data[15]), int(data[16]))
	level := utils.AverageUint8(data)
	assert.Greater(t, level, 0.0)
	assert.LessOrEqual(t, level, 255.0)
}

func TestGetByteFrequencyData_SmoothingDecays(t *testing.T) {
	a, err := New(256)
	require.NoError(t, err)
	a.Write(tone(1000, 16000, 256, 0.8), 1)
	data := make([]uint8, 128)
	a.GetByteFrequencyData(data)
	first := data[16]

	a.Write(make([]int16, 256), 1)
	a.GetByteFrequencyData(data)
	second := data[16]
	assert.Greater(t, int(first), 0)
	assert.Less(t, int(second), int(first))
	assert.Greater(t, int(second), 0, "smoothing keeps part of the previous spectrum")
}

func TestWrite_DownmixesStereo(t *testing.T) {
	a, err := New(32, WithSmoothingTimeConstant(0))
	require.NoError(t, err)
	stereo := make([]int16, 64)
	for i := 0; i < 64; i += 2 {
		stereo[i] = 16384
		stereo[i+1] = -16384
	}
	a.Write(stereo, 2)
	data := make([]uint8, 16)
	a.GetByteFrequencyData(data)
	assert.Equal(t, 0.0, utils.AverageUint8(data))
}

func TestGetByteFrequencyData_ShortDestination(t *testing.T) {
	a, err := New(256)
	require.NoError(t, err)
	a.Write(tone(1000, 16000, 256, 0.8), 1)
	data := make([]uint8, 4)
	assert.NotPanics(t, func() { a.GetByteFrequencyData(data) })
}
