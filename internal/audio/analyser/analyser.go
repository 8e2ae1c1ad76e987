// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio_analyser

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	DefaultFFTSize               = 2048
	DefaultMinDecibels           = -100.0
	DefaultMaxDecibels           = -30.0
	DefaultSmoothingTimeConstant = 0.8
)

type Option func(*Analyser)

func WithDecibelRange(min, max float64) Option {
	return func(a *Analyser) { a.minDecibels, a.maxDecibels = min, max }
}

func WithSmoothingTimeConstant(tc float64) Option {
	return func(a *Analyser) { a.smoothing = tc }
}

// Analyser computes a byte-scaled magnitude spectrum over the most recent
// fftSize samples: Blackman window, FFT, exponential smoothing across calls,
// then decibels mapped linearly from [minDecibels, maxDecibels] to [0, 255].
type Analyser struct {
	mu          sync.Mutex
	fftSize     int
	minDecibels float64
	maxDecibels float64
	smoothing   float64

	fft      *fourier.FFT
	window   []float64
	ring     []float64
	pos      int
	frame    []float64
	coeffs   []complex128
	smoothed []float64
}

// New creates an analyser; fftSize must be a power of two in [32, 32768].
func New(fftSize int, opts ...Option) (*Analyser, error) {
	if fftSize < 32 || fftSize > 32768 || fftSize&(fftSize-1) != 0 {
		return nil, fmt.Errorf("analyser: illegal fft size %d", fftSize)
	}
	a := &Analyser{
		fftSize:     fftSize,
		minDecibels: DefaultMinDecibels,
		maxDecibels: DefaultMaxDecibels,
		smoothing:   DefaultSmoothingTimeConstant,
		fft:         fourier.NewFFT(fftSize),
		window:      blackman(fftSize),
		ring:        make([]float64, fftSize),
		frame:       make([]float64, fftSize),
		smoothed:    make([]float64, fftSize/2),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.minDecibels >= a.maxDecibels {
		return nil, fmt.Errorf("analyser: minDecibels %.1f must be below maxDecibels %.1f", a.minDecibels, a.maxDecibels)
	}
	if a.smoothing < 0 || a.smoothing > 1 {
		return nil, fmt.Errorf("analyser: smoothing time constant %.2f outside [0,1]", a.smoothing)
	}
	return a, nil
}

// FrequencyBinCount is half the FFT size.
func (a *Analyser) FrequencyBinCount() int { return a.fftSize / 2 }

// Write feeds interleaved PCM; channels are averaged down to mono.
func (a *Analyser) Write(samples []int16, channels int) {
	if channels <= 0 {
		channels = 1
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := 0; i+channels <= len(samples); i += channels {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(samples[i+c])
		}
		a.ring[a.pos] = sum / float64(channels) / 32768.0
		a.pos = (a.pos + 1) % a.fftSize
	}
}

// GetByteFrequencyData fills dst with up to FrequencyBinCount values.
func (a *Analyser) GetByteFrequencyData(dst []uint8) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for i := 0; i < a.fftSize; i++ {
		a.frame[i] = a.ring[(a.pos+i)%a.fftSize] * a.window[i]
	}
	a.coeffs = a.fft.Coefficients(a.coeffs, a.frame)

	scale := 1.0 / float64(a.fftSize)
	rangeScale := 255.0 / (a.maxDecibels - a.minDecibels)
	n := a.fftSize / 2
	if len(dst) < n {
		n = len(dst)
	}
	for k := 0; k < a.fftSize/2; k++ {
		c := a.coeffs[k]
		magnitude := math.Hypot(real(c), imag(c)) * scale
		v := a.smoothing*a.smoothed[k] + (1-a.smoothing)*magnitude
		if math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		a.smoothed[k] = v
		if k >= n {
			continue
		}
		db := 20 * math.Log10(v)
		scaled := math.Floor(rangeScale * (db - a.minDecibels))
		switch {
		case math.IsNaN(scaled) || scaled < 0:
			dst[k] = 0
		case scaled > 255:
			dst[k] = 255
		default:
			dst[k] = uint8(scaled)
		}
	}
}

func blackman(n int) []float64 {
	const (
		a0 = 0.42
		a1 = 0.5
		a2 = 0.08
	)
	w := make([]float64, n)
	for i := range w {
		x := float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(2*math.Pi*x) + a2*math.Cos(4*math.Pi*x)
	}
	return w
}
