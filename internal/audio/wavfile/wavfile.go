// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio_wavfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	"github.com/rapidaai/linguastream/pkg/commons"
)

const bitDepth = 16

// Encode writes interleaved 16-bit PCM as a WAV file to w.
func Encode(w io.WriteSeeker, samples []int16, sampleRate, channels int) error {
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, 1)
	if err := enc.Write(intBuffer(samples, sampleRate, channels)); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

func intBuffer(samples []int16, sampleRate, channels int) *audio.IntBuffer {
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: bitDepth,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}
	return buf
}

// Tap archives every frame of a capture stream into a WAV file until closed.
type Tap struct {
	logger     commons.Logger
	path       string
	file       *os.File
	enc        *wav.Encoder
	sampleRate int
	channels   int

	unsubscribe func()
	done        chan struct{}

	mu      sync.Mutex
	samples int
	err     error

	closeOnce sync.Once
	closeErr  error
}

// Record starts a Tap on stream writing to path.
func Record(logger commons.Logger, stream *internal_capture.Stream, path string) (*Tap, error) {
	settings := stream.Settings()
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating wav archive: %w", err)
	}
	t := &Tap{
		logger:     logger,
		path:       path,
		file:       f,
		enc:        wav.NewEncoder(f, settings.SampleRate, bitDepth, settings.ChannelCount, 1),
		sampleRate: settings.SampleRate,
		channels:   settings.ChannelCount,
		done:       make(chan struct{}),
	}
	frames, unsubscribe := stream.Subscribe(internal_capture.ArchiveSubscriberBuffer)
	t.unsubscribe = unsubscribe
	go t.run(frames)
	logger.Debugf("archiving stream %s to %s", stream.ID(), path)
	return t, nil
}

func (t *Tap) run(frames <-chan internal_capture.Frame) {
	defer close(t.done)
	for f := range frames {
		if err := t.enc.Write(intBuffer(f.Samples, t.sampleRate, t.channels)); err != nil {
			t.mu.Lock()
			t.err = err
			t.mu.Unlock()
			t.logger.Errorf("wav archive %s: write failed: %v", t.path, err)
			t.unsubscribe()
			for range frames {
			}
			return
		}
		t.mu.Lock()
		t.samples += len(f.Samples)
		t.mu.Unlock()
	}
}

func (t *Tap) Path() string { return t.path }

// Duration of audio written so far.
func (t *Tap) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sampleRate == 0 || t.channels == 0 {
		return 0
	}
	return time.Duration(t.samples/t.channels) * time.Second / time.Duration(t.sampleRate)
}

// Close finalizes the header and the file. It is idempotent.
func (t *Tap) Close() error {
	t.closeOnce.Do(func() {
		t.unsubscribe()
		<-t.done
		t.mu.Lock()
		writeErr := t.err
		t.mu.Unlock()
		t.closeErr = errors.Join(writeErr, t.enc.Close(), t.file.Close())
	})
	return t.closeErr
}
