// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recorder

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	internal_clip "github.com/rapidaai/linguastream/internal/clip"
	internal_permission "github.com/rapidaai/linguastream/internal/permission"
	internal_type "github.com/rapidaai/linguastream/internal/type"
	transcription_client "github.com/rapidaai/linguastream/pkg/clients/transcription"
	"github.com/rapidaai/linguastream/pkg/commons"
)

// fakeMediaRecorder delivers chunks only when the test says so. Stop flushes
// the queued tail chunks and then fires the stop event on its own goroutine.
type fakeMediaRecorder struct {
	mu        sync.Mutex
	ondata    func([]byte)
	onstop    func()
	timeslice time.Duration
	started   bool
	stopped   bool
	hang      bool
	tail      [][]byte
}

func (f *fakeMediaRecorder) OnDataAvailable(fn func([]byte)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ondata = fn
}

func (f *fakeMediaRecorder) OnStop(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onstop = fn
}

func (f *fakeMediaRecorder) Start(timeslice time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started = true
	f.timeslice = timeslice
	return nil
}

func (f *fakeMediaRecorder) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started || f.stopped {
		return
	}
	f.stopped = true
	if f.hang {
		return
	}
	ondata, onstop, tail := f.ondata, f.onstop, f.tail
	go func() {
		for _, chunk := range tail {
			ondata(chunk)
		}
		onstop()
	}()
}

// deliver emits a chunk from the test goroutine.
func (f *fakeMediaRecorder) deliver(chunks ...[]byte) {
	f.mu.Lock()
	ondata := f.ondata
	f.mu.Unlock()
	for _, c := range chunks {
		ondata(c)
	}
}

func (f *fakeMediaRecorder) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeFactory struct {
	mu        sync.Mutex
	recorders []*fakeMediaRecorder
	err       error
	configure func(*fakeMediaRecorder)
}

func (f *fakeFactory) build(stream *internal_capture.Stream) (internal_type.MediaRecorder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	mr := &fakeMediaRecorder{}
	if f.configure != nil {
		f.configure(mr)
	}
	f.recorders = append(f.recorders, mr)
	return mr, nil
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recorders)
}

func (f *fakeFactory) last() *fakeMediaRecorder {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recorders[len(f.recorders)-1]
}

// staticAnalyser reports a fixed spectrum.
type staticAnalyser []uint8

func (s staticAnalyser) FrequencyBinCount() int { return len(s) }

func (s staticAnalyser) GetByteFrequencyData(dst []uint8) { copy(dst, s) }

func uniform(v uint8) staticAnalyser {
	s := make(staticAnalyser, 128)
	for i := range s {
		s[i] = v
	}
	return s
}

// setAnalyser swaps the analyser of the current session.
func (c *core) setAnalyser(a internal_type.FrequencyAnalyser) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.analyser = a
	c.session.data = make([]uint8, a.FrequencyBinCount())
}

func (c *core) currentSession() *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *core) bufferedChunks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.chunks)
}

func syntheticDevices(device *internal_capture.SyntheticDevice) *internal_capture.MediaDevices {
	device.Realtime = true
	return internal_capture.NewMediaDevices(commons.NewNopLogger(), device)
}

type fakeClient struct {
	mu     sync.Mutex
	result transcription_client.UploadResult
	blobs  []*internal_clip.Blob
}

func (f *fakeClient) ProcessAudio(ctx context.Context, blob *internal_clip.Blob) transcription_client.UploadResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs = append(f.blobs, blob)
	return f.result
}

func (f *fakeClient) Health(ctx context.Context) (*transcription_client.HealthStatus, error) {
	return nil, errors.New("not implemented")
}

func tempStore(t *testing.T) *internal_permission.FileStore {
	t.Helper()
	return internal_permission.NewFileStore(commons.NewNopLogger(), filepath.Join(t.TempDir(), "permission.json"))
}
