// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio_wavfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	"github.com/rapidaai/linguastream/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, path string) *wav.Decoder {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	d := wav.NewDecoder(f)
	require.True(t, d.IsValidFile())
	return d
}

func TestEncode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	samples := []int16{0, 1000, -1000, 32767, -32768, 0}
	require.NoError(t, Encode(f, samples, 16000, 1))
	require.NoError(t, f.Close())

	d := decode(t, path)
	assert.Equal(t, uint32(16000), d.SampleRate)
	assert.Equal(t, uint16(1), d.NumChans)
	assert.Equal(t, uint16(16), d.BitDepth)
	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1000, -1000, 32767, -32768, 0}, buf.Data)
}

func TestTapArchivesStream(t *testing.T) {
	md := internal_capture.NewMediaDevices(commons.NewNopLogger(), &internal_capture.SyntheticDevice{Realtime: true})
	stream, err := md.GetUserMedia(context.Background(), internal_capture.DefaultConstraints())
	require.NoError(t, err)
	defer stream.Tracks()[0].Stop()

	path := filepath.Join(t.TempDir(), "archive.wav")
	tap, err := Record(commons.NewNopLogger(), stream, path)
	require.NoError(t, err)
	assert.Equal(t, path, tap.Path())

	assert.Eventually(t, func() bool { return tap.Duration() >= 60*time.Millisecond }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, tap.Close())
	require.NoError(t, tap.Close())

	d := decode(t, path)
	assert.Equal(t, uint32(16000), d.SampleRate)
	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(buf.Data), 960)
}

func TestTapAfterStreamEnded(t *testing.T) {
	md := internal_capture.NewMediaDevices(commons.NewNopLogger(), &internal_capture.SyntheticDevice{})
	stream, err := md.GetUserMedia(context.Background(), internal_capture.DefaultConstraints())
	require.NoError(t, err)
	stream.Tracks()[0].Stop()

	tap, err := Record(commons.NewNopLogger(), stream, filepath.Join(t.TempDir(), "empty.wav"))
	require.NoError(t, err)
	require.NoError(t, tap.Close())
	assert.Equal(t, time.Duration(0), tap.Duration())
}
