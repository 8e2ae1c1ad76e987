// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_clip

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBlob_ConcatenatesInOrder(t *testing.T) {
	b := NewBlob([][]byte{{1, 2}, {3}, {4, 5, 6}}, MimeTypeWebM)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, b.Bytes())
	assert.Equal(t, 6, b.Size())
	assert.Equal(t, "audio/webm", b.Type())
}

func TestNewBlob_CopiesParts(t *testing.T) {
	part := []byte{9, 9}
	b := NewBlob([][]byte{part}, MimeTypeWebM)
	part[0] = 0
	assert.Equal(t, []byte{9, 9}, b.Bytes())

	out := b.Bytes()
	out[1] = 0
	assert.Equal(t, []byte{9, 9}, b.Bytes())
}

func TestNewBlob_Empty(t *testing.T) {
	b := NewBlob(nil, MimeTypeWebM)
	assert.Equal(t, 0, b.Size())
	data, err := io.ReadAll(b.Reader())
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestBlob_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording.webm")
	require.NoError(t, NewBlob([][]byte{[]byte("webm")}, MimeTypeWebM).WriteFile(path))

	b, err := ReadFile(path, MimeTypeWebM)
	require.NoError(t, err)
	assert.Equal(t, []byte("webm"), b.Bytes())
}

func TestConvertToWAV_IsPassthrough(t *testing.T) {
	in := []byte{1, 2, 3}
	assert.Equal(t, in, ConvertToWAV(in))
	assert.Nil(t, ToArrayBuffer(nil))
	assert.Equal(t, []byte{7}, ToArrayBuffer(NewBlob([][]byte{{7}}, MimeTypeWebM)))
}
