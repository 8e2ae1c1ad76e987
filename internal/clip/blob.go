// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_clip

import (
	"bytes"
	"io"
	"os"
)

const (
	// container type tagged on finished recordings
	MimeTypeWebM = "audio/webm"
	// codec string requested from the media recorder
	MimeTypeWebMOpus = "audio/webm;codecs=opus"
)

// Blob is an immutable binary object with a content type, the result of
// concatenating recorded chunks.
type Blob struct {
	data     []byte
	mimeType string
}

// NewBlob concatenates parts in order. Parts are copied.
func NewBlob(parts [][]byte, mimeType string) *Blob {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	data := make([]byte, 0, size)
	for _, p := range parts {
		data = append(data, p...)
	}
	return &Blob{data: data, mimeType: mimeType}
}

func (b *Blob) Size() int { return len(b.data) }

func (b *Blob) Type() string { return b.mimeType }

// Bytes returns a copy of the blob content.
func (b *Blob) Bytes() []byte {
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// Reader streams the blob content without copying it.
func (b *Blob) Reader() io.Reader {
	return bytes.NewReader(b.data)
}

// WriteFile stores the blob at path.
func (b *Blob) WriteFile(path string) error {
	return os.WriteFile(path, b.data, 0o644)
}

// ReadFile loads a blob from disk, tagging it with mimeType.
func ReadFile(path, mimeType string) (*Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &Blob{data: data, mimeType: mimeType}, nil
}

// ToArrayBuffer returns the raw bytes of the blob for upload or conversion.
func ToArrayBuffer(b *Blob) []byte {
	if b == nil {
		return nil
	}
	return b.Bytes()
}

// ConvertToWAV is a passthrough: the buffer is returned unchanged and no format
// conversion takes place. Use internal/audio/wavfile for real WAV output.
func ConvertToWAV(buf []byte) []byte {
	return buf
}
