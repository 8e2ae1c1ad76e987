// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio_mediarecorder

import (
	"bytes"
	"sync"
)

// chunkSink collects muxer output between two dataavailable events.
type chunkSink struct {
	mu        sync.Mutex
	buf       bytes.Buffer
	closeOnce sync.Once
	closed    chan struct{}
}

func newChunkSink() *chunkSink {
	return &chunkSink{closed: make(chan struct{})}
}

func (s *chunkSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *chunkSink) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// Drain returns everything written since the previous Drain.
func (s *chunkSink) Drain() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, s.buf.Len())
	copy(out, s.buf.Bytes())
	s.buf.Reset()
	return out
}
