// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_recorder

import (
	"context"
	"fmt"

	internal_audio_graph "github.com/rapidaai/linguastream/internal/audio/graph"
	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	internal_type "github.com/rapidaai/linguastream/internal/type"
	"github.com/rapidaai/linguastream/pkg/commons"
)

// session is an acquired microphone with its analysis graph.
type session struct {
	stream   *internal_capture.Stream
	graph    *internal_audio_graph.Context
	analyser internal_type.FrequencyAnalyser
	// reused for every level sample
	data []uint8
}

func openSession(ctx context.Context, logger commons.Logger, devices MediaSource, constraints internal_capture.Constraints, fftSize int) (*session, error) {
	if devices == nil {
		return nil, internal_capture.ErrNotSupported
	}
	stream, err := devices.GetUserMedia(ctx, constraints)
	if err != nil {
		return nil, err
	}

	graph := internal_audio_graph.NewContext(logger, stream.Settings().SampleRate)
	analyser, err := graph.CreateAnalyser(fftSize)
	if err != nil {
		stopTracks(stream)
		graph.Close()
		return nil, fmt.Errorf("creating analyser: %w", err)
	}
	source, err := graph.CreateMediaStreamSource(stream)
	if err != nil {
		stopTracks(stream)
		graph.Close()
		return nil, fmt.Errorf("creating stream source: %w", err)
	}
	source.Connect(analyser)

	return &session{
		stream:   stream,
		graph:    graph,
		analyser: analyser,
		data:     make([]uint8, analyser.FrequencyBinCount()),
	}, nil
}

func stopTracks(stream *internal_capture.Stream) {
	for _, track := range stream.Tracks() {
		track.Stop()
	}
}

// release stops every track and closes the graph.
func (s *session) release() {
	if s.stream != nil {
		stopTracks(s.stream)
	}
	if s.graph != nil {
		s.graph.Close()
	}
}
