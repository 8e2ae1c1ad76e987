// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_audio_mediarecorder

import (
	"fmt"

	"gopkg.in/hraban/opus.v2"
)

// opus packets never exceed this for a 20ms frame.
const maxPacketSize = 4000

// Encoder turns one frame of interleaved PCM into a compressed packet.
type Encoder interface {
	Encode(pcm []int16, data []byte) (int, error)
}

// EncoderFactory builds an Encoder for the given stream format.
type EncoderFactory func(sampleRate, channels int) (Encoder, error)

// NewOpusEncoder is the default EncoderFactory.
func NewOpusEncoder(sampleRate, channels int) (Encoder, error) {
	switch sampleRate {
	case 8000, 12000, 16000, 24000, 48000:
	default:
		return nil, fmt.Errorf("opus does not support %d Hz", sampleRate)
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("opus does not support %d channels", channels)
	}
	enc, err := opus.NewEncoder(sampleRate, channels, opus.AppVoIP)
	if err != nil {
		return nil, err
	}
	return enc, nil
}
