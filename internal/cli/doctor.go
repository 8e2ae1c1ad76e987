// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	internal_audio_graph "github.com/rapidaai/linguastream/internal/audio/graph"
	internal_output "github.com/rapidaai/linguastream/internal/output"
	internal_permission "github.com/rapidaai/linguastream/internal/permission"
	internal_recorder "github.com/rapidaai/linguastream/internal/recorder"
	"github.com/rapidaai/linguastream/pkg/utils"
)

const (
	doctorTimeout = 5 * time.Second
	// how long the input is listened to for a level reading
	probeWindow = 300 * time.Millisecond
)

type check struct {
	ok     bool
	detail string
}

func NewDoctorCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check microphone, permission store and transcription service",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internal_output.NewFormatter(cmd.OutOrStdout())
			ctx, cancel := context.WithTimeout(cmd.Context(), doctorTimeout)
			defer cancel()

			var microphone, service check
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				microphone = probeMicrophone(gctx, deps)
				return nil
			})
			g.Go(func() error {
				service = probeService(gctx, deps)
				return nil
			})
			permission := probePermission(ctx, deps)
			_ = g.Wait()

			f.SetupCheck("Configuration", true, fmt.Sprintf("%s capture at %d Hz, %s permission store",
				deps.Config.Capture.Device, deps.Config.Capture.SampleRate, deps.Config.Permission.Backend))
			f.SetupCheck("Microphone permission", permission.ok, permission.detail)
			f.SetupCheck("Microphone", microphone.ok, microphone.detail)
			f.SetupCheck("Transcription service", service.ok, service.detail)

			if permission.ok && microphone.ok && service.ok {
				f.Success("\nAll checks passed. Ready to record!")
			} else {
				f.Warning("\nSome checks failed.")
			}
			return nil
		},
	}
}

func probePermission(ctx context.Context, deps *Dependencies) check {
	granted, err := internal_permission.IsGranted(ctx, deps.App.Store)
	if err != nil {
		return check{detail: err.Error()}
	}
	if granted {
		return check{ok: true, detail: "granted"}
	}
	return check{ok: true, detail: "not granted yet, requested on first recording"}
}

// probeMicrophone opens the input briefly and reports its level.
func probeMicrophone(ctx context.Context, deps *Dependencies) check {
	stream, err := deps.App.Devices.GetUserMedia(ctx, deps.App.Constraints())
	if err != nil {
		return check{detail: err.Error()}
	}
	defer func() {
		for _, track := range stream.Tracks() {
			track.Stop()
		}
	}()

	settings := stream.Settings()
	graph := internal_audio_graph.NewContext(deps.App.Logger, settings.SampleRate)
	defer graph.Close()
	analyser, err := graph.CreateAnalyser(internal_recorder.DefaultFFTSize)
	if err != nil {
		return check{detail: err.Error()}
	}
	source, err := graph.CreateMediaStreamSource(stream)
	if err != nil {
		return check{detail: err.Error()}
	}
	source.Connect(analyser)

	select {
	case <-time.After(probeWindow):
	case <-ctx.Done():
		return check{detail: ctx.Err().Error()}
	}
	data := make([]uint8, analyser.FrequencyBinCount())
	analyser.GetByteFrequencyData(data)
	level := utils.AverageUint8(data)

	return check{ok: true, detail: fmt.Sprintf("%q at %d Hz x%d, input level %.0f%%",
		settings.Label, settings.SampleRate, settings.ChannelCount, internal_recorder.LevelPercentage(level))}
}

func probeService(ctx context.Context, deps *Dependencies) check {
	health, err := deps.App.Client.Health(ctx)
	if err != nil {
		return check{detail: err.Error()}
	}
	if len(health.Components) == 0 {
		return check{ok: true, detail: health.Status}
	}
	names := make([]string, 0, len(health.Components))
	for name := range health.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	ok := true
	for _, name := range names {
		state := "up"
		if !health.Components[name] {
			state = "down"
			ok = false
		}
		parts = append(parts, name+" "+state)
	}
	return check{ok: ok, detail: fmt.Sprintf("%s (%s)", health.Status, strings.Join(parts, ", "))}
}
