// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	internal_wavfile "github.com/rapidaai/linguastream/internal/audio/wavfile"
	internal_output "github.com/rapidaai/linguastream/internal/output"
	internal_presenter "github.com/rapidaai/linguastream/internal/presenter"
	internal_recorder "github.com/rapidaai/linguastream/internal/recorder"
	internal_controller "github.com/rapidaai/linguastream/internal/recorder/controller"
)

// bounds how long the recorder may take to flush its last chunk
const finishTimeout = 10 * time.Second

type recordOptions struct {
	duration time.Duration
	noUpload bool
	output   string
	serve    string
	keepWAV  string
}

func NewRecordCmd(deps *Dependencies) *cobra.Command {
	opts := &recordOptions{}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record from the microphone and transcribe",
		Long:  "Record from the microphone until Enter, Ctrl+C or --duration, then upload the clip for transcription.\nUse --no-upload with --output to only keep the WebM file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.noUpload && opts.output == "" {
				return errors.New("--no-upload requires --output")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runRecording(ctx, deps, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVarP(&opts.duration, "duration", "d", 0, "Stop automatically after this long (0 waits for Enter or Ctrl+C)")
	cmd.Flags().BoolVar(&opts.noUpload, "no-upload", false, "Skip transcription")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Also write the recorded WebM clip to this path")
	cmd.Flags().StringVar(&opts.serve, "serve", deps.Config.Presenter.Listen, "Publish recorder status over websocket on this address")
	cmd.Flags().StringVar(&opts.keepWAV, "keep-wav", "", "Archive the raw microphone input as WAV at this path")

	return cmd
}

func runRecording(ctx context.Context, deps *Dependencies, opts *recordOptions, in io.Reader, out io.Writer) error {
	formatter := internal_output.NewFormatter(out)
	terminal := internal_presenter.NewTerminal(out)

	var presenter internal_presenter.Presenter = terminal
	var hub *internal_presenter.Hub
	if opts.serve != "" {
		hub = internal_presenter.NewHub(deps.App.Logger)
		presenter = internal_presenter.Multi{terminal, hub}
	}

	rec := deps.App.NewUploadRecorder(presenter)
	defer rec.Cleanup()
	ctl := deps.App.NewController(rec, presenter)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)
	if hub != nil {
		formatter.PresenterListening(opts.serve)
		g.Go(func() error { return hub.Serve(gctx, opts.serve) })
	}
	g.Go(func() error {
		defer cancel()
		return record(gctx, deps, opts, rec, ctl, terminal, formatter, in)
	})
	return g.Wait()
}

func record(
	ctx context.Context,
	deps *Dependencies,
	opts *recordOptions,
	rec *internal_recorder.UploadRecorder,
	ctl *internal_controller.Controller,
	terminal *internal_presenter.Terminal,
	formatter *internal_output.Formatter,
	in io.Reader,
) error {
	ctl.Ready()
	restored := ctl.Restore(ctx)
	if err := ctl.Start(ctx); err != nil {
		terminal.Done()
		return err
	}
	started := time.Now()
	formatter.RecordingStarted(restored)

	var tap *internal_wavfile.Tap
	if opts.keepWAV != "" {
		t, err := internal_wavfile.Record(deps.App.Logger, rec.Stream(), opts.keepWAV)
		if err != nil {
			deps.App.Logger.Warnf("wav archive disabled: %v", err)
		} else {
			tap = t
		}
	}

	waitForStop(ctx, opts.duration, in)

	// the run context may already be cancelled by a signal
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
	defer cancel()
	blob, err := ctl.Finish(finishCtx)
	terminal.Done()
	if tap != nil {
		if cerr := tap.Close(); cerr != nil {
			deps.App.Logger.Warnf("closing wav archive: %v", cerr)
		} else {
			formatter.ArchiveSaved(tap.Path(), tap.Duration())
		}
	}
	if err != nil {
		return fmt.Errorf("stopping recording: %w", err)
	}
	if blob == nil {
		formatter.NothingRecorded()
		return nil
	}
	formatter.RecordingStopped(time.Since(started), blob.Size())

	if opts.output != "" {
		if err := blob.WriteFile(opts.output); err != nil {
			return fmt.Errorf("saving recording: %w", err)
		}
		formatter.RecordingSaved(opts.output)
	}
	if opts.noUpload {
		return nil
	}

	formatter.Uploading(deps.Config.Transcription.BaseURL)
	result := ctl.Upload(context.WithoutCancel(ctx), blob)
	terminal.Done()
	if !result.Success {
		return fmt.Errorf("transcription failed: %s", result.Error)
	}
	formatter.Transcription(result.Transcription)
	return nil
}

// waitForStop blocks until a line is read from in, ctx is done or d elapses.
// An input that ends without a newline never stops the recording.
func waitForStop(ctx context.Context, d time.Duration, in io.Reader) {
	enter := make(chan struct{})
	go func() {
		if _, err := bufio.NewReader(in).ReadString('\n'); err == nil {
			close(enter)
		}
	}()

	var timeout <-chan time.Time
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case <-enter:
	case <-timeout:
	case <-ctx.Done():
	}
}
