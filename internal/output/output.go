// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	internal_capture "github.com/rapidaai/linguastream/internal/capture"
)

// Formatter prints command results. Colors are used only for os.Stdout and
// os.Stderr.
type Formatter struct {
	w       io.Writer
	success *color.Color
	failure *color.Color
	warning *color.Color
	dim     *color.Color
}

func NewFormatter(w io.Writer) *Formatter {
	f := &Formatter{
		w:       w,
		success: color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		warning: color.New(color.FgYellow),
		dim:     color.New(color.FgHiBlack),
	}
	if w != os.Stdout && w != os.Stderr {
		for _, c := range []*color.Color{f.success, f.failure, f.warning, f.dim} {
			c.DisableColor()
		}
	}
	return f
}

func (f *Formatter) RecordingStarted(permissionRestored bool) {
	if permissionRestored {
		f.dim.Fprintf(f.w, "🎙️  Microphone permission restored\n")
	}
	fmt.Fprintf(f.w, "🔴 Recording... press Enter or Ctrl+C to stop\n")
}

func (f *Formatter) RecordingStopped(duration time.Duration, size int) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s, %s)\n", formatDuration(duration), formatSize(size))
}

func (f *Formatter) NothingRecorded() {
	f.warning.Fprintf(f.w, "⚠️  Nothing was recorded\n")
}

func (f *Formatter) RecordingSaved(path string) {
	f.success.Fprintf(f.w, "✅ Recording saved: %s\n", path)
}

func (f *Formatter) ArchiveSaved(path string, duration time.Duration) {
	f.success.Fprintf(f.w, "✅ WAV archive saved: %s (%s)\n", path, formatDuration(duration))
}

func (f *Formatter) Uploading(endpoint string) {
	fmt.Fprintf(f.w, "📤 Uploading to %s...\n", endpoint)
}

func (f *Formatter) Transcription(text string) {
	f.success.Fprintf(f.w, "✅ Transcription: %s\n", text)
}

func (f *Formatter) PresenterListening(addr string) {
	f.dim.Fprintf(f.w, "🌐 Status page events on ws://%s/ws\n", addr)
}

func (f *Formatter) Error(msg string) {
	f.failure.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	f.success.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	f.warning.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) DeviceListHeader() {
	fmt.Fprintf(f.w, "🎤 Input devices:\n\n")
}

func (f *Formatter) DeviceListItem(d internal_capture.DeviceInfo) {
	marker := " "
	if d.IsDefault {
		marker = "*"
	}
	fmt.Fprintf(f.w, "  %s %s", marker, d.Name)
	f.dim.Fprintf(f.w, " (%d ch, %.0f Hz)\n", d.MaxInputChannels, d.DefaultSampleRate)
}

func (f *Formatter) SetupCheck(name string, ok bool, detail string) {
	if ok {
		fmt.Fprintf(f.w, "  ✅ %s: %s\n", name, detail)
	} else {
		f.failure.Fprintf(f.w, "  ❌ %s: %s\n", name, detail)
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}

func formatSize(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
