// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_app

import (
	"fmt"

	"github.com/rapidaai/linguastream/config"
	internal_capture "github.com/rapidaai/linguastream/internal/capture"
	internal_capture_portaudio "github.com/rapidaai/linguastream/internal/capture/portaudio"
	internal_permission "github.com/rapidaai/linguastream/internal/permission"
	internal_presenter "github.com/rapidaai/linguastream/internal/presenter"
	internal_recorder "github.com/rapidaai/linguastream/internal/recorder"
	internal_controller "github.com/rapidaai/linguastream/internal/recorder/controller"
	internal_scheduler "github.com/rapidaai/linguastream/internal/scheduler"
	transcription_client "github.com/rapidaai/linguastream/pkg/clients/transcription"
	"github.com/rapidaai/linguastream/pkg/commons"
	"github.com/redis/go-redis/v9"
)

// App holds the long lived collaborators built from configuration.
type App struct {
	Config    *config.AppConfig
	Logger    commons.Logger
	Devices   *internal_capture.MediaDevices
	Store     internal_permission.Store
	Client    transcription_client.TranscriptionServiceClient
	Scheduler internal_scheduler.Scheduler

	redis *redis.Client
}

func New(cfg *config.AppConfig, logger commons.Logger) (*App, error) {
	device, err := newDevice(cfg, logger)
	if err != nil {
		return nil, err
	}
	a := &App{
		Config:    cfg,
		Logger:    logger,
		Devices:   internal_capture.NewMediaDevices(logger, device),
		Client:    transcription_client.NewTranscriptionServiceClient(&cfg.Transcription, logger),
		Scheduler: internal_scheduler.NewTickerScheduler(cfg.Recorder.FrameInterval),
	}

	switch cfg.Permission.Backend {
	case "redis":
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		a.Store = internal_permission.NewRedisStore(a.redis, logger, cfg.Redis.Prefix)
	case "file":
		a.Store = internal_permission.NewFileStore(logger, cfg.Permission.Path)
	default:
		return nil, fmt.Errorf("unknown permission backend %q", cfg.Permission.Backend)
	}
	logger.Debugf("app initialized with %s capture and %s permission store", device.Name(), cfg.Permission.Backend)
	return a, nil
}

func newDevice(cfg *config.AppConfig, logger commons.Logger) (internal_capture.Device, error) {
	switch cfg.Capture.Device {
	case "portaudio":
		return internal_capture_portaudio.NewDevice(logger, cfg.Capture.DeviceName), nil
	case "synthetic":
		return &internal_capture.SyntheticDevice{Realtime: true}, nil
	default:
		return nil, fmt.Errorf("unknown capture device %q", cfg.Capture.Device)
	}
}

// Constraints are the fixed speech constraints with the configured format.
func (a *App) Constraints() internal_capture.Constraints {
	c := internal_capture.DefaultConstraints()
	c.SampleRate = a.Config.Capture.SampleRate
	c.ChannelCount = a.Config.Capture.ChannelCount
	return c
}

func (a *App) recorderOptions() []internal_recorder.Option {
	return []internal_recorder.Option{
		internal_recorder.WithScheduler(a.Scheduler),
		internal_recorder.WithConstraints(a.Constraints()),
		internal_recorder.WithTimeslice(a.Config.Recorder.Timeslice),
		internal_recorder.WithTimerInterval(a.Config.Recorder.TimerInterval),
		internal_recorder.WithMediaRecorderFactory(internal_recorder.NewWebMRecorderFactory(a.Logger, a.Config.Recorder.MimeType)),
	}
}

func (a *App) NewRecorder() *internal_recorder.Recorder {
	return internal_recorder.NewRecorder(a.Logger, a.Devices, a.recorderOptions()...)
}

func (a *App) NewUploadRecorder(p internal_presenter.Presenter) *internal_recorder.UploadRecorder {
	return internal_recorder.NewUploadRecorder(a.Logger, a.Devices, a.Store, a.Client, p, a.recorderOptions()...)
}

func (a *App) NewController(rec *internal_recorder.UploadRecorder, p internal_presenter.Presenter) *internal_controller.Controller {
	return internal_controller.NewController(a.Logger, rec, a.Store, p)
}

func (a *App) Close() error {
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
