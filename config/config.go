// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/rapidaai/linguastream/pkg/utils"
)

type TranscriptionConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type CaptureConfig struct {
	// portaudio or synthetic
	Device string `mapstructure:"device" validate:"required,oneof=portaudio synthetic"`
	// input device name for portaudio, default input when empty
	DeviceName   string `mapstructure:"device_name"`
	SampleRate   int    `mapstructure:"sample_rate" validate:"required,gt=0"`
	ChannelCount int    `mapstructure:"channel_count" validate:"required,gt=0"`
}

type RecorderConfig struct {
	MimeType      string        `mapstructure:"mime_type" validate:"required"`
	Timeslice     time.Duration `mapstructure:"timeslice" validate:"gt=0"`
	FrameInterval time.Duration `mapstructure:"frame_interval" validate:"gt=0"`
	TimerInterval time.Duration `mapstructure:"timer_interval" validate:"gt=0"`
}

type PermissionConfig struct {
	Backend string `mapstructure:"backend" validate:"required,oneof=file redis"`
	Path    string `mapstructure:"path"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	Prefix   string `mapstructure:"prefix"`
}

type PresenterConfig struct {
	Listen string `mapstructure:"listen"`
}

// Application config structure
type AppConfig struct {
	Name          string              `mapstructure:"service_name" validate:"required"`
	Version       string              `mapstructure:"version" validate:"required"`
	LogLevel      string              `mapstructure:"log_level" validate:"required"`
	LogPath       string              `mapstructure:"log_path"`
	Transcription TranscriptionConfig `mapstructure:"transcription" validate:"required"`
	Capture       CaptureConfig       `mapstructure:"capture" validate:"required"`
	Recorder      RecorderConfig      `mapstructure:"recorder" validate:"required"`
	Permission    PermissionConfig    `mapstructure:"permission" validate:"required"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Presenter     PresenterConfig     `mapstructure:"presenter"`
}

// reading config and intializing configs for application
func InitConfig() (*viper.Viper, error) {
	vConfig := viper.NewWithOptions(viper.KeyDelimiter("__"))

	vConfig.AddConfigPath(".")
	vConfig.SetConfigName(".env")
	if path := os.Getenv("ENV_PATH"); path != "" {
		log.Printf("env path %v", path)
		vConfig.SetConfigFile(path)
	}
	vConfig.SetConfigType("env")
	vConfig.AutomaticEnv()

	setDefault(vConfig)
	if err := vConfig.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}
	return vConfig, nil
}

func setDefault(v *viper.Viper) {
	v.SetDefault("SERVICE_NAME", "linguastream-recorder")
	v.SetDefault("VERSION", "0.0.1")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PATH", defaultStateDir("logs"))

	v.SetDefault("TRANSCRIPTION__BASE_URL", "http://localhost:5000")
	v.SetDefault("TRANSCRIPTION__TIMEOUT", "60s")

	v.SetDefault("CAPTURE__DEVICE", "portaudio")
	v.SetDefault("CAPTURE__DEVICE_NAME", "")
	v.SetDefault("CAPTURE__SAMPLE_RATE", 16000)
	v.SetDefault("CAPTURE__CHANNEL_COUNT", 1)

	v.SetDefault("RECORDER__MIME_TYPE", "audio/webm;codecs=opus")
	v.SetDefault("RECORDER__TIMESLICE", "100ms")
	v.SetDefault("RECORDER__FRAME_INTERVAL", "16ms")
	v.SetDefault("RECORDER__TIMER_INTERVAL", "100ms")

	v.SetDefault("PERMISSION__BACKEND", "file")
	v.SetDefault("PERMISSION__PATH", defaultStateDir("storage.json"))

	v.SetDefault("REDIS__ADDR", "")
	v.SetDefault("REDIS__PASSWORD", "")
	v.SetDefault("REDIS__DB", 0)
	v.SetDefault("REDIS__PREFIX", "linguastream:")

	v.SetDefault("PRESENTER__LISTEN", "")
}

// Getting application config from viper
func GetApplicationConfig(v *viper.Viper) (*AppConfig, error) {
	var config AppConfig
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}

	// valdating the app config
	validate := validator.New()
	if err = validate.Struct(&config); err != nil {
		log.Printf("%+v\n", err)
		return nil, err
	}
	if config.Permission.Backend == "redis" && utils.IsEmpty(config.Redis.Addr) {
		return nil, errors.New("REDIS__ADDR is required when PERMISSION__BACKEND is redis")
	}
	if config.Permission.Backend == "file" && utils.IsEmpty(config.Permission.Path) {
		return nil, errors.New("PERMISSION__PATH is required when PERMISSION__BACKEND is file")
	}
	return &config, nil
}

func defaultStateDir(name string) string {
	if dir, err := os.UserConfigDir(); err == nil {
		return dir + string(os.PathSeparator) + "linguastream" + string(os.PathSeparator) + name
	}
	return ".linguastream" + string(os.PathSeparator) + name
}
