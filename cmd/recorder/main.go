// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package main

import (
	"fmt"
	"os"

	"github.com/rapidaai/linguastream/config"
	internal_app "github.com/rapidaai/linguastream/internal/app"
	internal_cli "github.com/rapidaai/linguastream/internal/cli"
	internal_output "github.com/rapidaai/linguastream/internal/output"
	"github.com/rapidaai/linguastream/pkg/commons"
)

func main() {
	if err := run(); err != nil {
		internal_output.NewFormatter(os.Stderr).Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	vConfig, err := config.InitConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg, err := config.GetApplicationConfig(vConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// the terminal belongs to the status line, logs go to the file only
	logger, err := commons.NewApplicationLogger(
		commons.Name(cfg.Name),
		commons.Path(cfg.LogPath),
		commons.Level(cfg.LogLevel),
		commons.Console(false),
	)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Sync()

	application, err := internal_app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer application.Close()

	deps := &internal_cli.Dependencies{
		App:    application,
		Config: cfg,
	}
	return internal_cli.NewRootCmd(deps).Execute()
}
