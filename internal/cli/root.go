// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_cli

import (
	"github.com/spf13/cobra"

	"github.com/rapidaai/linguastream/config"
	internal_app "github.com/rapidaai/linguastream/internal/app"
	"github.com/rapidaai/linguastream/pkg/utils"
)

type Dependencies struct {
	App    *internal_app.App
	Config *config.AppConfig
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "recorder",
		Short:         "Record speech from the microphone and transcribe it",
		Long:          "Captures microphone audio as WebM/Opus, shows elapsed time and input level while recording, and uploads the clip to the transcription service.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.Version = utils.Version
	rootCmd.SetVersionTemplate(utils.FullVersion() + "\n")

	rootCmd.AddCommand(NewRecordCmd(deps))
	rootCmd.AddCommand(NewUploadCmd(deps))
	rootCmd.AddCommand(NewDevicesCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))
	rootCmd.AddCommand(NewPermissionCmd(deps))

	return rootCmd
}
