// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_cli

import (
	"fmt"

	"github.com/spf13/cobra"

	internal_clip "github.com/rapidaai/linguastream/internal/clip"
	internal_output "github.com/rapidaai/linguastream/internal/output"
)

func NewUploadCmd(deps *Dependencies) *cobra.Command {
	var mimeType string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Transcribe an existing recording",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internal_output.NewFormatter(cmd.OutOrStdout())

			blob, err := internal_clip.ReadFile(args[0], mimeType)
			if err != nil {
				return fmt.Errorf("reading recording: %w", err)
			}
			f.Uploading(deps.Config.Transcription.BaseURL)
			result := deps.App.Client.ProcessAudio(cmd.Context(), blob)
			if !result.Success {
				return fmt.Errorf("transcription failed: %s", result.Error)
			}
			f.Transcription(result.Transcription)
			return nil
		},
	}

	cmd.Flags().StringVar(&mimeType, "type", internal_clip.MimeTypeWebM, "Content type recorded on the uploaded clip")
	return cmd
}
