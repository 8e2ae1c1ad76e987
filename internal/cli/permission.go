// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_cli

import (
	"github.com/spf13/cobra"

	internal_output "github.com/rapidaai/linguastream/internal/output"
	internal_permission "github.com/rapidaai/linguastream/internal/permission"
)

func NewPermissionCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permission",
		Short: "Inspect the remembered microphone permission",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show whether microphone access was granted before",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internal_output.NewFormatter(cmd.OutOrStdout())
			granted, err := internal_permission.IsGranted(cmd.Context(), deps.App.Store)
			if err != nil {
				return err
			}
			if granted {
				f.Success("Microphone permission granted")
			} else {
				f.Info("Microphone permission not granted yet")
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Forget the remembered microphone permission",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := internal_permission.Revoke(cmd.Context(), deps.App.Store); err != nil {
				return err
			}
			internal_output.NewFormatter(cmd.OutOrStdout()).Success("Microphone permission cleared")
			return nil
		},
	})
	return cmd
}
