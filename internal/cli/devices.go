// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_cli

import (
	"github.com/spf13/cobra"

	internal_output "github.com/rapidaai/linguastream/internal/output"
)

func NewDevicesCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			f := internal_output.NewFormatter(cmd.OutOrStdout())
			devices, err := deps.App.Devices.EnumerateDevices()
			if err != nil {
				return err
			}
			if len(devices) == 0 {
				f.Warning("No input devices found")
				return nil
			}
			f.DeviceListHeader()
			for _, d := range devices {
				f.DeviceListItem(d)
			}
			return nil
		},
	}
}
