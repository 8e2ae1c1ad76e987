// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package utils

import "fmt"

// set through -ldflags at build time
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func FullVersion() string {
	return fmt.Sprintf("recorder %s, commit %s, built at %s", Version, Commit, Date)
}
