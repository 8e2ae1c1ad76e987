// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package utils

// AverageUint8 returns the arithmetic mean of byte values, 0 for an empty slice.
// The result is always within [0, 255].
func AverageUint8(in []uint8) float64 {
	if len(in) == 0 {
		return 0
	}
	sum := 0
	for _, v := range in {
		sum += int(v)
	}
	return float64(sum) / float64(len(in))
}

// MinFloat64 returns the smaller of a and b.
func MinFloat64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
