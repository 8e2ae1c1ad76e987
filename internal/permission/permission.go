// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_permission

import (
	"context"
)

const (
	// Key under which the microphone grant is remembered between runs.
	Key = "microphonePermission"
	// Granted is the only value ever written under Key.
	Granted = "granted"
)

// Store is a small persistent string map. Get returns "" and no error for a
// missing key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

func IsGranted(ctx context.Context, s Store) (bool, error) {
	v, err := s.Get(ctx, Key)
	if err != nil {
		return false, err
	}
	return v == Granted, nil
}

func Grant(ctx context.Context, s Store) error {
	return s.Set(ctx, Key, Granted)
}

func Revoke(ctx context.Context, s Store) error {
	return s.Remove(ctx, Key)
}
