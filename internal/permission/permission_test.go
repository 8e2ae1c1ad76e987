// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_permission

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-redis/redismock/v9"
	"github.com/rapidaai/linguastream/pkg/commons"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_GrantAndRevoke(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "permission.json")
	s := NewFileStore(commons.NewNopLogger(), path)

	granted, err := IsGranted(ctx, s)
	require.NoError(t, err)
	assert.False(t, granted)

	require.NoError(t, Grant(ctx, s))
	granted, err = IsGranted(ctx, s)
	require.NoError(t, err)
	assert.True(t, granted)

	reopened := NewFileStore(commons.NewNopLogger(), path)
	v, err := reopened.Get(ctx, Key)
	require.NoError(t, err)
	assert.Equal(t, Granted, v)

	require.NoError(t, Revoke(ctx, reopened))
	require.NoError(t, Revoke(ctx, reopened))
	granted, err = IsGranted(ctx, s)
	require.NoError(t, err)
	assert.False(t, granted)
}

func TestFileStore_KeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	s := NewFileStore(commons.NewNopLogger(), filepath.Join(t.TempDir(), "p.json"))
	require.NoError(t, s.Set(ctx, "theme", "dark"))
	require.NoError(t, Grant(ctx, s))
	require.NoError(t, Revoke(ctx, s))

	v, err := s.Get(ctx, "theme")
	require.NoError(t, err)
	assert.Equal(t, "dark", v)
}

func TestFileStore_CorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s := NewFileStore(commons.NewNopLogger(), path)

	_, err := IsGranted(ctx, s)
	assert.Error(t, err)

	require.NoError(t, Revoke(ctx, s))
	granted, err := IsGranted(ctx, s)
	require.NoError(t, err)
	assert.False(t, granted)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	require.NoError(t, Grant(ctx, s))
	granted, err = IsGranted(ctx, s)
	require.NoError(t, err)
	assert.True(t, granted)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, commons.NewNopLogger(), "linguastream:")
	key := "linguastream:" + Key

	mock.ExpectGet(key).RedisNil()
	granted, err := IsGranted(ctx, s)
	require.NoError(t, err)
	assert.False(t, granted)

	mock.ExpectSet(key, Granted, 0).SetVal("OK")
	require.NoError(t, Grant(ctx, s))

	mock.ExpectGet(key).SetVal(Granted)
	granted, err = IsGranted(ctx, s)
	require.NoError(t, err)
	assert.True(t, granted)

	mock.ExpectDel(key).SetVal(1)
	require.NoError(t, Revoke(ctx, s))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisStore_Errors(t *testing.T) {
	ctx := context.Background()
	db, mock := redismock.NewClientMock()
	s := NewRedisStore(db, commons.NewNopLogger(), "")

	mock.ExpectGet(Key).SetErr(errors.New("connection refused"))
	_, err := IsGranted(ctx, s)
	assert.ErrorContains(t, err, "connection refused")

	mock.ExpectSet(Key, Granted, 0).SetErr(errors.New("readonly"))
	assert.ErrorContains(t, Grant(ctx, s), "readonly")

	mock.ExpectDel(Key).SetErr(errors.New("timeout"))
	assert.ErrorContains(t, Revoke(ctx, s), "timeout")

	assert.NoError(t, mock.ExpectationsWereMet())
}
