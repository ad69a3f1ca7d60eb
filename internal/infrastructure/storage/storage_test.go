package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-pos/pkg/config"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

func TestFileStore_EnClaro(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "sub", "session.json")
	s := NewFileStore(path, "")

	_, ok, err := s.Get(ctx, "backoffice:token")
	require.NoError(t, err, "sin archivo no es error")
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "backoffice:token", "tok-1"))
	require.NoError(t, s.Set(ctx, "backoffice:user", `{"id":7}`))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tok-1", "sin secreto se guarda en claro")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	// otra instancia sobre el mismo archivo ve lo persistido
	v, ok, err := NewFileStore(path, "").Get(ctx, "backoffice:user")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"id":7}`, v)

	require.NoError(t, s.Delete(ctx, "backoffice:token", "backoffice:user"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "sin claves el archivo se elimina")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Empty(t, entries, "no quedan temporales")
}

func TestFileStore_Cifrado(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.bin")
	s := NewFileStore(path, "clave-local")

	require.NoError(t, s.Set(ctx, "backoffice:token", "tok-secreto"))
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "tok-secreto", "el token no queda en claro")

	v, ok, err := NewFileStore(path, "clave-local").Get(ctx, "backoffice:token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-secreto", v)

	_, _, err = NewFileStore(path, "otra-clave").Get(ctx, "backoffice:token")
	assert.ErrorIs(t, err, ErrCorrupt, "con otra clave no se puede abrir")

	// el logout limpia aunque el archivo no se pueda leer
	require.NoError(t, NewFileStore(path, "otra-clave").Delete(ctx, "backoffice:token"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNew_ArchivoPorDefecto(t *testing.T) {
	cfg := &config.Config{Session: config.SessionConfig{
		Store: config.SessionStoreFile,
		File:  filepath.Join(t.TempDir(), "s.json"),
	}}
	kv, closeFn, err := New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer closeFn()
	assert.IsType(t, &FileStore{}, kv)
}

func TestNew_BackendDesconocido(t *testing.T) {
	cfg := &config.Config{Session: config.SessionConfig{Store: "memcached"}}
	_, _, err := New(context.Background(), cfg, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memcached")
}

func TestNew_RedisInalcanzable(t *testing.T) {
	cfg := &config.Config{
		Session: config.SessionConfig{Store: config.SessionStoreRedis},
		Redis:   config.RedisConfig{URL: "redis://127.0.0.1:1/0"},
	}
	_, _, err := New(context.Background(), cfg, logger.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping redis")
}
