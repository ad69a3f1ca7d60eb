package storage

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/nacl/secretbox"

	"github.com/jhoicas/backoffice-pos/internal/domain/repository"
)

var _ repository.KeyValueStore = (*FileStore)(nil)

const nonceSize = 24

// ErrCorrupt el archivo no se pudo descifrar o interpretar.
var ErrCorrupt = errors.New("storage: archivo de sesión ilegible (clave incorrecta o archivo dañado)")

// FileStore guarda las claves en un único archivo JSON. Con secret, el contenido
// completo va cifrado con secretbox (clave = sha256(secret)).
// Cada escritura reemplaza el archivo de forma atómica (temporal + rename).
type FileStore struct {
	path string
	key  *[32]byte

	mu sync.Mutex
}

// NewFileStore construye el store; secret vacío guarda en claro.
func NewFileStore(path, secret string) *FileStore {
	s := &FileStore{path: path}
	if secret != "" {
		k := sha256.Sum256([]byte(secret))
		s.key = &k
	}
	return s
}

// Get lee una clave; ok=false si no existe o no hay archivo.
func (s *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return "", false, err
	}
	v, ok := data[key]
	return v, ok, nil
}

// Set guarda una clave.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil {
		return err
	}
	data[key] = value
	return s.save(data)
}

// Delete borra claves; si el archivo queda vacío se elimina.
func (s *FileStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	for _, k := range keys {
		delete(data, k)
	}
	if len(data) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("storage: borrar %s: %w", s.path, err)
		}
		return nil
	}
	return s.save(data)
}

func (s *FileStore) load() (map[string]string, error) {
	data := map[string]string{}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return data, fmt.Errorf("storage: leer %s: %w", s.path, err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if s.key != nil {
		if len(raw) < nonceSize {
			return data, ErrCorrupt
		}
		var nonce [nonceSize]byte
		copy(nonce[:], raw[:nonceSize])
		plain, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, s.key)
		if !ok {
			return data, ErrCorrupt
		}
		raw = plain
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]string{}, ErrCorrupt
	}
	return data, nil
}

func (s *FileStore) save(data map[string]string) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("storage: serializar: %w", err)
	}
	if s.key != nil {
		var nonce [nonceSize]byte
		if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
			return fmt.Errorf("storage: nonce: %w", err)
		}
		raw = secretbox.Seal(nonce[:], raw, &nonce, s.key)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("storage: temporal: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("storage: escribir: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: cerrar: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return fmt.Errorf("storage: permisos: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("storage: reemplazar %s: %w", s.path, err)
	}
	return nil
}
