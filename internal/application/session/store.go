package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/backoffice-pos/internal/domain/entity"
	"github.com/jhoicas/backoffice-pos/internal/domain/repository"
	"github.com/jhoicas/backoffice-pos/pkg/jwt"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// DefaultNamespace prefijo de las claves persistidas.
const DefaultNamespace = "backoffice"

// Store es el estado de sesión del back-office: token bearer + usuario.
// Se persiste bajo claves fijas "<ns>:token" y "<ns>:user" en un KeyValueStore.
// Ausencia de token = no autenticado.
type Store struct {
	kv  repository.KeyValueStore
	ns  string
	log *logger.Logger
	now func() time.Time

	mu    sync.RWMutex
	token string
	user  *entity.User
}

// NewStore construye el store; namespace vacío usa DefaultNamespace.
func NewStore(kv repository.KeyValueStore, namespace string, log *logger.Logger) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Store{kv: kv, ns: namespace, log: log, now: time.Now}
}

func (s *Store) tokenKey() string { return s.ns + ":token" }
func (s *Store) userKey() string  { return s.ns + ":user" }

// Init lee el valor persistido. Un token vencido se descarta y se limpian ambas claves.
func (s *Store) Init(ctx context.Context) error {
	token, ok, err := s.kv.Get(ctx, s.tokenKey())
	if err != nil {
		return fmt.Errorf("session: leer token: %w", err)
	}
	if !ok || token == "" {
		s.reset()
		return nil
	}
	var user *entity.User
	raw, ok, err := s.kv.Get(ctx, s.userKey())
	if err != nil {
		return fmt.Errorf("session: leer usuario: %w", err)
	}
	if ok && raw != "" {
		var u entity.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			s.log.Warn().Err(err).Msg("usuario persistido ilegible, se ignora")
		} else {
			user = &u
		}
	}
	if s.expired(token) {
		s.log.Info().Msg("token persistido vencido, se limpia la sesión")
		return s.Clear(ctx)
	}

	s.mu.Lock()
	s.token, s.user = token, user
	s.mu.Unlock()
	return nil
}

// Set registra un login: persiste token y usuario y los deja en memoria.
func (s *Store) Set(ctx context.Context, token string, user entity.User) error {
	if token == "" {
		return fmt.Errorf("session: token vacío")
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: serializar usuario: %w", err)
	}
	if err := s.kv.Set(ctx, s.tokenKey(), token); err != nil {
		return fmt.Errorf("session: guardar token: %w", err)
	}
	if err := s.kv.Set(ctx, s.userKey(), string(raw)); err != nil {
		return fmt.Errorf("session: guardar usuario: %w", err)
	}
	s.mu.Lock()
	s.token, s.user = token, &user
	s.mu.Unlock()
	s.log.Info().Int64("user_id", user.ID).Msg("sesión iniciada")
	return nil
}

// Clear cierra la sesión: borra ambas claves. El estado en memoria se limpia aunque falle el borrado.
func (s *Store) Clear(ctx context.Context) error {
	s.reset()
	if err := s.kv.Delete(ctx, s.tokenKey(), s.userKey()); err != nil {
		return fmt.Errorf("session: borrar claves: %w", err)
	}
	return nil
}

func (s *Store) reset() {
	s.mu.Lock()
	s.token, s.user = "", nil
	s.mu.Unlock()
}

// Token devuelve el token actual ("" si no hay sesión).
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User devuelve una copia del usuario actual o nil.
func (s *Store) User() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// IsAuthenticated: hay token y, si es un JWT con exp, no venció.
func (s *Store) IsAuthenticated() bool {
	token := s.Token()
	return token != "" && !s.expired(token)
}

// expired solo puede afirmar el vencimiento de un JWT legible con exp; un token opaco no vence del lado del cliente.
func (s *Store) expired(token string) bool {
	claims, err := jwt.Inspect(token)
	if err != nil {
		return false
	}
	return claims.Expired(s.now())
}
