package listing

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jhoicas/backoffice-pos/internal/application/dto"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// ErrStale la respuesta llegó después de una petición más nueva y se descartó.
var ErrStale = errors.New("listing: respuesta descartada por una petición más reciente")

// FetchFunc trae una página del listado para el filtro dado.
type FetchFunc[F, T any] func(ctx context.Context, filter F) (dto.Page[T], error)

// Config opciones del loader.
type Config struct {
	Debounce time.Duration // ventana de coalescencia de SetFilter
	Timeout  time.Duration // límite de cada carga disparada por SetFilter
	Log      *logger.Logger
	OnError  func(err error) // p.ej. publicar un aviso; no se llama para respuestas descartadas
}

// Snapshot estado visible del listado.
type Snapshot[F, T any] struct {
	Loading bool   `json:"loading"`
	Pending bool   `json:"pending"` // hay un cambio de filtro esperando el debounce
	Filter  F      `json:"filter"`
	Items   []T    `json:"items"`
	Total   int    `json:"total"`
	Error   string `json:"error,omitempty"`
	Token   uint64 `json:"token"`
}

// Loader mantiene un listado y garantiza que una respuesta vieja nunca pisa a una nueva:
// cada carga lleva un token creciente, la carga anterior se cancela y su resultado se descarta.
type Loader[F, T any] struct {
	fetch    FetchFunc[F, T]
	debounce *Debouncer
	timeout  time.Duration
	log      *logger.Logger
	onError  func(error)

	initial F

	mu      sync.Mutex
	token   uint64
	cancel  context.CancelFunc
	filter  F
	items   []T
	total   int
	loading bool
	pending bool
	err     error
}

// NewLoader construye un loader con el filtro inicial.
func NewLoader[F, T any](fetch FetchFunc[F, T], initial F, cfg Config) *Loader[F, T] {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Log == nil {
		cfg.Log = logger.Nop()
	}
	return &Loader[F, T]{
		fetch:    fetch,
		debounce: NewDebouncer(cfg.Debounce),
		timeout:  cfg.Timeout,
		log:      cfg.Log,
		onError:  cfg.OnError,
		initial:  initial,
		filter:   initial,
	}
}

// Load carga inmediatamente con el filtro dado. Devuelve ErrStale si otra carga la reemplazó.
func (l *Loader[F, T]) Load(ctx context.Context, filter F) (dto.Page[T], error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	l.mu.Lock()
	l.token++
	tok := l.token
	if l.cancel != nil {
		l.cancel()
	}
	l.cancel = cancel
	l.filter = filter
	l.loading = true
	l.mu.Unlock()

	page, err := l.fetch(ctx, filter)

	l.mu.Lock()
	defer l.mu.Unlock()
	if tok != l.token {
		l.log.Debug().Uint64("token", tok).Uint64("latest", l.token).Msg("respuesta vieja descartada")
		return dto.Page[T]{}, ErrStale
	}
	l.cancel = nil
	l.loading = false
	if err != nil {
		l.err = err
		return page, err
	}
	l.items, l.total, l.err = page.Items, page.Total, nil
	return page, nil
}

// SetFilter agenda una carga con el filtro tras el debounce; cada llamada reemplaza la anterior.
func (l *Loader[F, T]) SetFilter(filter F) {
	l.mu.Lock()
	l.pending = true
	l.mu.Unlock()

	l.debounce.Trigger(func() {
		l.mu.Lock()
		l.pending = false
		l.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()
		if _, err := l.Load(ctx, filter); err != nil && !errors.Is(err, ErrStale) {
			l.log.Error().Err(err).Msg("no se pudo cargar el listado")
			if l.onError != nil {
				l.onError(err)
			}
		}
	})
}

// Refresh vuelve a cargar con el filtro vigente (después de una mutación).
func (l *Loader[F, T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	filter := l.filter
	l.mu.Unlock()
	_, err := l.Load(ctx, filter)
	return err
}

// Update aplica patch a los ítems que cumplen match, sin ir al servidor.
// Solo debe usarse con datos que el servidor ya confirmó.
func (l *Loader[F, T]) Update(match func(T) bool, patch func(*T)) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for i := range l.items {
		if match(l.items[i]) {
			patch(&l.items[i])
			n++
		}
	}
	return n
}

// Snapshot copia del estado actual.
func (l *Loader[F, T]) Snapshot() Snapshot[F, T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := Snapshot[F, T]{
		Loading: l.loading,
		Pending: l.pending,
		Filter:  l.filter,
		Items:   append([]T(nil), l.items...),
		Total:   l.total,
		Token:   l.token,
	}
	if l.err != nil {
		s.Error = l.err.Error()
	}
	return s
}

// Filter devuelve el último filtro usado.
func (l *Loader[F, T]) Filter() F {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}

// Close cancela el debounce pendiente y la carga en curso.
func (l *Loader[F, T]) Close() {
	l.debounce.Stop()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// Reset vuelve al estado inicial: sin ítems, con el filtro inicial. Una carga en curso
// se cancela y su respuesta se descarta. El loader sigue usable.
func (l *Loader[F, T]) Reset() {
	l.debounce.Stop()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
	l.token++
	l.filter = l.initial
	l.items, l.total, l.err = nil, 0, nil
}

func (l *Loader[F, T]) stopLocked() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.loading = false
	l.pending = false
}
