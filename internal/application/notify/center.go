package notify

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/backoffice-pos/internal/domain"
	"github.com/jhoicas/backoffice-pos/pkg/logger"
)

// DefaultTTL tiempo de vida de un aviso antes de descartarse solo.
const DefaultTTL = 3 * time.Second

// Level nivel del aviso.
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notice aviso transitorio (toast).
type Notice struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Center acumula los avisos de los workflows y los descarta al vencer el TTL.
// Los errores además se registran en el log.
type Center struct {
	ttl     time.Duration
	log     *logger.Logger
	printer *message.Printer
	now     func() time.Time

	mu      sync.Mutex
	notices []Notice
}

// NewCenter construye el centro de avisos. Los números se formatean con convenciones en español.
func NewCenter(ttl time.Duration, log *logger.Logger) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Center{
		ttl:     ttl,
		log:     log,
		printer: message.NewPrinter(language.Spanish),
		now:     time.Now,
	}
}

// Success aviso de operación exitosa.
func (c *Center) Success(format string, args ...interface{}) Notice {
	return c.push(LevelSuccess, c.printer.Sprintf(format, args...))
}

// Info aviso informativo, no alarmante (p.ej. transferencia ya recibida).
func (c *Center) Info(format string, args ...interface{}) Notice {
	return c.push(LevelInfo, c.printer.Sprintf(format, args...))
}

// Error registra err en el log y publica un aviso con la acción y el mensaje apto para el operador.
func (c *Center) Error(err error, action string) Notice {
	c.log.Error().Err(err).Str("action", action).Str("kind", string(domain.KindOf(err))).Msg("operación fallida")
	return c.push(LevelError, action+": "+userMessage(err))
}

func userMessage(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Error()
	}
	if err == nil {
		return "error desconocido"
	}
	return err.Error()
}

func (c *Center) push(level Level, msg string) Notice {
	now := c.now()
	n := Notice{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   msg,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.mu.Lock()
	c.notices = append(c.pruneLocked(now), n)
	c.mu.Unlock()
	return n
}

// Active devuelve los avisos vigentes, del más viejo al más nuevo.
func (c *Center) Active() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notices = c.pruneLocked(c.now())
	out := make([]Notice, len(c.notices))
	copy(out, c.notices)
	return out
}

// Dismiss descarta un aviso antes de que venza.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.notices {
		if n.ID == id {
			c.notices = append(c.notices[:i], c.notices[i+1:]...)
			return true
		}
	}
	return false
}

// Clear descarta todos los avisos (cierre de sesión).
func (c *Center) Clear() {
	c.mu.Lock()
	c.notices = nil
	c.mu.Unlock()
}

func (c *Center) pruneLocked(now time.Time) []Notice {
	kept := c.notices[:0]
	for _, n := range c.notices {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	return kept
}
