package listing

import (
	"sync"
	"time"
)

// DefaultDebounce demora para coalescer cambios de filtro (tecleo) en una sola petición.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer ejecuta solo la última función agendada dentro de la ventana (last-write-wins).
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer crea un debouncer; delay <= 0 usa DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Trigger agenda fn y reemplaza cualquier llamada pendiente.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := seq == d.seq
		d.mu.Unlock()
		// un timer que ya disparó cuando llegó el Stop no debe ejecutar una llamada reemplazada
		if current {
			fn()
		}
	})
}

// Stop cancela la llamada pendiente, si la hay.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
