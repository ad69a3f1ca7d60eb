package repository

import "context"

// KeyValueStore define el puerto de almacenamiento durable del estado de sesión (DIP).
// Get devuelve ok=false si la clave no existe.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}
