package confloader

import (
	"errors"
	"strings"
)

// ErrReadBytesNotSupported is returned by providers that only serve maps.
var ErrReadBytesNotSupported = errors.New("confloader: ReadBytes not supported")

// mapProvider serves an in-memory map to koanf. Keys may be dotted
// ("log.level") or nested maps.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

func (m mapProvider) Read() (map[string]any, error) {
	return unflatten(m), nil
}

func unflatten(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, val := range in {
		parts := strings.Split(key, ".")
		cur := out
		for _, p := range parts[:len(parts)-1] {
			next, ok := cur[p].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[p] = next
			}
			cur = next
		}
		cur[parts[len(parts)-1]] = val
	}
	return out
}
