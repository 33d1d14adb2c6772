package inventory

import (
	"fmt"
	"strings"
)

func indexOf[T any](items []T, match func(T) bool) int {
	for i, it := range items {
		if match(it) {
			return i
		}
	}
	return -1
}

// removeWhere returns items without the ones drop selects, plus how many
// were removed. items is never modified.
func removeWhere[T any](items []T, drop func(T) bool) ([]T, int) {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out, len(items) - len(out)
}

func requireName(what, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: %s name is required", ErrInvalidInput, what)
	}
	return name, nil
}

func notFound(what, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, what, id)
}
