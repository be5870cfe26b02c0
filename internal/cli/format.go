package cli

import (
	"strings"

	"github.com/vk/pigeon/internal/pigeon"
)

func joinKeys(keys []pigeon.Key) string {
	if len(keys) == 0 {
		return "∅"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = string(k)
	}
	return strings.Join(parts, ", ")
}

func provideOf(k pigeon.Key) string {
	if k == "" {
		return "∅"
	}
	return string(k)
}
