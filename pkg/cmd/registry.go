package cmd

import (
	"log/slog"

	"github.com/intelogroup/clixen/pkg/registry"
)

// NewRegistry returns the node type catalog the managed engine ships with.
func NewRegistry(logger *slog.Logger) *registry.Registry {
	return registry.NewBuiltinRegistry(logger)
}
