package config

import "context"

// Loader reads configuration from one or more paths and translates it into
// the format-agnostic model.
type Loader interface {
	Load(ctx context.Context, paths ...string) (*Model, error)
}
