package generator

import "os"

// EnvLookup resolves a forwarded environment variable.
type EnvLookup func(name string) (string, bool)

type options struct {
	lookupEnv EnvLookup
	perm      os.FileMode
}

// Option configures a generator.
type Option func(*options)

// WithEnvLookup replaces os.LookupEnv for forwarded context variables.
func WithEnvLookup(f EnvLookup) Option {
	return func(o *options) {
		o.lookupEnv = f
	}
}

// WithFileMode sets the permission bits of written artifacts.
func WithFileMode(perm os.FileMode) Option {
	return func(o *options) {
		o.perm = perm
	}
}

func newOptions(opts []Option) options {
	o := options{lookupEnv: os.LookupEnv, perm: 0o644}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
