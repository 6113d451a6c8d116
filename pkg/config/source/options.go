package source

import (
	"context"
)

type Options struct {
	// Format of the config source: json, yaml, toml
	Format string

	// for alternative data
	Context context.Context
}

type Option func(o *Options)

func NewOptions(opts ...Option) Options {
	options := Options{
		Format:  "json",
		Context: context.Background(),
	}

	for _, o := range opts {
		o(&options)
	}

	return options
}

// WithFormat sets the format of the config source
func WithFormat(f string) Option {
	return func(o *Options) {
		o.Format = f
	}
}
