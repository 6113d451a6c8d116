package config

import (
	"github.com/ninja0404/trade-journal/pkg/config/reader"
	jsonReader "github.com/ninja0404/trade-journal/pkg/config/reader/json"
	"github.com/ninja0404/trade-journal/pkg/config/source"
)

type Options struct {
	Reader reader.Reader
	Source []source.Source
}

type Option func(o *Options)

func NewOptions(opts ...Option) Options {
	options := Options{}
	for _, o := range opts {
		o(&options)
	}
	if options.Reader == nil {
		options.Reader = jsonReader.NewReader()
	}
	return options
}

// WithSource appends a source to list of sources
func WithSource(s source.Source) Option {
	return func(o *Options) {
		o.Source = append(o.Source, s)
	}
}

// WithReader sets the config reader
func WithReader(r reader.Reader) Option {
	return func(o *Options) {
		o.Reader = r
	}
}
