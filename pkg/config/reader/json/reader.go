package json

import (
	"errors"
	"os"
	"regexp"
	"time"

	"dario.cat/mergo"

	"github.com/ninja0404/trade-journal/pkg/config/encoder"
	"github.com/ninja0404/trade-journal/pkg/config/reader"
	"github.com/ninja0404/trade-journal/pkg/config/source"
)

type jsonReader struct {
	opts reader.Options
	json encoder.Encoder
}

// NewReader creates a json reader that merges changesets of any
// registered encoding into a single json document
func NewReader(opts ...reader.Option) reader.Reader {
	options := reader.NewOptions(opts...)
	return &jsonReader{
		json: options.Encoding["json"],
		opts: options,
	}
}

func (r *jsonReader) Merge(changes ...*source.ChangeSet) (*source.ChangeSet, error) {
	var merged map[string]interface{}

	for _, m := range changes {
		if m == nil {
			continue
		}

		if len(m.Data) == 0 {
			continue
		}

		codec, ok := r.opts.Encoding[m.Format]
		if !ok {
			// fallback
			codec = r.json
		}

		var data map[string]interface{}
		if err := codec.Decode(m.Data, &data); err != nil {
			return nil, err
		}
		if err := mergo.Map(&merged, data, mergo.WithOverride); err != nil {
			return nil, err
		}
	}

	b, err := r.json.Encode(merged)
	if err != nil {
		return nil, err
	}

	cs := &source.ChangeSet{
		Timestamp: time.Now(),
		Data:      b,
		Source:    "json",
		Format:    r.json.String(),
	}
	cs.Checksum = cs.Sum()

	return cs, nil
}

func (r *jsonReader) Values(ch *source.ChangeSet) (reader.Values, error) {
	if ch == nil {
		return nil, errors.New("changeset is nil")
	}
	if ch.Format != "json" {
		return nil, errors.New("unsupported format")
	}
	return newValues(ch)
}

func (r *jsonReader) String() string {
	return "json"
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)\}`)

// ReplaceEnvVars 替换配置内容中的 ${VAR} 环境变量占位符
func ReplaceEnvVars(raw []byte) ([]byte, error) {
	out := envVarPattern.ReplaceAllFunc(raw, func(in []byte) []byte {
		name := envVarPattern.FindSubmatch(in)[1]
		return []byte(os.Getenv(string(name)))
	})
	return out, nil
}
