package config

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/ninja0404/trade-journal/pkg/config/reader"
	jsonReader "github.com/ninja0404/trade-journal/pkg/config/reader/json"
	"github.com/ninja0404/trade-journal/pkg/config/source"
)

// Config 配置管理器：合并多个数据源，支持热更新
type Config struct {
	opts Options

	sync.RWMutex
	changesets []*source.ChangeSet
	snapshot   *source.ChangeSet
	values     reader.Values
	watchers   []source.Watcher
}

var defaultConfig *Config

func New(opts ...Option) *Config {
	options := NewOptions(opts...)
	return &Config{opts: options}
}

// Load 读取所有数据源并合并配置，随后启动热更新监听
func (c *Config) Load(sources ...source.Source) error {
	c.opts.Source = append(c.opts.Source, sources...)

	c.Lock()
	defer c.Unlock()

	c.changesets = make([]*source.ChangeSet, len(c.opts.Source))
	for i, s := range c.opts.Source {
		cs, err := s.Read()
		if err != nil {
			return errors.Wrapf(err, "read config source %s", s.String())
		}
		c.changesets[i] = cs
	}

	if err := c.reload(); err != nil {
		return err
	}

	// 启动配置监听
	for i, s := range c.opts.Source {
		w, err := s.Watch()
		if err != nil {
			// 数据源不支持watch时跳过
			continue
		}
		c.watchers = append(c.watchers, w)
		go c.watch(i, w)
	}

	return nil
}

// reload 重新合并changesets，调用方需持有锁
func (c *Config) reload() error {
	merged, err := c.opts.Reader.Merge(c.changesets...)
	if err != nil {
		return err
	}

	values, err := c.opts.Reader.Values(merged)
	if err != nil {
		return err
	}

	c.snapshot = merged
	c.values = values
	return nil
}

// watch 接收数据源变更并重新合并，底层包不依赖日志组件
func (c *Config) watch(idx int, w source.Watcher) {
	for {
		cs, err := w.Next()
		if err != nil {
			// ErrWatcherStopped或数据源异常都终止本监听
			return
		}

		c.Lock()
		c.changesets[idx] = cs
		// 热更新失败保留上一份快照
		_ = c.reload()
		c.Unlock()
	}
}

func (c *Config) Get(path ...string) reader.Value {
	c.RLock()
	defer c.RUnlock()
	return c.values.Get(path...)
}

func (c *Config) Scan(v interface{}) error {
	c.RLock()
	defer c.RUnlock()
	return c.values.Scan(v)
}

func (c *Config) Bytes() []byte {
	c.RLock()
	defer c.RUnlock()
	return c.values.Bytes()
}

// Close 停止所有watcher
func (c *Config) Close() error {
	for _, w := range c.watchers {
		w.Stop()
	}
	return nil
}

// 包级默认实例，业务侧直接 config.Load / config.Get / config.Scan

func Load(sources ...source.Source) error {
	if defaultConfig == nil {
		defaultConfig = New(WithReader(jsonReader.NewReader()))
	}
	return defaultConfig.Load(sources...)
}

func Get(path ...string) reader.Value {
	return defaultConfig.Get(path...)
}

func Scan(v interface{}) error {
	return defaultConfig.Scan(v)
}

func Bytes() []byte {
	return defaultConfig.Bytes()
}

func Close() error {
	if defaultConfig == nil {
		return nil
	}
	return defaultConfig.Close()
}
