package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/errgroup"

	"github.com/darkit/refurbish"
)

const (
	DefaultWorkers  = 4
	DefaultTimeout  = 10 * time.Second
	DefaultCacheTTL = 30 * time.Minute

	factsCacheKey = "facts"
)

// Collector 并发运行平台的全部信号源并合成 Facts。
//
// 采集结果按 TTL 缓存（硬件事实在一次运行内几乎不变，外部命令却很慢）。
type Collector struct {
	platform Platform
	workers  int
	timeout  time.Duration
	cacheTTL time.Duration
	cache    *gocache.Cache
	logger   *slog.Logger
}

// CollectorOption 配置 Collector。
type CollectorOption func(*Collector)

// WithWorkers 最大并发探针数，<= 0 时取 1。
func WithWorkers(n int) CollectorOption {
	return func(c *Collector) {
		if n <= 0 {
			n = 1
		}
		c.workers = n
	}
}

// WithTimeout 单个探针的超时；<= 0 时使用默认值。
func WithTimeout(d time.Duration) CollectorOption {
	return func(c *Collector) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithCacheTTL 采集结果缓存时长，0 表示不缓存。
func WithCacheTTL(d time.Duration) CollectorOption {
	return func(c *Collector) {
		c.cacheTTL = d
	}
}

// WithLogger 设置日志。
func WithLogger(l *slog.Logger) CollectorOption {
	return func(c *Collector) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCollector 创建收集器。
func NewCollector(p Platform, opts ...CollectorOption) *Collector {
	c := &Collector{
		platform: p,
		workers:  DefaultWorkers,
		timeout:  DefaultTimeout,
		cacheTTL: DefaultCacheTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.cacheTTL > 0 {
		c.cache = gocache.New(c.cacheTTL, 2*c.cacheTTL)
	}
	return c
}

// Platform 返回收集器绑定的平台。
func (c *Collector) Platform() Platform {
	return c.platform
}

// Collect 运行全部信号源。
//
// 返回的 error 只汇总各探针的失败原因，供日志/诊断使用；Facts 总是可用的，
// 失败的探针只是没有贡献对应字段。缓存内外各持一份拷贝，调用方可以随意修改。
func (c *Collector) Collect(ctx context.Context) (refurbish.Facts, error) {
	if c.cache != nil {
		if v, ok := c.cache.Get(factsCacheKey); ok {
			c.logger.Debug("facts served from cache")
			return v.(refurbish.Facts).Clone(), nil
		}
	}

	sources := c.platform.Sources()
	setters := make([]Setter, len(sources))
	errs := make([]error, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i, src := range sources {
		g.Go(func() error {
			start := time.Now()
			set, err := c.probe(gctx, src)
			if err != nil {
				errs[i] = err
				if errors.Is(err, context.DeadlineExceeded) {
					c.logger.Warn("probe timed out", "probe", src.Name, "timeout", c.timeout)
				} else {
					c.logger.Debug("probe failed", "probe", src.Name, "error", err)
				}
				return nil
			}
			setters[i] = set
			c.logger.Debug("probe finished", "probe", src.Name, "elapsed", time.Since(start))
			return nil
		})
	}
	_ = g.Wait() // 错误已记录在 errs 中

	var facts refurbish.Facts
	for _, set := range setters {
		if set != nil {
			set(&facts)
		}
	}

	if c.cache != nil && ctx.Err() == nil {
		c.cache.SetDefault(factsCacheKey, facts.Clone())
	}
	return facts, errors.Join(errs...)
}

// Telemetry 采集电池/存储健康信息，整体受一个探针超时约束。
func (c *Collector) Telemetry(ctx context.Context) Telemetry {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.platform.Telemetry(ctx)
}

// ClearCache 丢弃缓存，下次 Collect 重新探测。
func (c *Collector) ClearCache() {
	if c.cache != nil {
		c.cache.Flush()
	}
}

// probe 在独立 goroutine 中运行探针；即使探针忽略 ctx，超时后也立即返回。
func (c *Collector) probe(ctx context.Context, src Source) (Setter, error) {
	if src.Probe == nil {
		return nil, fmt.Errorf("probe %s: no probe function", src.Name)
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		set Setter
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		set, err := src.Probe(ctx)
		ch <- result{set: set, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("probe %s: %w", src.Name, r.err)
		}
		return r.set, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("probe %s: %w", src.Name, ctx.Err())
	}
}
