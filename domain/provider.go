package domain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"combgen/cache"
	"combgen/errors"
	"combgen/logging"
)

// Factory 按需生成取值域的候选值
type Factory func(ctx context.Context) ([]any, error)

// ProviderConfig 取值域提供者配置
type ProviderConfig struct {
	// CacheSize 缓存的取值域个数上限，0 表示不限制
	CacheSize int

	// TTL 缓存过期时间，0 表示不过期
	TTL time.Duration

	Logger logging.Logger
}

// DefaultProviderConfig 返回默认配置
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{CacheSize: 256}
}

// Provider 按名称注册工厂，解析时执行工厂并缓存得到的取值域
type Provider struct {
	mu        sync.RWMutex
	factories map[string]Factory
	resolved  *cache.Cache[string, Domain]
	logger    logging.Logger
}

// NewProvider 创建取值域提供者
func NewProvider(cfg ProviderConfig) *Provider {
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger().WithFields(logging.String("component", "domain.provider"))
	}
	return &Provider{
		factories: make(map[string]Factory),
		resolved: cache.New[string, Domain](cache.Config{
			Name:    "factory_domains",
			MaxSize: cfg.CacheSize,
			TTL:     cfg.TTL,
		}),
		logger: cfg.Logger,
	}
}

// Register 注册命名工厂，名称不能重复
func (p *Provider) Register(name string, factory Factory) error {
	if factory == nil {
		return errors.NewArgumentNullError("factory")
	}
	if name == "" {
		return errors.NewError(errors.ErrCodeInvalidArgument, "取值域名称不能为空")
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.factories[name]; exists {
		return errors.NewError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("取值域 %q 已注册", name))
	}
	p.factories[name] = factory
	return nil
}

// Resolve 解析命名取值域。工厂失败时不缓存，下次解析会重试。
func (p *Provider) Resolve(ctx context.Context, name string) (Domain, error) {
	p.mu.RLock()
	factory, ok := p.factories[name]
	p.mu.RUnlock()
	if !ok {
		return nil, errors.NewError(errors.ErrCodeNotFound,
			fmt.Sprintf("取值域 %q 未注册", name))
	}

	return p.resolved.GetOrLoad(name, func() (Domain, error) {
		start := time.Now()
		values, err := factory(ctx)
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrCodeInternal,
				fmt.Sprintf("取值域 %q 的工厂执行失败", name))
		}
		p.logger.Debug(ctx, "取值域已生成",
			logging.String("domain", name),
			logging.Int("count", len(values)),
			logging.Duration("elapsed", time.Since(start)))
		return NewArray(name, values...), nil
	})
}

// Collection 按参数顺序解析多个命名取值域
func (p *Provider) Collection(ctx context.Context, names ...string) (*Collection, error) {
	domains := make([]Domain, 0, len(names))
	for _, name := range names {
		d, err := p.Resolve(ctx, name)
		if err != nil {
			return nil, err
		}
		domains = append(domains, d)
	}
	return NewCollection(domains...), nil
}

// Invalidate 丢弃已缓存的取值域，下次解析重新执行工厂
func (p *Provider) Invalidate(name string) {
	p.resolved.Delete(name)
}
