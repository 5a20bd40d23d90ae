// Package redisset 用 Redis SET 保存已见元组，使多个进程共享同一轮去重。
package redisset

import (
	"context"
	stdErrors "errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"combgen/errors"
	"combgen/logging"
	"combgen/patterns/retry"
	"combgen/tuple"
)

// client captures the subset of go-redis commands we rely on (for easier testing).
type client interface {
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SCard(ctx context.Context, key string) *redis.IntCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// Config Redis 集合配置
type Config struct {
	Client   redis.UniversalClient
	Addr     string
	Username string
	Password string
	DB       int

	// KeyPrefix 键前缀，默认 "seen:"
	KeyPrefix string

	// Namespace 一轮枚举的标识，共享去重的进程必须使用相同的值。默认随机生成。
	Namespace string

	// TTL 集合键的过期时间，0 表示不过期
	TTL time.Duration

	Retry  retry.Config
	Logger logging.Logger
}

// Set 实现 seenset.Set
type Set struct {
	cfg       Config
	client    client
	ownClient bool
	key       string
	logger    logging.Logger

	mu        sync.Mutex
	expirySet bool
}

var errUnencodable = stdErrors.New("redisset: tuple cannot be encoded")

// New 创建 Redis 集合
func New(cfg Config) (*Set, error) {
	var cl client
	own := false
	if cfg.Client != nil {
		cl = cfg.Client
	} else {
		if cfg.Addr == "" {
			return nil, errors.NewError(errors.ErrCodeInvalidArgument, "redis 地址不能为空")
		}
		cl = redis.NewClient(&redis.Options{Addr: cfg.Addr, Username: cfg.Username, Password: cfg.Password, DB: cfg.DB})
		own = true
	}
	s := newWithClient(cl, cfg)
	s.ownClient = own
	return s, nil
}

func newWithClient(cl client, cfg Config) *Set {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "seen:"
	}
	if cfg.Namespace == "" {
		cfg.Namespace = uuid.NewString()
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.DefaultConfig()
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger().WithFields(logging.String("component", "seenset.redis"))
	}
	return &Set{
		cfg:    cfg,
		client: cl,
		key:    cfg.KeyPrefix + cfg.Namespace,
		logger: cfg.Logger,
	}
}

// Key 当前使用的 Redis 键
func (s *Set) Key() string {
	return s.key
}

// Add SADD 返回 1 表示新成员。
// 传输错误直接返回，由调用方通过 Err 感知，不能当作已存在。
func (s *Set) Add(ctx context.Context, t tuple.Tuple) (bool, error) {
	member, err := t.Key()
	if err != nil {
		return false, errors.WrapError(stdErrors.Join(errUnencodable, err),
			errors.ErrCodeInvalidArgument, "元组无法写入 redis")
	}

	// SADD 不重试：首次写入可能已生效而只丢了回复，重试得到的 0 无法区分
	added, err := s.client.SAdd(ctx, s.key, member).Result()
	if err != nil {
		return false, errors.WrapStoreError(ctx, err, "SADD "+s.key)
	}

	if added == 1 && s.cfg.TTL > 0 {
		s.ensureExpiry(ctx)
	}
	return added == 1, nil
}

// ensureExpiry 每个键只设置一次过期时间，失败只记录日志
func (s *Set) ensureExpiry(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.expirySet {
		return
	}
	if err := s.client.Expire(ctx, s.key, s.cfg.TTL).Err(); err != nil {
		s.logger.Warn(ctx, "设置集合过期时间失败", logging.String("key", s.key), logging.Error(err))
		return
	}
	s.expirySet = true
}

func (s *Set) Len(ctx context.Context) (int, error) {
	n, err := s.client.SCard(ctx, s.key).Result()
	if err != nil {
		return 0, errors.WrapStoreError(ctx, err, "SCARD "+s.key)
	}
	return int(n), nil
}

func (s *Set) Clear(ctx context.Context) error {
	err := retry.Do(ctx, func(ctx context.Context) error {
		return s.client.Del(ctx, s.key).Err()
	}, s.cfg.Retry)
	if err != nil {
		return errors.WrapStoreError(ctx, err, "DEL "+s.key)
	}
	s.mu.Lock()
	s.expirySet = false
	s.mu.Unlock()
	return nil
}

// Close 只关闭由 New 自行创建的客户端
func (s *Set) Close() error {
	if s.ownClient {
		return s.client.Close()
	}
	return nil
}
