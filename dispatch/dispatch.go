// Package dispatch 把枚举出的测试用例发布到 NATS，由分布式的测试进程消费。
//
// 每个用例发布到主题 <SubjectPrefix>.<suite>，消息体为 JSON：
//
//	{"run_id": "...", "suite": "...", "index": 3, "tuple": [{"t":"int","v":"1"}], "timestamp": 1700000000000000000}
//
// tuple 字段使用 tuple.Marshal 的编码，只支持标量值。
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"combgen/errors"
	"combgen/logging"
	"combgen/patterns/retry"
	"combgen/tuple"
	"combgen/validation"
)

// conn 依赖的 nats.Conn 方法子集，便于测试替换
type conn interface {
	Publish(subj string, data []byte) error
	Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error)
	Close()
}

// Config 分发配置
type Config struct {
	URL  string
	Conn *nats.Conn

	// SubjectPrefix 主题前缀，默认 "combgen.cases"
	SubjectPrefix string

	Retry  retry.Config
	Logger logging.Logger
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "combgen.cases",
		Retry:         retry.DefaultConfig(),
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	return validation.ValidateSubject(c.SubjectPrefix, "主题前缀")
}

// Case 一个待执行的测试用例
type Case struct {
	RunID     string
	Suite     string
	Index     int
	Tuple     tuple.Tuple
	Timestamp time.Time
}

// Handler 处理收到的用例
type Handler func(ctx context.Context, c Case) error

// Dispatcher NATS 发布者
type Dispatcher struct {
	cfg      Config
	conn     conn
	ownsConn bool
	logger   logging.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

// New 创建分发器，未提供 Conn 时按 URL 建立连接
func New(cfg Config) (*Dispatcher, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Conn != nil {
		return newWithConn(cfg.Conn, cfg), nil
	}

	nc, err := nats.Connect(cfg.URL, nats.Name("combgen-dispatch"))
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrCodeDispatch,
			fmt.Sprintf("连接 nats %s 失败", cfg.URL))
	}
	d := newWithConn(nc, cfg)
	d.ownsConn = true
	return d, nil
}

func withDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = def.SubjectPrefix
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = def.Retry
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger().WithFields(logging.String("component", "dispatch.nats"))
	}
	return cfg
}

func newWithConn(c conn, cfg Config) *Dispatcher {
	cfg = withDefaults(cfg)
	return &Dispatcher{cfg: cfg, conn: c, logger: cfg.Logger}
}

// Subject 套件对应的主题
func (d *Dispatcher) Subject(suite string) string {
	return d.cfg.SubjectPrefix + "." + subjectToken(suite)
}

// Dispatch 发布一个用例，失败时按配置重试
func (d *Dispatcher) Dispatch(ctx context.Context, runID, suite string, index int, t tuple.Tuple) error {
	data, err := marshalCase(Case{RunID: runID, Suite: suite, Index: index, Tuple: t, Timestamp: time.Now()})
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeInvalidArgument,
			fmt.Sprintf("第 %d 个用例无法编码", index))
	}

	subject := d.Subject(suite)
	err = retry.DoWithInfo(ctx, func(ctx context.Context, attempt int) error {
		err := d.conn.Publish(subject, data)
		if err != nil && attempt > 1 {
			d.logger.Debug(ctx, "重试发布用例",
				logging.String("subject", subject),
				logging.Int("attempt", attempt))
		}
		return err
	}, d.cfg.Retry)
	if err != nil {
		return errors.WrapWithLog(ctx, err, errors.ErrCodeDispatch, "发布用例失败",
			logging.String("subject", subject),
			logging.String("run_id", runID),
			logging.Int("index", index))
	}
	return nil
}

// Subscribe 订阅某个套件的用例。无法解码的消息记录后丢弃，handler 的错误只记录日志。
func (d *Dispatcher) Subscribe(suite string, handler Handler) error {
	if handler == nil {
		return errors.NewArgumentNullError("handler")
	}
	subject := d.Subject(suite)
	sub, err := d.conn.Subscribe(subject, d.handleMessage(handler))
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeDispatch,
			fmt.Sprintf("订阅 %s 失败", subject))
	}

	d.mu.Lock()
	d.subs = append(d.subs, sub)
	d.mu.Unlock()
	return nil
}

func (d *Dispatcher) handleMessage(handler Handler) nats.MsgHandler {
	return func(msg *nats.Msg) {
		ctx := context.Background()
		c, err := unmarshalCase(msg.Data)
		if err != nil {
			d.logger.Warn(ctx, "解码用例消息失败",
				logging.String("subject", msg.Subject),
				logging.Error(err))
			return
		}
		if err := handler(ctx, c); err != nil {
			d.logger.Warn(ctx, "处理用例失败",
				logging.String("run_id", c.RunID),
				logging.Int("index", c.Index),
				logging.Error(err))
		}
	}
}

// Close 取消全部订阅，只关闭自己建立的连接
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	subs := d.subs
	d.subs = nil
	d.mu.Unlock()

	for _, sub := range subs {
		if sub != nil {
			_ = sub.Unsubscribe()
		}
	}
	if d.ownsConn {
		d.conn.Close()
	}
	return nil
}

// subjectToken 把套件名转换为合法的主题段
func subjectToken(suite string) string {
	if suite == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\r', '\n':
			return '_'
		}
		return r
	}, suite)
}

type wireCase struct {
	RunID     string          `json:"run_id"`
	Suite     string          `json:"suite"`
	Index     int             `json:"index"`
	Tuple     json.RawMessage `json:"tuple"`
	Timestamp int64           `json:"timestamp"`
}

func marshalCase(c Case) ([]byte, error) {
	encoded, err := tuple.Marshal(c.Tuple)
	if err != nil {
		return nil, err
	}
	ts := c.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	return json.Marshal(wireCase{
		RunID:     c.RunID,
		Suite:     c.Suite,
		Index:     c.Index,
		Tuple:     encoded,
		Timestamp: ts.UnixNano(),
	})
}

func unmarshalCase(data []byte) (Case, error) {
	var wire wireCase
	if err := json.Unmarshal(data, &wire); err != nil {
		return Case{}, err
	}
	t, err := tuple.Unmarshal(wire.Tuple)
	if err != nil {
		return Case{}, err
	}
	return Case{
		RunID:     wire.RunID,
		Suite:     wire.Suite,
		Index:     wire.Index,
		Tuple:     t,
		Timestamp: time.Unix(0, wire.Timestamp),
	}, nil
}
