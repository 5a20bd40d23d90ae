package dispatch

import (
	"context"
	stdErrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combgen/errors"
	"combgen/logging"
	"combgen/patterns/retry"
	"combgen/tuple"
)

type published struct {
	subject string
	data    []byte
}

type fakeConn struct {
	mu        sync.Mutex
	failures  int
	published []published
	handlers  map[string]nats.MsgHandler
	closed    bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{handlers: make(map[string]nats.MsgHandler)}
}

func (f *fakeConn) Publish(subj string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return nats.ErrConnectionReconnecting
	}
	f.published = append(f.published, published{subject: subj, data: data})
	return nil
}

func (f *fakeConn) Subscribe(subj string, cb nats.MsgHandler) (*nats.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[subj] = cb
	return nil, nil
}

func (f *fakeConn) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
}

// deliver 把已发布的消息投递给订阅者
func (f *fakeConn) deliver() {
	f.mu.Lock()
	msgs := append([]published(nil), f.published...)
	handlers := f.handlers
	f.mu.Unlock()

	for _, m := range msgs {
		if h, ok := handlers[m.subject]; ok {
			h(&nats.Msg{Subject: m.subject, Data: m.data})
		}
	}
}

func testConfig() Config {
	return Config{
		SubjectPrefix: "test.cases",
		Retry: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  time.Millisecond,
			BackoffFactor: 1,
			MaxDelay:      time.Millisecond,
		},
		Logger: logging.NewNoopLogger(),
	}
}

func TestSubject(t *testing.T) {
	d := newWithConn(newFakeConn(), testConfig())

	assert.Equal(t, "test.cases.login", d.Subject("login"))
	assert.Equal(t, "test.cases.user_login_flow", d.Subject("user.login flow"))
	assert.Equal(t, "test.cases._", d.Subject(""))
}

// TestDispatch_RoundTrip 发布的用例能被订阅方还原
func TestDispatch_RoundTrip(t *testing.T) {
	ctx := context.Background()
	fc := newFakeConn()
	d := newWithConn(fc, testConfig())

	var got []Case
	require.NoError(t, d.Subscribe("login", func(_ context.Context, c Case) error {
		got = append(got, c)
		return nil
	}))

	require.NoError(t, d.Dispatch(ctx, "run-1", "login", 0, tuple.New("alice", 3, true)))
	require.NoError(t, d.Dispatch(ctx, "run-1", "login", 1, tuple.New("bob", nil, false)))
	fc.deliver()

	require.Len(t, got, 2)
	assert.Equal(t, "run-1", got[0].RunID)
	assert.Equal(t, "login", got[0].Suite)
	assert.Equal(t, 1, got[1].Index)
	assert.True(t, tuple.New("bob", nil, false).Equal(got[1].Tuple))
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestDispatch_Retry(t *testing.T) {
	fc := newFakeConn()
	fc.failures = 2
	d := newWithConn(fc, testConfig())

	require.NoError(t, d.Dispatch(context.Background(), "r", "s", 0, tuple.New(1)))
	assert.Len(t, fc.published, 1)
}

func TestDispatch_GivesUp(t *testing.T) {
	fc := newFakeConn()
	fc.failures = 5
	d := newWithConn(fc, testConfig())

	err := d.Dispatch(context.Background(), "r", "s", 0, tuple.New(1))
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDispatch, errors.GetErrorCode(err))
	assert.ErrorIs(t, err, nats.ErrConnectionReconnecting)
}

func TestDispatch_Unencodable(t *testing.T) {
	fc := newFakeConn()
	d := newWithConn(fc, testConfig())

	err := d.Dispatch(context.Background(), "r", "s", 0, tuple.New([]int{1}))
	assert.Equal(t, errors.ErrCodeInvalidArgument, errors.GetErrorCode(err))
	assert.Empty(t, fc.published)
}

// TestHandleMessage_Errors 坏消息和处理失败都只记录日志
func TestHandleMessage_Errors(t *testing.T) {
	log := logging.NewMemoryLogger()
	cfg := testConfig()
	cfg.Logger = log
	d := newWithConn(newFakeConn(), cfg)

	calls := 0
	h := d.handleMessage(func(context.Context, Case) error {
		calls++
		return stdErrors.New("worker crashed")
	})

	h(&nats.Msg{Subject: "test.cases.s", Data: []byte("not json")})
	assert.Equal(t, 0, calls)

	data, err := marshalCase(Case{RunID: "r", Suite: "s", Index: 7, Tuple: tuple.New(1)})
	require.NoError(t, err)
	h(&nats.Msg{Subject: "test.cases.s", Data: data})
	assert.Equal(t, 1, calls)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, logging.WarnLevel, entries[0].Level)
	assert.Equal(t, 7, entries[1].Fields["index"])
}

func TestSubscribe_NilHandler(t *testing.T) {
	d := newWithConn(newFakeConn(), testConfig())
	assert.True(t, errors.IsArgumentNull(d.Subscribe("s", nil)))
}

func TestClose_OnlyOwnedConn(t *testing.T) {
	fc := newFakeConn()
	d := newWithConn(fc, testConfig())
	require.NoError(t, d.Subscribe("s", func(context.Context, Case) error { return nil }))
	require.NoError(t, d.Close())
	assert.False(t, fc.closed)

	owned := newWithConn(fc, testConfig())
	owned.ownsConn = true
	require.NoError(t, owned.Close())
	assert.True(t, fc.closed)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.SubjectPrefix = "cases.>"
	assert.True(t, errors.IsValidation(cfg.Validate()))

	_, err := New(cfg)
	assert.True(t, errors.IsValidation(err))
}
