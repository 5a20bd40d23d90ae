package redisset

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combgen/enumerator"
	cerrors "combgen/errors"
	"combgen/logging"
	"combgen/patterns/retry"
	"combgen/seenset"
	"combgen/tuple"
)

var _ seenset.Set = (*Set)(nil)

// fakeClient 用 map 模拟 redis SET 命令
type fakeClient struct {
	sets     map[string]map[string]struct{}
	failAdds int
	// lostReplies 写入生效但回复丢失的次数
	lostReplies int
	expires     map[string]time.Duration
	closed   bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{sets: make(map[string]map[string]struct{}), expires: make(map[string]time.Duration)}
}

func (f *fakeClient) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	if f.failAdds > 0 {
		f.failAdds--
		return redis.NewIntResult(0, errors.New("connection reset"))
	}
	set, ok := f.sets[key]
	if !ok {
		set = make(map[string]struct{})
		f.sets[key] = set
	}
	var added int64
	for _, m := range members {
		s := m.(string)
		if _, exists := set[s]; !exists {
			set[s] = struct{}{}
			added++
		}
	}
	if f.lostReplies > 0 {
		f.lostReplies--
		return redis.NewIntResult(0, errors.New("i/o timeout"))
	}
	return redis.NewIntResult(added, nil)
}

func (f *fakeClient) SCard(ctx context.Context, key string) *redis.IntCmd {
	return redis.NewIntResult(int64(len(f.sets[key])), nil)
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.sets, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func (f *fakeClient) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.expires[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func testConfig() Config {
	return Config{
		Namespace: "run-1",
		TTL:       time.Hour,
		Retry:     retry.Config{MaxAttempts: 3, InitialDelay: time.Millisecond, BackoffFactor: 1},
		Logger:    logging.NewNoopLogger(),
	}
}

func TestSet_AddLenClear(t *testing.T) {
	ctx := context.Background()
	fc := newFakeClient()
	s := newWithClient(fc, testConfig())
	assert.Equal(t, "seen:run-1", s.Key())

	added, err := s.Add(ctx, tuple.New(1, "a"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(ctx, tuple.New(1, "a"))
	require.NoError(t, err)
	assert.False(t, added)

	added, err = s.Add(ctx, tuple.New(int64(1), "a"))
	require.NoError(t, err)
	assert.True(t, added, "类型不同的值不相等")

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, time.Hour, fc.expires["seen:run-1"])

	require.NoError(t, s.Clear(ctx))
	n, _ = s.Len(ctx)
	assert.Zero(t, n)
}

// TestSet_AddDoesNotRetry 连接错误只尝试一次并如实返回
func TestSet_AddDoesNotRetry(t *testing.T) {
	fc := newFakeClient()
	fc.failAdds = 1
	s := newWithClient(fc, testConfig())

	_, err := s.Add(context.Background(), tuple.New("x"))
	assert.Equal(t, cerrors.ErrCodeStore, cerrors.GetErrorCode(err))
	assert.Zero(t, fc.failAdds)

	added, err := s.Add(context.Background(), tuple.New("x"))
	require.NoError(t, err)
	assert.True(t, added)
}

// TestSet_LostReplyIsError 写入已生效但回复丢失，不能报告为已存在
func TestSet_LostReplyIsError(t *testing.T) {
	fc := newFakeClient()
	fc.lostReplies = 1
	s := newWithClient(fc, testConfig())

	added, err := s.Add(context.Background(), tuple.New(1, "a"))
	require.Error(t, err)
	assert.False(t, added)
	assert.Equal(t, cerrors.ErrCodeStore, cerrors.GetErrorCode(err))
	assert.Len(t, fc.sets["seen:run-1"], 1)
}

// TestSet_LostReplyEndsGreedyPass 贪心去重通过 Err 暴露回复丢失，而不是静默跳过元组
func TestSet_LostReplyEndsGreedyPass(t *testing.T) {
	fc := newFakeClient()
	fc.lostReplies = 1
	s := newWithClient(fc, testConfig())

	g, err := enumerator.NewGreedy(enumerator.NewLiteral(tuple.New(1, "a"), tuple.New(2, "b")),
		enumerator.WithSeenSet(s))
	require.NoError(t, err)

	assert.False(t, g.MoveNext())
	require.Error(t, g.Err())
	assert.Equal(t, cerrors.ErrCodeStore, cerrors.GetErrorCode(g.Err()))
}

func TestSet_StoreError(t *testing.T) {
	fc := newFakeClient()
	fc.failAdds = 10
	s := newWithClient(fc, testConfig())

	_, err := s.Add(context.Background(), tuple.New("x"))
	assert.Equal(t, cerrors.ErrCodeStore, cerrors.GetErrorCode(err))
}

func TestSet_UnencodableTuple(t *testing.T) {
	s := newWithClient(newFakeClient(), testConfig())

	_, err := s.Add(context.Background(), tuple.New([]int{1}))
	assert.Equal(t, cerrors.ErrCodeInvalidArgument, cerrors.GetErrorCode(err))
	assert.ErrorIs(t, err, errUnencodable)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestSet_CloseOnlyOwnedClient(t *testing.T) {
	fc := newFakeClient()
	s := newWithClient(fc, testConfig())
	require.NoError(t, s.Close())
	assert.False(t, fc.closed)
}
