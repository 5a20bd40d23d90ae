// Package runner 按配置的组合策略逐个产生参数元组并调用测试函数。
//
// 构造枚举器失败（空取值域、缺少参数）属于准备阶段的错误，
// 在任何调用之前由 Run 返回，不计入失败的用例。
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"combgen/domain"
	"combgen/enumerator"
	"combgen/errors"
	"combgen/logging"
	"combgen/tuple"
)

// InvokeFunc 以第 index 个元组执行一次测试
type InvokeFunc func(ctx context.Context, index int, t tuple.Tuple) error

// Failure 一个失败的用例
type Failure struct {
	Index int
	Tuple tuple.Tuple
	Err   error
}

// Report 一轮运行的结果
type Report struct {
	RunID    string
	Suite    string
	Strategy enumerator.Strategy
	Total    int
	Passed   int
	Failures []Failure
	Canceled bool
	Duration time.Duration
}

// Failed 失败的用例数
func (r *Report) Failed() int {
	return len(r.Failures)
}

// OK 全部用例通过且没有被取消
func (r *Report) OK() bool {
	return len(r.Failures) == 0 && !r.Canceled
}

func (r *Report) String() string {
	return fmt.Sprintf("%s[%s] run=%s total=%d passed=%d failed=%d canceled=%t (%s)",
		r.Suite, r.Strategy, r.RunID, r.Total, r.Passed, r.Failed(), r.Canceled, r.Duration)
}

// Runner 用例驱动器，同一时刻只执行一轮
type Runner struct {
	cfg    Config
	logger logging.Logger
}

// New 创建 Runner
func New(cfg Config) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger().WithFields(logging.String("component", "runner"))
	}
	return &Runner{cfg: cfg, logger: cfg.Logger.WithFields(logging.String("suite", cfg.Suite))}, nil
}

// Run 在集合上执行一轮。
//
// 返回的错误只表示准备失败或后端失败（已见集合、记录、分发），
// 用例本身的失败记录在 Report.Failures 中。ctx 被取消时在两个用例之间停止。
func (r *Runner) Run(ctx context.Context, c *domain.Collection, invoke InvokeFunc) (*Report, error) {
	if invoke == nil {
		return nil, errors.NewArgumentNullError("invoke")
	}
	e, err := r.build(ctx, c)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	report := &Report{Suite: r.cfg.Suite, Strategy: r.cfg.Strategy}

	report.RunID, err = r.start(ctx, c.Len())
	if err != nil {
		return nil, err
	}
	r.logger.Info(ctx, "开始运行",
		logging.String("run_id", report.RunID),
		logging.String("strategy", string(r.cfg.Strategy)),
		logging.Bool("dedup", r.cfg.Dedup))

	runErr := r.loop(ctx, e, report, invoke)
	report.Duration = time.Since(started)

	if r.cfg.Recorder != nil {
		cause := runErr
		if cause == nil && report.Canceled {
			// 记录为取消，回放时不会被当作完整的一轮
			cause = context.Cause(ctx)
		}
		if cause == nil && report.Failed() > 0 {
			cause = report.Failures[0].Err
		}
		// 被取消的一轮也要落盘
		finishCtx := context.WithoutCancel(ctx)
		if err := r.cfg.Recorder.Finish(finishCtx, report.RunID, report.Total, cause); err != nil && runErr == nil {
			runErr = err
		}
	}

	r.logger.Info(context.WithoutCancel(ctx), "运行结束",
		logging.String("run_id", report.RunID),
		logging.Int("total", report.Total),
		logging.Int("failed", report.Failed()),
		logging.Bool("canceled", report.Canceled),
		logging.Duration("duration", report.Duration))
	return report, runErr
}

func (r *Runner) build(ctx context.Context, c *domain.Collection) (enumerator.Enumerator, error) {
	e, err := enumerator.New(r.cfg.Strategy, c)
	if err != nil {
		return nil, err
	}
	if !r.cfg.Dedup {
		return e, nil
	}
	opts := []enumerator.GreedyOption{enumerator.WithContext(ctx)}
	if r.cfg.SeenSet != nil {
		opts = append(opts, enumerator.WithSeenSet(r.cfg.SeenSet))
	}
	// 共享的已见集合不在这里清空，多个进程可能正在同一轮中去重
	g, err := enumerator.NewGreedy(e, opts...)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *Runner) start(ctx context.Context, arity int) (string, error) {
	if r.cfg.Recorder == nil {
		return uuid.NewString(), nil
	}
	return r.cfg.Recorder.Start(ctx, r.cfg.Suite, r.cfg.Strategy, arity)
}

func (r *Runner) loop(ctx context.Context, e enumerator.Enumerator, report *Report, invoke InvokeFunc) error {
	for index := 0; ; index++ {
		if ctx.Err() != nil {
			report.Canceled = true
			return nil
		}
		if r.cfg.MaxCases > 0 && index >= r.cfg.MaxCases {
			return nil
		}
		if !e.MoveNext() {
			return e.Err()
		}
		t, err := e.Current()
		if err != nil {
			return err
		}

		if r.cfg.Recorder != nil {
			if err := r.cfg.Recorder.Append(ctx, report.RunID, index, t); err != nil {
				return err
			}
		}
		if r.cfg.Dispatcher != nil {
			if err := r.cfg.Dispatcher.Dispatch(ctx, report.RunID, r.cfg.Suite, index, t); err != nil {
				return err
			}
		}

		report.Total++
		if err := safeInvoke(ctx, invoke, index, t); err != nil {
			report.Failures = append(report.Failures, Failure{Index: index, Tuple: t, Err: err})
			r.logger.Warn(ctx, "用例失败",
				logging.Int("index", index),
				logging.String("tuple", t.String()),
				logging.Error(err))
			if r.cfg.StopOnFailure {
				return nil
			}
			continue
		}
		report.Passed++
	}
}

// safeInvoke 把测试函数中的 panic 转换为失败
func safeInvoke(ctx context.Context, invoke InvokeFunc, index int, t tuple.Tuple) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.NewError(errors.ErrCodeInternal, fmt.Sprintf("用例 panic: %v", p)).
				WithContext("index", index)
		}
	}()
	return invoke(ctx, index, t)
}
