// Package catalog 把每一轮枚举产出的元组记录到数据库，以便日后按原顺序回放。
//
// 每一轮分配一个 uuid 作为 run ID。元组以 tuple.Key 的编码保存，
// 只支持标量值；含非标量值的元组无法记录。
package catalog

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"combgen/data/db"
	"combgen/enumerator"
	"combgen/errors"
	"combgen/logging"
	"combgen/tuple"
)

// Status 一轮记录的状态
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	// StatusCanceled 上下文取消或超时，只枚举了一部分
	StatusCanceled  Status = "canceled"
)

// Run 一轮枚举的记录
type Run struct {
	ID         string
	Suite      string
	Strategy   enumerator.Strategy
	Arity      int
	Count      int
	Status     Status
	Failure    string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Config 目录配置
type Config struct {
	DB     db.IDatabase
	Logger logging.Logger

	// 以下用于测试注入
	Now   func() time.Time
	NewID func() string
}

// Catalog 基于 db.IDatabase 的记录目录
type Catalog struct {
	db     db.IDatabase
	logger logging.Logger
	now    func() time.Time
	newID  func() string
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		suite       TEXT NOT NULL,
		strategy    TEXT NOT NULL,
		arity       INTEGER NOT NULL,
		tuple_count INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL,
		failure     TEXT NOT NULL DEFAULT '',
		started_at  INTEGER NOT NULL,
		finished_at INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_suite ON runs (suite, started_at)`,
	`CREATE TABLE IF NOT EXISTS run_tuples (
		run_id TEXT NOT NULL,
		seq    INTEGER NOT NULL,
		tuple  TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	)`,
}

const runColumns = `id, suite, strategy, arity, tuple_count, status, failure, started_at, finished_at`

// New 创建目录并确保表结构存在
func New(ctx context.Context, cfg Config) (*Catalog, error) {
	if cfg.DB == nil {
		return nil, errors.NewArgumentNullError("DB")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.GetLogger().WithFields(logging.String("component", "catalog"))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	c := &Catalog{db: cfg.DB, logger: cfg.Logger, now: cfg.Now, newID: cfg.NewID}
	for _, stmt := range schema {
		if _, err := c.db.Exec(ctx, stmt); err != nil {
			return nil, errors.WrapStoreError(ctx, err, "create schema")
		}
	}
	return c, nil
}

// Start 开始一轮记录，返回 run ID
func (c *Catalog) Start(ctx context.Context, suite string, strategy enumerator.Strategy, arity int) (string, error) {
	id := c.newID()
	if err := c.insertRun(ctx, c.db, id, suite, strategy, arity); err != nil {
		return "", err
	}
	return id, nil
}

// Append 追加第 index 个元组
func (c *Catalog) Append(ctx context.Context, runID string, index int, t tuple.Tuple) error {
	return c.appendTuple(ctx, c.db, runID, index, t)
}

// Finish 结束一轮记录，cause 非 nil 时标记为失败
func (c *Catalog) Finish(ctx context.Context, runID string, count int, cause error) error {
	return c.finishRun(ctx, c.db, runID, count, cause)
}

// Record 在一个事务中取尽枚举器并记录全部元组。
// 枚举器出错时整轮回滚。
func (c *Catalog) Record(ctx context.Context, suite string, strategy enumerator.Strategy, e enumerator.Enumerator) (Run, error) {
	if e == nil {
		return Run{}, errors.NewArgumentNullError("enumerator")
	}

	id := c.newID()
	var count int
	err := db.WithTx(ctx, c.db, func(tx db.ITransaction) error {
		arity := -1
		for e.MoveNext() {
			t, err := e.Current()
			if err != nil {
				return err
			}
			if arity < 0 {
				arity = t.Len()
				if err := c.insertRun(ctx, tx, id, suite, strategy, arity); err != nil {
					return err
				}
			}
			if err := c.appendTuple(ctx, tx, id, count, t); err != nil {
				return err
			}
			count++
		}
		if err := e.Err(); err != nil {
			return err
		}
		if arity < 0 {
			if err := c.insertRun(ctx, tx, id, suite, strategy, 0); err != nil {
				return err
			}
		}
		return c.finishRun(ctx, tx, id, count, nil)
	})
	if err != nil {
		return Run{}, err
	}

	c.logger.Info(ctx, "枚举已记录",
		logging.String("run_id", id),
		logging.String("suite", suite),
		logging.Int("count", count))
	return c.Get(ctx, id)
}

// Get 读取一轮记录，不存在时返回 NOT_FOUND
func (c *Catalog) Get(ctx context.Context, runID string) (Run, error) {
	row := c.db.QueryRow(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, runID)
	run, err := scanRun(row)
	if err != nil {
		return Run{}, errors.WrapStoreError(ctx, err, fmt.Sprintf("get run %s", runID))
	}
	return run, nil
}

// Runs 按开始时间列出某个套件的全部记录，suite 为空时列出全部
func (c *Catalog) Runs(ctx context.Context, suite string) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	var args []any
	if suite != "" {
		query += ` WHERE suite = ?`
		args = append(args, suite)
	}
	query += ` ORDER BY started_at, id`

	rows, err := c.db.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.WrapStoreError(ctx, err, "list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, errors.WrapStoreError(ctx, err, "scan run")
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapStoreError(ctx, err, "list runs")
	}
	return runs, nil
}

// Load 按记录顺序读取一轮的全部元组
func (c *Catalog) Load(ctx context.Context, runID string) ([]tuple.Tuple, error) {
	if _, err := c.Get(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := c.db.Query(ctx, `SELECT tuple FROM run_tuples WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, errors.WrapStoreError(ctx, err, "load tuples")
	}
	defer rows.Close()

	var tuples []tuple.Tuple
	for rows.Next() {
		var encoded string
		if err := rows.Scan(&encoded); err != nil {
			return nil, errors.WrapStoreError(ctx, err, "scan tuple")
		}
		t, err := tuple.Unmarshal([]byte(encoded))
		if err != nil {
			return nil, errors.WrapError(err, errors.ErrCodeStore,
				fmt.Sprintf("run %s 中的第 %d 个元组无法解码", runID, len(tuples)))
		}
		tuples = append(tuples, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapStoreError(ctx, err, "load tuples")
	}
	return tuples, nil
}

// Replay 以字面枚举器的形式按原顺序回放一轮记录
func (c *Catalog) Replay(ctx context.Context, runID string) (*enumerator.Literal, error) {
	tuples, err := c.Load(ctx, runID)
	if err != nil {
		return nil, err
	}
	return enumerator.NewLiteral(tuples...), nil
}

// Delete 删除一轮记录及其元组
func (c *Catalog) Delete(ctx context.Context, runID string) error {
	return db.WithTx(ctx, c.db, func(tx db.ITransaction) error {
		if _, err := tx.Exec(ctx, `DELETE FROM run_tuples WHERE run_id = ?`, runID); err != nil {
			return errors.WrapStoreError(ctx, err, "delete tuples")
		}
		res, err := tx.Exec(ctx, `DELETE FROM runs WHERE id = ?`, runID)
		if err != nil {
			return errors.WrapStoreError(ctx, err, "delete run")
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return errors.NewError(errors.ErrCodeNotFound, fmt.Sprintf("run %s 不存在", runID))
		}
		return nil
	})
}

func (c *Catalog) insertRun(ctx context.Context, q db.IDatabase, id, suite string, strategy enumerator.Strategy, arity int) error {
	_, err := q.Exec(ctx,
		`INSERT INTO runs (id, suite, strategy, arity, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, suite, string(strategy), arity, string(StatusRunning), c.now().UnixNano())
	return errors.WrapStoreError(ctx, err, "insert run")
}

func (c *Catalog) appendTuple(ctx context.Context, q db.IDatabase, runID string, index int, t tuple.Tuple) error {
	key, err := t.Key()
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeInvalidArgument,
			fmt.Sprintf("第 %d 个元组无法记录", index))
	}
	_, err = q.Exec(ctx, `INSERT INTO run_tuples (run_id, seq, tuple) VALUES (?, ?, ?)`, runID, index, key)
	return errors.WrapStoreError(ctx, err, "append tuple")
}

func (c *Catalog) finishRun(ctx context.Context, q db.IDatabase, runID string, count int, cause error) error {
	status, msg := StatusCompleted, ""
	switch {
	case cause == nil:
	case stdErrors.Is(cause, context.Canceled), stdErrors.Is(cause, context.DeadlineExceeded):
		status, msg = StatusCanceled, cause.Error()
	default:
		status, msg = StatusFailed, cause.Error()
	}
	res, err := q.Exec(ctx,
		`UPDATE runs SET tuple_count = ?, status = ?, failure = ?, finished_at = ? WHERE id = ?`,
		count, string(status), msg, c.now().UnixNano(), runID)
	if err != nil {
		return errors.WrapStoreError(ctx, err, "finish run")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return errors.NewError(errors.ErrCodeNotFound, fmt.Sprintf("run %s 不存在", runID))
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		run               Run
		strategy, status  string
		started, finished int64
	)
	err := s.Scan(&run.ID, &run.Suite, &strategy, &run.Arity, &run.Count, &status, &run.Failure, &started, &finished)
	if err != nil {
		return Run{}, err
	}
	run.Strategy = enumerator.Strategy(strategy)
	run.Status = Status(status)
	run.StartedAt = time.Unix(0, started)
	if finished > 0 {
		run.FinishedAt = time.Unix(0, finished)
	}
	return run, nil
}
