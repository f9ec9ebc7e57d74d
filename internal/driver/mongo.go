// Package driver executes concrete command batches against a document
// database. Each virtual user owns one Executor and therefore one
// connection, established lazily and re-established on the invocation after
// a connectivity failure.
package driver

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/docload/docload/internal/metrics"
	"github.com/docload/docload/internal/plan"
	"github.com/docload/docload/internal/workload"
)

// Outcome categories reported to the metrics engine.
const (
	CategorySuccess = "DocumentDB"
	CategoryError   = "DocumentDB-Error"
)

// Config carries connection settings.
type Config struct {
	// URI is the connection string.
	URI string

	// SelectionTimeout bounds server selection; defaults to 5s.
	SelectionTimeout time.Duration
}

// Executor plans and runs commands for one virtual user.
type Executor struct {
	cfg     Config
	log     *zap.Logger
	planner *plan.Planner
	client  *mongo.Client
}

// NewExecutor creates an executor sharing the given planner. No connection
// is made until the first command runs.
func NewExecutor(cfg Config, planner *plan.Planner, log *zap.Logger) *Executor {
	if cfg.SelectionTimeout <= 0 {
		cfg.SelectionTimeout = 5 * time.Second
	}
	return &Executor{cfg: cfg, log: log, planner: planner}
}

func (e *Executor) connect(ctx context.Context) error {
	opts := options.Client().
		ApplyURI(e.cfg.URI).
		SetServerSelectionTimeout(e.cfg.SelectionTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	e.client = client
	e.log.Debug("database connection established")
	return nil
}

// Disconnect closes the executor's connection, if any.
func (e *Executor) Disconnect(ctx context.Context) {
	if e.client == nil {
		return
	}
	if err := e.client.Disconnect(ctx); err != nil {
		e.log.Warn("error disconnecting", zap.Error(err))
	}
	e.client = nil
}

// Execute builds one concrete batch for the task's command and runs it,
// reporting a single outcome event. Failures are returned as failed
// outcomes, never as panics or process-fatal errors.
func (e *Executor) Execute(ctx context.Context, task workload.Task, taskID string) metrics.Outcome {
	if e.client == nil {
		e.log.Info("no client available, attempting to connect")
		if err := e.connect(ctx); err != nil {
			e.log.Error("connection failed", zap.Error(err))
			return metrics.Outcome{Category: CategoryError, Name: taskID, Err: err}
		}
	}

	def := &task.Command
	batch, err := e.planner.Build(def, taskID)
	if err != nil {
		e.log.Error("could not build command", zap.String("task", taskID), zap.Error(err))
		return metrics.Outcome{Category: CategoryError, Name: taskID, Err: err}
	}

	op, err := e.operation(def, batch)
	if err != nil {
		e.log.Error("unsupported command", zap.String("task", taskID), zap.Error(err))
		return metrics.Outcome{Category: CategoryError, Name: taskID, Err: err}
	}

	start := time.Now()
	size, err := op(ctx)
	elapsed := time.Since(start)
	if err != nil {
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			// Drop the client so the next invocation reconnects.
			e.Disconnect(context.WithoutCancel(ctx))
		}
		e.log.Error("command failed",
			zap.String("task", taskID), zap.Duration("elapsed", elapsed), zap.Error(err))
		return metrics.Outcome{Category: CategoryError, Name: taskID, Duration: elapsed, Err: err}
	}
	return metrics.Outcome{Category: CategorySuccess, Name: taskID, Duration: elapsed, ResponseSize: size}
}

// dbOp runs one database operation and reports an approximate response size.
type dbOp func(ctx context.Context) (int64, error)

// operation maps a command definition plus its concrete batch onto a driver
// call. Read-like kinds execute against the final repetition's body only;
// inserts consume the whole batch.
func (e *Executor) operation(def *workload.CommandDefinition, batch *plan.ConcreteBatch) (dbOp, error) {
	coll := e.client.Database(def.Database).Collection(def.Collection)
	last := batch.Bodies[len(batch.Bodies)-1].ToBSON()

	switch def.Kind {
	case workload.KindInsert:
		if len(batch.Bodies) > 1 {
			docs := make([]any, len(batch.Bodies))
			for i, b := range batch.Bodies {
				docs[i] = b.ToBSON()
			}
			return func(ctx context.Context) (int64, error) {
				res, err := coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
				return resultSize(res), err
			}, nil
		}
		return func(ctx context.Context) (int64, error) {
			res, err := coll.InsertOne(ctx, last)
			return resultSize(res), err
		}, nil

	case workload.KindAggregate:
		pipeline := batch.Bodies[len(batch.Bodies)-1].ToBSONDocs()
		return func(ctx context.Context) (int64, error) {
			cur, err := coll.Aggregate(ctx, pipeline)
			if err != nil {
				return 0, err
			}
			return drainCursor(ctx, cur)
		}, nil

	case workload.KindFind:
		opts := options.Find()
		if def.Limit > 0 {
			opts.SetLimit(def.Limit)
		}
		if def.Projection != nil {
			opts.SetProjection(def.Projection.ToBSON())
		}
		if def.Sort != nil {
			opts.SetSort(def.Sort.ToBSON())
		}
		return func(ctx context.Context) (int64, error) {
			cur, err := coll.Find(ctx, last, opts)
			if err != nil {
				return 0, err
			}
			return drainCursor(ctx, cur)
		}, nil

	case workload.KindUpdate:
		update := batch.Update.ToBSON()
		return func(ctx context.Context) (int64, error) {
			res, err := coll.UpdateOne(ctx, last, update, options.Update().SetUpsert(true))
			return resultSize(res), err
		}, nil

	case workload.KindReplace:
		replacement := batch.Update.ToBSON()
		return func(ctx context.Context) (int64, error) {
			res, err := coll.ReplaceOne(ctx, last, replacement, options.Replace().SetUpsert(true))
			return resultSize(res), err
		}, nil

	case workload.KindDelete:
		return func(ctx context.Context) (int64, error) {
			res, err := coll.DeleteOne(ctx, last)
			return resultSize(res), err
		}, nil

	default:
		return nil, fmt.Errorf("unsupported command kind %q", def.Kind)
	}
}

// drainCursor consumes a result cursor and totals the raw document bytes.
func drainCursor(ctx context.Context, cur *mongo.Cursor) (int64, error) {
	defer cur.Close(ctx)
	var total int64
	for cur.Next(ctx) {
		total += int64(len(cur.Current))
	}
	return total, cur.Err()
}

// resultSize approximates the size of a write result for the response-size
// field of outcome events.
func resultSize(res any) int64 {
	if res == nil {
		return 0
	}
	raw, err := bson.Marshal(res)
	if err != nil {
		return 0
	}
	return int64(len(raw))
}
