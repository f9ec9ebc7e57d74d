package driver

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/docload/docload/internal/workload"
)

// RunStartup provisions databases, collections, shard keys and indexes from
// a startup descriptor. It runs once before load begins, never on the hot
// path, and disconnects when done so workers start from a clean slate.
func (e *Executor) RunStartup(ctx context.Context, startup *workload.Startup) error {
	if startup == nil {
		return nil
	}
	if e.client == nil {
		if err := e.connect(ctx); err != nil {
			return err
		}
	}
	defer e.Disconnect(ctx)

	for _, dbSpec := range startup.Databases {
		db := e.client.Database(dbSpec.Name)
		for _, collSpec := range dbSpec.Collections {
			if err := e.ensureCollection(ctx, db, dbSpec.Name, collSpec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Executor) ensureCollection(ctx context.Context, db *mongo.Database, dbName string, spec workload.CollectionSpec) error {
	names, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: spec.Name}})
	if err != nil {
		return fmt.Errorf("listing collections in %s: %w", dbName, err)
	}
	if len(names) == 0 {
		if err := db.CreateCollection(ctx, spec.Name); err != nil {
			return fmt.Errorf("creating collection %s.%s: %w", dbName, spec.Name, err)
		}
		e.log.Info("created collection", zap.String("database", dbName), zap.String("collection", spec.Name))
	}

	if spec.ShardKey != "" {
		cmd := bson.D{
			{Key: "shardCollection", Value: dbName + "." + spec.Name},
			{Key: "key", Value: bson.D{{Key: spec.ShardKey, Value: "hashed"}}},
		}
		if err := e.client.Database("admin").RunCommand(ctx, cmd).Err(); err != nil {
			return fmt.Errorf("sharding %s.%s: %w", dbName, spec.Name, err)
		}
		e.log.Info("sharded collection",
			zap.String("collection", dbName+"."+spec.Name), zap.String("shardKey", spec.ShardKey))
	}

	coll := db.Collection(spec.Name)
	for _, idx := range spec.Indexes {
		model := mongo.IndexModel{
			Keys:    idx.Keys.ToBSON(),
			Options: indexOptions(idx, e.log),
		}
		if _, err := coll.Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("creating index %s on %s.%s: %w", idx.Name, dbName, spec.Name, err)
		}
		e.log.Info("ensured index",
			zap.String("collection", dbName+"."+spec.Name), zap.String("index", idx.Name))
	}
	return nil
}

// indexOptions maps the descriptor's free-form options onto driver index
// options. Unrecognized keys are logged and skipped rather than failing the
// whole startup.
func indexOptions(idx workload.IndexSpec, log *zap.Logger) *options.IndexOptions {
	opts := options.Index()
	if idx.Name != "" {
		opts.SetName(idx.Name)
	}
	for key, value := range idx.Options {
		switch key {
		case "unique":
			if b, ok := value.(bool); ok {
				opts.SetUnique(b)
			}
		case "sparse":
			if b, ok := value.(bool); ok {
				opts.SetSparse(b)
			}
		case "expireAfterSeconds":
			switch v := value.(type) {
			case int:
				opts.SetExpireAfterSeconds(int32(v))
			case float64:
				opts.SetExpireAfterSeconds(int32(v))
			}
		default:
			log.Warn("ignoring unsupported index option",
				zap.String("index", idx.Name), zap.String("option", key))
		}
	}
	return opts
}
