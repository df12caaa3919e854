package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mvollan/stirlingforge/pkg/design"
	"github.com/mvollan/stirlingforge/pkg/errors"
)

const (
	mongoDatabase   = "stirlingforge"
	mongoCollection = "designs"
)

// MongoStore is a MongoDB-backed snapshot store. Snapshots persist as BSON
// documents keyed by run_id, relying on the bson tags carried by the design
// types.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects using a mongodb:// DSN and verifies the connection
// with a ping.
func NewMongoStore(ctx context.Context, dsn string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(dsn))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongodb")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongodb")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(mongoDatabase).Collection(mongoCollection),
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, runID string) (*design.Snapshot, error) {
	var snap design.Snapshot
	err := s.coll.FindOne(ctx, bson.M{"run_id": runID}).Decode(&snap)
	if err == mongo.ErrNoDocuments {
		return nil, notFound(runID)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "mongo get")
	}
	return &snap, nil
}

func (s *MongoStore) Set(ctx context.Context, snap *design.Snapshot) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"run_id": snap.RunID},
		snap,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "mongo set")
	}
	return nil
}

// List returns run IDs newest first by created_at.
func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetProjection(bson.M{"run_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "mongo list")
	}
	defer cur.Close(ctx)

	var ids []string
	for cur.Next(ctx) {
		var doc struct {
			RunID string `bson:"run_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "mongo decode")
		}
		ids = append(ids, doc.RunID)
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "mongo list")
	}
	return ids, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
