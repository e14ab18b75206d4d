package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/yafera/herdbook/internal/domain/models"
)

const snapshotCollection = "ledger_snapshots"

// MongoDBRepository archives ledger snapshots in MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository connects, pings and ensures the snapshot index.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	r := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: snapshotCollection,
	}

	index := mongo.IndexModel{Keys: bson.D{{Key: "project", Value: 1}, {Key: "created_at", Value: -1}}}
	if _, err := r.collection().Indexes().CreateOne(ctx, index); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create snapshot index: %w", err)
	}

	return r, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveSnapshot inserts one summary snapshot.
func (r *MongoDBRepository) SaveSnapshot(ctx context.Context, snapshot models.LedgerSnapshot) error {
	if _, err := r.collection().InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert ledger snapshot: %w", err)
	}
	return nil
}

// LatestSnapshots returns up to limit snapshots of project, newest first.
func (r *MongoDBRepository) LatestSnapshots(ctx context.Context, project string, limit int64) ([]models.LedgerSnapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)

	cursor, err := r.collection().Find(ctx, bson.M{"project": project}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query ledger snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.LedgerSnapshot
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode ledger snapshots: %w", err)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
