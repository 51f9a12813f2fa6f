package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tax-agent/domain"
)

// recordBSONOptions lets the domain types reuse their json tags, and decodes the
// free-form Input and Result payloads as maps rather than ordered documents.
var recordBSONOptions = &options.BSONOptions{
	UseJSONStructTags: true,
	DefaultDocumentM:  true,
}

// CalculationRepositoryMongo stores calculation history in a MongoDB collection.
type CalculationRepositoryMongo struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewCalculationRepositoryMongo connects to uri and ensures the created_at index.
func NewCalculationRepositoryMongo(ctx context.Context, uri, db, col string) (*CalculationRepositoryMongo, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(recordBSONOptions)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := client.Database(db).Collection(col)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		log.Warnf("failed to create created_at index on %s.%s: %v", db, col, err)
	}

	return &CalculationRepositoryMongo{client: client, coll: coll}, nil
}

func (r *CalculationRepositoryMongo) Save(ctx context.Context, record domain.CalculationRecord) error {
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}
	return nil
}

func (r *CalculationRepositoryMongo) Recent(ctx context.Context, limit int) ([]domain.CalculationRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find calculations: %w", err)
	}
	defer cur.Close(ctx)

	records := []domain.CalculationRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode calculations: %w", err)
	}
	return records, nil
}

func (r *CalculationRepositoryMongo) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
