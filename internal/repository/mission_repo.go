package repository

import (
	"context"
	"time"

	"splenderra/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MissionRepo interface {
	Create(ctx context.Context, record *model.MissionRecord) error
	GetByPlayerAndGame(ctx context.Context, playerID, gameCode string) ([]*model.MissionRecord, error)
	GetByPlayer(ctx context.Context, playerID string, limit int) ([]*model.MissionRecord, error)
	Update(ctx context.Context, record *model.MissionRecord) error
}

type missionRepo struct {
	collection *mongo.Collection
}

func NewMissionRepo(db *mongo.Database) MissionRepo {
	return &missionRepo{
		collection: db.Collection("missions"),
	}
}

func (r *missionRepo) Create(ctx context.Context, record *model.MissionRecord) error {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	_, err := r.collection.InsertOne(ctx, record)
	return err
}

func (r *missionRepo) GetByPlayerAndGame(ctx context.Context, playerID, gameCode string) ([]*model.MissionRecord, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, bson.M{"playerId": playerID, "gameCode": gameCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.MissionRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *missionRepo) GetByPlayer(ctx context.Context, playerID string, limit int) ([]*model.MissionRecord, error) {
	opts := options.Find().SetSort(bson.M{"createdAt": -1}).SetLimit(int64(limit))
	cursor, err := r.collection.Find(ctx, bson.M{"playerId": playerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.MissionRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *missionRepo) Update(ctx context.Context, record *model.MissionRecord) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": record.ID}, record)
	return err
}
