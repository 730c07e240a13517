package repository

import (
	"context"
	"splenderra/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type PlayerRepo interface {
	Create(ctx context.Context, player *model.Player) error
	GetByID(ctx context.Context, id string) (*model.Player, error)
	GetByGameCode(ctx context.Context, gameCode string) ([]*model.Player, error)
	Update(ctx context.Context, player *model.Player) error
}

type playerRepo struct {
	collection *mongo.Collection
}

func NewPlayerRepo(db *mongo.Database) PlayerRepo {
	return &playerRepo{
		collection: db.Collection("players"),
	}
}

func (r *playerRepo) Create(ctx context.Context, player *model.Player) error {
	if player.ID == "" {
		player.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.collection.InsertOne(ctx, player)
	return err
}

func (r *playerRepo) GetByID(ctx context.Context, id string) (*model.Player, error) {
	var player model.Player
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Player not found
		}
		return nil, err
	}

	return &player, nil
}

func (r *playerRepo) GetByGameCode(ctx context.Context, gameCode string) ([]*model.Player, error) {
	opts := options.Find().SetSort(bson.M{"joinedAt": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"gameCode": gameCode}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*model.Player
	if err = cursor.All(ctx, &players); err != nil {
		return nil, err
	}

	return players, nil
}

func (r *playerRepo) Update(ctx context.Context, player *model.Player) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": player.ID}, player)
	return err
}
