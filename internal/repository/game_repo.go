package repository

import (
	"context"
	"splenderra/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type GameRepo interface {
	Create(ctx context.Context, game *model.Game) error
	GetByCode(ctx context.Context, code string) (*model.Game, error)
	Update(ctx context.Context, game *model.Game) error
	Delete(ctx context.Context, code string) error
}

type gameRepo struct {
	collection *mongo.Collection
}

func NewGameRepo(db *mongo.Database) GameRepo {
	return &gameRepo{
		collection: db.Collection("games"),
	}
}

func (r *gameRepo) Create(ctx context.Context, game *model.Game) error {
	_, err := r.collection.InsertOne(ctx, game)
	return err
}

func (r *gameRepo) GetByCode(ctx context.Context, code string) (*model.Game, error) {
	var game model.Game
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Game not found
		}
		return nil, err
	}

	return &game, nil
}

func (r *gameRepo) Update(ctx context.Context, game *model.Game) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"code": game.Code}, game)
	return err
}

func (r *gameRepo) Delete(ctx context.Context, code string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	return err
}
