package supporterRepo

import (
	"context"
	"fmt"
	"time"

	"waymate/database"
	"waymate/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoSupporterRepo implements SupporterRepository using MongoDB.
type MongoSupporterRepo struct {
	coll *mongo.Collection
}

// NewMongoSupporterRepo creates a new instance of SupporterRepository using MongoDB.
func NewMongoSupporterRepo() SupporterRepository {
	coll := database.MongoClient.Database("waymate").Collection("supporters")
	repo := &MongoSupporterRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoSupporterRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_available", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Upsert creates or replaces the supporter row keyed by user ID.
func (r *MongoSupporterRepo) Upsert(s *models.Supporter) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Replace().SetUpsert(true)
	_, err := r.coll.ReplaceOne(ctx, bson.M{"user_id": s.UserID}, s, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert supporter %s: %w", s.UserID, err)
	}
	return nil
}

// GetByID retrieves a supporter row, returning nil when the user is not on
// the roster.
func (r *MongoSupporterRepo) GetByID(userID string) (*models.Supporter, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var s models.Supporter
	if err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&s); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch supporter %s: %w", userID, err)
	}
	return &s, nil
}

// GetAll retrieves the full roster.
func (r *MongoSupporterRepo) GetAll() ([]models.Supporter, error) {
	return r.find(bson.M{})
}

// GetAvailable retrieves supporters currently flagged available.
func (r *MongoSupporterRepo) GetAvailable() ([]models.Supporter, error) {
	return r.find(bson.M{"is_available": true})
}

func (r *MongoSupporterRepo) find(filter bson.M) ([]models.Supporter, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve supporters: %w", err)
	}
	defer cursor.Close(ctx)

	var supporters []models.Supporter
	for cursor.Next(ctx) {
		var s models.Supporter
		if err := cursor.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode supporter: %w", err)
		}
		supporters = append(supporters, s)
	}
	return supporters, nil
}

// GetAllWithUserInfo retrieves the roster with the user's display fields
// joined in, for the admin console.
func (r *MongoSupporterRepo) GetAllWithUserInfo() ([]models.SupporterInfo, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.M{
			"from":         "users",
			"localField":   "user_id",
			"foreignField": "id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$user", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate supporters: %w", err)
	}
	defer cursor.Close(ctx)

	var infos []models.SupporterInfo
	for cursor.Next(ctx) {
		var info models.SupporterInfo
		if err := cursor.Decode(&info); err != nil {
			return nil, fmt.Errorf("failed to decode supporter info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// SetAvailability toggles the availability flag.
func (r *MongoSupporterRepo) SetAvailability(userID string, available bool) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"is_available": available}},
	)
	if err != nil {
		return fmt.Errorf("failed to update supporter %s availability: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("supporter %s not found", userID)
	}
	return nil
}

// Delete removes a supporter row.
func (r *MongoSupporterRepo) Delete(userID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"user_id": userID})
	if err != nil {
		return fmt.Errorf("failed to delete supporter %s: %w", userID, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("supporter %s not found", userID)
	}
	return nil
}
