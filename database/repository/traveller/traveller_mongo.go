package travellerRepo

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

// sosRecencyWindow bounds how far back "active-or-recent" reaches for the
// admin console's global view.
const sosRecencyWindow = 24 * time.Hour

// MongoTravellerRepo implements TravellerRepository using MongoDB.
type MongoTravellerRepo struct {
	coll *mongo.Collection
}

// NewMongoTravellerRepo creates a new instance of TravellerRepository using MongoDB.
func NewMongoTravellerRepo() TravellerRepository {
	coll := database.MongoClient.Database("waymate").Collection("travellers")
	repo := &MongoTravellerRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields frequently used in queries.
func (r *MongoTravellerRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_safe", Value: 1}, {Key: "updated_at", Value: -1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new traveller document.
func (r *MongoTravellerRepo) Create(t *models.Traveller) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.EmergencyContacts == nil {
		t.EmergencyContacts = models.ContactList{}
	}

	_, err := r.coll.InsertOne(ctx, t)
	if err != nil {
		return fmt.Errorf("failed to create traveller: %w", err)
	}
	return nil
}

// GetByID retrieves a traveller document by its user ID.
func (r *MongoTravellerRepo) GetByID(id string) (*models.Traveller, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var t models.Traveller
	if err := r.coll.FindOne(ctx, bson.M{"user_id": id}).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to fetch traveller with id %s: %w", id, err)
	}
	return &t, nil
}

// Update applies a partial update built from the non-nil fields of upd.
func (r *MongoTravellerRepo) Update(id string, upd models.TravellerUpdate) (*models.Traveller, error) {
	set := bson.M{"updated_at": time.Now()}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.Latitude != nil {
		set["latitude"] = *upd.Latitude
	}
	if upd.Longitude != nil {
		set["longitude"] = *upd.Longitude
	}
	if upd.IsSafe != nil {
		set["is_safe"] = *upd.IsSafe
	}
	if upd.IsSharedLocation != nil {
		set["is_shared_location"] = *upd.IsSharedLocation
	}
	if upd.EmergencyContacts != nil {
		// Legacy full-replacement writes are deduplicated here; the store
		// must never hold a duplicate assignment.
		set["emergency_contacts"] = upd.EmergencyContacts.Dedupe()
	}

	return r.findOneAndSet(id, bson.M{"user_id": id}, set)
}

// Activate atomically flips the record into an active emergency. A fresh
// emergency always starts with no assignees.
func (r *MongoTravellerRepo) Activate(id string, lat, lng float64) (*models.Traveller, error) {
	set := bson.M{
		"is_safe":            false,
		"is_shared_location": true,
		"emergency_contacts": models.ContactList{},
		"latitude":           lat,
		"longitude":          lng,
		"updated_at":         time.Now(),
	}
	return r.findOneAndSet(id, bson.M{"user_id": id}, set)
}

// Resolve atomically retires the emergency. The safety flag, sharing flag
// and assignment list change in one write so no reader can observe a
// half-resolved record.
func (r *MongoTravellerRepo) Resolve(id string) (*models.Traveller, error) {
	set := bson.M{
		"is_safe":            true,
		"is_shared_location": false,
		"emergency_contacts": models.ContactList{},
		"updated_at":         time.Now(),
	}
	return r.findOneAndSet(id, bson.M{"user_id": id}, set)
}

// AddContact assigns a supporter with $addToSet so concurrent assignments
// cannot drop each other. The filter requires an unsafe record: a resolved
// emergency is not assignable.
func (r *MongoTravellerRepo) AddContact(id, supporterID string) (*models.Traveller, bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"user_id": id, "is_safe": false}
	update := bson.M{
		"$addToSet": bson.M{"emergency_contacts": supporterID},
		"$set":      bson.M{"updated_at": time.Now()},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, false, fmt.Errorf("failed to assign supporter %s to traveller %s: %w", supporterID, id, err)
	}
	if result.MatchedCount == 0 {
		return nil, false, fmt.Errorf("traveller %s: %w", id, ErrNoActiveEmergency)
	}

	t, err := r.GetByID(id)
	if err != nil {
		return nil, false, err
	}
	return t, result.ModifiedCount > 0, nil
}

// RemoveContact unassigns a supporter with $pull.
func (r *MongoTravellerRepo) RemoveContact(id, supporterID string) (*models.Traveller, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"user_id": id}
	update := bson.M{
		"$pull": bson.M{"emergency_contacts": supporterID},
		"$set":  bson.M{"updated_at": time.Now()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Traveller
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to remove supporter %s from traveller %s: %w", supporterID, id, err)
	}
	return &t, nil
}

// GetAllSOS retrieves every record that is either in an active emergency or
// was mutated within the recency window, joined with the owner's profile.
func (r *MongoTravellerRepo) GetAllSOS() ([]models.SOSRecord, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"is_safe": false},
		bson.M{"updated_at": bson.M{"$gte": time.Now().Add(-sosRecencyWindow)}},
	}}
	return r.aggregateSOS(filter)
}

// GetSOSForSupporter retrieves active emergencies the supporter can act on:
// unassigned cases plus the cases the supporter is already assigned to.
func (r *MongoTravellerRepo) GetSOSForSupporter(supporterID string) ([]models.SOSRecord, error) {
	filter := bson.M{
		"is_safe": false,
		"$or": bson.A{
			bson.M{"emergency_contacts": bson.M{"$size": 0}},
			bson.M{"emergency_contacts": supporterID},
		},
	}
	return r.aggregateSOS(filter)
}

// aggregateSOS runs the shared lookup pipeline joining traveller rows with
// the owning user's display fields.
func (r *MongoTravellerRepo) aggregateSOS(filter bson.M) ([]models.SOSRecord, error) {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: bson.D{{Key: "updated_at", Value: -1}}}},
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
		return nil, fmt.Errorf("failed to aggregate sos records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.SOSRecord
	for cursor.Next(ctx) {
		var rec models.SOSRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("failed to decode sos record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// findOneAndSet applies a $set and returns the post-update document.
func (r *MongoTravellerRepo) findOneAndSet(id string, filter, set bson.M) (*models.Traveller, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Traveller
	if err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&t); err != nil {
		return nil, fmt.Errorf("failed to update traveller with id %s: %w", id, err)
	}
	return &t, nil
}
