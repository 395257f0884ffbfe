package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/domain"
	"github.com/aeromarket/drone-service/internal/platform/logger"
)

const droneCollectionName = "drones"

// DroneRepository is the MongoDB-backed implementation of
// domain.DroneRepository.
type DroneRepository struct {
	collection *mongo.Collection
	logger     *logger.Logger
}

func NewDroneRepository(ctx context.Context, db *mongo.Database, appLogger *logger.Logger) (*DroneRepository, error) {
	repo := &DroneRepository{
		collection: db.Collection(droneCollectionName),
		logger:     appLogger.Named("DroneRepositoryMongo"),
	}

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := repo.collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		repo.logger.Error("Failed to create indexes for drones collection", zap.Error(err))
		return nil, fmt.Errorf("failed to create drone indexes: %w", err)
	}

	return repo, nil
}

func (r *DroneRepository) Create(ctx context.Context, drone *domain.Drone) (string, error) {
	doc, err := toDroneDocument(drone)
	if err != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}
	if doc.ID.IsZero() {
		doc.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		r.logger.Error("Failed to insert drone", zap.Error(err))
		return "", storeErr("insert drone", err)
	}
	return doc.ID.Hex(), nil
}

// Resolve finds a drone by its primary ObjectID, falling back to the legacy
// business key when the value is not a valid ObjectID or no document matches.
func (r *DroneRepository) Resolve(ctx context.Context, id string) (*domain.Drone, error) {
	if objID, err := primitive.ObjectIDFromHex(id); err == nil {
		var doc droneDocument
		err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
		if err == nil {
			return toDroneEntity(&doc), nil
		}
		if !errors.Is(err, mongo.ErrNoDocuments) {
			r.logger.Error("Failed to find drone by ObjectID", zap.String("drone_id", id), zap.Error(err))
			return nil, storeErr("find drone", err)
		}
	}

	var doc droneDocument
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to find drone by legacy ID", zap.String("drone_id", id), zap.Error(err))
		return nil, storeErr("find drone", err)
	}
	return toDroneEntity(&doc), nil
}

func (r *DroneRepository) Update(ctx context.Context, id string, patch domain.DronePatch) (*domain.Drone, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	setFields := bson.M{"updated_at": time.Now().UTC()}
	if patch.Title != nil {
		setFields["title"] = *patch.Title
	}
	if patch.Description != nil {
		setFields["description"] = *patch.Description
	}
	if patch.Category != nil {
		setFields["category"] = *patch.Category
	}
	if patch.Condition != nil {
		setFields["condition"] = *patch.Condition
	}
	if patch.Location != nil {
		setFields["location"] = *patch.Location
	}
	if patch.Price != nil {
		setFields["price"] = *patch.Price
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc droneDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, bson.M{"$set": setFields}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to update drone", zap.String("drone_id", id), zap.Error(err))
		return nil, storeErr("update drone", err)
	}
	return toDroneEntity(&doc), nil
}

func (r *DroneRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		r.logger.Error("Failed to delete drone", zap.String("drone_id", id), zap.Error(err))
		return storeErr("delete drone", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DroneRepository) Find(ctx context.Context, filter domain.DroneFilter) ([]*domain.Drone, int64, error) {
	query := buildDroneQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		r.logger.Error("Failed to count drones", zap.Error(err))
		return nil, 0, storeErr("count drones", err)
	}

	findOptions := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if filter.Limit > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		findOptions.SetSkip(int64(page-1) * int64(filter.Limit))
		findOptions.SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection.Find(ctx, query, findOptions)
	if err != nil {
		r.logger.Error("Failed to find drones", zap.Error(err))
		return nil, 0, storeErr("find drones", err)
	}
	defer cursor.Close(ctx)

	drones := make([]*domain.Drone, 0)
	for cursor.Next(ctx) {
		var doc droneDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Error("Failed to decode drone document", zap.Error(err))
			return nil, 0, storeErr("decode drone document", err)
		}
		drones = append(drones, toDroneEntity(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, storeErr("iterate drones", err)
	}
	return drones, total, nil
}

func (r *DroneRepository) FindByIDs(ctx context.Context, ids []string) ([]*domain.Drone, error) {
	objIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objIDs = append(objIDs, objID)
	}
	if len(objIDs) == 0 {
		return []*domain.Drone{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objIDs}})
	if err != nil {
		r.logger.Error("Failed to find drones by IDs", zap.Error(err))
		return nil, storeErr("find drones by ids", err)
	}
	defer cursor.Close(ctx)

	drones := make([]*domain.Drone, 0, len(objIDs))
	for cursor.Next(ctx) {
		var doc droneDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, storeErr("decode drone document", err)
		}
		drones = append(drones, toDroneEntity(&doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, storeErr("iterate drones", err)
	}
	return drones, nil
}

func (r *DroneRepository) AppendReview(ctx context.Context, id string, review domain.Review) (*domain.Drone, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	reviewDoc, err := toReviewDocument(review)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err.Error())
	}

	update := bson.M{
		"$push": bson.M{"ratings": reviewDoc},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc droneDocument
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to append review", zap.String("drone_id", id), zap.Error(err))
		return nil, storeErr("append review", err)
	}
	return toDroneEntity(&doc), nil
}

// UpdateStatusIfActive transitions a drone's status only when it is still
// active, so concurrent purchases cannot both succeed.
func (r *DroneRepository) UpdateStatusIfActive(ctx context.Context, id string, to domain.DroneStatus) (*domain.Drone, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	filter := bson.M{"_id": objID, "status": string(domain.StatusActive)}
	update := bson.M{"$set": bson.M{"status": string(to), "updated_at": time.Now().UTC()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc droneDocument
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		r.logger.Error("Failed to update drone status", zap.String("drone_id", id), zap.Error(err))
		return nil, storeErr("update drone status", err)
	}
	return toDroneEntity(&doc), nil
}

// buildDroneQuery translates a domain filter into a conjunctive MongoDB
// predicate. Unset fields add no clauses.
func buildDroneQuery(filter domain.DroneFilter) bson.M {
	query := bson.M{}

	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Condition != "" {
		query["condition"] = filter.Condition
	}
	if filter.Location != "" {
		query["location"] = filter.Location
	}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	if filter.Status != nil {
		query["status"] = string(*filter.Status)
	}

	if filter.PriceMin != nil || filter.PriceMax != nil {
		priceRange := bson.M{}
		if filter.PriceMin != nil {
			priceRange["$gte"] = *filter.PriceMin
		}
		if filter.PriceMax != nil {
			priceRange["$lte"] = *filter.PriceMax
		}
		query["price"] = priceRange
	}

	return query
}
