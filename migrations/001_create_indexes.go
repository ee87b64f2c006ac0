package migrations

import (
	"context"

	"MedShare/store"

	db "github.com/KanapuramVaishnavi/Core/config/db"
	"github.com/google/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IndexPlan lists the indexes each collection needs.
func IndexPlan() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		store.MedicineCollection: {
			{
				Keys:    bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "manufacturer", Value: "text"}},
				Options: options.Index().SetName("medicine_text"),
			},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		store.RequestCollection: {
			{Keys: bson.D{{Key: "flow", Value: 1}, {Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "requester", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "medicine", Value: 1}}},
		},
		store.ManufacturerCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
		},
	}
}

func CreateIndexes() {
	ctx := context.Background()
	for collection, models := range IndexPlan() {
		names, err := db.DB.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			logger.Fatalf("Migration failed on %s: %v", collection, err)
		}
		logger.Infof("Migration applied: %s indexes %v", collection, names)
	}
}
