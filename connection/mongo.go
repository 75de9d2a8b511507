package connection

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ Store = &MongoStore{}

// MongoStore keeps connection records as subdocuments of the user document,
// under "connections.<platform>". One document per user, keyed by _id.
type MongoStore struct {
	users *mongo.Collection
}

// NewMongoStore creates a store backed by the given DB's users collection.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users: db.Collection("users"),
	}
}

// Get loads the connection record for one user+platform.
func (s *MongoStore) Get(ctx context.Context, userID string, platform Platform) (*Record, error) {
	var doc struct {
		Connections map[string]Record `bson:"connections"`
	}
	err := s.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	rec, ok := doc.Connections[string(platform)]
	if !ok {
		return &Record{}, nil
	}
	return &rec, nil
}

// Update merges fields into the user's platform subdocument. The user
// document must already exist; connecting a platform never creates users.
func (s *MongoStore) Update(ctx context.Context, userID string, platform Platform, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	set := bson.M{}
	for k, v := range fields {
		set[fmt.Sprintf("connections.%s.%s", platform, k)] = v
	}
	res, err := s.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}
