package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore keeps the list in one MongoDB collection, one document per item.
//
// Document:
//
//	{_id, position, item, description}
//
// position records the item's index so Load can return the list in order.
// Documents written without one sort first, in _id order.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoItem struct {
	Position    int    `bson:"position"`
	Name        string `bson:"item"`
	Description string `bson:"description"`
}

// NewMongoStore creates a client for uri. The driver connects lazily, so an
// unreachable server surfaces on the first Load or Save rather than here.
func NewMongoStore(ctx context.Context, uri, database, collection string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(collection),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context) ([]Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "position", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find shopping list: %w", err)
	}
	var docs []mongoItem
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode shopping list: %w", err)
	}
	items := make([]Item, 0, len(docs))
	for _, d := range docs {
		items = append(items, Item{Name: d.Name, Description: d.Description})
	}
	return items, nil
}

// Save clears the collection and inserts items. An empty list leaves the
// collection empty.
func (s *MongoStore) Save(ctx context.Context, items []Item) error {
	if _, err := s.coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear shopping list: %w", err)
	}
	if len(items) == 0 {
		return nil
	}
	docs := make([]any, 0, len(items))
	for i, it := range items {
		docs = append(docs, mongoItem{Position: i, Name: it.Name, Description: it.Description})
	}
	if _, err := s.coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert shopping list: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
