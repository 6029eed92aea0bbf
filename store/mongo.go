package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backendprojects/graph/model"
)

type MongoStore struct {
	client   *mongo.Client
	clients  *mongoCollection[model.Client]
	projects *mongoCollection[model.Project]
}

// ConnectMongo dials the server, verifies it answers and makes sure the
// projects collection is indexed on clientId for the delete cascade.
func ConnectMongo(ctx context.Context, uri, database string, timeout time.Duration) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	s := &MongoStore{
		client:   client,
		clients:  &mongoCollection[model.Client]{coll: db.Collection(KindClient)},
		projects: &mongoCollection[model.Project]{coll: db.Collection(KindProject)},
	}

	_, err = s.projects.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: model.FieldClientID, Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create clientId index: %w", err)
	}
	return s, nil
}

func (s *MongoStore) Clients() Collection[model.Client]   { return s.clients }
func (s *MongoStore) Projects() Collection[model.Project] { return s.projects }

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoCollection[T any] struct {
	coll *mongo.Collection
}

func (c *mongoCollection[T]) Insert(ctx context.Context, doc *T) (*T, error) {
	m, err := toDoc(doc)
	if err != nil {
		return nil, err
	}
	m = withID(m)
	if _, err := c.coll.InsertOne(ctx, m); err != nil {
		return nil, fmt.Errorf("insert into %s: %w", c.coll.Name(), err)
	}
	return fromDoc[T](m)
}

func (c *mongoCollection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return c.one(c.coll.FindOne(ctx, bson.M{model.FieldID: id}))
}

func (c *mongoCollection[T]) FindAll(ctx context.Context) ([]*T, error) {
	return c.FindWhere(ctx, nil)
}

func (c *mongoCollection[T]) FindWhere(ctx context.Context, filter Filter) ([]*T, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}

	cursor, err := c.coll.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.coll.Name(), err)
	}
	defer cursor.Close(ctx)

	out := []*T{}
	for cursor.Next(ctx) {
		doc := new(T)
		if err := cursor.Decode(doc); err != nil {
			return nil, fmt.Errorf("decode %s: %w", c.coll.Name(), err)
		}
		out = append(out, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", c.coll.Name(), err)
	}
	return out, nil
}

func (c *mongoCollection[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	return c.one(c.coll.FindOneAndDelete(ctx, bson.M{model.FieldID: id}))
}

func (c *mongoCollection[T]) UpdateByID(ctx context.Context, id string, fields Fields) (*T, error) {
	// $set rejects an empty document.
	if len(fields) == 0 {
		return c.FindByID(ctx, id)
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return c.one(c.coll.FindOneAndUpdate(ctx, bson.M{model.FieldID: id}, bson.M{"$set": set}, opts))
}

func (c *mongoCollection[T]) one(res *mongo.SingleResult) (*T, error) {
	doc := new(T)
	err := res.Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.coll.Name(), err)
	}
	return doc, nil
}
