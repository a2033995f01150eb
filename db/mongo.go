// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Initial reference and motivation taken from
// https://gitlab.com/project-emco/core/emco-base/-/blob/main/src/orchestrator/pkg/infra/db

package db

import (
	"context"
	"log"
	"net"
	"reflect"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"

	"github.com/go-core-stack/doccopy/errors"
)

type mongoCollection struct {
	StoreCollection
	parent  *mongoStore // handler for the parent mongo DB object
	colName string      // name of the collection this collection object is working with
	col     *mongo.Collection
	keyType reflect.Type
}

// Set KeyType for the collection, this is not mandatory
// while the key type will be used by the interface implementer
// mainly for Watch Callback for providing decoded key, if not
// set watch will be working with the default decoders of
// interface implementer
// only pointer key type is supported as of now
// returns error if the key type is not a pointer
func (c *mongoCollection) SetKeyType(keyType reflect.Type) error {
	if keyType.Kind() != reflect.Ptr {
		return errors.Wrap(errors.InvalidArgument, "key type is not a pointer")
	}
	c.keyType = keyType
	return nil
}

// inserts one entry with given key and data to the collection
// returns errors if entry already exists or if there is a connection
// error with the database server
func (c *mongoCollection) InsertOne(ctx context.Context, key interface{}, data interface{}) error {
	if data == nil {
		return errors.Wrap(errors.InvalidArgument, "db Insert error: No data to store")
	}
	if key == nil {
		return errors.Wrap(errors.InvalidArgument, "db Insert error: No Key specified to store")
	}

	marshaledData, err := bson.Marshal(data)
	if err != nil {
		return err
	}

	bd := bson.D{}
	if err = bson.Unmarshal(marshaledData, &bd); err != nil {
		return err
	}

	bd = append(bd, bson.E{Key: "_id", Value: key})

	_, err = c.col.InsertOne(ctx, bd)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrapf(errors.AlreadyExists, "entry with key %v already exists: %s", key, err)
		}
		return err
	}
	return nil
}

// inserts or updates one entry with given key and data to the collection
// acts based on the flag passed for upsert
// returns errors if entry not found while upsert flag is false or if
// there is a connection error with the database server
func (c *mongoCollection) UpdateOne(ctx context.Context, key interface{}, data interface{}, upsert bool) error {
	if data == nil {
		return errors.Wrap(errors.InvalidArgument, "db Insert error: No data to store")
	}
	if key == nil {
		return errors.Wrap(errors.InvalidArgument, "db Insert error: No Key specified to store")
	}

	opts := options.UpdateOne().SetUpsert(upsert)
	resp, err := c.col.UpdateOne(
		ctx,
		bson.M{"_id": key},
		bson.D{{Key: "$set", Value: data}},
		opts)
	if err != nil {
		return err
	}

	if resp.MatchedCount == 0 && resp.UpsertedCount == 0 {
		return errors.Wrap(errors.NotFound, "No Document found")
	}

	return nil
}

// Find one entry from the store collection for the given key, where the data
// value is returned based on the object type passed to it
func (c *mongoCollection) FindOne(ctx context.Context, key interface{}, data interface{}) error {
	resp := c.col.FindOne(ctx, bson.M{"_id": key})
	if err := resp.Decode(data); err != nil {
		if err == mongo.ErrNoDocuments {
			return errors.Wrapf(errors.NotFound, "no document found for key %v", key)
		}
		return err
	}
	return nil
}

// Find multiple entries from the store collection for the given filter, where the data
// value is returned as a list based on the object type passed to it
func (c *mongoCollection) FindMany(ctx context.Context, filter interface{}, data interface{}, opts ...options.Lister[options.FindOptions]) error {
	if filter == nil {
		filter = bson.D{}
	}
	cursor, err := c.col.Find(ctx, filter, opts...)
	if err != nil {
		return err
	}
	return cursor.All(ctx, data)
}

// Count returns the number of entries matching filter
func (c *mongoCollection) Count(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	return c.col.CountDocuments(ctx, filter)
}

// remove one entry from the collection matching the given key
func (c *mongoCollection) DeleteOne(ctx context.Context, key interface{}) error {
	resp, err := c.col.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return err
	}
	if resp.DeletedCount == 0 {
		return errors.Wrap(errors.NotFound, "No Document found")
	}

	return nil
}

// Delete Many entries matching the delete criteria
// returns number of entries deleted and if there is any error processing the request
func (c *mongoCollection) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	if filter == nil {
		filter = bson.D{}
	}
	resp, err := c.col.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	if resp.DeletedCount == 0 {
		return 0, errors.Wrap(errors.NotFound, "No matching entries found to delete")
	}
	return resp.DeletedCount, nil
}

// watch allows getting notified whenever a change happens to a document
// in the collection, optionally restricted by a change-stream pipeline
// such as a $match on operationType
func (c *mongoCollection) Watch(ctx context.Context, filter interface{}, cb WatchCallbackfn) error {
	pipeline := mongo.Pipeline{}
	if stages, ok := filter.(mongo.Pipeline); ok {
		pipeline = stages
	}

	stream, err := c.col.Watch(ctx, pipeline)
	if err != nil {
		return err
	}

	// run the loop on stream in a separate go routine
	// allowing the watch starter to resume control and work with
	// managing Watch stream by virtue of passed context
	go func() {
		keyType := c.keyType
		defer stream.Close(context.Background())
		defer func() {
			if ctx.Err() == nil {
				log.Panicf("End of stream observed due to error %s", stream.Err())
			}
		}()
		for stream.Next(ctx) {
			var data bson.M
			if err := stream.Decode(&data); err != nil {
				log.Printf("Closing watch due to decoding error %s", err)
				return
			}

			op, ok := data["operationType"].(string)
			if !ok {
				log.Printf("Closing watch due to error, unable to find decode operation type ")
				return
			}

			dk, ok := data["documentKey"].(bson.M)
			if !ok {
				log.Printf("Closing watch due to error, unable to find key")
				return
			}

			bKeyVal, ok := dk["_id"]
			if !ok {
				log.Printf("Closing watch due to error, unable to find id")
				return
			}

			var key interface{}
			if keyType != nil {
				key = reflect.New(keyType.Elem()).Interface()
				raw, err := bson.Marshal(bKeyVal)
				if err != nil {
					log.Printf("Closing watch due to error, while bson Marshal : %q", err)
					return
				}
				if err = bson.Unmarshal(raw, key); err != nil {
					log.Printf("Closing watch due to error, while bson Unmarshal to key : %q", err)
					return
				}
			} else {
				key = bKeyVal
			}

			cb(op, key)
		}
	}()

	return nil
}

type mongoStore struct {
	Store
	name string
	db   *mongo.Database
}

func (s *mongoStore) Name() string {
	return s.name
}

func (s *mongoStore) GetCollection(name string) StoreCollection {
	handle := s.db.Collection(name)
	c := &mongoCollection{
		parent:  s,
		colName: name,
		col:     handle,
	}

	return c
}

type mongoClient struct {
	StoreClient
	client *mongo.Client
}

type MongoConfig struct {
	Host     string
	Port     string
	Username string
	Password string
}

func (c *MongoConfig) validate() error {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == "" || c.Port == "0" {
		c.Port = "27017"
	} else {
		if _, err := strconv.Atoi(c.Port); err != nil {
			return errors.Wrap(errors.InvalidArgument, "invalid database port")
		}
	}
	return nil
}

func NewMongoClient(conf *MongoConfig) (StoreClient, error) {
	if err := conf.validate(); err != nil {
		return nil, err
	}
	uri := "mongodb://" + net.JoinHostPort(conf.Host, conf.Port)
	clientOptions := options.Client()
	// keep the copy pipeline's connections observable the same way the
	// rest of the stack instruments mongo traffic
	clientOptions.Monitor = otelmongo.NewMonitor()
	clientOptions.ApplyURI(uri)
	clientOptions.SetAuth(options.Credential{
		AuthMechanism: "SCRAM-SHA-256",
		AuthSource:    "admin",
		Username:      conf.Username,
		Password:      conf.Password,
	})

	client, err := mongo.Connect(clientOptions)
	if err != nil {
		return nil, err
	}

	mClient := &mongoClient{
		client: client,
	}
	return mClient, nil
}

// Gets Mongodb Data Store for given database name
// typically while working with mongodb it requires to work on a collection
// which is scoped inside a database construct of mongodb
func (c *mongoClient) GetDataStore(dbName string) Store {
	store := c.client.Database(dbName)

	mongoStore := &mongoStore{
		name: dbName,
		db:   store,
	}

	return mongoStore
}

// gets Mongo DB collection for given collection name
// inside a database specified with db name
func (c *mongoClient) GetCollection(dbName, col string) StoreCollection {
	s := c.GetDataStore(dbName)
	return s.GetCollection(col)
}

func (c *mongoClient) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

func (c *mongoClient) Disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
