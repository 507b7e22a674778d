package database

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout         = 10 * time.Second
	serverSelectionTimeout = 5 * time.Second
	socketTimeout          = 45 * time.Second
)

type (
	// MongoPool owns the shared client handle for the process. The handle is
	// ping-checked before reuse; a stale or failed handle is discarded and one
	// fresh connect is attempted per call. Concurrent callers may race through
	// the reconnect sequence; the last writer's handle wins.
	MongoPool struct {
		uri      string
		database string
		client   *mongo.Client
	}
)

func NewMongoPool(uri string, database string) *MongoPool {
	return &MongoPool{
		uri:      uri,
		database: database,
	}
}

// Collection returns a handle to the named collection, connecting or
// reconnecting as needed.
func (p *MongoPool) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	client, err := p.healthyClient(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(p.database).Collection(name), nil
}

func (p *MongoPool) healthyClient(ctx context.Context) (*mongo.Client, error) {
	if p.client != nil {
		if err := p.client.Ping(ctx, readpref.Primary()); err == nil {
			return p.client, nil
		}
		_ = p.client.Disconnect(ctx)
		p.client = nil
	}

	// nested documents must decode as bson.M, not bson.D
	registry := bson.NewRegistry()
	registry.RegisterTypeMapEntry(bson.TypeEmbeddedDocument, reflect.TypeOf(bson.M{}))

	opts := options.Client().
		ApplyURI(p.uri).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(serverSelectionTimeout).
		SetSocketTimeout(socketTimeout).
		SetRegistry(registry)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		p.client = nil
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		p.client = nil
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	p.client = client
	return p.client, nil
}

func (p *MongoPool) Close(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	err := p.client.Disconnect(ctx)
	p.client = nil
	return err
}
