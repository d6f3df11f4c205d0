package operators

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tarungka/flowplan/plan"
)

// MongoChangeStreamConfig holds the connection and filter details for
// MongoChangeStreamInputOperator.
type MongoChangeStreamConfig struct {
	URI        string
	Database   string
	Collection string
	Filter     bson.D
}

// MongoChangeStreamInputOperator is a root input operator that tails a
// MongoDB collection's change stream. DeadLetter is an optional output
// port for changes that fail to decode; Next itself emits nothing on it
// and returns a decode failure to its caller as an error.
type MongoChangeStreamInputOperator struct {
	DeadLetter plan.OutputPort

	Config MongoChangeStreamConfig

	client *mongo.Client
	stream *mongo.ChangeStream
}

// NewMongoChangeStreamInputOperator builds the operator with its
// DeadLetter port marked optional, since most plans have nowhere to route
// decode failures and tolerate dropping them.
func NewMongoChangeStreamInputOperator(cfg MongoChangeStreamConfig) *MongoChangeStreamInputOperator {
	return &MongoChangeStreamInputOperator{
		DeadLetter: plan.OutputPort{PortAnnotations: plan.PortAnnotations{Optional: true}},
		Config:     cfg,
	}
}

func (MongoChangeStreamInputOperator) RootCapable() {}

func (m *MongoChangeStreamInputOperator) Setup(ctx context.Context) error {
	if m.Config.URI == "" || m.Config.Database == "" || m.Config.Collection == "" {
		return fmt.Errorf("operators: mongo change stream config incomplete")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.Config.URI))
	if err != nil {
		log.Err(err).Msg("failed to connect to mongodb")
		return err
	}
	coll := client.Database(m.Config.Database).Collection(m.Config.Collection)
	pipeline := mongo.Pipeline{}
	if len(m.Config.Filter) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: m.Config.Filter}})
	}
	stream, err := coll.Watch(ctx, pipeline)
	if err != nil {
		log.Err(err).Msg("failed to open change stream")
		return err
	}
	m.client = client
	m.stream = stream
	return nil
}

// Next blocks until the next change document is available, decoding it
// into doc.
func (m *MongoChangeStreamInputOperator) Next(ctx context.Context, doc *bson.M) (bool, error) {
	if !m.stream.Next(ctx) {
		return false, m.stream.Err()
	}
	return true, m.stream.Decode(doc)
}

func (m *MongoChangeStreamInputOperator) Teardown(ctx context.Context) error {
	if m.stream != nil {
		m.stream.Close(ctx)
	}
	if m.client != nil {
		return m.client.Disconnect(ctx)
	}
	return nil
}
