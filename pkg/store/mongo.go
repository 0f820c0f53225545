package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/meshrules/pkg/errors"
	"github.com/matzehuels/meshrules/pkg/manifest"
)

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoStore keeps one document per scene key.
//
// The manifest is stored as its JSON text rather than as a BSON
// sub-document: the "$type" discriminator is not a legal BSON field name.
type MongoStore struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

type manifestDocument struct {
	Key       string    `bson:"_id"`
	Manifest  string    `bson:"manifest"`
	Objects   int       `bson:"objects"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to cfg.URI and verifies the connection.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if cfg.Database == "" {
		cfg.Database = "meshrules"
	}
	if cfg.Collection == "" {
		cfg.Collection = "manifests"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to mongo")
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongo")
	}

	return &MongoStore{
		client:  client,
		coll:    client.Database(cfg.Database).Collection(cfg.Collection),
		timeout: cfg.Timeout,
		now:     time.Now,
	}, nil
}

func (s *MongoStore) Load(ctx context.Context, key string) (*manifest.Manifest, bool, error) {
	if err := errors.ValidateSceneKey(key); err != nil {
		return nil, false, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var doc manifestDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStore, err, "load manifest %s", key)
	}
	m, err := manifest.Unmarshal([]byte(doc.Manifest))
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

func (s *MongoStore) Save(ctx context.Context, key string, m *manifest.Manifest) error {
	if err := errors.ValidateSceneKey(key); err != nil {
		return err
	}
	doc, err := s.document(key, m)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err = s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: key}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save manifest %s", key)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	if err := errors.ValidateSceneKey(key); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: key}}); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete manifest %s", key)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) document(key string, m *manifest.Manifest) (manifestDocument, error) {
	data, err := manifest.Marshal(m)
	if err != nil {
		return manifestDocument{}, err
	}
	return manifestDocument{
		Key:       key,
		Manifest:  string(data),
		Objects:   m.Len(),
		UpdatedAt: s.now().UTC(),
	}, nil
}

var _ Store = (*MongoStore)(nil)
