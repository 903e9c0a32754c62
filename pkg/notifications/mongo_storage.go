package notifications

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultCollection is the collection MongoStorage uses unless told otherwise.
const DefaultCollection = "notifications"

// MongoStorage stores notifications in a MongoDB collection.
type MongoStorage struct {
	coll *mongo.Collection
	now  func() time.Time
}

type MongoOption func(*mongoConfig)

type mongoConfig struct {
	collection string
}

func WithCollection(name string) MongoOption {
	return func(c *mongoConfig) {
		if name != "" {
			c.collection = name
		}
	}
}

func NewMongoStorage(db *mongo.Database, opts ...MongoOption) *MongoStorage {
	cfg := mongoConfig{collection: DefaultCollection}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &MongoStorage{
		coll: db.Collection(cfg.collection),
		now:  time.Now,
	}
}

// EnsureIndexes creates the indexes listing and deduplication depend on.
func (s *MongoStorage) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dedup_key", Value: 1}},
			Options: options.Index().SetName("dedup_key_unique").SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "recipient", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("recipient_created_at"),
		},
		{
			Keys:    bson.D{{Key: "recipient", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("recipient_is_read_created_at"),
		},
	})
	if err != nil {
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}

func (s *MongoStorage) Create(ctx context.Context, n Notification) error {
	if n.ID == "" {
		return ErrMissingID
	}
	if n.Recipient == "" {
		return ErrMissingRecipient
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now()
	}
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return errors.Join(ErrStorageFailed, err)
	}
	return nil
}

func (s *MongoStorage) Get(ctx context.Context, recipient, id string) (*Notification, error) {
	var n Notification
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "recipient", Value: recipient}}).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotificationNotFound
	}
	if err != nil {
		return nil, errors.Join(ErrStorageFailed, err)
	}
	return &n, nil
}

func (s *MongoStorage) List(ctx context.Context, recipient string, opts ListOptions) ([]Notification, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Offset > 0 {
		findOpts.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	cur, err := s.coll.Find(ctx, listFilter(recipient, opts), findOpts)
	if err != nil {
		return nil, errors.Join(ErrStorageFailed, err)
	}

	out := []Notification{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Join(ErrStorageFailed, err)
	}
	return out, nil
}

func (s *MongoStorage) Count(ctx context.Context, recipient string, opts ListOptions) (int, error) {
	n, err := s.coll.CountDocuments(ctx, listFilter(recipient, opts))
	if err != nil {
		return 0, errors.Join(ErrStorageFailed, err)
	}
	return int(n), nil
}

func (s *MongoStorage) MarkRead(ctx context.Context, recipient, id string) (*Notification, bool, error) {
	filter := bson.D{
		{Key: "_id", Value: id},
		{Key: "recipient", Value: recipient},
		{Key: "is_read", Value: false},
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "is_read", Value: true},
		{Key: "read_at", Value: s.now()},
	}}}

	var n Notification
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&n)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either missing or already read; Get tells them apart.
		current, err := s.Get(ctx, recipient, id)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}
	if err != nil {
		return nil, false, errors.Join(ErrStorageFailed, err)
	}
	return &n, true, nil
}

func (s *MongoStorage) MarkAllRead(ctx context.Context, recipient string) (int, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.D{{Key: "recipient", Value: recipient}, {Key: "is_read", Value: false}},
		bson.D{{Key: "$set", Value: bson.D{{Key: "is_read", Value: true}, {Key: "read_at", Value: s.now()}}}},
	)
	if err != nil {
		return 0, errors.Join(ErrStorageFailed, err)
	}
	return int(res.ModifiedCount), nil
}

func (s *MongoStorage) CountUnread(ctx context.Context, recipient string) (int, error) {
	f := false
	return s.Count(ctx, recipient, ListOptions{Read: &f})
}

func listFilter(recipient string, opts ListOptions) bson.D {
	filter := bson.D{{Key: "recipient", Value: recipient}}
	if opts.Read != nil {
		filter = append(filter, bson.E{Key: "is_read", Value: *opts.Read})
	}
	if len(opts.Types) > 0 {
		filter = append(filter, bson.E{Key: "type", Value: bson.D{{Key: "$in", Value: opts.Types}}})
	}
	if opts.Since != nil {
		filter = append(filter, bson.E{Key: "created_at", Value: bson.D{{Key: "$gte", Value: *opts.Since}}})
	}
	return filter
}
