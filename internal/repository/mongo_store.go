package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/3dmm/site/internal/metrics"
	"github.com/3dmm/site/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// MongoStore is the MongoDB implementation of Store.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to uri, verifies the connection and selects dbName.
func OpenMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

var _ Store = (*MongoStore)(nil)

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *MongoStore) Backend() string { return BackendMongo }

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Contacts() ContactRepository {
	return &mongoContactRepository{coll: s.db.Collection(ContactsCollection)}
}

func (s *MongoStore) Newsletter() NewsletterRepository {
	return &mongoNewsletterRepository{coll: s.db.Collection(NewsletterCollection)}
}

// EnsureIndexes creates the unique subscriber email index and the contacts
// createdAt index. It is idempotent.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(NewsletterCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("newsletter index: %w", err)
	}
	_, err = s.db.Collection(ContactsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "createdAt", Value: -1}},
		Options: options.Index().SetName("created_at_desc"),
	})
	if err != nil {
		return fmt.Errorf("contacts index: %w", err)
	}
	return nil
}

// contactDocument is the BSON shape of a contacts entry.
type contactDocument struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	FirstName     string        `bson:"firstName"`
	LastName      string        `bson:"lastName"`
	Email         string        `bson:"email"`
	Subject       string        `bson:"subject"`
	Message       string        `bson:"message"`
	SignUpForNews bool          `bson:"signUpForNews"`
	CreatedAt     time.Time     `bson:"createdAt"`
}

func newContactDocument(msg *model.ContactSubmission) contactDocument {
	return contactDocument{
		FirstName:     msg.FirstName,
		LastName:      msg.LastName,
		Email:         msg.Email,
		Subject:       msg.Subject,
		Message:       msg.Message,
		SignUpForNews: msg.SignUpForNews,
		CreatedAt:     msg.CreatedAt,
	}
}

func (d contactDocument) toModel() *model.ContactSubmission {
	return &model.ContactSubmission{
		ID:            d.ID.Hex(),
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Email:         d.Email,
		Subject:       d.Subject,
		Message:       d.Message,
		SignUpForNews: d.SignUpForNews,
		CreatedAt:     d.CreatedAt,
	}
}

type mongoContactRepository struct {
	coll *mongo.Collection
}

func (r *mongoContactRepository) Insert(ctx context.Context, msg *model.ContactSubmission) error {
	defer metrics.ObserveStore(BackendMongo, "insert", ContactsCollection, time.Now())

	res, err := r.coll.InsertOne(ctx, newContactDocument(msg))
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		msg.ID = oid.Hex()
	}
	return nil
}

func (r *mongoContactRepository) List(ctx context.Context, opts model.ListOptions) ([]*model.ContactSubmission, error) {
	defer metrics.ObserveStore(BackendMongo, "list", ContactsCollection, time.Now())

	opts = opts.Normalize()
	find := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cur, err := r.coll.Find(ctx, bson.D{}, find)
	if err != nil {
		return nil, fmt.Errorf("find contacts: %w", err)
	}
	var docs []contactDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode contacts: %w", err)
	}
	out := make([]*model.ContactSubmission, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}

// subscriberDocument is the BSON shape of a newsletter entry.
type subscriberDocument struct {
	Email        string    `bson:"email"`
	FirstName    string    `bson:"firstName"`
	LastName     string    `bson:"lastName"`
	SubscribedAt time.Time `bson:"subscribedAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func (d subscriberDocument) toModel() *model.NewsletterSubscriber {
	return &model.NewsletterSubscriber{
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		SubscribedAt: d.SubscribedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// newsletterUpsert builds the filter and update for an upsert keyed by email.
// subscribedAt only lands on insert via $setOnInsert.
func newsletterUpsert(sub *model.NewsletterSubscriber) (filter, update bson.D) {
	filter = bson.D{{Key: "email", Value: sub.Email}}
	update = bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "email", Value: sub.Email},
			{Key: "firstName", Value: sub.FirstName},
			{Key: "lastName", Value: sub.LastName},
			{Key: "updatedAt", Value: sub.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "subscribedAt", Value: sub.SubscribedAt},
		}},
	}
	return filter, update
}

type mongoNewsletterRepository struct {
	coll *mongo.Collection
}

func (r *mongoNewsletterRepository) Upsert(ctx context.Context, sub *model.NewsletterSubscriber) (bool, error) {
	defer metrics.ObserveStore(BackendMongo, "upsert", NewsletterCollection, time.Now())

	filter, update := newsletterUpsert(sub)
	res, err := r.coll.UpdateOne(ctx, filter, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("upsert subscriber: %w", err)
	}
	if res.UpsertedCount > 0 {
		return true, nil
	}

	var existing subscriberDocument
	err = r.coll.FindOne(ctx, filter).Decode(&existing)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("reload subscriber: %w", err)
	}
	sub.SubscribedAt = existing.SubscribedAt
	return false, nil
}

func (r *mongoNewsletterRepository) List(ctx context.Context, opts model.ListOptions) ([]*model.NewsletterSubscriber, error) {
	defer metrics.ObserveStore(BackendMongo, "list", NewsletterCollection, time.Now())

	opts = opts.Normalize()
	find := options.Find().
		SetSort(bson.D{{Key: "updatedAt", Value: -1}}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))
	cur, err := r.coll.Find(ctx, bson.D{}, find)
	if err != nil {
		return nil, fmt.Errorf("find subscribers: %w", err)
	}
	var docs []subscriberDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode subscribers: %w", err)
	}
	out := make([]*model.NewsletterSubscriber, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toModel())
	}
	return out, nil
}
