package databases

// go generate: mockery --name DoorbellEventDatabase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jonasfh/picobell-api/models"
)

const doorbellEventCollectionName = "doorbellevents"

// DoorbellEventDatabase owns the lifecycle of doorbell events: creation on
// ring intake, flagging on an open request, and consumption by the device
// poller. Events are never deleted; expired and consumed rows stay for audit.
type DoorbellEventDatabase interface {
	CreateEvent(ctx context.Context, serial string) (*models.DoorbellEvent, error)
	FindLatestValid(ctx context.Context, serial string, window time.Duration) (*models.DoorbellEvent, error)
	MarkOpenRequested(ctx context.Context, id primitive.ObjectID) error
	ConsumeIfOpenRequested(ctx context.Context, serial string, window time.Duration) (bool, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.DoorbellEvent, error)
}

type doorbellEventDatabase struct {
	db DatabaseHelper
}

// NewDoorbellEventDatabase initializes a new instance of doorbell event database with the provided db connection
func NewDoorbellEventDatabase(db DatabaseHelper) DoorbellEventDatabase {
	return &doorbellEventDatabase{
		db: db,
	}
}

// CreateEvent inserts a fresh event for the given device serial. Every
// physical ring produces a new row, even while an earlier one is still
// unresolved.
func (d *doorbellEventDatabase) CreateEvent(ctx context.Context, serial string) (*models.DoorbellEvent, error) {
	event := &models.DoorbellEvent{
		ID:            primitive.NewObjectID(),
		PicoSerial:    serial,
		OpenRequested: false,
		OpenedAt:      nil,
		CreatedAt:     primitive.NewDateTimeFromTime(time.Now()),
	}
	res := d.db.Collection(doorbellEventCollectionName).InsertOne(ctx, event)
	if res.Decode() == nil {
		return nil, errors.New("failed to insert doorbell event")
	}
	return event, nil
}

// FindLatestValid returns the most recent unconsumed event created within
// the validity window, or nil when there is none. Older unresolved events
// are shadowed by the latest one and are never separately expired.
func (d *doorbellEventDatabase) FindLatestValid(ctx context.Context, serial string, window time.Duration) (*models.DoorbellEvent, error) {
	cutoff := primitive.NewDateTimeFromTime(time.Now().Add(-window))
	filter := bson.M{
		"picoSerial": serial,
		"openedAt":   nil,
		"createdAt":  bson.M{"$gte": cutoff},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	event := &models.DoorbellEvent{}
	err := d.db.Collection(doorbellEventCollectionName).FindOne(ctx, filter, opts).Decode(event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return event, nil
}

// MarkOpenRequested sets the open flag on an event. Setting it on an
// already-flagged row is a no-op, not an error.
func (d *doorbellEventDatabase) MarkOpenRequested(ctx context.Context, id primitive.ObjectID) error {
	_, err := d.db.Collection(doorbellEventCollectionName).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"openRequested": true}},
	)
	return err
}

// ConsumeIfOpenRequested resolves the latest valid event and, when its open
// flag is set, stamps openedAt and reports true. The stamp is a single
// conditional update guarded on openedAt still being null, so two pollers
// racing on the same event can never both observe true.
func (d *doorbellEventDatabase) ConsumeIfOpenRequested(ctx context.Context, serial string, window time.Duration) (bool, error) {
	latest, err := d.FindLatestValid(ctx, serial, window)
	if err != nil {
		return false, err
	}
	if latest == nil || !latest.OpenRequested {
		return false, nil
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	filter := bson.M{
		"_id":           latest.ID,
		"openRequested": true,
		"openedAt":      nil,
	}
	update := bson.M{"$set": bson.M{"openedAt": now}}

	consumed := &models.DoorbellEvent{}
	err = d.db.Collection(doorbellEventCollectionName).FindOneAndUpdate(ctx, filter, update).Decode(consumed)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// another poller got there first
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (d *doorbellEventDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.DoorbellEvent, error) {
	var events []models.DoorbellEvent
	cur := d.db.Collection(doorbellEventCollectionName).Find(ctx, filter, opts...)
	err := cur.Decode(&events)
	if err != nil {
		return nil, err
	}
	return events, nil
}
