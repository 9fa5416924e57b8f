package dbmongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"smsvault/internal/common"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	messagesCollection = "messages"
	countersCollection = "counters"
)

type messageDocument struct {
	ID     int64  `bson:"_id"`
	Sender string `bson:"sender"`
	SMS    string `bson:"sms"`
	TS     string `bson:"ts"`
}

type counterDocument struct {
	ID  string `bson:"_id"`
	Seq int64  `bson:"seq"`
}

// MessageStore keeps the integer ids the API promises by drawing them from a
// counters document instead of using ObjectIDs.
type MessageStore struct {
	messages *mongo.Collection
	counters *mongo.Collection
}

func NewMessageStore(mc *MongoClient) common.MessageRepository {
	return newMessageStore(mc.Database)
}

func newMessageStore(db *mongo.Database) *MessageStore {
	return &MessageStore{
		messages: db.Collection(messagesCollection),
		counters: db.Collection(countersCollection),
	}
}

func (s *MessageStore) Insert(ctx context.Context, sender, body, ts string) (string, error) {
	id, err := s.nextID(ctx)
	if err != nil {
		return "", err
	}

	doc := messageDocument{ID: id, Sender: sender, SMS: body, TS: ts}
	if _, err := s.messages.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to insert message: %w", err)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *MessageStore) nextID(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter counterDocument
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": messagesCollection},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate message id: %w", err)
	}
	return counter.Seq, nil
}

func (s *MessageStore) All(ctx context.Context) ([]*common.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})

	cursor, err := s.messages.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []messageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}

	messages := make([]*common.Message, len(docs))
	for i := range docs {
		messages[i] = docs[i].toCommon()
	}
	return messages, nil
}

func (s *MessageStore) ByID(ctx context.Context, id string) (*common.Message, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || n < 1 {
		return nil, common.ErrNotFound
	}

	var doc messageDocument
	if err := s.messages.FindOne(ctx, bson.M{"_id": n}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return doc.toCommon(), nil
}

func (d *messageDocument) toCommon() *common.Message {
	id := strconv.FormatInt(d.ID, 10)
	return &common.Message{
		ID:     &id,
		Sender: d.Sender,
		SMS:    d.SMS,
		TS:     d.TS,
	}
}
