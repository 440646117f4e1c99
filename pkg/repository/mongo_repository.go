package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relay/pkg/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type mongoStatusRepository struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

// NewMongoStatusRepository stores one document per message, _id = messageId.
func NewMongoStatusRepository(db *mongo.Database, collection string, logger *zap.Logger) StatusRepository {
	return &mongoStatusRepository{
		collection: db.Collection(collection),
		logger:     logger.With(zap.String("component", "mongo-store")),
	}
}

// statusDocument is the webhookData layout: the message id is both the
// document key and a plain messageId field.
type statusDocument struct {
	ID         string    `bson:"_id"`
	MessageID  string    `bson:"messageId"`
	Status     string    `bson:"status"`
	Contact    any       `bson:"contact"`
	DateTime   any       `bson:"dateTime"`
	AuthorName string    `bson:"authorName"`
	ChatID     any       `bson:"chatId"`
	UpdatedAt  time.Time `bson:"updatedAt"`
}

func newStatusDocument(rec models.Record) statusDocument {
	return statusDocument{
		ID:         rec.MessageID,
		MessageID:  rec.MessageID,
		Status:     rec.Status,
		Contact:    rec.Contact,
		DateTime:   rec.DateTime,
		AuthorName: rec.AuthorName,
		ChatID:     rec.ChatID,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func (d statusDocument) record() models.Record {
	return models.Record{
		MessageID:  d.ID,
		Status:     d.Status,
		Contact:    d.Contact,
		DateTime:   d.DateTime,
		AuthorName: d.AuthorName,
		ChatID:     d.ChatID,
		UpdatedAt:  d.UpdatedAt,
	}
}

func upsertModels(records []models.Record) []mongo.WriteModel {
	writes := make([]mongo.WriteModel, 0, len(records))
	for _, rec := range records {
		writes = append(writes, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": rec.MessageID}).
			SetReplacement(newStatusDocument(rec)).
			SetUpsert(true))
	}
	return writes
}

type txSession interface {
	StartTransaction(opts ...*options.TransactionOptions) error
	CommitTransaction(ctx context.Context) error
	AbortTransaction(ctx context.Context) error
}

// commitOnce runs write in a transaction exactly once. Transient errors are
// returned to the caller, not retried.
func commitOnce(ctx context.Context, sess txSession, write func(context.Context) error) error {
	if err := sess.StartTransaction(); err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	if err := write(ctx); err != nil {
		if abortErr := sess.AbortTransaction(context.WithoutCancel(ctx)); abortErr != nil {
			return errors.Join(err, fmt.Errorf("abort transaction: %w", abortErr))
		}
		return err
	}
	if err := sess.CommitTransaction(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UpsertBatch runs an ordered bulk replace inside a single transaction attempt
// so the batch commits as a unit. Requires a replica set or sharded deployment.
func (r *mongoStatusRepository) UpsertBatch(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	sess, err := r.collection.Database().Client().StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	writes := upsertModels(records)
	sc := mongo.NewSessionContext(ctx, sess)
	err = commitOnce(sc, sess, func(ctx context.Context) error {
		_, err := r.collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(true))
		return err
	})
	if err != nil {
		return fmt.Errorf("bulk upsert %d records: %w", len(records), err)
	}

	r.logger.Debug("batch committed", zap.Int("count", len(records)))
	return nil
}

func (r *mongoStatusRepository) ReadAll(ctx context.Context) ([]models.Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []statusDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	records := make([]models.Record, 0, len(docs))
	for _, d := range docs {
		records = append(records, d.record())
	}
	return records, nil
}

func (r *mongoStatusRepository) FindByID(ctx context.Context, messageID string) (*models.Record, error) {
	var doc statusDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": messageID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	rec := doc.record()
	return &rec, nil
}
