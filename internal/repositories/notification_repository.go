package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lostfound/recovery/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotificationNotFound is returned when no event matches the id and recipient
var ErrNotificationNotFound = errors.New("notification not found")

// MessageNotificationRepository defines the outbox of new-message events
type MessageNotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.MessageNotification) error
	GetUndelivered(ctx context.Context, recipientID uint, limit int64) ([]models.MessageNotification, error)
	MarkDelivered(ctx context.Context, id string, recipientID uint) error
}

// MongoMessageNotificationRepository implements MessageNotificationRepository for MongoDB
type MongoMessageNotificationRepository struct {
	collection *mongo.Collection
}

// NewMongoMessageNotificationRepository creates a new MongoMessageNotificationRepository
func NewMongoMessageNotificationRepository(db *mongo.Database) *MongoMessageNotificationRepository {
	return &MongoMessageNotificationRepository{collection: db.Collection("message_notifications")}
}

// EnsureIndexes creates the event_id uniqueness and recipient lookup indexes
func (r *MongoMessageNotificationRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "recipient_id", Value: 1}, {Key: "delivered", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return err
}

// CreateNotification stores a new undelivered event
func (r *MongoMessageNotificationRepository) CreateNotification(ctx context.Context, notification *models.MessageNotification) error {
	notification.ID = primitive.NewObjectID()
	notification.Delivered = false
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, notification)
	return err
}

// GetUndelivered lists a recipient's pending events, oldest first
func (r *MongoMessageNotificationRepository) GetUndelivered(ctx context.Context, recipientID uint, limit int64) ([]models.MessageNotification, error) {
	var notifications []models.MessageNotification
	findOptions := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"recipient_id": recipientID, "delivered": false}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkDelivered flags one of the recipient's events as delivered
func (r *MongoMessageNotificationRepository) MarkDelivered(ctx context.Context, id string, recipientID uint) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid notification ID format: %w", err)
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID, "recipient_id": recipientID}, bson.M{"$set": bson.M{"delivered": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
