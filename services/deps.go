package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/eventbus"
	"inkpress/logger"
	"inkpress/models"
	"inkpress/repositories"
)

// PostStore is the data-access surface the post service needs. Implemented
// by repositories.PostRepository; faked in tests.
type PostStore interface {
	Insert(ctx context.Context, p *models.Post) error
	Replace(ctx context.Context, p *models.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error)
	List(ctx context.Context, opt repositories.ListPostsOptions) ([]models.Post, int64, error)
	IncrementViewCount(ctx context.Context, id primitive.ObjectID) error
	AddLike(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error
}

// CommentStore is the data-access surface the comment service needs.
// Implemented by repositories.CommentRepository; faked in tests.
type CommentStore interface {
	Insert(ctx context.Context, c *models.Comment) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error)
	FindByPost(ctx context.Context, postID primitive.ObjectID, opt repositories.FindByPostOptions) ([]models.Comment, error)
	DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error)
	DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error)
	PushReply(ctx context.Context, parentID, replyID primitive.ObjectID) error
	PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string, editedAt time.Time) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error
	AddLike(ctx context.Context, id, userID primitive.ObjectID) error
	RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error
}

// ImageDeleter removes externally stored images by public id. Deletion is
// best effort; failures are logged, never surfaced.
type ImageDeleter interface {
	DeleteImage(ctx context.Context, publicID string) error
}

// publishAsync fires an event without blocking or failing the request.
func publishAsync(bus eventbus.Bus, topic eventbus.Topic, eventType string, payload any) {
	if bus == nil {
		return
	}
	evt, err := eventbus.NewJSONEvent("", eventType, payload)
	if err != nil {
		logger.Log.Warnf("skipping %s event: %v", eventType, err)
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := bus.Publish(ctx, topic.Base(), evt); err != nil {
			logger.Log.Warnf("failed to publish %s event: %v", eventType, err)
		}
	}()
}
