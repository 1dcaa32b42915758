package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkpress/models"
)

type CommentRepository struct {
	col *mongo.Collection
}

func NewCommentRepository(db *mongo.Database) *CommentRepository {
	return &CommentRepository{col: db.Collection("comments")}
}

// Insert inserts a new comment document and fills in its generated ID.
func (r *CommentRepository) Insert(ctx context.Context, c *models.Comment) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if c.ReplyIDs == nil {
		c.ReplyIDs = []primitive.ObjectID{}
	}
	if c.Likes == nil {
		c.Likes = []primitive.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, c)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid
	}
	return nil
}

// FindByID returns a comment by its ObjectID.
func (r *CommentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	var c models.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// FindByIDs returns the comments for the given ids, in creation order.
func (r *CommentRepository) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.Comment
	for cur.Next(ctx) {
		var c models.Comment
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, cur.Err()
}

type FindByPostOptions struct {
	TopLevelOnly bool
	Statuses     []string
	SortAsc      bool
}

// FindByPost returns comments on a post. With TopLevelOnly only comments
// without a parent are returned; replies are resolved separately through
// their parents' reply lists.
func (r *CommentRepository) FindByPost(ctx context.Context, postID primitive.ObjectID, opt FindByPostOptions) ([]models.Comment, error) {
	filter := bson.M{"post_id": postID}
	if opt.TopLevelOnly {
		filter["parent_id"] = bson.M{"$exists": false}
	}
	if len(opt.Statuses) > 0 {
		filter["status"] = bson.M{"$in": opt.Statuses}
	}

	order := -1
	if opt.SortAsc {
		order = 1
	}
	cur, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: order}, {Key: "_id", Value: order}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var results []models.Comment
	for cur.Next(ctx) {
		var c models.Comment
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	return results, cur.Err()
}

// DeleteByIDs removes all comments with the given ids and returns how many
// documents were deleted.
func (r *CommentRepository) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.col.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// DeleteByPost removes every comment on a post (post cascade delete).
func (r *CommentRepository) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"post_id": postID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// PushReply appends a reply id to the parent's reply list.
func (r *CommentRepository) PushReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, parentID, bson.M{
		"$push": bson.M{"reply_ids": replyID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// PullReply detaches a reply id from the parent's reply list.
func (r *CommentRepository) PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, parentID, bson.M{
		"$pull": bson.M{"reply_ids": replyID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

// UpdateContent replaces the comment text and marks it edited.
func (r *CommentRepository) UpdateContent(ctx context.Context, id primitive.ObjectID, content string, editedAt time.Time) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"content":    content,
			"edited":     true,
			"edited_at":  editedAt,
			"updated_at": editedAt,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateStatus overwrites the moderation status.
func (r *CommentRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{"status": status, "updated_at": time.Now()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddLike adds the user to the like set.
func (r *CommentRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

// RemoveLike removes the user from the like set.
func (r *CommentRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}
