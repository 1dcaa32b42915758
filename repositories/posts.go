package repositories

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkpress/models"
)

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection("posts")}
}

// Insert inserts a new post document and fills in its generated ID.
func (r *PostRepository) Insert(ctx context.Context, p *models.Post) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return mapWriteErr(err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid
	}
	return nil
}

// Replace overwrites the whole document identified by p.ID.
func (r *PostRepository) Replace(ctx context.Context, p *models.Post) error {
	p.UpdatedAt = time.Now()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID returns a post by its ObjectID.
func (r *PostRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindBySlug returns a post by its slug.
func (r *PostRepository) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var p models.Post
	if err := r.col.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// SlugExists checks slug occupancy, optionally excluding one post (used when
// updating a post in place).
func (r *PostRepository) SlugExists(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error) {
	filter := bson.M{"slug": slug}
	if !exclude.IsZero() {
		filter["_id"] = bson.M{"$ne": exclude}
	}
	err := r.col.FindOne(ctx, filter).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return err == nil, err
}

// IncrementViewCount increments view_count by 1 for the given post ID.
func (r *PostRepository) IncrementViewCount(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$inc": bson.M{"view_count": 1},
	})
	return err
}

// AddLike adds the user to the like set. $addToSet keeps the set free of
// duplicates under concurrent toggles.
func (r *PostRepository) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$addToSet": bson.M{"likes": userID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
	return err
}

// RemoveLike removes the user from the like set.
func (r *PostRepository) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, id, bson.M{
		"$pull": bson.M{"likes": userID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	return err
}

type ListPostsOptions struct {
	Page       int
	Limit      int
	Status     string
	AuthorID   *primitive.ObjectID
	Tags       []string
	Categories []string
	Search     string
	Sort       string

	// PublishedOnly restricts results to published posts whose publish time
	// is not in the future. Set for non-administrator callers.
	PublishedOnly bool
}

// List returns posts with filters and pagination.
func (r *PostRepository) List(ctx context.Context, opt ListPostsOptions) ([]models.Post, int64, error) {
	filter := bson.M{}

	toRegexIn := func(values []string) []interface{} {
		arr := make([]interface{}, 0, len(values))
		for _, v := range values {
			if v == "" {
				continue
			}
			pattern := "^" + regexp.QuoteMeta(v) + "$"
			arr = append(arr, primitive.Regex{Pattern: pattern, Options: "i"})
		}
		return arr
	}

	if opt.PublishedOnly {
		filter["status"] = models.PostStatusPublished
		filter["$or"] = []bson.M{
			{"published_at": bson.M{"$lte": time.Now()}},
			{"published_at": bson.M{"$exists": false}},
		}
	} else if opt.Status != "" {
		filter["status"] = opt.Status
	}

	if opt.AuthorID != nil {
		filter["author_id"] = *opt.AuthorID
	}
	if tags := toRegexIn(opt.Tags); len(tags) > 0 {
		filter["tags"] = bson.M{"$in": tags}
	}
	if cats := toRegexIn(opt.Categories); len(cats) > 0 {
		filter["categories"] = bson.M{"$in": cats}
	}
	if opt.Search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(opt.Search), Options: "i"}
		search := []bson.M{
			{"title": re},
			{"excerpt": re},
			{"tags": re},
		}
		if existing, ok := filter["$or"]; ok {
			filter["$and"] = []bson.M{
				{"$or": existing},
				{"$or": search},
			}
			delete(filter, "$or")
		} else {
			filter["$or"] = search
		}
	}

	if opt.Page <= 0 {
		opt.Page = 1
	}
	if opt.Limit <= 0 || opt.Limit > 100 {
		opt.Limit = 10
	}
	skip := int64((opt.Page - 1) * opt.Limit)
	limit := int64(opt.Limit)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(sortSpec(opt.Sort))
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var results []models.Post
	for cur.Next(ctx) {
		var p models.Post
		if err := cur.Decode(&p); err != nil {
			return nil, 0, err
		}
		results = append(results, p)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, err
	}
	return results, total, nil
}

func sortSpec(sort string) bson.D {
	switch sort {
	case "oldest":
		return bson.D{{Key: "published_at", Value: 1}, {Key: "_id", Value: 1}}
	case "views":
		return bson.D{{Key: "view_count", Value: -1}, {Key: "_id", Value: -1}}
	case "title":
		return bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	default: // newest
		return bson.D{{Key: "published_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}
