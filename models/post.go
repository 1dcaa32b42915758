package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// PostStatuses lists the valid post statuses.
var PostStatuses = []string{PostStatusDraft, PostStatusPublished, PostStatusArchived}

// FeaturedImage references an externally stored image. PublicID is the
// object-store identifier used for deletion; URL is what clients render.
type FeaturedImage struct {
	URL      string `bson:"url" json:"url"`
	PublicID string `bson:"public_id" json:"publicId"`
}

// SEO holds optional search-engine metadata for a post.
type SEO struct {
	MetaTitle       string   `bson:"meta_title,omitempty" json:"metaTitle,omitempty"`
	MetaDescription string   `bson:"meta_description,omitempty" json:"metaDescription,omitempty"`
	Keywords        []string `bson:"keywords,omitempty" json:"keywords,omitempty"`
}

// Post represents a blog post document.
// Collection: posts
//
// Slug is globally unique (unique index, lowercase). Content is sanitized
// before it is ever stored. PublishedAt is set on the first transition to
// published and never changes afterwards. Likes is an insertion-ordered set
// of user ids.
type Post struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CreatedAt          time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updated_at" json:"updatedAt"`
	Title              string               `bson:"title" json:"title"`
	Slug               string               `bson:"slug" json:"slug"`
	Content            string               `bson:"content" json:"content"`
	Excerpt            string               `bson:"excerpt" json:"excerpt"`
	AuthorID           primitive.ObjectID   `bson:"author_id" json:"authorId"`
	Status             string               `bson:"status" json:"status"`
	Tags               []string             `bson:"tags" json:"tags"`
	Categories         []string             `bson:"categories" json:"categories"`
	FeaturedImage      *FeaturedImage       `bson:"featured_image,omitempty" json:"featuredImage,omitempty"`
	SEO                *SEO                 `bson:"seo,omitempty" json:"seo,omitempty"`
	ViewCount          int64                `bson:"view_count" json:"viewCount"`
	Likes              []primitive.ObjectID `bson:"likes" json:"likes"`
	ReadingTimeMinutes int                  `bson:"reading_time_minutes" json:"readingTimeMinutes"`
	PublishedAt        *time.Time           `bson:"published_at,omitempty" json:"publishedAt,omitempty"`
	ScheduledAt        *time.Time           `bson:"scheduled_at,omitempty" json:"scheduledAt,omitempty"`
}

// OwnerID returns the author for capability checks.
func (p *Post) OwnerID() primitive.ObjectID { return p.AuthorID }

// IsPublished reports whether the post is published and its publish time is
// not in the future.
func (p *Post) IsPublished() bool {
	if p.Status != PostStatusPublished {
		return false
	}
	return p.PublishedAt == nil || !p.PublishedAt.After(time.Now())
}

// LikedBy reports whether the given user is in the like set.
func (p *Post) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func ValidPostStatus(s string) bool {
	for _, v := range PostStatuses {
		if v == s {
			return true
		}
	}
	return false
}
