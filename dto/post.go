package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/models"
)

// PostDTO is the public shape of a post. Like state is denormalized at read
// time: LikesCount plus the viewer-specific IsLiked flag.
type PostDTO struct {
	ID                 string                `json:"id"`
	Title              string                `json:"title"`
	Slug               string                `json:"slug"`
	Content            string                `json:"content,omitempty"`
	Excerpt            string                `json:"excerpt"`
	AuthorID           string                `json:"authorId"`
	Status             string                `json:"status"`
	Tags               []string              `json:"tags"`
	Categories         []string              `json:"categories"`
	FeaturedImage      *models.FeaturedImage `json:"featuredImage,omitempty"`
	SEO                *models.SEO           `json:"seo,omitempty"`
	ViewCount          int64                 `json:"viewCount"`
	LikesCount         int                   `json:"likesCount"`
	IsLiked            bool                  `json:"isLiked"`
	ReadingTimeMinutes int                   `json:"readingTimeMinutes"`
	PublishedAt        *time.Time            `json:"publishedAt,omitempty"`
	ScheduledAt        *time.Time            `json:"scheduledAt,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

// NewPostDTO maps a post document for the given viewer (nil for anonymous).
func NewPostDTO(p models.Post, viewer *primitive.ObjectID) PostDTO {
	d := PostDTO{
		ID:                 p.ID.Hex(),
		Title:              p.Title,
		Slug:               p.Slug,
		Content:            p.Content,
		Excerpt:            p.Excerpt,
		AuthorID:           p.AuthorID.Hex(),
		Status:             p.Status,
		Tags:               p.Tags,
		Categories:         p.Categories,
		FeaturedImage:      p.FeaturedImage,
		SEO:                p.SEO,
		ViewCount:          p.ViewCount,
		LikesCount:         len(p.Likes),
		ReadingTimeMinutes: p.ReadingTimeMinutes,
		PublishedAt:        p.PublishedAt,
		ScheduledAt:        p.ScheduledAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	if viewer != nil {
		d.IsLiked = p.LikedBy(*viewer)
	}
	return d
}

// NewPostListDTO maps a page of posts, omitting full content from list items.
func NewPostListDTO(posts []models.Post, viewer *primitive.ObjectID) []PostDTO {
	out := make([]PostDTO, 0, len(posts))
	for _, p := range posts {
		d := NewPostDTO(p, viewer)
		d.Content = ""
		out = append(out, d)
	}
	return out
}

// PostListDTO is the data payload of GET /posts.
type PostListDTO struct {
	Posts      []PostDTO  `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// LikeDTO is the data payload of like toggles.
type LikeDTO struct {
	LikesCount int  `json:"likesCount"`
	IsLiked    bool `json:"isLiked"`
}
