package dto

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/models"
)

// CommentDTO is the public shape of a comment. Replies holds the resolved
// direct replies when the comment came from a thread listing.
type CommentDTO struct {
	ID         string       `json:"id"`
	Content    string       `json:"content"`
	AuthorID   string       `json:"authorId"`
	PostID     string       `json:"postId"`
	ParentID   string       `json:"parentId,omitempty"`
	Status     string       `json:"status"`
	LikesCount int          `json:"likesCount"`
	IsLiked    bool         `json:"isLiked"`
	Edited     bool         `json:"edited"`
	EditedAt   *time.Time   `json:"editedAt,omitempty"`
	ReplyIDs   []string     `json:"replyIds"`
	Replies    []CommentDTO `json:"replies,omitempty"`
	CreatedAt  time.Time    `json:"createdAt"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// NewCommentDTO maps a comment document for the given viewer.
func NewCommentDTO(c models.Comment, viewer *primitive.ObjectID) CommentDTO {
	replyIDs := make([]string, 0, len(c.ReplyIDs))
	for _, id := range c.ReplyIDs {
		replyIDs = append(replyIDs, id.Hex())
	}
	d := CommentDTO{
		ID:         c.ID.Hex(),
		Content:    c.Content,
		AuthorID:   c.AuthorID.Hex(),
		PostID:     c.PostID.Hex(),
		Status:     c.Status,
		LikesCount: len(c.Likes),
		Edited:     c.Edited,
		EditedAt:   c.EditedAt,
		ReplyIDs:   replyIDs,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.ParentID != nil {
		d.ParentID = c.ParentID.Hex()
	}
	if viewer != nil {
		d.IsLiked = c.LikedBy(*viewer)
	}
	return d
}

// NewCommentThreadDTO maps a top-level comment with its resolved replies.
func NewCommentThreadDTO(c models.Comment, replies []models.Comment, viewer *primitive.ObjectID) CommentDTO {
	d := NewCommentDTO(c, viewer)
	d.Replies = make([]CommentDTO, 0, len(replies))
	for _, r := range replies {
		d.Replies = append(d.Replies, NewCommentDTO(r, viewer))
	}
	return d
}
