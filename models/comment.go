package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment statuses.
const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusRejected = "rejected"
	CommentStatusSpam     = "spam"
)

// CommentStatuses lists the valid comment statuses.
var CommentStatuses = []string{
	CommentStatusPending,
	CommentStatusApproved,
	CommentStatusRejected,
	CommentStatusSpam,
}

// Comment represents a comment document.
// Collection: comments
//
// ParentID is nil for top-level comments. ReplyIDs is an ordered list of
// back-references to direct replies; a reply's parent always belongs to the
// same post. Deleting a comment removes its whole reply subtree and detaches
// it from its parent's reply list.
type Comment struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updated_at" json:"updatedAt"`
	Content   string               `bson:"content" json:"content"`
	AuthorID  primitive.ObjectID   `bson:"author_id" json:"authorId"`
	PostID    primitive.ObjectID   `bson:"post_id" json:"postId"`
	ParentID  *primitive.ObjectID  `bson:"parent_id,omitempty" json:"parentId,omitempty"`
	ReplyIDs  []primitive.ObjectID `bson:"reply_ids" json:"replyIds"`
	Status    string               `bson:"status" json:"status"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Edited    bool                 `bson:"edited" json:"edited"`
	EditedAt  *time.Time           `bson:"edited_at,omitempty" json:"editedAt,omitempty"`
}

// OwnerID returns the author for capability checks.
func (c *Comment) OwnerID() primitive.ObjectID { return c.AuthorID }

// LikedBy reports whether the given user is in the like set.
func (c *Comment) LikedBy(userID primitive.ObjectID) bool {
	for _, id := range c.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

func ValidCommentStatus(s string) bool {
	for _, v := range CommentStatuses {
		if v == s {
			return true
		}
	}
	return false
}
