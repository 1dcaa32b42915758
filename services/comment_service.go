package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/eventbus"
	"inkpress/logger"
	"inkpress/models"
	"inkpress/parser"
	"inkpress/repositories"
)

// CommentService owns the comment lifecycle: reply threading, moderation,
// likes and cascade deletion of reply subtrees.
type CommentService struct {
	comments CommentStore
	posts    PostStore
	bus      eventbus.Bus
}

func NewCommentService(comments CommentStore, posts PostStore, bus eventbus.Bus) *CommentService {
	return &CommentService{comments: comments, posts: posts, bus: bus}
}

// CommentEvent is the payload published when a comment is created.
type CommentEvent struct {
	CommentID string `json:"comment_id"`
	PostID    string `json:"post_id"`
	AuthorID  string `json:"author_id"`
	ParentID  string `json:"parent_id,omitempty"`
}

// CommentThread is a top-level comment with its resolved direct replies.
// Nested replies carry their own reply id lists for the client to expand.
type CommentThread struct {
	Comment models.Comment
	Replies []models.Comment
}

type CreateCommentInput struct {
	Content  string
	PostID   string
	ParentID string
}

// Create adds a comment to a published post. A reply's parent must exist and
// belong to the same post; on success the new id is appended to the parent's
// reply list. The trust model approves comments by default.
func (s *CommentService) Create(ctx context.Context, actor Actor, in CreateCommentInput) (*models.Comment, error) {
	fe := fieldErrors{}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		fe.add("content", "is required")
	}
	var postID primitive.ObjectID
	if in.PostID == "" {
		fe.add("postId", "is required")
	} else if id, err := primitive.ObjectIDFromHex(in.PostID); err != nil {
		fe.add("postId", "must be a valid object id")
	} else {
		postID = id
	}
	var parentID *primitive.ObjectID
	if in.ParentID != "" {
		if id, err := primitive.ObjectIDFromHex(in.ParentID); err != nil {
			fe.add("parentId", "must be a valid object id")
		} else {
			parentID = &id
		}
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !post.IsPublished() {
		return nil, ErrPostNotPublished
	}

	var parent *models.Comment
	if parentID != nil {
		parent, err = s.comments.FindByID(ctx, *parentID)
		if err != nil {
			return nil, mapStoreErr(err)
		}
		if parent.PostID != post.ID {
			return nil, ErrParentMismatch
		}
	}

	c := &models.Comment{
		Content:  parser.SanitizeHTML(content),
		AuthorID: actor.ID,
		PostID:   post.ID,
		ParentID: parentID,
		Status:   models.CommentStatusApproved,
	}
	if err := s.comments.Insert(ctx, c); err != nil {
		return nil, err
	}
	if parent != nil {
		if err := s.comments.PushReply(ctx, parent.ID, c.ID); err != nil {
			// A reply missing from its parent's list is unreachable by
			// listings and cascades, so take the inserted document back out.
			if _, derr := s.comments.DeleteByIDs(ctx, []primitive.ObjectID{c.ID}); derr != nil {
				logger.Log.Errorf("failed to remove comment %s after reply attach failure: %v", c.ID.Hex(), derr)
			}
			return nil, err
		}
	}

	publishAsync(s.bus, eventbus.TopicCommentEvents, "comment.created", newCommentEvent(c))
	return c, nil
}

// Update replaces the comment text (content is the only mutable field) and
// marks the comment edited with a timestamp.
func (s *CommentService) Update(ctx context.Context, actor Actor, idHex, content string) (*models.Comment, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !Can(actor, c, ActionUpdate) {
		return nil, ErrPermissionDenied
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, &ValidationError{Fields: map[string]string{"content": "is required"}}
	}

	now := time.Now()
	sanitized := parser.SanitizeHTML(content)
	if err := s.comments.UpdateContent(ctx, c.ID, sanitized, now); err != nil {
		return nil, mapStoreErr(err)
	}
	c.Content = sanitized
	c.Edited = true
	c.EditedAt = &now
	c.UpdatedAt = now
	return c, nil
}

// Delete removes the comment and its entire reply subtree, then detaches the
// comment from its parent's reply list. There is no orphan promotion. The
// number of removed comment records is returned.
func (s *CommentService) Delete(ctx context.Context, actor Actor, idHex string) (int64, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return 0, err
	}
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return 0, mapStoreErr(err)
	}
	if !Can(actor, c, ActionDelete) {
		return 0, ErrPermissionDenied
	}

	ids, err := s.collectSubtree(ctx, c)
	if err != nil {
		return 0, err
	}
	deleted, err := s.comments.DeleteByIDs(ctx, ids)
	if err != nil {
		return 0, err
	}
	if c.ParentID != nil {
		if err := s.comments.PullReply(ctx, *c.ParentID, c.ID); err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

// collectSubtree walks reply lists breadth-first and returns the ids of the
// comment and every transitive reply.
func (s *CommentService) collectSubtree(ctx context.Context, root *models.Comment) ([]primitive.ObjectID, error) {
	ids := []primitive.ObjectID{root.ID}
	frontier := root.ReplyIDs
	for len(frontier) > 0 {
		nodes, err := s.comments.FindByIDs(ctx, frontier)
		if err != nil {
			return nil, err
		}
		var next []primitive.ObjectID
		for _, n := range nodes {
			ids = append(ids, n.ID)
			next = append(next, n.ReplyIDs...)
		}
		frontier = next
	}
	return ids, nil
}

// ToggleLike adds or removes the actor from the like set. Only approved
// comments can be liked.
func (s *CommentService) ToggleLike(ctx context.Context, actor Actor, idHex string) (likes int, isLiked bool, err error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return 0, false, err
	}
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return 0, false, mapStoreErr(err)
	}
	if c.Status != models.CommentStatusApproved {
		return 0, false, ErrCommentNotApproved
	}

	if c.LikedBy(actor.ID) {
		if err := s.comments.RemoveLike(ctx, c.ID, actor.ID); err != nil {
			return 0, false, err
		}
		return len(c.Likes) - 1, false, nil
	}
	if err := s.comments.AddLike(ctx, c.ID, actor.ID); err != nil {
		return 0, false, err
	}
	return len(c.Likes) + 1, true, nil
}

// Moderate overwrites the comment status. Administrators only; any status
// can move to any other, and nothing cascades.
func (s *CommentService) Moderate(ctx context.Context, actor Actor, idHex, status string) (*models.Comment, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	c, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !Can(actor, c, ActionModerate) {
		return nil, ErrPermissionDenied
	}
	if !models.ValidCommentStatus(status) {
		return nil, &ValidationError{Fields: map[string]string{"status": "must be one of pending, approved, rejected, spam"}}
	}

	if err := s.comments.UpdateStatus(ctx, c.ID, status); err != nil {
		return nil, mapStoreErr(err)
	}
	c.Status = status
	return c, nil
}

type ListCommentsInput struct {
	Sort       string // "newest" (default) or "oldest"
	IncludeAll bool   // moderators: surface pending/rejected/spam as well
}

// ListByPost returns the post's top-level comments with their direct replies
// resolved. Readers only see approved comments; IncludeAll is honored for
// administrators only.
func (s *CommentService) ListByPost(ctx context.Context, viewer *Actor, postIDHex string, in ListCommentsInput) ([]CommentThread, error) {
	postID, err := parseObjectID("postId", postIDHex)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !post.IsPublished() {
		if viewer == nil || (!viewer.IsAdmin() && viewer.ID != post.AuthorID) {
			return nil, ErrNotFound
		}
	}

	includeAll := in.IncludeAll && viewer != nil && viewer.IsAdmin()
	var statuses []string
	if !includeAll {
		statuses = []string{models.CommentStatusApproved}
	}

	tops, err := s.comments.FindByPost(ctx, postID, repositories.FindByPostOptions{
		TopLevelOnly: true,
		Statuses:     statuses,
		SortAsc:      in.Sort == "oldest",
	})
	if err != nil {
		return nil, err
	}

	threads := make([]CommentThread, 0, len(tops))
	for _, top := range tops {
		replies, err := s.comments.FindByIDs(ctx, top.ReplyIDs)
		if err != nil {
			return nil, err
		}
		if !includeAll {
			filtered := replies[:0]
			for _, r := range replies {
				if r.Status == models.CommentStatusApproved {
					filtered = append(filtered, r)
				}
			}
			replies = filtered
		}
		threads = append(threads, CommentThread{Comment: top, Replies: replies})
	}
	return threads, nil
}

func newCommentEvent(c *models.Comment) CommentEvent {
	evt := CommentEvent{
		CommentID: c.ID.Hex(),
		PostID:    c.PostID.Hex(),
		AuthorID:  c.AuthorID.Hex(),
	}
	if c.ParentID != nil {
		evt.ParentID = c.ParentID.Hex()
	}
	return evt
}
