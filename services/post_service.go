package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/eventbus"
	"inkpress/logger"
	"inkpress/models"
	"inkpress/parser"
	"inkpress/repositories"
)

// maxSlugAttempts bounds numeric-suffix probing for pathological title reuse.
const maxSlugAttempts = 1000

// PostService owns the post lifecycle: slug generation, derived fields,
// publish transitions, likes, views and cascade deletion.
type PostService struct {
	posts    PostStore
	comments CommentStore
	media    ImageDeleter
	bus      eventbus.Bus
}

func NewPostService(posts PostStore, comments CommentStore, media ImageDeleter, bus eventbus.Bus) *PostService {
	return &PostService{posts: posts, comments: comments, media: media, bus: bus}
}

// PostEvent is the payload published on post lifecycle transitions.
type PostEvent struct {
	PostID   string `json:"post_id"`
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	AuthorID string `json:"author_id"`
}

type CreatePostInput struct {
	Title         string
	Content       string
	Excerpt       string
	Status        string
	Tags          []string
	Categories    []string
	SEO           *models.SEO
	FeaturedImage *models.FeaturedImage
	ScheduledAt   *time.Time
}

// Create validates the draft, derives slug/excerpt/read time and stores the
// post. A unique-index collision on the slug is retried once with a freshly
// recomputed suffix before giving up.
func (s *PostService) Create(ctx context.Context, actor Actor, in CreatePostInput) (*models.Post, error) {
	fe := fieldErrors{}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		fe.add("title", "is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		fe.add("content", "is required")
	}
	status := in.Status
	if status == "" {
		status = models.PostStatusDraft
	} else if !models.ValidPostStatus(status) {
		fe.add("status", "must be one of draft, published, archived")
	}
	if title != "" && parser.Slugify(title) == "" {
		fe.add("title", "cannot be turned into a slug")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	content := parser.SanitizeHTML(in.Content)
	excerpt := strings.TrimSpace(in.Excerpt)
	if excerpt == "" {
		excerpt = parser.Excerpt(content)
	} else {
		excerpt = parser.PlainText(excerpt)
	}

	slugVal, err := s.uniqueSlug(ctx, title, primitive.NilObjectID)
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		Title:              title,
		Slug:               slugVal,
		Content:            content,
		Excerpt:            excerpt,
		AuthorID:           actor.ID,
		Status:             status,
		Tags:               orEmpty(in.Tags),
		Categories:         orEmpty(in.Categories),
		SEO:                in.SEO,
		FeaturedImage:      in.FeaturedImage,
		ScheduledAt:        in.ScheduledAt,
		ReadingTimeMinutes: parser.ReadingTimeMinutes(content),
	}
	if status == models.PostStatusPublished {
		now := time.Now()
		p.PublishedAt = &now
	}

	if err := s.insertWithSlugRetry(ctx, p); err != nil {
		return nil, err
	}

	if p.Status == models.PostStatusPublished {
		publishAsync(s.bus, eventbus.TopicPostEvents, "post.published", newPostEvent(p))
	}
	return p, nil
}

type UpdatePostInput struct {
	Title         *string
	Content       *string
	Excerpt       *string
	Status        *string
	Tags          *[]string
	Categories    *[]string
	SEO           *models.SEO
	FeaturedImage *models.FeaturedImage
	ScheduledAt   *time.Time
}

// Update applies a partial update, re-deriving slug/excerpt/read time only
// for the fields that changed. The first transition into published stamps
// PublishedAt; the timestamp never changes afterwards.
func (s *PostService) Update(ctx context.Context, actor Actor, idHex string, in UpdatePostInput) (*models.Post, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if !Can(actor, p, ActionUpdate) {
		return nil, ErrPermissionDenied
	}

	fe := fieldErrors{}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		fe.add("title", "is required")
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) == "" {
		fe.add("content", "is required")
	}
	if in.Status != nil && !models.ValidPostStatus(*in.Status) {
		fe.add("status", "must be one of draft, published, archived")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title != p.Title {
			p.Title = title
			slugVal, err := s.uniqueSlug(ctx, title, p.ID)
			if err != nil {
				return nil, err
			}
			p.Slug = slugVal
		}
	}
	if in.Content != nil {
		p.Content = parser.SanitizeHTML(*in.Content)
		p.ReadingTimeMinutes = parser.ReadingTimeMinutes(p.Content)
		if in.Excerpt == nil {
			p.Excerpt = parser.Excerpt(p.Content)
		}
	}
	if in.Excerpt != nil {
		if excerpt := strings.TrimSpace(*in.Excerpt); excerpt != "" {
			p.Excerpt = parser.PlainText(excerpt)
		} else {
			p.Excerpt = parser.Excerpt(p.Content)
		}
	}
	if in.Tags != nil {
		p.Tags = orEmpty(*in.Tags)
	}
	if in.Categories != nil {
		p.Categories = orEmpty(*in.Categories)
	}
	if in.SEO != nil {
		p.SEO = in.SEO
	}
	if in.FeaturedImage != nil {
		p.FeaturedImage = in.FeaturedImage
	}
	if in.ScheduledAt != nil {
		p.ScheduledAt = in.ScheduledAt
	}

	firstPublish := false
	if in.Status != nil {
		p.Status = *in.Status
		if p.Status == models.PostStatusPublished && p.PublishedAt == nil {
			now := time.Now()
			p.PublishedAt = &now
			firstPublish = true
		}
	}

	if err := s.replaceWithSlugRetry(ctx, p); err != nil {
		return nil, err
	}

	if firstPublish {
		publishAsync(s.bus, eventbus.TopicPostEvents, "post.published", newPostEvent(p))
	}
	return p, nil
}

// GetBySlug resolves a post for a reader. Unpublished posts are visible only
// to their author or an administrator; everyone else gets not-found. Reads
// by anyone except the author bump the view counter.
func (s *PostService) GetBySlug(ctx context.Context, viewer *Actor, slugVal string) (*models.Post, error) {
	p, err := s.posts.FindBySlug(ctx, slugVal)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if err := s.checkVisible(viewer, p); err != nil {
		return nil, err
	}

	if viewer == nil || viewer.ID != p.AuthorID {
		if err := s.posts.IncrementViewCount(ctx, p.ID); err != nil {
			logger.Log.Warnf("failed to increment view count for post %s: %v", p.ID.Hex(), err)
		} else {
			p.ViewCount++
		}
	}
	return p, nil
}

// GetByID resolves a post without touching the view counter.
func (s *PostService) GetByID(ctx context.Context, viewer *Actor, idHex string) (*models.Post, error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return nil, err
	}
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if err := s.checkVisible(viewer, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostService) checkVisible(viewer *Actor, p *models.Post) error {
	if p.IsPublished() {
		return nil
	}
	if viewer != nil && (viewer.IsAdmin() || viewer.ID == p.AuthorID) {
		return nil
	}
	return ErrNotFound
}

type ListPostsInput struct {
	Page       int
	Limit      int
	Status     string
	AuthorID   string
	Tags       []string
	Categories []string
	Search     string
	Sort       string
}

// List returns a filtered page of posts. Non-administrators only ever see
// published posts whose publish time is not in the future.
func (s *PostService) List(ctx context.Context, viewer *Actor, in ListPostsInput) ([]models.Post, int64, error) {
	opt := repositories.ListPostsOptions{
		Page:       in.Page,
		Limit:      in.Limit,
		Status:     in.Status,
		Tags:       in.Tags,
		Categories: in.Categories,
		Search:     in.Search,
		Sort:       in.Sort,
	}
	if in.AuthorID != "" {
		id, err := parseObjectID("author", in.AuthorID)
		if err != nil {
			return nil, 0, err
		}
		opt.AuthorID = &id
	}
	if viewer == nil || !viewer.IsAdmin() {
		opt.PublishedOnly = true
		opt.Status = ""
	}
	return s.posts.List(ctx, opt)
}

// ToggleLike adds or removes the actor from the like set. Toggling twice
// returns the set to its original state. Only published posts can be liked.
func (s *PostService) ToggleLike(ctx context.Context, actor Actor, idHex string) (likes int, isLiked bool, err error) {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return 0, false, err
	}
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return 0, false, mapStoreErr(err)
	}
	if !p.IsPublished() {
		return 0, false, ErrPostNotPublished
	}

	if p.LikedBy(actor.ID) {
		if err := s.posts.RemoveLike(ctx, p.ID, actor.ID); err != nil {
			return 0, false, err
		}
		return len(p.Likes) - 1, false, nil
	}
	if err := s.posts.AddLike(ctx, p.ID, actor.ID); err != nil {
		return 0, false, err
	}
	return len(p.Likes) + 1, true, nil
}

// Delete removes all comments referencing the post, the post itself, and
// best-effort its externally stored featured image. A failed comment cascade
// fails the whole operation; only image deletion failures are logged and
// swallowed.
func (s *PostService) Delete(ctx context.Context, actor Actor, idHex string) error {
	id, err := parseObjectID("id", idHex)
	if err != nil {
		return err
	}
	p, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return mapStoreErr(err)
	}
	if !Can(actor, p, ActionDelete) {
		return ErrPermissionDenied
	}

	// Comments go first: a failed cascade fails the request and leaves the
	// post document in place, so deletion can simply be retried.
	n, err := s.comments.DeleteByPost(ctx, p.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.Log.Infof("deleted %d comments for post %s", n, p.ID.Hex())
	}
	if err := s.posts.Delete(ctx, p.ID); err != nil {
		return mapStoreErr(err)
	}
	if s.media != nil && p.FeaturedImage != nil && p.FeaturedImage.PublicID != "" {
		if err := s.media.DeleteImage(ctx, p.FeaturedImage.PublicID); err != nil {
			logger.Log.Warnf("failed to delete image %s for post %s: %v", p.FeaturedImage.PublicID, p.ID.Hex(), err)
		}
	}

	publishAsync(s.bus, eventbus.TopicPostEvents, "post.deleted", newPostEvent(p))
	return nil
}

// uniqueSlug slugifies the title and probes -1, -2, ... until a free slug is
// found. exclude skips the post's own document on updates.
func (s *PostService) uniqueSlug(ctx context.Context, title string, exclude primitive.ObjectID) (string, error) {
	base := parser.Slugify(title)
	if base == "" {
		return "", &ValidationError{Fields: map[string]string{"title": "cannot be turned into a slug"}}
	}
	taken, err := s.posts.SlugExists(ctx, base, exclude)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := parser.SlugWithSuffix(base, n)
		taken, err := s.posts.SlugExists(ctx, candidate, exclude)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrSlugConflict
}

// insertWithSlugRetry inserts the post; a duplicate-slug race (two creations
// passing SlugExists before either writes) is resolved by recomputing the
// slug once against the now-committed state.
func (s *PostService) insertWithSlugRetry(ctx context.Context, p *models.Post) error {
	err := s.posts.Insert(ctx, p)
	if !errors.Is(err, repositories.ErrDuplicateSlug) {
		return err
	}
	slugVal, serr := s.uniqueSlug(ctx, p.Title, primitive.NilObjectID)
	if serr != nil {
		return serr
	}
	p.Slug = slugVal
	if err := s.posts.Insert(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateSlug) {
			return ErrSlugConflict
		}
		return err
	}
	return nil
}

func (s *PostService) replaceWithSlugRetry(ctx context.Context, p *models.Post) error {
	err := s.posts.Replace(ctx, p)
	if !errors.Is(err, repositories.ErrDuplicateSlug) {
		return mapStoreErr(err)
	}
	slugVal, serr := s.uniqueSlug(ctx, p.Title, p.ID)
	if serr != nil {
		return serr
	}
	p.Slug = slugVal
	if err := s.posts.Replace(ctx, p); err != nil {
		if errors.Is(err, repositories.ErrDuplicateSlug) {
			return ErrSlugConflict
		}
		return mapStoreErr(err)
	}
	return nil
}

func newPostEvent(p *models.Post) PostEvent {
	return PostEvent{
		PostID:   p.ID.Hex(),
		Slug:     p.Slug,
		Title:    p.Title,
		AuthorID: p.AuthorID.Hex(),
	}
}

func parseObjectID(field, hex string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, &ValidationError{Fields: map[string]string{field: "must be a valid object id"}}
	}
	return id, nil
}

func mapStoreErr(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func orEmpty(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
