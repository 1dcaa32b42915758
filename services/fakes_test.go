package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/models"
	"inkpress/repositories"
)

// fakePostStore is an in-memory PostStore enforcing the unique slug index.
type fakePostStore struct {
	posts map[primitive.ObjectID]*models.Post
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: map[primitive.ObjectID]*models.Post{}}
}

func copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.Likes = append([]primitive.ObjectID(nil), p.Likes...)
	cp.Tags = append([]string(nil), p.Tags...)
	cp.Categories = append([]string(nil), p.Categories...)
	return &cp
}

func (f *fakePostStore) slugTaken(slug string, exclude primitive.ObjectID) bool {
	for _, p := range f.posts {
		if p.ID != exclude && p.Slug == slug {
			return true
		}
	}
	return false
}

func (f *fakePostStore) Insert(ctx context.Context, p *models.Post) error {
	if f.slugTaken(p.Slug, primitive.NilObjectID) {
		return repositories.ErrDuplicateSlug
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	p.ID = primitive.NewObjectID()
	if p.Likes == nil {
		p.Likes = []primitive.ObjectID{}
	}
	f.posts[p.ID] = copyPost(p)
	return nil
}

func (f *fakePostStore) Replace(ctx context.Context, p *models.Post) error {
	if _, ok := f.posts[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	if f.slugTaken(p.Slug, p.ID) {
		return repositories.ErrDuplicateSlug
	}
	p.UpdatedAt = time.Now()
	f.posts[p.ID] = copyPost(p)
	return nil
}

func (f *fakePostStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := f.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.posts, id)
	return nil
}

func (f *fakePostStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyPost(p), nil
}

func (f *fakePostStore) FindBySlug(ctx context.Context, slug string) (*models.Post, error) {
	for _, p := range f.posts {
		if p.Slug == slug {
			return copyPost(p), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakePostStore) SlugExists(ctx context.Context, slug string, exclude primitive.ObjectID) (bool, error) {
	return f.slugTaken(slug, exclude), nil
}

func (f *fakePostStore) List(ctx context.Context, opt repositories.ListPostsOptions) ([]models.Post, int64, error) {
	var matched []models.Post
	for _, p := range f.posts {
		if opt.PublishedOnly {
			if p.Status != models.PostStatusPublished {
				continue
			}
			if p.PublishedAt != nil && p.PublishedAt.After(time.Now()) {
				continue
			}
		} else if opt.Status != "" && p.Status != opt.Status {
			continue
		}
		if opt.AuthorID != nil && p.AuthorID != *opt.AuthorID {
			continue
		}
		if opt.Search != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(opt.Search)) {
			continue
		}
		matched = append(matched, *copyPost(p))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := int64(len(matched))
	page, limit := opt.Page, opt.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(matched) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakePostStore) IncrementViewCount(ctx context.Context, id primitive.ObjectID) error {
	p, ok := f.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.ViewCount++
	return nil
}

func (f *fakePostStore) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	p, ok := f.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, u := range p.Likes {
		if u == userID {
			return nil
		}
	}
	p.Likes = append(p.Likes, userID)
	return nil
}

func (f *fakePostStore) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	p, ok := f.posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	out := p.Likes[:0]
	for _, u := range p.Likes {
		if u != userID {
			out = append(out, u)
		}
	}
	p.Likes = out
	return nil
}

// fakeCommentStore is an in-memory CommentStore.
type fakeCommentStore struct {
	comments map[primitive.ObjectID]*models.Comment
	order    []primitive.ObjectID
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{comments: map[primitive.ObjectID]*models.Comment{}}
}

func copyComment(c *models.Comment) *models.Comment {
	cp := *c
	cp.ReplyIDs = append([]primitive.ObjectID(nil), c.ReplyIDs...)
	cp.Likes = append([]primitive.ObjectID(nil), c.Likes...)
	return &cp
}

func (f *fakeCommentStore) Insert(ctx context.Context, c *models.Comment) error {
	now := time.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.ID = primitive.NewObjectID()
	if c.ReplyIDs == nil {
		c.ReplyIDs = []primitive.ObjectID{}
	}
	if c.Likes == nil {
		c.Likes = []primitive.ObjectID{}
	}
	f.comments[c.ID] = copyComment(c)
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeCommentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyComment(c), nil
}

func (f *fakeCommentStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Comment, error) {
	var out []models.Comment
	for _, id := range f.order {
		for _, want := range ids {
			if id == want {
				if c, ok := f.comments[id]; ok {
					out = append(out, *copyComment(c))
				}
			}
		}
	}
	return out, nil
}

func (f *fakeCommentStore) FindByPost(ctx context.Context, postID primitive.ObjectID, opt repositories.FindByPostOptions) ([]models.Comment, error) {
	var out []models.Comment
	for _, id := range f.order {
		c, ok := f.comments[id]
		if !ok {
			continue
		}
		if c.PostID != postID {
			continue
		}
		if opt.TopLevelOnly && c.ParentID != nil {
			continue
		}
		if len(opt.Statuses) > 0 {
			ok := false
			for _, s := range opt.Statuses {
				if c.Status == s {
					ok = true
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, *copyComment(c))
	}
	if !opt.SortAsc {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (f *fakeCommentStore) DeleteByIDs(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := f.comments[id]; ok {
			delete(f.comments, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeCommentStore) DeleteByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	var n int64
	for id, c := range f.comments {
		if c.PostID == postID {
			delete(f.comments, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeCommentStore) PushReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	p, ok := f.comments[parentID]
	if !ok {
		return repositories.ErrNotFound
	}
	p.ReplyIDs = append(p.ReplyIDs, replyID)
	return nil
}

func (f *fakeCommentStore) PullReply(ctx context.Context, parentID, replyID primitive.ObjectID) error {
	p, ok := f.comments[parentID]
	if !ok {
		return repositories.ErrNotFound
	}
	out := p.ReplyIDs[:0]
	for _, id := range p.ReplyIDs {
		if id != replyID {
			out = append(out, id)
		}
	}
	p.ReplyIDs = out
	return nil
}

func (f *fakeCommentStore) UpdateContent(ctx context.Context, id primitive.ObjectID, content string, editedAt time.Time) error {
	c, ok := f.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Content = content
	c.Edited = true
	c.EditedAt = &editedAt
	c.UpdatedAt = editedAt
	return nil
}

func (f *fakeCommentStore) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	c, ok := f.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.Status = status
	return nil
}

func (f *fakeCommentStore) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	c, ok := f.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for _, u := range c.Likes {
		if u == userID {
			return nil
		}
	}
	c.Likes = append(c.Likes, userID)
	return nil
}

func (f *fakeCommentStore) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	c, ok := f.comments[id]
	if !ok {
		return repositories.ErrNotFound
	}
	out := c.Likes[:0]
	for _, u := range c.Likes {
		if u != userID {
			out = append(out, u)
		}
	}
	c.Likes = out
	return nil
}

// fakeImageDeleter records deletions.
type fakeImageDeleter struct {
	deleted []string
	fail    bool
}

func (f *fakeImageDeleter) DeleteImage(ctx context.Context, publicID string) error {
	if f.fail {
		return context.DeadlineExceeded
	}
	f.deleted = append(f.deleted, publicID)
	return nil
}
