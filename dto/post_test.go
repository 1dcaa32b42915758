package dto

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/models"
)

func TestNewPostDTOLikeState(t *testing.T) {
	liker := primitive.NewObjectID()
	other := primitive.NewObjectID()
	p := models.Post{
		ID:       primitive.NewObjectID(),
		AuthorID: primitive.NewObjectID(),
		Likes:    []primitive.ObjectID{liker},
	}

	if d := NewPostDTO(p, nil); d.IsLiked || d.LikesCount != 1 {
		t.Errorf("anonymous: likesCount=%d isLiked=%v", d.LikesCount, d.IsLiked)
	}
	if d := NewPostDTO(p, &liker); !d.IsLiked {
		t.Error("liker should see isLiked=true")
	}
	if d := NewPostDTO(p, &other); d.IsLiked {
		t.Error("non-liker should see isLiked=false")
	}
}

func TestNewPostListDTOOmitsContent(t *testing.T) {
	posts := []models.Post{{ID: primitive.NewObjectID(), Content: "full body"}}

	out := NewPostListDTO(posts, nil)
	if len(out) != 1 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].Content != "" {
		t.Errorf("list items must not carry content, got %q", out[0].Content)
	}
}

func TestNewPagination(t *testing.T) {
	cases := []struct {
		current, limit int
		total          int64
		wantPages      int
		wantCurrent    int
		wantLimit      int
	}{
		{1, 10, 0, 0, 1, 10},
		{1, 10, 10, 1, 1, 10},
		{2, 10, 11, 2, 2, 10},
		{0, 0, 25, 3, 1, 10},
	}
	for _, tc := range cases {
		got := NewPagination(tc.current, tc.limit, tc.total)
		if got.Pages != tc.wantPages || got.Current != tc.wantCurrent || got.Limit != tc.wantLimit || got.Total != tc.total {
			t.Errorf("NewPagination(%d, %d, %d) = %+v", tc.current, tc.limit, tc.total, got)
		}
	}
}
