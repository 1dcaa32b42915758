package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"inkpress/api/middleware"
	"inkpress/dto"
	"inkpress/models"
	"inkpress/services"
)

type CreatePostRequest struct {
	Title         string                `json:"title" validate:"required,max=200"`
	Content       string                `json:"content" validate:"required"`
	Excerpt       string                `json:"excerpt" validate:"omitempty,max=500"`
	Status        string                `json:"status" validate:"omitempty,oneof=draft published archived"`
	Tags          []string              `json:"tags"`
	Categories    []string              `json:"categories"`
	SEO           *models.SEO           `json:"seo"`
	FeaturedImage *models.FeaturedImage `json:"featuredImage"`
	ScheduledAt   *time.Time            `json:"scheduledAt"`
}

type UpdatePostRequest struct {
	Title         *string               `json:"title" validate:"omitempty,max=200"`
	Content       *string               `json:"content"`
	Excerpt       *string               `json:"excerpt" validate:"omitempty,max=500"`
	Status        *string               `json:"status" validate:"omitempty,oneof=draft published archived"`
	Tags          *[]string             `json:"tags"`
	Categories    *[]string             `json:"categories"`
	SEO           *models.SEO           `json:"seo"`
	FeaturedImage *models.FeaturedImage `json:"featuredImage"`
	ScheduledAt   *time.Time            `json:"scheduledAt"`
}

// ListPostsHandler godoc
// @Summary      List posts
// @Description  List posts with filters and pagination; non-admins only see published posts
// @Tags         posts
// @Param        search    query  string    false  "Free-text search over title/excerpt/tags"
// @Param        status    query  string    false  "Status filter (admin only)"
// @Param        author    query  string    false  "Author id filter"
// @Param        category  query  []string  false  "Categories (OR match)"
// @Param        tag       query  []string  false  "Tags (OR match)"
// @Param        sort      query  string    false  "newest | oldest | views | title"
// @Param        page      query  int       false  "Page number (1-based)"
// @Param        limit     query  int       false  "Page size (<=100)"
// @Produce      json
// @Success      200  {object}  dto.Response
// @Router       /posts [get]
func ListPostsHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, _ := middleware.ActorFrom(c)

		var in services.ListPostsInput
		in.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
		in.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))
		in.Search = c.Query("search")
		in.Status = c.Query("status")
		in.AuthorID = c.Query("author")
		in.Sort = c.Query("sort")
		in.Categories = c.QueryArray("category")
		in.Tags = c.QueryArray("tag")

		posts, total, err := svc.List(c.Request.Context(), viewer, in)
		if err != nil {
			respondError(c, err)
			return
		}
		data := dto.PostListDTO{
			Posts:      dto.NewPostListDTO(posts, viewerID(viewer)),
			Pagination: dto.NewPagination(in.Page, in.Limit, total),
		}
		c.JSON(http.StatusOK, dto.OK("posts retrieved", data))
	}
}

// GetPostBySlugHandler godoc
// @Summary      Get post by slug
// @Description  Resolve a post by its slug; bumps the view counter unless the viewer is the author
// @Tags         posts
// @Param        slug  path  string  true  "Post slug"
// @Produce      json
// @Success      200  {object}  dto.Response
// @Router       /posts/slug/{slug} [get]
func GetPostBySlugHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, _ := middleware.ActorFrom(c)
		p, err := svc.GetBySlug(c.Request.Context(), viewer, c.Param("slug"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("post retrieved", dto.NewPostDTO(*p, viewerID(viewer))))
	}
}

// GetPostHandler godoc
// @Summary      Get post by id
// @Tags         posts
// @Param        id  path  string  true  "Post id"
// @Produce      json
// @Success      200  {object}  dto.Response
// @Router       /posts/{id} [get]
func GetPostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, _ := middleware.ActorFrom(c)
		p, err := svc.GetByID(c.Request.Context(), viewer, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("post retrieved", dto.NewPostDTO(*p, viewerID(viewer))))
	}
}

// CreatePostHandler godoc
// @Summary      Create post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        request  body  CreatePostRequest  true  "Post fields"
// @Success      201  {object}  dto.Response
// @Security     BearerAuth
// @Router       /posts [post]
func CreatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.Fail("authentication required"))
			return
		}
		var req CreatePostRequest
		if !bindAndValidate(c, &req) {
			return
		}

		p, err := svc.Create(c.Request.Context(), *actor, services.CreatePostInput{
			Title:         req.Title,
			Content:       req.Content,
			Excerpt:       req.Excerpt,
			Status:        req.Status,
			Tags:          req.Tags,
			Categories:    req.Categories,
			SEO:           req.SEO,
			FeaturedImage: req.FeaturedImage,
			ScheduledAt:   req.ScheduledAt,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.OK("post created", dto.NewPostDTO(*p, &actor.ID)))
	}
}

// UpdatePostHandler godoc
// @Summary      Update post
// @Description  Partial update; owner or administrator only
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id       path  string             true  "Post id"
// @Param        request  body  UpdatePostRequest  true  "Changed fields"
// @Success      200  {object}  dto.Response
// @Security     BearerAuth
// @Router       /posts/{id} [put]
func UpdatePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.Fail("authentication required"))
			return
		}
		var req UpdatePostRequest
		if !bindAndValidate(c, &req) {
			return
		}

		p, err := svc.Update(c.Request.Context(), *actor, c.Param("id"), services.UpdatePostInput{
			Title:         req.Title,
			Content:       req.Content,
			Excerpt:       req.Excerpt,
			Status:        req.Status,
			Tags:          req.Tags,
			Categories:    req.Categories,
			SEO:           req.SEO,
			FeaturedImage: req.FeaturedImage,
			ScheduledAt:   req.ScheduledAt,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("post updated", dto.NewPostDTO(*p, &actor.ID)))
	}
}

// DeletePostHandler godoc
// @Summary      Delete post
// @Description  Removes the post, its comments and best-effort its stored images
// @Tags         posts
// @Param        id  path  string  true  "Post id"
// @Produce      json
// @Success      200  {object}  dto.Response
// @Security     BearerAuth
// @Router       /posts/{id} [delete]
func DeletePostHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.Fail("authentication required"))
			return
		}
		if err := svc.Delete(c.Request.Context(), *actor, c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("post deleted", nil))
	}
}

// TogglePostLikeHandler godoc
// @Summary      Toggle post like
// @Description  Idempotent add/remove of the caller from the like set; published posts only
// @Tags         posts
// @Param        id  path  string  true  "Post id"
// @Produce      json
// @Success      200  {object}  dto.Response
// @Security     BearerAuth
// @Router       /posts/{id}/like [post]
func TogglePostLikeHandler(svc *services.PostService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.Fail("authentication required"))
			return
		}
		likes, isLiked, err := svc.ToggleLike(c.Request.Context(), *actor, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("like toggled", dto.LikeDTO{LikesCount: likes, IsLiked: isLiked}))
	}
}
