package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkpress/api/middleware"
	"inkpress/dto"
	"inkpress/services"
)

type CreateCommentRequest struct {
	Content  string `json:"content" validate:"required,max=2000"`
	PostID   string `json:"postId" validate:"required"`
	ParentID string `json:"parentId"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type ModerateCommentRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected spam"`
}

// ListCommentsByPostHandler godoc
// @Summary      List comments on a post
// @Description  Top-level comments with resolved replies; includeAll surfaces pending comments for administrators
// @Tags         comments
// @Param        postId      path   string  true   "Post id"
// @Param        sort        query  string  false  "newest (default) | oldest"
// @Param        includeAll  query  bool    false  "Moderator mode"
// @Produce      json
// @Success      200  {object}  dto.Response
// @Router       /comments/post/{postId} [get]
func ListCommentsByPostHandler(svc *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer, _ := middleware.ActorFrom(c)
		threads, err := svc.ListByPost(c.Request.Context(), viewer, c.Param("postId"), services.ListCommentsInput{
			Sort:       c.Query("sort"),
			IncludeAll: c.Query("includeAll") == "true",
		})
		if err != nil {
			respondError(c, err)
			return
		}

		out := make([]dto.CommentDTO, 0, len(threads))
		for _, t := range threads {
			out = append(out, dto.NewCommentThreadDTO(t.Comment, t.Replies, viewerID(viewer)))
		}
		c.JSON(http.StatusOK, dto.OK("comments retrieved", out))
	}
}

// CreateCommentHandler godoc
// @Summary      Create comment
// @Description  Comment on a published post, optionally replying to a parent comment on the same post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        request  body  CreateCommentRequest  true  "Comment fields"
// @Success      201  {object}  dto.Response
// @Security     BearerAuth
// @Router       /comments [post]
func CreateCommentHandler(svc *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.Fail("authentication required"))
			return
		}
		var req CreateCommentRequest
		if !bindAndValidate(c, &req) {
			return
		}

		comment, err := svc.Create(c.Request.Context(), *actor, services.CreateCommentInput{
			Content:  req.Content,
			PostID:   req.PostID,
			ParentID: req.ParentID,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.OK("comment created", dto.NewCommentDTO(*comment, &actor.ID)))
	}
}

// UpdateCommentHandler godoc
// @Summary      Update comment
// @Description  Replaces the text and marks the comment edited; author or administrator only
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id       path  string                true  "Comment id"
// @Param        request  body  UpdateCommentRequest  true  "New content"
// @Success      200  {object}  dto.Response
// @Security     BearerAuth
// @Router       /comments/{id} [put]
func UpdateCommentHandler(svc *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.Fail("authentication required"))
			return
		}
		var req UpdateCommentRequest
		if !bindAndValidate(c, &req) {
			return
		}

		comment, err := svc.Update(c.Request.Context(), *actor, c.Param("id"), req.Content)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("comment updated", dto.NewCommentDTO(*comment, &actor.ID)))
	}
}

// DeleteCommentHandler godoc
// @Summary      Delete comment
// @Description  Removes the comment and its whole reply subtree
// @Tags         comments
// @Param        id  path  string  true  "Comment id"
// @Produce      json
// @Success      200  {object}  dto.Response
// @Security     BearerAuth
// @Router       /comments/{id} [delete]
func DeleteCommentHandler(svc *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.Fail("authentication required"))
			return
		}
		deleted, err := svc.Delete(c.Request.Context(), *actor, c.Param("id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("comment deleted", gin.H{"deletedCount": deleted}))
	}
}

// ToggleCommentLikeHandler godoc
// @Summary      Toggle comment like
// @Description  Idempotent add/remove of the caller from the like set; approved comments only
// @Tags         comments
// @Param        id  path  string  true  "Comment id"
// @Produce      json
// @Success      200  {object}  dto.Response
// @Security     BearerAuth
// @Router       /comments/{id}/like [post]
func ToggleCommentLikeHandler(svc *services.CommentService) gin.HandlerFunc {
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

// ModerateCommentHandler godoc
// @Summary      Moderate comment
// @Description  Administrator-only status overwrite; any status may move to any other
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        id       path  string                  true  "Comment id"
// @Param        request  body  ModerateCommentRequest  true  "New status"
// @Success      200  {object}  dto.Response
// @Security     BearerAuth
// @Router       /comments/{id}/moderate [put]
func ModerateCommentHandler(svc *services.CommentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, dto.Fail("authentication required"))
			return
		}
		var req ModerateCommentRequest
		if !bindAndValidate(c, &req) {
			return
		}

		comment, err := svc.Moderate(c.Request.Context(), *actor, c.Param("id"), req.Status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.OK("comment moderated", dto.NewCommentDTO(*comment, &actor.ID)))
	}
}
