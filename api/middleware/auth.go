package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkpress/api/auth"
	"inkpress/dto"
	"inkpress/services"
)

const actorKey = "actor"

// RequireAuth verifies the bearer token and stores the resulting actor in
// the request context. Requests without a valid token are rejected.
func RequireAuth(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := actorFromToken(c, jwt)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(err.Error()))
			return
		}
		c.Set(actorKey, *actor)
		c.Next()
	}
}

// OptionalAuth resolves the actor when a token is present but lets
// anonymous requests through. Used on read endpoints where the viewer
// identity only affects isLiked flags and draft visibility.
func OptionalAuth(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		actor, err := actorFromToken(c, jwt)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Fail(err.Error()))
			return
		}
		c.Set(actorKey, *actor)
		c.Next()
	}
}

// RequireAdmin gates administrator-only routes. Must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.Fail("administrator role required"))
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated actor, if any.
func ActorFrom(c *gin.Context) (*services.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil, false
	}
	actor, ok := v.(services.Actor)
	if !ok {
		return nil, false
	}
	return &actor, true
}

func actorFromToken(c *gin.Context, jwt *auth.JWTManager) (*services.Actor, error) {
	token, err := auth.ExtractBearerToken(c)
	if err != nil {
		return nil, err
	}
	sub, role, err := jwt.Parse(token)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(sub)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = services.RoleUser
	}
	return &services.Actor{ID: id, Role: role}, nil
}
