package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// actorKey is the key used to store the acting user's identifier in the context.
const actorKey = contextKey("actor")

// actorRoleKey is the key used to store the acting user's role in the context.
const actorRoleKey = contextKey("actorRole")

// ActorHeader carries the caller identity supplied by the internal gateway.
const ActorHeader = "X-Actor"

// ActorRoleHeader carries the caller's role, used for period lock overrides.
const ActorRoleHeader = "X-Actor-Role"

// ActorMiddleware extracts the caller identity from trusted gateway headers
// and stores it in the request context. Requests without an identity are
// rejected: every mutation here must be attributable to an actor.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := strings.TrimSpace(c.GetHeader(ActorHeader))
		if actor == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + ActorHeader + " header"})
			return
		}

		c.Set(string(actorKey), actor)
		ctx := context.WithValue(c.Request.Context(), actorKey, actor)

		if role := strings.TrimSpace(c.GetHeader(ActorRoleHeader)); role != "" {
			c.Set(string(actorRoleKey), role)
			ctx = context.WithValue(ctx, actorRoleKey, role)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetActorFromContext retrieves the acting user's identifier from the Gin
// context. It returns the identifier and a boolean indicating if it was found.
func GetActorFromContext(c *gin.Context) (string, bool) {
	actorVal, exists := c.Get(string(actorKey))
	if !exists {
		// check in the request context as well
		if ctxVal := c.Request.Context().Value(actorKey); ctxVal != nil {
			return ctxVal.(string), true
		}
		return "", false
	}

	actor, ok := actorVal.(string)
	if !ok {
		return "", false
	}
	return actor, true
}

// GetActorRoleFromCtx retrieves the acting user's role from a plain
// context.Context, returning "" when absent.
func GetActorRoleFromCtx(ctx context.Context) string {
	if role, ok := ctx.Value(actorRoleKey).(string); ok {
		return role
	}
	return ""
}
