package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blog-server/internal/domain"
	"blog-server/internal/service"
)

const (
	sessionCookie = "access_token"

	ctxIdentityKey = "identity"
	ctxPostKey     = "post"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Last-Page")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Header("X-Request-ID", requestID)

		c.Next()

		log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
		}).Info("request")
	}
}

// session resolves the request identity from the access_token cookie. It
// never rejects a request: anonymous access is valid and downstream
// handlers decide whether it is allowed. A cookie that fails verification
// is cleared so a corrupted token cannot wedge the client, and a valid
// token close to expiry is replaced with a fresh one in the same response.
func (h *Handler) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(sessionCookie)
		if err != nil || raw == "" {
			c.Next()
			return
		}

		identity, expiresAt, err := h.tokens.Verify(raw)
		if err != nil {
			h.clearSessionCookie(c)
			c.Next()
			return
		}

		c.Set(ctxIdentityKey, identity)

		if h.tokens.ShouldReissue(expiresAt) {
			if fresh, err := h.tokens.Issue(identity); err == nil {
				h.setSessionCookie(c, fresh)
			} else {
				h.log.WithError(err).Warn("reissue session token")
			}
		}

		c.Next()
	}
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(sessionCookie, token, int(h.tokens.TTL().Seconds()), "/", "", false, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
}

func identityFrom(c *gin.Context) (domain.Identity, bool) {
	value, ok := c.Get(ctxIdentityKey)
	if !ok {
		return domain.Identity{}, false
	}
	identity, ok := value.(domain.Identity)
	return identity, ok
}

func postFrom(c *gin.Context) *domain.Post {
	value, ok := c.Get(ctxPostKey)
	if !ok {
		return nil
	}
	post, _ := value.(*domain.Post)
	return post
}

func (h *Handler) requireIdentity(c *gin.Context) {
	if _, ok := identityFrom(c); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.Next()
}

// loadPost validates the route id and resolves the post before any
// downstream handler runs. A malformed id never reaches the store.
func (h *Handler) loadPost(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.abortWithServiceError(c, err)
		return
	}

	c.Set(ctxPostKey, post)
	c.Next()
}

// requirePostOwner compares the authenticated identity against the owner
// of the post resolved by loadPost. It must run after both.
func (h *Handler) requirePostOwner(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	post := postFrom(c)
	if post == nil || post.UserID != identity.ID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not the post owner"})
		return
	}
	c.Next()
}

// ownedPostChain is the only way mutating post routes are registered:
// loader, authentication, and ownership guard always run, in that order,
// before the handler. A mutating route cannot skip the guard.
func (h *Handler) ownedPostChain(fn gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{h.loadPost, h.requireIdentity, h.requirePostOwner, fn}
}

func (h *Handler) abortWithServiceError(c *gin.Context, err error) {
	status, body := h.mapServiceError(err)
	c.AbortWithStatusJSON(status, body)
}

func (h *Handler) mapServiceError(err error) (int, gin.H) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, gin.H{"error": validation.Error()}
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, gin.H{"error": "invalid credentials"}
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusConflict, gin.H{"error": "username already taken"}
	case errors.Is(err, service.ErrPostNotFound):
		return http.StatusNotFound, gin.H{"error": "post not found"}
	default:
		h.log.WithError(err).Error("internal error")
		return http.StatusInternalServerError, gin.H{"error": "internal server error"}
	}
}
