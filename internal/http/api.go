package http

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blog-server/internal/auth"
	"blog-server/internal/domain"
	"blog-server/internal/service"
	"blog-server/internal/storage"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	posts       service.PostService
	tokens      *auth.TokenService
	storage     storage.Service
	bucket      string
	keyPrefix   string
	frontendDir string
	log         *logrus.Logger
}

func NewHandler(users service.UserService, posts service.PostService, tokens *auth.TokenService, store storage.Service, bucket, keyPrefix, frontendDir string, log *logrus.Logger) *Handler {
	if log == nil {
		log = logrus.New()
	}
	return &Handler{
		users:       users,
		posts:       posts,
		tokens:      tokens,
		storage:     store,
		bucket:      bucket,
		keyPrefix:   keyPrefix,
		frontendDir: frontendDir,
		log:         log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())
	router.Use(requestLogger(h.log))
	router.Use(h.session())

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", h.register)
			authRoutes.POST("/login", h.login)
			authRoutes.GET("/check", h.check)
			authRoutes.POST("/logout", h.logout)
		}

		api.GET("/posts", h.listPosts)
		api.POST("/posts", h.requireIdentity, h.createPost)
		api.GET("/posts/:id", h.loadPost, h.readPost)
		api.PATCH("/posts/:id", h.ownedPostChain(h.updatePost)...)
		api.DELETE("/posts/:id", h.ownedPostChain(h.deletePost)...)

		if h.storage != nil && h.bucket != "" {
			api.POST("/files", h.requireIdentity, h.uploadImage)
		}

		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})
	}

	h.registerFrontend(router)
}

// registerFrontend serves the SPA bundle for any unmatched route outside
// /api so client-side routing keeps working on deep links.
func (h *Handler) registerFrontend(router *gin.Engine) {
	if h.frontendDir == "" {
		return
	}
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		requested := filepath.Join(h.frontendDir, filepath.Clean("/"+c.Request.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			c.File(requested)
			return
		}
		c.File(filepath.Join(h.frontendDir, "index.html"))
	})
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		status, body := h.mapServiceError(err)
		c.JSON(status, body)
		return
	}

	h.startSession(c, user)
	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		status, body := h.mapServiceError(err)
		c.JSON(status, body)
		return
	}

	h.startSession(c, user)
	c.JSON(http.StatusOK, userToResponse(user))
}

// startSession issues a token for the user and sets the session cookie.
func (h *Handler) startSession(c *gin.Context, user *domain.User) {
	token, err := h.tokens.Issue(domain.Identity{ID: user.ID, Username: user.Username})
	if err != nil {
		h.log.WithError(err).Error("issue session token")
		return
	}
	h.setSessionCookie(c, token)
}

func (h *Handler) check(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	c.JSON(http.StatusOK, IdentityResponse{ID: identity.ID, Username: identity.Username})
}

func (h *Handler) logout(c *gin.Context) {
	h.clearSessionCookie(c)
	c.Status(http.StatusNoContent)
}

type writePostRequest struct {
	Title string `json:"title" binding:"required"`
	Body  string `json:"body" binding:"required"`
	// required would reject an empty list; presence is checked in the service
	Tags []string `json:"tags"`
}

func (h *Handler) createPost(c *gin.Context) {
	identity, _ := identityFrom(c)

	var req writePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Create(c.Request.Context(), identity, req.Title, req.Body, req.Tags)
	if err != nil {
		status, body := h.mapServiceError(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusCreated, postToResponse(*post))
}

func (h *Handler) listPosts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid page"})
		return
	}

	result, err := h.posts.List(c.Request.Context(), service.ListQuery{
		Page:     page,
		Tag:      c.Query("tag"),
		Username: c.Query("username"),
	})
	if err != nil {
		status, body := h.mapServiceError(err)
		c.JSON(status, body)
		return
	}

	resp := make([]PostResponse, len(result.Posts))
	for i := range result.Posts {
		resp[i] = postToResponse(result.Posts[i])
	}
	c.Header("Last-Page", strconv.Itoa(result.LastPage))
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) readPost(c *gin.Context) {
	c.JSON(http.StatusOK, postToResponse(*postFrom(c)))
}

type updatePostRequest struct {
	Title *string   `json:"title"`
	Body  *string   `json:"body"`
	Tags  *[]string `json:"tags"`
}

func (h *Handler) updatePost(c *gin.Context) {
	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post, err := h.posts.Update(c.Request.Context(), postFrom(c).ID, service.PostPatch{
		Title: req.Title,
		Body:  req.Body,
		Tags:  req.Tags,
	})
	if err != nil {
		status, body := h.mapServiceError(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, postToResponse(*post))
}

func (h *Handler) deletePost(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), postFrom(c).ID); err != nil {
		status, body := h.mapServiceError(err)
		c.JSON(status, body)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer file.Close()

	key := path.Join(h.keyPrefix, uuid.NewString()+strings.ToLower(filepath.Ext(header.Filename)))
	contentType := header.Header.Get("Content-Type")

	if err := h.storage.Upload(c.Request.Context(), h.bucket, key, file, contentType); err != nil {
		h.log.WithError(err).Error("upload image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": h.storage.ObjectURL(h.bucket, key)})
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type IdentityResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type PostResponse struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	Tags      []string     `json:"tags"`
	User      UserResponse `json:"user"`
	CreatedAt string       `json:"created_at"`
	UpdatedAt string       `json:"updated_at"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
	}
}

func postToResponse(post domain.Post) PostResponse {
	tags := post.Tags
	if tags == nil {
		tags = []string{}
	}
	return PostResponse{
		ID:    post.ID,
		Title: post.Title,
		Body:  post.Body,
		Tags:  tags,
		User: UserResponse{
			ID:       post.UserID,
			Username: post.Username,
		},
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
		UpdatedAt: post.UpdatedAt.Format(time.RFC3339),
	}
}
