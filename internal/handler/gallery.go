package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hibikineko/airona-cult/internal/auth"
	"github.com/hibikineko/airona-cult/internal/config"
	"github.com/hibikineko/airona-cult/internal/server"
	"github.com/hibikineko/airona-cult/internal/service"
)

// GalleryHandler exposes the community gallery endpoints.
type GalleryHandler struct {
	svc      *service.GalleryService
	sessions *auth.SessionManager
	cfg      *config.Config
}

// NewGalleryHandler creates a new GalleryHandler instance.
func NewGalleryHandler(svc *service.GalleryService, sessions *auth.SessionManager, cfg *config.Config) *GalleryHandler {
	return &GalleryHandler{svc: svc, sessions: sessions, cfg: cfg}
}

// Register mounts the gallery routes. Browsing is public; curating the
// gallery is an admin task.
func (h *GalleryHandler) Register(api *gin.RouterGroup) {
	grp := api.Group("/gallery")
	grp.GET("", h.list)

	adm := grp.Group("", server.RequireSession(h.sessions), server.RequireAdmin(h.cfg))
	adm.POST("", h.add)
	adm.DELETE("/:id", h.remove)
}

func (h *GalleryHandler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	result, err := h.svc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, result)
}

type addImageRequest struct {
	Title    string `json:"title" binding:"required"`
	ImageURL string `json:"imageUrl" binding:"required"`
}

func (h *GalleryHandler) add(c *gin.Context) {
	var req addImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	image, err := h.svc.Add(c.Request.Context(), req.Title, req.ImageURL, server.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, image)
}

func (h *GalleryHandler) remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, nil)
}
