package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hibikineko/airona-cult/internal/auth"
	"github.com/hibikineko/airona-cult/internal/model"
	"github.com/hibikineko/airona-cult/internal/server"
	"github.com/hibikineko/airona-cult/internal/service"
)

// GachaHandler exposes the fortune card endpoints.
type GachaHandler struct {
	svc      *service.GachaService
	sessions *auth.SessionManager
}

// NewGachaHandler creates a new GachaHandler instance.
func NewGachaHandler(svc *service.GachaService, sessions *auth.SessionManager) *GachaHandler {
	return &GachaHandler{svc: svc, sessions: sessions}
}

// Register mounts the gacha routes. Everything requires a session.
func (h *GachaHandler) Register(api *gin.RouterGroup) {
	grp := api.Group("/gacha", server.RequireSession(h.sessions))
	grp.POST("/draw", h.draw)
	grp.GET("/stats", h.stats)
	grp.GET("/collection", h.collection)
	grp.POST("/dismantle", h.dismantle)
}

type drawRequest struct {
	Banner  string `json:"banner"`
	UseCoin bool   `json:"useCoin"`
}

func (h *GachaHandler) draw(c *gin.Context) {
	var req drawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Banner == "" {
		req.Banner = model.BannerStandard
	}

	ident := service.Identity{
		DiscordID: server.CallerID(c),
		Username:  server.CallerUsername(c),
	}

	result, err := h.svc.Draw(c.Request.Context(), ident, req.Banner, req.UseCoin)
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, result)
}

func (h *GachaHandler) stats(c *gin.Context) {
	stats, err := h.svc.GetStats(c.Request.Context(), server.CallerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, stats)
}

func (h *GachaHandler) collection(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "24"))

	entries, err := h.svc.Collection(c.Request.Context(), server.CallerID(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, entries)
}

type dismantleRequest struct {
	CardIDs []int64 `json:"cardIds" binding:"required"`
}

func (h *GachaHandler) dismantle(c *gin.Context) {
	var req dismantleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.Dismantle(c.Request.Context(), server.CallerID(c), req.CardIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, result)
}
