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

// AdminHandler exposes privileged operations behind the admin gate.
type AdminHandler struct {
	svc      *service.AdminService
	sessions *auth.SessionManager
	cfg      *config.Config
}

// NewAdminHandler creates a new AdminHandler instance.
func NewAdminHandler(svc *service.AdminService, sessions *auth.SessionManager, cfg *config.Config) *AdminHandler {
	return &AdminHandler{svc: svc, sessions: sessions, cfg: cfg}
}

// Register mounts the admin routes.
func (h *AdminHandler) Register(api *gin.RouterGroup) {
	grp := api.Group("/admin", server.RequireSession(h.sessions), server.RequireAdmin(h.cfg))
	grp.POST("/coins", h.adjustCoins)
	grp.GET("/users/:id/ledger", h.ledger)
	grp.PUT("/users/:id/role", h.setRole)
}

type adjustCoinsRequest struct {
	UserID string `json:"userId" binding:"required"`
	Amount int64  `json:"amount" binding:"required"`
	Reason string `json:"reason"`
}

func (h *AdminHandler) adjustCoins(c *gin.Context) {
	var req adjustCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.svc.AdjustCoins(c.Request.Context(), server.CallerID(c), req.UserID, req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, user)
}

func (h *AdminHandler) ledger(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	entries, err := h.svc.Ledger(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, entries)
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

func (h *AdminHandler) setRole(c *gin.Context) {
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SetRole(c.Request.Context(), server.CallerID(c), c.Param("id"), req.Role); err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, nil)
}
