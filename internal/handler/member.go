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

// MemberHandler exposes the membership roster endpoints.
type MemberHandler struct {
	svc      *service.MemberService
	sessions *auth.SessionManager
	cfg      *config.Config
}

// NewMemberHandler creates a new MemberHandler instance.
func NewMemberHandler(svc *service.MemberService, sessions *auth.SessionManager, cfg *config.Config) *MemberHandler {
	return &MemberHandler{svc: svc, sessions: sessions, cfg: cfg}
}

// Register mounts the member routes. Listing is public; applying needs a
// session; moderation needs admin capability.
func (h *MemberHandler) Register(api *gin.RouterGroup) {
	grp := api.Group("/members")
	grp.GET("", h.list)
	grp.GET("/:id", h.get)
	grp.POST("/apply", server.RequireSession(h.sessions), h.apply)

	adm := grp.Group("", server.RequireSession(h.sessions), server.RequireAdmin(h.cfg))
	adm.PUT("/:id/approval", h.setApproval)
	adm.DELETE("/:id", h.remove)
}

func (h *MemberHandler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "50"))

	// Pending applications are only visible to admins.
	includePending := false
	if c.Query("includePending") == "true" {
		token, err := c.Cookie(server.SessionCookie)
		if err == nil {
			if claims, err := h.sessions.Verify(token); err == nil && h.cfg.IsAdmin(claims.DiscordID) {
				includePending = true
			}
		}
	}

	members, err := h.svc.List(c.Request.Context(), includePending, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, members)
}

func (h *MemberHandler) get(c *gin.Context) {
	member, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, member)
}

type applyRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
	Message     string `json:"message"`
}

func (h *MemberHandler) apply(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	member, err := h.svc.Apply(c.Request.Context(), server.CallerID(c), req.DisplayName, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, member)
}

type approvalRequest struct {
	Approved bool `json:"approved"`
}

func (h *MemberHandler) setApproval(c *gin.Context) {
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Approve(c.Request.Context(), c.Param("id"), req.Approved); err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, nil)
}

func (h *MemberHandler) remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, nil)
}
