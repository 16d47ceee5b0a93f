package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hibikineko/airona-cult/internal/auth"
	"github.com/hibikineko/airona-cult/internal/config"
	"github.com/hibikineko/airona-cult/internal/server"
	"github.com/hibikineko/airona-cult/internal/service"
)

// HalloweenHandler exposes the costume contest voting endpoints.
type HalloweenHandler struct {
	svc      *service.HalloweenService
	sessions *auth.SessionManager
	cfg      *config.Config
}

// NewHalloweenHandler creates a new HalloweenHandler instance.
func NewHalloweenHandler(svc *service.HalloweenService, sessions *auth.SessionManager, cfg *config.Config) *HalloweenHandler {
	return &HalloweenHandler{svc: svc, sessions: sessions, cfg: cfg}
}

// Register mounts the contest routes. Voting identifies voters by their
// session username; results and invalidation are admin actions.
func (h *HalloweenHandler) Register(api *gin.RouterGroup) {
	grp := api.Group("/halloween")
	grp.GET("/submissions", h.submissions)

	voting := grp.Group("", server.RequireSession(h.sessions))
	voting.GET("/matches", h.matches)
	voting.GET("/votes", h.votes)
	voting.POST("/vote", h.vote)

	adm := grp.Group("", server.RequireSession(h.sessions), server.RequireAdmin(h.cfg))
	adm.POST("/results", h.results)
	adm.DELETE("/voters/:name", h.invalidate)
}

func (h *HalloweenHandler) submissions(c *gin.Context) {
	subs, err := h.svc.Submissions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, subs)
}

func (h *HalloweenHandler) matches(c *gin.Context) {
	result, err := h.svc.NextMatches(c.Request.Context(), server.CallerUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, result)
}

func (h *HalloweenHandler) votes(c *gin.Context) {
	votes, err := h.svc.Votes(c.Request.Context(), server.CallerUsername(c))
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, votes)
}

type voteRequest struct {
	WinnerID int64  `json:"winnerId" binding:"required"`
	LoserID  int64  `json:"loserId" binding:"required"`
	MatchID  string `json:"matchId"`
}

func (h *HalloweenHandler) vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	record, err := h.svc.RecordVote(c.Request.Context(), server.CallerUsername(c), req.WinnerID, req.LoserID, req.MatchID)
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, record)
}

type resultsRequest struct {
	Top3 []int64 `json:"top3" binding:"required"`
}

func (h *HalloweenHandler) results(c *gin.Context) {
	var req resultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.RecordResults(c.Request.Context(), req.Top3); err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, nil)
}

func (h *HalloweenHandler) invalidate(c *gin.Context) {
	deleted, err := h.svc.InvalidateVoter(c.Request.Context(), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	server.OK(c, gin.H{"deleted": deleted})
}
