package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ugurkiymetli/secret-santa/internal/handler/middleware"
	"github.com/ugurkiymetli/secret-santa/internal/service"
	"github.com/ugurkiymetli/secret-santa/pkg/response"
)

type AuthHandler struct {
	identityService service.IdentityService
	gate            service.AuthorizationGate
	secureCookies   bool
}

func NewAuthHandler(identityService service.IdentityService, gate service.AuthorizationGate, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		identityService: identityService,
		gate:            gate,
		secureCookies:   secureCookies,
	}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=256"`
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type ClaimRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

type SessionResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      *service.Principal `json:"user"`
}

// Register creates a self-managed organizer and signs it in.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	account, err := h.identityService.RegisterOrganizer(c.Request.Context(), req.Name, req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	p := service.Principal{AccountID: account.ID, Handle: account.Handle, Role: account.Role}
	h.startSession(c, p, http.StatusCreated)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	p, err := h.identityService.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	h.startSession(c, *p, http.StatusOK)
}

// Claim sets the first password of a pre-created account.
func (h *AuthHandler) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	account, err := h.identityService.ClaimAccount(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, gin.H{"user_id": account.ID, "username": account.Handle})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.ContextKeyToken)
	if err := h.gate.RevokeSession(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}

	h.setCookie(c, "", -1)
	response.Success(c, nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}
	response.Success(c, p)
}

func (h *AuthHandler) startSession(c *gin.Context, p service.Principal, status int) {
	token, err := h.gate.IssueSession(p)
	if err != nil {
		writeError(c, err)
		return
	}

	ttl := h.gate.SessionTTL()
	h.setCookie(c, token, int(ttl.Seconds()))

	c.JSON(status, response.APIResponse{
		Code:    0,
		Message: "ok",
		Data: SessionResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(ttl).UTC(),
			User:      &p,
		},
	})
}

func (h *AuthHandler) setCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.SessionCookie, token, maxAge, "/", "", h.secureCookies, true)
}
