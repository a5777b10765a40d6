package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pollroom/internal/services"
	pollroom_errors "pollroom/pkg/errors"
)

// AuthHandler handles the identity provider boundary routes.
type AuthHandler struct {
	service    *services.AuthService
	cookieName string
}

func NewAuthHandler(service *services.AuthService, cookieName string) *AuthHandler {
	return &AuthHandler{service: service, cookieName: cookieName}
}

const defaultAfterAuth = "/polls"

// SignUp handles POST /auth/sign-up form submissions.
func (h *AuthHandler) SignUp(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	returnTo := c.PostForm("redirect")

	sess, err := h.service.SignUp(c.Request.Context(), email, password)
	if err != nil {
		switch {
		case errors.Is(err, pollroom_errors.ErrInvalidInput):
			failTo(c, "/sign-up", "missing_fields")
		case errors.Is(err, pollroom_errors.ErrAlreadyExists):
			failTo(c, "/sign-up", "email_taken")
		default:
			failTo(c, "/sign-up", "signup_failed")
		}
		return
	}

	h.setSession(c, sess)
	seeOther(c, afterAuth(returnTo))
}

// SignIn handles POST /auth/sign-in form submissions.
func (h *AuthHandler) SignIn(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	returnTo := c.PostForm("redirect")

	sess, err := h.service.SignInWithPassword(c.Request.Context(), email, password)
	if err != nil {
		failTo(c, "/sign-in", "invalid_credentials")
		return
	}

	h.setSession(c, sess)
	seeOther(c, afterAuth(returnTo))
}

// OAuth handles GET /auth/oauth/:provider and sends the browser to the
// provider's authorize endpoint.
func (h *AuthHandler) OAuth(c *gin.Context) {
	provider := c.Param("provider")
	returnTo := c.Query("redirect")

	location, err := h.service.SignInWithOAuth(provider, returnTo)
	if err != nil {
		failTo(c, "/sign-in", "unknown_provider")
		return
	}
	c.Redirect(http.StatusFound, location)
}

// Callback handles GET /auth/callback?code=&redirect=. The code, when
// present, is exchanged for a session; either way the browser ends up at
// the redirect target or the poll listing.
func (h *AuthHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	returnTo := c.Query("redirect")

	if code != "" {
		if sess, err := h.service.ExchangeAuthCode(c.Request.Context(), code); err == nil {
			h.setSession(c, sess)
		}
	}
	seeOther(c, afterAuth(returnTo))
}

// SignOut clears the session cookie.
func (h *AuthHandler) SignOut(c *gin.Context) {
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	seeOther(c, "/")
}

func (h *AuthHandler) setSession(c *gin.Context, sess services.Session) {
	c.SetCookie(h.cookieName, sess.AccessToken, int(sess.ExpiresIn), "/", "", false, true)
}

func afterAuth(returnTo string) string {
	if returnTo == "" {
		return defaultAfterAuth
	}
	return returnTo
}
