// Package handler provides the HTTP surface: form-post actions that
// respond with redirects carrying state in query parameters, and GET
// endpoints returning the data the pages render.
package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

func seeOther(c *gin.Context, location string) {
	c.Redirect(http.StatusSeeOther, location)
}

// failTo redirects to path with an error code in the query string. Pages
// render the code as a message; nothing here is a raw error response.
func failTo(c *gin.Context, path, code string) {
	seeOther(c, path+"?error="+code)
}

// toSignIn bounces an anonymous caller to sign-in, preserving the original
// destination so they come back after authenticating.
func toSignIn(c *gin.Context, returnTo string) {
	seeOther(c, "/sign-in?redirect="+url.QueryEscape(returnTo))
}
