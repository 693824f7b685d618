package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieMaxAge is the client-side lifetime, refreshed on every allowed
// request. The server-side limit is fixed at creation.
const SessionCookieMaxAge = 24 * 60 * 60

type CookieOptions struct {
	Name   string
	Secure bool
}

func SetSessionCookie(c *gin.Context, opts CookieOptions, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     opts.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   SessionCookieMaxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(c *gin.Context, opts CookieOptions) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     opts.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
