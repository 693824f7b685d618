package middleware

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"hackdir/internal/metrics"
)

type GateOutcome int

const (
	GateAllow GateOutcome = iota
	GateRedirectLogin
	GateRedirectHome
	GateForbidden
)

func (o GateOutcome) String() string {
	switch o {
	case GateAllow:
		return "allow"
	case GateRedirectLogin:
		return "redirect_login"
	case GateRedirectHome:
		return "redirect_home"
	case GateForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// GateInput is what the gatekeeper knows about a request before routing.
type GateInput struct {
	LoginPage bool
	Token     string
	Method    string
	Origin    string
	Host      string
}

type GateDecision struct {
	Outcome       GateOutcome
	ClearCookie   bool
	RefreshCookie bool
}

// Decide runs the per-request state machine. validate is only called when a
// token is present and must report false for anything but a live session.
func Decide(in GateInput, validate func(token string) bool) GateDecision {
	if in.Token == "" {
		if in.LoginPage {
			return GateDecision{Outcome: GateAllow}
		}
		return GateDecision{Outcome: GateRedirectLogin}
	}

	valid := validate(in.Token)
	switch {
	case !valid && in.LoginPage:
		return GateDecision{Outcome: GateAllow, ClearCookie: true}
	case !valid:
		return GateDecision{Outcome: GateRedirectLogin, ClearCookie: true}
	case in.LoginPage:
		return GateDecision{Outcome: GateRedirectHome}
	}

	if isMutating(in.Method) && !sameOrigin(in.Origin, in.Host) {
		return GateDecision{Outcome: GateForbidden}
	}

	return GateDecision{Outcome: GateAllow, RefreshCookie: true}
}

func isMutating(method string) bool {
	return method != http.MethodGet && method != http.MethodHead
}

func sameOrigin(origin, host string) bool {
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == host
}

// TokenValidator reports whether a session token is live. Implementations
// must not fail open.
type TokenValidator interface {
	ValidateSessionTokenInMiddleware(ctx context.Context, token string) bool
}

type GateMode int

const (
	// PageMode redirects unauthenticated requests to the login page.
	PageMode GateMode = iota
	// APIMode answers 401 JSON where PageMode would redirect to login.
	APIMode
)

type GateConfig struct {
	Mode      GateMode
	LoginPath string
	HomePath  string
	Cookie    CookieOptions
}

func Gatekeeper(cfg GateConfig, validator TokenValidator, m *metrics.Metrics, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cfg.Cookie.Name)

		decision := Decide(GateInput{
			LoginPage: cfg.Mode == PageMode && c.Request.URL.Path == cfg.LoginPath,
			Token:     token,
			Method:    c.Request.Method,
			Origin:    c.GetHeader("Origin"),
			Host:      c.Request.Host,
		}, func(token string) bool {
			return validateClosed(c.Request.Context(), validator, token, log)
		})

		if decision.ClearCookie {
			ClearSessionCookie(c, cfg.Cookie)
		}

		switch decision.Outcome {
		case GateRedirectLogin:
			if cfg.Mode == APIMode {
				m.ObserveGate("unauthorized")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			m.ObserveGate(decision.Outcome.String())
			c.Redirect(http.StatusTemporaryRedirect, cfg.LoginPath)
			c.Abort()
			return
		case GateRedirectHome:
			m.ObserveGate(decision.Outcome.String())
			c.Redirect(http.StatusTemporaryRedirect, cfg.HomePath)
			c.Abort()
			return
		case GateForbidden:
			m.ObserveGate(decision.Outcome.String())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid origin"})
			return
		}

		m.ObserveGate(decision.Outcome.String())
		if decision.RefreshCookie {
			SetSessionCookie(c, cfg.Cookie, token)
		}
		c.Next()
	}
}

func validateClosed(ctx context.Context, validator TokenValidator, token string, log zerolog.Logger) (valid bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("gatekeeper validation panicked")
			valid = false
		}
	}()
	return validator.ValidateSessionTokenInMiddleware(ctx, token)
}

// SameOrigin rejects mutating requests whose Origin host differs from Host.
func SameOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isMutating(c.Request.Method) && !sameOrigin(c.GetHeader("Origin"), c.Request.Host) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid origin"})
			return
		}
		c.Next()
	}
}
