package middleware

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"

	"hackdir/internal/service"
)

const requestSessionKey = "request_session"

type SessionResolver interface {
	ValidateSessionToken(ctx context.Context, token string) (service.ValidatedSession, error)
}

// RequestSession resolves the request's session cookie at most once.
type RequestSession struct {
	once     sync.Once
	ctx      context.Context
	token    string
	resolver SessionResolver
	onError  func(error)

	session service.ValidatedSession
	ok      bool
	// err holds a resolver failure other than ErrUnauthenticated.
	err error
}

func NewRequestSession(ctx context.Context, token string, resolver SessionResolver) *RequestSession {
	return &RequestSession{ctx: ctx, token: token, resolver: resolver}
}

func (r *RequestSession) Get() (service.ValidatedSession, bool) {
	session, ok, _ := r.Resolve()
	return session, ok
}

// Resolve is Get that also reports store failures. An invalid or missing
// session is (zero, false, nil).
func (r *RequestSession) Resolve() (service.ValidatedSession, bool, error) {
	r.once.Do(func() {
		if r.token == "" || r.resolver == nil {
			return
		}
		session, err := r.resolver.ValidateSessionToken(r.ctx, r.token)
		if err != nil {
			if r.onError != nil {
				r.onError(err)
			}
			if !errors.Is(err, service.ErrUnauthenticated) {
				r.err = err
			}
			return
		}
		r.session = session
		r.ok = true
	})
	return r.session, r.ok, r.err
}

// AttachSession installs a lazy RequestSession on the gin context.
func AttachSession(cookieName string, resolver SessionResolver, onError func(error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(cookieName)
		rs := NewRequestSession(c.Request.Context(), token, resolver)
		rs.onError = onError
		c.Set(requestSessionKey, rs)
		c.Next()
	}
}

// CurrentSession returns the validated session for this request, if any.
func CurrentSession(c *gin.Context) (service.ValidatedSession, bool) {
	session, ok, _ := CurrentSessionErr(c)
	return session, ok
}

// CurrentSessionErr is CurrentSession for callers that must tell a failed
// lookup apart from an absent session.
func CurrentSessionErr(c *gin.Context) (service.ValidatedSession, bool, error) {
	v, ok := c.Get(requestSessionKey)
	if !ok {
		return service.ValidatedSession{}, false, nil
	}
	rs, ok := v.(*RequestSession)
	if !ok {
		return service.ValidatedSession{}, false, nil
	}
	return rs.Resolve()
}
