package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
)

const (
	CookieName = "sb-access-token"
	contextKey = "auth.user"
)

var ErrUnauthorized = errors.New("unauthorized")

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Verifier interface {
	Verify(ctx context.Context, token string) (*User, error)
}

// SupabaseVerifier resolves access tokens against the hosted auth service.
type SupabaseVerifier struct {
	client  *resty.Client
	anonKey string
}

func NewSupabaseVerifier(baseURL, anonKey string) *SupabaseVerifier {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(10 * time.Second)

	return &SupabaseVerifier{client: client, anonKey: anonKey}
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	resp, err := v.client.R().
		SetContext(ctx).
		SetHeader("apikey", v.anonKey).
		SetAuthToken(token).
		Get("/auth/v1/user")
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("verify token: auth service returned %d", resp.StatusCode())
	}

	var user User
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("verify token: decode user: %w", err)
	}
	if user.ID == "" {
		return nil, ErrUnauthorized
	}
	return &user, nil
}

// TokenFrom reads the bearer token, falling back to the session cookie.
func TokenFrom(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := c.Cookie(CookieName); err == nil {
		return cookie
	}
	return ""
}

// RequireUser aborts with 401 unless the request carries a token the
// verifier accepts. It runs before any handler touches an upstream.
func RequireUser(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFrom(c)
		if token == "" || v == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		user, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, ErrUnauthorized) {
				slog.Warn("token verification failed", "error", err)
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Set(contextKey, user)
		c.Next()
	}
}

// UserFrom returns the user stored by RequireUser.
func UserFrom(c *gin.Context) (*User, bool) {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*User)
	return user, ok
}
