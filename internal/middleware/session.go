package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hackcampus/apply-backend/internal/models"
)

const SessionCookie = "session"

const (
	ctxUserIDKey = "userID"
	ctxRoleKey   = "userRole"
)

// Sessions issues and verifies the signed session cookie that establishes
// the request's user.
type Sessions struct {
	secret []byte
	ttl    time.Duration
}

func NewSessions(secret string, ttl time.Duration) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl}
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Issue sets the session cookie on the response.
func (s *Sessions) Issue(c *gin.Context, user *models.User) error {
	now := time.Now().UTC()
	claims := sessionClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return err
	}
	c.SetCookie(SessionCookie, token, int(s.ttl.Seconds()), "/", "", false, true)
	return nil
}

// Clear expires the session cookie.
func (s *Sessions) Clear(c *gin.Context) {
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

// Authenticate populates the request context from the session cookie when
// one is present. It never rejects; route guards do that.
func (s *Sessions) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookie)
		if err != nil || tokenString == "" {
			c.Next()
			return
		}
		claims := &sessionClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.secret, nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}
		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil {
			c.Next()
			return
		}
		c.Set(ctxUserIDKey, uint(userID))
		c.Set(ctxRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAuth aborts unauthenticated requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireMatcher limits a route to staff accounts.
func RequireMatcher() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := Role(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if role != models.RoleMatcher {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "matcher role required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user's id, if any.
func UserID(c *gin.Context) (uint, bool) {
	value, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}

// Role returns the authenticated user's role, if any.
func Role(c *gin.Context) (string, bool) {
	value, ok := c.Get(ctxRoleKey)
	if !ok {
		return "", false
	}
	role, ok := value.(string)
	return role, ok
}
