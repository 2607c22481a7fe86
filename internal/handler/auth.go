package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/domain"
)

// Roles carried in the role claim
const (
	RoleAdmin  = "admin"
	RolePlayer = "player"
)

// Claims are the bearer token claims. The subject is the user id that players
// link to through their user_id field.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type claimsKey struct{}

// Authenticator verifies HS256 bearer tokens
type Authenticator struct {
	secret []byte
	issuer string
}

// NewAuthenticator returns nil when no secret is configured
func NewAuthenticator(cfg *config.AuthConfig) *Authenticator {
	if cfg.JWTSecret == "" {
		return nil
	}
	return &Authenticator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
	}
}

// Issue signs a token for a user
func (a *Authenticator) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    a.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse validates a token and returns its claims
func (a *Authenticator) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithIssuer(a.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: invalid or expired token", domain.ErrUnauthorized)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}
	return claims, nil
}

// Middleware rejects requests without a valid bearer token
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			writeAuthError(w, http.StatusUnauthorized, fmt.Errorf("%w: authorization required", domain.ErrUnauthorized))
			return
		}
		claims, err := a.Parse(tokenString)
		if err != nil {
			writeAuthError(w, http.StatusUnauthorized, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// ClaimsFromContext returns the verified claims, or nil when auth is disabled
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey{}).(*Claims)
	return claims
}

// requireAuth wraps a route with token verification when auth is enabled
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	if h.auth == nil {
		return next
	}
	return h.auth.Middleware(next)
}

// requireRole wraps a route with token verification and a role check
func (h *Handler) requireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if h.auth == nil {
			return next
		}
		return h.auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil || !slices.Contains(roles, claims.Role) {
				writeAuthError(w, http.StatusForbidden, fmt.Errorf("%w: insufficient permissions", domain.ErrForbidden))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// canEditPlayer allows admins and the user linked to the player
func canEditPlayer(claims *Claims, p *domain.Player) error {
	if claims == nil || claims.Role == RoleAdmin {
		return nil
	}
	if p.UserID != "" && p.UserID == claims.Subject {
		return nil
	}
	return fmt.Errorf("%w: players can only edit themselves", domain.ErrForbidden)
}

func writeAuthError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Error: err.Error()})
}
