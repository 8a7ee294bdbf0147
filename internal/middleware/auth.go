package middleware

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"whatsclone/internal/authz"
	"whatsclone/internal/config"
)

const (
	ClaimsKey = "claims"
	UserIDKey = "user_id"

	leeway = 2 * time.Minute
)

// Verifier checks identity-provider tokens with either a shared HMAC secret
// or the provider's RSA public key.
type Verifier struct {
	key     interface{}
	methods []string
	opts    []jwt.ParserOption
}

func NewVerifier(cfg config.AuthConfig) (*Verifier, error) {
	v := &Verifier{}
	switch {
	case cfg.PublicKeyPEM != "":
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.PublicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse jwt public key: %w", err)
		}
		v.key = pub
		v.methods = []string{"RS256", "RS384", "RS512"}
	case cfg.HMACSecret != "":
		v.key = []byte(cfg.HMACSecret)
		v.methods = []string{"HS256", "HS384", "HS512"}
	default:
		return nil, errors.New("no jwt verification key configured")
	}

	v.opts = []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithLeeway(leeway),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		v.opts = append(v.opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		v.opts = append(v.opts, jwt.WithAudience(cfg.Audience))
	}
	return v, nil
}

// Parse validates the token and extracts the typed claims.
func (v *Verifier) Parse(tokenStr string) (*authz.Claims, error) {
	token, err := jwt.Parse(tokenStr, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	}, v.opts...)
	if err != nil {
		return nil, err
	}
	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return authz.FromMap(mc)
}

// bearerToken reads the Authorization header. With allowQuery it falls back
// to ?token=, which is the only option browsers have on a WebSocket handshake.
func bearerToken(c *gin.Context, allowQuery bool) string {
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if !allowQuery {
		return ""
	}
	return strings.TrimSpace(c.Query("token"))
}

// AuthMiddleware only accepts the Authorization header.
func AuthMiddleware(v *Verifier) gin.HandlerFunc {
	return authenticate(v, false)
}

// WSAuthMiddleware also accepts ?token= and belongs on the /ws handshake only.
func WSAuthMiddleware(v *Verifier) gin.HandlerFunc {
	return authenticate(v, true)
}

func authenticate(v *Verifier, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		tokenStr := bearerToken(c, allowQuery)
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims, err := v.Parse(tokenStr)
		if err != nil {
			if errors.Is(err, authz.ErrMissingClaim) || errors.Is(err, authz.ErrMalformedClaim) {
				log.Printf("[auth] rejected token: %v", err)
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.Subject)
		c.Next()
	}
}

// ClaimsFrom returns the claims stored by AuthMiddleware.
func ClaimsFrom(c *gin.Context) (*authz.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*authz.Claims)
	return claims, ok
}
