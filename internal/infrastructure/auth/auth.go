// Package auth extracts the authenticated principal from request
// credentials. The chat core only ever sees the resulting Principal; all
// credential checking lives here.
package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"campus-chat/chat-api/internal/domain/identity"
	"campus-chat/chat-api/internal/domain/permission"
	"campus-chat/chat-api/internal/utils/platformerrors"
)

const principalKey = "principal"

// Claims is the token payload issued by the campus auth service.
type Claims struct {
	IdentityID int64  `json:"identity_id"`
	Role       string `json:"role"`
	Email      string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Validator verifies HMAC-signed tokens and resolves them to principals.
type Validator struct {
	secret   []byte
	resolver identity.Resolver
	log      zerolog.Logger
}

// NewValidator creates a token validator. resolver is used to apply the
// super-admin promotion on login touch and may be nil in tests.
func NewValidator(secret string, resolver identity.Resolver, log zerolog.Logger) *Validator {
	return &Validator{
		secret:   []byte(secret),
		resolver: resolver,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// Parse validates a raw token string and returns its claims.
func (v *Validator) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, platformerrors.New(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized, "invalid token", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.IdentityID == 0 {
		return nil, platformerrors.New(platformerrors.LayerInfrastructure, platformerrors.ErrorTypeUnauthorized, "invalid token claims", nil)
	}
	return claims, nil
}

// Principal turns validated claims into the acting principal, applying the
// one-way super-admin promotion when the email is on the allow-list.
func (v *Validator) Principal(c *gin.Context, claims *Claims) identity.Principal {
	p := identity.Principal{ID: claims.IdentityID, Role: permission.Role(claims.Role)}

	if v.resolver != nil && claims.Email != "" {
		ident, err := v.resolver.Get(c.Request.Context(), claims.IdentityID)
		if err == nil {
			if err := v.resolver.Promote(c.Request.Context(), ident); err != nil {
				v.log.Warn().Err(err).Int64("identity_id", ident.ID).Msg("super-admin promotion failed")
			} else if ident.Role != p.Role {
				p.Role = ident.Role
			}
		}
	}
	return p
}

// Middleware enforces bearer-token auth and stores the principal in the gin
// context.
func (v *Validator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			platformerrors.WriteUnauthorized(c, "missing bearer token")
			c.Abort()
			return
		}
		claims, err := v.Parse(tokenStr)
		if err != nil {
			platformerrors.WriteUnauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set(principalKey, v.Principal(c, claims))
		c.Next()
	}
}

// PrincipalFrom returns the principal stored by the middleware.
func PrincipalFrom(c *gin.Context) (identity.Principal, bool) {
	val, ok := c.Get(principalKey)
	if !ok {
		return identity.Principal{}, false
	}
	p, ok := val.(identity.Principal)
	return p, ok
}

func bearerToken(header string) string {
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
