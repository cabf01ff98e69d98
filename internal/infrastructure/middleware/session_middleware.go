package middleware

import (
	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionCookieName is the cookie carrying the session secret.
const SessionCookieName = "s"

// identityKey is the gin context key the resolved identity is stored under.
const identityKey = "identity"

// SessionMiddleware resolves the connection identity from the session
// cookie. Requests without a valid session get the open-access identity,
// whose role comes from configuration; deployments behind a private network
// run it as admin, public ones as monitor.
func SessionMiddleware(tokens ports.TokenService, openAccessRole domain.Role, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := domain.Identity{Role: openAccessRole}

		if secret, err := c.Cookie(SessionCookieName); err == nil && secret != "" {
			resolved, err := tokens.ValidateSession(c.Request.Context(), secret)
			if err == nil {
				identity = *resolved
			} else {
				logger.Debug("ignoring invalid session cookie", zap.Error(err))
			}
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// IdentityFromContext returns the identity attached by SessionMiddleware.
func IdentityFromContext(c *gin.Context) domain.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(domain.Identity); ok {
			return identity
		}
	}
	return domain.Identity{}
}
