package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pharmacare/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// CapabilityConfig holds configuration for capability middleware
type CapabilityConfig struct {
	// Logger for middleware logging
	Logger *zap.Logger
	// OnDenied is called when access is denied (optional)
	OnDenied func(c *gin.Context, required []identity.Capability)
}

// RequireCapability creates middleware that requires a single capability.
// The caller's role comes from the JWT claims set by the auth middleware.
func RequireCapability(capability identity.Capability) gin.HandlerFunc {
	return RequireAnyCapability(capability)
}

// RequireAnyCapability creates middleware that passes when the caller's role
// holds at least one of the listed capabilities
func RequireAnyCapability(capabilities ...identity.Capability) gin.HandlerFunc {
	return RequireAnyCapabilityWithConfig(CapabilityConfig{}, capabilities...)
}

// RequireAnyCapabilityWithConfig creates capability middleware with custom config
func RequireAnyCapabilityWithConfig(cfg CapabilityConfig, capabilities ...identity.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleStr := GetJWTRole(c)
		if roleStr == "" {
			handleCapabilityDenied(c, cfg, capabilities, "No authentication claims found")
			return
		}

		role := identity.Role(roleStr)
		if !role.IsValid() {
			handleCapabilityDenied(c, cfg, capabilities, "Unknown role in token")
			return
		}

		for _, capability := range capabilities {
			if role.Can(capability) {
				if cfg.Logger != nil {
					cfg.Logger.Debug("Capability check passed",
						zap.String("role", roleStr),
						zap.String("capability", string(capability)),
					)
				}
				c.Next()
				return
			}
		}

		handleCapabilityDenied(c, cfg, capabilities, "Role lacks required capability")
	}
}

func handleCapabilityDenied(c *gin.Context, cfg CapabilityConfig, required []identity.Capability, reason string) {
	if cfg.Logger != nil {
		names := make([]string, len(required))
		for i, capability := range required {
			names[i] = string(capability)
		}
		cfg.Logger.Warn("Capability check failed",
			zap.String("path", c.Request.URL.Path),
			zap.Strings("required", names),
			zap.String("reason", reason),
		)
	}

	if cfg.OnDenied != nil {
		cfg.OnDenied(c, required)
		return
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "You do not have permission to perform this action",
		},
	})
}
