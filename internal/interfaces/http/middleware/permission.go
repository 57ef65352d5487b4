package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/erp/returns/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Back office permissions. Portal tokens never carry any of them.
const (
	PermReturnOrderRead    = "return_order:read"
	PermReturnOrderConfirm = "return_order:confirm"
	PermReturnOrderCancel  = "return_order:cancel"
	PermTransferRead       = "transfer:read"
	PermTransferValidate   = "transfer:validate"
	PermTransferCancel     = "transfer:cancel"
)

type PermissionConfig struct {
	// Logger receives a warning for every denied request when set.
	Logger *zap.Logger
}

func RequirePermission(permission string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permission)
}

func RequireAnyPermission(permissions ...string) gin.HandlerFunc {
	return RequireAnyPermissionWithConfig(PermissionConfig{}, permissions...)
}

// RequireAnyPermissionWithConfig lets a staff request through when its token
// holds at least one of permissions. It must run after the JWT middleware:
// a request without claims is answered with 401, a portal session or a staff
// token lacking every permission with 403.
func RequireAnyPermissionWithConfig(cfg PermissionConfig, permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if !claims.IsPortalSession() && slices.ContainsFunc(permissions, claims.HasPermission) {
			c.Next()
			return
		}

		if cfg.Logger != nil {
			cfg.Logger.Warn("Permission denied",
				zap.String("user_id", claims.UserID),
				zap.Bool("portal_session", claims.IsPortalSession()),
				zap.Strings("required", permissions),
				zap.String("path", c.FullPath()),
			)
		}
		abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Missing permission: "+strings.Join(permissions, " or "))
	}
}

func HasPermission(c *gin.Context, permission string) bool {
	return HasAnyPermission(c, permission)
}

// HasAnyPermission reports whether the request's token holds one of
// permissions. It is false for anonymous requests.
func HasAnyPermission(c *gin.Context, permissions ...string) bool {
	claims := GetJWTClaims(c)
	return claims != nil && slices.ContainsFunc(permissions, claims.HasPermission)
}
