package router

import (
	"github.com/erp/returns/internal/infrastructure/auth"
	"github.com/erp/returns/internal/interfaces/http/handler"
	"github.com/erp/returns/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers are the HTTP handlers of the return workflow
type Handlers struct {
	Portal      *handler.PortalReturnHandler
	ReturnOrder *handler.ReturnOrderHandler
	Transfer    *handler.TransferHandler
}

// PortalRoutes are the customer-facing routes. Sessions are optional here:
// the handlers redirect anonymous visitors to the login page.
func PortalRoutes(h *handler.PortalReturnHandler, jwtService *auth.JWTService) *DomainGroup {
	g := NewDomainGroup("portal", "/portal")
	g.Use(middleware.OptionalJWTAuthMiddleware(jwtService), middleware.TracingAttributeInjector())
	g.POST("/returns", h.Submit)
	g.GET("/returns", h.List)
	g.GET("/returns/count", h.Count)
	g.GET("/returns/:id", h.Get)
	return g
}

// TradeRoutes are the back office return order routes
func TradeRoutes(h *handler.ReturnOrderHandler, jwtService *auth.JWTService, log *zap.Logger) *DomainGroup {
	perm := permissionGuard(log)
	g := NewDomainGroup("trade", "/trade")
	g.Use(staffAuth(jwtService, log), middleware.TracingAttributeInjector())
	g.GET("/return-orders", perm(middleware.PermReturnOrderRead), h.List)
	g.GET("/return-orders/:id", perm(middleware.PermReturnOrderRead), h.GetByID)
	g.POST("/return-orders/:id/confirm", perm(middleware.PermReturnOrderConfirm), h.Confirm)
	g.POST("/return-orders/:id/cancel", perm(middleware.PermReturnOrderCancel), h.Cancel)
	g.GET("/sales-orders/:id/return-count", perm(middleware.PermReturnOrderRead), h.CountBySalesOrder)
	return g
}

// InventoryRoutes expose transfers to warehouse staff
func InventoryRoutes(h *handler.TransferHandler, jwtService *auth.JWTService, log *zap.Logger) *DomainGroup {
	perm := permissionGuard(log)
	g := NewDomainGroup("inventory", "/inventory")
	g.Use(staffAuth(jwtService, log), middleware.TracingAttributeInjector())
	g.GET("/transfers/:id", perm(middleware.PermTransferRead), h.GetByID)
	g.POST("/transfers/:id/validate", perm(middleware.PermTransferValidate), h.Validate)
	g.POST("/transfers/:id/cancel", perm(middleware.PermTransferCancel), h.Cancel)
	return g
}

// RegisterReturnRoutes registers every route group of the return workflow
func RegisterReturnRoutes(r *Router, h Handlers, jwtService *auth.JWTService, log *zap.Logger) *Router {
	return r.Register(
		PortalRoutes(h.Portal, jwtService),
		TradeRoutes(h.ReturnOrder, jwtService, log),
		InventoryRoutes(h.Transfer, jwtService, log),
	)
}

func staffAuth(jwtService *auth.JWTService, log *zap.Logger) gin.HandlerFunc {
	cfg := middleware.DefaultJWTConfig(jwtService)
	cfg.Logger = log
	return middleware.JWTAuthMiddlewareWithConfig(cfg)
}

func permissionGuard(log *zap.Logger) func(string) gin.HandlerFunc {
	cfg := middleware.PermissionConfig{Logger: log}
	return func(permission string) gin.HandlerFunc {
		return middleware.RequireAnyPermissionWithConfig(cfg, permission)
	}
}
