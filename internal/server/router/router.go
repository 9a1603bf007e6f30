package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/server/handlers"
	"github.com/techsolutionsutrecht/offerte/internal/server/middleware"
)

// Handlers groups the HTTP handlers served by the router.
type Handlers struct {
	Email  *handlers.EmailHandler
	Auth   *handlers.AuthHandler
	Admin  *handlers.AdminHandler
	Viewer *handlers.ViewerHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, validator middleware.TokenValidator, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.POST("/send-email", h.Email.Send)
	api.POST("/auth/login", h.Auth.Login)

	viewer := api.Group("/invoices/:id", middleware.ViewerSession())
	viewer.GET("", h.Viewer.Show)
	viewer.POST("/verification/email", h.Viewer.SubmitEmail)
	viewer.POST("/verification/resend", h.Viewer.Resend)
	viewer.POST("/verification/code", h.Viewer.SubmitCode)
	viewer.POST("/verification/change-email", h.Viewer.ChangeEmail)
	viewer.GET("/document", h.Viewer.Document)
	viewer.POST("/approve", h.Viewer.Approve)
	viewer.GET("/pdf", h.Viewer.PDF)

	admin := api.Group("/admin", middleware.RequireOperator(validator))
	admin.GET("/invoices", h.Admin.List)
	admin.POST("/invoices", h.Admin.Create)
	admin.GET("/invoices/:id", h.Admin.Get)
	admin.PUT("/invoices/:id", h.Admin.Update)
	admin.DELETE("/invoices/:id", h.Admin.Delete)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}
