// Package http provides the HTTP adapter for the ordering services.
// It translates requests into application service calls and service errors
// into the success-envelope responses the storefront expects.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campuseats/ordering/internal/service"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer creates the HTTP server with all routes configured
func NewServer(
	config ServerConfig,
	approvalService *service.ApprovalService,
	cartService *service.CartService,
	vendorService *service.VendorService,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}

	router.Use(gin.Recovery())
	router.Use(server.loggingMiddleware())
	router.Use(metricsMiddleware())
	router.Use(corsMiddleware())

	handlers := NewHandlers(approvalService, cartService, vendorService, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	orderApproval := router.Group("/order-approval")
	{
		orderApproval.POST("/submit/:userId", handlers.SubmitOrder)
		orderApproval.GET("/status/:orderId", handlers.OrderStatus)
		orderApproval.POST("/:orderId/cancel", handlers.CancelOrder)
	}

	vendors := router.Group("/vendors")
	{
		vendors.GET("", handlers.ListVendors)
		vendors.GET("/:vendorId/menu", handlers.VendorMenu)
		vendors.GET("/:vendorId/orders/pending", handlers.PendingOrders)
		vendors.POST("/:vendorId/orders/:orderId/accept", handlers.AcceptOrder)
		vendors.POST("/:vendorId/orders/:orderId/deny", handlers.DenyOrder)
		vendors.POST("/:vendorId/orders/:orderId/ready", handlers.MarkOrderReady)
		vendors.POST("/:vendorId/orders/:orderId/complete", handlers.CompleteOrder)
	}

	cart := router.Group("/cart")
	{
		cart.GET("/:userId", handlers.GetCart)
		cart.PUT("/:userId", handlers.PutCart)
		cart.DELETE("/:userId", handlers.ClearCart)
		cart.POST("/:userId/merge", handlers.MergeGuestCart)
		cart.GET("/:userId/bill", handlers.CartBill)
	}

	return server
}

// Router exposes the gin engine, mainly for handler tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start runs the HTTP server until the listener fails or Shutdown is called
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}

// corsMiddleware adds CORS headers for the browser storefront
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
