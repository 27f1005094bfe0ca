package allocator

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/etnz/cryptofund"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries the id of an allocation request, from the client to the server logs.
const RequestIDHeader = "X-Request-ID"

// NewRouter returns the HTTP handler of the allocation service.
//
//	POST /calculate  computes an allocation
//	GET  /api        liveness message
func NewRouter(logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.L()
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), cors())

	h := &handler{log: logger}
	engine.POST("/calculate", h.calculate)
	engine.GET("/api", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Hello from the allocation service!"})
	})
	return engine
}

type handler struct {
	log *zap.Logger
}

func (h *handler) calculate(c *gin.Context) {
	log := h.log.With(zap.String("request_id", c.GetString(RequestIDHeader)))

	var req cryptofund.AllocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("invalid JSON in request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON format: " + err.Error()})
		return
	}

	res, err := allocate(req)
	if errors.Is(err, ErrInvalidParams) {
		log.Warn("rejected allocation request", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Error("allocation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	log.Info("allocation computed",
		zap.Int("coins", len(req.Coins)),
		zap.Float64("asset_cap", req.AssetCap),
		zap.Float64("total_capital", req.TotalCapital))
	c.JSON(http.StatusOK, res)
}

// requestID makes sure every request has an id, reusing the caller's one if any.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// cors lets browser front-ends on any origin call the service.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			origin = "*"
		}
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", "*")
		c.Header("Access-Control-Allow-Headers", "*")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ListenAndServe runs the service on addr until ctx is done.
func ListenAndServe(ctx context.Context, addr string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.L()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("allocation service listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
