package device

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// StatusServer is a minimal HTTP surface alongside the gRPC server: health
// and a JSON snapshot of device state, for tools (a web dashboard, curl)
// that don't want to speak gRPC.
type StatusServer struct {
	srv       *KeyboardServer
	startTime time.Time
	router    *gin.Engine
}

// NewStatusServer wraps srv with a gin router exposing /api/v1/health and
// /api/v1/status.
func NewStatusServer(srv *KeyboardServer) *StatusServer {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &StatusServer{srv: srv, startTime: time.Now(), router: router}

	api := router.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/status", s.handleStatus)

	return s
}

func (s *StatusServer) Handler() http.Handler { return s.router }

func (s *StatusServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "uptime_seconds": int(time.Since(s.startTime).Seconds())})
}

func (s *StatusServer) handleStatus(c *gin.Context) {
	ctx := c.Request.Context()

	info, err := s.srv.GetDeviceInfo(ctx, nil)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	state, err := s.srv.GetState(ctx, nil)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transport": info.Transport,
		"patch":     info.PatchName,
		"profile":   state.Profile,
		"uptime_s":  int(time.Since(s.startTime).Seconds()),
	})
}
