package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	handlers "github.com/oksasatya/postboard/internal/interface/http"
)

// OpsModule serves /healthz and, when enabled, /metrics at the engine root.
type OpsModule struct {
	Health  *handlers.HealthHandler
	Metrics bool
}

func NewOpsModule(h *handlers.HealthHandler, metrics bool) *OpsModule {
	return &OpsModule{Health: h, Metrics: metrics}
}

// RegisterRoot mounts the routes on the engine, outside /api.
func (m *OpsModule) RegisterRoot(e *gin.Engine) {
	e.GET("/healthz", m.Health.Health)
	if m.Metrics {
		e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}
