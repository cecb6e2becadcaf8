package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 认证域核心指标
var (
	AuthTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auth_center",
			Name:      "auth_requests_total",
			Help:      "Auth operations by op and result.",
		},
		[]string{"op", "result"},
	)

	IssuedTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "auth_center",
			Name:      "issued_tokens_total",
			Help:      "Issued tokens by kind.",
		},
		[]string{"kind"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "auth_center",
			Name:      "active_ws_sessions",
			Help:      "Currently registered WebSocket sessions.",
		},
	)
)
