package router

import (
	"context"
	"slices"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/hertz-contrib/cors"

	"github.com/hildam/indus-flow-go/repo/metrics"
)

const unmatchedPath = "unmatched"

// CORS 允许配置中的来源跨域访问，"*" 表示任意来源，未配置来源时不启用
func CORS(origins []string) app.HandlerFunc {
	if len(origins) == 0 {
		return func(ctx context.Context, c *app.RequestContext) { c.Next(ctx) }
	}
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// Metrics 按路由模板记录请求数
func Metrics() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		c.Next(ctx)
		path := c.FullPath()
		if path == "" {
			path = unmatchedPath
		}
		metrics.ObserveHTTP(string(c.Method()), path, c.Response.StatusCode())
	}
}

// AccessLog 记录请求日志
func AccessLog() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		slog.Info("access log, method = %s, path = %s, status = %d, cost = %v",
			c.Method(), c.Path(), c.Response.StatusCode(), time.Since(start))
	}
}
