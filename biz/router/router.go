package router

import (
	"github.com/cloudwego/hertz/pkg/common/adaptor"
	"github.com/cloudwego/hertz/pkg/route"

	"github.com/hildam/indus-flow-go/biz/handler"
	"github.com/hildam/indus-flow-go/entity/conf"
	"github.com/hildam/indus-flow-go/repo/metrics"
)

// APIPrefix 业务接口前缀
const APIPrefix = "/api/v1"

// Register 注册中间件与全部路由
func Register(r *route.Engine, h *handler.Handler, cfg conf.ServerConfig) {
	r.Use(AccessLog(), Metrics(), CORS(cfg.CORSOrigins))

	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/metrics", adaptor.HertzHandler(metrics.Handler()))

	api := r.Group(APIPrefix)
	api.GET("/schema", h.Schema)

	equipment := api.Group("/equipment")
	equipment.GET("/", h.ListEquipment)
	equipment.GET("/status/:status", h.ListEquipmentByStatus)
	equipment.GET("/:id", h.GetEquipment)
	equipment.GET("/:id/alerts", h.ListEquipmentAlerts)
	equipment.GET("/:id/maintenance", h.ListEquipmentMaintenance)

	dashboard := api.Group("/dashboard")
	dashboard.GET("/executive", h.ExecutiveDashboard)
	dashboard.GET("/operator", h.OperatorDashboard)
	dashboard.GET("/alerts", h.ListAlerts)
	dashboard.PATCH("/alerts/:id/resolve", h.ResolveAlert)

	ai := api.Group("/ai")
	ai.POST("/query", h.Query)
	ai.POST("/query/stream", h.QueryStream)
	ai.GET("/health", h.AIHealth)
	ai.GET("/runs/:id", h.GetRun)
}
