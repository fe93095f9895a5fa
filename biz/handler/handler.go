package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/hildam/indus-flow-go/agent"
	"github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/data"
)

// EquipmentService 设备数据
type EquipmentService interface {
	ListEquipment(ctx context.Context) ([]model.Equipment, error)
	GetEquipment(ctx context.Context, id string) (*model.Equipment, error)
	ListEquipmentByStatus(ctx context.Context, status model.EquipmentStatus) ([]model.Equipment, error)
	ListAlerts(ctx context.Context, equipmentID string, resolved *bool) ([]model.Alert, error)
	ListMaintenanceLogs(ctx context.Context, equipmentID string, limit int) ([]model.MaintenanceLog, error)
	DashboardMetrics(ctx context.Context) (*model.DashboardMetrics, error)
	OperatorMetrics(ctx context.Context) (*model.OperatorMetrics, error)
	ResolveAlert(ctx context.Context, alertID string) error
}

// QueryService 自然语言查询
type QueryService interface {
	ProcessQuery(ctx context.Context, query, equipmentID string, opts ...agent.QueryOption) *model.QueryResult
	GetRun(ctx context.Context, runID string) (*model.RunRecord, bool, error)
}

// Handler REST 接口
type Handler struct {
	equipment EquipmentService
	queries   QueryService
	version   string
}

// New 创建接口处理器，queries 为空时 AI 接口返回不可用
func New(equipment EquipmentService, queries QueryService, version string) *Handler {
	return &Handler{equipment: equipment, queries: queries, version: version}
}

// Root 服务信息
func (h *Handler) Root(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{
		"message": "Industrial AI Analytics Platform API",
		"version": h.version,
		"docs":    "/api/v1/schema",
	})
}

// Health 存活检查
func (h *Handler) Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, utils.H{"status": "healthy", "version": h.version})
}

// detail 与错误响应体保持一致的格式
func detail(c *app.RequestContext, code int, msg string) {
	c.JSON(code, utils.H{"detail": msg})
}

// fail 按错误类型返回 404 或 500
func fail(c *app.RequestContext, err error, notFound string) {
	if errors.Is(err, data.ErrNotFound) {
		detail(c, consts.StatusNotFound, notFound)
		return
	}
	detail(c, consts.StatusInternalServerError, err.Error())
}

// parseResolved 解析可选的 resolved 查询参数
func parseResolved(c *app.RequestContext) (*bool, error) {
	raw, ok := c.GetQuery("resolved")
	if !ok || raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
