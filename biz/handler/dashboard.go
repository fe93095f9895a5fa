package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// ExecutiveDashboard 管理层看板
func (h *Handler) ExecutiveDashboard(ctx context.Context, c *app.RequestContext) {
	metrics, err := h.equipment.DashboardMetrics(ctx)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(consts.StatusOK, metrics)
}

// OperatorDashboard 操作员看板
func (h *Handler) OperatorDashboard(ctx context.Context, c *app.RequestContext) {
	metrics, err := h.equipment.OperatorMetrics(ctx)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(consts.StatusOK, metrics)
}

func (h *Handler) ListAlerts(ctx context.Context, c *app.RequestContext) {
	resolved, err := parseResolved(c)
	if err != nil {
		detail(c, consts.StatusBadRequest, "resolved must be a boolean")
		return
	}
	alerts, err := h.equipment.ListAlerts(ctx, "", resolved)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(consts.StatusOK, alerts)
}

func (h *Handler) ResolveAlert(ctx context.Context, c *app.RequestContext) {
	id := c.Param("id")
	if err := h.equipment.ResolveAlert(ctx, id); err != nil {
		fail(c, err, "Alert not found")
		return
	}
	c.JSON(consts.StatusOK, utils.H{"message": "Alert resolved successfully", "alert_id": id})
}
