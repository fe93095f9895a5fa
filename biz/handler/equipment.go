package handler

import (
	"context"
	"strconv"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/hildam/indus-flow-go/entity/model"
)

const (
	defaultMaintenanceLimit = 10
	maxMaintenanceLimit     = 100
)

func (h *Handler) ListEquipment(ctx context.Context, c *app.RequestContext) {
	list, err := h.equipment.ListEquipment(ctx)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(consts.StatusOK, list)
}

func (h *Handler) GetEquipment(ctx context.Context, c *app.RequestContext) {
	eq, err := h.equipment.GetEquipment(ctx, c.Param("id"))
	if err != nil {
		fail(c, err, "Equipment not found")
		return
	}
	c.JSON(consts.StatusOK, eq)
}

func (h *Handler) ListEquipmentByStatus(ctx context.Context, c *app.RequestContext) {
	status := model.EquipmentStatus(c.Param("status"))
	if !status.Valid() {
		detail(c, consts.StatusBadRequest, "Invalid status: "+string(status))
		return
	}
	list, err := h.equipment.ListEquipmentByStatus(ctx, status)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(consts.StatusOK, list)
}

// ListEquipmentAlerts 设备告警，设备不存在时返回 404
func (h *Handler) ListEquipmentAlerts(ctx context.Context, c *app.RequestContext) {
	resolved, err := parseResolved(c)
	if err != nil {
		detail(c, consts.StatusBadRequest, "resolved must be a boolean")
		return
	}
	id := c.Param("id")
	if _, err = h.equipment.GetEquipment(ctx, id); err != nil {
		fail(c, err, "Equipment not found")
		return
	}
	alerts, err := h.equipment.ListAlerts(ctx, id, resolved)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(consts.StatusOK, alerts)
}

// ListEquipmentMaintenance 设备维护记录，limit 取值 1..100
func (h *Handler) ListEquipmentMaintenance(ctx context.Context, c *app.RequestContext) {
	limit := defaultMaintenanceLimit
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxMaintenanceLimit {
			detail(c, consts.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}
	id := c.Param("id")
	if _, err := h.equipment.GetEquipment(ctx, id); err != nil {
		fail(c, err, "Equipment not found")
		return
	}
	logs, err := h.equipment.ListMaintenanceLogs(ctx, id, limit)
	if err != nil {
		fail(c, err, "")
		return
	}
	c.JSON(consts.StatusOK, logs)
}
