package handler

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/cloudwego/hertz/pkg/protocol/sse"

	"github.com/hildam/indus-flow-go/agent"
	"github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/callback"
)

// EventResult 流式接口最后推送的结果事件
const EventResult = "result"

// bindQuery 解析查询请求，失败时已写入 400 响应
func (h *Handler) bindQuery(c *app.RequestContext) (*model.QueryRequest, bool) {
	if h.queries == nil {
		detail(c, consts.StatusServiceUnavailable, "AI services not initialized")
		return nil, false
	}
	req := &model.QueryRequest{}
	if err := json.Unmarshal(c.Request.Body(), req); err != nil {
		detail(c, consts.StatusBadRequest, "invalid request body: "+err.Error())
		return nil, false
	}
	if strings.TrimSpace(req.Query) == "" {
		detail(c, consts.StatusBadRequest, "query must not be empty")
		return nil, false
	}
	return req, true
}

// Query 执行一次 AI 查询，失败时返回降级结果而不是错误码
func (h *Handler) Query(ctx context.Context, c *app.RequestContext) {
	req, ok := h.bindQuery(c)
	if !ok {
		return
	}
	c.JSON(consts.StatusOK, h.queries.ProcessQuery(ctx, req.Query, req.EquipmentID))
}

// QueryStream 通过 SSE 推送各步骤事件，最后推送结果
func (h *Handler) QueryStream(ctx context.Context, c *app.RequestContext) {
	req, ok := h.bindQuery(c)
	if !ok {
		return
	}

	runID := agent.NewRunID()
	w := sse.NewWriter(c)
	defer w.Close()

	result := h.queries.ProcessQuery(ctx, req.Query, req.EquipmentID,
		agent.WithRunID(runID),
		agent.WithQueryCallbacks(&callback.LoggerCallback{ID: runID, SSE: w}))

	data, err := json.Marshal(result)
	if err != nil {
		slog.Error("QueryStream failed, marshal result fail, run_id = %s, err = %v", runID, err)
		return
	}
	if err = w.WriteEvent(runID, EventResult, data); err != nil {
		slog.Error("QueryStream failed, write result fail, run_id = %s, err = %v", runID, err)
	}
}

// AIHealth AI 服务状态
func (h *Handler) AIHealth(ctx context.Context, c *app.RequestContext) {
	if h.queries == nil {
		c.JSON(consts.StatusOK, utils.H{"status": "unhealthy", "message": "AI services not initialized"})
		return
	}
	c.JSON(consts.StatusOK, utils.H{"status": "healthy", "message": "AI services operational"})
}

// GetRun 查询存档，不存在或未配置存储时返回 404
func (h *Handler) GetRun(ctx context.Context, c *app.RequestContext) {
	if h.queries == nil {
		detail(c, consts.StatusNotFound, "Run not found")
		return
	}
	record, ok, err := h.queries.GetRun(ctx, c.Param("id"))
	if err != nil {
		fail(c, err, "")
		return
	}
	if !ok {
		detail(c, consts.StatusNotFound, "Run not found")
		return
	}
	c.JSON(consts.StatusOK, record)
}
