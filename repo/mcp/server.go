package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/HildaM/logs/slog"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hildam/indus-flow-go/agent"
	"github.com/hildam/indus-flow-go/entity/consts"
	"github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/data"
)

// MCP 工具名
const (
	ToolIndustrialQuery = "industrial_query"
	ToolEquipmentStatus = "equipment_status"
)

// Querier 执行自然语言查询
type Querier interface {
	ProcessQuery(ctx context.Context, query, equipmentID string, opts ...agent.QueryOption) *model.QueryResult
}

// EquipmentReader 读取设备状态
type EquipmentReader interface {
	GetEquipment(ctx context.Context, id string) (*model.Equipment, error)
	ListAlerts(ctx context.Context, equipmentID string, resolved *bool) ([]model.Alert, error)
}

// EquipmentStatus equipment_status 工具的返回
type EquipmentStatus struct {
	Equipment  *model.Equipment `json:"equipment"`
	OpenAlerts []model.Alert    `json:"open_alerts"`
}

type handler struct {
	querier   Querier
	equipment EquipmentReader
}

// NewServer 创建 MCP 服务端，注册查询与设备状态两个工具
func NewServer(querier Querier, equipment EquipmentReader, version string) *server.MCPServer {
	h := &handler{querier: querier, equipment: equipment}

	s := server.NewMCPServer(
		consts.AppName,
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	s.AddTool(mcpgo.NewTool(ToolIndustrialQuery,
		mcpgo.WithDescription("Ask the industrial monitoring agents a question about equipment, maintenance or documentation"),
		mcpgo.WithString("query", mcpgo.Required(), mcpgo.Description("Natural language question")),
		mcpgo.WithString("equipment_id", mcpgo.Description("Equipment the question is about, e.g. PUMP-007")),
	), h.industrialQuery)
	s.AddTool(mcpgo.NewTool(ToolEquipmentStatus,
		mcpgo.WithDescription("Get the current status, metrics and open alerts of a piece of equipment"),
		mcpgo.WithString("equipment_id", mcpgo.Required(), mcpgo.Description("Equipment id, e.g. TURB-003")),
	), h.equipmentStatus)
	return s
}

// ServeStdio 通过标准输入输出提供服务，直到 ctx 结束或输入关闭
func ServeStdio(ctx context.Context, s *server.MCPServer, in io.Reader, out io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, in, out)
}

func (h *handler) industrialQuery(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil || query == "" {
		return mcpgo.NewToolResultError("query is required"), nil
	}
	equipmentID := req.GetString("equipment_id", "")

	result := h.querier.ProcessQuery(ctx, query, equipmentID)
	out, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal query result: %w", err)
	}
	return mcpgo.NewToolResultText(string(out)), nil
}

func (h *handler) equipmentStatus(ctx context.Context, req mcpgo.CallToolRequest) (*mcpgo.CallToolResult, error) {
	id, err := req.RequireString("equipment_id")
	if err != nil || id == "" {
		return mcpgo.NewToolResultError("equipment_id is required"), nil
	}

	eq, err := h.equipment.GetEquipment(ctx, id)
	if errors.Is(err, data.ErrNotFound) {
		return mcpgo.NewToolResultError("Equipment not found"), nil
	}
	if err != nil {
		slog.Error("equipmentStatus failed, get equipment fail, id = %s, err = %v", id, err)
		return nil, err
	}
	unresolved := false
	alerts, err := h.equipment.ListAlerts(ctx, id, &unresolved)
	if err != nil {
		slog.Error("equipmentStatus failed, list alerts fail, id = %s, err = %v", id, err)
		return nil, err
	}

	out, err := json.Marshal(&EquipmentStatus{Equipment: eq, OpenAlerts: alerts})
	if err != nil {
		return nil, fmt.Errorf("marshal equipment status: %w", err)
	}
	return mcpgo.NewToolResultText(string(out)), nil
}
