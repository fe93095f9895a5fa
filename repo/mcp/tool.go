package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/client"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hildam/indus-flow-go/entity/consts"
)

const initTimeout = 30 * time.Second

// Tool 将 MCP 工具包装为 eino 可调用工具
type Tool struct {
	cli         client.MCPClient      // MCP客户端
	name        string                // 工具名称
	desc        string                // 工具描述
	inputSchema mcpgo.ToolInputSchema // 输入参数Schema
}

var _ tool.InvokableTool = (*Tool)(nil)

// NewInProcessClient 创建直连 MCP 服务端的客户端并完成初始化
func NewInProcessClient(ctx context.Context, s *server.MCPServer) (client.MCPClient, error) {
	cli, err := client.NewInProcessClient(s)
	if err != nil {
		return nil, fmt.Errorf("create in-process client: %w", err)
	}
	if err = cli.Start(ctx); err != nil {
		return nil, fmt.Errorf("start in-process client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	initRequest := mcpgo.InitializeRequest{}
	initRequest.Params.ProtocolVersion = mcpgo.LATEST_PROTOCOL_VERSION
	initRequest.Params.ClientInfo = mcpgo.Implementation{Name: consts.AppName + "-client", Version: "0.1.0"}
	if _, err = cli.Initialize(ctx, initRequest); err != nil {
		_ = cli.Close()
		slog.Error("NewInProcessClient failed, initialize fail, err = %v", err)
		return nil, fmt.Errorf("initialize client: %w", err)
	}
	return cli, nil
}

// LoadTools 列出客户端上的全部工具
func LoadTools(ctx context.Context, cli client.MCPClient) ([]tool.BaseTool, error) {
	resp, err := cli.ListTools(ctx, mcpgo.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("list tools: %w", err)
	}

	tools := make([]tool.BaseTool, 0, len(resp.Tools))
	for _, t := range resp.Tools {
		tools = append(tools, &Tool{cli: cli, name: t.Name, desc: t.Description, inputSchema: t.InputSchema})
		slog.Debug("LoadTools debug, added tool = %s", t.Name)
	}
	return tools, nil
}

// DescribeTools 通过进程内客户端读取服务端注册的工具描述
func DescribeTools(ctx context.Context, s *server.MCPServer) ([]*schema.ToolInfo, error) {
	cli, err := NewInProcessClient(ctx, s)
	if err != nil {
		return nil, err
	}
	defer cli.Close()

	tools, err := LoadTools(ctx, cli)
	if err != nil {
		return nil, err
	}
	infos := make([]*schema.ToolInfo, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// Info 获取工具信息
func (t *Tool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	params, err := toEinoParams(t.inputSchema)
	if err != nil {
		return nil, fmt.Errorf("convert schema of %s: %w", t.name, err)
	}
	return &schema.ToolInfo{Name: t.name, Desc: t.desc, ParamsOneOf: params}, nil
}

// InvokableRun 调用工具，返回文本内容
func (t *Tool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(argumentsInJSON), &args); err != nil {
		return "", fmt.Errorf("unmarshal arguments: %w", err)
	}

	req := mcpgo.CallToolRequest{}
	req.Params.Name = t.name
	req.Params.Arguments = args
	resp, err := t.cli.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("call tool %s: %w", t.name, err)
	}

	text := contentText(resp.Content)
	if resp.IsError {
		return "", fmt.Errorf("tool %s: %s", t.name, text)
	}
	return text, nil
}

// contentText 拼接返回中的文本内容
func contentText(contents []mcpgo.Content) string {
	var text string
	for _, c := range contents {
		if tc, ok := c.(mcpgo.TextContent); ok {
			text += tc.Text
		}
	}
	return text
}

// toEinoParams 将 MCP 的 InputSchema 转换为 eino 参数描述
func toEinoParams(inputSchema mcpgo.ToolInputSchema) (*schema.ParamsOneOf, error) {
	raw, err := json.Marshal(inputSchema)
	if err != nil {
		return nil, err
	}

	var schemaMap map[string]any
	if err = json.Unmarshal(raw, &schemaMap); err != nil {
		return nil, err
	}
	// 缺少 type 的 schema 按 object 处理，缺少 type 的属性按 string 处理
	if _, ok := schemaMap["type"]; !ok {
		schemaMap["type"] = "object"
	}
	if properties, ok := schemaMap["properties"].(map[string]any); ok {
		for _, prop := range properties {
			if propMap, ok := prop.(map[string]any); ok {
				if _, hasType := propMap["type"]; !hasType {
					propMap["type"] = "string"
				}
			}
		}
	}

	fixed, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, err
	}
	openAPISchema := &openapi3.Schema{}
	if err = json.Unmarshal(fixed, openAPISchema); err != nil {
		return nil, err
	}
	return schema.NewParamsOneOfByOpenAPIV3(openAPISchema), nil
}
