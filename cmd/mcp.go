package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/cloudwego/eino/schema"
	"github.com/spf13/cobra"

	"github.com/hildam/indus-flow-go/entity/consts"
	"github.com/hildam/indus-flow-go/repo/mcp"
)

var listTools bool

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "通过标准输入输出提供 MCP 服务",
	RunE:  runMCP,
}

func init() {
	mcpCmd.Flags().BoolVar(&listTools, "list-tools", false, "只打印已注册的工具及参数，不启动服务")
}

func runMCP(cmd *cobra.Command, args []string) error {
	in, err := mustInfra()
	if err != nil {
		return err
	}
	defer in.Close(cmd.Context())

	s := mcp.NewServer(in.Orchestrator, in.Data, consts.Version)
	if listTools {
		infos, err := mcp.DescribeTools(cmd.Context(), s)
		if err != nil {
			return err
		}
		return printTools(cmd.OutOrStdout(), infos)
	}
	return mcp.ServeStdio(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout())
}

// printTools 每个工具输出一行名称与描述，随后一行参数 schema
func printTools(w io.Writer, infos []*schema.ToolInfo) error {
	for _, info := range infos {
		params := []byte("{}")
		if info.ParamsOneOf != nil {
			s, err := info.ParamsOneOf.ToOpenAPIV3()
			if err != nil {
				return fmt.Errorf("tool %s: %w", info.Name, err)
			}
			if params, err = json.Marshal(s); err != nil {
				return fmt.Errorf("tool %s: %w", info.Name, err)
			}
		}
		if _, err := fmt.Fprintf(w, "%s\t%s\n  %s\n", info.Name, info.Desc, params); err != nil {
			return err
		}
	}
	return nil
}
