package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hildam/indus-flow-go/biz/infra"
	"github.com/hildam/indus-flow-go/entity/conf"
	"github.com/hildam/indus-flow-go/entity/consts"
)

var (
	cfgFile string
	cfg     *conf.AppConfig
	// getInfra 懒加载依赖容器，子命令共享同一个实例
	getInfra func() (*infra.Infra, error)
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:     "indus",
	Short:   "工业设备监控多 agent 查询服务",
	Version: consts.Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = conf.Init(cfgFile); err != nil {
			return err
		}
		getInfra = infra.Once(cmd.Context(), cfg)
		return nil
	},
	SilenceUsage: true,
}

// Execute 执行根命令，由 main.main() 调用
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件（默认 ./config.yaml，不存在时只使用默认值与环境变量）")
	rootCmd.AddCommand(serveCmd, queryCmd, seedCmd, mcpCmd)
}

// mustInfra 校验配置后获取依赖容器
func mustInfra() (*infra.Infra, error) {
	if getInfra == nil || cfg == nil {
		return nil, fmt.Errorf("config not loaded")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return getInfra()
}
