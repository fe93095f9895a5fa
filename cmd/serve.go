package cmd

import (
	"context"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/spf13/cobra"

	"github.com/hildam/indus-flow-go/biz/handler"
	"github.com/hildam/indus-flow-go/biz/router"
	"github.com/hildam/indus-flow-go/entity/consts"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "启动 HTTP 服务",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	in, err := mustInfra()
	if err != nil {
		return err
	}

	h := server.New(server.WithHostPorts(cfg.Server.Addr))
	h.OnShutdown = append(h.OnShutdown, func(ctx context.Context) {
		if err := in.Close(ctx); err != nil {
			slog.Error("runServe failed, close infra fail, err = %v", err)
		}
	})
	router.Register(h.Engine, handler.New(in.Data, in.Orchestrator, consts.Version), cfg.Server)

	slog.Info("runServe info, listen on %s", cfg.Server.Addr)
	h.Spin()
	return nil
}
