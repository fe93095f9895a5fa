package router

import (
	"context"

	"github.com/HildaM/logs/slog"

	"github.com/hildam/indus-flow-go/agent/comm"
	"github.com/hildam/indus-flow-go/entity/consts"
	"github.com/hildam/indus-flow-go/entity/model"
)

var (
	// analysisWords 命中后交给分析者
	analysisWords = []string{"why", "cause", "analyze", "explain"}
	// retrievalWords 命中后直接交给检索者
	retrievalWords = []string{"manual", "documentation", "procedure", "history"}
)

// routerImpl 路由者，不调用模型，只根据关键词决定下一步
type routerImpl struct{}

// NewRouter 创建实例
func NewRouter() *routerImpl {
	return &routerImpl{}
}

// Name 节点名称
func (r *routerImpl) Name() string {
	return consts.Router
}

// Run 根据问题关键词设置 NextAgent
func (r *routerImpl) Run(ctx context.Context, state *model.State) error {
	switch {
	case comm.ContainsAny(state.Query, analysisWords):
		state.NextAgent = consts.Analysis
	case comm.ContainsAny(state.Query, retrievalWords):
		state.NextAgent = consts.Retrieval
	default:
		state.NextAgent = consts.Analysis
	}

	slog.Info("router info, directing to %s agent", state.NextAgent)
	return nil
}

// Next 路由决策，未设置时默认交给分析者
func Next(ctx context.Context, state *model.State) string {
	if state.NextAgent == "" {
		return consts.Analysis
	}
	return state.NextAgent
}
