package analyzer

import (
	"context"
	"fmt"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/hildam/indus-flow-go/agent/comm"
	"github.com/hildam/indus-flow-go/entity/consts"
	entity "github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/template"
)

// retrievalWords 分析后仍需查阅文档的关键词
var retrievalWords = []string{"manual", "documentation", "procedure"}

// analyzerImpl 分析者
type analyzerImpl struct {
	llm      model.BaseChatModel
	maxLimit int
}

// NewAnalyzer 创建实例
func NewAnalyzer(llm model.BaseChatModel, maxLimit int) *analyzerImpl {
	return &analyzerImpl{llm: llm, maxLimit: maxLimit}
}

// Name 节点名称
func (a *analyzerImpl) Name() string {
	return consts.Analysis
}

// Run 调用一次模型分析问题，记录分析结果
func (a *analyzerImpl) Run(ctx context.Context, state *entity.State) error {
	sysPrompt, err := template.GetPromptTemplate(ctx, a.Name())
	if err != nil {
		slog.Error("analyzer failed, get prompt template fail, err = %v", err)
		return err
	}

	userInput := fmt.Sprintf("Query: %s\n\nProvide your analysis.", state.Query)
	output, err := comm.Generate(ctx, a.llm, sysPrompt, userInput, a.maxLimit)
	if err != nil {
		slog.Error("analyzer failed, generate fail, err = %v", err)
		return err
	}

	state.AnalysisResult = output.Content
	state.AppendMessage(schema.AssistantMessage(consts.AnalysisPrefix+output.Content, nil))
	slog.Debug("analyzer debug, analysis length is %d", len(output.Content))
	return nil
}

// Next 分析后的路由决策
func Next(ctx context.Context, state *entity.State) string {
	if comm.ContainsAny(state.Query, retrievalWords) {
		return consts.Retrieval
	}
	return consts.Recommendation
}
