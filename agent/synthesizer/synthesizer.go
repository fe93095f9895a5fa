package synthesizer

import (
	"context"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/hildam/indus-flow-go/agent/comm"
	"github.com/hildam/indus-flow-go/entity/consts"
	entity "github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/template"
)

// synthesizerImpl 总结者，流程的最后一步
type synthesizerImpl struct {
	llm      model.BaseChatModel
	maxLimit int
}

// NewSynthesizer 创建实例
func NewSynthesizer(llm model.BaseChatModel, maxLimit int) *synthesizerImpl {
	return &synthesizerImpl{llm: llm, maxLimit: maxLimit}
}

// Name 节点名称
func (s *synthesizerImpl) Name() string {
	return consts.Synthesizer
}

// Run 汇总分析与建议，生成最终答案
func (s *synthesizerImpl) Run(ctx context.Context, state *entity.State) error {
	sysPrompt, err := template.GetPromptTemplate(ctx, s.Name())
	if err != nil {
		slog.Error("synthesizer failed, get prompt template fail, err = %v", err)
		return err
	}

	output, err := comm.Generate(ctx, s.llm, sysPrompt, buildContext(state), s.maxLimit)
	if err != nil {
		slog.Error("synthesizer failed, generate fail, err = %v", err)
		return err
	}

	state.AppendMessage(schema.AssistantMessage(consts.FinalAnswerPrefix+output.Content, nil))
	return nil
}

func buildContext(state *entity.State) string {
	var sb strings.Builder
	sb.WriteString("Original Query: " + state.Query + "\n\n")
	if state.HasAnalysis() {
		sb.WriteString("Analysis: " + state.AnalysisResult + "\n\n")
	}
	if state.HasRecommendations() {
		sb.WriteString("Recommendations:\n" + strings.Join(state.Recommendations, "\n"))
	}
	return sb.String()
}
