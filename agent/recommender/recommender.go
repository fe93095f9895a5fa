package recommender

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/hildam/indus-flow-go/agent/comm"
	"github.com/hildam/indus-flow-go/entity/consts"
	entity "github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/template"
)

// recommenderImpl 建议者
type recommenderImpl struct {
	llm      model.BaseChatModel
	maxLimit int
}

// NewRecommender 创建实例
func NewRecommender(llm model.BaseChatModel, maxLimit int) *recommenderImpl {
	return &recommenderImpl{llm: llm, maxLimit: maxLimit}
}

// Name 节点名称
func (r *recommenderImpl) Name() string {
	return consts.Recommendation
}

// Run 结合分析与文档生成维护建议
func (r *recommenderImpl) Run(ctx context.Context, state *entity.State) error {
	sysPrompt, err := template.GetPromptTemplate(ctx, r.Name())
	if err != nil {
		slog.Error("recommender failed, get prompt template fail, err = %v", err)
		return err
	}

	output, err := comm.Generate(ctx, r.llm, sysPrompt, buildContext(state), r.maxLimit)
	if err != nil {
		slog.Error("recommender failed, generate fail, err = %v", err)
		return err
	}

	state.Recommendations = ParseRecommendations(output.Content)
	state.AppendMessage(schema.AssistantMessage(consts.RecommendationPrefix+output.Content, nil))
	slog.Info("recommender info, parsed %d recommendations", len(state.Recommendations))
	return nil
}

// buildContext 拼接问题、分析结果和前两篇文档
func buildContext(state *entity.State) string {
	parts := []string{fmt.Sprintf("Query: %s", state.Query)}
	if state.HasAnalysis() {
		parts = append(parts, fmt.Sprintf("\nAnalysis: %s", state.AnalysisResult))
	}
	if state.HasDocs() {
		docs := state.RetrievedDocs
		if len(docs) > consts.RecommendDocLimit {
			docs = docs[:consts.RecommendDocLimit]
		}
		lines := make([]string, 0, len(docs))
		for _, doc := range docs {
			lines = append(lines, fmt.Sprintf("- %s: %s", doc.Source, comm.Truncate(doc.Content, consts.RecommendContentSize)))
		}
		parts = append(parts, "\nRelevant Documentation:\n"+strings.Join(lines, "\n"))
	}
	return strings.Join(parts, "\n")
}

// ParseRecommendations 只保留以数字或短横线开头的非空行
func ParseRecommendations(content string) []string {
	out := make([]string, 0)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		first := []rune(line)[0]
		if unicode.IsDigit(first) || first == '-' {
			out = append(out, line)
		}
	}
	return out
}
