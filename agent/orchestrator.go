package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"

	"github.com/hildam/indus-flow-go/agent/comm"
	"github.com/hildam/indus-flow-go/entity/consts"
	entity "github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/checkpoint"
	"github.com/hildam/indus-flow-go/repo/metrics"
)

// Orchestrator 查询编排器，执行 agent 流程并整理结果
type Orchestrator struct {
	workflow *Workflow
	store    checkpoint.Store
	handlers []callbacks.Handler
	maxLimit int
}

// Option 编排器选项
type Option func(o *Orchestrator)

// WithCheckpoint 设置运行记录存储，为 nil 时不保存
func WithCheckpoint(store checkpoint.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithCallbacks 设置对所有查询生效的回调
func WithCallbacks(handlers ...callbacks.Handler) Option {
	return func(o *Orchestrator) {
		o.handlers = append(o.handlers, handlers...)
	}
}

// WithMaxLimitToken 设置单条输入的最大字符数，0 表示不限制
func WithMaxLimitToken(n int) Option {
	return func(o *Orchestrator) {
		o.maxLimit = n
	}
}

// QueryOption 单次查询选项
type QueryOption func(o *queryOptions)

type queryOptions struct {
	handlers []callbacks.Handler
	runID    string
}

// WithQueryCallbacks 设置仅对本次查询生效的回调，例如 SSE 推送
func WithQueryCallbacks(handlers ...callbacks.Handler) QueryOption {
	return func(o *queryOptions) {
		o.handlers = append(o.handlers, handlers...)
	}
}

// WithRunID 指定本次查询的 runID，为空时自动生成
func WithRunID(runID string) QueryOption {
	return func(o *queryOptions) {
		o.runID = runID
	}
}

// NewOrchestrator 创建编排器
func NewOrchestrator(llm model.BaseChatModel, docs retriever.Retriever, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{}
	for _, opt := range opts {
		opt(o)
	}

	var compileOpts []compose.GraphCompileOption
	if o.store != nil {
		compileOpts = append(compileOpts, compose.WithCheckPointStore(o.store))
	}
	workflow, err := NewAgentWorkflow(context.Background(), llm, docs, o.maxLimit, compileOpts...)
	if err != nil {
		slog.Error("NewOrchestrator failed, build workflow fail, err = %v", err)
		return nil, err
	}
	o.workflow = workflow
	return o, nil
}

// NewRunID 生成查询ID
func NewRunID() string {
	return uuid.New().String()
}

// ProcessQuery 执行一次查询，任何失败都转换为降级结果，不返回错误
func (o *Orchestrator) ProcessQuery(ctx context.Context, query, equipmentID string, opts ...QueryOption) (result *entity.QueryResult) {
	qo := &queryOptions{}
	for _, opt := range opts {
		opt(qo)
	}
	if qo.runID == "" {
		qo.runID = NewRunID()
	}

	start := time.Now()
	state := entity.NewState(query, equipmentID)
	handlers := append(append([]callbacks.Handler{}, o.handlers...), qo.handlers...)

	var runErr error
	defer func() {
		if r := recover(); r != nil {
			slog.Error("ProcessQuery panic_recover, run_id = %s, err = %v", qo.runID, r)
			runErr = fmt.Errorf("panic: %v", r)
			result = degradedResult(runErr)
		}
		result.RunID = qo.runID

		outcome := metrics.OutcomeSuccess
		if runErr != nil {
			outcome = metrics.OutcomeError
		}
		metrics.ObserveQuery(outcome, time.Since(start))
		o.saveRun(ctx, qo.runID, state, result, runErr)
	}()

	runOpts := []compose.Option{compose.WithCallbacks(handlers...)}
	if o.store != nil {
		runOpts = append(runOpts, compose.WithCheckPointID(graphCheckPointID(qo.runID)))
	}
	if runErr = o.workflow.Invoke(ctx, state, runOpts...); runErr != nil {
		slog.Error("ProcessQuery failed, run_id = %s, err = %v", qo.runID, runErr)
		return degradedResult(runErr)
	}

	slog.Info("ProcessQuery info, run_id = %s, docs = %d, recommendations = %d",
		qo.runID, len(state.RetrievedDocs), len(state.Recommendations))
	return &entity.QueryResult{
		Answer:          extractAnswer(state.Messages),
		Sources:         extractSources(state.RetrievedDocs),
		Recommendations: append(make([]string, 0, len(state.Recommendations)), state.Recommendations...),
		Confidence:      consts.SuccessConfidence,
		AgentReasoning:  extractReasoning(state),
	}
}

// graphCheckPointID 图自身的断点与运行记录分开存放
func graphCheckPointID(runID string) string {
	return consts.GraphCheckPointPrefix + runID
}

// GetRun 读取运行记录
func (o *Orchestrator) GetRun(ctx context.Context, runID string) (*entity.RunRecord, bool, error) {
	if o.store == nil {
		return nil, false, nil
	}
	data, ok, err := o.store.Get(ctx, runID)
	if err != nil || !ok {
		return nil, false, err
	}
	record := &entity.RunRecord{}
	if err = json.Unmarshal(data, record); err != nil {
		return nil, false, fmt.Errorf("decode run %s: %w", runID, err)
	}
	return record, true, nil
}

// saveRun 保存运行记录，失败只记录日志
func (o *Orchestrator) saveRun(ctx context.Context, runID string, state *entity.State, result *entity.QueryResult, runErr error) {
	if o.store == nil {
		return
	}
	record := &entity.RunRecord{RunID: runID, State: state, Result: result}
	if runErr != nil {
		record.Error = runErr.Error()
	}
	data, err := json.Marshal(record)
	if err != nil {
		slog.Error("saveRun failed, marshal record fail, run_id = %s, err = %v", runID, err)
		return
	}
	if err = o.store.Set(context.WithoutCancel(ctx), runID, data); err != nil {
		slog.Error("saveRun failed, set checkpoint fail, run_id = %s, err = %v", runID, err)
	}
}

// degradedResult 失败时返回的结果
func degradedResult(err error) *entity.QueryResult {
	return &entity.QueryResult{
		Answer:          consts.ErrorAnswer,
		Sources:         []string{},
		Recommendations: []string{},
		Confidence:      0,
		AgentReasoning:  err.Error(),
	}
}

// extractAnswer 从执行记录中取最后一条最终答案
func extractAnswer(messages []*schema.Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		if msg == nil || msg.Role != schema.Assistant {
			continue
		}
		if strings.Contains(msg.Content, consts.FinalAnswerMarker) {
			return strings.TrimPrefix(msg.Content, consts.FinalAnswerPrefix)
		}
	}
	return consts.FallbackAnswer
}

func extractSources(docs []entity.Document) []string {
	sources := make([]string, 0, len(docs))
	for _, doc := range docs {
		sources = append(sources, doc.Source)
	}
	return sources
}

// extractReasoning 拼接各步骤产出的摘要
func extractReasoning(state *entity.State) string {
	var parts []string
	if state.HasAnalysis() {
		parts = append(parts, fmt.Sprintf("Analysis: %s...", comm.Truncate(state.AnalysisResult, consts.ReasoningPreviewSize)))
	}
	if state.HasDocs() {
		parts = append(parts, fmt.Sprintf("Retrieved %d relevant documents", len(state.RetrievedDocs)))
	}
	if state.HasRecommendations() {
		parts = append(parts, fmt.Sprintf("Generated %d recommendations", len(state.Recommendations)))
	}
	if len(parts) == 0 {
		return consts.DirectResponse
	}
	return strings.Join(parts, consts.ReasoningSep)
}
