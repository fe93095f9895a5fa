package callback

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hildam/indus-flow-go/entity/consts"
	"github.com/hildam/indus-flow-go/entity/model"
)

var (
	_ callbacks.Handler = (*LoggerCallback)(nil)
	_ callbacks.Handler = (*MetricsCallback)(nil)
)

func stepInfo(name string) *callbacks.RunInfo {
	return &callbacks.RunInfo{Name: name, Type: consts.AgentStepType, Component: compose.ComponentOfLambda}
}

func TestLoggerCallbackOut(t *testing.T) {
	out := make(chan string, 8)
	cb := &LoggerCallback{ID: "run-1", Out: out}
	ctx := context.Background()

	state := model.NewState("q", "")
	stepCtx := cb.OnStart(ctx, stepInfo(consts.Analysis), state)
	state.AppendMessage(schema.AssistantMessage("Analysis: ok", nil))
	cb.OnEnd(stepCtx, stepInfo(consts.Analysis), state)
	cb.OnError(ctx, stepInfo(consts.Retrieval), errors.New("boom"))
	close(out)

	var lines []string
	for line := range out {
		lines = append(lines, line)
	}
	assert.Equal(t, []string{
		"[analysis] step_start ",
		"[analysis] step_end Analysis: ok",
		"[retrieval] step_error boom",
	}, lines)
}

func TestLoggerCallbackRouter(t *testing.T) {
	out := make(chan string, 1)
	cb := &LoggerCallback{Out: out}
	state := model.NewState("q", "")
	state.NextAgent = consts.Retrieval

	cb.OnEnd(context.Background(), stepInfo(consts.Router), state)
	assert.Equal(t, "[router] step_end next = retrieval", <-out)
}

func TestLoggerCallbackStepWithoutMessage(t *testing.T) {
	out := make(chan string, 4)
	cb := &LoggerCallback{Out: out}
	state := model.NewState("q", "")
	state.AppendMessage(schema.AssistantMessage("Analysis: ok", nil))

	// 检索未命中文档时不追加执行记录，不能回显上一步的内容
	ctx := cb.OnStart(context.Background(), stepInfo(consts.Retrieval), state)
	cb.OnEnd(ctx, stepInfo(consts.Retrieval), state)
	// 没有经过 OnStart 的 ctx 同样不推送内容
	cb.OnEnd(context.Background(), stepInfo(consts.Recommendation), state)
	close(out)

	var lines []string
	for line := range out {
		lines = append(lines, line)
	}
	assert.Equal(t, []string{
		"[retrieval] step_start ",
		"[retrieval] step_end ",
		"[recommendation] step_end ",
	}, lines)
}

func TestLoggerCallbackIgnoresOtherComponents(t *testing.T) {
	out := make(chan string, 1)
	cb := &LoggerCallback{Out: out}

	cb.OnStart(context.Background(), &callbacks.RunInfo{Name: "openai", Component: "ChatModel"}, nil)
	cb.OnStart(context.Background(), &callbacks.RunInfo{Name: consts.GraphName, Component: compose.ComponentOfGraph}, nil)
	assert.Empty(t, out)
}

func TestMetricsCallback(t *testing.T) {
	type observed struct {
		step string
		err  error
	}
	var got []observed
	cb := &MetricsCallback{Observe: func(step string, elapsed time.Duration, err error) {
		assert.GreaterOrEqual(t, elapsed, time.Duration(0))
		got = append(got, observed{step, err})
	}}
	boom := errors.New("boom")

	ctx := cb.OnStart(context.Background(), stepInfo(consts.Analysis), nil)
	cb.OnEnd(ctx, stepInfo(consts.Analysis), nil)
	ctx = cb.OnStart(context.Background(), stepInfo(consts.Retrieval), nil)
	cb.OnError(ctx, stepInfo(consts.Retrieval), boom)
	cb.OnEnd(context.Background(), &callbacks.RunInfo{Name: "openai"}, nil)

	require.Len(t, got, 2)
	assert.Equal(t, observed{consts.Analysis, nil}, got[0])
	assert.Equal(t, observed{consts.Retrieval, boom}, got[1])
}
