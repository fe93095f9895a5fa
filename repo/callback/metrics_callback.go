package callback

import (
	"context"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"

	"github.com/hildam/indus-flow-go/repo/metrics"
)

type startKey struct{}

// MetricsCallback 记录每个 agent 步骤的耗时与失败次数
type MetricsCallback struct {
	// Observe 默认为 metrics.ObserveStep
	Observe func(step string, elapsed time.Duration, err error)
}

// NewMetricsCallback 创建指标回调
func NewMetricsCallback() *MetricsCallback {
	return &MetricsCallback{Observe: metrics.ObserveStep}
}

func (cb *MetricsCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !isAgentStep(info) {
		return ctx
	}
	return context.WithValue(ctx, startKey{}, time.Now())
}

func (cb *MetricsCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if isAgentStep(info) {
		cb.observe(ctx, info.Name, nil)
	}
	return ctx
}

func (cb *MetricsCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if isAgentStep(info) {
		cb.observe(ctx, info.Name, err)
	}
	return ctx
}

func (cb *MetricsCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}

func (cb *MetricsCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	defer output.Close()
	return ctx
}

func (cb *MetricsCallback) observe(ctx context.Context, step string, err error) {
	var elapsed time.Duration
	if start, ok := ctx.Value(startKey{}).(time.Time); ok {
		elapsed = time.Since(start)
	}
	observe := cb.Observe
	if observe == nil {
		observe = metrics.ObserveStep
	}
	observe(step, elapsed, err)
}
