package callback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/protocol/sse"

	"github.com/hildam/indus-flow-go/entity/consts"
	"github.com/hildam/indus-flow-go/entity/model"
)

// 步骤事件类型
const (
	EventStepStart = "step_start"
	EventStepEnd   = "step_end"
	EventStepError = "step_error"
)

// messageCountKey 步骤开始时执行记录的条数
type messageCountKey struct{}

// LoggerCallback 日志回调，只处理 agent 步骤事件
type LoggerCallback struct {
	ID  string      // 查询ID，用于标识当前查询
	SSE *sse.Writer // SSE写入器，用于向客户端推送步骤事件
	Out chan string // 输出通道，用于异步传递步骤进度
}

// pushF 推送步骤事件到客户端
func (cb *LoggerCallback) pushF(ctx context.Context, event string, data *model.StepEvent) error {
	dataByte, err := json.Marshal(data)
	if err != nil {
		slog.Error("pushF failed, marshal data err = %+v, data = %+v", err, data)
		return err
	}
	if cb.SSE != nil {
		if err = cb.SSE.WriteEvent("", event, dataByte); err != nil {
			slog.Error("pushF failed, write sse event err = %v, event = %s", err, event)
		}
	}
	if cb.Out != nil {
		cb.Out <- fmt.Sprintf("[%s] %s %s", data.Agent, data.Phase, data.Content)
	}
	return err
}

// OnStart 步骤开始执行时的回调方法
func (cb *LoggerCallback) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if !isAgentStep(info) {
		return ctx
	}
	slog.Info("agent step start, run_id = %s, agent = %s", cb.ID, info.Name)
	_ = cb.pushF(ctx, EventStepStart, &model.StepEvent{RunID: cb.ID, Agent: info.Name, Phase: EventStepStart})
	if state, ok := input.(*model.State); ok {
		ctx = context.WithValue(ctx, messageCountKey{}, len(state.Messages))
	}
	return ctx
}

// OnEnd 步骤执行结束时的回调方法，推送本步骤追加的最后一条执行记录，未追加时内容为空
func (cb *LoggerCallback) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if !isAgentStep(info) {
		return ctx
	}
	content := ""
	if state, ok := output.(*model.State); ok && info.Name != consts.Router {
		before, started := ctx.Value(messageCountKey{}).(int)
		if n := len(state.Messages); started && n > before {
			content = state.Messages[n-1].Content
		}
	} else if ok {
		content = "next = " + state.NextAgent
	}
	slog.Info("agent step end, run_id = %s, agent = %s", cb.ID, info.Name)
	_ = cb.pushF(ctx, EventStepEnd, &model.StepEvent{RunID: cb.ID, Agent: info.Name, Phase: EventStepEnd, Content: content})
	return ctx
}

// OnError 步骤执行出错时的回调方法
func (cb *LoggerCallback) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if !isAgentStep(info) {
		return ctx
	}
	slog.Error("agent step failed, run_id = %s, agent = %s, err = %v", cb.ID, info.Name, err)
	_ = cb.pushF(ctx, EventStepError, &model.StepEvent{RunID: cb.ID, Agent: info.Name, Phase: EventStepError, Content: err.Error()})
	return ctx
}

// OnStartWithStreamInput 步骤不使用流式输入，仅关闭输入流
func (cb *LoggerCallback) OnStartWithStreamInput(ctx context.Context, info *callbacks.RunInfo,
	input *schema.StreamReader[callbacks.CallbackInput]) context.Context {
	defer input.Close()
	return ctx
}

// OnEndWithStreamOutput 步骤不使用流式输出，仅关闭输出流
func (cb *LoggerCallback) OnEndWithStreamOutput(ctx context.Context, info *callbacks.RunInfo,
	output *schema.StreamReader[callbacks.CallbackOutput]) context.Context {
	defer output.Close()
	return ctx
}

func isAgentStep(info *callbacks.RunInfo) bool {
	return info != nil && info.Type == consts.AgentStepType
}
