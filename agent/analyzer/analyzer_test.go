package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hildam/indus-flow-go/agent/agenttest"
	"github.com/hildam/indus-flow-go/entity/consts"
	"github.com/hildam/indus-flow-go/entity/model"
)

func TestAnalyzerRun(t *testing.T) {
	llm := &agenttest.ChatModel{Default: "Bearing wear is the likely root cause."}
	state := model.NewState("Why is PUMP-007 vibrating?", "PUMP-007")

	require.NoError(t, NewAnalyzer(llm, 0).Run(context.Background(), state))

	assert.Equal(t, "Bearing wear is the likely root cause.", state.AnalysisResult)
	require.Len(t, state.Messages, 2)
	assert.Equal(t, schema.Assistant, state.Messages[1].Role)
	assert.Equal(t, "Analysis: Bearing wear is the likely root cause.", state.Messages[1].Content)

	calls := llm.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 2)
	assert.Equal(t, schema.System, calls[0][0].Role)
	assert.Contains(t, calls[0][0].Content, "industrial equipment analyst")
	assert.Equal(t, "Query: Why is PUMP-007 vibrating?\n\nProvide your analysis.", calls[0][1].Content)
}

func TestAnalyzerRunError(t *testing.T) {
	boom := errors.New("completion service down")
	llm := &agenttest.ChatModel{Errs: map[string]error{"analyst": boom}}
	state := model.NewState("explain the alert", "")

	err := NewAnalyzer(llm, 0).Run(context.Background(), state)
	assert.ErrorIs(t, err, boom)
	assert.False(t, state.HasAnalysis())
	assert.Len(t, state.Messages, 1)
}

func TestNext(t *testing.T) {
	cases := map[string]string{
		"Why is PUMP-007 vibrating?":              consts.Recommendation,
		"Explain the startup PROCEDURE":           consts.Retrieval,
		"why does the manual say so":              consts.Retrieval,
		"analyze documentation gaps":              consts.Retrieval,
		"explain the maintenance history anomaly": consts.Recommendation,
	}
	for query, want := range cases {
		assert.Equal(t, want, Next(context.Background(), model.NewState(query, "")), query)
	}
}
