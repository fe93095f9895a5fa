package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hildam/indus-flow-go/entity/consts"
	"github.com/hildam/indus-flow-go/entity/model"
)

func TestRouterRun(t *testing.T) {
	cases := []struct {
		query string
		want  string
	}{
		{"Why is PUMP-007 vibrating?", consts.Analysis},
		{"What could CAUSE the pressure drop", consts.Analysis},
		{"Analyze turbine efficiency", consts.Analysis},
		{"explain the alert", consts.Analysis},
		{"Show me the maintenance manual for COMP-001", consts.Retrieval},
		{"Where is the DOCUMENTATION", consts.Retrieval},
		{"startup procedure for TURB-003", consts.Retrieval},
		{"maintenance history of PUMP-007", consts.Retrieval},
		{"why does the manual say that", consts.Analysis},
		{"What is the status of COMP-001?", consts.Analysis},
		{"", consts.Analysis},
	}

	r := NewRouter()
	for _, tc := range cases {
		state := model.NewState(tc.query, "")
		require.NoError(t, r.Run(context.Background(), state))
		assert.Equal(t, tc.want, state.NextAgent, tc.query)
		assert.Equal(t, tc.want, Next(context.Background(), state), tc.query)
		assert.Len(t, state.Messages, 1, "router does not append to the transcript")
	}
}

func TestNextDefaultsToAnalysis(t *testing.T) {
	assert.Equal(t, consts.Analysis, Next(context.Background(), &model.State{}))
	assert.Equal(t, consts.DirectAnswer, Next(context.Background(), &model.State{NextAgent: consts.DirectAnswer}))
}
