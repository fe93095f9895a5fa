package router

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hildam/indus-flow-go/agent"
	"github.com/hildam/indus-flow-go/agent/agenttest"
	"github.com/hildam/indus-flow-go/biz/handler"
	"github.com/hildam/indus-flow-go/entity/conf"
	"github.com/hildam/indus-flow-go/entity/model"
	"github.com/hildam/indus-flow-go/repo/checkpoint"
	"github.com/hildam/indus-flow-go/repo/data"
)

func newEngine(t *testing.T, withAI bool) *route.Engine {
	t.Helper()
	store, err := data.Open(context.Background(), conf.DataConfig{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	var queries handler.QueryService
	if withAI {
		llm := &agenttest.ChatModel{Replies: map[string]string{
			"equipment analyst":   "Bearing wear.",
			"maintenance advisor": "1. Replace bearing",
			"synthesizing":        "Replace the bearing.",
		}}
		docs := &agenttest.Retriever{Docs: []*schema.Document{agenttest.Doc("PUMP-007_guide", "Pump guide.")}}
		o, err := agent.NewOrchestrator(llm, docs, agent.WithCheckpoint(checkpoint.NewMemoryStore()))
		require.NoError(t, err)
		queries = o
	}

	r := route.NewEngine(config.NewOptions([]config.Option{}))
	Register(r, handler.New(store, queries, "test"), conf.ServerConfig{CORSOrigins: []string{"http://localhost:3000"}})
	return r
}

func decode(t *testing.T, w *ut.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Result().Body(), v))
}

func jsonBody(s string) *ut.Body {
	return &ut.Body{Body: bytes.NewBufferString(s), Len: len(s)}
}

var contentJSON = ut.Header{Key: "Content-Type", Value: "application/json"}

func TestRootAndHealth(t *testing.T) {
	r := newEngine(t, true)

	w := ut.PerformRequest(r, "GET", "/", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	body := map[string]string{}
	decode(t, w, &body)
	assert.Equal(t, "Industrial AI Analytics Platform API", body["message"])
	assert.Equal(t, "/api/v1/schema", body["docs"])

	w = ut.PerformRequest(r, "GET", "/health", nil)
	decode(t, w, &body)
	assert.Equal(t, map[string]string{"status": "healthy", "version": "test"}, body)
}

func TestEquipmentRoutes(t *testing.T) {
	r := newEngine(t, true)

	w := ut.PerformRequest(r, "GET", "/api/v1/equipment/", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	var list []model.Equipment
	decode(t, w, &list)
	assert.Len(t, list, 5)

	w = ut.PerformRequest(r, "GET", "/api/v1/equipment/PUMP-007", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	eq := model.Equipment{}
	decode(t, w, &eq)
	assert.Equal(t, model.StatusCritical, eq.Status)

	w = ut.PerformRequest(r, "GET", "/api/v1/equipment/NOPE-000", nil)
	assert.Equal(t, 404, w.Result().StatusCode())
	body := map[string]string{}
	decode(t, w, &body)
	assert.Equal(t, "Equipment not found", body["detail"])

	w = ut.PerformRequest(r, "GET", "/api/v1/equipment/status/warning", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "TURB-003", list[0].ID)

	w = ut.PerformRequest(r, "GET", "/api/v1/equipment/status/broken", nil)
	assert.Equal(t, 400, w.Result().StatusCode())
}

func TestEquipmentAlertsAndMaintenance(t *testing.T) {
	r := newEngine(t, true)

	w := ut.PerformRequest(r, "GET", "/api/v1/equipment/COMP-001/alerts?resolved=true", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	var alerts []model.Alert
	decode(t, w, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, "ALT-003", alerts[0].ID)

	w = ut.PerformRequest(r, "GET", "/api/v1/equipment/COMP-001/alerts?resolved=false", nil)
	decode(t, w, &alerts)
	assert.Empty(t, alerts)

	w = ut.PerformRequest(r, "GET", "/api/v1/equipment/NOPE-000/alerts", nil)
	assert.Equal(t, 404, w.Result().StatusCode())
	w = ut.PerformRequest(r, "GET", "/api/v1/equipment/COMP-001/alerts?resolved=maybe", nil)
	assert.Equal(t, 400, w.Result().StatusCode())

	w = ut.PerformRequest(r, "GET", "/api/v1/equipment/PUMP-007/maintenance", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	var logs []model.MaintenanceLog
	decode(t, w, &logs)
	require.Len(t, logs, 1)
	assert.Equal(t, "Replaced worn bearing assembly", logs[0].Description)

	for _, limit := range []string{"0", "101", "ten"} {
		w = ut.PerformRequest(r, "GET", "/api/v1/equipment/PUMP-007/maintenance?limit="+limit, nil)
		assert.Equal(t, 400, w.Result().StatusCode(), limit)
	}
	w = ut.PerformRequest(r, "GET", "/api/v1/equipment/NOPE-000/maintenance?limit=5", nil)
	assert.Equal(t, 404, w.Result().StatusCode())
}

func TestDashboardRoutes(t *testing.T) {
	r := newEngine(t, true)

	w := ut.PerformRequest(r, "GET", "/api/v1/dashboard/executive", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	exec := model.DashboardMetrics{}
	decode(t, w, &exec)
	assert.Equal(t, 5, exec.TotalEquipment)
	assert.Equal(t, 2, exec.UnresolvedAlerts)

	w = ut.PerformRequest(r, "GET", "/api/v1/dashboard/operator", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	op := model.OperatorMetrics{}
	decode(t, w, &op)
	assert.Len(t, op.RecentAlerts, 2)

	w = ut.PerformRequest(r, "PATCH", "/api/v1/dashboard/alerts/ALT-001/resolve", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	body := map[string]string{}
	decode(t, w, &body)
	assert.Equal(t, map[string]string{"message": "Alert resolved successfully", "alert_id": "ALT-001"}, body)

	w = ut.PerformRequest(r, "GET", "/api/v1/dashboard/alerts?resolved=false", nil)
	var alerts []model.Alert
	decode(t, w, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, "ALT-002", alerts[0].ID)

	w = ut.PerformRequest(r, "PATCH", "/api/v1/dashboard/alerts/ALT-404/resolve", nil)
	assert.Equal(t, 404, w.Result().StatusCode())
	decode(t, w, &body)
	assert.Equal(t, "Alert not found", body["detail"])
}

func TestAIRoutes(t *testing.T) {
	r := newEngine(t, true)

	w := ut.PerformRequest(r, "POST", "/api/v1/ai/query", jsonBody(`{"query":"  "}`), contentJSON)
	assert.Equal(t, 400, w.Result().StatusCode())
	w = ut.PerformRequest(r, "POST", "/api/v1/ai/query", jsonBody(`{"query":`), contentJSON)
	assert.Equal(t, 400, w.Result().StatusCode())

	w = ut.PerformRequest(r, "POST", "/api/v1/ai/query",
		jsonBody(`{"query":"Why is PUMP-007 vibrating?","equipment_id":"PUMP-007"}`), contentJSON)
	require.Equal(t, 200, w.Result().StatusCode())
	result := model.QueryResult{}
	decode(t, w, &result)
	assert.Equal(t, "Replace the bearing.", result.Answer)
	assert.Equal(t, 0.85, result.Confidence)
	require.NotEmpty(t, result.RunID)

	w = ut.PerformRequest(r, "GET", "/api/v1/ai/runs/"+result.RunID, nil)
	require.Equal(t, 200, w.Result().StatusCode())
	record := model.RunRecord{}
	decode(t, w, &record)
	assert.Equal(t, result.Answer, record.Result.Answer)

	w = ut.PerformRequest(r, "GET", "/api/v1/ai/runs/missing", nil)
	assert.Equal(t, 404, w.Result().StatusCode())

	w = ut.PerformRequest(r, "GET", "/api/v1/ai/health", nil)
	body := map[string]string{}
	decode(t, w, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestAIRoutesWithoutOrchestrator(t *testing.T) {
	r := newEngine(t, false)

	w := ut.PerformRequest(r, "GET", "/api/v1/ai/health", nil)
	body := map[string]string{}
	decode(t, w, &body)
	assert.Equal(t, "unhealthy", body["status"])

	w = ut.PerformRequest(r, "POST", "/api/v1/ai/query", jsonBody(`{"query":"why"}`), contentJSON)
	assert.Equal(t, 503, w.Result().StatusCode())
	w = ut.PerformRequest(r, "GET", "/api/v1/ai/runs/any", nil)
	assert.Equal(t, 404, w.Result().StatusCode())
}

func TestSchema(t *testing.T) {
	r := newEngine(t, false)

	w := ut.PerformRequest(r, "GET", "/api/v1/schema", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	schemas := map[string]map[string]any{}
	decode(t, w, &schemas)
	assert.Contains(t, schemas, "QueryRequest")
	assert.Contains(t, schemas, "Equipment")
	assert.Equal(t, "object", schemas["QueryResult"]["type"])
}

func TestCORS(t *testing.T) {
	r := newEngine(t, false)

	w := ut.PerformRequest(r, "OPTIONS", "/api/v1/ai/query", nil,
		ut.Header{Key: "Origin", Value: "http://localhost:3000"})
	assert.Equal(t, 204, w.Result().StatusCode())
	assert.Equal(t, "http://localhost:3000", w.Result().Header.Get("Access-Control-Allow-Origin"))

	assert.Equal(t, "true", w.Result().Header.Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Result().Header.Get("Access-Control-Allow-Methods"), "POST")

	w = ut.PerformRequest(r, "GET", "/health", nil, ut.Header{Key: "Origin", Value: "http://localhost:3000"})
	assert.Equal(t, 200, w.Result().StatusCode())
	assert.Equal(t, "http://localhost:3000", w.Result().Header.Get("Access-Control-Allow-Origin"))

	w = ut.PerformRequest(r, "GET", "/health", nil, ut.Header{Key: "Origin", Value: "http://evil.example"})
	assert.Equal(t, 403, w.Result().StatusCode())
	assert.Empty(t, w.Result().Header.Get("Access-Control-Allow-Origin"))

	w = ut.PerformRequest(r, "GET", "/health", nil)
	assert.Equal(t, 200, w.Result().StatusCode(), "same-origin requests carry no Origin")
}

func TestCORSConfig(t *testing.T) {
	for _, origins := range [][]string{nil, {"*"}} {
		r := route.NewEngine(config.NewOptions([]config.Option{}))
		r.Use(CORS(origins))
		r.GET("/ping", func(ctx context.Context, c *app.RequestContext) { c.String(200, "pong") })

		w := ut.PerformRequest(r, "GET", "/ping", nil, ut.Header{Key: "Origin", Value: "http://any.example"})
		assert.Equal(t, 200, w.Result().StatusCode(), "origins = %v", origins)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newEngine(t, false)

	ut.PerformRequest(r, "GET", "/health", nil)
	w := ut.PerformRequest(r, "GET", "/metrics", nil)
	require.Equal(t, 200, w.Result().StatusCode())
	assert.Contains(t, string(w.Result().Body()), "indus_http_requests_total")
}
