package model

// QueryRequest AI 查询请求
type QueryRequest struct {
	Query       string         `json:"query"`
	EquipmentID string         `json:"equipment_id,omitempty"`
	Context     map[string]any `json:"context,omitempty"`
}

// QueryResult AI 查询结果
type QueryResult struct {
	Answer          string   `json:"answer"`
	Sources         []string `json:"sources"`
	Recommendations []string `json:"recommendations"`
	Confidence      float64  `json:"confidence"`
	AgentReasoning  string   `json:"agent_reasoning"`
	RunID           string   `json:"run_id,omitempty"`
}

// RunRecord 一次查询执行的存档
type RunRecord struct {
	RunID  string       `json:"run_id"`
	State  *State       `json:"state,omitempty"`
	Result *QueryResult `json:"result"`
	Error  string       `json:"error,omitempty"`
}

// StepEvent 流式接口推送的步骤事件
type StepEvent struct {
	RunID   string `json:"run_id,omitempty"`
	Agent   string `json:"agent"`
	Phase   string `json:"phase"`
	Content string `json:"content,omitempty"`
}
