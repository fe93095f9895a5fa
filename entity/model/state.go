package model

import (
	"github.com/cloudwego/eino/schema"
)

// State 单次查询在各 agent 之间流转的共享状态
type State struct {
	// 执行记录，只允许追加
	Messages []*schema.Message `json:"messages,omitempty"`

	// 用户输入，创建后不再修改
	Query       string `json:"query"`
	EquipmentID string `json:"equipment_id,omitempty"`

	// 各 agent 的产出，空值表示对应 agent 尚未执行或没有结果
	AnalysisResult  string     `json:"analysis_result,omitempty"`
	RetrievedDocs   []Document `json:"retrieved_docs,omitempty"`
	Recommendations []string   `json:"recommendations,omitempty"`

	// 路由者写入，由路由决策立即消费
	NextAgent string `json:"next_agent,omitempty"`
}

// NewState 创建查询状态，用户问题作为第一条执行记录
func NewState(query, equipmentID string) *State {
	return &State{
		Messages:    []*schema.Message{schema.UserMessage(query)},
		Query:       query,
		EquipmentID: equipmentID,
	}
}

// AppendMessage 追加一条执行记录
func (s *State) AppendMessage(msg *schema.Message) {
	if msg == nil {
		return
	}
	s.Messages = append(s.Messages, msg)
}

// HasAnalysis 是否已有分析结果
func (s *State) HasAnalysis() bool {
	return s.AnalysisResult != ""
}

// HasDocs 是否已检索到文档
func (s *State) HasDocs() bool {
	return len(s.RetrievedDocs) > 0
}

// HasRecommendations 是否已生成建议
func (s *State) HasRecommendations() bool {
	return len(s.Recommendations) > 0
}
