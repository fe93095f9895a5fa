package consts

const (
	AppName = "indus-flow-go" // 应用名称
	Version = "1.0.0"         // 应用版本
)

// Agent 名字
const (
	Router         = "router"         // 路由者，根据问题关键词决定第一个处理的 agent
	Analysis       = "analysis"       // 分析者，识别设备问题、模式与根因
	Retrieval      = "retrieval"      // 检索者，从向量库检索设备文档
	Recommendation = "recommendation" // 建议者，输出可执行的维护建议
	Synthesizer    = "synthesizer"    // 总结者，生成最终给用户的答案
	End            = "__end__"        // 流程结束节点
)

// DirectAnswer 路由表中直达总结者的标签
const DirectAnswer = "direct_answer"

const (
	GraphName     = "IndusAgent" // 编排图名称
	AgentStepType = "AgentStep"  // 回调中 agent 步骤的 RunInfo.Type

	GraphCheckPointPrefix = "graph:" // 编排图断点的存储前缀，与运行记录区分
)

// GetAgentNameList 返回列表
func GetAgentNameList() []string {
	return []string{
		Router,
		Analysis,
		Retrieval,
		Recommendation,
		Synthesizer,
	}
}

// 执行记录中各 agent 输出的前缀
const (
	AnalysisPrefix       = "Analysis: "
	RetrievedDocsPrefix  = "Retrieved Documentation:\n"
	RecommendationPrefix = "Recommendations:\n"
	FinalAnswerPrefix    = "Final Answer: "
	FinalAnswerMarker    = "Final Answer:"
)

// 查询结果的固定取值
const (
	FallbackAnswer    = "Unable to process query."
	ErrorAnswer       = "I encountered an error processing your query. Please try again."
	SuccessConfidence = 0.85
	DirectResponse    = "Direct response"
	ReasoningSep      = " → "
)

// 检索与截断参数
const (
	RetrievalTopK        = 3   // 检索者每次检索的文档数
	SummaryContentLimit  = 300 // 检索摘要中每个文档的最大字符数
	RecommendDocLimit    = 2   // 建议者最多引用的文档数
	RecommendContentSize = 200 // 建议者引用文档的最大字符数
	ReasoningPreviewSize = 200 // 推理链中分析预览的最大字符数
)

// MetaEquipmentID 文档元数据中设备ID的键
const (
	MetaEquipmentID = "equipment_id"
	MetaSource      = "source"
	UnknownSource   = "unknown"
)
