package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/HildaM/logs/slog"
	einoretriever "github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/schema"

	"github.com/hildam/indus-flow-go/agent/comm"
	"github.com/hildam/indus-flow-go/entity/consts"
	"github.com/hildam/indus-flow-go/entity/model"
)

// retrieverImpl 检索者，从文档检索服务获取相关设备文档
type retrieverImpl struct {
	docs einoretriever.Retriever
}

// NewRetriever 创建实例
func NewRetriever(docs einoretriever.Retriever) *retrieverImpl {
	return &retrieverImpl{docs: docs}
}

// Name 节点名称
func (r *retrieverImpl) Name() string {
	return consts.Retrieval
}

// Run 检索文档并写入状态，检索到文档时追加摘要记录
func (r *retrieverImpl) Run(ctx context.Context, state *model.State) error {
	opts := []einoretriever.Option{einoretriever.WithTopK(consts.RetrievalTopK)}
	if state.EquipmentID != "" {
		opts = append(opts, einoretriever.WithDSLInfo(map[string]any{
			consts.MetaEquipmentID: state.EquipmentID,
		}))
	}

	docs, err := r.docs.Retrieve(ctx, state.Query, opts...)
	if err != nil {
		slog.Error("retriever failed, retrieve documents fail, err = %v", err)
		return err
	}

	state.RetrievedDocs = model.FromSchemaDocuments(docs)
	slog.Info("retriever info, retrieved %d documents", len(state.RetrievedDocs))
	if !state.HasDocs() {
		return nil
	}

	state.AppendMessage(schema.AssistantMessage(consts.RetrievedDocsPrefix+summarize(state.RetrievedDocs), nil))
	return nil
}

// summarize 生成检索文档摘要
func summarize(docs []model.Document) string {
	entries := make([]string, 0, len(docs))
	for _, doc := range docs {
		entries = append(entries, fmt.Sprintf("Source: %s\n%s...",
			doc.Source, comm.Truncate(doc.Content, consts.SummaryContentLimit)))
	}
	return strings.Join(entries, "\n\n")
}
