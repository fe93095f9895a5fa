package model

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/hildam/indus-flow-go/entity/consts"
)

// Document 检索得到的文档片段
type Document struct {
	Content  string         `json:"content"`
	Source   string         `json:"source"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SourceDocument 待入库的原始文档
type SourceDocument struct {
	Content  string            `json:"content"`
	Source   string            `json:"source"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// FromSchemaDocument 将 eino 文档转换为业务文档，source 取自元数据
func FromSchemaDocument(doc *schema.Document) Document {
	if doc == nil {
		return Document{Source: consts.UnknownSource}
	}
	source := consts.UnknownSource
	if v, ok := doc.MetaData[consts.MetaSource]; ok {
		if s := fmt.Sprint(v); s != "" {
			source = s
		}
	}
	return Document{
		Content:  doc.Content,
		Source:   source,
		Metadata: doc.MetaData,
	}
}

// FromSchemaDocuments 批量转换，返回值不为 nil
func FromSchemaDocuments(docs []*schema.Document) []Document {
	out := make([]Document, 0, len(docs))
	for _, doc := range docs {
		out = append(out, FromSchemaDocument(doc))
	}
	return out
}
