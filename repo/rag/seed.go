package rag

import (
	"embed"
	"fmt"

	"github.com/hildam/indus-flow-go/entity/model"
)

//go:embed seed/*.md
var seedFS embed.FS

// seedIndex 内置文档：文件名、来源与元数据
var seedIndex = []struct {
	file     string
	source   string
	metadata map[string]string
}{
	{
		file:     "comp_001_manual.md",
		source:   "COMP-001_Manual_v2.3.pdf",
		metadata: map[string]string{"equipment_id": "COMP-001", "doc_type": "manual", "category": "maintenance"},
	},
	{
		file:     "turb_003_operations.md",
		source:   "TURB-003_Operations_Manual_v4.1.pdf",
		metadata: map[string]string{"equipment_id": "TURB-003", "doc_type": "procedures", "category": "operations"},
	},
	{
		file:     "pump_007_troubleshooting.md",
		source:   "PUMP-007_Troubleshooting_Guide_v3.2.pdf",
		metadata: map[string]string{"equipment_id": "PUMP-007", "doc_type": "troubleshooting", "category": "maintenance"},
	},
	{
		file:     "vibration_analysis_guide.md",
		source:   "Vibration_Analysis_Guide_General.pdf",
		metadata: map[string]string{"doc_type": "guide", "category": "diagnostics"},
	},
	{
		file:     "predictive_maintenance_program.md",
		source:   "Predictive_Maintenance_Program_Overview.pdf",
		metadata: map[string]string{"doc_type": "program", "category": "predictive_maintenance"},
	},
}

// SeedDocuments 返回内置的设备文档
func SeedDocuments() ([]model.SourceDocument, error) {
	docs := make([]model.SourceDocument, 0, len(seedIndex))
	for _, item := range seedIndex {
		content, err := seedFS.ReadFile("seed/" + item.file)
		if err != nil {
			return nil, fmt.Errorf("read seed document %s: %w", item.file, err)
		}
		metadata := make(map[string]string, len(item.metadata))
		for k, v := range item.metadata {
			metadata[k] = v
		}
		docs = append(docs, model.SourceDocument{
			Content:  string(content),
			Source:   item.source,
			Metadata: metadata,
		})
	}
	return docs, nil
}
