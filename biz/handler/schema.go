package handler

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"

	"github.com/hildam/indus-flow-go/entity/model"
)

// schemaModels 对外暴露的请求与响应模型
var schemaModels = map[string]any{
	"QueryRequest":     model.QueryRequest{},
	"QueryResult":      model.QueryResult{},
	"StepEvent":        model.StepEvent{},
	"Equipment":        model.Equipment{},
	"Alert":            model.Alert{},
	"MaintenanceLog":   model.MaintenanceLog{},
	"DashboardMetrics": model.DashboardMetrics{},
	"OperatorMetrics":  model.OperatorMetrics{},
}

var buildSchemas = sync.OnceValues(func() (openapi3.Schemas, error) {
	schemas := make(openapi3.Schemas, len(schemaModels))
	for name, v := range schemaModels {
		ref, err := openapi3gen.NewSchemaRefForValue(v, nil)
		if err != nil {
			return nil, fmt.Errorf("generate schema %s: %w", name, err)
		}
		schemas[name] = ref
	}
	return schemas, nil
})

// Schema 返回接口模型的 OpenAPI schema
func (h *Handler) Schema(ctx context.Context, c *app.RequestContext) {
	schemas, err := buildSchemas()
	if err != nil {
		detail(c, consts.StatusInternalServerError, err.Error())
		return
	}
	c.JSON(consts.StatusOK, schemas)
}
