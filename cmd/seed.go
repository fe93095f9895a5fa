package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hildam/indus-flow-go/biz/infra"
	"github.com/hildam/indus-flow-go/repo/llm"
	"github.com/hildam/indus-flow-go/repo/rag"
	"github.com/hildam/indus-flow-go/repo/vectordb"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "向向量库写入内置的设备文档",
	RunE:  runSeed,
}

// runSeed 只创建向量模型与向量库，不依赖对话模型
func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	embedder, err := llm.NewEmbedder(ctx, cfg.Model.Embedding)
	if err != nil {
		return err
	}
	store, err := vectordb.New(ctx, cfg.VectorDB)
	if err != nil {
		return err
	}
	pipeline := rag.NewPipeline(embedder, store)
	defer pipeline.Close(ctx)

	n, err := infra.SeedPipeline(ctx, pipeline)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d chunks into %s\n", n, cfg.VectorDB.Provider)
	return nil
}
