package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/hildam/indus-flow-go/agent"
	"github.com/hildam/indus-flow-go/repo/callback"
)

var equipmentID string

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "在终端执行一次查询，未给出问题时从标准输入读取",
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&equipmentID, "equipment", "e", "", "问题相关的设备ID，例如 PUMP-007")
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		// 读取用户终端输入
		fmt.Fprint(cmd.OutOrStdout(), "请输入你的问题： ")
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		query = strings.TrimSpace(line)
	}
	if query == "" {
		return fmt.Errorf("query must not be empty")
	}

	in, err := mustInfra()
	if err != nil {
		return err
	}
	defer in.Close(cmd.Context())

	// 步骤进度输出
	out := make(chan string)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for line := range out {
			fmt.Fprintln(cmd.ErrOrStderr(), line)
		}
	}()

	runID := agent.NewRunID()
	result := in.Orchestrator.ProcessQuery(cmd.Context(), query, equipmentID,
		agent.WithRunID(runID),
		agent.WithQueryCallbacks(&callback.LoggerCallback{ID: runID, Out: out}))
	close(out)
	wg.Wait()

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
