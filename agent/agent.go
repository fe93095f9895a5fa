package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/HildaM/logs/slog"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/retriever"
	"github.com/cloudwego/eino/compose"

	"github.com/hildam/indus-flow-go/agent/analyzer"
	"github.com/hildam/indus-flow-go/agent/recommender"
	docretriever "github.com/hildam/indus-flow-go/agent/retriever"
	"github.com/hildam/indus-flow-go/agent/router"
	"github.com/hildam/indus-flow-go/agent/synthesizer"
	"github.com/hildam/indus-flow-go/entity/consts"
	entity "github.com/hildam/indus-flow-go/entity/model"
)

// ErrUnknownDecision 决策函数返回了路由表中没有的标签
var ErrUnknownDecision = errors.New("unknown decision label")

func init() {
	// DAG 模式下同一节点可能有多个前驱，同一次运行中它们传递的是同一个状态
	compose.RegisterValuesMergeFunc(func(states []*entity.State) (*entity.State, error) {
		for _, s := range states {
			if s != nil {
				return s, nil
			}
		}
		return nil, nil
	})
}

// Step 一个 agent 步骤
type Step interface {
	// Name 节点名称
	Name() string
	// Run 读取并修改共享状态
	Run(ctx context.Context, state *entity.State) error
}

// Decision 路由决策函数，返回 Targets 中的标签
type Decision func(ctx context.Context, state *entity.State) string

// Transition 路由表中的一行
type Transition struct {
	Node     string
	Step     Step
	Decision Decision          // 为空时无条件走唯一的出边
	Targets  map[string]string // 决策标签 -> 目标节点
}

// Workflow 由路由表编译出的 agent 流程图
type Workflow struct {
	entry    string
	nodes    map[string]Transition
	runnable compose.Runnable[*entity.State, *entity.State]
}

// NewWorkflow 按路由表构建 DAG 并编译，未知节点与环在编译期报错
func NewWorkflow(ctx context.Context, entry string, table []Transition, opts ...compose.GraphCompileOption) (*Workflow, error) {
	nodes := make(map[string]Transition, len(table))
	for _, t := range table {
		if t.Node == "" || t.Node == consts.End {
			return nil, fmt.Errorf("invalid node name %q", t.Node)
		}
		if _, ok := nodes[t.Node]; ok {
			return nil, fmt.Errorf("duplicate node %q", t.Node)
		}
		if t.Step == nil {
			return nil, fmt.Errorf("node %q has no step", t.Node)
		}
		if len(t.Targets) == 0 {
			return nil, fmt.Errorf("node %q has no targets", t.Node)
		}
		if t.Decision == nil && len(t.Targets) != 1 {
			return nil, fmt.Errorf("node %q has %d targets but no decision", t.Node, len(t.Targets))
		}
		nodes[t.Node] = t
	}

	g := compose.NewGraph[*entity.State, *entity.State]()
	for _, t := range table {
		_ = g.AddLambdaNode(t.Node, compose.InvokableLambda(stepLambda(t.Node, t.Step), compose.WithLambdaType(consts.AgentStepType)),
			compose.WithNodeName(t.Node))
	}
	_ = g.AddEdge(compose.START, entry)
	for _, t := range table {
		if t.Decision == nil {
			for _, target := range t.Targets {
				_ = g.AddEdge(t.Node, graphKey(target))
			}
			continue
		}
		endNodes := make(map[string]bool, len(t.Targets))
		for _, target := range t.Targets {
			endNodes[graphKey(target)] = true
		}
		_ = g.AddBranch(t.Node, compose.NewGraphBranch(routeToNextAgent(t), endNodes))
	}

	opts = append([]compose.GraphCompileOption{
		compose.WithGraphName(consts.GraphName),
		compose.WithNodeTriggerMode(compose.AllPredecessor),
	}, opts...)
	r, err := g.Compile(ctx, opts...)
	if err != nil {
		slog.Error("NewWorkflow failed, compile graph fail, err = %v", err)
		return nil, err
	}
	return &Workflow{entry: entry, nodes: nodes, runnable: r}, nil
}

// Invoke 从入口节点执行到结束，任一步骤失败立即返回
func (w *Workflow) Invoke(ctx context.Context, state *entity.State, opts ...compose.Option) error {
	_, err := w.runnable.Invoke(ctx, state, opts...)
	return err
}

// graphKey 路由表中的结束节点对应图的 END
func graphKey(target string) string {
	if target == consts.End {
		return compose.END
	}
	return target
}

// stepLambda 将步骤包装为图节点，出错时带上节点名
func stepLambda(node string, step Step) func(ctx context.Context, state *entity.State) (*entity.State, error) {
	return func(ctx context.Context, state *entity.State) (*entity.State, error) {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", node, err)
		}
		if err := step.Run(ctx, state); err != nil {
			return nil, fmt.Errorf("%s: %w", node, err)
		}
		return state, nil
	}
}

// routeToNextAgent 将决策标签翻译为下一个节点
func routeToNextAgent(t Transition) func(ctx context.Context, state *entity.State) (string, error) {
	return func(ctx context.Context, state *entity.State) (string, error) {
		label := t.Decision(ctx, state)
		target, ok := t.Targets[label]
		if !ok {
			return "", fmt.Errorf("%s: %q: %w", t.Node, label, ErrUnknownDecision)
		}
		slog.Info("route_to_next_agent info, input = %s, next = %s", t.Node, target)
		return graphKey(target), nil
	}
}

// NewAgentWorkflow 创建 router -> analysis -> retrieval -> recommendation -> synthesizer 流程
func NewAgentWorkflow(ctx context.Context, llm model.BaseChatModel, docs retriever.Retriever, maxLimit int,
	opts ...compose.GraphCompileOption) (*Workflow, error) {
	return NewWorkflow(ctx, consts.Router, []Transition{
		{
			Node:     consts.Router,
			Step:     router.NewRouter(),
			Decision: router.Next,
			Targets: map[string]string{
				consts.Analysis:     consts.Analysis,
				consts.Retrieval:    consts.Retrieval,
				consts.DirectAnswer: consts.Synthesizer,
			},
		},
		{
			Node:     consts.Analysis,
			Step:     analyzer.NewAnalyzer(llm, maxLimit),
			Decision: analyzer.Next,
			Targets: map[string]string{
				consts.Retrieval:      consts.Retrieval,
				consts.Recommendation: consts.Recommendation,
			},
		},
		{
			Node:    consts.Retrieval,
			Step:    docretriever.NewRetriever(docs),
			Targets: map[string]string{"": consts.Recommendation},
		},
		{
			Node:    consts.Recommendation,
			Step:    recommender.NewRecommender(llm, maxLimit),
			Targets: map[string]string{"": consts.Synthesizer},
		},
		{
			Node:    consts.Synthesizer,
			Step:    synthesizer.NewSynthesizer(llm, maxLimit),
			Targets: map[string]string{"": consts.End},
		},
	}, opts...)
}
