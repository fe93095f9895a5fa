package conf

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/HildaM/logs/slog"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultConfigFile 默认配置文件
	DefaultConfigFile = "config.yaml"
	// EnvPrefix 环境变量前缀，层级之间使用双下划线，例如 INDUS_MODEL__DEFAULT_MODEL__API_KEY
	EnvPrefix = "INDUS_"
)

// Load 按 默认值 -> 配置文件 -> 环境变量 的顺序加载配置
func Load(path string) (*AppConfig, error) {
	// 全局 koanf 实例，使用 "." 作为键路径分隔符
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "yaml"), nil); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// 未显式指定且默认文件不存在时，只使用默认值和环境变量
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
	}

	if err := k.Load(env.Provider(".", env.Opt{
		Prefix:        EnvPrefix,
		TransformFunc: transformEnvKey,
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// 解析配置到结构体，使用 yaml 标签
	var config AppConfig
	if err := k.UnmarshalWithConf("", &config, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyFallbacks(&config)
	return &config, nil
}

// Init 加载配置并初始化日志
func Init(path string) (*AppConfig, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("Init config failed, load config err: %v", err)
	}

	// 初始化日志
	if err := slog.InitFile(cfg.Log.Path, slog.WithLevel(cfg.Log.Level), slog.WithColor(false)); err != nil {
		return nil, fmt.Errorf("Init log failed, err: %+v", err)
	}

	slog.Info("Init config: addr = %s, model = %s, vector_db = %s, checkpoint = %s",
		cfg.Server.Addr, cfg.Model.DefaultModel.ModelID, cfg.VectorDB.Provider, cfg.Checkpoint.Provider)
	return cfg, nil
}

// transformEnvKey INDUS_VECTOR_DB__DSN -> vector_db.dsn
func transformEnvKey(key, value string) (string, any) {
	key = strings.TrimPrefix(key, EnvPrefix)
	key = strings.ToLower(strings.ReplaceAll(key, "__", "."))
	if key == "server.cors_origins" {
		return key, strings.Split(value, ",")
	}
	return key, value
}

// applyFallbacks 兼容常见的 OPENAI_API_KEY 环境变量
func applyFallbacks(cfg *AppConfig) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if cfg.Model.DefaultModel.APIKey == "" {
		cfg.Model.DefaultModel.APIKey = apiKey
	}
	if cfg.Model.Embedding.APIKey == "" {
		cfg.Model.Embedding.APIKey = cfg.Model.DefaultModel.APIKey
	}
	if cfg.Model.Embedding.BaseURL == "" {
		cfg.Model.Embedding.BaseURL = cfg.Model.DefaultModel.BaseURL
	}
}

// Validate 校验启动 AI 服务所必需的配置
func (c *AppConfig) Validate() error {
	if c.Model.DefaultModel.APIKey == "" {
		return errors.New("model.default_model.api_key is required (or set OPENAI_API_KEY)")
	}
	if c.Model.DefaultModel.ModelID == "" {
		return errors.New("model.default_model.model_id is required")
	}
	switch c.VectorDB.Provider {
	case "", "memory":
	case "pgvector":
		if c.VectorDB.DSN == "" {
			return errors.New("vector_db.dsn is required for pgvector")
		}
	default:
		return fmt.Errorf("vector_db.provider %q is not supported", c.VectorDB.Provider)
	}
	switch c.Checkpoint.Provider {
	case "", "none", "memory":
	case "redis":
		if c.Checkpoint.Addr == "" {
			return errors.New("checkpoint.addr is required for redis")
		}
	default:
		return fmt.Errorf("checkpoint.provider %q is not supported", c.Checkpoint.Provider)
	}
	return nil
}
