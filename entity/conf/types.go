package conf

import "time"

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Addr        string   `yaml:"addr"`         // 监听地址
	CORSOrigins []string `yaml:"cors_origins"` // 允许跨域的来源
}

// Model 单个模型配置
type Model struct {
	ModelID     string  `yaml:"model_id"`    // 模型ID
	BaseURL     string  `yaml:"base_url"`    // 模型服务的基础URL地址
	APIKey      string  `yaml:"api_key"`     // 模型服务的API密钥
	Temperature float32 `yaml:"temperature"` // 采样温度
}

// EmbeddingConfig 向量化模型配置
type EmbeddingConfig struct {
	ModelID string `yaml:"model_id"` // 模型ID
	BaseURL string `yaml:"base_url"` // 模型服务的基础URL地址
	APIKey  string `yaml:"api_key"`  // 模型服务的API密钥
}

// ModelConfig 模型配置
type ModelConfig struct {
	DefaultModel Model           `yaml:"default_model"` // 默认使用的对话模型
	Embedding    EmbeddingConfig `yaml:"embedding"`     // 文档检索使用的向量模型
}

// VectorDBConfig 向量库配置
type VectorDBConfig struct {
	Provider    string `yaml:"provider"`      // memory 或 pgvector
	DSN         string `yaml:"dsn"`           // pgvector 连接串
	Table       string `yaml:"table"`         // pgvector 表名
	Dimension   int    `yaml:"dimension"`     // 向量维度
	EnsureIndex bool   `yaml:"ensure_index"`  // 是否创建 ivfflat 索引
	SeedOnStart bool   `yaml:"seed_on_start"` // 启动时写入内置文档
}

// DataConfig 设备数据存储配置
type DataConfig struct {
	Path string `yaml:"path"` // sqlite 文件路径，为空时使用内存库
}

// CheckpointConfig 查询存档配置
type CheckpointConfig struct {
	Provider  string        `yaml:"provider"`   // none、memory 或 redis
	Addr      string        `yaml:"addr"`       // redis 地址
	Password  string        `yaml:"password"`   // redis 密码
	DB        int           `yaml:"db"`         // redis 库
	KeyPrefix string        `yaml:"key_prefix"` // redis 键前缀
	TTL       time.Duration `yaml:"ttl"`        // 存档过期时间
}

// LogConfig 日志配置
type LogConfig struct {
	Path  string `yaml:"path"`  // 日志文件
	Level string `yaml:"level"` // 日志级别
}

// SettingConfig 应用运行配置
type SettingConfig struct {
	MaxLimitToken int `yaml:"max_limit_token"` // 单条消息最大字符数，0 表示不限制
}

// AppConfig 应用配置
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`     // HTTP服务配置
	Model      ModelConfig      `yaml:"model"`      // 大语言模型相关配置
	VectorDB   VectorDBConfig   `yaml:"vector_db"`  // 向量库配置
	Data       DataConfig       `yaml:"data"`       // 设备数据配置
	Checkpoint CheckpointConfig `yaml:"checkpoint"` // 查询存档配置
	Log        LogConfig        `yaml:"log"`        // 日志配置
	Setting    SettingConfig    `yaml:"setting"`    // 应用运行时配置参数
}

// DefaultConfig 默认配置
func DefaultConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Addr:        ":8000",
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:3001"},
		},
		Model: ModelConfig{
			DefaultModel: Model{
				ModelID:     "gpt-4-turbo-preview",
				Temperature: 0.7,
			},
			Embedding: EmbeddingConfig{
				ModelID: "text-embedding-3-small",
			},
		},
		VectorDB: VectorDBConfig{
			Provider:    "memory",
			Table:       "industrial_docs",
			Dimension:   1536,
			SeedOnStart: true,
		},
		Checkpoint: CheckpointConfig{
			Provider:  "memory",
			KeyPrefix: "indus:run:",
			TTL:       24 * time.Hour,
		},
		Log: LogConfig{
			Path:  "logs/app.log",
			Level: "info",
		},
	}
}
