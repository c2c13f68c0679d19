package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config 是推荐引擎的运行配置。
// 零值字段在 normalize 时回填默认值，因此部分配置的 YAML 也是合法的。
type Config struct {
	// TopK 单次请求返回的推荐数量
	TopK int `yaml:"top_k"`

	// CandidateMultiplier 召回阶段的候选超采倍数（召回 TopK * Multiplier 个）
	CandidateMultiplier int `yaml:"candidate_multiplier"`

	// MaxDaysOld 重排阶段的事件最大天数（超过直接丢弃）
	MaxDaysOld int `yaml:"max_days_old"`

	// SimilarityWeight / RecencyWeight 最终分的加权系数
	SimilarityWeight float64 `yaml:"similarity_weight"`
	RecencyWeight    float64 `yaml:"recency_weight"`

	// DiversityPenalty 同类目重复惩罚系数
	DiversityPenalty float64 `yaml:"diversity_penalty"`

	// BatchChunkSize 批量模式的分片大小（片内并发，片间串行）
	BatchChunkSize int `yaml:"batch_chunk_size"`
}

// DefaultConfig 返回引擎默认配置。
func DefaultConfig() Config {
	return Config{
		TopK:                10,
		CandidateMultiplier: 3,
		MaxDaysOld:          60,
		SimilarityWeight:    0.7,
		RecencyWeight:       0.3,
		DiversityPenalty:    0.1,
		BatchChunkSize:      10,
	}
}

// LoadConfig 从 YAML 文件加载引擎配置，缺省字段回填默认值。
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Config{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.TopK <= 0 {
		c.TopK = def.TopK
	}
	if c.CandidateMultiplier <= 0 {
		c.CandidateMultiplier = def.CandidateMultiplier
	}
	if c.MaxDaysOld <= 0 {
		c.MaxDaysOld = def.MaxDaysOld
	}
	if c.SimilarityWeight <= 0 {
		c.SimilarityWeight = def.SimilarityWeight
	}
	if c.RecencyWeight < 0 {
		c.RecencyWeight = def.RecencyWeight
	}
	if c.DiversityPenalty < 0 {
		c.DiversityPenalty = def.DiversityPenalty
	}
	if c.BatchChunkSize <= 0 {
		c.BatchChunkSize = def.BatchChunkSize
	}
}
