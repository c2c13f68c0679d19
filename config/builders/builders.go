// Package builders 在 init 中注册可由配置构建的内置 Node。
// 依赖注入类 Node（recall.two_tower、store 驱动的 filter）需要代码组装，
// 不在配置注册范围内。
package builders

import (
	"fmt"
	"time"

	"github.com/rushteam/eventrec/config"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/pkg/conv"
	"github.com/rushteam/eventrec/recall"
	"github.com/rushteam/eventrec/rerank"
)

func init() {
	config.Register("recall.trending", BuildTrendingNode)
	config.Register("recall.fanout", BuildFanoutNode)
	config.Register("rerank.business", BuildBusinessNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildTrendingNode 从配置构建热门召回节点。
// 支持的配置项：key（Store 中的榜单 key）、ids（内存 fallback）、limit。
func BuildTrendingNode(cfg map[string]interface{}) (pipeline.Node, error) {
	node := &recall.Trending{
		Key:   conv.ConfigGet(cfg, "key", ""),
		IDs:   conv.SliceAnyToString(cfg["ids"]),
		Limit: conv.ConfigGetInt(cfg, "limit", 0),
	}
	if node.Key == "" && len(node.IDs) == 0 {
		return nil, fmt.Errorf("trending node requires key or ids")
	}
	return node, nil
}

// BuildFanoutNode 从配置构建并发召回节点。
// 目前仅支持 trending 类型的 source；two_tower 需要依赖注入，不从配置构建。
func BuildFanoutNode(cfg map[string]interface{}) (pipeline.Node, error) {
	sourcesConfig, ok := cfg["sources"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("sources not found or invalid")
	}

	sources := make([]recall.Source, 0, len(sourcesConfig))
	for _, sc := range sourcesConfig {
		sourceMap, ok := sc.(map[string]interface{})
		if !ok {
			continue
		}
		sourceType := conv.ConfigGet(sourceMap, "type", "")
		switch sourceType {
		case "trending":
			sources = append(sources, &recall.Trending{
				Key:   conv.ConfigGet(sourceMap, "key", ""),
				IDs:   conv.SliceAnyToString(sourceMap["ids"]),
				Limit: conv.ConfigGetInt(sourceMap, "limit", 0),
			})
		default:
			return nil, fmt.Errorf("unknown source type: %s", sourceType)
		}
	}

	fanout := &recall.Fanout{
		Sources:       sources,
		Dedup:         conv.ConfigGet(cfg, "dedup", true),
		MergeStrategy: conv.ConfigGet(cfg, "merge_strategy", ""),
	}
	if sec := conv.ConfigGetInt(cfg, "timeout", 0); sec > 0 {
		fanout.Timeout = time.Duration(sec) * time.Second
	}
	if n := conv.ConfigGetInt(cfg, "max_concurrent", 0); n > 0 {
		fanout.MaxConcurrent = n
	}
	return fanout, nil
}

// BuildBusinessNode 从配置构建业务规则重排节点。
func BuildBusinessNode(cfg map[string]interface{}) (pipeline.Node, error) {
	def := rerank.DefaultConfig()
	return rerank.NewBusiness(rerank.Config{
		TopK:             conv.ConfigGetInt(cfg, "top_k", def.TopK),
		MaxDaysOld:       conv.ConfigGetInt(cfg, "max_days_old", def.MaxDaysOld),
		SimilarityWeight: conv.ConfigGetFloat64(cfg, "similarity_weight", def.SimilarityWeight),
		RecencyWeight:    conv.ConfigGetFloat64(cfg, "recency_weight", def.RecencyWeight),
		DiversityPenalty: conv.ConfigGetFloat64(cfg, "diversity_penalty", def.DiversityPenalty),
	}), nil
}

// BuildTopNNode 从配置构建 Top-N 截断节点。
func BuildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	n := conv.ConfigGetInt(cfg, "n", 0)
	if n <= 0 {
		return nil, fmt.Errorf("topn node requires positive n")
	}
	return &rerank.TopNNode{N: n}, nil
}
