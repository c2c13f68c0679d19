package profile

import (
	"context"
	"fmt"
	"strings"

	"github.com/rushteam/eventrec/core"
)

// PreferenceThreshold 是冷启动文本拼接的偏好分阈值：
// 只有超过该值的类目才会贡献描述片段。
const PreferenceThreshold = 0.6

// coldStartPrefix 是冷启动偏好文本的固定前缀。
const coldStartPrefix = "University student interested in: "

// coldStartFallback 是无任何偏好超阈值时的通用兜底句。
const coldStartFallback = coldStartPrefix + "general university events"

// Builder 构建用户 embedding（双塔中的用户塔）。
//
// 核心流程：
//  1. 读取交互历史，按动作权重对交互过的事件向量做加权平均
//  2. 总权重为零（无交互 / 全部未识别动作 / 索引中找不到向量）时走冷启动：
//     把偏好分组装成自然语言文本，交给 Embedding Provider 向量化
//
// 设计原则：
//   - 画像每次请求重新计算，不缓存、不落库
//   - Provider 调用失败直接上浮（重试是 Provider 实现的职责）
type Builder struct {
	// Datastore 提供交互历史
	Datastore core.Datastore

	// Preferences 提供冷启动的偏好分来源。
	// 为 nil 时退回 Datastore（Datastore 天然实现 PreferenceSource）。
	Preferences core.PreferenceSource

	// Index 提供交互过的事件向量（索引中缺失的事件跳过）
	Index core.VectorIndex

	// Provider 负责冷启动文本的向量化
	Provider core.EmbeddingProvider
}

// NewBuilder 创建画像构建器。
func NewBuilder(ds core.Datastore, index core.VectorIndex, provider core.EmbeddingProvider) *Builder {
	return &Builder{
		Datastore: ds,
		Index:     index,
		Provider:  provider,
	}
}

// BuildUserEmbedding 为用户构建 embedding。
// 返回向量维度恒等于索引维度 D。
func (b *Builder) BuildUserEmbedding(ctx context.Context, userID string) ([]float64, error) {
	interactions, err := b.Datastore.FetchUserInteractions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch interactions: %w", err)
	}

	if len(interactions) > 0 {
		vec, total := b.weightedAverage(interactions)
		if total > 0 {
			return vec, nil
		}
		// 总权重为零：只有未识别动作或索引中无匹配向量，落入冷启动
	}

	return b.coldStart(ctx, userID)
}

// weightedAverage 对交互过的事件向量做加权求和，再按 |权重| 之和归一。
// 返回向量与使用到的总权重（绝对值之和）。
func (b *Builder) weightedAverage(interactions []core.Interaction) ([]float64, float64) {
	dim := b.Index.Dimension()
	vec := make([]float64, dim)
	total := 0.0

	for _, in := range interactions {
		weight := in.Action.Weight()
		if weight == 0 {
			continue
		}
		entry, ok := b.Index.Get(in.EventID)
		if !ok {
			continue
		}
		for i, v := range entry.Vector {
			vec[i] += v * weight
		}
		total += abs(weight)
	}

	if total > 0 {
		for i := range vec {
			vec[i] /= total
		}
	}
	return vec, total
}

// coldStart 用偏好分拼接自然语言文本并向量化。
func (b *Builder) coldStart(ctx context.Context, userID string) ([]float64, error) {
	prefs, err := b.preferenceSource().FetchUserPreferenceScores(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("fetch preference scores: %w", err)
	}

	text := ColdStartText(prefs)
	vec, err := b.Provider.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("generate cold start embedding: %w", err)
	}
	return vec, nil
}

func (b *Builder) preferenceSource() core.PreferenceSource {
	if b.Preferences != nil {
		return b.Preferences
	}
	return b.Datastore
}

// ColdStartText 把偏好分组装成冷启动文本：
// 超过阈值的类目按固定顺序贡献描述片段；没有类目超阈值时使用通用兜底句。
func ColdStartText(prefs core.PreferenceScores) string {
	if len(prefs) == 0 {
		return coldStartFallback
	}

	var fragments []string
	for _, c := range core.Categories {
		if prefs[c] > PreferenceThreshold {
			fragments = append(fragments, c.Description())
		}
	}

	if len(fragments) == 0 {
		return coldStartFallback
	}
	return coldStartPrefix + strings.Join(fragments, ", ")
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
