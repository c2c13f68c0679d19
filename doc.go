// Package eventrec 是一个校园活动个性化推荐引擎（Event Recommender）。
//
// 设计要点：
// - 双塔召回: 用户 embedding 与事件 embedding 同空间，余弦相似度近似相关性
// - Pipeline-first: 单用户推荐逻辑通过 Node 串联（Recall → Filter → ReRank）
// - Labels-first: labels 全链路透传与标准化 merge，支持 explain / 观测 / 策略驱动
// - 冷启动降级: 无有效交互时回退偏好文本向量化，保证恒有画像可用
package eventrec

import "github.com/rushteam/eventrec/pipeline"

// 轻量 facade：便于用户直接 import "eventrec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindProfile = pipeline.KindProfile
	KindRecall  = pipeline.KindRecall
	KindFilter  = pipeline.KindFilter
	KindReRank  = pipeline.KindReRank
)
