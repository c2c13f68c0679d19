package core

import "time"

// Event 是推荐对象的原始形态：一条带文本内容的事件。
// 事件由外部采集管道写入数据层，本引擎只读。
type Event struct {
	ID        string
	Content   string    // 原始文案（caption）
	Category  Category  // 可能为 CategoryUnknown
	CreatedAt time.Time // 事件时间（优先取 event_date，其次采集时间）
}

// EventEmbedding 是事件的向量化形态。
// 不变式：Vector 长度恒等于索引维度 D（加载索引时校验，不合法行跳过）。
type EventEmbedding struct {
	EventID   string
	Vector    []float64
	Category  Category
	CreatedAt time.Time
}

// Action 是用户对事件的反馈动作。记录后不可变。
type Action string

const (
	ActionLike    Action = "like"
	ActionDislike Action = "dislike"
	ActionClick   Action = "click"
	ActionView    Action = "view"
)

// actionWeights 是画像加权表：like 强正、click 弱正、dislike 弱负，
// 其余动作（含 view 与未识别动作）权重为 0，不参与加权。
var actionWeights = map[Action]float64{
	ActionLike:    1.0,
	ActionClick:   0.5,
	ActionDislike: -0.5,
}

// Weight 返回动作在画像加权中的权重，未识别动作为 0。
func (a Action) Weight() float64 {
	return actionWeights[a]
}

// Interaction 是一条用户-事件交互记录。
type Interaction struct {
	UserID    string
	EventID   string
	Action    Action
	Timestamp time.Time
}

// Candidate 是向量召回阶段的候选：携带原始相似度与结构化元信息，
// 尚未经过业务规则重排。
type Candidate struct {
	EventID    string
	Similarity float64
	Category   Category
	CreatedAt  time.Time
}

// Recommendation 是重排后的最终推荐结果。
type Recommendation struct {
	EventID    string
	Similarity float64 // 余弦相似度（召回原始分）
	Recency    float64 // 新鲜度分（线性衰减，0-1）
	FinalScore float64 // 加权最终分
	Reason     string  // 人类可读的推荐理由
	Rank       int     // 排名位置，从 1 开始
}
