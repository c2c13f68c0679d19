package core

import "context"

// EmbeddingProvider 是文本向量化/分类服务的领域接口（外部协作方，仅消费其调用契约）。
//
// 约定：
//   - GenerateEmbedding 在同一部署内维度 D 恒定
//   - ClassifyCategory 只允许输出封闭类目集合中的值，未识别返回 CategoryUnknown
//   - 重试/退避是实现方（adapter）的职责，调用方不做重试
//
// 实现：
//   - provider.OpenAIProvider 实现此接口
type EmbeddingProvider interface {
	// GenerateEmbedding 把文本转换为固定维度向量
	GenerateEmbedding(ctx context.Context, text string) ([]float64, error)

	// ClassifyCategory 把文本归入封闭类目集合；无法归类时返回 CategoryUnknown（非错误）
	ClassifyCategory(ctx context.Context, text string) (Category, error)
}
