package core

import "context"

// Datastore 是关系数据层的领域接口（只读）。
//
// 设计原则：
//   - 定义在领域层（core），由基础设施层（store）实现
//   - 本引擎只消费读取契约；schema、迁移、写入管道均为外部协作方
//   - 调用失败统一以 DATASTORE_ERROR 上浮：单用户模式传播给调用方，
//     批量模式吸收为空结果并记录日志
//
// 实现：
//   - store.PostgresDatastore 实现此接口（生产）
//   - store.MemoryDatastore 实现此接口（测试/原型）
type Datastore interface {
	// FetchAllEventEmbeddings 读取全量事件向量（索引整体重载用）
	FetchAllEventEmbeddings(ctx context.Context) ([]EventEmbedding, error)

	// FetchUserInteractions 读取用户的交互历史
	FetchUserInteractions(ctx context.Context, userID string) ([]Interaction, error)

	// FetchUserPreferenceScores 读取用户的类目偏好分；无记录时返回 nil（非错误）
	FetchUserPreferenceScores(ctx context.Context, userID string) (PreferenceScores, error)
}

// PreferenceSource 是偏好分的最小读取接口。
// Datastore 天然满足；feast.PreferenceSource 基于 Feature Store 提供另一实现，
// 便于把偏好分从关系库迁移到在线特征存储而不改动画像构建层。
type PreferenceSource interface {
	FetchUserPreferenceScores(ctx context.Context, userID string) (PreferenceScores, error)
}
