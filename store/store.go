package store

// 注意：此包只包含实现，接口定义在 core 包。
// 使用 core.VectorIndex、core.Store/KeyValueStore 和 core.Datastore 接口。
//
// 示例：
//   var index core.VectorIndex = NewMemoryVectorIndex(1536)
//   var kvStore core.KeyValueStore = NewMemoryStore()
//   var ds core.Datastore = NewPostgresDatastore(dsn)
