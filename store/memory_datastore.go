package store

import (
	"context"
	"sync"

	"github.com/rushteam/eventrec/core"
)

// MemoryDatastore 是内存实现的 core.Datastore，用于测试/开发/原型。
// 平替 PostgresDatastore，数据由调用方直接写入字段。
type MemoryDatastore struct {
	mu sync.RWMutex

	Embeddings   []core.EventEmbedding
	Interactions map[string][]core.Interaction
	Preferences  map[string]core.PreferenceScores

	// FailFor 中的用户读取时返回 DATASTORE_ERROR，用于批量隔离测试
	FailFor map[string]bool
}

func NewMemoryDatastore() *MemoryDatastore {
	return &MemoryDatastore{
		Interactions: make(map[string][]core.Interaction),
		Preferences:  make(map[string]core.PreferenceScores),
		FailFor:      make(map[string]bool),
	}
}

func (m *MemoryDatastore) FetchAllEventEmbeddings(ctx context.Context) ([]core.EventEmbedding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]core.EventEmbedding, len(m.Embeddings))
	copy(out, m.Embeddings)
	return out, nil
}

func (m *MemoryDatastore) FetchUserInteractions(ctx context.Context, userID string) ([]core.Interaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailFor[userID] {
		return nil, datastoreErr("fetch interactions: injected failure for " + userID)
	}
	return m.Interactions[userID], nil
}

func (m *MemoryDatastore) FetchUserPreferenceScores(ctx context.Context, userID string) (core.PreferenceScores, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.FailFor[userID] {
		return nil, datastoreErr("fetch preference scores: injected failure for " + userID)
	}
	return m.Preferences[userID], nil
}

// AddInteraction 追加一条交互记录（交互记录一经写入不可变）。
func (m *MemoryDatastore) AddInteraction(in core.Interaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Interactions[in.UserID] = append(m.Interactions[in.UserID], in)
}

var _ core.Datastore = (*MemoryDatastore)(nil)
