// Package engine 是推荐编排层：组装画像 → 召回 → 过滤 → 重排 的完整链路，
// 对外提供单用户推荐、批量推荐与索引重载三个入口。
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/eventrec/core"
	"github.com/rushteam/eventrec/filter"
	"github.com/rushteam/eventrec/pipeline"
	"github.com/rushteam/eventrec/profile"
	"github.com/rushteam/eventrec/recall"
	"github.com/rushteam/eventrec/rerank"
)

// Engine 是推荐引擎的编排入口。
//
// 依赖全部通过接口注入：
//   - core.Datastore 提供事件向量、交互历史与偏好分
//   - core.VectorIndex 提供进程内向量检索
//   - core.EmbeddingProvider 提供冷启动文本向量化
//
// 单用户链路失败时错误上浮；批量链路中单个用户的失败被吸收为空结果并记录日志，
// 不影响同批其他用户。
type Engine struct {
	cfg       Config
	datastore core.Datastore
	index     core.VectorIndex
	builder   *profile.Builder
	pipe      *pipeline.Pipeline
	logger    *slog.Logger
}

// Option 配置 Engine 的可选项。
type Option func(*options)

type options struct {
	logger      *slog.Logger
	preferences core.PreferenceSource
	filters     []filter.Filter
}

// WithLogger 注入结构化日志器，缺省使用 slog.Default()。
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithPreferenceSource 覆盖冷启动偏好分来源（如 feast.PreferenceSource）。
// 缺省直接从 Datastore 读取。
func WithPreferenceSource(src core.PreferenceSource) Option {
	return func(o *options) { o.preferences = src }
}

// WithFilters 在召回与重排之间插入过滤器（如 filter.DeliveredFilter）。
func WithFilters(filters ...filter.Filter) Option {
	return func(o *options) { o.filters = append(o.filters, filters...) }
}

// New 创建推荐引擎并组装默认管道。
func New(
	cfg Config,
	ds core.Datastore,
	index core.VectorIndex,
	provider core.EmbeddingProvider,
	opts ...Option,
) *Engine {
	cfg.normalize()

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	builder := profile.NewBuilder(ds, index, provider)
	builder.Preferences = o.preferences

	nodes := []pipeline.Node{
		&profile.Node{Builder: builder},
		&recall.TwoTowerRecall{
			Builder:    builder,
			Index:      index,
			Datastore:  ds,
			TopK:       cfg.TopK,
			Multiplier: cfg.CandidateMultiplier,
		},
	}
	if len(o.filters) > 0 {
		nodes = append(nodes, &filter.FilterNode{Filters: o.filters})
	}
	nodes = append(nodes, rerank.NewBusiness(rerank.Config{
		TopK:             cfg.TopK,
		MaxDaysOld:       cfg.MaxDaysOld,
		SimilarityWeight: cfg.SimilarityWeight,
		RecencyWeight:    cfg.RecencyWeight,
		DiversityPenalty: cfg.DiversityPenalty,
	}))

	return &Engine{
		cfg:       cfg,
		datastore: ds,
		index:     index,
		builder:   builder,
		pipe:      &pipeline.Pipeline{Nodes: nodes},
		logger:    o.logger,
	}
}

// Config 返回引擎生效的配置（含回填的默认值）。
func (e *Engine) Config() Config { return e.cfg }

// LoadEventIndex 从数据层全量加载事件向量并重建索引。
// 维度不合法的行跳过并告警，不中断加载。
//
// 重载路径是 Clear + AddBatch 的整体替换，重载期间不应有并发查询；
// 常规用法是启动时调用一次，之后由外部触发周期性重载。
func (e *Engine) LoadEventIndex(ctx context.Context) error {
	rows, err := e.datastore.FetchAllEventEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("fetch event embeddings: %w", err)
	}

	dim := e.index.Dimension()
	entries := make([]core.VectorEntry, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		if len(row.Vector) != dim {
			skipped++
			e.logger.Warn("skip event embedding with bad dimension",
				"event_id", row.EventID,
				"got", len(row.Vector),
				"want", dim,
			)
			continue
		}
		entries = append(entries, core.VectorEntry{
			ID:     row.EventID,
			Vector: row.Vector,
			Meta: core.VectorMeta{
				Category:  row.Category,
				CreatedAt: row.CreatedAt,
			},
		})
	}

	e.index.Clear()
	if err := e.index.AddBatch(entries); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}

	e.logger.Info("event index loaded",
		"events", len(entries),
		"skipped", skipped,
		"dimension", dim,
	)
	return nil
}

// GetRecommendations 为单个用户生成推荐列表。
// 没有可推荐事件时返回空切片（不是错误）；任何环节失败错误上浮。
func (e *Engine) GetRecommendations(ctx context.Context, userID string) ([]core.Recommendation, error) {
	if userID == "" {
		return nil, core.NewDomainError(core.ModuleEngine, core.ErrorCodeInvalidInput, "user id is required")
	}

	rctx := &core.RecommendContext{UserID: userID}
	items, err := e.pipe.Run(ctx, rctx, nil)
	if err != nil {
		return nil, fmt.Errorf("recommend for user %s: %w", userID, err)
	}

	recs := make([]core.Recommendation, 0, len(items))
	for i, it := range items {
		recs = append(recs, it.Recommendation(i+1))
	}
	return recs, nil
}

// GetBatchRecommendations 为多个用户生成推荐。
//
// 执行模型：用户列表按 BatchChunkSize 分片，片内并发、片间串行，
// 控制下游（Provider / 数据层）的瞬时压力。单个用户失败不污染同批其他用户：
// 吸收为空列表并记录日志。返回的 map 恒包含全部入参 userID。
func (e *Engine) GetBatchRecommendations(ctx context.Context, userIDs []string) (map[string][]core.Recommendation, error) {
	results := make(map[string][]core.Recommendation, len(userIDs))
	if len(userIDs) == 0 {
		return results, nil
	}

	var mu sync.Mutex
	chunkSize := e.cfg.BatchChunkSize

	for start := 0; start < len(userIDs); start += chunkSize {
		end := start + chunkSize
		if end > len(userIDs) {
			end = len(userIDs)
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, userID := range userIDs[start:end] {
			userID := userID
			g.Go(func() error {
				recs, err := e.GetRecommendations(gctx, userID)
				if err != nil {
					e.logger.Error("batch recommendation failed",
						"user_id", userID,
						"error", err,
					)
					recs = []core.Recommendation{}
				}
				mu.Lock()
				results[userID] = recs
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results, err
		}
	}
	return results, nil
}
