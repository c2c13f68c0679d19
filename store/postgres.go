package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pgvector/pgvector-go"

	// PostgreSQL 驱动
	_ "github.com/lib/pq"

	"github.com/rushteam/eventrec/core"
)

// PostgresDatastore 是 PostgreSQL 实现的 core.Datastore（只读）。
//
// 依赖的表（schema 与迁移由外部数据管道维护，本引擎只读）：
//   - event_embeddings(event_id, embedding vector, category, created_at)
//   - feedback_logs(user_id, event_id, action, created_at)
//   - user_preference_scores(user_id, category, score)
//
// embedding 列使用 pgvector 扩展存储，读取时经 pgvector.Vector 解码。
type PostgresDatastore struct {
	db *sql.DB
}

// NewPostgresDatastore 打开数据库连接并做连通性检查。
func NewPostgresDatastore(dsn string) (*PostgresDatastore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, datastoreErr("open database: " + err.Error())
	}
	if err := db.Ping(); err != nil {
		return nil, datastoreErr("ping database: " + err.Error())
	}
	return &PostgresDatastore{db: db}, nil
}

// NewPostgresDatastoreFromDB 复用外部已建立的连接（便于测试与连接池共享）。
func NewPostgresDatastoreFromDB(db *sql.DB) *PostgresDatastore {
	return &PostgresDatastore{db: db}
}

func (p *PostgresDatastore) Close() error {
	return p.db.Close()
}

// FetchAllEventEmbeddings 实现 core.Datastore 接口。
func (p *PostgresDatastore) FetchAllEventEmbeddings(ctx context.Context) ([]core.EventEmbedding, error) {
	const query = `
		SELECT event_id, embedding, category, created_at
		FROM event_embeddings
	`

	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, datastoreErr("select event_embeddings: " + err.Error())
	}
	defer rows.Close()

	var out []core.EventEmbedding
	for rows.Next() {
		var (
			emb      core.EventEmbedding
			vec      pgvector.Vector
			category sql.NullString
		)
		if err := rows.Scan(&emb.EventID, &vec, &category, &emb.CreatedAt); err != nil {
			return nil, datastoreErr("scan event_embeddings: " + err.Error())
		}
		if category.Valid {
			emb.Category = core.Category(category.String)
		}
		emb.Vector = float32sTo64(vec.Slice())
		out = append(out, emb)
	}
	if err := rows.Err(); err != nil {
		return nil, datastoreErr("iterate event_embeddings: " + err.Error())
	}
	return out, nil
}

// FetchUserInteractions 实现 core.Datastore 接口。
func (p *PostgresDatastore) FetchUserInteractions(ctx context.Context, userID string) ([]core.Interaction, error) {
	const query = `
		SELECT user_id, event_id, action, created_at
		FROM feedback_logs
		WHERE user_id = $1
		ORDER BY created_at ASC
	`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, datastoreErr("select feedback_logs: " + err.Error())
	}
	defer rows.Close()

	var out []core.Interaction
	for rows.Next() {
		var (
			in     core.Interaction
			action string
			ts     time.Time
		)
		if err := rows.Scan(&in.UserID, &in.EventID, &action, &ts); err != nil {
			return nil, datastoreErr("scan feedback_logs: " + err.Error())
		}
		in.Action = core.Action(action)
		in.Timestamp = ts
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, datastoreErr("iterate feedback_logs: " + err.Error())
	}
	return out, nil
}

// FetchUserPreferenceScores 实现 core.Datastore 接口。
// 无记录时返回 nil map（非错误），画像层据此走均匀基线。
func (p *PostgresDatastore) FetchUserPreferenceScores(ctx context.Context, userID string) (core.PreferenceScores, error) {
	const query = `
		SELECT category, score
		FROM user_preference_scores
		WHERE user_id = $1
	`

	rows, err := p.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, datastoreErr("select user_preference_scores: " + err.Error())
	}
	defer rows.Close()

	var prefs core.PreferenceScores
	for rows.Next() {
		var (
			category string
			score    float64
		)
		if err := rows.Scan(&category, &score); err != nil {
			return nil, datastoreErr("scan user_preference_scores: " + err.Error())
		}
		if prefs == nil {
			prefs = make(core.PreferenceScores)
		}
		prefs[core.Category(category)] = score
	}
	if err := rows.Err(); err != nil {
		return nil, datastoreErr("iterate user_preference_scores: " + err.Error())
	}
	return prefs, nil
}

func datastoreErr(msg string) *core.DomainError {
	return core.NewDomainError(core.ModuleDatastore, core.ErrorCodeDatastoreError, msg)
}

func float32sTo64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

// 确保实现了接口
var _ core.Datastore = (*PostgresDatastore)(nil)
