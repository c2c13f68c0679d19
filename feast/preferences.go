package feast

import (
	"context"
	"fmt"

	"github.com/rushteam/eventrec/core"
)

// DefaultFeatureView 是偏好分在 Feast 中的默认特征视图名。
const DefaultFeatureView = "user_preferences"

// DefaultEntityKey 是用户实体在 Feast 中的默认实体键。
const DefaultEntityKey = "user_id"

// PreferenceSource 把 Feast 在线特征适配为类目偏好分读取接口。
//
// 特征约定：视图 FeatureView 下每个类目一个 double 特征，
// 特征名即类目名（如 "user_preferences:tech_innovation"），取值 [0, 1]。
// 用户没有任何偏好特征时返回 nil，画像层据此走冷启动路径。
type PreferenceSource struct {
	Client Client

	// FeatureView 特征视图名，空则使用 DefaultFeatureView
	FeatureView string

	// EntityKey 实体键名，空则使用 DefaultEntityKey
	EntityKey string
}

// NewPreferenceSource 创建基于 Feast 的偏好分读取源。
func NewPreferenceSource(client Client) *PreferenceSource {
	return &PreferenceSource{Client: client}
}

// FetchUserPreferenceScores 读取单个用户的全部类目偏好分。
func (s *PreferenceSource) FetchUserPreferenceScores(ctx context.Context, userID string) (core.PreferenceScores, error) {
	view := s.FeatureView
	if view == "" {
		view = DefaultFeatureView
	}
	entityKey := s.EntityKey
	if entityKey == "" {
		entityKey = DefaultEntityKey
	}

	features := make([]string, 0, len(core.Categories))
	for _, c := range core.Categories {
		features = append(features, view+":"+string(c))
	}

	resp, err := s.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   features,
		EntityRows: []map[string]interface{}{{entityKey: userID}},
	})
	if err != nil {
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeDatastoreError,
			fmt.Sprintf("feast preferences for user %s: %v", userID, err))
	}
	if len(resp.FeatureVectors) == 0 {
		return nil, nil
	}

	values := resp.FeatureVectors[0].Values
	scores := make(core.PreferenceScores, len(values))
	for _, c := range core.Categories {
		v, ok := values[view+":"+string(c)]
		if !ok {
			continue
		}
		switch f := v.(type) {
		case float64:
			scores[c] = f
		case int64:
			scores[c] = float64(f)
		}
	}
	if len(scores) == 0 {
		return nil, nil
	}
	return scores, nil
}

var _ core.PreferenceSource = (*PreferenceSource)(nil)
