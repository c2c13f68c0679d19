package feast

import (
	"context"
	"time"
)

// Client 是 Feast Feature Store 的在线特征客户端接口。
//
// 推荐系统里用户偏好分数是典型的在线特征：离线管道按 feedback 日志
// 计算出每个类目的偏好，物化到 Feast 在线存储，服务侧按 user_id 实时读取。
// 本接口只保留在线读取能力，训练侧的历史特征与物化不在服务路径上。
//
// 参考：https://github.com/feast-dev/feast
type Client interface {
	// GetOnlineFeatures 按实体行批量获取在线特征。
	// 特征名格式为 "feature_view:feature"，例如 "user_preferences:tech_innovation"。
	GetOnlineFeatures(ctx context.Context, req *GetOnlineFeaturesRequest) (*GetOnlineFeaturesResponse, error)

	// Close 关闭客户端连接
	Close() error
}

// GetOnlineFeaturesRequest 获取在线特征请求
type GetOnlineFeaturesRequest struct {
	// Features 特征名称列表，例如 ["user_preferences:tech_innovation"]
	Features []string

	// EntityRows 实体行，例如 [{"user_id": "u-42"}]
	EntityRows []map[string]interface{}

	// Project 项目名称（可选，缺省用客户端配置）
	Project string
}

// GetOnlineFeaturesResponse 获取在线特征响应
type GetOnlineFeaturesResponse struct {
	// FeatureVectors 特征向量列表，每个元素对应一个实体行
	FeatureVectors []FeatureVector
}

// FeatureVector 特征向量
type FeatureVector struct {
	// Values 特征值，key 为特征名称
	Values map[string]interface{}

	// EntityRow 对应的实体行
	EntityRow map[string]interface{}
}

// ClientOption Feast 客户端配置选项
type ClientOption func(*ClientConfig)

// ClientConfig Feast 客户端配置
type ClientConfig struct {
	// Endpoint 服务端点，如 "localhost:6565"
	Endpoint string

	// Project 项目名称
	Project string

	// Timeout 请求超时
	Timeout time.Duration

	// Auth 认证配置（可选）
	Auth *AuthConfig
}

// AuthConfig 认证配置
type AuthConfig struct {
	// Type 认证类型，目前支持 "static"
	Type string

	// Token 静态 Token
	Token string
}

// WithTimeout 配置选项：设置超时时间
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ClientConfig) {
		c.Timeout = timeout
	}
}

// WithAuth 配置选项：设置认证信息
func WithAuth(auth *AuthConfig) ClientOption {
	return func(c *ClientConfig) {
		c.Auth = auth
	}
}
