package provider

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rushteam/eventrec/core"
)

// EmbeddingDim 是 embedding 模型的固定输出维度（text-embedding-3-small）。
// 同一部署内维度恒定，是向量索引维度 D 的来源。
const EmbeddingDim = 1536

// Config 是 OpenAI Provider 的配置。
type Config struct {
	BaseURL        string
	APIKey         string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		EmbeddingModel: "text-embedding-3-small",
		ChatModel:      "gpt-4o-mini",
		Timeout:        30 * time.Second,
	}
}

// OpenAIProvider 是基于 OpenAI 兼容接口的 core.EmbeddingProvider 实现。
//
// 约定：
//   - GenerateEmbedding 输出维度恒为 EmbeddingDim
//   - ClassifyCategory 只输出封闭类目集合中的值；模型输出不在集合内时
//     返回 CategoryUnknown（降级，不是错误）
//   - 调用失败以 PROVIDER_ERROR 上浮，本层不做重试
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider 创建 Provider 实例。
func NewOpenAIProvider(cfg *Config) *OpenAIProvider {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}
}

// GenerateEmbedding 实现 core.EmbeddingProvider 接口。
func (p *OpenAIProvider) GenerateEmbedding(ctx context.Context, text string) ([]float64, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(p.config.EmbeddingModel),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, providerErr("create embedding: " + err.Error())
	}
	if len(resp.Data) == 0 {
		return nil, providerErr("empty embedding response")
	}

	emb := resp.Data[0].Embedding
	out := make([]float64, len(emb))
	for i, v := range emb {
		out[i] = float64(v)
	}
	return out, nil
}

// ClassifyCategory 实现 core.EmbeddingProvider 接口。
func (p *OpenAIProvider) ClassifyCategory(ctx context.Context, text string) (core.Category, error) {
	names := make([]string, len(core.Categories))
	for i, c := range core.Categories {
		names[i] = string(c)
	}
	prompt := "Classify this university club event into ONE of these categories: " +
		strings.Join(names, ", ") + ". Respond with only the category name."

	if len(text) > 2000 {
		text = text[:2000]
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.config.ChatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.1,
		MaxTokens:   50,
	})
	if err != nil {
		return core.CategoryUnknown, providerErr("classify category: " + err.Error())
	}
	if len(resp.Choices) == 0 {
		return core.CategoryUnknown, nil
	}

	category := core.Category(strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content)))
	if !core.ValidateCategory(category) {
		return core.CategoryUnknown, nil
	}
	return category, nil
}

// EmbedEvent 把一条原始事件组装为 EventEmbedding：清洗文案 → 向量化 → 分类。
// 分类失败降级为 CategoryUnknown；向量化失败上浮。
func (p *OpenAIProvider) EmbedEvent(ctx context.Context, event core.Event) (core.EventEmbedding, error) {
	clean := PrepareEventText(event.Content)
	vector, err := p.GenerateEmbedding(ctx, clean)
	if err != nil {
		return core.EventEmbedding{}, err
	}

	category := event.Category
	if category == core.CategoryUnknown {
		category, err = p.ClassifyCategory(ctx, event.Content)
		if err != nil {
			slog.Warn("classify event category failed, using unknown",
				"event_id", event.ID, "err", err)
			category = core.CategoryUnknown
		}
	}

	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return core.EventEmbedding{
		EventID:   event.ID,
		Vector:    vector,
		Category:  category,
		CreatedAt: createdAt,
	}, nil
}

var (
	hashtagRe    = regexp.MustCompile(`#(\w+)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// PrepareEventText 清洗事件文案：去掉话题标签符号、去除 emoji、折叠空白、截断到 8000 字符。
func PrepareEventText(caption string) string {
	clean := hashtagRe.ReplaceAllString(caption, "$1")
	clean = stripEmoji(clean)
	clean = strings.TrimSpace(whitespaceRe.ReplaceAllString(clean, " "))
	if len(clean) > 8000 {
		clean = clean[:8000]
	}
	return clean
}

// stripEmoji 过滤常见 emoji 码位区间。
func stripEmoji(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 0x1F600 && r <= 0x1F64F, // 表情
			r >= 0x1F300 && r <= 0x1F5FF, // 符号与象形
			r >= 0x1F680 && r <= 0x1F6FF, // 交通与地图
			r >= 0x1F1E0 && r <= 0x1F1FF, // 区域指示
			r >= 0x2600 && r <= 0x26FF, // 杂项符号
			r >= 0x2700 && r <= 0x27BF: // 装饰符号
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func providerErr(msg string) *core.DomainError {
	return core.NewDomainError(core.ModuleProvider, core.ErrorCodeProviderError, msg)
}

// 确保实现了接口
var _ core.EmbeddingProvider = (*OpenAIProvider)(nil)
