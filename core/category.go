package core

// Category 是事件类目。类目集合是封闭的：分类器只允许输出下列 13 个类目之一，
// 未识别时返回空 Category（CategoryUnknown）。
type Category string

// 官方事件类目（分类、embedding、用户偏好统一使用）
const (
	CategoryAcademicWorkshops Category = "academic_workshops"
	CategoryArtsMusic         Category = "arts_music"
	CategoryCareerNetworking  Category = "career_networking"
	CategoryEntrepreneurship  Category = "entrepreneurship"
	CategoryEnvironment       Category = "environment_sustainability"
	CategoryFoodDining        Category = "food_dining"
	CategoryGamingEsports     Category = "gaming_esports"
	CategoryHealthWellness    Category = "health_wellness"
	CategorySocialCultural    Category = "social_cultural"
	CategorySportsFitness     Category = "sports_fitness"
	CategoryTechInnovation    Category = "tech_innovation"
	CategoryTravelAdventure   Category = "travel_adventure"
	CategoryVolunteering      Category = "volunteering_community"

	// CategoryUnknown 表示类目缺失或分类失败
	CategoryUnknown Category = ""
)

// Categories 按字典序列出全部类目（顺序稳定，供提示词拼接与遍历使用）。
var Categories = []Category{
	CategoryAcademicWorkshops,
	CategoryArtsMusic,
	CategoryCareerNetworking,
	CategoryEntrepreneurship,
	CategoryEnvironment,
	CategoryFoodDining,
	CategoryGamingEsports,
	CategoryHealthWellness,
	CategorySocialCultural,
	CategorySportsFitness,
	CategoryTechInnovation,
	CategoryTravelAdventure,
	CategoryVolunteering,
}

// UniformBaseline 是新用户的均匀基线偏好分：1/13 ≈ 0.077
var UniformBaseline = 1.0 / float64(len(Categories))

// categoryDescriptions 是类目到自然语言描述片段的映射，用于冷启动文本拼接。
var categoryDescriptions = map[Category]string{
	CategoryAcademicWorkshops: "academic workshops, revision sessions, study groups",
	CategoryArtsMusic:         "arts, music, creative performances, exhibitions",
	CategoryCareerNetworking:  "career development, networking, industry connections",
	CategoryEntrepreneurship:  "startups, entrepreneurship, business",
	CategoryEnvironment:       "environment, sustainability, green initiatives, climate",
	CategoryFoodDining:        "food, dining, cooking, culinary experiences",
	CategoryGamingEsports:     "gaming, esports, video games, tournaments",
	CategoryHealthWellness:    "health, wellness, mental health, self-care",
	CategorySocialCultural:    "social events, parties, cultural activities",
	CategorySportsFitness:     "sports, fitness, physical activities",
	CategoryTechInnovation:    "technology, AI, machine learning, coding",
	CategoryTravelAdventure:   "travel, adventure, outdoor activities, exploration",
	CategoryVolunteering:      "volunteering, community service, charity events",
}

// ValidateCategory 检查类目是否属于封闭集合（"general" 仅在 API 入参校验时额外放行）。
func ValidateCategory(c Category) bool {
	_, ok := categoryDescriptions[c]
	return ok
}

// Description 返回类目的自然语言描述片段；未知类目返回空字符串。
func (c Category) Description() string {
	return categoryDescriptions[c]
}

// PreferenceScores 是用户对各类目的偏好分（0-1）。缺省时使用均匀基线。
type PreferenceScores map[Category]float64

// Get 返回类目的偏好分；缺省时返回均匀基线。
func (p PreferenceScores) Get(c Category) float64 {
	if p == nil {
		return UniformBaseline
	}
	if v, ok := p[c]; ok {
		return v
	}
	return UniformBaseline
}

// MatchKind 标记偏好匹配的计算方式，便于测试/观测断言匹配来源而非裸数值。
type MatchKind string

const (
	// MatchPreference 表示命中用户显式偏好分
	MatchPreference MatchKind = "preference"
	// MatchNeutral 表示类目缺失或未登记偏好，采用中性分
	MatchNeutral MatchKind = "neutral"
)

// NeutralMatchScore 是类目未知时的中性匹配分。
const NeutralMatchScore = 0.5

// PreferenceMatch 计算事件类目与用户偏好的匹配分。
// 类目缺失或偏好表中无该类目时返回显式的 NeutralMatch 结果，而非裸 0.5。
func PreferenceMatch(c Category, prefs PreferenceScores) (float64, MatchKind) {
	if c == CategoryUnknown {
		return NeutralMatchScore, MatchNeutral
	}
	if prefs != nil {
		if v, ok := prefs[c]; ok {
			return v, MatchPreference
		}
	}
	return NeutralMatchScore, MatchNeutral
}
