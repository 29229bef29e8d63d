package fuzzy

import (
	"strings"

	fuzzywuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// Matcher 近似字符串匹配器
//
// 返回候选池中与输入最相似的条目及其相似度（0-100）。
// 引擎只依赖此接口，具体算法可替换。
type Matcher interface {
	BestMatch(candidate string, pool []string) (match string, score int)
}

// RatioMatcher 基于编辑距离比率的默认匹配器
type RatioMatcher struct{}

// NewRatioMatcher 创建默认匹配器
func NewRatioMatcher() *RatioMatcher {
	return &RatioMatcher{}
}

// BestMatch 在候选池中找最佳匹配（大小写不敏感）
//
// 池为空或输入为空白时返回 ("", 0)。
func (m *RatioMatcher) BestMatch(candidate string, pool []string) (string, int) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || len(pool) == 0 {
		return "", 0
	}

	best := ""
	bestScore := 0
	for _, name := range pool {
		score := fuzzywuzzy.Ratio(strings.ToUpper(candidate), strings.ToUpper(name))
		if score > bestScore {
			best = name
			bestScore = score
		}
	}
	return best, bestScore
}
