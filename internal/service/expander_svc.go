package service

import (
	"regexp"
	"strings"

	"shopify_feed_v1_202608/internal/rules"
)

// ==================== 标题展开服务 ====================
// 将供应商缩写标题还原为可读标题。
// 第一个 token 先查位置敏感表（性别/年龄段标记），所有 token 查通用表，
// 未命中的 token 原样保留（静默尽力而为，查不到不算错误）。

var titleTokenRe = regexp.MustCompile(`[\s/]+`)

// ExpanderService 标题展开服务
type ExpanderService struct{}

// NewExpanderService 创建标题展开服务
func NewExpanderService() *ExpanderService {
	return &ExpanderService{}
}

// Expand 展开缩写标题，输出已做空白归一
func (s *ExpanderService) Expand(rs *rules.RuleSet, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	tokens := titleTokenRe.Split(raw, -1)
	out := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		if tok == "" {
			continue
		}
		key := strings.ToUpper(tok)
		if i == 0 {
			if ph, ok := rs.StartAbbr[key]; ok {
				out = append(out, ph)
				continue
			}
		}
		if ph, ok := rs.AnyAbbr[key]; ok {
			out = append(out, ph)
			continue
		}
		out = append(out, tok)
	}
	return strings.TrimSpace(strings.Join(out, " "))
}
