package service

import (
	"strings"
)

// ==================== 标题去重服务 ====================
// 冲突定义：基准标题与本批次内其他款式重复，或与平台现有标题相同。
// 第一遍：冲突且有季节值的款式追加一次 " - {season}"。
// 第二遍：季节处理后仍然重复的款式（无季节，或同季节同标题）追加
// " - {style_code}"，保证批内标题最终唯一。单次确定性处理，可重入：
// 相同输入重复运行产生相同后缀，不会二次追加。

// DedupService 标题去重服务
type DedupService struct{}

// NewDedupService 创建标题去重服务
func NewDedupService() *DedupService {
	return &DedupService{}
}

// ResolveTitles 为每个款式回填 FinalTitle 与 TitleNote。
// existingTitles 为平台现有标题集合（快照获取失败时传空集，降级为仅批内去重）。
func (s *DedupService) ResolveTitles(groups []*StyleGroup, existingTitles map[string]bool) {
	// 批内基准标题计数
	counts := make(map[string]int, len(groups))
	for _, g := range groups {
		counts[g.BaseTitle]++
	}

	// 第一遍：有季节值的冲突款式追加季节后缀
	for _, g := range groups {
		g.FinalTitle = g.BaseTitle
		if counts[g.BaseTitle] <= 1 && !existingTitles[g.BaseTitle] {
			continue
		}
		season := strings.TrimSpace(g.Season)
		if season == "" {
			continue // 无季节值的款式先保持基准标题，第二遍兜底
		}
		if !strings.HasSuffix(g.FinalTitle, " - "+season) {
			g.FinalTitle = g.FinalTitle + " - " + season
		}
		g.TitleNote = "title collision: season suffix appended"
	}

	// 第二遍：季节处理后仍重复（批内或平台）的款式，追加款式编码后缀。
	// 首个出现者保留当前标题，与代表性款色组的选取规则一致。
	finalCounts := make(map[string]int, len(groups))
	for _, g := range groups {
		finalCounts[g.FinalTitle]++
	}
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		dup := (finalCounts[g.FinalTitle] > 1 && seen[g.FinalTitle]) || existingTitles[g.FinalTitle]
		if dup {
			if !strings.HasSuffix(g.FinalTitle, " - "+g.StyleCode) {
				g.FinalTitle = g.FinalTitle + " - " + g.StyleCode
			}
			if strings.TrimSpace(g.Season) == "" {
				g.TitleNote = "title collision: no season, style code suffix appended"
			} else {
				g.TitleNote = "title collision: style code suffix appended"
			}
		}
		seen[g.FinalTitle] = true
	}
}
