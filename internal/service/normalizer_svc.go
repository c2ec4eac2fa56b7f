package service

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"shopify_feed_v1_202608/internal/rules"
)

// ==================== 属性规范化服务 ====================

// ColorSuggester 外部颜色命名建议能力（可缺席、可失败）
// 失败不会中断流水线，调用方落回原始颜色名继续处理
type ColorSuggester interface {
	SuggestNames(ctx context.Context, styleCode string, rawNames []string) ([]string, error)
}

// NormalizerService 尺码与颜色规范化服务
type NormalizerService struct{}

// NewNormalizerService 创建规范化服务
func NewNormalizerService() *NormalizerService {
	return &NormalizerService{}
}

// ==================== 尺码规范化 ====================

// 鞋码形如 "W 8.5" / "M10"
var shoeSizeRe = regexp.MustCompile(`(?i)^[MW]\s*(\d+(?:\.\d)?)$`)

var sizeSplitRe = regexp.MustCompile(`[\s/]+`)

// 尺码前可剥离的人群限定词
var sizeDemographics = map[string]bool{
	"WOMEN": true, "WOMENS": true, "WOMEN'S": true,
	"MENS": true, "MEN": true, "MEN'S": true,
	"BOYS": true, "GIRLS": true, "YOUTH": true, "KIDS": true,
	"M": true, "W": true, "G": true, "B": true, "YTH": true, "K": true,
}

// IsFootwear 按供应商分类判断是否鞋类（标题作为兜底）
func IsFootwear(itemType, title string) bool {
	t := strings.ToLower(itemType)
	if strings.Contains(t, "shoe") || strings.Contains(t, "footwear") {
		return true
	}
	return strings.Contains(strings.ToLower(title), "shoe")
}

// NormalizeSize 规范化单个变体的尺码
//   - 鞋类：剥离数字码前的 M/W 性别前缀（"W 8.5" -> "8.5"），其余原样
//   - 服装：剥离人群限定词后查闭集映射（"EXTRA LARGE" -> "XL"）
//   - 两级查表均未命中的字符串原样通过，不报错不改写
func (s *NormalizerService) NormalizeSize(rs *rules.RuleSet, rawSize, itemType string) string {
	raw := strings.TrimSpace(rawSize)
	if raw == "" {
		return raw
	}

	if IsFootwear(itemType, "") {
		if m := shoeSizeRe.FindStringSubmatch(raw); m != nil {
			return m[1]
		}
	}

	canon := strings.ToUpper(raw)
	canon = strings.ReplaceAll(canon, "-", " ")
	canon = strings.Join(strings.Fields(canon), " ")
	if mapped, ok := rs.SizeMap[canon]; ok {
		return mapped
	}

	// 剥离 "WOMENS S" / "M L" 这类前缀后再试
	tokens := sizeSplitRe.Split(canon, -1)
	if len(tokens) > 0 && sizeDemographics[tokens[0]] {
		tokens = tokens[1:]
	}
	if mapped, ok := rs.SizeMap[strings.Join(tokens, " ")]; ok {
		return mapped
	}
	// 两级查表均未命中：原样通过，不做任何改写
	return raw
}

// ==================== 颜色解析 ====================

// ColorResolution 一个款式内全部颜色组的解析结果
type ColorResolution struct {
	Names []string // 与输入颜色组一一对应，款式内大小写不敏感唯一
	Notes string   // 映射 / AI 使用情况备注
}

// ResolveStyleColors 解析一个款式内各颜色组的最终颜色名。
// 流程：色号表 -> 原始名兜底 -> （可选）AI 建议 -> 唯一性强制。
// suggester 可为 nil（能力缺席）；codes/rawNames 的顺序即稳定输入顺序，
// 唯一性冲突时保留首个出现者原名。
func (s *NormalizerService) ResolveStyleColors(ctx context.Context, rs *rules.RuleSet, suggester ColorSuggester, styleCode string, codes, rawNames []string) ColorResolution {
	n := len(codes)
	prelim := make([]string, n)
	resolved := make([]string, n)
	var mappingNotes []string

	// 第一步：色号表
	for i := 0; i < n; i++ {
		prelim[i] = rs.ColorByCode(codes[i])
		if prelim[i] != "" {
			resolved[i] = prelim[i]
			if prelim[i] != rawNames[i] {
				mappingNotes = append(mappingNotes, fmt.Sprintf("%s->%s", codes[i], prelim[i]))
			}
		} else {
			// 第二步：原始颜色名兜底
			resolved[i] = strings.TrimSpace(rawNames[i])
		}
	}

	// 第三步：对未映射颜色请求 AI 建议（能力缺席或失败时静默继续）
	aiNote := ""
	if suggester != nil {
		var unmapped []string
		seen := map[string]bool{}
		for i := 0; i < n; i++ {
			if prelim[i] == "" && rawNames[i] != "" && !seen[rawNames[i]] {
				unmapped = append(unmapped, rawNames[i])
				seen[rawNames[i]] = true
			}
		}
		if len(unmapped) > 0 {
			suggestions, err := suggester.SuggestNames(ctx, styleCode, unmapped)
			if err != nil {
				log.Printf("[Normalizer] 款式 %s AI颜色建议失败，使用原始名: %v", styleCode, err)
				aiNote = "AI color suggest failed: " + err.Error()
			} else {
				aiMap := make(map[string]string, len(unmapped))
				for i, raw := range unmapped {
					if i < len(suggestions) && strings.TrimSpace(suggestions[i]) != "" {
						aiMap[raw] = strings.TrimSpace(suggestions[i])
					}
				}
				for i := 0; i < n; i++ {
					if prelim[i] == "" {
						if sug, ok := aiMap[rawNames[i]]; ok {
							resolved[i] = sug
						}
					}
				}
				aiNote = "AI colors used"
			}
		}
	}

	// 第四步：款式内唯一性强制
	used := map[string]bool{}
	final := make([]string, n)
	for i := 0; i < n; i++ {
		candidate := strings.TrimSpace(resolved[i])
		if candidate == "" {
			candidate = titleCase(rawNames[i])
		}
		base := candidate
		counter := 2
		for candidate != "" && used[strings.ToLower(candidate)] {
			hint := firstWordTitle(rawNames[i])
			if hint != "" && candidate == base {
				candidate = base + " " + hint
			} else {
				candidate = fmt.Sprintf("%s %d", base, counter)
				counter++
			}
		}
		if candidate != "" {
			used[strings.ToLower(candidate)] = true
		}
		final[i] = candidate
	}

	notes := strings.Join(mappingNotes, ", ")
	if aiNote != "" {
		if notes != "" {
			notes += "; "
		}
		notes += aiNote
	}
	return ColorResolution{Names: final, Notes: notes}
}

// ==================== 小工具 ====================

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func firstWordTitle(s string) string {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return ""
	}
	return titleCase(fields[0])
}
