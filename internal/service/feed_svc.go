package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/repository"
)

// ==================== Feed 导入服务 ====================
// 解析 NuOrder 风格的供应商 CSV 导出：按供应商白名单过滤行，
// 从 "Other - Style Number"（缺失时退回 Handle）提取款式/色号，
// 数值字段清洗（数量缺失按 0，MSRP 可空），落库为变体行。

// 目标供应商行（其余行跳过）
var feedVendors = map[string]bool{
	"NIKE - Tennis": true,
	"NIKE - Core":   true,
	"NIKE - Golf":   true,
}

var (
	styleColorRe  = regexp.MustCompile(`([A-Z]{2}\d{4})-(\d{1,3})`)
	colorSuffixRe = regexp.MustCompile(`^(\d{1,3})([A-Za-z]+)$`)
)

// FeedService Feed 导入服务
type FeedService struct {
	feedRepo repository.FeedRepository
}

// NewFeedService 创建 Feed 导入服务
func NewFeedService(feedRepo repository.FeedRepository) *FeedService {
	return &FeedService{feedRepo: feedRepo}
}

// ==================== 标识规范化 ====================

// NormalizeStyleCode 款式编码统一大写
func NormalizeStyleCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NormalizeColorCode 色号规范化：纯数字 3 位补零；数字+字母后缀的
// 数字部分补零、字母大写；其余原样大写
func NormalizeColorCode(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if isDigits(s) {
		return zeroPad3(s)
	}
	if m := colorSuffixRe.FindStringSubmatch(s); m != nil {
		return zeroPad3(m[1]) + strings.ToUpper(m[2])
	}
	return strings.ToUpper(s)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func zeroPad3(s string) string {
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// splitStyleColor 从 "BV0217-382" 形态的字段提取 (款式, 色号)；
// Handle 列为小写形态，先统一大写再匹配
func splitStyleColor(val string) (string, string) {
	m := styleColorRe.FindStringSubmatch(strings.ToUpper(val))
	if m == nil {
		return "", ""
	}
	return m[1], m[2]
}

// ==================== CSV 导入 ====================

// ImportResult Feed 导入结果
type ImportResult struct {
	ImportID  string `json:"import_id"`
	RowCount  int    `json:"row_count"`
	SkipCount int    `json:"skip_count"`
}

// ImportCSV 解析并落库一份供应商 CSV 导出
func (s *FeedService) ImportCSV(ctx context.Context, r io.Reader, sourceFile string) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取 Feed 表头失败: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"Vendor", "Title"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("Feed 缺少必需列: %s", required)
		}
	}

	get := func(row []string, name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var variants []model.FeedVariant
	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取 Feed 行失败: %w", err)
		}

		vendor := get(row, "Vendor")
		if !feedVendors[vendor] {
			skipped++
			continue
		}

		// 优先 "Other - Style Number"，缺失退回 Handle
		scSrc := get(row, "Other - Style Number")
		if scSrc == "" {
			scSrc = get(row, "Handle")
		}
		styleCode, colorCode := splitStyleColor(scSrc)
		if styleCode == "" || colorCode == "" {
			skipped++
			continue
		}

		qty := 0
		if q, err := strconv.ParseFloat(get(row, "Variant Inventory Qty"), 64); err == nil {
			qty = int(q)
		}
		var msrp *float64
		if m, err := strconv.ParseFloat(get(row, "Variant Compare At Price"), 64); err == nil {
			msrp = &m
		}

		variants = append(variants, model.FeedVariant{
			StyleCode:    NormalizeStyleCode(styleCode),
			ColorCode:    NormalizeColorCode(colorCode),
			Vendor:       vendor,
			ItemType:     get(row, "Type"),
			Season:       get(row, "Other - Season"),
			RawSize:      get(row, "Option1 Value"),
			RawColorName: get(row, "Option2 Value"),
			RawTitle:     get(row, "Title"),
			SKU:          get(row, "Variant SKU"),
			Quantity:     qty,
			MSRP:         msrp,
		})
	}

	imp := &model.FeedImport{
		ImportID:   uuid.NewString(),
		SourceFile: sourceFile,
		RowCount:   len(variants),
		SkipCount:  skipped,
	}
	if err := s.feedRepo.CreateImport(ctx, imp, variants); err != nil {
		return nil, fmt.Errorf("Feed 落库失败: %w", err)
	}
	log.Printf("[FeedService] 导入完成: import=%s rows=%d skipped=%d", imp.ImportID, imp.RowCount, imp.SkipCount)

	return &ImportResult{ImportID: imp.ImportID, RowCount: imp.RowCount, SkipCount: imp.SkipCount}, nil
}

// ==================== 选择解析 ====================

// ParseSelectionCSV 从选择 CSV 解析款色组合。
// 接受 [style_code,color_code] 两列或单列 [style_color]；
// 两种列都不存在属于致命输入错误。
func ParseSelectionCSV(r io.Reader) ([]Selection, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("读取选择文件表头失败: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}

	_, hasStyle := cols["style_code"]
	_, hasColor := cols["color_code"]
	_, hasCombined := cols["style_color"]
	if !(hasStyle && hasColor) && !hasCombined {
		return nil, fmt.Errorf("选择文件必须包含 [style_code,color_code] 或 [style_color] 列")
	}

	var selections []Selection
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取选择文件失败: %w", err)
		}
		get := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		var sc, cc string
		if hasStyle && hasColor {
			sc, cc = get("style_code"), get("color_code")
		} else {
			val := get("style_color")
			if !strings.Contains(val, "-") {
				continue
			}
			parts := strings.SplitN(val, "-", 2)
			sc, cc = parts[0], parts[1]
		}
		sc = NormalizeStyleCode(sc)
		cc = NormalizeColorCode(cc)
		if sc != "" && cc != "" {
			selections = append(selections, Selection{StyleCode: sc, ColorCode: cc})
		}
	}
	return selections, nil
}

// ParseSelectionCodes 解析 "BV0217-382" 形态的款色列表；格式错误属于致命输入错误
func ParseSelectionCodes(codes []string) ([]Selection, error) {
	var selections []Selection
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		if !strings.Contains(code, "-") {
			return nil, fmt.Errorf("非法的款色代码 %q，期望形如 BV0217-382", code)
		}
		parts := strings.SplitN(code, "-", 2)
		sc := NormalizeStyleCode(parts[0])
		cc := NormalizeColorCode(parts[1])
		if sc == "" || cc == "" {
			return nil, fmt.Errorf("非法的款色代码 %q", code)
		}
		selections = append(selections, Selection{StyleCode: sc, ColorCode: cc})
	}
	return selections, nil
}

// ==================== 颜色词表提取 ====================

// ColorVocabEntry 原始颜色词表条目
type ColorVocabEntry struct {
	RawColor     string `json:"raw_color"`
	Count        int    `json:"count"`
	SampleStyles string `json:"sample_styles"` // 逗号分隔，至多 5 个
}

// ExtractColorVocab 统计一个导入批次内的原始颜色名（供维护色号映射表）
func (s *FeedService) ExtractColorVocab(ctx context.Context, importID string) ([]ColorVocabEntry, error) {
	variants, err := s.feedRepo.ListVariants(ctx, importID)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	styles := map[string]map[string]bool{}
	for _, v := range variants {
		raw := strings.TrimSpace(v.RawColorName)
		if raw == "" {
			continue
		}
		counts[raw]++
		if styles[raw] == nil {
			styles[raw] = map[string]bool{}
		}
		styles[raw][v.StyleCode] = true
	}

	entries := make([]ColorVocabEntry, 0, len(counts))
	for raw, n := range counts {
		var sample []string
		for sc := range styles[raw] {
			sample = append(sample, sc)
		}
		sort.Strings(sample)
		if len(sample) > 5 {
			sample = sample[:5]
		}
		entries = append(entries, ColorVocabEntry{
			RawColor:     raw,
			Count:        n,
			SampleStyles: strings.Join(sample, ","),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].RawColor < entries[j].RawColor })
	return entries, nil
}
