package rules

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ==================== CSV 覆盖加载 ====================
// 每张规则表对应一个可选的覆盖文件；文件不存在时使用内置默认。
// 覆盖文件列结构：
//   abbr_map.csv          abbr,phrase[,scope]   scope ∈ {start, any}，缺省 any
//   size_map.csv          raw_size,canonical
//   color_code_map.csv    color_code,color_name （纯数字色号自动 3 位补零）
//   product_type_map.csv  keyword,product_type[,priority]
//   title_category_map.csv keyword,category

const (
	FileAbbrMap        = "abbr_map.csv"
	FileSizeMap        = "size_map.csv"
	FileColorCodeMap   = "color_code_map.csv"
	FileProductTypeMap = "product_type_map.csv"
	FileTitleCategory  = "title_category_map.csv"
)

// Load 构建本次运行的规则集：内置默认 + dir 下的覆盖文件合并。
// dir 为空或不存在时直接返回默认规则集。覆盖文件格式错误视为致命输入错误。
func Load(dir string) (*RuleSet, error) {
	rs := Defaults()
	if dir == "" {
		return rs, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return rs, nil
	}

	if err := loadAbbrCSV(filepath.Join(dir, FileAbbrMap), rs); err != nil {
		return nil, err
	}
	if err := loadSizeCSV(filepath.Join(dir, FileSizeMap), rs); err != nil {
		return nil, err
	}
	if err := loadColorCodeCSV(filepath.Join(dir, FileColorCodeMap), rs); err != nil {
		return nil, err
	}
	if err := loadProductTypeCSV(filepath.Join(dir, FileProductTypeMap), rs); err != nil {
		return nil, err
	}
	if err := loadCategoryCSV(filepath.Join(dir, FileTitleCategory), rs); err != nil {
		return nil, err
	}
	rs.sortProductTypes()
	return rs, nil
}

// readCSVRows 读取 CSV 并按表头建列索引；文件不存在返回 (nil, nil, nil)
func readCSVRows(path string) (map[string]int, [][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err == io.EOF {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("读取规则文件 %s 表头失败: %w", filepath.Base(path), err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.ToLower(h))] = i
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("读取规则文件 %s 失败: %w", filepath.Base(path), err)
	}
	return cols, rows, nil
}

func field(cols map[string]int, row []string, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func loadAbbrCSV(path string, rs *RuleSet) error {
	cols, rows, err := readCSVRows(path)
	if err != nil || rows == nil {
		return err
	}
	if _, ok := cols["abbr"]; !ok {
		return fmt.Errorf("%s 缺少 abbr 列", FileAbbrMap)
	}
	// 覆盖文件存在时整表替换，而不是与默认值混用（与默认表保持同一语义来源）
	rs.StartAbbr = make(map[string]string)
	rs.AnyAbbr = make(map[string]string)
	for _, row := range rows {
		ab := strings.ToUpper(field(cols, row, "abbr"))
		ph := field(cols, row, "phrase")
		if ab == "" || ph == "" {
			continue
		}
		if strings.ToLower(field(cols, row, "scope")) == "start" {
			rs.StartAbbr[ab] = ph
		} else {
			rs.AnyAbbr[ab] = ph
		}
	}
	log.Printf("[Rules] 缩写表已从 %s 加载: start=%d any=%d", path, len(rs.StartAbbr), len(rs.AnyAbbr))
	return nil
}

func loadSizeCSV(path string, rs *RuleSet) error {
	cols, rows, err := readCSVRows(path)
	if err != nil || rows == nil {
		return err
	}
	for _, row := range rows {
		raw := strings.ToUpper(field(cols, row, "raw_size"))
		canon := strings.ToUpper(field(cols, row, "canonical"))
		if raw == "" || canon == "" {
			continue
		}
		rs.SizeMap[raw] = canon
	}
	return nil
}

func loadColorCodeCSV(path string, rs *RuleSet) error {
	cols, rows, err := readCSVRows(path)
	if err != nil || rows == nil {
		return err
	}
	for _, row := range rows {
		cc := field(cols, row, "color_code")
		name := field(cols, row, "color_name")
		if cc == "" || name == "" {
			continue
		}
		if isDigits(cc) {
			cc = zeroPad3(cc)
		}
		rs.ColorCodes[cc] = name
	}
	return nil
}

func loadProductTypeCSV(path string, rs *RuleSet) error {
	cols, rows, err := readCSVRows(path)
	if err != nil || rows == nil {
		return err
	}
	// 覆盖文件存在时整表替换
	rs.ProductTypes = nil
	for _, row := range rows {
		kw := strings.ToLower(field(cols, row, "keyword"))
		pt := field(cols, row, "product_type")
		if kw == "" || pt == "" {
			continue
		}
		pr, _ := strconv.Atoi(field(cols, row, "priority"))
		rs.ProductTypes = append(rs.ProductTypes, ProductTypeRule{Keyword: kw, ProductType: pt, Priority: pr})
	}
	return nil
}

func loadCategoryCSV(path string, rs *RuleSet) error {
	cols, rows, err := readCSVRows(path)
	if err != nil || rows == nil {
		return err
	}
	rs.Categories = nil
	for _, row := range rows {
		kw := strings.ToLower(field(cols, row, "keyword"))
		cat := field(cols, row, "category")
		if kw == "" || cat == "" {
			continue
		}
		rs.Categories = append(rs.Categories, CategoryRule{Keyword: kw, Category: cat})
	}
	return nil
}

// ==================== 小工具 ====================

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
