package rules

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	rs := Defaults()

	// 首词表只在首位生效的语义由展开服务保证，这里验证内容
	if rs.StartAbbr["M"] != "Men's" {
		t.Errorf("StartAbbr[M] = %s, want Men's", rs.StartAbbr["M"])
	}
	if rs.AnyAbbr["DF"] != "Dri-FIT" {
		t.Errorf("AnyAbbr[DF] = %s, want Dri-FIT", rs.AnyAbbr["DF"])
	}
	if rs.SizeMap["EXTRA LARGE"] != "XL" {
		t.Errorf("SizeMap[EXTRA LARGE] = %s, want XL", rs.SizeMap["EXTRA LARGE"])
	}
	if rs.SizeMap["2X"] != "2XL" {
		t.Errorf("SizeMap[2X] = %s, want 2XL", rs.SizeMap["2X"])
	}
	if rs.ColorByCode("010") != "Black" {
		t.Errorf("ColorByCode(010) = %s, want Black", rs.ColorByCode("010"))
	}
	if rs.ColorByCode("100") != "White" {
		t.Errorf("ColorByCode(100) = %s, want White", rs.ColorByCode("100"))
	}
	if rs.ColorByCode("999") != "" {
		t.Error("未登记色号应返回空串")
	}
}

func TestDefaults_Isolation(t *testing.T) {
	a := Defaults()
	a.SizeMap["HUGE"] = "5XL"
	a.ColorCodes["000"] = "Void"

	b := Defaults()
	if _, ok := b.SizeMap["HUGE"]; ok {
		t.Error("Defaults() 返回的规则集之间不应共享底层 map")
	}
	if _, ok := b.ColorCodes["000"]; ok {
		t.Error("Defaults() 返回的规则集之间不应共享底层 map")
	}
}

func TestProductTypeFor_Priority(t *testing.T) {
	rs := Defaults()

	tests := []struct {
		title string
		want  string
	}{
		// polo (优先级10) 应压过 long sleeve (优先级9)
		{"Men's Long Sleeve Polo", "T-Shirt & Tops"},
		{"Women's Tennis Skirt", "Shorts & Skirts"},
		{"Heritage86 Cap", "Headwear"},
		{"Court Jacket", "Jacket & Hoodies"},
		{"Something Unrecognizable", ""},
	}
	for _, tt := range tests {
		if got := rs.ProductTypeFor(tt.title); got != tt.want {
			t.Errorf("ProductTypeFor(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestCategoryFor_Order(t *testing.T) {
	rs := Defaults()

	// "hoodie" 规则排在 "top" 之前，含两个关键词时取前者
	if got := rs.CategoryFor("Fleece Hoodie Top"); got != "Jacket & Hoodies" {
		t.Errorf("CategoryFor = %q, want Jacket & Hoodies", got)
	}
	if got := rs.CategoryFor("Club Tank"); got != "T-Shirt & Tops" {
		t.Errorf("CategoryFor = %q, want T-Shirt & Tops", got)
	}
}

// ==================== CSV 覆盖 ====================

func writeRuleFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("写规则文件失败: %v", err)
	}
}

func TestLoad_EmptyOrMissingDir(t *testing.T) {
	rs, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") error = %v", err)
	}
	if rs.SizeMap["SMALL"] != "S" {
		t.Error("空目录应返回内置默认表")
	}

	rs, err = Load("/nonexistent/rules/dir")
	if err != nil {
		t.Fatalf("Load(不存在目录) error = %v", err)
	}
	if rs.ColorByCode("657") != "Red" {
		t.Error("目录不存在应返回内置默认表")
	}
}

func TestLoad_SizeAndColorMerge(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, FileSizeMap, "raw_size,canonical\nONE SIZE,OS\nEXTRA LARGE,2XL\n")
	writeRuleFile(t, dir, FileColorCodeMap, "color_code,color_name\n82,Lilac\n700,Yellow\n")

	rs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// 合并语义：新增 + 覆盖，未提及的默认项保留
	if rs.SizeMap["ONE SIZE"] != "OS" {
		t.Errorf("SizeMap[ONE SIZE] = %s, want OS", rs.SizeMap["ONE SIZE"])
	}
	if rs.SizeMap["EXTRA LARGE"] != "2XL" {
		t.Errorf("覆盖项未生效: SizeMap[EXTRA LARGE] = %s", rs.SizeMap["EXTRA LARGE"])
	}
	if rs.SizeMap["SMALL"] != "S" {
		t.Error("未覆盖的默认项应保留")
	}

	// 纯数字色号 3 位补零
	if rs.ColorByCode("082") != "Lilac" {
		t.Errorf("ColorByCode(082) = %s, want Lilac", rs.ColorByCode("082"))
	}
	if rs.ColorByCode("700") != "Yellow" {
		t.Errorf("ColorByCode(700) = %s, want Yellow", rs.ColorByCode("700"))
	}
	if rs.ColorByCode("010") != "Black" {
		t.Error("未覆盖的默认色号应保留")
	}
}

func TestLoad_AbbrWholeTableReplace(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, FileAbbrMap, "abbr,phrase,scope\nM,Men's,start\nDF,Dri-FIT,\nZZ,Zoom,any\n")

	rs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// 覆盖文件存在时整表替换
	if rs.AnyAbbr["ZZ"] != "Zoom" {
		t.Errorf("AnyAbbr[ZZ] = %s, want Zoom", rs.AnyAbbr["ZZ"])
	}
	if _, ok := rs.AnyAbbr["SS"]; ok {
		t.Error("缩写覆盖文件应整表替换，默认项不应保留")
	}
	if rs.StartAbbr["M"] != "Men's" {
		t.Errorf("StartAbbr[M] = %s, want Men's", rs.StartAbbr["M"])
	}
	if _, ok := rs.StartAbbr["G"]; ok {
		t.Error("缩写覆盖文件应整表替换，默认项不应保留")
	}
}

func TestLoad_ProductTypeOverrideAndSort(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, FileProductTypeMap, "keyword,product_type,priority\ntee,T-Shirt & Tops,5\nvisor,Headwear,10\n")

	rs, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rs.ProductTypes) != 2 {
		t.Fatalf("类型规则数 = %d, want 2", len(rs.ProductTypes))
	}
	// 高优先级排前
	if rs.ProductTypes[0].Keyword != "visor" {
		t.Errorf("首条规则 = %s, want visor", rs.ProductTypes[0].Keyword)
	}
	if got := rs.ProductTypeFor("Court Visor Tee"); got != "Headwear" {
		t.Errorf("ProductTypeFor = %q, want Headwear", got)
	}
}

func TestLoad_MalformedAbbrFile(t *testing.T) {
	dir := t.TempDir()
	writeRuleFile(t, dir, FileAbbrMap, "wrong,columns\nx,y\n")

	if _, err := Load(dir); err == nil {
		t.Error("缺少 abbr 列的覆盖文件应报致命错误")
	}
}
