package service

import (
	"testing"

	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/rules"
)

func fptr(f float64) *float64 { return &f }

func newTestAggregator() *AggregatorService {
	return NewAggregatorService("Nike", NewExpanderService())
}

func TestAggregate_Grouping(t *testing.T) {
	rs := rules.Defaults()
	svc := newTestAggregator()

	variants := []model.FeedVariant{
		{StyleCode: "AB1234", ColorCode: "010", RawColorName: "BLACK/WHITE", RawTitle: "M NK DF POLO", RawSize: "MEDIUM", Quantity: 5, MSRP: fptr(65), Season: "Summer 2026", ItemType: "NIKE - Golf : Apparel", Vendor: "NIKE"},
		{StyleCode: "AB1234", ColorCode: "010", RawColorName: "BLACK/WHITE", RawTitle: "M NK DF POLO", RawSize: "LARGE", Quantity: 3, MSRP: fptr(70)},
		{StyleCode: "AB1234", ColorCode: "100", RawColorName: "WHITE", RawTitle: "M NK DF POLO", RawSize: "MEDIUM", Quantity: 2, MSRP: fptr(65)},
		{StyleCode: "CD5678", ColorCode: "451", RawColorName: "NAVY", RawTitle: "W TNS HC", RawSize: "SMALL", Quantity: 8, MSRP: fptr(80), Season: "Holiday 2026"},
	}

	groups, err := svc.Aggregate(rs, variants)
	if err != nil {
		t.Fatalf("Aggregate 失败: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("分组数 = %d, want 2", len(groups))
	}

	// 保持首次出现顺序
	if groups[0].StyleCode != "AB1234" || groups[1].StyleCode != "CD5678" {
		t.Errorf("分组顺序 = [%s %s]", groups[0].StyleCode, groups[1].StyleCode)
	}

	g := groups[0]
	if g.TotalInventory != 10 {
		t.Errorf("TotalInventory = %d, want 10", g.TotalInventory)
	}
	if g.MaxMSRP == nil || *g.MaxMSRP != 70 {
		t.Errorf("MaxMSRP = %v, want 70", g.MaxMSRP)
	}
	if len(g.ColorGroups) != 2 || g.ColorGroups[0].ColorCode != "010" || g.ColorGroups[1].ColorCode != "100" {
		t.Errorf("ColorGroups 不符: %+v", g.ColorGroups)
	}
	if g.ColorGroups[0].RawColorName != "BLACK/WHITE" {
		t.Errorf("RawColorName = %q", g.ColorGroups[0].RawColorName)
	}
	if g.SizeBreakdown["MEDIUM"] != 7 || g.SizeBreakdown["LARGE"] != 3 {
		t.Errorf("SizeBreakdown = %v", g.SizeBreakdown)
	}
	if g.Season != "Summer 2026" || g.ItemType != "NIKE - Golf : Apparel" {
		t.Errorf("代表字段取错: season=%q itemType=%q", g.Season, g.ItemType)
	}
	if len(g.Variants) != 3 {
		t.Errorf("组内变体数 = %d, want 3", len(g.Variants))
	}
}

func TestAggregate_Titles(t *testing.T) {
	rs := rules.Defaults()
	svc := newTestAggregator()

	tests := []struct {
		raw          string
		wantExpanded string
		wantBase     string
	}{
		// 品牌缩写展开后与前缀折叠
		{"NK DF VCTRY POLO", "Nike Dri-FIT Victory POLO", "Nike Dri-FIT Victory POLO"},
		// 尾部噪声 Ln 剥掉；展开标题中段的 NK 去除
		{"M NK DF Tee Ln", "Men's NK Dri-FIT Tee Ln", "Nike Men's Dri-FIT Tee"},
		{"W TNS HC", "Women's Tennis Skirt Hard Court", "Nike Women's Tennis Skirt Hard Court"},
	}
	for _, tt := range tests {
		groups, err := svc.Aggregate(rs, []model.FeedVariant{
			{StyleCode: "AB1234", ColorCode: "010", RawTitle: tt.raw, Quantity: 1},
		})
		if err != nil {
			t.Fatalf("Aggregate(%q) 失败: %v", tt.raw, err)
		}
		if groups[0].ExpandedTitle != tt.wantExpanded {
			t.Errorf("ExpandedTitle(%q) = %q, want %q", tt.raw, groups[0].ExpandedTitle, tt.wantExpanded)
		}
		if groups[0].BaseTitle != tt.wantBase {
			t.Errorf("BaseTitle(%q) = %q, want %q", tt.raw, groups[0].BaseTitle, tt.wantBase)
		}
	}
}

func TestAggregate_SkipsEmptyStyle(t *testing.T) {
	rs := rules.Defaults()
	svc := newTestAggregator()

	groups, err := svc.Aggregate(rs, []model.FeedVariant{
		{StyleCode: "", ColorCode: "010", RawTitle: "X", Quantity: 1},
		{StyleCode: "AB1234", ColorCode: "010", RawTitle: "M NK POLO", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("Aggregate 失败: %v", err)
	}
	if len(groups) != 1 || groups[0].StyleCode != "AB1234" {
		t.Errorf("空款式编码应跳过: %+v", groups)
	}
}

func TestApplySelections_SKUFilter(t *testing.T) {
	svc := newTestAggregator()
	variants := []model.FeedVariant{
		{SKU: "AB1234-010-M", StyleCode: "AB1234", ColorCode: "010"},
		{SKU: "AB1234-010-L", StyleCode: "AB1234", ColorCode: "010"},
		{SKU: "CD5678-451-S", StyleCode: "CD5678", ColorCode: "451"},
	}

	// SKU 匹配不区分大小写
	out, missing := svc.ApplySelections(variants, []string{" ab1234-010-m ", "CD5678-451-S"}, nil)
	if len(out) != 2 {
		t.Fatalf("过滤后行数 = %d, want 2", len(out))
	}
	if out[0].SKU != "AB1234-010-M" || out[1].SKU != "CD5678-451-S" {
		t.Errorf("过滤结果 = [%s %s]", out[0].SKU, out[1].SKU)
	}
	if len(missing) != 0 {
		t.Errorf("不应有合成行: %v", missing)
	}
}

func TestApplySelections_StyleColorFilter(t *testing.T) {
	svc := newTestAggregator()
	variants := []model.FeedVariant{
		{SKU: "AB1234-010-M", StyleCode: "AB1234", ColorCode: "010", Quantity: 5},
		{SKU: "AB1234-100-M", StyleCode: "AB1234", ColorCode: "100", Quantity: 3},
	}

	out, missing := svc.ApplySelections(variants, nil, []Selection{
		{StyleCode: "AB1234", ColorCode: "100"},
	})
	if len(out) != 1 || out[0].ColorCode != "100" {
		t.Fatalf("款色过滤结果不符: %+v", out)
	}
	if len(missing) != 0 {
		t.Errorf("不应有合成行: %v", missing)
	}
}

func TestApplySelections_SynthesizesMissing(t *testing.T) {
	svc := newTestAggregator()
	variants := []model.FeedVariant{
		{SKU: "AB1234-010-M", StyleCode: "AB1234", ColorCode: "010", Quantity: 5},
	}

	out, missing := svc.ApplySelections(variants, nil, []Selection{
		{StyleCode: "AB1234", ColorCode: "010"},
		{StyleCode: "ZZ9999", ColorCode: "657"},
	})
	if len(out) != 2 {
		t.Fatalf("输出行数 = %d, want 2", len(out))
	}
	ph := out[1]
	if !ph.Synthesized || ph.Quantity != 0 {
		t.Errorf("占位行标记不符: %+v", ph)
	}
	if ph.StyleCode != "ZZ9999" || ph.ColorCode != "657" || ph.RawTitle != "ZZ9999" {
		t.Errorf("占位行字段不符: %+v", ph)
	}
	if len(missing) != 1 || missing[0] != "ZZ9999-657" {
		t.Errorf("missing = %v, want [ZZ9999-657]", missing)
	}
}

func TestApplySelections_NoFilters(t *testing.T) {
	svc := newTestAggregator()
	variants := []model.FeedVariant{
		{SKU: "A", StyleCode: "AB1234", ColorCode: "010"},
		{SKU: "B", StyleCode: "CD5678", ColorCode: "451"},
	}

	// 无任何选择条件时原样通过
	out, missing := svc.ApplySelections(variants, nil, nil)
	if len(out) != 2 || len(missing) != 0 {
		t.Errorf("无过滤时应全量通过: out=%d missing=%d", len(out), len(missing))
	}
}
