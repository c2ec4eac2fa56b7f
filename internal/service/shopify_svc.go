package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"shopify_feed_v1_202608/internal/model"
)

// ==================== Shopify Admin REST 客户端 ====================
// 统一走 resty，内置 429 限速退避与 Link 头分页。

// ShopifyConfig 平台接入配置
type ShopifyConfig struct {
	StoreDomain string // 例: example.myshopify.com
	AccessToken string
	APIVersion  string // 默认 2025-01
	BaseURL     string // 留空按 StoreDomain 拼接；测试时可指向本地
	ThrottleMs  int    // 写操作之间的节流间隔，默认 300ms
	MaxRetries  int    // 默认 5
}

// ShopifyProduct 平台商品（仅本系统关心的字段）
type ShopifyProduct struct {
	ID       int64            `json:"id"`
	Handle   string           `json:"handle"`
	Title    string           `json:"title"`
	Tags     string           `json:"tags"`
	Vendor   string           `json:"vendor"`
	Status   string           `json:"status,omitempty"`
	Options  []ShopifyOption  `json:"options,omitempty"`
	Variants []ShopifyVariant `json:"variants,omitempty"`
}

type ShopifyOption struct {
	Name string `json:"name"`
}

// ShopifyVariant 平台变体
type ShopifyVariant struct {
	ID              int64   `json:"id,omitempty"`
	SKU             string  `json:"sku,omitempty"`
	Barcode         string  `json:"barcode,omitempty"`
	Title           string  `json:"title,omitempty"`
	Option1         string  `json:"option1,omitempty"`
	Option2         string  `json:"option2,omitempty"`
	Price           string  `json:"price,omitempty"`
	CompareAtPrice  string  `json:"compare_at_price,omitempty"`
	InventoryMgmt   string  `json:"inventory_management,omitempty"`
	InventoryItemID int64   `json:"inventory_item_id,omitempty"`
	Fulfillment     string  `json:"fulfillment_service,omitempty"`
}

// ShopifyLocation 库存地点
type ShopifyLocation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ShopifyClient Admin REST 客户端
type ShopifyClient struct {
	http       *resty.Client
	throttle   time.Duration
	maxRetries int
}

var linkNextRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

func NewShopifyClient(cfg ShopifyConfig) (*ShopifyClient, error) {
	if cfg.BaseURL == "" {
		if cfg.StoreDomain == "" || cfg.AccessToken == "" {
			return nil, fmt.Errorf("缺少 SHOPIFY_STORE_DOMAIN 或 SHOPIFY_ACCESS_TOKEN 配置")
		}
		version := cfg.APIVersion
		if version == "" {
			version = "2025-01"
		}
		cfg.BaseURL = fmt.Sprintf("https://%s/admin/api/%s", cfg.StoreDomain, version)
	}
	throttle := cfg.ThrottleMs
	if throttle == 0 {
		throttle = 300
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(60*time.Second).
		SetHeader("X-Shopify-Access-Token", cfg.AccessToken).
		SetHeader("Content-Type", "application/json")

	return &ShopifyClient{
		http:       client,
		throttle:   time.Duration(throttle) * time.Millisecond,
		maxRetries: maxRetries,
	}, nil
}

// do 带限速退避的请求。429 按 Retry-After 等待重试；
// 临近调用配额 (X-Shopify-Shop-Api-Call-Limit > 85%) 时主动放慢。
func (c *ShopifyClient) do(ctx context.Context, method, url string, body interface{}, out interface{}) (*resty.Response, error) {
	backoff := 500 * time.Millisecond
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req := c.http.R().SetContext(ctx)
		if body != nil {
			req.SetBody(body)
		}
		if out != nil {
			req.SetResult(out)
		}
		resp, err := req.Execute(method, url)
		if err != nil {
			lastErr = err
			if attempt >= c.maxRetries {
				return nil, fmt.Errorf("请求 %s %s 失败: %w", method, url, err)
			}
			time.Sleep(backoff)
			backoff = minDuration(backoff*3/2, 5*time.Second)
			continue
		}
		if resp.StatusCode() == 429 {
			wait := backoff
			if ra := resp.Header().Get("Retry-After"); ra != "" {
				if sec, perr := strconv.ParseFloat(ra, 64); perr == nil {
					wait = time.Duration(sec * float64(time.Second))
				}
			}
			time.Sleep(wait)
			backoff = minDuration(backoff*3/2, 5*time.Second)
			continue
		}
		if resp.IsError() {
			return nil, fmt.Errorf("平台接口异常 [%d]: %s", resp.StatusCode(), resp.String())
		}
		if limit := resp.Header().Get("X-Shopify-Shop-Api-Call-Limit"); limit != "" {
			if used, total, ok := parseCallLimit(limit); ok && total > 0 && float64(used)/float64(total) > 0.85 {
				time.Sleep(500 * time.Millisecond)
			}
		}
		return resp, nil
	}
	return nil, fmt.Errorf("请求 %s %s 重试耗尽: %w", method, url, lastErr)
}

// mutate 写操作；成功后按节流间隔停顿，避免连续创建触发限速
func (c *ShopifyClient) mutate(ctx context.Context, method, url string, body interface{}, out interface{}) error {
	if _, err := c.do(ctx, method, url, body, out); err != nil {
		return err
	}
	if c.throttle > 0 {
		time.Sleep(c.throttle)
	}
	return nil
}

// FetchSnapshot 拉取全量商品快照，按 Link 头逐页翻到底
func (c *ShopifyClient) FetchSnapshot(ctx context.Context) ([]model.PlatformProduct, []model.PlatformVariant, error) {
	url := "/products.json?fields=id,handle,title,tags,vendor,options,variants&limit=250"

	var products []model.PlatformProduct
	var variants []model.PlatformVariant
	for {
		var page struct {
			Products []ShopifyProduct `json:"products"`
		}
		resp, err := c.do(ctx, resty.MethodGet, url, nil, &page)
		if err != nil {
			return nil, nil, err
		}
		for _, p := range page.Products {
			products = append(products, model.PlatformProduct{
				ProductID: p.ID,
				Handle:    p.Handle,
				Title:     p.Title,
				Vendor:    p.Vendor,
				Tags:      p.Tags,
			})
			var o1Name, o2Name string
			if len(p.Options) > 0 {
				o1Name = p.Options[0].Name
			}
			if len(p.Options) > 1 {
				o2Name = p.Options[1].Name
			}
			for _, v := range p.Variants {
				variants = append(variants, model.PlatformVariant{
					ProductID:    p.ID,
					VariantID:    v.ID,
					SKU:          strings.TrimSpace(v.SKU),
					Barcode:      strings.TrimSpace(v.Barcode),
					VariantTitle: v.Title,
					Option1Name:  o1Name,
					Option1Value: v.Option1,
					Option2Name:  o2Name,
					Option2Value: v.Option2,
				})
			}
		}

		m := linkNextRe.FindStringSubmatch(resp.Header().Get("Link"))
		if m == nil {
			break
		}
		url = m[1]
		time.Sleep(300 * time.Millisecond)
	}
	return products, variants, nil
}

// GetLocations 查询库存地点列表
func (c *ShopifyClient) GetLocations(ctx context.Context) ([]ShopifyLocation, error) {
	var out struct {
		Locations []ShopifyLocation `json:"locations"`
	}
	if _, err := c.do(ctx, resty.MethodGet, "/locations.json", nil, &out); err != nil {
		return nil, err
	}
	return out.Locations, nil
}

// CreateProduct 创建商品（含变体）
func (c *ShopifyClient) CreateProduct(ctx context.Context, product *ShopifyProduct) (*ShopifyProduct, error) {
	var out struct {
		Product ShopifyProduct `json:"product"`
	}
	body := map[string]interface{}{"product": product}
	if err := c.mutate(ctx, resty.MethodPost, "/products.json", body, &out); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

// CreateVariant 给已有商品追加变体
func (c *ShopifyClient) CreateVariant(ctx context.Context, productID int64, variant *ShopifyVariant) (*ShopifyVariant, error) {
	var out struct {
		Variant ShopifyVariant `json:"variant"`
	}
	body := map[string]interface{}{"variant": variant}
	url := fmt.Sprintf("/products/%d/variants.json", productID)
	if err := c.mutate(ctx, resty.MethodPost, url, body, &out); err != nil {
		return nil, err
	}
	return &out.Variant, nil
}

// UpdateProductTags 覆盖商品标签
func (c *ShopifyClient) UpdateProductTags(ctx context.Context, productID int64, tags string) error {
	body := map[string]interface{}{
		"product": map[string]interface{}{"id": productID, "tags": tags},
	}
	url := fmt.Sprintf("/products/%d.json", productID)
	return c.mutate(ctx, resty.MethodPut, url, body, nil)
}

// PublishProduct 上架商品并发布到线上商店
func (c *ShopifyClient) PublishProduct(ctx context.Context, productID int64) error {
	body := map[string]interface{}{
		"product": map[string]interface{}{
			"id":              productID,
			"status":          "active",
			"published_scope": "web",
		},
	}
	url := fmt.Sprintf("/products/%d.json", productID)
	return c.mutate(ctx, resty.MethodPut, url, body, nil)
}

// SetInventoryLevel 设置指定地点的可售库存
func (c *ShopifyClient) SetInventoryLevel(ctx context.Context, locationID, inventoryItemID int64, available int) error {
	body := map[string]interface{}{
		"location_id":       locationID,
		"inventory_item_id": inventoryItemID,
		"available":         available,
	}
	return c.mutate(ctx, resty.MethodPost, "/inventory_levels/set.json", body, nil)
}

// UpdateInventoryItemCost 更新成本价
func (c *ShopifyClient) UpdateInventoryItemCost(ctx context.Context, inventoryItemID int64, cost float64) error {
	body := map[string]interface{}{
		"inventory_item": map[string]interface{}{"id": inventoryItemID, "cost": cost},
	}
	url := fmt.Sprintf("/inventory_items/%d.json", inventoryItemID)
	return c.mutate(ctx, resty.MethodPut, url, body, nil)
}

func parseCallLimit(s string) (used, limit int, ok bool) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	u, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	l, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return u, l, true
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
