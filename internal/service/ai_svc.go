package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/repository"
)

// ==================== 配置 ====================

// AIConfig AI 服务配置
type AIConfig struct {
	ApiKey    string
	TextModel string
}

// ==================== 服务 ====================

// AIService 基于 Gemini 的颜色命名建议服务，实现 ColorSuggester。
// Key 未配置时构造 no-op 实现（NoopSuggester），引擎照常运行。
type AIService struct {
	Config      *AIConfig
	callLogRepo repository.AICallLogRepository
}

var _ ColorSuggester = (*AIService)(nil)

// NewAIService 创建 AI 服务
func NewAIService(cfg *AIConfig, callLogRepo repository.AICallLogRepository) *AIService {
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.5-flash"
	}
	return &AIService{
		Config:      cfg,
		callLogRepo: callLogRepo,
	}
}

// ==================== 颜色命名建议 ====================

// SuggestNames 给定款式编码与未映射的原始颜色名，返回同序的变体颜色名建议。
// 任何失败都只返回 error，由调用方落回原始名继续。
func (s *AIService) SuggestNames(ctx context.Context, styleCode string, rawNames []string) ([]string, error) {
	if s.Config.ApiKey == "" {
		return nil, fmt.Errorf("Gemini API Key 未配置")
	}

	start := time.Now()
	names, err := s.suggestOnce(ctx, styleCode, rawNames)
	s.logCall(ctx, styleCode, time.Since(start), err)
	return names, err
}

func (s *AIService) suggestOnce(ctx context.Context, styleCode string, rawNames []string) ([]string, error) {
	opts := []option.ClientOption{option.WithAPIKey(s.Config.ApiKey)}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("Gemini 初始化失败: %v", err)
	}
	defer client.Close()

	modelAI := client.GenerativeModel(s.Config.TextModel)
	modelAI.ResponseMIMEType = "application/json"

	payload, _ := json.Marshal(map[string]interface{}{
		"style_code": styleCode,
		"raw_colors": rawNames,
	})
	prompt := fmt.Sprintf(`You are helping normalize vendor color names into clear variant names.
Given a list of raw color names for a single style, produce a JSON array of unique,
human-friendly color names suitable for variant option values, in the same order as the input.
Avoid repeating the same final name; if there are multiple blues etc., choose distinct names
like "Navy", "Light Blue", "Royal Blue". Output strictly a JSON array of strings.

Input: %s`, string(payload))

	resp, err := modelAI.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("AI 生成失败: %v", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("AI 返回为空")
	}

	var rawJSON string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			rawJSON = string(txt)
			break
		}
	}

	// 清洗可能存在的 markdown 符号 (```json ... ```)
	rawJSON = strings.TrimSpace(rawJSON)
	rawJSON = strings.TrimPrefix(rawJSON, "```json")
	rawJSON = strings.TrimPrefix(rawJSON, "```")
	rawJSON = strings.TrimSuffix(rawJSON, "```")

	var names []string
	if err := json.Unmarshal([]byte(rawJSON), &names); err != nil {
		return nil, fmt.Errorf("JSON 解析失败: %v | 原始数据: %s", err, rawJSON)
	}
	if len(names) != len(rawNames) {
		return nil, fmt.Errorf("AI 返回数量不匹配: 期望 %d 实际 %d", len(rawNames), len(names))
	}
	return names, nil
}

// logCall 记录调用日志（日志失败只打 warning，不影响主流程）
func (s *AIService) logCall(ctx context.Context, styleCode string, dur time.Duration, callErr error) {
	if s.callLogRepo == nil {
		return
	}
	entry := &model.AICallLog{
		StyleCode:  styleCode,
		CallType:   model.AICallTypeColorNames,
		ModelName:  s.Config.TextModel,
		DurationMs: dur.Milliseconds(),
		Status:     model.AICallStatusSuccess,
	}
	if callErr != nil {
		entry.Status = model.AICallStatusFailed
		entry.ErrorMsg = callErr.Error()
	}
	if err := s.callLogRepo.Create(ctx, entry); err != nil {
		log.Printf("[AIService] 写入调用日志失败: %v", err)
	}
}

// ==================== No-op 实现 ====================

// NoopSuggester 空实现：外部 AI 能力缺席时使用，引擎完整可用
type NoopSuggester struct{}

func (NoopSuggester) SuggestNames(ctx context.Context, styleCode string, rawNames []string) ([]string, error) {
	return nil, fmt.Errorf("颜色建议能力未启用")
}
