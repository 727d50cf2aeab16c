package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/prompts"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"google.golang.org/genai"
)

const (
	panelStage = "パネル画像生成"

	// PanelAspectRatio は単体パネル（1コマ）のアスペクト比です。正方形で固定します。
	PanelAspectRatio = "1:1"

	defaultCacheExpiration = 30 * time.Minute
	cacheCleanupInterval   = 1 * time.Hour
)

// GeminiPanelIllustrator は、描写指示1件につき1回の画像生成呼び出しを行う実体です。
// 呼び出し同士は独立で、シードや視覚コンテキストの共有は設計上行いません。
type GeminiPanelIllustrator struct {
	client      *genai.Client
	model       string
	prompt      *prompts.ImagePromptBuilder
	temperature *float32

	imgCache *cache.Cache       // 同一プロンプトの再生成を避けるインメモリキャッシュ
	group    singleflight.Group // 同時に到着した同一プロンプト呼び出しの重複排除
}

// NewGeminiPanelIllustrator は GeminiPanelIllustrator を初期化済みの状態で生成します。
func NewGeminiPanelIllustrator(client *genai.Client, cfg ClientConfig, model string, pb *prompts.ImagePromptBuilder) *GeminiPanelIllustrator {
	return &GeminiPanelIllustrator{
		client:      client,
		model:       model,
		prompt:      pb,
		temperature: cfg.temperature(),
		imgCache:    cache.New(defaultCacheExpiration, cacheCleanupInterval),
	}
}

// Illustrate は1件の描写指示から 1:1 のイラストを生成します。
// 応答の中から最初のインライン画像ペイロードを探し、
// 見つからなければその呼び出しを EmptyResponseError で打ち切ります。
func (pi *GeminiPanelIllustrator) Illustrate(ctx context.Context, imagePrompt string) (*domain.Illustration, error) {
	key := pi.cacheKey(imagePrompt)
	if cached, ok := pi.imgCache.Get(key); ok {
		if ill, ok := cached.(*domain.Illustration); ok {
			slog.Info("キャッシュ済みのパネル画像を再利用します", "key", key[:12])
			return ill, nil
		}
	}

	val, err, _ := pi.group.Do(key, func() (interface{}, error) {
		ill, genErr := pi.generate(ctx, imagePrompt)
		if genErr != nil {
			return nil, genErr
		}
		pi.imgCache.Set(key, ill, cache.DefaultExpiration)
		return ill, nil
	})
	if err != nil {
		return nil, err
	}

	ill, ok := val.(*domain.Illustration)
	if !ok {
		return nil, fmt.Errorf("unexpected return type from singleflight: %T", val)
	}
	return ill, nil
}

func (pi *GeminiPanelIllustrator) generate(ctx context.Context, imagePrompt string) (*domain.Illustration, error) {
	userPrompt, systemPrompt := pi.prompt.BuildPanelPrompt(imagePrompt)

	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature:        pi.temperature,
		SystemInstruction:  genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: PanelAspectRatio},
	}

	startTime := time.Now()
	resp, err := pi.client.Models.GenerateContent(ctx, pi.model, contents, config)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	ill := firstInlineImage(resp)
	if ill == nil {
		return nil, &domain.EmptyResponseError{Stage: panelStage}
	}

	slog.Info("Panel generation completed",
		"mime_type", ill.MimeType,
		"bytes", len(ill.Data),
		"duration", time.Since(startTime).Round(time.Millisecond))
	return ill, nil
}

// firstInlineImage は、応答の全パートを走査して最初のインライン画像ペイロードを返します。
// 画像パートが1つも無い場合は nil を返します。
func firstInlineImage(resp *genai.GenerateContentResponse) *domain.Illustration {
	if resp == nil {
		return nil
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
				continue
			}
			return &domain.Illustration{
				Data:     part.InlineData.Data,
				MimeType: part.InlineData.MIMEType,
			}
		}
	}
	return nil
}

func (pi *GeminiPanelIllustrator) cacheKey(imagePrompt string) string {
	h := sha256.New()
	h.Write([]byte(pi.model))
	h.Write([]byte{0})
	h.Write([]byte(imagePrompt))
	return hex.EncodeToString(h.Sum(nil))
}
