package builder

import (
	"context"
	"fmt"

	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/pkg/compositor"
	"github.com/shouni/go-comic-kit/pkg/generator"
	"github.com/shouni/go-comic-kit/pkg/pipeline"
	"github.com/shouni/go-comic-kit/pkg/prompts"

	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"golang.org/x/time/rate"
)

// Setup は、提供された設定を使用してアプリケーションコンテキストを初期化して返すのだ。
// 資格情報の検証は最初の外部呼び出しの前にここで行われるのだよ。
func Setup(ctx context.Context, cfg *config.Config) (*AppContext, error) {
	clientCfg := generator.ClientConfig{APIKey: cfg.GeminiAPIKey}
	aiClient, err := generator.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, err
	}

	gcsFactory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}

	reader, err := gcsFactory.NewInputReader()
	if err != nil {
		return nil, err
	}
	writer, err := gcsFactory.NewOutputWriter()
	if err != nil {
		return nil, err
	}

	scriptPrompt, err := prompts.NewScriptPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("台本プロンプトビルダーの初期化に失敗したのだ: %w", err)
	}
	imagePrompt := prompts.NewImagePromptBuilder(cfg.ImageStyleSuffix)

	scriptGen := generator.NewGeminiScriptGenerator(aiClient, clientCfg, cfg.ScriptModel, scriptPrompt)
	painter := generator.NewGeminiPanelIllustrator(aiClient, clientCfg, cfg.ImageModel, imagePrompt)

	// 直列呼び出しの間隔制御。Burst 1 なので最初の1枚だけは待たずに開始できるのだ。
	interval := cfg.Options.RateInterval
	if interval <= 0 {
		interval = config.DefaultRateLimit
	}
	limiter := rate.NewLimiter(rate.Every(interval), 1)

	comicPipeline := pipeline.New(scriptGen, painter, limiter)

	comp, err := compositor.New(compositor.DefaultLayout())
	if err != nil {
		return nil, fmt.Errorf("Compositorの初期化に失敗したのだ: %w", err)
	}

	appCtx := NewAppContext(cfg, reader, writer, comicPipeline, comp)
	return &appCtx, nil
}
