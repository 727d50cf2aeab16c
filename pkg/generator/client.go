package generator

import (
	"context"
	"fmt"

	"github.com/shouni/go-comic-kit/pkg/domain"

	"google.golang.org/genai"
)

const defaultGeminiTemperature = float32(0.2)

// ClientConfig は、外部生成サービスへ接続するための明示的な設定値です。
// 一度だけ構築し、台本生成とパネル生成の両方に呼び出し側から渡します。
// プロセス全体で暗黙に参照されるグローバル状態は持ちません。
type ClientConfig struct {
	APIKey      string
	Temperature *float32
}

// NewClient は gemini クライアントを初期化します。
// 資格情報が欠落している場合は、API 呼び出しを試みる前に ConfigurationError を返します。
func NewClient(ctx context.Context, cfg ClientConfig) (*genai.Client, error) {
	if cfg.APIKey == "" {
		return nil, &domain.ConfigurationError{Reason: "GEMINI_API_KEY が設定されていません"}
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("AIクライアントの初期化に失敗しました: %w", err)
	}
	return client, nil
}

// temperature は設定済みの温度、未設定ならデフォルト値を返します。
func (cfg ClientConfig) temperature() *float32 {
	if cfg.Temperature != nil {
		return cfg.Temperature
	}
	return genai.Ptr(defaultGeminiTemperature)
}
