package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/prompts"

	"google.golang.org/genai"
)

const scriptStage = "台本生成"

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// scriptSchema は構造化生成リクエストの出力契約です。
// panelNumber / imagePrompt / caption を持つオブジェクトの JSON 配列を要求します。
var scriptSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"panelNumber": {Type: genai.TypeInteger},
			"imagePrompt": {Type: genai.TypeString},
			"caption":     {Type: genai.TypeString},
		},
		Required: []string{"panelNumber", "imagePrompt", "caption"},
	},
}

// GeminiScriptGenerator は、元画像1枚から漫画のパネル台本を生成する核となる構造体です。
// 外部呼び出しはパイプライン1回の実行につき1度だけで、リトライは行いません。
type GeminiScriptGenerator struct {
	client      *genai.Client        // Gemini API と通信するクライアント
	model       string               // 台本生成に使うテキストモデル名
	prompt      prompts.ScriptPrompt // AIに渡す指示文を構築するビルダー
	temperature *float32
}

// NewGeminiScriptGenerator は依存関係を注入して初期化します。
func NewGeminiScriptGenerator(client *genai.Client, cfg ClientConfig, model string, pb prompts.ScriptPrompt) *GeminiScriptGenerator {
	return &GeminiScriptGenerator{
		client:      client,
		model:       model,
		prompt:      pb,
		temperature: cfg.temperature(),
	}
}

// Generate は、画像と指示文を1回の構造化生成リクエストに載せ、
// コマ番号が {1..n} の集合を構成する順序付きの台本を返します。
func (sg *GeminiScriptGenerator) Generate(ctx context.Context, src domain.UploadedImage, panelCount int) (domain.PanelScript, error) {
	instruction, err := sg.prompt.Build(prompts.TemplateData{PanelCount: panelCount})
	if err != nil {
		return nil, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(src.Data, src.MimeType),
			genai.NewPartFromText(instruction),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		Temperature:      sg.temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   scriptSchema,
	}

	slog.Info("ScriptGenerator: Calling Gemini API", "model", sg.model, "panel_count", panelCount)
	resp, err := sg.client.Models.GenerateContent(ctx, sg.model, contents, config)
	if err != nil {
		return nil, &domain.TransportError{Err: err}
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &domain.EmptyResponseError{Stage: scriptStage}
	}

	script, err := parseScript(text, panelCount)
	if err != nil {
		return nil, err
	}

	for _, e := range script {
		if e.OverLimits() {
			slog.Warn("台本エントリが語数制約を超えています", "panel", e.PanelNumber,
				"prompt_words", domain.WordCount(e.ImagePrompt), "caption_words", domain.WordCount(e.Caption))
		}
	}

	return script, nil
}

// parseScript は、AIが返したテキストからMarkdownのコードブロック等を除去し、
// 台本としてパースしたうえでコマ番号の集合を検証します。
func parseScript(raw string, panelCount int) (domain.PanelScript, error) {
	raw = strings.TrimSpace(raw)
	var rawJSON string

	matches := jsonBlockRegex.FindStringSubmatch(raw)
	if len(matches) > 1 {
		rawJSON = matches[1]
	} else {
		// Fallback 1: 最も外側の JSON 配列を探す。
		firstBracket := strings.Index(raw, "[")
		lastBracket := strings.LastIndex(raw, "]")
		if firstBracket != -1 && lastBracket != -1 && lastBracket > firstBracket {
			rawJSON = raw[firstBracket : lastBracket+1]
		} else {
			// Fallback 2: 応答全体を JSON とみなす。
			rawJSON = raw
		}
	}

	var script domain.PanelScript
	if err := json.Unmarshal([]byte(rawJSON), &script); err != nil {
		return nil, &domain.ParseError{Snippet: truncateString(raw, 200), Err: err}
	}

	if err := script.Validate(panelCount); err != nil {
		return nil, &domain.ParseError{Snippet: truncateString(rawJSON, 200), Err: err}
	}

	return script.Sorted(), nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
