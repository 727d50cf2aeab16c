package prompts

import (
	"fmt"
	"strings"
)

const (
	// NegativePanelPrompt は、パネル用のネガティブプロンプトです。
	NegativePanelPrompt = "speech bubble, dialogue balloon, text, alphabet, letters, words, signatures, watermark, username, low quality, distorted, bad anatomy"

	// panelSystemInstruction は画像生成モデルに与える役割指示です。
	panelSystemInstruction = "You are a professional comic illustrator. Create a single high-quality cinematic scene."
)

// ImagePromptBuilder は、共通の画風サフィックスを考慮してパネル画像のプロンプトを構築します。
// 各パネルの呼び出しは互いに独立で、コマ間で視覚的なコンテキストは共有しません。
type ImagePromptBuilder struct {
	defaultSuffix string // "anime style, high quality" 等の共通サフィックス
}

// NewImagePromptBuilder は新しい ImagePromptBuilder を生成します。
func NewImagePromptBuilder(suffix string) *ImagePromptBuilder {
	return &ImagePromptBuilder{defaultSuffix: suffix}
}

// BuildPanelPrompt は、単体パネル用の UserPrompt と SystemPrompt を生成します。
func (pb *ImagePromptBuilder) BuildPanelPrompt(imagePrompt string) (userPrompt string, systemPrompt string) {
	systemParts := []string{panelSystemInstruction}
	if pb.defaultSuffix != "" {
		styleDNA := fmt.Sprintf("### GLOBAL VISUAL STYLE ###\n%s", pb.defaultSuffix)
		systemParts = append(systemParts, styleDNA)
	}
	// 画像生成の直接呼び出しにはネガティブプロンプト欄がないため、
	// 回避リストとしてシステム指示に畳み込みます。
	systemParts = append(systemParts, fmt.Sprintf("### AVOID (do not draw) ###\n%s", NegativePanelPrompt))
	systemPrompt = strings.Join(systemParts, "\n\n")

	userPrompt = strings.TrimSpace(imagePrompt)
	return userPrompt, systemPrompt
}
