package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed script.md
var scriptTemplate string

// ScriptPrompt は、台本生成用の指示文を構築する契約です。
type ScriptPrompt interface {
	Build(data TemplateData) (string, error)
}

// ScriptPromptBuilder は埋め込みテンプレートから台本プロンプトを組み立てます。
type ScriptPromptBuilder struct {
	tmpl *template.Template
}

// NewScriptPromptBuilder は ScriptPromptBuilder を初期化します。
func NewScriptPromptBuilder() (*ScriptPromptBuilder, error) {
	if scriptTemplate == "" {
		return nil, fmt.Errorf("プロンプトテンプレート 'script' (go:embed) の読み込みに失敗しました: 内容が空です")
	}

	tmpl, err := template.New("script").Parse(scriptTemplate)
	if err != nil {
		return nil, fmt.Errorf("プロンプト 'script' の解析に失敗: %w", err)
	}

	return &ScriptPromptBuilder{tmpl: tmpl}, nil
}

// Build は、要求されたパネル数を流し込んだ指示文を返します。
func (b *ScriptPromptBuilder) Build(data TemplateData) (string, error) {
	if data.PanelCount < 1 {
		return "", fmt.Errorf("パネル数は1以上である必要があります: %d", data.PanelCount)
	}

	var sb strings.Builder
	if err := b.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}

	return sb.String(), nil
}
