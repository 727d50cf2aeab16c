package prompts

// TemplateData は台本プロンプトのテンプレートに渡すデータ構造です。
type TemplateData struct {
	PanelCount int
}
