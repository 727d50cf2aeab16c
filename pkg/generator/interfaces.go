package generator

import (
	"context"

	"github.com/shouni/go-comic-kit/pkg/domain"
)

// ScriptGenerator は、元画像から順序付きのパネル台本を生成するインターフェースを定義します。
type ScriptGenerator interface {
	Generate(ctx context.Context, src domain.UploadedImage, panelCount int) (domain.PanelScript, error)
}

// PanelIllustrator は、描写指示1件から正方形のイラスト1枚を生成するインターフェースを定義します。
type PanelIllustrator interface {
	Illustrate(ctx context.Context, imagePrompt string) (*domain.Illustration, error)
}
