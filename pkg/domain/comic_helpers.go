package domain

import (
	"fmt"
	"sort"
	"strings"
)

const (
	// MaxImagePromptWords は1コマの描写指示の語数上限です。
	MaxImagePromptWords = 50
	// MaxCaptionWords は1コマのキャプションの語数上限です。
	MaxCaptionWords = 15
)

// Validate は、台本のコマ番号が過不足なく {1..n} の集合を構成しているかを検証します。
// 重複・欠番・範囲外はすべて契約違反としてエラーを返します。
func (ps PanelScript) Validate(n int) error {
	if n < 1 {
		return fmt.Errorf("要求パネル数が不正です: %d", n)
	}
	if len(ps) != n {
		return fmt.Errorf("パネル数が一致しません: 要求 %d, 実際 %d", n, len(ps))
	}

	seen := make(map[int]struct{}, n)
	for _, e := range ps {
		if e.PanelNumber < 1 || e.PanelNumber > n {
			return fmt.Errorf("パネル番号 %d が範囲 [1..%d] の外です", e.PanelNumber, n)
		}
		if _, dup := seen[e.PanelNumber]; dup {
			return fmt.Errorf("パネル番号 %d が重複しています", e.PanelNumber)
		}
		seen[e.PanelNumber] = struct{}{}
	}
	return nil
}

// Sorted はコマ番号の昇順に並べ替えた新しい台本を返します。
// 元のスライスは変更しません。
func (ps PanelScript) Sorted() PanelScript {
	out := make(PanelScript, len(ps))
	copy(out, ps)
	sort.Slice(out, func(i, j int) bool {
		return out[i].PanelNumber < out[j].PanelNumber
	})
	return out
}

// WordCount は空白区切りの語数を数えます。語数制約の確認に使います。
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// OverLimits は語数制約（描写指示 ≤50語、キャプション ≤15語）を超えているかを返します。
// 超過は実行を止める理由にはせず、呼び出し側で警告ログに使います。
func (e PanelScriptEntry) OverLimits() bool {
	return WordCount(e.ImagePrompt) > MaxImagePromptWords ||
		WordCount(e.Caption) > MaxCaptionWords
}
