package asset

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	// DefaultStripFileName は結合ラスターのデフォルトのファイル名です。
	DefaultStripFileName = "comic_strip.png"
	// DefaultPanelFileName はパネル個別保存時の共通のベースファイル名です。
	DefaultPanelFileName = "panel.png"
	// DefaultTitle はタイトルを導出できない場合のフォールバックです。
	DefaultTitle = "Comic Strip"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	separatorRegex  = regexp.MustCompile(`[_\-]+`)
)

// ResolveOutputPath は、ベースとなるディレクトリパスとファイル名から、
// GCS/ローカルを考慮した最終的な出力パスを生成します。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	return urlpath.ResolveOutputPath(baseDir, fileName)
}

// ResolveBaseURL は、入力パス（URLまたはローカルパス）から
// 親ディレクトリのパスを解決し、末尾がセパレータで終わるように正規化します。
func ResolveBaseURL(rawPath string) string {
	return urlpath.ResolveBaseURL(rawPath)
}

// GenerateIndexedPath は、指定されたベースパスの拡張子の前に連番を挿入し、
// 新しいパス文字列を生成します。index は1以上の整数である必要があります。
// 例: "path/to/panel.png", 1 -> "path/to/panel_1.png"
func GenerateIndexedPath(basePath string, index int) (string, error) {
	return urlpath.GenerateIndexedPath(basePath, index)
}

// DeriveTitle は、アップロードされた元画像のファイル名からコミックのタイトルを導出します。
// 拡張子を落とし、アンダースコア/ハイフンを空白に開き、連続する空白を1つにまとめます。
func DeriveTitle(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = separatorRegex.ReplaceAllString(base, " ")
	base = whitespaceRegex.ReplaceAllString(strings.TrimSpace(base), " ")
	if base == "" || base == "." {
		return DefaultTitle
	}
	return base
}

// DownloadFilename は、コミックのタイトルからダウンロード用の推奨ファイル名を導出します。
// 空白の連続を1つのアンダースコアに置き換え、拡張子 .png を付けます。
func DownloadFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}
	return whitespaceRegex.ReplaceAllString(title, "_") + ".png"
}
