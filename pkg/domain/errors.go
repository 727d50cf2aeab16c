package domain

import "fmt"

// ConfigurationError は、外部生成サービスの資格情報が欠落・不正な場合のエラーです。
// 最初の API 呼び出しが行われる前に表面化させます。
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("設定エラー: %s", e.Reason)
}

// EmptyResponseError は、生成呼び出しが利用可能なコンテンツを一切返さなかった場合のエラーです。
type EmptyResponseError struct {
	Stage string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("%s: 応答に利用可能なコンテンツが含まれていません", e.Stage)
}

// ParseError は、台本応答が期待するスキーマの JSON として解釈できなかった場合のエラーです。
// Snippet には診断用に応答の冒頭を保持します。
type ParseError struct {
	Snippet string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Snippet != "" {
		return fmt.Sprintf("構造化データの解析に失敗しました (応答抜粋: %q): %v", e.Snippet, e.Err)
	}
	return fmt.Sprintf("構造化データの解析に失敗しました: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TransportError は、下層のネットワーク/通信の失敗を包む汎用エラーです。
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("通信エラー: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
