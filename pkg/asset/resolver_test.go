package asset

import "testing"

func TestDeriveTitle(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		want     string
	}{
		{"アンダースコア区切り", "sunset_beach.jpg", "sunset beach"},
		{"ハイフンと連続区切り", "my--holiday__photo.png", "my holiday photo"},
		{"パス付き", "/tmp/uploads/cat nap.jpeg", "cat nap"},
		{"空文字はフォールバック", "", DefaultTitle},
		{"拡張子のみはフォールバック", ".png", DefaultTitle},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DeriveTitle(tc.filename); got != tc.want {
				t.Errorf("期待値 %q, 実際の値 %q", tc.want, got)
			}
		})
	}
}

func TestDownloadFilename(t *testing.T) {
	cases := []struct {
		name  string
		title string
		want  string
	}{
		{"空白をアンダースコアに置換", "My Comic Strip", "My_Comic_Strip.png"},
		{"連続する空白は1つにまとめる", "a   b\tc", "a_b_c.png"},
		{"空タイトルはフォールバック", "  ", "Comic_Strip.png"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DownloadFilename(tc.title); got != tc.want {
				t.Errorf("期待値 %q, 実際の値 %q", tc.want, got)
			}
		})
	}
}
