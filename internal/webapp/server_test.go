package webapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-comic-kit/internal/builder"
	"github.com/shouni/go-comic-kit/internal/config"
	"github.com/shouni/go-comic-kit/pkg/compositor"
	"github.com/shouni/go-comic-kit/pkg/domain"
	"github.com/shouni/go-comic-kit/pkg/pipeline"
)

// stubScript は外部呼び出しなしで固定の台本を返すのだ。
type stubScript struct {
	panels int
}

func (s stubScript) Generate(_ context.Context, _ domain.UploadedImage, _ int) (domain.PanelScript, error) {
	script := make(domain.PanelScript, 0, s.panels)
	for i := 1; i <= s.panels; i++ {
		script = append(script, domain.PanelScriptEntry{
			PanelNumber: i,
			ImagePrompt: fmt.Sprintf("panel %d prompt", i),
			Caption:     fmt.Sprintf("コマ%d", i),
		})
	}
	return script, nil
}

// stubPainter は毎回同じ小さなPNGを返すのだ。
type stubPainter struct {
	img []byte
}

func (s stubPainter) Illustrate(_ context.Context, _ string) (*domain.Illustration, error) {
	return &domain.Illustration{Data: s.img, MimeType: "image/png"}, nil
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("PNGのエンコードに失敗したのだ: %v", err)
	}
	return buf.Bytes()
}

func newTestServer(t *testing.T, panels int) *Server {
	t.Helper()

	cfg := &config.Config{
		Options: config.GenerateOptions{PanelCount: panels},
	}
	pl := pipeline.New(stubScript{panels: panels}, stubPainter{img: tinyPNG(t)}, nil)
	comp, err := compositor.New(compositor.DefaultLayout())
	if err != nil {
		t.Fatalf("Compositorの初期化に失敗したのだ: %v", err)
	}

	app := builder.NewAppContext(cfg, nil, nil, pl, comp)
	return NewServer(app, ":0")
}

func postImage(t *testing.T, ts *httptest.Server, title string) *http.Response {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("image", "forest_walk.png")
	if err != nil {
		t.Fatalf("マルチパートの構築に失敗したのだ: %v", err)
	}
	if _, err := fw.Write(tinyPNG(t)); err != nil {
		t.Fatalf("画像の書き込みに失敗したのだ: %v", err)
	}
	if title != "" {
		if err := mw.WriteField("title", title); err != nil {
			t.Fatalf("タイトルの書き込みに失敗したのだ: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("マルチパートのクローズに失敗したのだ: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/comics", &body)
	if err != nil {
		t.Fatalf("リクエストの構築に失敗したのだ: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := &http.Client{
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POSTに失敗したのだ: %v", err)
	}
	return resp
}

func waitForDone(t *testing.T, ts *httptest.Server, comicPath string) statusView {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + comicPath + "/status")
		if err != nil {
			t.Fatalf("ステータスの取得に失敗したのだ: %v", err)
		}
		var st statusView
		if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
			resp.Body.Close()
			t.Fatalf("ステータスのデコードに失敗したのだ: %v", err)
		}
		resp.Body.Close()
		if st.Done || st.Error != "" {
			return st
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("生成が時間内に完了しなかったのだ")
	return statusView{}
}

func TestServer_ComicLifecycle(t *testing.T) {
	srv := newTestServer(t, 4)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	t.Run("アップロードするとコミックページへリダイレクトされるのだ", func(t *testing.T) {
		resp := postImage(t, ts, "森のさんぽ")
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusSeeOther {
			t.Fatalf("期待 303, 実際 %d", resp.StatusCode)
		}
		loc := resp.Header.Get("Location")
		if !strings.HasPrefix(loc, "/comics/") {
			t.Fatalf("リダイレクト先が不正なのだ: %q", loc)
		}

		st := waitForDone(t, ts, loc)
		if st.Error != "" {
			t.Fatalf("生成がエラーで終わったのだ: %s", st.Error)
		}
		if st.Total != 4 || st.Resolved != 4 {
			t.Errorf("期待 4/4, 実際 %d/%d", st.Resolved, st.Total)
		}

		page, err := http.Get(ts.URL + loc)
		if err != nil {
			t.Fatalf("コミックページの取得に失敗したのだ: %v", err)
		}
		defer page.Body.Close()
		html, _ := io.ReadAll(page.Body)
		if !strings.Contains(string(html), "森のさんぽ") {
			t.Error("ページにタイトルが含まれていないのだ")
		}
		if !strings.Contains(string(html), "data:image/png;base64,") {
			t.Error("ページにパネルのデータURIが含まれていないのだ")
		}

		dl, err := http.Get(ts.URL + loc + "/strip.png")
		if err != nil {
			t.Fatalf("ストリップの取得に失敗したのだ: %v", err)
		}
		defer dl.Body.Close()
		if got := dl.Header.Get("Content-Type"); got != "image/png" {
			t.Errorf("Content-Type が不正なのだ: %q", got)
		}
		if cd := dl.Header.Get("Content-Disposition"); !strings.Contains(cd, ".png") {
			t.Errorf("Content-Disposition が不正なのだ: %q", cd)
		}
		strip, _ := io.ReadAll(dl.Body)
		cfgImg, err := png.DecodeConfig(bytes.NewReader(strip))
		if err != nil {
			t.Fatalf("ストリップがPNGとしてデコードできないのだ: %v", err)
		}
		if cfgImg.Width != 2100 || cfgImg.Height != 590 {
			t.Errorf("期待 2100x590, 実際 %dx%d", cfgImg.Width, cfgImg.Height)
		}
	})

	t.Run("タイトル省略時はファイル名から導出されるのだ", func(t *testing.T) {
		resp := postImage(t, ts, "")
		defer resp.Body.Close()

		loc := resp.Header.Get("Location")
		waitForDone(t, ts, loc)

		page, err := http.Get(ts.URL + loc)
		if err != nil {
			t.Fatalf("コミックページの取得に失敗したのだ: %v", err)
		}
		defer page.Body.Close()
		html, _ := io.ReadAll(page.Body)
		if !strings.Contains(string(html), "forest walk") {
			t.Error("ファイル名由来のタイトルが表示されていないのだ")
		}
	})

	t.Run("存在しないIDは404なのだ", func(t *testing.T) {
		for _, path := range []string{
			"/comics/not-a-uuid",
			"/comics/00000000-0000-0000-0000-000000000000",
			"/comics/00000000-0000-0000-0000-000000000000/strip.png",
		} {
			resp, err := http.Get(ts.URL + path)
			if err != nil {
				t.Fatalf("GETに失敗したのだ: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusNotFound {
				t.Errorf("%s: 期待 404, 実際 %d", path, resp.StatusCode)
			}
		}
	})

	t.Run("上限超過の画像は切り詰めずに拒否されるのだ", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		fw, err := mw.CreateFormFile("image", "huge.png")
		if err != nil {
			t.Fatalf("マルチパートの構築に失敗したのだ: %v", err)
		}
		if _, err := fw.Write(make([]byte, maxUploadBytes+1)); err != nil {
			t.Fatalf("画像の書き込みに失敗したのだ: %v", err)
		}
		if err := mw.Close(); err != nil {
			t.Fatalf("マルチパートのクローズに失敗したのだ: %v", err)
		}

		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/comics", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POSTに失敗したのだ: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusRequestEntityTooLarge {
			t.Errorf("期待 413, 実際 %d", resp.StatusCode)
		}
	})

	t.Run("画像なしのPOSTは400なのだ", func(t *testing.T) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		_ = mw.WriteField("title", "画像なし")
		_ = mw.Close()

		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/comics", &body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("POSTに失敗したのだ: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("期待 400, 実際 %d", resp.StatusCode)
		}
	})

	t.Run("トップページにアップロードフォームがあるのだ", func(t *testing.T) {
		resp, err := http.Get(ts.URL + "/")
		if err != nil {
			t.Fatalf("GETに失敗したのだ: %v", err)
		}
		defer resp.Body.Close()
		html, _ := io.ReadAll(resp.Body)
		if !strings.Contains(string(html), `enctype="multipart/form-data"`) {
			t.Error("アップロードフォームが見つからないのだ")
		}
	})
}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore()

	run := store.Create("テスト")
	if run.ID.String() == "" {
		t.Fatal("IDが発番されていないのだ")
	}
	got, ok := store.Get(run.ID)
	if !ok || got != run {
		t.Error("登録した Run が引けないのだ")
	}

	t.Run("結果の確定と読み出しなのだ", func(t *testing.T) {
		doc := domain.ComicDocument{Title: "テスト"}
		run.complete(doc, []byte{0x89, 'P', 'N', 'G'})
		gotDoc, strip, err := run.Result()
		if err != nil {
			t.Fatalf("エラーが確定しているのだ: %v", err)
		}
		if gotDoc.Title != "テスト" || len(strip) != 4 {
			t.Error("確定した結果が読み出せないのだ")
		}
	})
}

func TestStore_PrunesExpiredRuns(t *testing.T) {
	store := NewStore()
	store.ttl = 10 * time.Millisecond

	old := store.Create("古いラン")
	time.Sleep(20 * time.Millisecond)

	fresh := store.Create("新しいラン")

	if _, ok := store.Get(old.ID); ok {
		t.Error("期限切れの Run が掃除されていないのだ")
	}
	if _, ok := store.Get(fresh.ID); !ok {
		t.Error("期限内の Run まで消えているのだ")
	}
}
