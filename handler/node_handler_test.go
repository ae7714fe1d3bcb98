package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/griptape-ai/griptape-nodes-library-decart/core"
	"github.com/griptape-ai/griptape-nodes-library-decart/model"
)

func newTestRouter(t *testing.T, upstream http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	adapter := core.NewRequestAdapter(srv.URL+"/v1/generate/", 5*time.Second, nil)
	manager := core.NewNodeManager(t.TempDir(), model.DecartConfig{APIKeyEnv: "DECART_TEST_KEY"}, adapter, nil, time.Second, false)
	h := NewNodeHandler(manager, core.NewEventHub())

	r := gin.New()
	r.POST("/api/generate_sync", h.GenerateSyncHandler)
	r.GET("/api/nodes", h.ListNodesHandler)
	r.POST("/api/nodes/:name/enable", h.EnableNodeHandler)
	r.POST("/api/nodes/:name/disable", h.DisableNodeHandler)
	return r
}

func jsonUpstream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"result_url": "https://x/y.mp4"}`))
}

func doJSON(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate_sync", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应不是 JSON: %s", w.Body.String())
	}
	return w, resp
}

func TestGenerateSyncJSON(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "test-key")
	r := newTestRouter(t, jsonUpstream)

	w, resp := doJSON(t, r, `{"node": "lucy-dev-i2v", "prompt": "make it move", "image": "https://example.com/in.png"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.Code != 0 {
		t.Fatalf("expected success envelope, got %+v", resp)
	}
	data, _ := resp.Data.(map[string]interface{})
	if data["type"] != model.ArtifactVideoURL {
		t.Errorf("expected VideoUrlArtifact, got %v", resp.Data)
	}
	if data["value"] != "https://x/y.mp4" {
		t.Errorf("artifact value mismatch: %v", resp.Data)
	}
}

func TestGenerateSyncMissingFields(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "test-key")
	r := newTestRouter(t, jsonUpstream)

	for _, body := range []string{
		`{"prompt": "a fox"}`,
		`{"node": "lucy-pro-t2i"}`,
		`not-json`,
	} {
		w, resp := doJSON(t, r, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, w.Code)
		}
		if resp.Code != -1 {
			t.Errorf("body %q: expected failure envelope", body)
		}
	}
}

func TestGenerateSyncRejectsWrongReference(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "test-key")
	r := newTestRouter(t, jsonUpstream)

	// t2i 节点不接受图片引用，网络调用发生前就该拒绝
	w, _ := doJSON(t, r, `{"node": "lucy-pro-t2i", "prompt": "a fox", "image": "https://example.com/in.png"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}

	// 完全不支持的引用形状
	w, _ = doJSON(t, r, `{"node": "lucy-dev-i2v", "prompt": "a fox", "image": 42}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unsupported shape, got %d", w.Code)
	}
}

func TestGenerateSyncUpstreamFailure(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "test-key")
	r := newTestRouter(t, func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	w, _ := doJSON(t, r, `{"node": "lucy-pro-t2i", "prompt": "a fox"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("expected 502 for upstream failure, got %d", w.Code)
	}
}

func TestGenerateSyncMissingCredential(t *testing.T) {
	// 故意不设置 DECART_TEST_KEY
	r := newTestRouter(t, jsonUpstream)

	w, _ := doJSON(t, r, `{"node": "lucy-pro-t2i", "prompt": "a fox"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for missing credential, got %d", w.Code)
	}
}

func TestGenerateSyncMultipart(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "test-key")
	r := newTestRouter(t, jsonUpstream)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("node", "lucy-pro-v2v")
	_ = mw.WriteField("prompt", "replace the sky")
	fw, _ := mw.CreateFormFile("data", "input.mp4")
	_, _ = fw.Write([]byte("fake-video-bytes"))
	_ = mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/generate_sync", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListNodes(t *testing.T) {
	r := newTestRouter(t, jsonUpstream)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nodes", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	list, _ := resp.Data.([]interface{})
	if len(list) != 7 {
		t.Errorf("expected 7 builtin nodes, got %d", len(list))
	}
}

func TestEnableDisableEndpoints(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "test-key")
	r := newTestRouter(t, jsonUpstream)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/nodes/lucy-pro-t2i/disable", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("disable failed: %d", w.Code)
	}

	// 停用后的节点拒绝生成
	w2, _ := doJSON(t, r, `{"node": "lucy-pro-t2i", "prompt": "a fox"}`)
	if w2.Code == http.StatusOK {
		t.Error("disabled node must reject generation")
	}

	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest(http.MethodPost, "/api/nodes/lucy-pro-t2i/enable", nil))
	if w3.Code != http.StatusOK {
		t.Fatalf("enable failed: %d", w3.Code)
	}

	w4 := httptest.NewRecorder()
	r.ServeHTTP(w4, httptest.NewRequest(http.MethodPost, "/api/nodes/no-such/enable", nil))
	if w4.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown node, got %d", w4.Code)
	}
}
