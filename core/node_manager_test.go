package core

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/griptape-ai/griptape-nodes-library-decart/model"
)

func newTestManager(t *testing.T, resourceDir string, upstream http.HandlerFunc) *NodeManager {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)
	adapter := NewRequestAdapter(srv.URL+"/v1/generate/", 5*time.Second, nil)
	decart := model.DecartConfig{APIKeyEnv: "DECART_TEST_KEY"}
	return NewNodeManager(resourceDir, decart, adapter, nil, time.Second, false)
}

func okUpstream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"result_url": "https://x/y.mp4"}`))
}

func TestBuiltinNodeTable(t *testing.T) {
	m := newTestManager(t, t.TempDir(), okUpstream)

	if got := len(m.ListNodes()); got != 7 {
		t.Fatalf("expected 7 builtin nodes, got %d", got)
	}

	t2i, ok := m.GetNode("lucy-pro-t2i")
	if !ok {
		t.Fatal("lucy-pro-t2i missing")
	}
	if t2i.SupportsImageInput || t2i.SupportsVideoInput {
		t.Error("t2i must not declare reference inputs")
	}
	if t2i.OutputKind != model.OutputImage {
		t.Errorf("t2i output kind mismatch: %s", t2i.OutputKind)
	}

	i2v, ok := m.GetNode("lucy-dev-i2v")
	if !ok {
		t.Fatal("lucy-dev-i2v missing")
	}
	if !i2v.SupportsImageInput || i2v.SupportsVideoInput {
		t.Error("i2v must declare exactly the image reference")
	}

	v2v, ok := m.GetNode("lucy-pro-v2v")
	if !ok {
		t.Fatal("lucy-pro-v2v missing")
	}
	if !v2v.SupportsVideoInput {
		t.Error("v2v must declare the video reference")
	}
}

func TestYamlOverlay(t *testing.T) {
	dir := t.TempDir()
	custom := `
name: lucy-edit-exp
description: "实验端点"
model_endpoint: lucy-edit-exp
supports_video_input: true
output_kind: video
`
	if err := os.WriteFile(filepath.Join(dir, "lucy-edit-exp.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	m := newTestManager(t, dir, okUpstream)
	if got := len(m.ListNodes()); got != 8 {
		t.Fatalf("expected 7 builtin + 1 custom nodes, got %d", got)
	}
	node, ok := m.GetNode("lucy-edit-exp")
	if !ok {
		t.Fatal("custom node missing")
	}
	if !node.SupportsVideoInput || node.OutputKind != model.OutputVideo {
		t.Errorf("custom node config mismatch: %+v", node)
	}
}

func TestHotReloadAddAndRemove(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, dir, okUpstream)

	// 新增定义文件
	custom := `
name: lucy-edit-exp
model_endpoint: lucy-edit-exp
supports_video_input: true
output_kind: video
`
	path := filepath.Join(dir, "lucy-edit-exp.yaml")
	if err := os.WriteFile(path, []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	m.checkConfigChanges()
	if _, ok := m.GetNode("lucy-edit-exp"); !ok {
		t.Fatal("expected new node after reload check")
	}

	// 删除定义文件
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	m.checkConfigChanges()
	if _, ok := m.GetNode("lucy-edit-exp"); ok {
		t.Fatal("expected node removed after file deletion")
	}
}

func TestHotReloadBuiltinOverrideRestore(t *testing.T) {
	dir := t.TempDir()
	m := newTestManager(t, dir, okUpstream)

	override := `
name: lucy-pro-t2i
description: "覆盖后的描述"
model_endpoint: lucy-pro-t2i-v2
output_kind: image
`
	path := filepath.Join(dir, "lucy-pro-t2i.yaml")
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	m.checkConfigChanges()
	node, _ := m.GetNode("lucy-pro-t2i")
	if node.ModelEndpoint != "lucy-pro-t2i-v2" {
		t.Fatalf("expected override to apply, got %q", node.ModelEndpoint)
	}

	// 删除覆盖文件后恢复内置定义
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	m.checkConfigChanges()
	node, ok := m.GetNode("lucy-pro-t2i")
	if !ok {
		t.Fatal("builtin node must survive override removal")
	}
	if node.ModelEndpoint != "lucy-pro-t2i" {
		t.Errorf("expected builtin definition restored, got %q", node.ModelEndpoint)
	}
}

func TestEnableDisable(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "test-key")
	m := newTestManager(t, t.TempDir(), okUpstream)

	if err := m.DisableNode("lucy-pro-t2i"); err != nil {
		t.Fatal(err)
	}
	_, err := m.Generate(context.Background(), "lucy-pro-t2i", model.GenerationRequest{Prompt: "a fox"})
	if err == nil || !strings.Contains(err.Error(), "已停用") {
		t.Fatalf("expected disabled error, got %v", err)
	}

	if err := m.EnableNode("lucy-pro-t2i"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Generate(context.Background(), "lucy-pro-t2i", model.GenerationRequest{Prompt: "a fox"}); err != nil {
		t.Fatalf("unexpected error after enable: %v", err)
	}

	if err := m.DisableNode("no-such-node"); err == nil {
		t.Error("expected error for unknown node")
	}
}

func TestGenerateWrapsArtifact(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "test-key")
	m := newTestManager(t, t.TempDir(), okUpstream)

	artifact, err := m.Generate(context.Background(), "lucy-pro-t2v", model.GenerationRequest{Prompt: "a fox"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Type != model.ArtifactVideoURL {
		t.Errorf("expected VideoUrlArtifact, got %q", artifact.Type)
	}
	if artifact.Value != "https://x/y.mp4" {
		t.Errorf("artifact value mismatch: %q", artifact.Value)
	}

	// 图片节点包装成 ImageUrlArtifact
	artifact, err = m.Generate(context.Background(), "lucy-pro-t2i", model.GenerationRequest{Prompt: "a fox"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.Type != model.ArtifactImageURL {
		t.Errorf("expected ImageUrlArtifact, got %q", artifact.Type)
	}
}

func TestGenerateUnknownNode(t *testing.T) {
	t.Setenv("DECART_TEST_KEY", "test-key")
	m := newTestManager(t, t.TempDir(), okUpstream)
	if _, err := m.Generate(context.Background(), "no-such-node", model.GenerationRequest{Prompt: "a fox"}); err == nil {
		t.Fatal("expected error for unknown node")
	}
}
