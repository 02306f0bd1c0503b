package diag

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rybkr/legitfs/internal/vfs"
)

func TestServer_HealthzReportsOK(t *testing.T) {
	vctx := vfs.NewContext(t.TempDir())
	srv := New("127.0.0.1:0", nil, vctx, nil)
	srv.addr = "127.0.0.1:18532"

	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Shutdown()

	time.Sleep(20 * time.Millisecond)

	resp, err := http.Get("http://127.0.0.1:18532/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	var body healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %q", body.Status)
	}
}

func TestServer_HelpRendersHTML(t *testing.T) {
	vctx := vfs.NewContext(t.TempDir())
	srv := New("127.0.0.1:18533", nil, vctx, nil)

	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Shutdown()

	time.Sleep(20 * time.Millisecond)

	resp, err := http.Get("http://127.0.0.1:18533/help")
	if err != nil {
		t.Fatalf("GET /help: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct == "" {
		t.Fatalf("expected a content type header")
	}
}

func TestServer_SnapshotUsageReflectsDescriptorCounts(t *testing.T) {
	vctx := vfs.NewContext(t.TempDir())
	vctx.BlobDescriptors.Allocate("abc")
	vctx.BlobCache.Put("abc", []byte("data"))

	srv := New("127.0.0.1:0", nil, vctx, nil)
	usage := srv.snapshotUsage()
	if usage.BlobDescriptors != 1 {
		t.Fatalf("expected 1 blob descriptor, got %d", usage.BlobDescriptors)
	}
	if usage.CachedBlobs != 1 {
		t.Fatalf("expected 1 cached blob, got %d", usage.CachedBlobs)
	}
}
