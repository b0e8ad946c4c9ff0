package peerserver

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jaywantadh/chunkrelay/internal/catalog"
	"github.com/jaywantadh/chunkrelay/internal/downloader"
	"github.com/jaywantadh/chunkrelay/internal/trackerclient"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Open(filepath.Join(t.TempDir(), "catalog-db"))
	if err != nil {
		t.Fatalf("failed to open catalog: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	return cat
}

func TestHandleChunkServesWholeFileByOffset(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "movie.mp4")
	data := []byte("0123456789")
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	cat := newTestCatalog(t)
	cat.Put(catalog.SharedFile{
		FileID: "f1", Filename: "movie.mp4", Size: int64(len(data)),
		Chunks: 1, ChunksHeld: []int{0}, LocalSource: filePath,
	})

	downloads := downloader.NewManager(trackerclient.New("http://unused"), cat, "peer", 9000, dir, testLogger())
	srv := New(cat, downloads, "peer", testLogger())
	ts := httptest.NewServer(srv.NewMux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/chunk?file_id=f1&chunk_index=0")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != string(data) {
		t.Errorf("unexpected chunk body: %q", body)
	}
}

func TestHandleChunkUnknownFileIs404(t *testing.T) {
	cat := newTestCatalog(t)
	downloads := downloader.NewManager(trackerclient.New("http://unused"), cat, "peer", 9000, t.TempDir(), testLogger())
	srv := New(cat, downloads, "peer", testLogger())
	ts := httptest.NewServer(srv.NewMux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/chunk?file_id=missing&chunk_index=0")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestHandleStatusReportsPeerID(t *testing.T) {
	cat := newTestCatalog(t)
	downloads := downloader.NewManager(trackerclient.New("http://unused"), cat, "peer-9", 9000, t.TempDir(), testLogger())
	srv := New(cat, downloads, "peer-9", testLogger())
	ts := httptest.NewServer(srv.NewMux())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), "peer-9") {
		t.Errorf("expected status body to mention peer id, got %s", body)
	}
}
