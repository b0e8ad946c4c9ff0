package main

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/jaywantadh/chunkrelay/internal/announcer"
	"github.com/jaywantadh/chunkrelay/internal/catalog"
	"github.com/jaywantadh/chunkrelay/internal/chunking"
	"github.com/jaywantadh/chunkrelay/internal/downloader"
	"github.com/jaywantadh/chunkrelay/internal/peerserver"
	"github.com/jaywantadh/chunkrelay/internal/tracker"
	"github.com/jaywantadh/chunkrelay/internal/trackerclient"
	"github.com/jaywantadh/chunkrelay/pkg/logging"
)

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func main() {
	logging.InitLogger(false)
	log := logging.Log

	workDir, err := os.MkdirTemp("", "chunkrelay-manualtest-*")
	if err != nil {
		fmt.Printf("❌ failed to create work dir: %v\n", err)
		return
	}
	defer os.RemoveAll(workDir)

	inputPath := filepath.Join(workDir, "sample.bin")
	if err := writeSampleFile(inputPath, 3<<20+137); err != nil {
		fmt.Printf("❌ failed to write sample file: %v\n", err)
		return
	}

	origHash, err := sha256File(inputPath)
	if err != nil {
		fmt.Printf("❌ failed hashing original: %v\n", err)
		return
	}
	fmt.Printf("📄 Original file: %s\n", inputPath)
	fmt.Printf("🔑 Original SHA256: %s\n", origHash)

	persister := tracker.NewPersister(filepath.Join(workDir, "tracker-db.json"))
	registry, err := tracker.NewRegistry(persister)
	if err != nil {
		fmt.Printf("❌ failed to init tracker registry: %v\n", err)
		return
	}
	trackerSrv := httptest.NewServer(tracker.NewServer(registry, log))
	defer trackerSrv.Close()
	tc := trackerclient.New(trackerSrv.URL)

	// Seed peer: split the sample file and announce it.
	uploadDir := filepath.Join(workDir, "uploads")
	seedCatalog, err := catalog.Open(filepath.Join(workDir, "seed-catalog"))
	if err != nil {
		fmt.Printf("❌ failed to open seed catalog: %v\n", err)
		return
	}
	defer seedCatalog.Close()

	desc, err := chunking.Split(inputPath, uploadDir)
	if err != nil {
		fmt.Printf("❌ failed to split file: %v\n", err)
		return
	}
	fmt.Printf("🧩 Chunks created: %d | FileID: %s\n", desc.NumChunks, desc.FileID)

	chunksHeld := make([]int, desc.NumChunks)
	for i := range chunksHeld {
		chunksHeld[i] = i
	}

	seedDownloads := downloader.NewManager(tc, seedCatalog, "seed-peer", 19001, filepath.Join(workDir, "seed-downloads"), log)
	seedSrv := httptest.NewServer(peerserver.New(seedCatalog, seedDownloads, "seed-peer", log).NewMux())
	defer seedSrv.Close()
	seedPort := mustPort(seedSrv.URL)

	if err := tc.Announce(trackerclient.AnnounceRequest{
		PeerID:      "seed-peer",
		FileID:      desc.FileID,
		Port:        seedPort,
		Chunks:      chunksHeld,
		Filename:    desc.Filename,
		Size:        desc.Size,
		ChunksTotal: desc.NumChunks,
	}); err != nil {
		fmt.Printf("❌ seed announce failed: %v\n", err)
		return
	}
	if err := seedCatalog.Put(catalog.SharedFile{
		FileID:     desc.FileID,
		Filename:   desc.Filename,
		Size:       desc.Size,
		Chunks:     desc.NumChunks,
		ChunksHeld: chunksHeld,
		ChunkDir:   uploadDir,
	}); err != nil {
		fmt.Printf("❌ seed catalog put failed: %v\n", err)
		return
	}
	seedAnnouncer := announcer.New(tc, seedCatalog, "seed-peer", seedPort, log)
	seedAnnouncer.Watch(desc.FileID)
	defer seedAnnouncer.Stop()

	// Leech peer: discover the file via the tracker and download it.
	leechCatalog, err := catalog.Open(filepath.Join(workDir, "leech-catalog"))
	if err != nil {
		fmt.Printf("❌ failed to open leech catalog: %v\n", err)
		return
	}
	defer leechCatalog.Close()

	downloadDir := filepath.Join(workDir, "downloads")
	leechDownloads := downloader.NewManager(tc, leechCatalog, "leech-peer", 19002, downloadDir, log)

	if err := leechDownloads.Start(desc.FileID); err != nil {
		fmt.Printf("❌ failed to start download: %v\n", err)
		return
	}

	outputPath := filepath.Join(downloadDir, desc.Filename)
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(outputPath); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	reHash, err := sha256File(outputPath)
	if err != nil {
		fmt.Printf("❌ failed hashing reassembled file: %v\n", err)
		return
	}
	fmt.Printf("📦 Reassembled file: %s\n", outputPath)
	fmt.Printf("🔑 Reassembled SHA256: %s\n", reHash)

	if reHash == origHash {
		fmt.Println("✅ SUCCESS: Reassembled file matches original")
	} else {
		fmt.Println("❌ MISMATCH: Reassembled file differs from original")
	}
}

func writeSampleFile(path string, size int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	buf := make([]byte, 4096)
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	var written int64
	for written < size {
		n := int64(len(buf))
		if remaining := size - written; remaining < n {
			n = remaining
		}
		if _, err := f.Write(buf[:n]); err != nil {
			return err
		}
		written += n
	}
	return nil
}

// mustPort extracts the port httptest.Server bound to, e.g. from
// "http://127.0.0.1:54321".
func mustPort(url string) int {
	var host string
	var port int
	fmt.Sscanf(url, "http://%[^:]:%d", &host, &port)
	_ = host
	return port
}
