package main

import (
	"flag"
	"fmt"
	"net/http"

	"github.com/jaywantadh/chunkrelay/config"
	"github.com/jaywantadh/chunkrelay/internal/announcer"
	"github.com/jaywantadh/chunkrelay/internal/catalog"
	"github.com/jaywantadh/chunkrelay/internal/chunking"
	"github.com/jaywantadh/chunkrelay/internal/downloader"
	"github.com/jaywantadh/chunkrelay/internal/humanfmt"
	"github.com/jaywantadh/chunkrelay/internal/peerid"
	"github.com/jaywantadh/chunkrelay/internal/peerserver"
	"github.com/jaywantadh/chunkrelay/internal/trackerclient"
	"github.com/jaywantadh/chunkrelay/pkg/env"
	"github.com/jaywantadh/chunkrelay/pkg/logging"
	"github.com/sirupsen/logrus"
)

func main() {
	configDir := flag.String("config", "./config", "directory containing peer.yaml")
	debug := flag.Bool("debug", false, "enable debug logging")
	port := flag.Int("port", 0, "override peer server port")
	trackerURL := flag.String("tracker", "", "override tracker base URL")
	nodeID := flag.String("node-id", "", "override this peer's ID")

	sharePath := flag.String("share", "", "split and share a local file")
	downloadID := flag.String("download", "", "download a file by its file_id")
	cancelID := flag.String("cancel", "", "cancel an in-progress download")
	showStatus := flag.Bool("status", false, "print this peer's status and exit")
	flag.Parse()

	env.LoadEnv()
	logging.InitLogger(*debug)
	log := logging.Log

	cfg, err := config.LoadPeerConfig(*configDir, log, nil)
	if err != nil {
		log.WithError(err).Fatal("peer: failed to load config")
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *trackerURL != "" {
		cfg.TrackerURL = *trackerURL
	}
	if *nodeID != "" {
		cfg.NodeID = *nodeID
	}
	if cfg.NodeID == "" {
		cfg.NodeID = peerid.Generate()
	}

	cat, err := catalog.Open(cfg.CatalogPath)
	if err != nil {
		log.WithError(err).Fatal("peer: failed to open catalog")
	}
	defer cat.Close()

	tc := trackerclient.New(cfg.TrackerURL)
	downloads := downloader.NewManager(tc, cat, cfg.NodeID, cfg.Port, cfg.DownloadDir, log)
	ann := announcer.New(tc, cat, cfg.NodeID, cfg.Port, log)
	defer ann.Stop()
	downloads.SetAnnouncer(ann)

	for _, sf := range cat.All() {
		ann.Watch(sf.FileID)
	}

	if *showStatus {
		printStatus(cat, downloads)
		return
	}

	srv := peerserver.New(cat, downloads, cfg.NodeID, log)
	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "node_id": cfg.NodeID}).Info("peer: server listening")
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Port), srv.NewMux()); err != nil {
			log.WithError(err).Fatal("peer: server stopped")
		}
	}()

	switch {
	case *sharePath != "":
		doShare(*sharePath, cfg, tc, cat, ann, log)
	case *downloadID != "":
		doDownload(*downloadID, downloads, log)
	case *cancelID != "":
		if err := downloads.Cancel(*cancelID); err != nil {
			log.WithError(err).Error("peer: cancel failed")
		}
	default:
		log.Info("peer: running with no one-shot action; serving indefinitely")
	}

	// The server goroutine above must stay alive to keep serving chunks
	// of whatever this peer just shared or is downloading.
	select {}
}

func doShare(path string, cfg *config.PeerConfig, tc *trackerclient.Client, cat *catalog.Catalog, ann *announcer.Announcer, log *logrus.Logger) {
	desc, err := chunking.Split(path, cfg.UploadDir)
	if err != nil {
		log.WithError(err).Fatal("peer: failed to split file")
	}

	chunksHeld := fullRange(desc.NumChunks)

	err = tc.Announce(trackerclient.AnnounceRequest{
		PeerID:      cfg.NodeID,
		FileID:      desc.FileID,
		Port:        cfg.Port,
		Chunks:      chunksHeld,
		Filename:    desc.Filename,
		Size:        desc.Size,
		ChunksTotal: desc.NumChunks,
	})
	if err != nil {
		log.WithError(err).Fatal("peer: failed to announce shared file")
	}

	err = cat.Put(catalog.SharedFile{
		FileID:     desc.FileID,
		Filename:   desc.Filename,
		Size:       desc.Size,
		Chunks:     desc.NumChunks,
		ChunksHeld: chunksHeld,
		ChunkDir:   cfg.UploadDir,
	})
	if err != nil {
		log.WithError(err).Fatal("peer: failed to catalog shared file")
	}

	ann.Watch(desc.FileID)

	fmt.Printf("sharing %s (%s) as file_id %s\n", desc.Filename, humanfmt.Bytes(desc.Size), desc.FileID)
}

func doDownload(fileID string, downloads *downloader.Manager, log *logrus.Logger) {
	if err := downloads.Start(fileID); err != nil {
		log.WithError(err).Fatal("peer: failed to start download")
	}
	fmt.Printf("download started for file_id %s\n", fileID)
}

func printStatus(cat *catalog.Catalog, downloads *downloader.Manager) {
	fmt.Println("shared files:")
	for _, sf := range cat.All() {
		fmt.Printf("  %s (%s) complete=%v\n", sf.Filename, sf.FileID, sf.IsComplete())
	}
	fmt.Println("active downloads:")
	for id, st := range downloads.Snapshot() {
		fmt.Printf("  %s: %.1f%% (%d/%d)\n", id, st.Progress, len(st.DownloadedChunks), st.TotalChunks)
	}
}

func fullRange(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
