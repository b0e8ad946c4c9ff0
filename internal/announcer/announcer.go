// Package announcer periodically re-announces a peer's holdings for each
// shared file to the tracker, so liveness windows don't expire while the
// peer is still up.
package announcer

import (
	"sync"
	"time"

	"github.com/jaywantadh/chunkrelay/internal/catalog"
	"github.com/jaywantadh/chunkrelay/internal/protocol"
	"github.com/jaywantadh/chunkrelay/internal/trackerclient"
	"github.com/sirupsen/logrus"
)

// Announcer owns one background goroutine per watched file.
type Announcer struct {
	tracker *trackerclient.Client
	catalog *catalog.Catalog
	peerID  string
	port    int
	log     *logrus.Logger

	mu      sync.Mutex
	running map[string]chan struct{}
	wg      sync.WaitGroup
}

// New returns an Announcer bound to one peer identity.
func New(tracker *trackerclient.Client, cat *catalog.Catalog, peerID string, port int, log *logrus.Logger) *Announcer {
	return &Announcer{
		tracker: tracker,
		catalog: cat,
		peerID:  peerID,
		port:    port,
		log:     log,
		running: map[string]chan struct{}{},
	}
}

// Watch starts a re-announce loop for fileID if one isn't already running.
func (a *Announcer) Watch(fileID string) {
	a.mu.Lock()
	if _, ok := a.running[fileID]; ok {
		a.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	a.running[fileID] = stop
	a.mu.Unlock()

	a.wg.Add(1)
	go a.loop(fileID, stop)
}

// Unwatch stops re-announcing fileID.
func (a *Announcer) Unwatch(fileID string) {
	a.mu.Lock()
	stop, ok := a.running[fileID]
	if ok {
		delete(a.running, fileID)
	}
	a.mu.Unlock()
	if ok {
		close(stop)
	}
}

func (a *Announcer) loop(fileID string, stop chan struct{}) {
	defer a.wg.Done()
	ticker := time.NewTicker(protocol.AnnounceInterval)
	defer ticker.Stop()

	a.log.WithField("file_id", fileID).Info("announcer: starting periodic announcements")

	for {
		select {
		case <-stop:
			a.log.WithField("file_id", fileID).Info("announcer: stopped announcements")
			return
		case <-ticker.C:
			sf, ok := a.catalog.Get(fileID)
			if !ok {
				a.Unwatch(fileID)
				return
			}
			err := a.tracker.Announce(trackerclient.AnnounceRequest{
				PeerID: a.peerID,
				FileID: fileID,
				Port:   a.port,
				Chunks: sf.ChunksHeld,
			})
			if err != nil {
				a.log.WithError(err).WithField("file_id", fileID).Warn("announcer: announce failed")
				continue
			}
			a.log.WithField("file_id", fileID).Info("announcer: announced successfully")
		}
	}
}

// Stop unwatches every file and waits for all loops to exit.
func (a *Announcer) Stop() {
	a.mu.Lock()
	ids := make([]string, 0, len(a.running))
	for id := range a.running {
		ids = append(ids, id)
	}
	a.mu.Unlock()

	for _, id := range ids {
		a.Unwatch(id)
	}
	a.wg.Wait()
}
