package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// TrackerConfig holds the tracker process's configuration.
type TrackerConfig struct {
	Addr     string `mapstructure:"addr"`
	DBPath   string `mapstructure:"db_path"`
	LogLevel string `mapstructure:"log_level"`
}

// PeerConfig holds a peer process's configuration.
type PeerConfig struct {
	NodeID      string `mapstructure:"node_id"`
	Port        int    `mapstructure:"port"`
	TrackerURL  string `mapstructure:"tracker_url"`
	UploadDir   string `mapstructure:"upload_dir"`
	DownloadDir string `mapstructure:"download_dir"`
	CatalogPath string `mapstructure:"catalog_path"`
	LogLevel    string `mapstructure:"log_level"`
}

// LoadTrackerConfig reads tracker.yaml (if present) from path, applies
// defaults, and watches the file for hot-reload. onChange, if non-nil, is
// invoked with the freshly-decoded config on every reload.
func LoadTrackerConfig(path string, log *logrus.Logger, onChange func(TrackerConfig)) (*TrackerConfig, error) {
	v := viper.New()
	v.SetConfigName("tracker")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AutomaticEnv()

	v.SetDefault("addr", ":8000")
	v.SetDefault("db_path", "./data/tracker-db.json")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		log.WithError(err).Warn("config: no tracker config file found, using defaults")
	}

	var cfg TrackerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode tracker config: %w", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.WithField("file", e.Name).Info("config: tracker config changed, reloading")
		var reloaded TrackerConfig
		if err := v.Unmarshal(&reloaded); err != nil {
			log.WithError(err).Error("config: failed to reload tracker config")
			return
		}
		if onChange != nil {
			onChange(reloaded)
		}
	})

	return &cfg, nil
}

// LoadPeerConfig reads peer.yaml (if present) from path, applies
// defaults, and watches the file for hot-reload.
func LoadPeerConfig(path string, log *logrus.Logger, onChange func(PeerConfig)) (*PeerConfig, error) {
	v := viper.New()
	v.SetConfigName("peer")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AutomaticEnv()

	v.SetDefault("node_id", "")
	v.SetDefault("port", 9000)
	v.SetDefault("tracker_url", "http://localhost:8000")
	v.SetDefault("upload_dir", "./uploads")
	v.SetDefault("download_dir", "./downloads")
	v.SetDefault("catalog_path", "./data/peer-catalog")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		log.WithError(err).Warn("config: no peer config file found, using defaults")
	}

	var cfg PeerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode peer config: %w", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.WithField("file", e.Name).Info("config: peer config changed, reloading")
		var reloaded PeerConfig
		if err := v.Unmarshal(&reloaded); err != nil {
			log.WithError(err).Error("config: failed to reload peer config")
			return
		}
		if onChange != nil {
			onChange(reloaded)
		}
	})

	return &cfg, nil
}
