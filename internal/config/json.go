package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/qubitlabs/mediakeeper/internal/flagx"
	"github.com/qubitlabs/mediakeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies
// on timex.Duration so JSON can specify intervals either as strings like
// "15s" or as integer nanoseconds. After parsing, non-zero values are
// copied into the runtime Config.
type JsonConfig struct {
	DataDir       string         `json:"data_dir"`
	BackendDSNs   []string       `json:"backend_dsns"`
	MarkersDir    string         `json:"markers_dir"`
	PollInterval  timex.Duration `json:"poll_interval"`
	PollCooldown  timex.Duration `json:"poll_cooldown"`
	ReadTimeout   timex.Duration `json:"read_timeout"`
	FeedLimit     int            `json:"feed_limit"`
	SessionSecret string         `json:"session_secret"`
	TokenTTL      timex.Duration `json:"token_ttl"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; when no
// path is given nothing is loaded. Fields absent from the JSON keep their
// defaults. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if len(jc.BackendDSNs) > 0 {
		cfg.BackendDSNs = jc.BackendDSNs
	}
	if jc.MarkersDir != "" {
		cfg.MarkersDir = jc.MarkersDir
	}
	if jc.PollInterval.Duration > 0 {
		cfg.PollInterval = time.Duration(jc.PollInterval.Duration)
	}
	if jc.PollCooldown.Duration > 0 {
		cfg.PollCooldown = time.Duration(jc.PollCooldown.Duration)
	}
	if jc.ReadTimeout.Duration > 0 {
		cfg.ReadTimeout = time.Duration(jc.ReadTimeout.Duration)
	}
	if jc.FeedLimit > 0 {
		cfg.FeedLimit = jc.FeedLimit
	}
	if jc.SessionSecret != "" {
		cfg.SessionSecret = jc.SessionSecret
	}
	if jc.TokenTTL.Duration > 0 {
		cfg.TokenTTL = time.Duration(jc.TokenTTL.Duration)
	}
}
