package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/cidadefoco/internal/flagx"
	"github.com/dmitrijs2005/cidadefoco/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Values are
// copied into the runtime Config after parsing. Absent fields keep the value
// already present in Config.
type JsonConfig struct {
	BaseURL        *string         `json:"base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	RetryCount     *int            `json:"retry_count"`
	RetryDelay     *timex.Duration `json:"retry_delay"`
	DatabasePath   *string         `json:"database_path"`
}

// parseJson overlays Config with values loaded from the JSON file given via
// -c or -config. If no file was given, nothing happens. Read or unmarshal
// errors panic; the CLI treats a broken explicit config file as fatal.
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

	if jc.BaseURL != nil {
		cfg.BaseURL = *jc.BaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.RetryCount != nil {
		cfg.RetryCount = *jc.RetryCount
	}
	if jc.RetryDelay != nil {
		cfg.RetryDelay = time.Duration(jc.RetryDelay.Duration)
	}
	if jc.DatabasePath != nil {
		cfg.DatabasePath = *jc.DatabasePath
	}
}
