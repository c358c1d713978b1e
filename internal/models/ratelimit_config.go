package models

import "time"

// RatelimitConfig is a DB-stored limiter rate in ulule notation, for
// example "5-S" or "100-M". The reloader polls it so limits can change
// without a redeploy.
type RatelimitConfig struct {
	ConfigKey string    `json:"config_key"`
	Rate      string    `json:"rate"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
