package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillDefaultsAppliesEngineDefaults(t *testing.T) {
	var cfg Config
	cfg.fillDefaults()
	assert.Equal(t, 20, cfg.MaxConnects)
	assert.Equal(t, 10, cfg.DownloadReservation)
	assert.Equal(t, 20, cfg.DefaultBlockSizeMB)
	assert.NotEmpty(t, cfg.DefaultUserAgent)
	assert.NotNil(t, cfg.FS)
	assert.NotNil(t, cfg.Logger)
}

func TestFillDefaultsClampsReservationToMax(t *testing.T) {
	cfg := Config{MaxConnects: 5, DownloadReservation: 50}
	cfg.fillDefaults()
	assert.Equal(t, 5, cfg.DownloadReservation)
}

func TestFillDefaultsLeavesExplicitValuesAlone(t *testing.T) {
	cfg := Config{MaxConnects: 3, DownloadReservation: 1, DefaultBlockSizeMB: 5, DefaultUserAgent: "custom/1.0"}
	cfg.fillDefaults()
	assert.Equal(t, 3, cfg.MaxConnects)
	assert.Equal(t, 1, cfg.DownloadReservation)
	assert.Equal(t, 5, cfg.DefaultBlockSizeMB)
	assert.Equal(t, "custom/1.0", cfg.DefaultUserAgent)
}
