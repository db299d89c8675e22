package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.True(t, cfg.TrackingEnabled())
	assert.True(t, cfg.RequestBodyLogging())
	assert.True(t, cfg.ResponseBodyLogging())
	assert.True(t, cfg.ConsoleLogging())
	assert.True(t, cfg.ColorsEnabled())
	assert.False(t, cfg.EndpointGrouping())
	assert.False(t, cfg.GraphQLClassification())
	assert.Equal(t, DefaultMaxLoggedEvents, cfg.EventCap())
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.BodyCap())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.IncludeUrls)
	assert.Empty(t, cfg.ExcludeUrls)
	assert.Empty(t, cfg.RedactKeys)
}

func TestMerge_UnsetFieldsLeaveBase(t *testing.T) {
	base := Default()
	base.Merge(&Config{})

	assert.True(t, base.TrackingEnabled())
	assert.True(t, base.RequestBodyLogging())
	assert.Equal(t, "info", base.LogLevel)
	assert.Equal(t, DefaultMaxLoggedEvents, base.EventCap())
}

func TestMerge_ExplicitFalseWins(t *testing.T) {
	base := Default()
	base.Merge(&Config{
		Enabled:         Bool(false),
		LogResponseBody: Bool(false),
	})

	assert.False(t, base.TrackingEnabled())
	assert.True(t, base.RequestBodyLogging())
	assert.False(t, base.ResponseBodyLogging())
}

func TestMerge_ScalarsAndSlices(t *testing.T) {
	base := Default()
	base.Merge(&Config{
		MaxLoggedEvents: 500,
		LogLevel:        "debug",
		IncludeUrls:     []string{"api.example.com"},
		RedactKeys:      []string{"$.password"},
		MaxBodyBytes:    1024,
	})

	assert.Equal(t, 500, base.EventCap())
	assert.Equal(t, "debug", base.LogLevel)
	assert.Equal(t, []string{"api.example.com"}, base.IncludeUrls)
	assert.Equal(t, []string{"$.password"}, base.RedactKeys)
	assert.Equal(t, int64(1024), base.BodyCap())
}

func TestMerge_EmptySliceClears(t *testing.T) {
	base := Default()
	base.ExcludeUrls = []string{"internal.example.com"}

	base.Merge(&Config{ExcludeUrls: []string{}})

	require.NotNil(t, base.ExcludeUrls)
	assert.Empty(t, base.ExcludeUrls)
}

func TestMerge_NilPartialIsNoop(t *testing.T) {
	base := Default()
	base.Merge(nil)
	assert.True(t, base.TrackingEnabled())
}

func TestClone_Independent(t *testing.T) {
	orig := Default()
	orig.IncludeUrls = []string{"a"}

	clone := orig.Clone()
	clone.IncludeUrls[0] = "b"
	*clone.Enabled = false

	assert.Equal(t, "a", orig.IncludeUrls[0])
	assert.True(t, orig.TrackingEnabled())
	assert.False(t, clone.TrackingEnabled())
}

func TestValidate_LogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "verbose"}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logLevel")

	for _, level := range []string{"", "debug", "info", "warn", "error", "WARN"} {
		cfg := &Config{LogLevel: level}
		assert.NoError(t, cfg.Validate(), "level %q", level)
	}
}

func TestValidate_NegativeLimits(t *testing.T) {
	assert.Error(t, (&Config{MaxLoggedEvents: -1}).Validate())
	assert.Error(t, (&Config{MaxBodyBytes: -1}).Validate())
}

func TestAccessors_NilConfig(t *testing.T) {
	var cfg *Config
	assert.False(t, cfg.TrackingEnabled())
	assert.False(t, cfg.RequestBodyLogging())
	assert.Equal(t, DefaultMaxLoggedEvents, cfg.EventCap())
	assert.Equal(t, int64(DefaultMaxBodyBytes), cfg.BodyCap())
	assert.NoError(t, cfg.Validate())
}
