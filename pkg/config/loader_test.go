package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "wiretap.yaml")

	content := `tracking:
  enabled: true
  maxLoggedEvents: 50
  excludeUrls:
    - internal.example.com
  logLevel: debug
captures:
  - method: POST
    url: api.example.com/v1/orders
    note: order submissions
`
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, f)
	require.NotNil(t, f.Tracking)
	assert.True(t, f.Tracking.TrackingEnabled())
	assert.Equal(t, 50, f.Tracking.MaxLoggedEvents)
	assert.Equal(t, []string{"internal.example.com"}, f.Tracking.ExcludeUrls)
	assert.Equal(t, "debug", f.Tracking.LogLevel)
	require.Len(t, f.Captures, 1)
	assert.Equal(t, "POST", f.Captures[0].Method)
	assert.Equal(t, "api.example.com/v1/orders", f.Captures[0].URL)
	assert.Equal(t, "order submissions", f.Captures[0].Note)
}

func TestLoadFile_ValidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "wiretap.json")

	content := `{
		"tracking": {"enabled": false, "useColors": false},
		"captures": [{"method": "*", "url": "example.com"}]
	}`
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)

	f, err := LoadFile(path)
	require.NoError(t, err)
	require.NotNil(t, f.Tracking)
	assert.False(t, f.Tracking.TrackingEnabled())
	assert.False(t, f.Tracking.ColorsEnabled())
	require.Len(t, f.Captures, 1)
	assert.Equal(t, "*", f.Captures[0].Method)
}

func TestLoadFile_NotFound(t *testing.T) {
	_, err := LoadFile("/nonexistent/wiretap.yaml")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLoadFile_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, []byte{}, 0644))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestLoadFile_Directory(t *testing.T) {
	tmpDir := t.TempDir()
	_, err := LoadFile(tmpDir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "directory")
}

func TestLoadFile_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{ not json }`), 0644))

	_, err := LoadFile(path)
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestParseYAML_UnknownKeyRejected(t *testing.T) {
	content := `tracking:
  enabeld: true
`
	_, err := ParseYAML([]byte(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enabeld")
}

func TestParseYAML_BadCaptureShape(t *testing.T) {
	content := `captures:
  - method: GET
`
	_, err := ParseYAML([]byte(content))
	assert.Error(t, err)
}

func TestParseYAML_EnvExpansion(t *testing.T) {
	t.Setenv("WIRETAP_TEST_HOST", "api.example.com")

	content := `captures:
  - method: GET
    url: ${WIRETAP_TEST_HOST}/v1/users
  - method: POST
    url: ${WIRETAP_TEST_MISSING:-fallback.example.com}/v1
`
	f, err := ParseYAML([]byte(content))
	require.NoError(t, err)
	require.Len(t, f.Captures, 2)
	assert.Equal(t, "api.example.com/v1/users", f.Captures[0].URL)
	assert.Equal(t, "fallback.example.com/v1", f.Captures[1].URL)
}

func TestParseYAML_InvalidRegexRejected(t *testing.T) {
	content := `captures:
  - method: GET
    url: "api\\.example\\.com/(unclosed"
    regex: true
`
	_, err := ParseYAML([]byte(content))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "regex")
}

func TestSave_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "wiretap.yaml")

	f := &File{
		Tracking: &Config{Enabled: Bool(true), LogLevel: "warn"},
		Captures: []CaptureEntry{{Method: "PUT", URL: "api.example.com/v2"}},
	}
	require.NoError(t, Save(path, f))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, loaded.Tracking.TrackingEnabled())
	assert.Equal(t, "warn", loaded.Tracking.LogLevel)
	require.Len(t, loaded.Captures, 1)
	assert.Equal(t, "PUT", loaded.Captures[0].Method)
}

func TestSave_NilFile(t *testing.T) {
	assert.Error(t, Save("anywhere.yaml", nil))
}

func TestDiscover_EnvVar(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracking: {}\n"), 0644))
	t.Setenv(EnvConfig, path)

	found, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestDiscover_EnvVarMissingFile(t *testing.T) {
	t.Setenv(EnvConfig, "/nonexistent/custom.yaml")
	_, err := Discover()
	assert.Error(t, err)
}

func TestDiscover_CurrentDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "wiretap.yml"), []byte("tracking: {}\n"), 0644))

	t.Setenv(EnvConfig, "")
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(oldWd)

	found, err := Discover()
	require.NoError(t, err)
	// Resolve symlinks so macOS /var vs /private/var temp paths compare equal.
	wantDir, _ := filepath.EvalSymlinks(tmpDir)
	gotDir, _ := filepath.EvalSymlinks(filepath.Dir(found))
	assert.Equal(t, wantDir, gotDir)
	assert.Equal(t, "wiretap.yml", filepath.Base(found))
}

func TestDiscover_NothingFound(t *testing.T) {
	t.Setenv(EnvConfig, "")
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(t.TempDir()))
	defer os.Chdir(oldWd)

	_, err := Discover()
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("WIRETAP_TEST_VAR", "hello")

	assert.Equal(t, "hello", ExpandEnvVars("${WIRETAP_TEST_VAR}"))
	assert.Equal(t, "prefix-hello-suffix", ExpandEnvVars("prefix-${WIRETAP_TEST_VAR}-suffix"))
	assert.Equal(t, "fallback", ExpandEnvVars("${WIRETAP_TEST_UNSET:-fallback}"))
	assert.Equal(t, "", ExpandEnvVars("${WIRETAP_TEST_UNSET}"))
	assert.Equal(t, "plain text", ExpandEnvVars("plain text"))
}
