package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for common loading failures. Callers can match these
// with errors.Is to distinguish failure modes.
var (
	ErrFileNotFound     = errors.New("configuration file not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidJSON      = errors.New("invalid JSON syntax")
	ErrInvalidYAML      = errors.New("invalid YAML syntax")
	ErrEmptyFile        = errors.New("configuration file is empty")
)

// DiscoveryOrder lists the file names probed by Discover, in priority order.
var DiscoveryOrder = []string{"wiretap.yaml", "wiretap.yml", ".wiretap.yaml"}

// EnvConfig names the environment variable that overrides file discovery.
const EnvConfig = "WIRETAP_CONFIG"

// File is the on-disk form of a wiretap project file: a tracking section
// holding the option set plus a list of capture definitions.
type File struct {
	Tracking *Config        `json:"tracking,omitempty" yaml:"tracking,omitempty"`
	Captures []CaptureEntry `json:"captures,omitempty" yaml:"captures,omitempty"`
}

// LoadFile reads and parses a project file. The format is auto-detected
// from the extension (.yaml/.yml for YAML, otherwise JSON) and environment
// variables in the raw content are expanded before parsing.
func LoadFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".yaml" || ext == ".yml" {
		return ParseYAML(data)
	}

	if !json.Valid(data) {
		return nil, fmt.Errorf("%w in file: %s", ErrInvalidJSON, path)
	}
	return ParseJSON(data)
}

// ParseYAML parses YAML bytes into a File after env expansion and schema
// validation.
func ParseYAML(data []byte) (*File, error) {
	expanded := []byte(ExpandEnvVars(string(data)))

	if err := ValidateBytes(expanded); err != nil {
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(expanded, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &f, nil
}

// ParseJSON parses JSON bytes into a File after env expansion and schema
// validation.
func ParseJSON(data []byte) (*File, error) {
	expanded := []byte(ExpandEnvVars(string(data)))

	if err := ValidateBytes(expanded); err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(expanded, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return &f, nil
}

// Validate checks the tracking section and every capture entry.
func (f *File) Validate() error {
	if f == nil {
		return nil
	}
	if err := f.Tracking.Validate(); err != nil {
		return err
	}
	for i, e := range f.Captures {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("captures[%d]: %w", i, err)
		}
	}
	return nil
}

// Save writes a project file using an atomic rename. The format follows
// the extension (.yaml/.yml for YAML, otherwise JSON) and parent
// directories are created as needed.
func Save(path string, f *File) error {
	if f == nil {
		return errors.New("file cannot be nil")
	}

	ext := strings.ToLower(filepath.Ext(path))
	var data []byte
	var err error
	if ext == ".yaml" || ext == ".yml" {
		data, err = yaml.Marshal(f)
	} else {
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// Discover finds a project file via the WIRETAP_CONFIG env var or by
// probing the current directory for the well-known names. Returns the
// path, or ErrFileNotFound when nothing is found.
func Discover() (string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
		return "", fmt.Errorf("%s points to non-existent file: %s", EnvConfig, envPath)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting current directory: %w", err)
	}

	for _, name := range DiscoveryOrder {
		path := filepath.Join(cwd, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: no %s in %s", ErrFileNotFound, DiscoveryOrder[0], cwd)
}

// envVarPattern matches ${VAR_NAME} or ${VAR_NAME:-default}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// ExpandEnvVars expands environment variables in the input string.
// Supports ${VAR_NAME} and ${VAR_NAME:-default} syntax.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}

		varName := submatch[1]
		defaultVal := ""
		if len(submatch) >= 3 {
			defaultVal = submatch[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}

		return defaultVal
	})
}
