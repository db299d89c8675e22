package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// CaptureEntry is one item of a project file's captures list. An entry is
// either inline (method + url), a reference to another file, or a glob of
// files. File references and globs expand to the inline entries they hold.
type CaptureEntry struct {
	// Inline fields
	Method string `json:"method,omitempty" yaml:"method,omitempty"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
	Regex  bool   `json:"regex,omitempty" yaml:"regex,omitempty"`
	Note   string `json:"note,omitempty" yaml:"note,omitempty"`

	// Reference fields
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Files string `json:"files,omitempty" yaml:"files,omitempty"`
}

// IsInline returns true if the entry defines a capture directly.
func (e CaptureEntry) IsInline() bool { return e.URL != "" }

// IsFileRef returns true if the entry points at a single capture file.
func (e CaptureEntry) IsFileRef() bool { return e.File != "" }

// IsGlob returns true if the entry expands a glob of capture files.
func (e CaptureEntry) IsGlob() bool { return e.Files != "" }

// Validate checks that the entry takes exactly one form and that a regex
// pattern compiles.
func (e CaptureEntry) Validate() error {
	forms := 0
	if e.IsInline() {
		forms++
	}
	if e.IsFileRef() {
		forms++
	}
	if e.IsGlob() {
		forms++
	}
	if forms == 0 {
		return errors.New("capture entry needs a url, file, or files field")
	}
	if forms > 1 {
		return errors.New("capture entry must have only one of url, file, or files")
	}
	if e.Regex && e.IsInline() {
		if _, err := regexp.Compile(e.URL); err != nil {
			return fmt.Errorf("invalid regex pattern %q: %w", e.URL, err)
		}
	}
	return nil
}

// captureFileContent is the possible contents of a capture file: a single
// entry or an array of entries.
type captureFileContent struct {
	Method string `yaml:"method,omitempty"`
	URL    string `yaml:"url,omitempty"`
	Regex  bool   `yaml:"regex,omitempty"`
	Note   string `yaml:"note,omitempty"`

	// Populated by custom unmarshaling when the file holds an array.
	Entries []captureFileContent `yaml:"-"`
}

// UnmarshalYAML handles both the single-entry and array-of-entries formats.
func (c *captureFileContent) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.SequenceNode {
		var entries []captureFileContent
		if err := node.Decode(&entries); err != nil {
			return err
		}
		c.Entries = entries
		return nil
	}

	type captureFileContentAlias captureFileContent
	alias := (*captureFileContentAlias)(c)
	return node.Decode(alias)
}

func (c *captureFileContent) toEntry() CaptureEntry {
	return CaptureEntry{
		Method: c.Method,
		URL:    c.URL,
		Regex:  c.Regex,
		Note:   c.Note,
	}
}

// LoadCaptureEntry expands one entry into its inline captures. Inline
// entries pass through unchanged; file references and globs are read and
// parsed relative to baseDir.
func LoadCaptureEntry(entry CaptureEntry, baseDir string) ([]CaptureEntry, error) {
	switch {
	case entry.IsInline():
		return []CaptureEntry{entry}, nil
	case entry.IsFileRef():
		return loadCapturesFromFile(entry.File, baseDir)
	case entry.IsGlob():
		return loadCapturesFromGlob(entry.Files, baseDir)
	default:
		return nil, errors.New("invalid capture entry: no url, file, or files specified")
	}
}

// LoadAllCaptures expands every entry, returning a flat slice of inline
// captures in declaration order. Glob matches are sorted so expansion is
// deterministic.
func LoadAllCaptures(entries []CaptureEntry, baseDir string) ([]CaptureEntry, error) {
	var result []CaptureEntry

	for i, entry := range entries {
		captures, err := LoadCaptureEntry(entry, baseDir)
		if err != nil {
			if entry.IsFileRef() {
				return nil, fmt.Errorf("captures[%d] (file: %s): %w", i, entry.File, err)
			}
			if entry.IsGlob() {
				return nil, fmt.Errorf("captures[%d] (files: %s): %w", i, entry.Files, err)
			}
			return nil, fmt.Errorf("captures[%d]: %w", i, err)
		}
		result = append(result, captures...)
	}

	return result, nil
}

func loadCapturesFromFile(filePath, baseDir string) ([]CaptureEntry, error) {
	resolvedPath := ResolvePath(baseDir, filePath)

	file, err := os.Open(resolvedPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", resolvedPath)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied: %s", resolvedPath)
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("file is empty: %s", resolvedPath)
	}

	expanded := ExpandEnvVars(string(data))

	var content captureFileContent
	if err := yaml.Unmarshal([]byte(expanded), &content); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if len(content.Entries) > 0 {
		entries := make([]CaptureEntry, 0, len(content.Entries))
		for i, c := range content.Entries {
			e := c.toEntry()
			if err := e.Validate(); err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", resolvedPath, i, err)
			}
			entries = append(entries, e)
		}
		return entries, nil
	}

	entry := content.toEntry()
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", resolvedPath, err)
	}
	return []CaptureEntry{entry}, nil
}

func loadCapturesFromGlob(pattern, baseDir string) ([]CaptureEntry, error) {
	resolvedPattern := ResolvePath(baseDir, pattern)

	matches, err := expandGlob(resolvedPattern)
	if err != nil {
		return nil, fmt.Errorf("expanding glob pattern: %w", err)
	}

	if len(matches) == 0 {
		return []CaptureEntry{}, nil
	}

	sort.Strings(matches)

	var result []CaptureEntry
	for _, match := range matches {
		relPath, _ := filepath.Rel(baseDir, match)
		if relPath == "" {
			relPath = match
		}

		captures, err := loadCapturesFromFile(match, "")
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", relPath, err)
		}
		result = append(result, captures...)
	}

	return result, nil
}

// expandGlob expands a glob pattern to matching file paths. Patterns with
// ** go through doublestar for recursive matching; simple patterns use
// filepath.Glob.
func expandGlob(pattern string) ([]string, error) {
	if strings.Contains(pattern, "**") {
		return doublestar.FilepathGlob(pattern)
	}
	return filepath.Glob(pattern)
}

// ResolvePath resolves targetPath against basePath unless it is already
// absolute. A leading ~/ expands to the user home directory.
func ResolvePath(basePath, targetPath string) string {
	if filepath.IsAbs(targetPath) {
		return targetPath
	}
	if strings.HasPrefix(targetPath, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, targetPath[2:])
		}
	}
	return filepath.Join(basePath, targetPath)
}

// BaseDir returns the directory used to resolve capture file references,
// typically the directory holding the project file.
func BaseDir(configPath string) string {
	if configPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			return cwd
		}
		return "."
	}
	return filepath.Dir(configPath)
}
