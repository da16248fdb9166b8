// Package prefs remembers the catalog browser's theme and last quick-search
// between runs, in ~/.config/cip/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"

	"github.com/NationalMuseumofDenmark/cip-go/internal/config"
)

// Prefs holds user preferences for the catalog browser.
type Prefs struct {
	Theme     string `toml:"theme"`
	LastQuery string `toml:"last_query"`
}

const (
	defaultPrefsPath = "~/.config/cip/prefs.toml"
	defaultTheme     = "Nightfox"

	// maxQueryLength matches the search box limit.
	maxQueryLength = 256
)

var prefsLog = logrus.WithField("source", "prefs")

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. Preferences are a convenience: a missing,
// unreadable or malformed file yields defaults and a nil error.
func Load(path string) (Prefs, error) {
	p := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		prefsLog.WithError(err).Debug("prefs path")
		return p, nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		if !os.IsNotExist(err) {
			prefsLog.WithError(err).WithField("path", resolved).Debug("read prefs")
		}
		return p, nil
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		prefsLog.WithError(err).WithField("path", resolved).Debug("parse prefs")
		return Prefs{Theme: defaultTheme}, nil
	}
	return p.clean(), nil
}

// Save writes preferences to path, creating directories as needed. The file
// is replaced atomically so a crash never leaves it half written.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	data, err := toml.Marshal(p.clean())
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".prefs-*.toml")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp.Name(), resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// clean trims both fields, collapses whitespace in the query and caps its
// length. An empty theme becomes the default.
func (p Prefs) clean() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	q := []rune(strings.Join(strings.Fields(p.LastQuery), " "))
	if len(q) > maxQueryLength {
		q = q[:maxQueryLength]
	}
	p.LastQuery = strings.TrimSpace(string(q))
	return p
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	return config.ExpandPath(path)
}
