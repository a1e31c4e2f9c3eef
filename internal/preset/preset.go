// Package preset loads industry presets from YAML files named <id>.yaml.
package preset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-scout/internal/model"
)

var idRe = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Loader reads presets from a directory.
type Loader struct {
	dir string
}

// NewLoader creates a Loader rooted at dir.
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load returns the preset with the given id. An empty id or a missing file
// yields a nil preset and no error.
func (l *Loader) Load(id string) (*model.Preset, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return nil, nil
	}
	if !idRe.MatchString(id) {
		return nil, eris.Errorf("preset: invalid id %q", id)
	}

	path := filepath.Join(l.dir, id+".yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "preset: read %s", path)
	}
	return Parse(id, data)
}

// Parse decodes a preset document. The YAML has a top-level "preset" key;
// id and name default to fallbackID.
func Parse(fallbackID string, data []byte) (*model.Preset, error) {
	var wrapper struct {
		Preset model.Preset `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, eris.Wrapf(err, "preset: parse %s", fallbackID)
	}

	p := &wrapper.Preset
	if p.ID == "" {
		p.ID = fallbackID
	}
	if p.Name == "" {
		p.Name = fallbackID
	}
	if p.SenderCompany == "" {
		p.SenderCompany = model.DefaultSenderCompany
	}
	return p, nil
}

// List returns the ids of the presets in the directory, sorted.
func (l *Loader) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "preset: list %s", l.dir)
	}
	var ids []string
	for _, e := range entries {
		id, ok := strings.CutSuffix(e.Name(), ".yaml")
		if ok && !e.IsDir() && idRe.MatchString(id) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
