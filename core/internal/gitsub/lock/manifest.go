// Package lock reads and writes the lock manifest that remembers the last
// validated position of every child repository.
package lock

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/diag"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/discover"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/gitsub/model"
	"github.com/kuchuk-borom-debbarma/GitSub/core/internal/util/file"
	"github.com/rs/zerolog/log"
)

const childrenKey = "children"

// RemoteEntry is a remote as stored in the manifest.
type RemoteEntry struct {
	Name string `toml:"name"`
	URL  string `toml:"url"`
}

// Entry is the stored snapshot of one child.
type Entry struct {
	RootRelative string        `toml:"root_relative"`
	Branch       string        `toml:"branch"`
	Commit       string        `toml:"commit"`
	Remotes      []RemoteEntry `toml:"remotes"`
}

// EntryFor snapshots a child record.
func EntryFor(c model.Child) Entry {
	e := Entry{
		RootRelative: c.RelPath,
		Branch:       c.Branch,
		Commit:       c.Commit,
	}
	for _, r := range c.Remotes {
		e.Remotes = append(e.Remotes, RemoteEntry{Name: r.Name, URL: r.URL})
	}
	return e
}

// Manifest is the in-memory form of <parent-root>/.gitsub.
// It is not safe for concurrent use; only the orchestrating goroutine
// touches it, after every validation phase has finished.
type Manifest struct {
	parentRoot string
	entries    []Entry
	// extra holds top-level keys this version does not know about so they
	// survive a load/save round trip.
	extra map[string]any
}

// Path returns the manifest location for a parent root.
func Path(parentRoot string) string {
	return filepath.Join(parentRoot, model.ManifestFileName)
}

// Exists reports whether parentRoot carries a manifest file.
func Exists(parentRoot string) bool {
	return file.IsFile(Path(parentRoot))
}

// Create returns an empty manifest for parentRoot. Nothing is written
// until Save. It fails if a manifest already exists.
func Create(parentRoot string) (*Manifest, error) {
	if file.Exists(Path(parentRoot)) {
		return nil, fmt.Errorf("%w: %s", diag.ErrManifestExists, Path(parentRoot))
	}
	return &Manifest{parentRoot: parentRoot, extra: map[string]any{}}, nil
}

// Load reads the manifest of parentRoot. A document without a children
// list loads as an empty manifest.
func Load(parentRoot string) (*Manifest, error) {
	path := Path(parentRoot)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", diag.ErrManifestUnreadable, path, err)
	}

	var doc struct {
		Children []Entry `toml:"children"`
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", diag.ErrManifestUnreadable, path, err)
	}

	extra := map[string]any{}
	if _, err := toml.Decode(string(data), &extra); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", diag.ErrManifestUnreadable, path, err)
	}
	delete(extra, childrenKey)

	log.Debug().Str("path", path).Int("children", len(doc.Children)).Msg("loaded lock manifest")
	return &Manifest{parentRoot: parentRoot, entries: doc.Children, extra: extra}, nil
}

// Entries returns a copy of the stored entries in document order.
func (m *Manifest) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Lookup returns the first entry stored for relPath.
func (m *Manifest) Lookup(relPath string) (Entry, bool) {
	relPath = normalize(relPath)
	for _, e := range m.entries {
		if normalize(e.RootRelative) == relPath {
			return e, true
		}
	}
	return Entry{}, false
}

// Upsert stores a snapshot of c, replacing the entry with the same
// relative path. Duplicate entries for that path are collapsed into the
// first one. Upserting the same record twice leaves the same state.
func (m *Manifest) Upsert(c model.Child) {
	entry := EntryFor(c)
	key := normalize(entry.RootRelative)
	entry.RootRelative = key

	var matches []int
	for i, e := range m.entries {
		if normalize(e.RootRelative) == key {
			matches = append(matches, i)
		}
	}

	switch len(matches) {
	case 0:
		m.entries = append(m.entries, entry)
		return
	case 1:
		m.entries[matches[0]] = entry
		return
	}

	log.Warn().
		Err(diag.ErrManifestDuplicateEntry).
		Str("child", key).
		Int("entries", len(matches)).
		Msg("collapsing duplicate manifest entries")

	// Rebuild once: keep the first match (overwritten), drop the others.
	rebuilt := make([]Entry, 0, len(m.entries)-len(matches)+1)
	for i, e := range m.entries {
		if i == matches[0] {
			rebuilt = append(rebuilt, entry)
			continue
		}
		if normalize(e.RootRelative) == key {
			continue
		}
		rebuilt = append(rebuilt, e)
	}
	m.entries = rebuilt
}

// Encode renders the manifest document.
func (m *Manifest) Encode() ([]byte, error) {
	doc := make(map[string]any, len(m.extra)+1)
	for k, v := range m.extra {
		doc[k] = v
	}
	entries := m.entries
	if entries == nil {
		entries = []Entry{}
	}
	doc[childrenKey] = entries

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode lock manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// Save replaces the manifest file atomically.
func (m *Manifest) Save() error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if err := file.WriteFileAtomic(Path(m.parentRoot), data, 0644); err != nil {
		return fmt.Errorf("failed to write lock manifest: %w", err)
	}
	log.Debug().Str("path", Path(m.parentRoot)).Int("children", len(m.entries)).Msg("saved lock manifest")
	return nil
}

// Children converts the stored entries into child records, deriving the
// cache location of every remote below cacheBase. For duplicated paths
// only the first entry is returned.
func (m *Manifest) Children(cacheBase string) ([]model.Child, error) {
	seen := make(map[string]bool, len(m.entries))
	var out []model.Child
	var errs []error
	for _, e := range m.entries {
		rel := normalize(e.RootRelative)
		if rel == "" || rel == "." {
			errs = append(errs, fmt.Errorf("%w: entry without root_relative", diag.ErrManifestUnreadable))
			continue
		}
		if seen[rel] {
			continue
		}
		seen[rel] = true

		c := model.Child{
			RelPath: rel,
			AbsPath: filepath.Join(m.parentRoot, filepath.FromSlash(rel)),
			Branch:  e.Branch,
			Commit:  e.Commit,
		}
		for _, r := range e.Remotes {
			remote, err := discover.NewRemote(r.Name, r.URL, cacheBase)
			if err != nil {
				errs = append(errs, fmt.Errorf("child %s: %w", rel, err))
				continue
			}
			c.Remotes = append(c.Remotes, remote)
		}
		out = append(out, c)
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return out, nil
}

func normalize(rel string) string {
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(rel)))
}
