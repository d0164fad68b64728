package constellation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Ext is the file extension of stored constellations.
const Ext = ".constellate"

// SlugFromPath derives the URL slug from a file name: the base name up to the
// first dot, so "mcmc.constellate" and "mcmc.v2.constellate" are both "mcmc".
func SlugFromPath(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	return base
}

// LoadFile reads and validates a constellation from disk.
func LoadFile(path string) (*Constellation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	c, err := DecodePath(f, path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return c, nil
}

// DecodePath decodes the document stored at path. The slug always comes
// from the file name, never from the document, so a name without one
// (".hidden.constellate") is malformed.
func DecodePath(r io.Reader, path string) (*Constellation, error) {
	slug := SlugFromPath(path)
	if slug == "" {
		return nil, Malformed(filepath.Base(path), -1, "file name yields an empty slug")
	}
	return Decode(r, slug)
}

// Decode parses a constellation. The given slug overrides the one stored in
// the document; missing star ids are filled deterministically.
func Decode(r io.Reader, slug string) (*Constellation, error) {
	var c Constellation
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode constellation: %w", err)
	}
	if slug != "" {
		c.Slug = slug
	}
	if c.StarTitles == nil {
		c.StarTitles = make([]string, len(c.Stars))
	}
	for i := range c.Stars {
		if c.Stars[i].ID == "" {
			c.Stars[i].ID = fmt.Sprintf("%s-%d", c.Slug, i)
		}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Encode writes the constellation in the on-disk format.
func (c *Constellation) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// Validate checks the structural invariants the outline builder relies on.
// Whether every breadcrumb parent actually owns an outline node is checked
// when the outline is built.
func (c *Constellation) Validate() error {
	n := len(c.Stars)
	if n == 0 {
		return Malformed(c.Slug, -1, "document has no pages")
	}
	if len(c.Breadcrumbs) != n {
		return Malformed(c.Slug, -1, "%d breadcrumb trails for %d pages", len(c.Breadcrumbs), n)
	}
	if len(c.StarTitles) != n {
		return Malformed(c.Slug, -1, "%d titles for %d pages", len(c.StarTitles), n)
	}

	seen := make(map[string]int, n)
	for i, s := range c.Stars {
		if !knownKinds[s.Kind] {
			return Malformed(c.Slug, i, "unknown star kind %q", s.Kind)
		}
		if prev, dup := seen[s.ID]; dup {
			return Malformed(c.Slug, i, "star id %q already used by page %d", s.ID, prev)
		}
		seen[s.ID] = i

		for _, ancestor := range c.Breadcrumbs[i] {
			if ancestor < 0 || ancestor >= n {
				return Malformed(c.Slug, i, "breadcrumb references page %d outside [0, %d)", ancestor, n)
			}
			if ancestor >= i {
				return Malformed(c.Slug, i, "breadcrumb references later page %d", ancestor)
			}
		}
	}
	return nil
}
