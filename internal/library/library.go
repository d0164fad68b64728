// Package library keeps the set of constellations served by the site,
// backed by a directory of .constellate files.
package library

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"

	"github.com/dgallion1/constellate/internal/constellation"
	"github.com/dgallion1/constellate/internal/outline"
	"golang.org/x/sync/errgroup"
)

var (
	ErrNotFound    = errors.New("constellation not found")
	ErrInvalidSlug = errors.New("invalid slug")
)

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// maxParallelLoads bounds concurrent file decodes.
const maxParallelLoads = 8

type entry struct {
	doc  *constellation.Constellation
	hash string
}

// Library is a slug-indexed snapshot of a constellation directory.
type Library struct {
	dir string
	log *slog.Logger

	// Strict keeps the previous snapshot when any file fails to load.
	Strict bool

	mu   sync.RWMutex
	docs map[string]entry
}

func New(dir string, log *slog.Logger) *Library {
	return &Library{
		dir:  dir,
		log:  log,
		docs: make(map[string]entry),
	}
}

// Dir returns the backing directory.
func (l *Library) Dir() string { return l.dir }

// ContentHash is the hex SHA-256 of an encoded document.
func ContentHash(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// Load reads every document in the directory and swaps in a new snapshot.
// Files that fail to load are logged and left out; their errors are
// returned joined. In Strict mode any failure leaves the snapshot untouched.
func (l *Library) Load(ctx context.Context) error {
	paths, err := filepath.Glob(filepath.Join(l.dir, "*"+constellation.Ext))
	if err != nil {
		return fmt.Errorf("list %s: %w", l.dir, err)
	}

	entries := make([]entry, len(paths))
	errs := make([]error, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e, err := loadEntry(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			entries[i] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// Two files can map to one slug ("a.constellate", "a.v2.constellate");
	// neither wins.
	bySlug := make(map[string][]int, len(paths))
	for i, e := range entries {
		if errs[i] == nil {
			bySlug[e.doc.Slug] = append(bySlug[e.doc.Slug], i)
		}
	}
	for slug, idx := range bySlug {
		if len(idx) < 2 {
			continue
		}
		for _, i := range idx {
			errs[i] = fmt.Errorf("load %s: %w", filepath.Base(paths[i]),
				constellation.Malformed(slug, -1, "slug is shared by %d files", len(idx)))
		}
	}

	loadErr := errors.Join(errs...)
	if loadErr != nil && l.Strict {
		return loadErr
	}

	docs := make(map[string]entry, len(paths))
	for i, e := range entries {
		if errs[i] != nil {
			l.log.Warn("skipping constellation", "path", paths[i], "error", errs[i])
			continue
		}
		docs[e.doc.Slug] = e
	}

	l.mu.Lock()
	l.docs = docs
	l.mu.Unlock()

	l.log.Info("library loaded", "dir", l.dir, "documents", len(docs), "skipped", len(paths)-len(docs))
	return loadErr
}

func loadEntry(path string) (entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return entry{}, err
	}
	c, err := constellation.DecodePath(bytes.NewReader(data), path)
	if err != nil {
		return entry{}, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	if !slugPattern.MatchString(c.Slug) {
		return entry{}, fmt.Errorf("load %s: %w", filepath.Base(path),
			constellation.Malformed(c.Slug, -1, "slug is not usable in a URL"))
	}
	if _, err := outline.Build(c, -1); err != nil {
		return entry{}, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return entry{doc: c, hash: ContentHash(data)}, nil
}

// Get returns the document with the given slug.
func (l *Library) Get(slug string) (*constellation.Constellation, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.docs[slug]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	return e.doc, nil
}

// Hash returns the content hash of the stored document with slug.
func (l *Library) Hash(slug string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	e, ok := l.docs[slug]
	return e.hash, ok
}

// List returns all documents sorted by title, then slug.
func (l *Library) List() []*constellation.Constellation {
	l.mu.RLock()
	docs := make([]*constellation.Constellation, 0, len(l.docs))
	for _, e := range l.docs {
		docs = append(docs, e.doc)
	}
	l.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Title != docs[j].Title {
			return docs[i].Title < docs[j].Title
		}
		return docs[i].Slug < docs[j].Slug
	})
	return docs
}

// Len returns the number of documents.
func (l *Library) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs)
}

// Put validates c, writes it to <slug>.constellate atomically and indexes
// it. It returns the content hash of the written file.
func (l *Library) Put(c *constellation.Constellation) (string, error) {
	if !slugPattern.MatchString(c.Slug) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, c.Slug)
	}
	if err := c.Validate(); err != nil {
		return "", err
	}
	if _, err := outline.Build(c, -1); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return "", fmt.Errorf("encode %s: %w", c.Slug, err)
	}
	hash := ContentHash(buf.Bytes())

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", err
	}
	if err := writeFileAtomic(filepath.Join(l.dir, c.Slug+constellation.Ext), buf.Bytes()); err != nil {
		return "", err
	}

	l.mu.Lock()
	l.docs[c.Slug] = entry{doc: c, hash: hash}
	l.mu.Unlock()
	return hash, nil
}

// Delete removes the document with slug from disk and the index.
func (l *Library) Delete(slug string) error {
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.docs[slug]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, slug)
	}
	if err := os.Remove(filepath.Join(l.dir, slug+constellation.Ext)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	delete(l.docs, slug)
	return nil
}

// writeFileAtomic writes through a temp file in the same directory so
// readers never see a partial document. The temp name lacks the document
// extension, so the watcher ignores it.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
