package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/seenimoa/newspulse/pkg/models"
	"github.com/seenimoa/newspulse/pkg/utils"
)

// FileStore keeps one JSON file per company under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the file a company's report lives in.
func (s *FileStore) Path(company string) string {
	return filepath.Join(s.dir, utils.Slug(company)+".json")
}

// Save writes the report through a temp file and rename, so readers never
// see a partial report.
func (s *FileStore) Save(_ context.Context, r *models.Report) error {
	data, err := encode(r)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".report-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path(r.Company)); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

// Load reads the report for company.
func (s *FileStore) Load(_ context.Context, company string) (*models.Report, error) {
	data, err := os.ReadFile(s.Path(company))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return decode(data)
}

// List returns company names from every report file, ordered by slug.
func (s *FileStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	var slugs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		slugs = append(slugs, name)
	}
	sort.Strings(slugs)

	companies := make([]string, 0, len(slugs))
	for _, name := range slugs {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		r, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		companies = append(companies, r.Company)
	}
	return companies, nil
}

// Close is a no-op.
func (s *FileStore) Close() error { return nil }
