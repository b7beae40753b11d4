package refdata

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/ug-admin-search/internal/logger"
)

// DirProvider loads one file per level from a directory. For each level it
// looks for <name>.json then <name>.csv, where name is districts, counties,
// subcounties, parishes or villages. A level with no file is left empty.
type DirProvider struct {
	Dir string
}

// NewDirProvider creates a provider reading from dir.
func NewDirProvider(dir string) *DirProvider {
	return &DirProvider{Dir: dir}
}

// Load reads every level file from the directory.
func (p *DirProvider) Load(ctx context.Context) (*Dataset, error) {
	if _, err := os.Stat(p.Dir); err != nil {
		return nil, fmt.Errorf("data directory %s: %w", p.Dir, err)
	}
	return LoadFS(ctx, os.DirFS(p.Dir), p.Dir)
}

// LoadFS reads level files from fsys. source is only used in log lines and errors.
func LoadFS(ctx context.Context, fsys fs.FS, source string) (*Dataset, error) {
	ds := NewDataset()
	found := 0
	for _, level := range Levels() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, name, err := readLevel(fsys, level.FileBase())
		if errors.Is(err, fs.ErrNotExist) {
			logger.L().Debug("refdata_level_missing", "source", source, "level", level.String())
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path.Join(source, name), err)
		}
		found++
		rows, issues := Sanitize(level, rows)
		logIssues(logger.L(), path.Join(source, name), issues)
		ds.AddRows(level, rows)
	}
	if found == 0 {
		return nil, fmt.Errorf("no level files found in %s", source)
	}
	logger.L().Info("refdata_loaded", "source", source, "units", ds.Len())
	return ds, nil
}

func readLevel(fsys fs.FS, base string) ([]Row, string, error) {
	name := base + ".json"
	f, err := fsys.Open(name)
	if err == nil {
		defer f.Close()
		rows, err := DecodeJSON(f)
		return rows, name, err
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, name, err
	}

	name = base + ".csv"
	f, err = fsys.Open(name)
	if err != nil {
		return nil, name, err
	}
	defer f.Close()
	rows, err := DecodeCSV(f)
	return rows, name, err
}

// DecodeJSON reads an array of {"id","name","parent_id"} objects.
func DecodeJSON(r io.Reader) ([]Row, error) {
	var rows []Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return rows, nil
}

// DecodeCSV reads rows from CSV with a header line. Columns are located by
// header name (id, name, parent_id); extra columns are ignored.
func DecodeCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	col := map[string]int{"id": -1, "name": -1, "parent_id": -1}
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := col[h]; ok {
			col[h] = i
		}
	}
	if col["id"] < 0 || col["name"] < 0 {
		return nil, fmt.Errorf("csv header must contain id and name, got %v", header)
	}

	field := func(rec []string, key string) string {
		i := col[key]
		if i < 0 || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv record: %w", err)
		}
		rows = append(rows, Row{
			ID:       field(rec, "id"),
			Name:     field(rec, "name"),
			ParentID: field(rec, "parent_id"),
		})
	}
	return rows, nil
}
