package datasource

import (
	"fmt"
	"os"

	"github.com/vanderheijden86/casedash/pkg/dataset"
	"github.com/vanderheijden86/casedash/pkg/debug"
	"github.com/vanderheijden86/casedash/pkg/loader"
	"github.com/vanderheijden86/casedash/pkg/model"
	"github.com/vanderheijden86/casedash/pkg/palette"
)

// Options configures Load.
type Options struct {
	Parse   loader.ParseOptions
	Table   string // SQLite table, defaults to DefaultTable
	Palette palette.Palette
}

// LoadRecords reads and normalises the records at path.
func LoadRecords(path string, opts Options) ([]model.CaseRecord, error) {
	source, err := Detect(path)
	if err != nil {
		return nil, err
	}
	debug.Log("datasource: loading %s", source)
	return LoadFromSource(source, opts)
}

// LoadFromSource reads records from an already detected source.
func LoadFromSource(source DataSource, opts Options) ([]model.CaseRecord, error) {
	if opts.Parse.Source == "" {
		opts.Parse.Source = source.Path
	}

	var (
		rows []loader.RawRow
		err  error
	)
	switch source.Type {
	case SourceTypeSQLite:
		reader, rerr := NewSQLiteReader(source, opts.Table)
		if rerr != nil {
			return nil, rerr
		}
		defer reader.Close()
		rows, err = reader.ReadRows()
	case SourceTypeJSONL, SourceTypeCSV:
		f, ferr := os.Open(source.Path)
		if ferr != nil {
			return nil, &model.DataLoadError{Source: source.Path, Err: ferr}
		}
		defer f.Close()
		if source.Type == SourceTypeJSONL {
			rows, err = loader.ParseJSONL(f, opts.Parse)
		} else {
			rows, err = loader.ParseCSV(f, opts.Parse)
		}
	default:
		return nil, fmt.Errorf("unknown source type: %s", source.Type)
	}
	if err != nil {
		return nil, err
	}
	return loader.Normalize(rows, opts.Parse)
}

// Load reads path and builds the immutable dataset store.
func Load(path string, opts Options) (*dataset.Store, error) {
	recs, err := LoadRecords(path, opts)
	if err != nil {
		return nil, err
	}
	store := dataset.New(recs, opts.Palette)
	debug.Log("datasource: %d records across %d states", store.Len(), len(store.States()))
	return store, nil
}
