// Package importer reads bank statement exports into statement lines that
// can be posted to the ledger.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// StatementLine is one row of a bank statement. Amount is in major units
// of the account's currency; negative amounts left the account.
type StatementLine struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
	Reference   string
	Type        string
}

// Parser converts a bank CSV file into statement lines.
type Parser interface {
	Parse(r io.Reader) ([]StatementLine, error)
	Format() string
}

// noColumn marks a field a layout does not carry.
const noColumn = -1

// layout locates statement fields in the rows of a CSV export whose first
// row is a header.
type layout struct {
	name       string
	dateFormat string
	minFields  int
	maxFields  int
	date       int
	desc       int
	amount     int
	ref        int
	kind       int
}

func (l layout) read(r io.Reader) ([]StatementLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s CSV: %w", l.name, err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var lines []StatementLine
	for i, rec := range records[1:] {
		line, err := l.line(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (l layout) line(rec []string) (StatementLine, error) {
	if len(rec) < l.minFields || len(rec) > l.maxFields {
		if l.minFields == l.maxFields {
			return StatementLine{}, fmt.Errorf("want %d fields, got %d", l.minFields, len(rec))
		}
		return StatementLine{}, fmt.Errorf("want %d or %d fields, got %d", l.minFields, l.maxFields, len(rec))
	}

	date, err := time.Parse(l.dateFormat, strings.TrimSpace(rec[l.date]))
	if err != nil {
		return StatementLine{}, fmt.Errorf("parsing date %q: %w", rec[l.date], err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(rec[l.amount]))
	if err != nil {
		return StatementLine{}, fmt.Errorf("parsing amount %q: %w", rec[l.amount], err)
	}

	line := StatementLine{
		Date:        date,
		Description: strings.TrimSpace(rec[l.desc]),
		Amount:      amount,
	}
	if l.ref != noColumn && l.ref < len(rec) {
		line.Reference = strings.TrimSpace(rec[l.ref])
	}
	if l.kind != noColumn {
		line.Type = rec[l.kind]
	}
	return line, nil
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file waiting in the import inbox.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Formats lists the registered format names.
func (r *Registry) Formats() []string {
	names := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&ChaseParser{})
	r.Register(&NativeParser{})
	return r
}

// importDir is the inbox subdirectory of the data directory.
const importDir = "import"

// processedDir receives statements once they have been posted.
const processedDir = "import/processed"

// Scan returns CSV files in <dataDir>/import/.
func Scan(dataDir string) ([]FileInfo, error) {
	dir := filepath.Join(dataDir, importDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(dataDir, fileName string) error {
	src := filepath.Join(dataDir, importDir, fileName)
	dstDir := filepath.Join(dataDir, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
