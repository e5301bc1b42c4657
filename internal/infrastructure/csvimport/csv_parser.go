package csvimport

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CSVParser reads a UTF-8 CSV file whose header row is mapped to canonical column names
type CSVParser struct {
	delimiter  rune
	aliases    map[string]string
	headers    []string
	raw        []string
	headerMap  map[string]int
	currentRow int
	totalRows  int
	reader     *csv.Reader
}

// ParserOption is a functional option for CSVParser configuration
type ParserOption func(*CSVParser)

// WithDelimiter sets the field delimiter (default is comma)
func WithDelimiter(d rune) ParserOption {
	return func(p *CSVParser) {
		p.delimiter = d
	}
}

// WithHeaderAliases maps accepted header spellings to canonical column names.
// Keys are compared after NormalizeHeader, so "Email Address" and "email_address" match "emailaddress".
func WithHeaderAliases(aliases map[string]string) ParserOption {
	return func(p *CSVParser) {
		for alias, canonical := range aliases {
			p.aliases[NormalizeHeader(alias)] = canonical
		}
	}
}

// NewCSVParser creates a new CSV parser from a reader
func NewCSVParser(r io.Reader, opts ...ParserOption) (*CSVParser, error) {
	p := &CSVParser{
		delimiter: ',',
		aliases:   make(map[string]string),
		headerMap: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}

	buf := bufio.NewReader(r)

	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if bom, err := buf.Peek(3); err == nil && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	head, err := buf.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(strings.TrimSpace(string(head))) == 0 {
		return nil, ErrEmptyFile
	}
	sample := head
	if len(head) == 4096 {
		sample = trimPartialRune(head)
	}
	if !utf8.Valid(sample) {
		return nil, ErrInvalidEncoding
	}

	p.reader = csv.NewReader(buf)
	p.reader.Comma = p.delimiter
	p.reader.LazyQuotes = true
	p.reader.TrimLeadingSpace = true
	p.reader.FieldsPerRecord = -1
	return p, nil
}

// trimPartialRune drops a rune cut in half by the peek window
func trimPartialRune(b []byte) []byte {
	for i := 0; i < utf8.UTFMax && len(b) > 0; i++ {
		if utf8.Valid(b) {
			return b
		}
		b = b[:len(b)-1]
	}
	return b
}

// NormalizeHeader lower-cases a header and strips spaces, underscores and hyphens
func NormalizeHeader(h string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if unicode.IsSpace(r) || r == '_' || r == '-' {
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// ParseHeader reads the header row and resolves each column to its canonical name.
// Columns without an alias keep their normalized header.
func (p *CSVParser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrMissingHeader
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	p.raw = make([]string, len(record))
	for i, h := range record {
		p.raw[i] = strings.TrimSpace(h)
		name := NormalizeHeader(h)
		if canonical, ok := p.aliases[name]; ok {
			name = canonical
		}
		p.headers[i] = name
		if _, dup := p.headerMap[name]; !dup && name != "" {
			p.headerMap[name] = i
		}
	}
	if len(p.headerMap) == 0 {
		return ErrMissingHeader
	}
	p.currentRow = 1
	return nil
}

// Headers returns the canonical column names in file order
func (p *CSVParser) Headers() []string {
	return p.headers
}

// HasHeader checks if a canonical column exists
func (p *CSVParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// ValidateHeaders returns the required canonical columns that are missing
func (p *CSVParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// Row is a parsed CSV data row
type Row struct {
	LineNumber int
	Data       map[string]string
	// Extra holds columns with no canonical name, keyed by their original header
	Extra map[string]string
}

// Get returns the value of a canonical column
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// IsEmpty returns true if the row has no non-empty values
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	for _, v := range r.Extra {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next row; known lists canonical columns, everything else lands in Extra
func (p *CSVParser) ReadRow(known map[string]bool) (*Row, error) {
	record, err := p.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	p.currentRow++
	if err != nil {
		return nil, fmt.Errorf("error reading row %d: %w", p.currentRow, err)
	}
	p.totalRows++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
		Extra:      make(map[string]string),
	}
	for i, name := range p.headers {
		value := ""
		if i < len(record) {
			value = strings.TrimSpace(record[i])
		}
		if known == nil || known[name] {
			if _, set := row.Data[name]; !set || row.Data[name] == "" {
				row.Data[name] = value
			}
			continue
		}
		if value != "" {
			row.Extra[p.raw[i]] = value
		}
	}
	return row, nil
}

// ReadAllRows reads the remaining rows, skipping blank lines
func (p *CSVParser) ReadAllRows(known map[string]bool) ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow(known)
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		if row.IsEmpty() {
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// TotalRows returns the number of data rows read, blank ones included
func (p *CSVParser) TotalRows() int {
	return p.totalRows
}
