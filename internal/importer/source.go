package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/encoding/charmap"
)

// ErrImportFormat reports a roster file that cannot be read as a table.
var ErrImportFormat = errors.New("importer: unsupported or malformed roster file")

// Encoding names accepted in ReadOptions.Encodings.
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingISO88591    = "iso-8859-1"
)

var candidateDelimiters = []rune{';', ',', '\t', '|'}

const sniffLines = 10

// ReadOptions tunes decoding of delimited text files.
type ReadOptions struct {
	// Encodings are tried in order until one decodes the file.
	Encodings []string
	// DefaultDelimiter is used when sniffing is inconclusive.
	DefaultDelimiter rune
}

// DefaultReadOptions returns the stock encoding order and ';' delimiter.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{
		Encodings:        []string{EncodingUTF8, EncodingWindows1252, EncodingISO88591},
		DefaultDelimiter: ';',
	}
}

// Row is one data line of a roster keyed by normalized column name.
type Row struct {
	// Line is the 1-based line of the row in the source file, or its sheet
	// row number for workbooks.
	Line   int
	values map[string]string
}

// Get returns the trimmed cell for key, or "" when absent.
func (r Row) Get(key string) string {
	return r.values[key]
}

// Table is a decoded roster.
type Table struct {
	Source  string
	Digest  string
	Columns []string
	Rows    []Row

	present map[string]bool
}

// Has reports whether the header contained column key.
func (t Table) Has(key string) bool {
	return t.present[key]
}

// NewTable assembles a table from a header on line 1 followed directly by
// records. Blank rows are dropped.
func NewTable(source string, header []string, records [][]string) (Table, error) {
	return newTable(source, header, records, nil)
}

// newTable is NewTable with the file line of each record. A nil lines
// numbers records from line 2.
func newTable(source string, header []string, records [][]string, lines []int) (Table, error) {
	table := Table{Source: source, present: make(map[string]bool, len(header))}
	for _, cell := range header {
		key := NormalizeKey(cell)
		table.Columns = append(table.Columns, key)
		if key != "" {
			table.present[key] = true
		}
	}

	var missing []string
	for _, key := range RequiredColumns {
		if !table.present[key] {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Table{}, fmt.Errorf("%w: missing columns %s", ErrImportFormat, strings.Join(missing, ", "))
	}

	for i, record := range records {
		values := make(map[string]string, len(table.Columns))
		blank := true
		for col, key := range table.Columns {
			if key == "" || col >= len(record) {
				continue
			}
			if _, seen := values[key]; seen {
				continue
			}
			value := strings.TrimSpace(record[col])
			values[key] = value
			if value != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		line := i + 2
		if i < len(lines) {
			line = lines[i]
		}
		table.Rows = append(table.Rows, Row{Line: line, values: values})
	}
	return table, nil
}

// ReadFile decodes the roster at path, choosing the reader by extension.
func ReadFile(ctx context.Context, path string, opts ReadOptions) (Table, error) {
	if err := ctx.Err(); err != nil {
		return Table{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read roster: %w", err)
	}

	var (
		rows  [][]string
		lines []int
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		rows, lines, err = readCSV(data, opts)
	case ".xlsx":
		rows, err = readXLSX(data)
	case ".xls":
		rows, err = readXLS(data)
	default:
		return Table{}, fmt.Errorf("%w: extension %q", ErrImportFormat, ext)
	}
	if err != nil {
		return Table{}, err
	}
	if lines == nil {
		lines = sheetLines(len(rows))
	}

	first := headerIndex(rows)
	if first < 0 {
		return Table{}, fmt.Errorf("%w: file has no header row", ErrImportFormat)
	}
	table, err := newTable(path, rows[first], rows[first+1:], lines[first+1:])
	if err != nil {
		return Table{}, err
	}
	sum := blake2b.Sum256(data)
	table.Digest = hex.EncodeToString(sum[:])
	return table, nil
}

// readCSV returns the records with the file line each one starts on.
// The csv reader skips empty lines, so positions come from FieldPos.
func readCSV(data []byte, opts ReadOptions) ([][]string, []int, error) {
	text, err := decodeText(data, opts.Encodings)
	if err != nil {
		return nil, nil, err
	}

	delimiter := opts.DefaultDelimiter
	if delimiter == 0 {
		delimiter = ';'
	}
	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text, delimiter)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		rows  [][]string
		lines []int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, record)
		lines = append(lines, line)
	}
	return rows, lines, nil
}

// decodeText tries each encoding in order. UTF-8 succeeds only on valid
// input and has its byte order mark stripped. A single-byte decoding is
// rejected when it yields replacement characters.
func decodeText(data []byte, encodings []string) (string, error) {
	if len(encodings) == 0 {
		encodings = DefaultReadOptions().Encodings
	}
	for _, name := range encodings {
		switch strings.ToLower(name) {
		case EncodingUTF8:
			if utf8.Valid(data) {
				return string(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))), nil
			}
		case EncodingWindows1252:
			if text, ok := decodeCharmap(charmap.Windows1252, data); ok {
				return text, nil
			}
		case EncodingISO88591:
			if text, ok := decodeCharmap(charmap.ISO8859_1, data); ok {
				return text, nil
			}
		default:
			return "", fmt.Errorf("%w: unknown encoding %q", ErrImportFormat, name)
		}
	}
	return "", fmt.Errorf("%w: no configured encoding could decode the file", ErrImportFormat)
}

func decodeCharmap(cm *charmap.Charmap, data []byte) (string, bool) {
	decoded, err := cm.NewDecoder().Bytes(data)
	if err != nil || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", false
	}
	return string(decoded), true
}

// sniffDelimiter picks the candidate occurring the same non-zero number of
// times on every sampled line, preferring the highest count. Quoted text is
// ignored. fallback is returned when no candidate is consistent.
func sniffDelimiter(text string, fallback rune) rune {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == sniffLines {
			break
		}
	}
	if len(lines) == 0 {
		return fallback
	}

	best, bestCount := fallback, 0
	for _, candidate := range candidateDelimiters {
		count := countUnquoted(lines[0], candidate)
		if count == 0 {
			continue
		}
		consistent := true
		for _, line := range lines[1:] {
			if countUnquoted(line, candidate) != count {
				consistent = false
				break
			}
		}
		if consistent && count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}

func countUnquoted(line string, r rune) int {
	count := 0
	quoted := false
	for _, c := range line {
		switch {
		case c == '"':
			quoted = !quoted
		case c == r && !quoted:
			count++
		}
	}
	return count
}

// readXLSX returns the first sheet indexed by row number, so rows[i] is
// sheet row i+1.
func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrImportFormat)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	raw, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}

	if first := headerIndex(rows); first >= 0 && first < len(raw) {
		convertDateSerials(rows[first], rows[first+1:], raw[first+1:])
	}
	return rows, nil
}

// convertDateSerials rewrites date cells stored as spreadsheet serial numbers
// into ISO dates, since the formatted value depends on the cell style.
func convertDateSerials(header []string, records, raw [][]string) {
	for col, cell := range header {
		if !dateColumns[NormalizeKey(cell)] {
			continue
		}
		for i := range records {
			if i >= len(raw) || col >= len(raw[i]) || col >= len(records[i]) {
				continue
			}
			serial, err := strconv.ParseFloat(strings.TrimSpace(raw[i][col]), 64)
			if err != nil {
				continue
			}
			when, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				continue
			}
			records[i][col] = when.Format("2006-01-02")
		}
	}
}

// readXLS returns the first sheet with rows[i] holding sheet row i+1.
func readXLS(data []byte) (rows [][]string, err error) {
	// The legacy reader panics on some malformed files.
	defer func() {
		if p := recover(); p != nil {
			rows = nil
			err = fmt.Errorf("%w: %v", ErrImportFormat, p)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportFormat, err)
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrImportFormat)
	}

	rows = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := xlsRow(sheet, i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for col := row.FirstCol(); col < row.LastCol(); col++ {
			cells[col] = row.Col(col)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// xlsRow returns nil for a row absent from the sheet, which the reader
// itself dereferences and panics on. Blank rows are usually absent.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// sheetLines numbers n workbook rows from 1.
func sheetLines(n int) []int {
	lines := make([]int, n)
	for i := range lines {
		lines[i] = i + 1
	}
	return lines
}

// headerIndex is the index of the first non-blank row, or -1.
func headerIndex(rows [][]string) int {
	for i, row := range rows {
		if !isBlank(row) {
			return i
		}
	}
	return -1
}

func isBlank(cells []string) bool {
	for _, cell := range cells {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
