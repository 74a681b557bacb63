// Package decoder turns uploaded CSV and XLSX payloads into ordered headers
// plus raw key/value rows. It is the external-collaborator boundary: the
// reconciliation core makes no assumption about file formats and consumes
// only the decoded rows this package produces.
package decoder

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned when an uploaded file is not supported.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// Table is the decoded form of one spreadsheet: standardized headers in
// source order and one key/value map per data row, keyed by those headers.
type Table struct {
	Headers    []string
	RawHeaders []string
	Rows       []map[string]string
}

// Decode reads the payload and dispatches on the file extension.
func Decode(fileName string, r io.Reader) (Table, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return Table{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(payload) == 0 {
		return Table{}, errors.New("file is empty")
	}

	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".csv":
		return decodeCSV(payload)
	case ".xlsx":
		return decodeExcel(payload)
	default:
		return Table{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func decodeCSV(payload []byte) (Table, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return Table{}, fmt.Errorf("failed to read csv: %w", err)
	}

	return buildTable(records)
}

func decodeExcel(payload []byte) (Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return Table{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, errors.New("excel file has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}

	return buildTable(records)
}

func buildTable(records [][]string) (Table, error) {
	var headerRow []string
	var dataRows [][]string

	for _, row := range records {
		if isBlank(row) {
			continue
		}
		if headerRow == nil {
			headerRow = row
			continue
		}
		dataRows = append(dataRows, row)
	}

	if headerRow == nil {
		return Table{}, errors.New("no header row detected")
	}

	headers := standardizeHeaders(headerRow)
	rawHeaders := make([]string, len(headerRow))
	for i, value := range headerRow {
		rawHeaders[i] = strings.TrimSpace(value)
	}

	rows := make([]map[string]string, 0, len(dataRows))
	for _, row := range dataRows {
		mapped := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(row) {
				mapped[header] = strings.TrimSpace(row[i])
			} else {
				mapped[header] = ""
			}
		}
		rows = append(rows, mapped)
	}

	return Table{Headers: headers, RawHeaders: rawHeaders, Rows: rows}, nil
}

// standardizeHeaders trims each header, collapses runs of whitespace, names
// blank columns, and dedupes repeats with a numeric suffix.
func standardizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	seen := make(map[string]int)

	for idx, value := range raw {
		name := strings.Join(strings.Fields(value), " ")
		if name == "" {
			name = fmt.Sprintf("column_%d", idx+1)
		}

		base := name
		count := seen[base]
		if count > 0 {
			name = fmt.Sprintf("%s_%d", base, count+1)
		}
		seen[base] = count + 1

		headers[idx] = name
	}

	return headers
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
