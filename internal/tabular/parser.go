package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"finderhub-backend/pkg/errors"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatWorkbook Format = "workbook"
	FormatCSV      Format = "csv"
)

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse materializes the whole file into ordered records. The first row is
// the header; every later row becomes one Record keyed by those labels.
func (p *Parser) Parse(data []byte, format Format) ([]Record, error) {
	switch format {
	case FormatWorkbook:
		return p.parseWorkbook(data)
	case FormatCSV:
		return p.parseCSV(data)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// parseWorkbook reads the first sheet only.
func (p *Parser) parseWorkbook(data []byte) ([]Record, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrMalformedInput, err.Error())
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.ErrMalformedInput
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrMalformedInput, err.Error())
	}
	if len(rows) == 0 {
		// A readable but empty sheet is a valid zero-row upload, not
		// malformed input.
		return []Record{}, nil
	}

	return assemble(rows[0], rows[1:]), nil
}

func (p *Parser) parseCSV(data []byte) ([]Record, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // short rows pad to empty strings below

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.ErrMalformedInput
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errors.ErrMalformedInput, err.Error())
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", errors.ErrMalformedInput, err.Error())
		}
		rows = append(rows, row)
	}

	return assemble(header, rows), nil
}

// assemble zips each data row with the header labels. Cells beyond the row's
// length default to "" so downstream stages see a uniform field set.
func assemble(header []string, rows [][]string) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		rec := make(Record, len(header))
		for i, label := range header {
			if label == "" {
				continue
			}
			if i < len(row) {
				rec[label] = row[i]
			} else {
				rec[label] = ""
			}
		}
		records = append(records, rec)
	}
	return records
}
