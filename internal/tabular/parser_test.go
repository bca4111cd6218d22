package tabular

import (
	"bytes"
	"testing"

	pkgerrors "finderhub-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbookBytes(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue("Sheet1", cellRef, cell))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseWorkbook(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"EnrollmentCode", "FullName", "Email"},
		{"EN001", "Asha Rao", "asha@campus.edu"},
		{"EN002", "Vikram Joshi", "vikram@campus.edu"},
	})

	parser := NewParser()
	records, err := parser.Parse(data, FormatWorkbook)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "EN001", records[0].Get("EnrollmentCode"))
	assert.Equal(t, "Asha Rao", records[0].Get("FullName"))
	assert.Equal(t, "EN002", records[1].Get("EnrollmentCode"))
}

func TestParseWorkbookMissingCellsDefaultToEmpty(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{
		{"EnrollmentCode", "FullName", "Email"},
		{"EN001"},
	})

	records, err := NewParser().Parse(data, FormatWorkbook)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "EN001", records[0].Get("EnrollmentCode"))
	assert.Equal(t, "", records[0].Get("FullName"))
	assert.Equal(t, "", records[0].Get("Email"))
}

func TestParseWorkbookPreservesRowOrder(t *testing.T) {
	rows := [][]interface{}{{"Busno"}}
	want := []string{"B9", "B1", "B5", "B3"}
	for _, no := range want {
		rows = append(rows, []interface{}{no})
	}

	records, err := NewParser().Parse(workbookBytes(t, rows), FormatWorkbook)
	require.NoError(t, err)
	require.Len(t, records, len(want))
	for i, no := range want {
		assert.Equal(t, no, records[i].Get("Busno"))
	}
}

func TestParseWorkbookEmptySheet(t *testing.T) {
	data := workbookBytes(t, nil)

	records, err := NewParser().Parse(data, FormatWorkbook)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseWorkbookHeaderOnly(t *testing.T) {
	data := workbookBytes(t, [][]interface{}{{"EnrollmentCode", "FullName"}})

	records, err := NewParser().Parse(data, FormatWorkbook)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestParseWorkbookMalformed(t *testing.T) {
	_, err := NewParser().Parse([]byte("this is not a workbook"), FormatWorkbook)
	assert.ErrorIs(t, err, pkgerrors.ErrMalformedInput)
}

func TestParseCSV(t *testing.T) {
	data := []byte("srno,code,stopname\n1,A1,Main St\n2,B2,Oak Ave\n")

	records, err := NewParser().Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "1", records[0].Get("srno"))
	assert.Equal(t, "A1", records[0].Get("code"))
	assert.Equal(t, "Oak Ave", records[1].Get("stopname"))
}

func TestParseCSVShortRowsPadToEmpty(t *testing.T) {
	data := []byte("srno,code,stopname\n1,A1\n")

	records, err := NewParser().Parse(data, FormatCSV)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "A1", records[0].Get("code"))
	assert.Equal(t, "", records[0].Get("stopname"))
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := NewParser().Parse(nil, FormatCSV)
	assert.ErrorIs(t, err, pkgerrors.ErrMalformedInput)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := NewParser().Parse([]byte("a,b\n1,2\n"), Format("tsv"))
	assert.Error(t, err)
}

func TestNormalizeTrimsValues(t *testing.T) {
	rec := Record{"EnrollmentCode": "  EN001 ", "FullName": "\tAsha Rao\n", "Year": "2"}

	got := Normalize(rec)

	assert.Equal(t, "EN001", got["EnrollmentCode"])
	assert.Equal(t, "Asha Rao", got["FullName"])
	assert.Equal(t, "2", got["Year"])
	assert.Len(t, got, len(rec))
}

func TestNormalizeIdempotent(t *testing.T) {
	rec := Record{"a": " x ", "b": "y", "c": ""}

	once := Normalize(rec)
	twice := Normalize(once)

	assert.Equal(t, once, twice)
}

func TestRecordGetCaseInsensitive(t *testing.T) {
	rec := Record{"EnrollmentCode": "EN001"}

	assert.Equal(t, "EN001", rec.Get("enrollmentcode"))
	assert.Equal(t, "EN001", rec.Get(" EnrollmentCode "))
	assert.Equal(t, "", rec.Get("Missing"))
}
