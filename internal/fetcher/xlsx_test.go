package fetcher

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func createTestXLSX(t *testing.T, sheets [][2]any) []byte {
	t.Helper()
	f := xlsx.NewFile()
	for _, s := range sheets {
		sheet, err := f.AddSheet(s[0].(string))
		require.NoError(t, err)
		for _, rowData := range s[1].([][]string) {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				row.AddCell().SetString(cellData)
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestReadXLSXTable_Basic(t *testing.T) {
	data := createTestXLSX(t, [][2]any{
		{"Sheet1", [][]string{
			{"FIPS", "Area name", "State", "Percent"},
			{"1001", "Autauga County", "AL", "24.6"},
			{"1003", "Baldwin County", "AL", "29.5"},
		}},
	})

	table, err := ReadXLSXTable(bytes.NewReader(data), XLSXOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"FIPS", "Area name", "State", "Percent"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 1, table.Col("area name"))
	assert.Equal(t, "29.5", table.Rows[1][3])
}

func TestReadXLSXTable_SkipRows(t *testing.T) {
	data := createTestXLSX(t, [][2]any{
		{"Sheet1", [][]string{
			{"Educational attainment for the U.S."},
			{"fips", "value"},
			{"1001", "24.6"},
		}},
	})

	table, err := ReadXLSXTable(bytes.NewReader(data), XLSXOptions{SkipRows: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"fips", "value"}, table.Header)
	require.Len(t, table.Rows, 1)
}

func TestReadXLSXTable_SheetSelection(t *testing.T) {
	data := createTestXLSX(t, [][2]any{
		{"Notes", [][]string{{"about"}}},
		{"Data", [][]string{{"fips"}, {"1001"}}},
	})

	byName, err := ReadXLSXTable(bytes.NewReader(data), XLSXOptions{SheetName: "Data"})
	require.NoError(t, err)
	assert.Equal(t, []string{"fips"}, byName.Header)

	byIndex, err := ReadXLSXTable(bytes.NewReader(data), XLSXOptions{SheetIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, byName.Header, byIndex.Header)
}

func TestReadXLSXTable_Errors(t *testing.T) {
	data := createTestXLSX(t, [][2]any{{"Sheet1", [][]string{{"a"}}}})

	_, err := ReadXLSXTable(bytes.NewReader(data), XLSXOptions{SheetName: "Missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = ReadXLSXTable(bytes.NewReader(data), XLSXOptions{SheetIndex: 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")

	_, err = ReadXLSXTable(bytes.NewReader([]byte("not a workbook")), XLSXOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open workbook")
}
