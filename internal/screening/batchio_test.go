package screening

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	in := "\ufeffName,COUNTRY,notes\nPegah Aluminum,Iran,x\n\n,,\nAcme Ltd,,y\n"
	rows, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, []Input{
		{Name: "Pegah Aluminum", Country: "Iran"},
		{Name: "Acme Ltd"},
	}, rows)
}

func TestReadCSVMissingNameColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("entity,country\nx,y\n"))
	require.ErrorIs(t, err, ErrMissingNameColumn)
	require.EqualError(t, err, "CSV must have a 'name' column")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, []BatchRow{
		{EntityName: "Pegah", Status: StatusFlagged, MatchScore: 97, Verdict: "HIGH RISK", Reasoning: "same, company"},
	}))
	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Entity Name", "Status", "Match Score", "Verdict", "Reasoning"},
		{"Pegah", "FLAGGED", "97", "HIGH RISK", "same, company"},
	}, records)
}

func TestXLSXRoundTrip(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteXLSX(&out, []BatchRow{
		{EntityName: "Pegah", Status: StatusFlagged, MatchScore: 97, Verdict: "HIGH RISK", Reasoning: "r"},
		{EntityName: "Bakery", Status: StatusClear, Verdict: NoVerdict, Reasoning: NoMatchReasoning},
	}))

	f, err := excelize.OpenReader(bytes.NewReader(out.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, batchSheet, f.GetSheetName(0))
	rows, err := f.GetRows(batchSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, batchHeaders, rows[0])
	require.Equal(t, "FLAGGED", rows[1][1])
	require.Equal(t, "97", rows[1][2])
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"NAME", "Country"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Pegah Aluminum", "Iran"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	rows, err := ReadBatch(bytes.NewReader(buf.Bytes()), "upload.XLSX")
	require.NoError(t, err)
	require.Equal(t, []Input{{Name: "Pegah Aluminum", Country: "Iran"}}, rows)
}

func TestReadBatchDefaultsToCSV(t *testing.T) {
	rows, err := ReadBatch(strings.NewReader("name\nAcme\n"), "list.txt")
	require.NoError(t, err)
	require.Equal(t, []Input{{Name: "Acme"}}, rows)
}
