package fetcher

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

const rosterCSV = `Name,Domain,Sector,Email,Trigger,Last_Contacted,Notes,Tags
Northwind AI, northwind.ai ,enterprise search,founder@northwind.ai,enterprise pilot secured,2026-05-12,Met at demo day,ai;b2b
Acme Robotics,acme.dev,robotics,ceo@acme.dev,series a closed,,,
,skipped.example,,,,,
`

func TestReadCSV(t *testing.T) {
	header, rows, err := ReadCSV(strings.NewReader(rosterCSV))
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Domain", "Sector", "Email", "Trigger", "Last_Contacted", "Notes", "Tags"}, header)
	require.Len(t, rows, 3)
	assert.Equal(t, "northwind.ai", rows[0][1])
}

func TestReadCSV_Empty(t *testing.T) {
	_, _, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty file")
}

func TestParseRoster(t *testing.T) {
	header, rows, err := ReadCSV(strings.NewReader(rosterCSV))
	require.NoError(t, err)

	entries, err := ParseRoster(header, rows)
	require.NoError(t, err)
	require.Len(t, entries, 2) // nameless row skipped

	first := entries[0]
	assert.Equal(t, "Northwind AI", first.Company.Name)
	assert.Equal(t, "northwind.ai", first.Company.Domain)
	assert.Equal(t, []string{"ai", "b2b"}, first.Company.Tags)
	assert.Equal(t, "founder@northwind.ai", first.ContactEmail)
	assert.Equal(t, "enterprise pilot secured", first.FollowUpTrigger)
	assert.Equal(t, "Met at demo day", first.LastSummary)
	assert.Equal(t, time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC), first.LastContacted)
	assert.NotEmpty(t, first.Company.ID)

	assert.True(t, entries[1].LastContacted.IsZero())
}

func TestParseRoster_NoNameColumn(t *testing.T) {
	_, err := ParseRoster([]string{"Domain"}, [][]string{{"x.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no name column")
}

func TestParseRoster_BadDate(t *testing.T) {
	_, err := ParseRoster(
		[]string{"Name", "Last_Contacted"},
		[][]string{{"Northwind AI", "last spring"}},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unparseable date")
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Roster")
	require.NoError(t, err)
	for _, row := range [][]string{
		{"Name", "Domain"},
		{"Northwind AI", "northwind.ai"},
	} {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().SetString(v)
		}
	}
	require.NoError(t, f.Save(path))

	header, rows, err := ReadXLSX(path, XLSXOptions{SheetName: "Roster"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Domain"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "Northwind AI", rows[0][0])
}

func TestReadXLSX_MissingSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	f := xlsx.NewFile()
	_, err := f.AddSheet("Sheet1")
	require.NoError(t, err)
	require.NoError(t, f.Save(path))

	_, _, err = ReadXLSX(path, XLSXOptions{SheetName: "Nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Nope" not found`)
}
