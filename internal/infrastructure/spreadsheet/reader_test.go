package spreadsheet_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/Leadius-api/internal/infrastructure/spreadsheet"
)

func writeXLSX(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// ──────────────────────────────────────────────────────────────────────────────
// Descubrimiento
// ──────────────────────────────────────────────────────────────────────────────

func TestSupported(t *testing.T) {
	assert.True(t, spreadsheet.Supported("leads.xlsx"))
	assert.True(t, spreadsheet.Supported("LEADS.XLS"))
	assert.True(t, spreadsheet.Supported("export.csv"))
	assert.True(t, spreadsheet.Supported("macro.xlsm"))
	assert.False(t, spreadsheet.Supported("~$leads.xlsx"), "temporal de Office")
	assert.False(t, spreadsheet.Supported("notes.txt"))
}

// ──────────────────────────────────────────────────────────────────────────────
// XLSX
// ──────────────────────────────────────────────────────────────────────────────

func TestReadFile_XLSX(t *testing.T) {
	dir := t.TempDir()
	path := writeXLSX(t, dir, "stockholm.xlsx", [][]any{
		{"Företag", "Telefon", "Ort"},
		{"Acme AB", "08-123 456 78", "Stockholm"},
		{"", "", ""},
		{"Beta AB", "0701234567"},
	})

	rows, err := spreadsheet.NewFileReader().ReadFile(path)

	require.NoError(t, err)
	require.Len(t, rows, 2, "las filas vacías se descartan")
	assert.Equal(t, "Företag", rows[0][0].Header)
	assert.Equal(t, "Acme AB", rows[0][0].Value)
	assert.Equal(t, "08-123 456 78", rows[0][1].Value)
	require.Len(t, rows[1], 3, "filas cortas se rellenan hasta el ancho de la cabecera")
	assert.Equal(t, "", rows[1][2].Value)
}

func TestReadFile_XLSXCorrupto(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roto.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("no es un zip"), 0o644))

	_, err := spreadsheet.NewFileReader().ReadFile(path)
	assert.Error(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// XLS
// ──────────────────────────────────────────────────────────────────────────────

func TestReadFile_XLSCadenaDeSectoresRota(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roto.xls")
	require.NoError(t, os.WriteFile(path, brokenXLS(), 0o644))

	_, err := spreadsheet.NewFileReader().ReadFile(path)

	require.Error(t, err)
	assert.ErrorIs(t, err, spreadsheet.ErrCorrupt)
}

func TestReadFile_XLSTruncado(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corto.xls")
	require.NoError(t, os.WriteFile(path, brokenXLS()[:600], 0o644))

	_, err := spreadsheet.NewFileReader().ReadFile(path)

	assert.ErrorIs(t, err, spreadsheet.ErrCorrupt)
}

func TestReadFile_XLSSinFirma(t *testing.T) {
	data := brokenXLS()
	data[0] = 0
	path := filepath.Join(t.TempDir(), "texto.xls")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err := spreadsheet.NewFileReader().ReadFile(path)

	assert.ErrorIs(t, err, spreadsheet.ErrCorrupt)
}

// ──────────────────────────────────────────────────────────────────────────────
// CSV
// ──────────────────────────────────────────────────────────────────────────────

func TestReadFile_CSVWindows1252ConPuntoYComa(t *testing.T) {
	text := "Företagsnamn;Telefon;Stad\nGöteborgs Måleri;031-123 45 67;Göteborg\n"
	encoded, err := charmap.Windows1252.NewEncoder().String(text)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "export.csv")
	require.NoError(t, os.WriteFile(path, []byte(encoded), 0o644))

	rows, err := spreadsheet.NewFileReader().ReadFile(path)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Företagsnamn", rows[0][0].Header)
	assert.Equal(t, "Göteborgs Måleri", rows[0][0].Value)
	assert.Equal(t, "Göteborg", rows[0][2].Value)
}

func TestReadFile_CSVUTF8ConBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("company,phone\nÅre Fjäll AB,+46 647 123 45\n")...)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	rows, err := spreadsheet.NewFileReader().ReadFile(path)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "company", rows[0][0].Header, "el BOM no debe quedar pegado a la cabecera")
	assert.Equal(t, "Åre Fjäll AB", rows[0][0].Value)
}

func TestReadFile_ExtensionNoSoportada(t *testing.T) {
	_, err := spreadsheet.NewFileReader().ReadFile("/tmp/leads.ods")
	assert.ErrorIs(t, err, spreadsheet.ErrUnsupported)
}

// brokenXLS contenedor OLE con firma válida cuya cadena de directorio sale de la tabla de sectores.
func brokenXLS() []byte {
	const endOfChain, freeSect = 0xFFFFFFFE, 0xFFFFFFFF
	buf := make([]byte, 512*3)
	le := binary.LittleEndian
	le.PutUint32(buf[0:], 0xE011CFD0)
	le.PutUint32(buf[4:], 0xE11AB1A1)
	le.PutUint16(buf[24:], 0x3E)
	le.PutUint16(buf[26:], 3)
	le.PutUint16(buf[28:], 0xFFFE)
	le.PutUint16(buf[30:], 9)
	le.PutUint16(buf[32:], 6)
	le.PutUint32(buf[44:], 1)    // sectores FAT
	le.PutUint32(buf[48:], 1)    // inicio del directorio
	le.PutUint32(buf[56:], 4096) // corte de flujo corto
	le.PutUint32(buf[60:], endOfChain)
	le.PutUint32(buf[68:], endOfChain)
	le.PutUint32(buf[76:], 0)
	for i := 1; i < 109; i++ {
		le.PutUint32(buf[76+4*i:], freeSect)
	}
	for i := 0; i < 128; i++ {
		le.PutUint32(buf[512+4*i:], freeSect)
	}
	le.PutUint32(buf[512:], 0xFFFFFFFD)
	le.PutUint32(buf[516:], 0x7FFFFFFF)
	return buf
}
