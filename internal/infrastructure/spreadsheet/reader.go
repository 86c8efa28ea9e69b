// Package spreadsheet lee hojas de cálculo (.xlsx, .xlsm, .xls, .csv) como filas de cabecera/valor.
// Solo se lee la primera hoja; la primera fila no vacía son las cabeceras.
package spreadsheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jhoicas/Leadius-api/internal/domain/lead"
)

// ErrUnsupported extensión no reconocida.
var ErrUnsupported = errors.New("formato de hoja de cálculo no soportado")

// Extensions extensiones aceptadas, en minúsculas.
var Extensions = []string{".xlsx", ".xlsm", ".xls", ".csv"}

// Supported indica si el nombre de archivo tiene una extensión legible. Ignora temporales de Office ("~$").
func Supported(name string) bool {
	if strings.HasPrefix(filepath.Base(name), "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// FileReader despacha por extensión.
type FileReader struct{}

// NewFileReader construye el lector por defecto.
func NewFileReader() *FileReader {
	return &FileReader{}
}

// Supports ver Supported.
func (FileReader) Supports(name string) bool {
	return Supported(name)
}

// ReadFile lee path según su extensión.
func (FileReader) ReadFile(path string) ([]lead.Row, error) {
	var (
		grid [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		grid, err = readXLSX(path)
	case ".xls":
		grid, err = readXLS(path)
	case ".csv":
		grid, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
	}
	if err != nil {
		return nil, fmt.Errorf("leer %s: %w", filepath.Base(path), err)
	}
	return toRows(grid), nil
}

// toRows toma la primera fila no vacía como cabecera y descarta filas totalmente vacías.
func toRows(grid [][]string) []lead.Row {
	start := -1
	for i, r := range grid {
		if !blankRecord(r) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	headers := grid[start]
	var out []lead.Row
	for _, rec := range grid[start+1:] {
		if blankRecord(rec) {
			continue
		}
		row := make(lead.Row, 0, len(headers))
		for i, h := range headers {
			v := ""
			if i < len(rec) {
				v = rec[i]
			}
			row = append(row, lead.Cell{Header: h, Value: v})
		}
		out = append(out, row)
	}
	return out
}

func blankRecord(r []string) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
