package spreadsheet

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/extrame/ole2"
)

// ErrCorrupt contenedor OLE dañado; extrame/ole2 termina el proceso (log.Fatal) al seguir
// una cadena de sectores fuera de la tabla, así que se comprueba antes de entregarle el archivo.
var ErrCorrupt = errors.New("contenedor OLE dañado")

const (
	oleHeaderSize = 512
	oleSectorSize = 512
)

// checkCompound recorre las cadenas que extrame/xls va a leer: directorio, flujo Workbook
// y, si es corto, el mini flujo de Root Entry y su tabla corta.
func checkCompound(r io.ReadSeeker, size int64) error {
	if size < oleHeaderSize+oleSectorSize {
		return fmt.Errorf("%w: archivo truncado", ErrCorrupt)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	var h ole2.Header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return fmt.Errorf("%w: cabecera: %v", ErrCorrupt, err)
	}
	if h.Id[0] != 0xE011CFD0 || h.Id[1] != 0xE11AB1A1 || h.Byteorder != 0xFFFE {
		return fmt.Errorf("%w: firma inválida", ErrCorrupt)
	}
	if h.Lsectorb != 9 || h.Lssectorb != 6 {
		return fmt.Errorf("%w: tamaño de sector no soportado", ErrCorrupt)
	}
	sectors := uint32((size - oleHeaderSize) / oleSectorSize)
	if h.Cfat > sectors || h.Csfat > sectors || h.Cdif > sectors {
		return fmt.Errorf("%w: contadores de sectores fuera de rango", ErrCorrupt)
	}
	if err := checkDIFAT(r, h, sectors); err != nil {
		return err
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	ole, err := ole2.Open(r, "")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := walkChain(ole.SecID, h.Dirstart); err != nil {
		return fmt.Errorf("directorio: %w", err)
	}
	dir, err := ole.ListDir()
	if err != nil {
		return fmt.Errorf("%w: directorio: %v", ErrCorrupt, err)
	}

	var book, root *ole2.File
	for _, f := range dir {
		if f.Bsize < 2 || f.Bsize > 64 {
			return fmt.Errorf("%w: nombre de entrada inválido", ErrCorrupt)
		}
		switch f.Name() {
		case "Workbook", "Book":
			book = f
		case "Root Entry":
			root = f
		}
	}
	if book == nil {
		return fmt.Errorf("%w: sin flujo Workbook", ErrCorrupt)
	}
	if book.Size >= h.Sectorcutoff {
		if err := walkChain(ole.SecID, book.Sstart); err != nil {
			return fmt.Errorf("workbook: %w", err)
		}
		return nil
	}
	if root == nil {
		return fmt.Errorf("%w: sin Root Entry", ErrCorrupt)
	}
	if err := walkChain(ole.SecID, root.Sstart); err != nil {
		return fmt.Errorf("mini flujo: %w", err)
	}
	if err := walkChain(ole.SSecID, book.Sstart); err != nil {
		return fmt.Errorf("workbook corto: %w", err)
	}
	return nil
}

// checkDIFAT acota la cadena de sectores DIFAT a Cdif pasos; ole2 la sigue sin límite.
func checkDIFAT(r io.ReadSeeker, h ole2.Header, sectors uint32) error {
	buf := make([]byte, oleSectorSize)
	sid := h.Difstart
	for steps := uint32(0); sid != ole2.ENDOFCHAIN; steps++ {
		if sid >= sectors || steps >= h.Cdif {
			return fmt.Errorf("%w: cadena DIFAT", ErrCorrupt)
		}
		if _, err := r.Seek(int64(oleHeaderSize)+int64(sid)*oleSectorSize, io.SeekStart); err != nil {
			return err
		}
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("%w: sector DIFAT: %v", ErrCorrupt, err)
		}
		sid = binary.LittleEndian.Uint32(buf[oleSectorSize-4:])
	}
	return nil
}

// walkChain sigue la cadena desde start hasta ENDOFCHAIN; todo índice debe caer dentro de sat y sin ciclos.
func walkChain(sat []uint32, start uint32) error {
	sid := start
	for steps := 0; sid != ole2.ENDOFCHAIN; steps++ {
		if sid >= uint32(len(sat)) || steps > len(sat) {
			return fmt.Errorf("%w: sector %d fuera de la tabla", ErrCorrupt, sid)
		}
		sid = sat[sid]
	}
	return nil
}
