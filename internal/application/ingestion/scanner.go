// Package ingestion convierte hojas de cálculo en leads nuevos del Lead Store.
package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Leadius-api/internal/domain"
	"github.com/jhoicas/Leadius-api/internal/domain/entity"
	"github.com/jhoicas/Leadius-api/internal/domain/lead"
	"github.com/jhoicas/Leadius-api/internal/infrastructure/metrics"
	"github.com/jhoicas/Leadius-api/pkg/logger"
)

// Disparadores de una pasada (etiqueta de métricas y logs).
const (
	TriggerManual = "manual"
	TriggerRefill = "refill"
	TriggerWorker = "worker"
)

const lockKey = "leadius:ingest"

// Config parámetros de la ingesta.
type Config struct {
	SourceDirs     []string // candidatos en orden; gana el primero que exista
	MinPhoneLength int
	LockTTL        time.Duration
}

// Result resumen de una pasada. Skipped indica que otra pasada tenía el lock.
type Result struct {
	RunID           string `json:"run_id"`
	Trigger         string `json:"trigger"`
	Directory       string `json:"directory"`
	RemoteFetched   int    `json:"remote_fetched"`
	FilesFound      int    `json:"files_found"`
	FilesFailed     int    `json:"files_failed"`
	RowsRead        int    `json:"rows_read"`
	RejectedPhone   int    `json:"rows_rejected_phone"`
	RejectedCompany int    `json:"rows_rejected_company"`
	Duplicates      int    `json:"duplicates"`
	Inserted        int    `json:"inserted"`
	Skipped         bool   `json:"skipped"`
}

// Scanner descubre hojas de cálculo, normaliza sus filas y guarda solo las nuevas.
type Scanner struct {
	store  LeadWriter
	reader FileReader
	locker Locker
	remote RemoteSource
	cfg    Config
	log    *logger.Logger
	now    func() time.Time
}

// NewScanner construye el escáner. remote puede ser nil.
func NewScanner(store LeadWriter, reader FileReader, locker Locker, remote RemoteSource, cfg Config, log *logger.Logger) *Scanner {
	if cfg.MinPhoneLength <= 0 {
		cfg.MinPhoneLength = lead.DefaultMinPhoneLength
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &Scanner{
		store:  store,
		reader: reader,
		locker: locker,
		remote: remote,
		cfg:    cfg,
		log:    log.Component("ingestion"),
		now:    time.Now,
	}
}

// IngestNow pasada manual (admin o CLI).
func (s *Scanner) IngestNow(ctx context.Context) (*Result, error) {
	return s.Ingest(ctx, TriggerManual)
}

// Refill pasada perezosa cuando la asignación no encuentra suficientes leads.
func (s *Scanner) Refill(ctx context.Context) (*Result, error) {
	return s.Ingest(ctx, TriggerRefill)
}

// Ingest ejecuta una pasada completa. Directorio ausente, archivos ilegibles y filas inválidas
// no son errores: solo reducen el resultado. Solo un fallo del Lead Store se devuelve.
func (s *Scanner) Ingest(ctx context.Context, trigger string) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Trigger: trigger}
	log := s.log.With("run_id", res.RunID).With("trigger", trigger)

	unlock, ok, err := s.locker.TryLock(ctx, lockKey, s.cfg.LockTTL)
	switch {
	case err != nil:
		// La unicidad (company_name, phone) en la base de datos sigue evitando duplicados.
		log.Warn().Err(err).Msg("lock de ingesta no disponible, se continúa sin él")
	case !ok:
		log.Info().Msg("otra ingesta en curso, se omite")
		res.Skipped = true
		return res, nil
	default:
		defer unlock()
	}

	dir, err := s.prepareDir(ctx, res)
	if err != nil {
		log.Warn().Err(err).Strs("candidates", s.cfg.SourceDirs).Msg("sin directorio de hojas de cálculo")
		s.record(res)
		return res, nil
	}
	res.Directory = dir

	candidates := s.scanDir(ctx, dir, res)
	if err := s.persist(ctx, candidates, res); err != nil {
		s.record(res)
		return res, err
	}

	s.record(res)
	log.Info().
		Str("dir", dir).
		Int("files", res.FilesFound).
		Int("files_failed", res.FilesFailed).
		Int("rows", res.RowsRead).
		Int("rejected_phone", res.RejectedPhone).
		Int("rejected_company", res.RejectedCompany).
		Int("duplicates", res.Duplicates).
		Int("inserted", res.Inserted).
		Msg("ingesta completada")
	return res, nil
}

// prepareDir sincroniza el origen remoto (si hay) y resuelve el directorio a escanear.
func (s *Scanner) prepareDir(ctx context.Context, res *Result) (string, error) {
	dir, err := ResolveDir(s.cfg.SourceDirs)
	if s.remote == nil {
		return dir, err
	}
	target := dir
	if err != nil {
		if len(s.cfg.SourceDirs) == 0 {
			return "", err
		}
		target = s.cfg.SourceDirs[0]
	}
	n, syncErr := s.remote.Sync(ctx, target)
	res.RemoteFetched = n
	if syncErr != nil {
		s.log.Warn().Err(syncErr).Str("remote", s.remote.Name()).Msg("sincronización remota fallida")
	}
	return ResolveDir(s.cfg.SourceDirs)
}

// scanDir lee cada hoja de cálculo y devuelve los leads válidos sin repetidos dentro del lote.
func (s *Scanner) scanDir(ctx context.Context, dir string, res *Result) []*entity.Lead {
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.log.Warn().Err(err).Str("dir", dir).Msg("no se pudo listar el directorio")
		return nil
	}
	seen := make(map[string]bool)
	var out []*entity.Lead
	for _, e := range entries {
		if ctx.Err() != nil {
			break
		}
		if e.IsDir() || !s.reader.Supports(e.Name()) {
			continue
		}
		res.FilesFound++
		rows, err := s.readFile(filepath.Join(dir, e.Name()))
		if err != nil {
			res.FilesFailed++
			s.log.Warn().Err(err).Str("file", e.Name()).Msg("hoja de cálculo omitida")
			continue
		}
		now := s.now()
		source := lead.SourceFor(e.Name())
		for _, row := range rows {
			res.RowsRead++
			l, reason := lead.Normalize(row, source, now, s.cfg.MinPhoneLength)
			switch reason {
			case lead.RejectMissingPhone:
				res.RejectedPhone++
				continue
			case lead.RejectMissingCompany:
				res.RejectedCompany++
				continue
			}
			key := l.CompanyName + "\x00" + l.Phone
			if seen[key] {
				res.Duplicates++
				continue
			}
			seen[key] = true
			out = append(out, l)
		}
	}
	if res.FilesFound == 0 {
		s.log.Warn().Str("dir", dir).Msg("no hay hojas de cálculo en el directorio")
	}
	return out
}

// readFile aísla el pánico de un lector para que un archivo dañado no tumbe la pasada.
func (s *Scanner) readFile(path string) (rows []lead.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("lector en pánico: %v", r)
		}
	}()
	return s.reader.ReadFile(path)
}

// persist descarta los pares ya guardados e inserta el resto.
func (s *Scanner) persist(ctx context.Context, batch []*entity.Lead, res *Result) error {
	for _, l := range batch {
		exists, err := s.store.Exists(ctx, l.CompanyName, l.Phone)
		if err != nil {
			return fmt.Errorf("ingesta: %w", err)
		}
		if exists {
			res.Duplicates++
			continue
		}
		inserted, err := s.store.Insert(ctx, l)
		if err != nil {
			return fmt.Errorf("ingesta: %w", err)
		}
		if !inserted {
			// Otra pasada lo insertó entre Exists e Insert.
			res.Duplicates++
			continue
		}
		res.Inserted++
	}
	return nil
}

func (s *Scanner) record(res *Result) {
	metrics.RecordIngestion(res.Trigger, metrics.IngestionCounts{
		Inserted:        res.Inserted,
		Duplicates:      res.Duplicates,
		RejectedPhone:   res.RejectedPhone,
		RejectedCompany: res.RejectedCompany,
		FilesFailed:     res.FilesFailed,
	})
}

// ResolveDir devuelve el primer candidato que existe y es directorio.
func ResolveDir(candidates []string) (string, error) {
	for _, d := range candidates {
		if st, err := os.Stat(d); err == nil && st.IsDir() {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, candidates)
}
