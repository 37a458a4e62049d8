package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/csvload"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/models"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/normalize"

	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Source column names consumed by the import path.
const (
	FieldProjectCode     = "COD_LOCALE_PROGETTO"
	FieldProjectStatus   = "OC_STATO_PROGETTO"
	FieldProceduralState = "OC_STATO_PROCEDURALE"
	FieldProjectTitle    = "OC_TITOLO_PROGETTO"
	FieldSector          = "CUP_DESCR_SETTORE"
	FieldSyntheticTheme  = "OC_TEMA_SINTETICO"
	FieldCupTypology     = "CUP_DESCR_TIPOLOGIA"
	FieldMacroarea       = "OC_MACROAREA"
)

// ErrMissingProjectCode marks a row without the mandatory project key.
var ErrMissingProjectCode = errors.New("missing " + FieldProjectCode)

// RowError identifies the source row that made the batch fail.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Rows with no region code get a synthetic region derived from the
// macroarea. The original extract leaves the region columns blank for
// national, cross-cutting and foreign projects; the synthetic codes live
// outside the 001-020 ISTAT range so they can never collide with a real
// region.
var syntheticRegions = map[string][2]string{
	models.MacroareaAmbitoNazionale: {"000", "Ambito Nazionale"},
	models.MacroareaEstero:          {"997", "Estero"},
	models.MacroareaTrasversale:     {"998", "Ambito Trasversale"},
	models.MacroareaMezzogiorno:     {"996", "Mezzogiorno"},
	models.MacroareaCentroNord:      {"995", "Centro-Nord"},
}

var syntheticFallback = [2]string{"099", "Altro non specificato"}

// ImportPath loads the CSV file or directory at path and imports every row
// in one transaction.
func (r *Repository) ImportPath(ctx context.Context, path string) (*models.ImportRun, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat import path: %w", err)
	}

	var recs []csvload.Record
	if info.IsDir() {
		recs, err = csvload.LoadDirectory(path)
	} else {
		recs, err = csvload.LoadDelimited(path)
	}
	if err != nil {
		r.recordFailedRun(ctx, path, err)
		return nil, err
	}
	return r.ImportRecords(ctx, path, recs)
}

// ImportRecords writes the whole batch inside a single transaction: either
// every row lands or none does. Rows encoding several regions are expanded
// to one row per region before the upserts. The returned ImportRun records
// what the run touched; a failed run is also recorded, with its error.
func (r *Repository) ImportRecords(ctx context.Context, sourcePath string, recs []csvload.Record) (*models.ImportRun, error) {
	started := time.Now()
	projectsSeen := make(map[string]struct{})
	locationsCreated := 0
	rowsPerFile := make(map[string]int)

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, rec := range recs {
			rowsPerFile[rec.SourceFile]++
			expanded := csvload.ExpandMultiRegion(rec)
			for _, row := range expanded {
				created, err := r.importRow(tx, row, len(expanded) > 1)
				if err != nil {
					return &RowError{File: row.SourceFile, Line: row.Line, Err: err}
				}
				if created {
					locationsCreated++
				}
				projectsSeen[row.Get(FieldProjectCode)] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("path", sourcePath).Msg("import aborted, batch rolled back")
		r.recordFailedRun(ctx, sourcePath, err)
		return nil, err
	}

	run := &models.ImportRun{
		SourcePath:       sourcePath,
		Status:           models.ImportStatusCompleted,
		FileCount:        len(rowsPerFile),
		RowCount:         len(recs),
		ProjectCount:     len(projectsSeen),
		LocationsCreated: locationsCreated,
		RowsPerFile:      marshalRowsPerFile(rowsPerFile),
		StartedAt:        started,
		FinishedAt:       time.Now(),
	}
	if err := r.DB.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("record import run: %w", err)
	}

	log.Info().
		Str("path", sourcePath).
		Int("rows", run.RowCount).
		Int("projects", run.ProjectCount).
		Int("locations_created", run.LocationsCreated).
		Dur("elapsed", run.FinishedAt.Sub(run.StartedAt)).
		Msg("import completed")
	return run, nil
}

// importRow upserts the project, its region location and its funding from
// one expanded record.
func (r *Repository) importRow(tx *gorm.DB, row csvload.Record, multiRegion bool) (locationCreated bool, err error) {
	code := row.Get(FieldProjectCode)
	if code == "" {
		return false, ErrMissingProjectCode
	}

	macroarea := strings.ToUpper(row.Get(FieldMacroarea))
	if macroarea == "" {
		macroarea = models.MacroareaAltro
	}

	status := fallback(row.Get(FieldProjectStatus), models.StatusNotApplicable)
	procState := fallback(row.Get(FieldProceduralState), "Non avviato")
	title := fallback(row.Get(FieldProjectTitle), "Titolo non disponibile")
	crossCutting := multiRegion || macroarea == models.MacroareaTrasversale

	attrs := ProjectAttrs{
		Status:          &status,
		ProceduralState: &procState,
		Title:           &title,
		IsCrossCutting:  &crossCutting,
	}
	if v := row.Get(FieldSector); v != "" {
		attrs.SectorDescription = &v
	}
	if v := row.Get(FieldSyntheticTheme); v != "" {
		attrs.SyntheticTheme = &v
	}
	if v := row.Get(FieldCupTypology); v != "" {
		attrs.CupTypology = &v
	}

	project, err := r.UpsertProject(tx, code, attrs)
	if err != nil {
		return false, err
	}

	regionCode := row.Get(csvload.FieldRegionCode)
	regionName := row.Get(csvload.FieldRegionName)
	if regionCode == "" {
		synthetic, ok := syntheticRegions[macroarea]
		if !ok {
			synthetic = syntheticFallback
		}
		regionCode, regionName = synthetic[0], synthetic[1]
	}

	location, created, err := r.UpsertLocation(tx, regionCode, LocationAttrs{
		RegionName: regionName,
		Macroarea:  macroarea,
	})
	if err != nil {
		return false, err
	}
	if err := r.LinkProjectToLocation(tx, project, location); err != nil {
		return created, err
	}

	if _, err := r.UpsertFunding(tx, project, amountsFromRecord(row)); err != nil {
		return created, err
	}
	return created, nil
}

func amountsFromRecord(row csvload.Record) RawAmounts {
	return RawAmounts{
		EUFunds:            normalize.Amount(row.Get("FINANZ_UE")),
		EUFundsFESR:        normalize.Amount(row.Get("FINANZ_UE_FESR")),
		EUFundsFSE:         normalize.Amount(row.Get("FINANZ_UE_FSE")),
		EUFundsFEASR:       normalize.Amount(row.Get("FINANZ_UE_FEASR")),
		EUFundsFEAMP:       normalize.Amount(row.Get("FINANZ_UE_FEAMP")),
		EUFundsIOG:         normalize.Amount(row.Get("FINANZ_UE_IOG")),
		StateRotatingFund:  normalize.Amount(row.Get("FINANZ_STATO_FONDO_DI_ROTAZIONE")),
		StateFSC:           normalize.Amount(row.Get("FINANZ_STATO_FSC")),
		StatePAC:           normalize.Amount(row.Get("FINANZ_STATO_PAC")),
		StateCompletions:   normalize.Amount(row.Get("FINANZ_STATO_COMPLETAMENTI")),
		StateOtherMeasures: normalize.Amount(row.Get("FINANZ_STATO_ALTRI_PROVVEDIMENTI")),
		RegionalFunds:      normalize.Amount(row.Get("FINANZ_REGIONE")),
		ProvincialFunds:    normalize.Amount(row.Get("FINANZ_PROVINCIA")),
		MunicipalFunds:     normalize.Amount(row.Get("FINANZ_COMUNE")),
		FreedResources:     normalize.Amount(row.Get("FINANZ_RISORSE_LIBERATE")),
		OtherPublicFunds:   normalize.Amount(row.Get("FINANZ_ALTRO_PUBBLICO")),
		ForeignState:       normalize.Amount(row.Get("FINANZ_STATO_ESTERO")),
		PrivateFunds:       normalize.Amount(row.Get("FINANZ_PRIVATO")),
		FundsToFind:        normalize.Amount(row.Get("FINANZ_DA_REPERIRE")),
		TotalSavings:       normalize.Amount(row.Get("ECONOMIE_TOTALI")),
		TotalPublicSavings: normalize.Amount(row.Get("ECONOMIE_TOTALI_PUBBLICHE")),
	}
}

func (r *Repository) recordFailedRun(ctx context.Context, sourcePath string, cause error) {
	run := &models.ImportRun{
		SourcePath: sourcePath,
		Status:     models.ImportStatusFailed,
		Error:      cause.Error(),
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}
	if err := r.DB.WithContext(ctx).Create(run).Error; err != nil {
		log.Error().Err(err).Msg("record failed import run")
	}
}

func marshalRowsPerFile(m map[string]int) datatypes.JSON {
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
