// Package store is the write path of the analytics dataset: natural-key
// upserts for projects, locations and fundings, and the all-or-nothing
// batch import that feeds them from the CSV extracts.
package store

import (
	"errors"
	"fmt"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/models"

	"gorm.io/gorm"
)

// Repository performs entity writes against the analytics database.
type Repository struct {
	DB *gorm.DB
}

// ProjectAttrs carries the optional attributes of a project upsert. A nil
// field is "not specified": defaulted on insert, preserved on update.
type ProjectAttrs struct {
	Status            *string
	ProceduralState   *string
	Title             *string
	SectorDescription *string
	SyntheticTheme    *string
	CupTypology       *string
	IsCrossCutting    *bool
}

// LocationAttrs carries the updatable attributes of a location upsert.
type LocationAttrs struct {
	RegionName string
	Macroarea  string
}

// UpsertProject inserts or updates the project matched by its local project
// code. Attributes absent from attrs keep their stored value on update.
func (r *Repository) UpsertProject(tx *gorm.DB, code string, attrs ProjectAttrs) (*models.Project, error) {
	if code == "" {
		return nil, errors.New("project code is required")
	}

	var p models.Project
	err := tx.Where("local_project_code = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		p = models.Project{
			LocalProjectCode: code,
			Status:           models.StatusNotApplicable,
			ProceduralState:  models.StatusNotStarted,
			Title:            "Titolo non disponibile",
		}
	} else if err != nil {
		return nil, fmt.Errorf("fetch project %s: %w", code, err)
	}

	if attrs.Status != nil {
		p.Status = *attrs.Status
	}
	if attrs.ProceduralState != nil {
		p.ProceduralState = *attrs.ProceduralState
	}
	if attrs.Title != nil {
		p.Title = *attrs.Title
	}
	if attrs.SectorDescription != nil {
		p.SectorDescription = attrs.SectorDescription
	}
	if attrs.SyntheticTheme != nil {
		p.SyntheticTheme = attrs.SyntheticTheme
	}
	if attrs.CupTypology != nil {
		p.CupTypology = attrs.CupTypology
	}
	if attrs.IsCrossCutting != nil {
		p.IsCrossCutting = *attrs.IsCrossCutting
	}

	if err := tx.Save(&p).Error; err != nil {
		return nil, fmt.Errorf("save project %s: %w", code, err)
	}
	return &p, nil
}

// UpsertLocation inserts or fetches the location matched by region code. On
// fetch, region name and macroarea are overwritten only when the incoming
// value is non-empty and differs, so a blank CSV cell never clobbers good
// data. The bool result reports whether a new row was created.
func (r *Repository) UpsertLocation(tx *gorm.DB, regionCode string, attrs LocationAttrs) (*models.Location, bool, error) {
	if regionCode == "" {
		return nil, false, errors.New("region code is required")
	}

	var loc models.Location
	err := tx.Where("region_code = ?", regionCode).First(&loc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		loc = models.Location{
			CommonCode: regionCode,
			CommonName: attrs.RegionName,
			RegionCode: regionCode,
			RegionName: attrs.RegionName,
			Macroarea:  macroareaOrDefault(attrs.Macroarea),
		}
		if err := tx.Create(&loc).Error; err != nil {
			return nil, false, fmt.Errorf("create location %s: %w", regionCode, err)
		}
		return &loc, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("fetch location %s: %w", regionCode, err)
	}

	changed := false
	if attrs.RegionName != "" && attrs.RegionName != loc.RegionName {
		loc.RegionName = attrs.RegionName
		loc.CommonName = attrs.RegionName
		changed = true
	}
	if attrs.Macroarea != "" && attrs.Macroarea != loc.Macroarea {
		loc.Macroarea = attrs.Macroarea
		changed = true
	}
	if changed {
		if err := tx.Save(&loc).Error; err != nil {
			return nil, false, fmt.Errorf("update location %s: %w", regionCode, err)
		}
	}
	return &loc, false, nil
}

// LinkProjectToLocation adds the m2m association. Linking an already linked
// pair is a no-op, never a duplicate row.
func (r *Repository) LinkProjectToLocation(tx *gorm.DB, p *models.Project, loc *models.Location) error {
	var n int64
	err := tx.Table("project_locations").
		Where("project_id = ? AND location_id = ?", p.ID, loc.ID).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("check project-location link: %w", err)
	}
	if n > 0 {
		return nil
	}
	if err := tx.Model(p).Association("Locations").Append(loc); err != nil {
		return fmt.Errorf("link project %s to region %s: %w", p.LocalProjectCode, loc.RegionCode, err)
	}
	return nil
}

// RawAmounts is the full set of raw funding-source values for one project.
type RawAmounts struct {
	EUFunds            float64
	EUFundsFESR        float64
	EUFundsFSE         float64
	EUFundsFEASR       float64
	EUFundsFEAMP       float64
	EUFundsIOG         float64
	StateRotatingFund  float64
	StateFSC           float64
	StatePAC           float64
	StateCompletions   float64
	StateOtherMeasures float64
	RegionalFunds      float64
	ProvincialFunds    float64
	MunicipalFunds     float64
	FreedResources     float64
	OtherPublicFunds   float64
	ForeignState       float64
	PrivateFunds       float64
	FundsToFind        float64
	TotalSavings       float64
	TotalPublicSavings float64
}

// UpsertFunding inserts or updates the funding row keyed by the owning
// project, then recomputes the derived totals before persisting. The totals
// are never written from the outside.
func (r *Repository) UpsertFunding(tx *gorm.DB, p *models.Project, raw RawAmounts) (*models.Funding, error) {
	var f models.Funding
	err := tx.Where("project_id = ?", p.ID).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		f = models.Funding{ProjectID: p.ID}
	} else if err != nil {
		return nil, fmt.Errorf("fetch funding for %s: %w", p.LocalProjectCode, err)
	}

	f.EUFunds = raw.EUFunds
	f.EUFundsFESR = raw.EUFundsFESR
	f.EUFundsFSE = raw.EUFundsFSE
	f.EUFundsFEASR = raw.EUFundsFEASR
	f.EUFundsFEAMP = raw.EUFundsFEAMP
	f.EUFundsIOG = raw.EUFundsIOG
	f.StateRotatingFund = raw.StateRotatingFund
	f.StateFSC = raw.StateFSC
	f.StatePAC = raw.StatePAC
	f.StateCompletions = raw.StateCompletions
	f.StateOtherMeasures = raw.StateOtherMeasures
	f.RegionalFunds = raw.RegionalFunds
	f.ProvincialFunds = raw.ProvincialFunds
	f.MunicipalFunds = raw.MunicipalFunds
	f.FreedResources = raw.FreedResources
	f.OtherPublicFunds = raw.OtherPublicFunds
	f.ForeignState = raw.ForeignState
	f.PrivateFunds = raw.PrivateFunds
	f.FundsToFind = raw.FundsToFind
	f.TotalSavings = raw.TotalSavings
	f.TotalPublicSavings = raw.TotalPublicSavings
	f.RecomputeTotals()

	if err := tx.Save(&f).Error; err != nil {
		return nil, fmt.Errorf("save funding for %s: %w", p.LocalProjectCode, err)
	}
	return &f, nil
}

func macroareaOrDefault(m string) string {
	if m == "" {
		return models.MacroareaAltro
	}
	return m
}
