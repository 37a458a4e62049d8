package models

import (
	"time"

	"gorm.io/gorm"
)

// Funding holds the raw per-source amounts for one project (logical
// one-to-one, modeled as one-to-many for extensibility). The two totals are
// derived: they are recomputed through RecomputeTotals by the repository on
// every write and are never settable on their own.
type Funding struct {
	ID        uint `gorm:"column:id;primaryKey" json:"id"`
	ProjectID uint `gorm:"column:project_id;uniqueIndex;not null" json:"project_id"`

	// Public funds
	EUFunds            float64 `gorm:"column:eu_funds;not null;default:0" json:"eu_funds"`                         // FINANZ_UE
	EUFundsFESR        float64 `gorm:"column:eu_funds_fesr;not null;default:0" json:"eu_funds_fesr"`               // FINANZ_UE_FESR
	EUFundsFSE         float64 `gorm:"column:eu_funds_fse;not null;default:0" json:"eu_funds_fse"`                 // FINANZ_UE_FSE
	EUFundsFEASR       float64 `gorm:"column:eu_funds_feasr;not null;default:0" json:"eu_funds_feasr"`             // FINANZ_UE_FEASR
	EUFundsFEAMP       float64 `gorm:"column:eu_funds_feamp;not null;default:0" json:"eu_funds_feamp"`             // FINANZ_UE_FEAMP
	EUFundsIOG         float64 `gorm:"column:eu_funds_iog;not null;default:0" json:"eu_funds_iog"`                 // FINANZ_UE_IOG
	StateRotatingFund  float64 `gorm:"column:state_rotating_fund;not null;default:0" json:"state_rotating_fund"`   // FINANZ_STATO_FONDO_DI_ROTAZIONE
	StateFSC           float64 `gorm:"column:state_fsc;not null;default:0" json:"state_fsc"`                       // FINANZ_STATO_FSC
	StatePAC           float64 `gorm:"column:state_pac;not null;default:0" json:"state_pac"`                       // FINANZ_STATO_PAC
	StateCompletions   float64 `gorm:"column:state_completions;not null;default:0" json:"state_completions"`       // FINANZ_STATO_COMPLETAMENTI
	StateOtherMeasures float64 `gorm:"column:state_other_measures;not null;default:0" json:"state_other_measures"` // FINANZ_STATO_ALTRI_PROVVEDIMENTI
	RegionalFunds      float64 `gorm:"column:regional_funds;not null;default:0" json:"regional_funds"`             // FINANZ_REGIONE
	ProvincialFunds    float64 `gorm:"column:provincial_funds;not null;default:0" json:"provincial_funds"`         // FINANZ_PROVINCIA
	MunicipalFunds     float64 `gorm:"column:municipal_funds;not null;default:0" json:"municipal_funds"`           // FINANZ_COMUNE
	FreedResources     float64 `gorm:"column:freed_resources;not null;default:0" json:"freed_resources"`           // FINANZ_RISORSE_LIBERATE
	OtherPublicFunds   float64 `gorm:"column:other_public_funds;not null;default:0" json:"other_public_funds"`     // FINANZ_ALTRO_PUBBLICO

	// Extra funds
	ForeignState float64 `gorm:"column:foreign_state;not null;default:0" json:"foreign_state"` // FINANZ_STATO_ESTERO
	PrivateFunds float64 `gorm:"column:private_funds;not null;default:0" json:"private_funds"` // FINANZ_PRIVATO
	FundsToFind  float64 `gorm:"column:funds_to_find;not null;default:0" json:"funds_to_find"` // FINANZ_DA_REPERIRE

	// Economies
	TotalSavings       float64 `gorm:"column:total_savings;not null;default:0" json:"total_savings"`               // ECONOMIE_TOTALI
	TotalPublicSavings float64 `gorm:"column:total_public_savings;not null;default:0" json:"total_public_savings"` // ECONOMIE_TOTALI_PUBBLICHE

	// Calculated totals
	TotalFundsGross float64 `gorm:"column:total_funds_gross;not null;default:0" json:"total_funds_gross"`
	TotalFundsNet   float64 `gorm:"column:total_funds_net;not null;default:0" json:"total_funds_net"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Funding) TableName() string {
	return "fundings"
}

// RecomputeTotals derives the gross and net totals from the raw amounts.
// Gross is the sum of every raw funding-source field; net subtracts the
// total savings. Savings columns themselves are not funding sources.
func (f *Funding) RecomputeTotals() {
	f.TotalFundsGross = f.EUFunds + f.EUFundsFESR + f.EUFundsFSE + f.EUFundsFEASR + f.EUFundsFEAMP +
		f.EUFundsIOG + f.StateRotatingFund + f.StateFSC + f.StatePAC + f.StateCompletions +
		f.StateOtherMeasures + f.RegionalFunds + f.ProvincialFunds + f.MunicipalFunds +
		f.FreedResources + f.OtherPublicFunds + f.ForeignState + f.PrivateFunds + f.FundsToFind
	f.TotalFundsNet = f.TotalFundsGross - f.TotalSavings
}
