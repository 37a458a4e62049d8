package models

import (
	"time"

	"gorm.io/gorm"
)

// Project status values as they appear in the OC_STATO_PROGETTO column.
const (
	StatusNotStarted    = "Non avviato"
	StatusInProgress    = "In corso"
	StatusConcluded     = "Concluso"
	StatusLiquidated    = "Liquidato"
	StatusNotApplicable = "Non applicabile"
)

// Project is one funded initiative from the Opencoesione extract, keyed by
// its stable local project code (COD_LOCALE_PROGETTO).
type Project struct {
	ID                uint           `gorm:"column:id;primaryKey" json:"id"`
	LocalProjectCode  string         `gorm:"column:local_project_code;uniqueIndex;not null" json:"local_project_code"`
	Status            string         `gorm:"column:status;type:varchar(32);not null;default:'Non applicabile'" json:"status"`
	ProceduralState   string         `gorm:"column:procedural_state;type:varchar(64)" json:"procedural_state"`
	Title             string         `gorm:"column:title" json:"title"`
	SectorDescription *string        `gorm:"column:sector_description" json:"sector_description"`
	SyntheticTheme    *string        `gorm:"column:synthetic_theme" json:"synthetic_theme"`
	CupTypology       *string        `gorm:"column:cup_typology" json:"cup_typology"`
	IsCrossCutting    bool           `gorm:"column:is_cross_cutting;not null;default:false" json:"is_cross_cutting"`
	Locations         []Location     `gorm:"many2many:project_locations" json:"locations,omitempty"`
	Fundings          []Funding      `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"fundings,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Project) TableName() string {
	return "projects"
}
