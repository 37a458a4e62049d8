package models

import (
	"time"

	"gorm.io/gorm"
)

// Macro-area values as they appear in the OC_MACROAREA column.
const (
	MacroareaCentroNord      = "CENTRO-NORD"
	MacroareaMezzogiorno     = "MEZZOGIORNO"
	MacroareaEstero          = "ESTERO"
	MacroareaAmbitoNazionale = "AMBITO NAZIONALE"
	MacroareaTrasversale     = "TRASVERSALE"
	MacroareaAltro           = "ALTRO"
)

// Location is a geographic unit, in practice one region. The comune and
// provincia columns exist in the source extract but the import path only
// populates region-level rows. region_code is the natural key: a re-import
// updates region_name/macroarea in place instead of inserting a duplicate.
type Location struct {
	ID           uint           `gorm:"column:id;primaryKey" json:"id"`
	CommonCode   string         `gorm:"column:common_code;type:varchar(9)" json:"common_code"`
	CommonName   string         `gorm:"column:common_name;type:varchar(35)" json:"common_name"`
	ProvinceCode string         `gorm:"column:province_code;type:varchar(6)" json:"province_code"`
	ProvinceName string         `gorm:"column:province_name;type:varchar(21)" json:"province_name"`
	RegionCode   string         `gorm:"column:region_code;type:varchar(4);uniqueIndex;not null" json:"region_code"`
	RegionName   string         `gorm:"column:region_name;type:varchar(35)" json:"region_name"`
	Macroarea    string         `gorm:"column:macroarea;type:varchar(16);not null;default:'ALTRO'" json:"macroarea"`
	Projects     []Project      `gorm:"many2many:project_locations" json:"-"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Location) TableName() string {
	return "locations"
}
