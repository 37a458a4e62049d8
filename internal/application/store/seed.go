package store

import (
	"context"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/models"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type seedRegion struct {
	code      string
	name      string
	macroarea string
}

var regions = []seedRegion{
	{"001", "PIEMONTE", models.MacroareaCentroNord},
	{"002", "VALLE D'AOSTA", models.MacroareaCentroNord},
	{"003", "LOMBARDIA", models.MacroareaCentroNord},
	{"004", "TRENTINO-ALTO ADIGE", models.MacroareaCentroNord},
	{"005", "VENETO", models.MacroareaCentroNord},
	{"006", "FRIULI-VENEZIA GIULIA", models.MacroareaCentroNord},
	{"007", "LIGURIA", models.MacroareaCentroNord},
	{"008", "EMILIA-ROMAGNA", models.MacroareaCentroNord},
	{"009", "TOSCANA", models.MacroareaCentroNord},
	{"010", "UMBRIA", models.MacroareaCentroNord},
	{"011", "MARCHE", models.MacroareaCentroNord},
	{"012", "LAZIO", models.MacroareaCentroNord},
	{"013", "ABRUZZO", models.MacroareaMezzogiorno},
	{"014", "MOLISE", models.MacroareaMezzogiorno},
	{"015", "CAMPANIA", models.MacroareaMezzogiorno},
	{"016", "PUGLIA", models.MacroareaMezzogiorno},
	{"017", "BASILICATA", models.MacroareaMezzogiorno},
	{"018", "CALABRIA", models.MacroareaMezzogiorno},
	{"019", "SICILIA", models.MacroareaMezzogiorno},
	{"020", "SARDEGNA", models.MacroareaMezzogiorno},
	{"997", "PAESI EUROPEI", models.MacroareaEstero},
	{"000", "AMBITO NAZIONALE", models.MacroareaAmbitoNazionale},
}

// SeedRegions upserts the canonical region reference set so filters work
// before the first full import. Existing rows are updated in place.
func (r *Repository) SeedRegions(ctx context.Context) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, reg := range regions {
			if _, _, err := r.UpsertLocation(tx, reg.code, LocationAttrs{
				RegionName: reg.name,
				Macroarea:  reg.macroarea,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	log.Info().Int("regions", len(regions)).Msg("region reference set seeded")
	return nil
}
