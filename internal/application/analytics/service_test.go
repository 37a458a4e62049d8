package analytics

import (
	"context"
	"testing"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Project{}, &models.Location{}, &models.Funding{}, &models.ImportRun{}))
	return &Service{DB: db}
}

func location(t *testing.T, db *gorm.DB, code, name, macroarea string) *models.Location {
	t.Helper()
	loc := &models.Location{CommonCode: code, CommonName: name, RegionCode: code, RegionName: name, Macroarea: macroarea}
	require.NoError(t, db.Create(loc).Error)
	return loc
}

type projectSpec struct {
	code      string
	status    string
	sector    string
	theme     string
	typology  string
	cross     bool
	locations []*models.Location
	funding   models.Funding
}

func project(t *testing.T, db *gorm.DB, spec projectSpec) *models.Project {
	t.Helper()
	p := &models.Project{
		LocalProjectCode: spec.code,
		Status:           spec.status,
		ProceduralState:  "In avvio",
		Title:            "Progetto " + spec.code,
		IsCrossCutting:   spec.cross,
	}
	if spec.sector != "" {
		p.SectorDescription = &spec.sector
	}
	if spec.theme != "" {
		p.SyntheticTheme = &spec.theme
	}
	if spec.typology != "" {
		p.CupTypology = &spec.typology
	}
	require.NoError(t, db.Create(p).Error)
	for _, loc := range spec.locations {
		require.NoError(t, db.Model(p).Association("Locations").Append(loc))
	}
	f := spec.funding
	f.ProjectID = p.ID
	f.RecomputeTotals()
	require.NoError(t, db.Create(&f).Error)
	return p
}

// fixture builds the shared dataset:
//
//	P1  001 PIEMONTE (CENTRO-NORD)   In corso    TRASPORTI    gross 100
//	P2  015 CAMPANIA (MEZZOGIORNO)   Concluso    theme only   gross 60M
//	P3  001+015 (both areas, cross)  In corso    AMBIENTE     gross 100
//	P4  001                          Non avviato CULTURA      gross 25, savings 10
func fixture(t *testing.T, s *Service) (piemonte, campania *models.Location) {
	piemonte = location(t, s.DB, "001", "PIEMONTE", models.MacroareaCentroNord)
	campania = location(t, s.DB, "015", "CAMPANIA", models.MacroareaMezzogiorno)

	project(t, s.DB, projectSpec{
		code: "P1", status: models.StatusInProgress, sector: "TRASPORTI", typology: "OPERE VIARIE",
		locations: []*models.Location{piemonte},
		funding:   models.Funding{EUFunds: 100},
	})
	project(t, s.DB, projectSpec{
		code: "P2", status: models.StatusConcluded, theme: "ISTRUZIONE",
		locations: []*models.Location{campania},
		funding:   models.Funding{StateFSC: 60_000_000},
	})
	project(t, s.DB, projectSpec{
		code: "P3", status: models.StatusInProgress, sector: "AMBIENTE", typology: "OPERE IDRICHE", cross: true,
		locations: []*models.Location{piemonte, campania},
		funding:   models.Funding{RegionalFunds: 100},
	})
	project(t, s.DB, projectSpec{
		code: "P4", status: models.StatusNotStarted, sector: "CULTURA",
		locations: []*models.Location{piemonte},
		funding:   models.Funding{PrivateFunds: 25, TotalSavings: 10},
	})
	return piemonte, campania
}

func TestCountProjects(t *testing.T) {
	s := setupService(t)
	fixture(t, s)
	ctx := context.Background()

	n, err := s.CountProjects(ctx, Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	n, err = s.CountProjects(ctx, Filter{Region: "001"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	n, err = s.CountProjects(ctx, Filter{Macroarea: models.MacroareaMezzogiorno})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

// A missing value and both dashboard sentinels mean the same thing.
func TestCountProjects_Sentinels(t *testing.T) {
	s := setupService(t)
	fixture(t, s)
	ctx := context.Background()

	for _, f := range []Filter{
		{},
		{Region: SentinelNoFilter, Macroarea: SentinelAll},
		{Region: "", Macroarea: SentinelNoFilter},
	} {
		n, err := s.CountProjects(ctx, f)
		require.NoError(t, err)
		assert.EqualValues(t, 4, n)
	}
}

// Unknown enum values match nothing instead of failing.
func TestCountProjects_UnknownFilterValues(t *testing.T) {
	s := setupService(t)
	fixture(t, s)
	ctx := context.Background()

	n, err := s.CountProjects(ctx, Filter{Macroarea: "ATLANTIDE"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	n, err = s.CountProjects(ctx, Filter{FundingSource: "Obbligazioni"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}

func TestCountProjects_CrossCuttingFilter(t *testing.T) {
	s := setupService(t)
	fixture(t, s)
	yes, no := true, false

	n, err := s.CountProjects(context.Background(), Filter{IsCrossCutting: &yes})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = s.CountProjects(context.Background(), Filter{IsCrossCutting: &no})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
}

func TestCountProjectsByStatus_PartitionSumsToTotal(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	counts, err := s.CountProjectsByStatus(context.Background(), Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, counts.Total)
	assert.EqualValues(t, 1, counts.NotStarted)
	assert.EqualValues(t, 2, counts.InProgress)
	assert.EqualValues(t, 1, counts.Concluded)
	assert.EqualValues(t, 0, counts.Liquidated)
	assert.Equal(t, counts.Total,
		counts.NotStarted+counts.InProgress+counts.Concluded+counts.Liquidated)
}

func TestSumFundingGross(t *testing.T) {
	s := setupService(t)
	fixture(t, s)
	ctx := context.Background()

	total, err := s.SumFundingGross(ctx, Filter{})
	require.NoError(t, err)
	assert.Equal(t, 60_000_225.0, total)

	total, err = s.SumFundingGross(ctx, Filter{Region: "015"})
	require.NoError(t, err)
	assert.Equal(t, 60_000_100.0, total)

	// Empty set sums to 0, never null.
	total, err = s.SumFundingGross(ctx, Filter{Region: "999"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

// The big-project boundary is inclusive: exactly 50M counts, a cent less
// does not.
func TestCountBigProjects_Boundary(t *testing.T) {
	s := setupService(t)
	loc := location(t, s.DB, "001", "PIEMONTE", models.MacroareaCentroNord)
	project(t, s.DB, projectSpec{
		code: "BIG", status: models.StatusInProgress,
		locations: []*models.Location{loc},
		funding:   models.Funding{EUFunds: 50_000_000},
	})
	project(t, s.DB, projectSpec{
		code: "ALMOST", status: models.StatusInProgress,
		locations: []*models.Location{loc},
		funding:   models.Funding{EUFunds: 49_999_999.99},
	})

	n, err := s.CountBigProjects(context.Background(), Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

// One project with locations in two macroareas contributes its full gross
// amount to both groups. The double count is the documented policy.
func TestFundingByMacroarea_DoubleCountsMultiRegionProjects(t *testing.T) {
	s := setupService(t)
	north := location(t, s.DB, "001", "PIEMONTE", models.MacroareaCentroNord)
	south := location(t, s.DB, "015", "CAMPANIA", models.MacroareaMezzogiorno)
	project(t, s.DB, projectSpec{
		code: "P1", status: models.StatusInProgress, cross: true,
		locations: []*models.Location{north, south},
		funding:   models.Funding{EUFunds: 100},
	})

	byArea, err := s.FundingByMacroarea(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		models.MacroareaCentroNord:  100,
		models.MacroareaMezzogiorno: 100,
	}, byArea)
}

func TestTopProjects_OrderAndJoinedRegions(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	top, err := s.TopProjects(context.Background(), Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, top, 4)

	assert.Equal(t, "P2", top[0].ID)
	assert.Equal(t, 60_000_000.0, top[0].TotalFinancing)
	// P1 and P3 both have gross 100: the tie breaks by project code.
	assert.Equal(t, "P1", top[1].ID)
	assert.Equal(t, "P3", top[2].ID)
	assert.Equal(t, "P4", top[3].ID)

	// Multi-region project lists every region and macroarea.
	assert.Equal(t, "CAMPANIA, PIEMONTE", top[2].Region)
	assert.Equal(t, "MEZZOGIORNO, CENTRO-NORD", top[2].Macroarea)
	assert.Equal(t, "PIEMONTE", top[1].Region)
}

func TestTopProjects_Limit(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	top, err := s.TopProjects(context.Background(), Filter{}, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "P2", top[0].ID)
}

func TestTopSectors_TopThreeDescending(t *testing.T) {
	s := setupService(t)
	loc := location(t, s.DB, "001", "PIEMONTE", models.MacroareaCentroNord)
	for _, c := range []struct {
		code   string
		sector string
		amount float64
	}{
		{"S1", "TRASPORTI", 500},
		{"S2", "ISTRUZIONE", 400},
		{"S3", "AMBIENTE", 300},
		{"S4", "CULTURA", 200},
	} {
		project(t, s.DB, projectSpec{
			code: c.code, status: models.StatusInProgress, sector: c.sector,
			locations: []*models.Location{loc},
			funding:   models.Funding{EUFunds: c.amount},
		})
	}

	top, err := s.TopSectors(context.Background(), Filter{}, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, SectorRanking{Name: "TRASPORTI", TotalFinancing: 500}, top[0])
	assert.Equal(t, SectorRanking{Name: "ISTRUZIONE", TotalFinancing: 400}, top[1])
	assert.Equal(t, SectorRanking{Name: "AMBIENTE", TotalFinancing: 300}, top[2])
}

// A blank sector falls back to the synthetic theme.
func TestTopSectors_ThemeFallback(t *testing.T) {
	s := setupService(t)
	loc := location(t, s.DB, "001", "PIEMONTE", models.MacroareaCentroNord)
	project(t, s.DB, projectSpec{
		code: "P1", status: models.StatusInProgress, theme: "ISTRUZIONE",
		locations: []*models.Location{loc},
		funding:   models.Funding{EUFunds: 100},
	})

	top, err := s.TopSectors(context.Background(), Filter{}, 3)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "ISTRUZIONE", top[0].Name)
}

func TestTopProjectTypologies_ExcludesBlank(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	top, err := s.TopProjectTypologies(context.Background(), Filter{}, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	// Both typologies carry 100: names break the tie.
	assert.Equal(t, TypologyRanking{Type: "OPERE IDRICHE", Amount: 100}, top[0])
	assert.Equal(t, TypologyRanking{Type: "OPERE VIARIE", Amount: 100}, top[1])
}

func TestFundingSourcesBreakdown(t *testing.T) {
	s := setupService(t)
	loc := location(t, s.DB, "001", "PIEMONTE", models.MacroareaCentroNord)
	project(t, s.DB, projectSpec{
		code: "P1", status: models.StatusInProgress,
		locations: []*models.Location{loc},
		funding: models.Funding{
			EUFunds: 10, EUFundsFESR: 5,
			StateRotatingFund: 1, StateFSC: 2, StatePAC: 3, StateCompletions: 4, StateOtherMeasures: 5,
			RegionalFunds: 7, PrivateFunds: 8, MunicipalFunds: 9, ProvincialFunds: 11, OtherPublicFunds: 12,
		},
	})

	out, err := s.FundingSourcesBreakdown(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 15.0, out["UE"])
	// Stato is the sum of its five sub-funds.
	assert.Equal(t, 15.0, out["Stato"])
	assert.Equal(t, 7.0, out["Regioni"])
	assert.Equal(t, 8.0, out["Privato"])
	assert.Equal(t, 9.0, out["Comune"])
	assert.Equal(t, 11.0, out["Provincia"])
	assert.Equal(t, 12.0, out["Altro Pubblico"])
}

func TestFundingSourcesBreakdown_EmptySetIsZeroes(t *testing.T) {
	s := setupService(t)

	out, err := s.FundingSourcesBreakdown(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, out, 7)
	for cat, v := range out {
		assert.Equal(t, 0.0, v, cat)
	}
}

func TestFundingSourceFilter(t *testing.T) {
	s := setupService(t)
	loc := location(t, s.DB, "001", "PIEMONTE", models.MacroareaCentroNord)
	project(t, s.DB, projectSpec{
		code: "EU", status: models.StatusInProgress,
		locations: []*models.Location{loc},
		funding:   models.Funding{EUFundsFSE: 100},
	})
	project(t, s.DB, projectSpec{
		code: "PRIV", status: models.StatusInProgress,
		locations: []*models.Location{loc},
		funding:   models.Funding{PrivateFunds: 50},
	})

	n, err := s.CountProjects(context.Background(), Filter{FundingSource: "UE"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	total, err := s.SumFundingGross(context.Background(), Filter{FundingSource: "Privato"})
	require.NoError(t, err)
	assert.Equal(t, 50.0, total)
}

func TestSpecificFundsContribution(t *testing.T) {
	s := setupService(t)
	loc := location(t, s.DB, "001", "PIEMONTE", models.MacroareaCentroNord)
	project(t, s.DB, projectSpec{
		code: "P1", status: models.StatusInProgress,
		locations: []*models.Location{loc},
		funding:   models.Funding{EUFundsFESR: 10, StateFSC: 20, StateRotatingFund: 30},
	})

	out, err := s.SpecificFundsContribution(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Equal(t, 10.0, out["FESR_UE"])
	assert.Equal(t, 20.0, out["FSC_Stato"])
	assert.Equal(t, 30.0, out["Fondo_di_Rotazione_Stato"])
	assert.Equal(t, 0.0, out["IOG_UE"])
}

func TestFundsToBeFound(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	gap, err := s.FundsToBeFound(context.Background(), Filter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, gap.ProjectsWithGap)
	assert.Equal(t, 10.0, gap.TotalMissingAmount)

	gap, err = s.FundsToBeFound(context.Background(), Filter{Region: "015"})
	require.NoError(t, err)
	assert.EqualValues(t, 0, gap.ProjectsWithGap)
	assert.Equal(t, 0.0, gap.TotalMissingAmount)
}

func TestPaymentsRealizationGap(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	gap, err := s.PaymentsRealizationGap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 60_000_225.0, gap.TotalRealizedCost)
	assert.Equal(t, 60_000_215.0, gap.TotalPaymentsMade)
	assert.Equal(t, 10.0, gap.OverallDifference)
}
