package analytics

import (
	"context"
	"fmt"
	"strings"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/models"

	"gorm.io/gorm"
)

// BigProjectThreshold classifies a project as "big" when its gross funding
// reaches this amount. The boundary is inclusive.
const BigProjectThreshold = 50_000_000

// Funding-source categories in dashboard order. Stato aggregates the five
// state sub-funds. Each category maps to a fixed set of columns: the set is
// enumerated here so a filter value can never reach the database as a
// column name.
var fundingSourceColumns = map[string][]string{
	"UE":             {"eu_funds", "eu_funds_fesr", "eu_funds_fse", "eu_funds_feasr", "eu_funds_feamp", "eu_funds_iog"},
	"Stato":          {"state_rotating_fund", "state_fsc", "state_pac", "state_completions", "state_other_measures"},
	"Regioni":        {"regional_funds"},
	"Privato":        {"private_funds"},
	"Comune":         {"municipal_funds"},
	"Provincia":      {"provincial_funds"},
	"Altro Pubblico": {"other_public_funds"},
}

var fundingSourceOrder = []string{"UE", "Stato", "Regioni", "Privato", "Comune", "Provincia", "Altro Pubblico"}

// Service runs read-only aggregations. Safe for concurrent use; every
// query goes through the caller's context.
type Service struct {
	DB *gorm.DB
}

// StatusCounts partitions a filtered project set by status. Each project
// lands in exactly one bucket; Total counts them all, including the
// not-applicable remainder.
type StatusCounts struct {
	Total      int64 `json:"total"`
	NotStarted int64 `json:"not_started"`
	InProgress int64 `json:"in_progress"`
	Concluded  int64 `json:"concluded"`
	Liquidated int64 `json:"liquidated"`
}

// ProjectRanking is one entry of the top-projects leaderboard.
type ProjectRanking struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	TotalFinancing float64 `json:"total_financing"`
	Region         string  `json:"region"`
	Macroarea      string  `json:"macroarea"`
}

// SectorRanking is one entry of the top-sectors leaderboard.
type SectorRanking struct {
	Name           string  `json:"name"`
	TotalFinancing float64 `json:"total_financing"`
}

// TypologyRanking is one entry of the CUP-typology leaderboard.
type TypologyRanking struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

// ThematicRanking is one entry of the synthetic-theme leaderboard.
type ThematicRanking struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// FundsGap reports projects whose savings leave a funding hole.
type FundsGap struct {
	ProjectsWithGap    int64   `json:"number_of_projects_with_gap"`
	TotalMissingAmount float64 `json:"total_missing_amount"`
}

// PaymentsGap is the global realized-vs-paid picture.
type PaymentsGap struct {
	TotalRealizedCost float64 `json:"total_realized_cost"`
	TotalPaymentsMade float64 `json:"total_payments_made"`
	OverallDifference float64 `json:"overall_difference"`
}

// filteredProjects scopes a projects query to the filter. Region and
// macroarea restrict via EXISTS over the m2m location set, so a project
// spanning several regions is matched once, never duplicated.
func (s *Service) filteredProjects(ctx context.Context, f Filter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.Project{})
	return applyFilter(q, f)
}

// filteredFundings scopes a fundings query to the filter through a join on
// the owning project.
func (s *Service) filteredFundings(ctx context.Context, f Filter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.Funding{}).
		Joins("JOIN projects ON projects.id = fundings.project_id AND projects.deleted_at IS NULL")
	return applyFilter(q, f)
}

func applyFilter(q *gorm.DB, f Filter) *gorm.DB {
	if region, ok := f.region(); ok {
		q = q.Where(`EXISTS (
			SELECT 1 FROM project_locations pl
			JOIN locations l ON l.id = pl.location_id AND l.deleted_at IS NULL
			WHERE pl.project_id = projects.id AND l.region_code = ?)`, region)
	}
	if macroarea, ok := f.macroarea(); ok {
		q = q.Where(`EXISTS (
			SELECT 1 FROM project_locations pl
			JOIN locations l ON l.id = pl.location_id AND l.deleted_at IS NULL
			WHERE pl.project_id = projects.id AND l.macroarea = ?)`, macroarea)
	}
	if f.IsCrossCutting != nil {
		q = q.Where("projects.is_cross_cutting = ?", *f.IsCrossCutting)
	}
	if source, ok := f.fundingSource(); ok {
		cols, known := fundingSourceColumns[source]
		if !known {
			// Unknown category matches nothing rather than failing.
			return q.Where("1 = 0")
		}
		q = q.Where(fmt.Sprintf(`EXISTS (
			SELECT 1 FROM fundings fs
			WHERE fs.project_id = projects.id AND fs.deleted_at IS NULL AND (%s) > 0)`,
			sumExpr("fs.", cols)))
	}
	return q
}

// sumExpr builds "p.a + p.b + p.c" from an enumerated column list.
func sumExpr(prefix string, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = prefix + c
	}
	return strings.Join(parts, " + ")
}

// CountProjects returns the number of distinct projects matching the filter.
func (s *Service) CountProjects(ctx context.Context, f Filter) (int64, error) {
	var n int64
	if err := s.filteredProjects(ctx, f).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// CountProjectsByStatus partitions the filtered project set by status.
func (s *Service) CountProjectsByStatus(ctx context.Context, f Filter) (StatusCounts, error) {
	var rows []struct {
		Status string
		N      int64
	}
	err := s.filteredProjects(ctx, f).
		Select("projects.status AS status, COUNT(*) AS n").
		Group("projects.status").
		Scan(&rows).Error
	if err != nil {
		return StatusCounts{}, fmt.Errorf("count projects by status: %w", err)
	}

	var out StatusCounts
	for _, row := range rows {
		out.Total += row.N
		switch row.Status {
		case models.StatusNotStarted:
			out.NotStarted = row.N
		case models.StatusInProgress:
			out.InProgress = row.N
		case models.StatusConcluded:
			out.Concluded = row.N
		case models.StatusLiquidated:
			out.Liquidated = row.N
		}
	}
	return out, nil
}

// SumFundingGross sums total_funds_gross over the filtered set. An empty
// set sums to 0, never null.
func (s *Service) SumFundingGross(ctx context.Context, f Filter) (float64, error) {
	var total float64
	err := s.filteredFundings(ctx, f).
		Select("COALESCE(SUM(fundings.total_funds_gross), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum funding gross: %w", err)
	}
	return total, nil
}

// CountBigProjects counts filtered projects whose gross funding reaches the
// threshold (inclusive).
func (s *Service) CountBigProjects(ctx context.Context, f Filter) (int64, error) {
	var n int64
	err := s.filteredProjects(ctx, f).
		Where(`EXISTS (
			SELECT 1 FROM fundings fb
			WHERE fb.project_id = projects.id AND fb.deleted_at IS NULL
			AND fb.total_funds_gross >= ?)`, float64(BigProjectThreshold)).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count big projects: %w", err)
	}
	return n, nil
}

// FundingByMacroarea sums gross funding grouped by the macroarea of each
// associated location. A project spanning several macroareas contributes
// its full amount to every one it touches; the dashboard charts rely on
// that per-area view, so no double-counting guard is applied.
func (s *Service) FundingByMacroarea(ctx context.Context, f Filter) (map[string]float64, error) {
	var rows []struct {
		Macroarea string
		Total     float64
	}
	err := s.filteredFundings(ctx, f).
		Joins("JOIN project_locations pl ON pl.project_id = projects.id").
		Joins("JOIN locations ON locations.id = pl.location_id AND locations.deleted_at IS NULL").
		Select("locations.macroarea AS macroarea, COALESCE(SUM(fundings.total_funds_gross), 0) AS total").
		Group("locations.macroarea").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("funding by macroarea: %w", err)
	}

	out := make(map[string]float64, len(rows))
	for _, row := range rows {
		out[row.Macroarea] = row.Total
	}
	return out, nil
}

// TopProjects returns the n best funded projects, gross funding descending,
// ties broken by project code ascending. Region and macroarea are
// comma-joined over every associated location.
func (s *Service) TopProjects(ctx context.Context, f Filter, n int) ([]ProjectRanking, error) {
	var rows []struct {
		ProjectID uint
		Code      string
		Title     string
		Total     float64
	}
	err := s.filteredProjects(ctx, f).
		Joins("LEFT JOIN fundings ON fundings.project_id = projects.id AND fundings.deleted_at IS NULL").
		Select("projects.id AS project_id, projects.local_project_code AS code, projects.title AS title, COALESCE(SUM(fundings.total_funds_gross), 0) AS total").
		Group("projects.id, projects.local_project_code, projects.title").
		Order("total DESC, projects.local_project_code ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top projects: %w", err)
	}

	out := make([]ProjectRanking, 0, len(rows))
	for _, row := range rows {
		var locs []models.Location
		err := s.DB.WithContext(ctx).
			Joins("JOIN project_locations pl ON pl.location_id = locations.id").
			Where("pl.project_id = ?", row.ProjectID).
			Order("locations.region_name ASC").
			Find(&locs).Error
		if err != nil {
			return nil, fmt.Errorf("top projects locations: %w", err)
		}

		names := make([]string, 0, len(locs))
		areas := make([]string, 0, len(locs))
		seenArea := make(map[string]struct{}, len(locs))
		for _, l := range locs {
			names = append(names, l.RegionName)
			if _, dup := seenArea[l.Macroarea]; !dup {
				seenArea[l.Macroarea] = struct{}{}
				areas = append(areas, l.Macroarea)
			}
		}
		out = append(out, ProjectRanking{
			ID:             row.Code,
			Title:          row.Title,
			TotalFinancing: row.Total,
			Region:         strings.Join(names, ", "),
			Macroarea:      strings.Join(areas, ", "),
		})
	}
	return out, nil
}

// TopSectors groups filtered funding by the owning project's sector
// description, falling back to the synthetic theme when the sector is
// blank, and returns the n largest groups. Ties break by name ascending.
func (s *Service) TopSectors(ctx context.Context, f Filter, n int) ([]SectorRanking, error) {
	var rows []SectorRanking
	err := s.filteredFundings(ctx, f).
		Select("COALESCE(NULLIF(projects.sector_description, ''), NULLIF(projects.synthetic_theme, ''), 'Non classificato') AS name, " +
			"COALESCE(SUM(fundings.total_funds_gross), 0) AS total_financing").
		Group("COALESCE(NULLIF(projects.sector_description, ''), NULLIF(projects.synthetic_theme, ''), 'Non classificato')").
		Order("total_financing DESC, name ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top sectors: %w", err)
	}
	return rows, nil
}

// TopProjectTypologies returns the n best funded CUP typologies, excluding
// projects with no typology at all.
func (s *Service) TopProjectTypologies(ctx context.Context, f Filter, n int) ([]TypologyRanking, error) {
	var rows []TypologyRanking
	err := s.filteredFundings(ctx, f).
		Where("projects.cup_typology IS NOT NULL AND projects.cup_typology <> ''").
		Select("projects.cup_typology AS type, COALESCE(SUM(fundings.total_funds_gross), 0) AS amount").
		Group("projects.cup_typology").
		Order("amount DESC, type ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top project typologies: %w", err)
	}
	return rows, nil
}

// TopThematicObjectives returns the n best funded synthetic themes,
// excluding projects with no theme.
func (s *Service) TopThematicObjectives(ctx context.Context, f Filter, n int) ([]ThematicRanking, error) {
	var rows []ThematicRanking
	err := s.filteredFundings(ctx, f).
		Where("projects.synthetic_theme IS NOT NULL AND projects.synthetic_theme <> ''").
		Select("projects.synthetic_theme AS description, COALESCE(SUM(fundings.total_funds_gross), 0) AS amount").
		Group("projects.synthetic_theme").
		Order("amount DESC, description ASC").
		Limit(n).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("top thematic objectives: %w", err)
	}
	return rows, nil
}

// FundingSourcesBreakdown sums the raw amounts of the filtered set into the
// seven canonical source categories.
func (s *Service) FundingSourcesBreakdown(ctx context.Context, f Filter) (map[string]float64, error) {
	selects := make([]string, 0, len(fundingSourceOrder))
	for i, cat := range fundingSourceOrder {
		selects = append(selects, fmt.Sprintf("COALESCE(SUM(%s), 0) AS c%d", sumExpr("fundings.", fundingSourceColumns[cat]), i))
	}

	row := make(map[string]interface{})
	err := s.filteredFundings(ctx, f).
		Select(strings.Join(selects, ", ")).
		Take(&row).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("funding sources breakdown: %w", err)
	}

	out := make(map[string]float64, len(fundingSourceOrder))
	for i, cat := range fundingSourceOrder {
		out[cat] = toFloat(row[fmt.Sprintf("c%d", i)])
	}
	return out, nil
}

// Keys of the specific sub-fund contributions, matching the dashboard's
// series names.
var specificFunds = []struct {
	key    string
	column string
}{
	{"FESR_UE", "eu_funds_fesr"},
	{"FSE_UE", "eu_funds_fse"},
	{"FSC_Stato", "state_fsc"},
	{"Fondo_di_Rotazione_Stato", "state_rotating_fund"},
	{"FEASR_UE", "eu_funds_feasr"},
	{"FEAMP_UE", "eu_funds_feamp"},
	{"IOG_UE", "eu_funds_iog"},
	{"PAC_Stato", "state_pac"},
	{"Completamenti_Stato", "state_completions"},
	{"Altri_Stato", "state_other_measures"},
}

// SpecificFundsContribution sums each EU/state sub-fund over the filtered set.
func (s *Service) SpecificFundsContribution(ctx context.Context, f Filter) (map[string]float64, error) {
	selects := make([]string, len(specificFunds))
	for i, sf := range specificFunds {
		selects[i] = fmt.Sprintf("COALESCE(SUM(fundings.%s), 0) AS c%d", sf.column, i)
	}

	row := make(map[string]interface{})
	err := s.filteredFundings(ctx, f).
		Select(strings.Join(selects, ", ")).
		Take(&row).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("specific funds contribution: %w", err)
	}

	out := make(map[string]float64, len(specificFunds))
	for i, sf := range specificFunds {
		out[sf.key] = toFloat(row[fmt.Sprintf("c%d", i)])
	}
	return out, nil
}

// FundsToBeFound counts and sums the filtered projects whose total savings
// leave a gap to cover.
func (s *Service) FundsToBeFound(ctx context.Context, f Filter) (FundsGap, error) {
	var row struct {
		N     int64
		Total float64
	}
	err := s.filteredFundings(ctx, f).
		Where("fundings.total_savings > 0").
		Select("COUNT(*) AS n, COALESCE(SUM(fundings.total_savings), 0) AS total").
		Scan(&row).Error
	if err != nil {
		return FundsGap{}, fmt.Errorf("funds to be found: %w", err)
	}
	return FundsGap{ProjectsWithGap: row.N, TotalMissingAmount: row.Total}, nil
}

// PaymentsRealizationGap is the global, unfiltered spread between gross and
// net totals.
func (s *Service) PaymentsRealizationGap(ctx context.Context) (PaymentsGap, error) {
	var row struct {
		Gross float64
		Net   float64
	}
	err := s.DB.WithContext(ctx).Model(&models.Funding{}).
		Select("COALESCE(SUM(total_funds_gross), 0) AS gross, COALESCE(SUM(total_funds_net), 0) AS net").
		Scan(&row).Error
	if err != nil {
		return PaymentsGap{}, fmt.Errorf("payments realization gap: %w", err)
	}
	return PaymentsGap{
		TotalRealizedCost: row.Gross,
		TotalPaymentsMade: row.Net,
		OverallDifference: row.Gross - row.Net,
	}, nil
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case float64:
		return x
	case float32:
		return float64(x)
	case int64:
		return float64(x)
	case int:
		return float64(x)
	}
	return 0
}
