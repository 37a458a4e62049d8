package analytics

import (
	"context"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/models"
)

// Overview is the "visione di insieme" dashboard block.
type Overview struct {
	Filters                  OverviewFilters  `json:"filters"`
	NumberOfProjects         int64            `json:"number_of_projects"`
	TotalFinancing           float64          `json:"total_financing"`
	NumberEndedProjects      int64            `json:"number_ended_projects"`
	NumberNotStartedProjects int64            `json:"number_not_started_projects"`
	NumberProjectsInProgress int64            `json:"number_projects_in_progress"`
	MiddayFinancing          float64          `json:"midday_financing"`
	MiddleNorthFinancing     float64          `json:"middle_north_financing"`
	NationalFinancing        float64          `json:"national_financing"`
	AbroadFinancing          float64          `json:"abroad_financing"`
	TopProjects              []ProjectRanking `json:"top_projects"`
	NumberBigProjects        int64            `json:"number_big_projects"`
	TopSectors               []SectorRanking  `json:"top_sectors"`
}

// OverviewFilters echoes the applied filter back to the dashboard.
type OverviewFilters struct {
	Region    string `json:"region"`
	Macroarea string `json:"macroarea"`
}

// FinancialAnalysis is the "analisi finanziaria" dashboard block.
type FinancialAnalysis struct {
	Filters                AnalysisFilters    `json:"filters"`
	FundingSourcesAnalysis map[string]float64 `json:"funding_sources_analysis"`
	SpecificFunds          map[string]float64 `json:"specific_funds_contribution"`
	TopThematicObjectives  []ThematicRanking  `json:"top10_thematic_objectives"`
	TopProjectTypologies   []TypologyRanking  `json:"top10_project_typologies"`
	FundsToBeFound         FundsGap           `json:"funds_to_be_found"`
	PaymentsRealizationGap PaymentsGap        `json:"payments_realization_gap"`
}

// AnalysisFilters echoes the applied filter back to the dashboard.
type AnalysisFilters struct {
	Macroarea     string `json:"macroarea"`
	FundingSource string `json:"funding_source"`
}

func echoOrSentinel(v string) string {
	if unrestricted(v) {
		return SentinelNoFilter
	}
	return v
}

// BuildOverview assembles the overview block from the individual
// aggregations under one filter.
func (s *Service) BuildOverview(ctx context.Context, f Filter) (*Overview, error) {
	count, err := s.CountProjects(ctx, f)
	if err != nil {
		return nil, err
	}
	total, err := s.SumFundingGross(ctx, f)
	if err != nil {
		return nil, err
	}
	statuses, err := s.CountProjectsByStatus(ctx, f)
	if err != nil {
		return nil, err
	}
	byArea, err := s.FundingByMacroarea(ctx, f)
	if err != nil {
		return nil, err
	}
	top, err := s.TopProjects(ctx, f, 10)
	if err != nil {
		return nil, err
	}
	big, err := s.CountBigProjects(ctx, f)
	if err != nil {
		return nil, err
	}
	sectors, err := s.TopSectors(ctx, f, 3)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Filters: OverviewFilters{
			Region:    echoOrSentinel(f.Region),
			Macroarea: echoOrSentinel(f.Macroarea),
		},
		NumberOfProjects:         count,
		TotalFinancing:           total,
		NumberEndedProjects:      statuses.Concluded,
		NumberNotStartedProjects: statuses.NotStarted,
		NumberProjectsInProgress: statuses.InProgress,
		MiddayFinancing:          byArea[models.MacroareaMezzogiorno],
		MiddleNorthFinancing:     byArea[models.MacroareaCentroNord],
		NationalFinancing:        byArea[models.MacroareaAmbitoNazionale],
		AbroadFinancing:          byArea[models.MacroareaEstero],
		TopProjects:              top,
		NumberBigProjects:        big,
		TopSectors:               sectors,
	}, nil
}

// BuildFinancialAnalysis assembles the financial-analysis block under one
// filter. The payments gap is global per its contract and ignores the
// filter.
func (s *Service) BuildFinancialAnalysis(ctx context.Context, f Filter) (*FinancialAnalysis, error) {
	sources, err := s.FundingSourcesBreakdown(ctx, f)
	if err != nil {
		return nil, err
	}
	specific, err := s.SpecificFundsContribution(ctx, f)
	if err != nil {
		return nil, err
	}
	themes, err := s.TopThematicObjectives(ctx, f, 10)
	if err != nil {
		return nil, err
	}
	typologies, err := s.TopProjectTypologies(ctx, f, 10)
	if err != nil {
		return nil, err
	}
	gap, err := s.FundsToBeFound(ctx, f)
	if err != nil {
		return nil, err
	}
	payments, err := s.PaymentsRealizationGap(ctx)
	if err != nil {
		return nil, err
	}

	return &FinancialAnalysis{
		Filters: AnalysisFilters{
			Macroarea:     echoOrSentinel(f.Macroarea),
			FundingSource: echoOrSentinel(f.FundingSource),
		},
		FundingSourcesAnalysis: sources,
		SpecificFunds:          specific,
		TopThematicObjectives:  themes,
		TopProjectTypologies:   typologies,
		FundsToBeFound:         gap,
		PaymentsRealizationGap: payments,
	}, nil
}
