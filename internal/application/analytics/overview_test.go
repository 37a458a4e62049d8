package analytics

import (
	"context"
	"testing"

	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOverview(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	out, err := s.BuildOverview(context.Background(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, SentinelNoFilter, out.Filters.Region)
	assert.Equal(t, SentinelNoFilter, out.Filters.Macroarea)
	assert.EqualValues(t, 4, out.NumberOfProjects)
	assert.Equal(t, 60_000_225.0, out.TotalFinancing)
	assert.EqualValues(t, 1, out.NumberEndedProjects)
	assert.EqualValues(t, 1, out.NumberNotStartedProjects)
	assert.EqualValues(t, 2, out.NumberProjectsInProgress)
	assert.EqualValues(t, 1, out.NumberBigProjects)
	// P1 (100) + P3 (100) + P4 (25) touch CENTRO-NORD; P2 + P3 touch MEZZOGIORNO.
	assert.Equal(t, 225.0, out.MiddleNorthFinancing)
	assert.Equal(t, 60_000_100.0, out.MiddayFinancing)
	assert.Equal(t, 0.0, out.NationalFinancing)
	assert.Equal(t, 0.0, out.AbroadFinancing)
	require.NotEmpty(t, out.TopProjects)
	assert.Equal(t, "P2", out.TopProjects[0].ID)
	assert.LessOrEqual(t, len(out.TopSectors), 3)
}

func TestBuildOverview_FilterEcho(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	out, err := s.BuildOverview(context.Background(), Filter{Region: "015"})
	require.NoError(t, err)
	assert.Equal(t, "015", out.Filters.Region)
	assert.Equal(t, SentinelNoFilter, out.Filters.Macroarea)
	assert.EqualValues(t, 2, out.NumberOfProjects)
}

func TestBuildFinancialAnalysis(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	out, err := s.BuildFinancialAnalysis(context.Background(), Filter{})
	require.NoError(t, err)

	assert.Equal(t, SentinelNoFilter, out.Filters.Macroarea)
	assert.Equal(t, 60_000_000.0, out.FundingSourcesAnalysis["Stato"])
	assert.Equal(t, 100.0, out.FundingSourcesAnalysis["UE"])
	assert.Equal(t, 60_000_000.0, out.SpecificFunds["FSC_Stato"])
	assert.Len(t, out.TopProjectTypologies, 2)
	assert.EqualValues(t, 1, out.FundsToBeFound.ProjectsWithGap)
	assert.Equal(t, 10.0, out.PaymentsRealizationGap.OverallDifference)
}

// The payments gap stays global even under a filter.
func TestBuildFinancialAnalysis_PaymentsGapIgnoresFilter(t *testing.T) {
	s := setupService(t)
	fixture(t, s)

	out, err := s.BuildFinancialAnalysis(context.Background(), Filter{Macroarea: models.MacroareaMezzogiorno})
	require.NoError(t, err)
	assert.Equal(t, 60_000_225.0, out.PaymentsRealizationGap.TotalRealizedCost)
}
