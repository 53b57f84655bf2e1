package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/mkravets/effidash/internal/core/domain"
	"github.com/mkravets/effidash/internal/core/ports"
)

// DashboardUseCase normalizes dashboard query parameters and delegates to the
// repository.
type DashboardUseCase struct {
	repo ports.DashboardRepository
}

func NewDashboardUseCase(repo ports.DashboardRepository) *DashboardUseCase {
	return &DashboardUseCase{repo: repo}
}

func (uc *DashboardUseCase) Metrics(ctx context.Context, department, month string) (*domain.DeliveryMetrics, error) {
	return uc.repo.Metrics(ctx, normalizeDepartment(department), normalizeMonth(month))
}

func (uc *DashboardUseCase) Rankings(ctx context.Context, department, month, rankBy, sortOrder string) ([]domain.RankingEntry, error) {
	by := domain.RankingType(rankBy)
	switch by {
	case domain.RankByScore, domain.RankBySaturation, domain.RankByCode, domain.RankByDefects:
	case "":
		by = domain.RankByScore
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "rankings", fmt.Errorf("unknown ranking type %q", rankBy))
	}
	return uc.repo.Rankings(ctx, normalizeDepartment(department), normalizeMonth(month), by, sortOrder == "asc")
}

func (uc *DashboardUseCase) ProjectDetails(ctx context.Context, department, month string) ([]domain.ProjectDetail, error) {
	return uc.repo.ProjectDetails(ctx, normalizeDepartment(department), normalizeMonth(month))
}

func (uc *DashboardUseCase) Departments(ctx context.Context) ([]string, error) {
	return uc.repo.Departments(ctx)
}

// DateRange lists the months with data, falling back to the current month
// when the tables are empty.
func (uc *DashboardUseCase) DateRange(ctx context.Context) ([]string, error) {
	dates, err := uc.repo.DateRange(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		dates = []string{time.Now().Format("2006-01")}
	}
	return dates, nil
}

func (uc *DashboardUseCase) GetSettings(ctx context.Context) (*domain.Settings, error) {
	return uc.repo.GetSettings(ctx)
}

func (uc *DashboardUseCase) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	if settings.RefreshInterval <= 0 {
		return domain.WrapError(domain.ErrInvalidInput, "save settings", fmt.Errorf("refresh interval must be positive"))
	}
	return uc.repo.SaveSettings(ctx, settings)
}

func normalizeDepartment(department string) string {
	if department == "" {
		return domain.AllDepartments
	}
	return department
}

func normalizeMonth(month string) string {
	if month == "" {
		return time.Now().Format("2006-01")
	}
	return month
}
