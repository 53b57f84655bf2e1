package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"github.com/mkravets/effidash/internal/core/domain"
)

// DashboardRepository serves the delivery-metrics dashboard. The
// all-departments view averages across departments; a named department reads
// its latest snapshot for the month.
type DashboardRepository struct {
	db *sql.DB
}

func NewDashboardRepository(db *sql.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) Metrics(ctx context.Context, department, month string) (*domain.DeliveryMetrics, error) {
	var row *sql.Row
	if department == "" || department == domain.AllDepartments {
		row = r.db.QueryRowContext(ctx, `
SELECT
	AVG(requirement_throughput), AVG(monthly_delivered_requirements), AVG(monthly_new_requirements),
	AVG(delivery_cycle_p75), AVG(online_defects), AVG(reopen_rate),
	AVG(emergency_releases), AVG(incident_count), AVG(work_saturation), AVG(code_equivalent)
FROM metrics
WHERE record_date = $1
`, month)
	} else {
		row = r.db.QueryRowContext(ctx, `
SELECT
	requirement_throughput, monthly_delivered_requirements, monthly_new_requirements,
	delivery_cycle_p75, online_defects, reopen_rate,
	emergency_releases, incident_count, work_saturation, code_equivalent
FROM metrics
WHERE department = $1 AND record_date = $2
ORDER BY created_at DESC
LIMIT 1
`, department, month)
	}

	var (
		throughput, delivered, added, defects sql.NullFloat64
		cycle, reopen, saturation             sql.NullFloat64
		emergency, incidents, codeEq          sql.NullFloat64
	)
	err := row.Scan(&throughput, &delivered, &added, &cycle, &defects, &reopen, &emergency, &incidents, &saturation, &codeEq)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.DeliveryMetrics{}, nil
		}
		return nil, fmt.Errorf("scan metrics: %w", err)
	}

	return &domain.DeliveryMetrics{
		RequirementThroughput:        int(throughput.Float64),
		MonthlyDeliveredRequirements: int(delivered.Float64),
		MonthlyNewRequirements:       int(added.Float64),
		DeliveryCycleP75:             round1(cycle.Float64),
		OnlineDefects:                int(defects.Float64),
		ReopenRate:                   round1(reopen.Float64),
		EmergencyReleases:            int(emergency.Float64),
		IncidentCount:                int(incidents.Float64),
		WorkSaturation:               round1(saturation.Float64),
		CodeEquivalent:               int(codeEq.Float64),
	}, nil
}

var rankingColumns = map[domain.RankingType]string{
	domain.RankByScore:      "score",
	domain.RankBySaturation: "work_saturation",
	domain.RankByCode:       "code_equivalent",
	domain.RankByDefects:    "defect_count",
}

func (r *DashboardRepository) Rankings(ctx context.Context, department, month string, by domain.RankingType, ascending bool) ([]domain.RankingEntry, error) {
	column, ok := rankingColumns[by]
	if !ok {
		column = rankingColumns[domain.RankByScore]
	}
	// Fewer defects rank higher, so the defect board flips the requested
	// direction.
	if by == domain.RankByDefects {
		ascending = !ascending
	}
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	var rows *sql.Rows
	var err error
	if department == "" || department == domain.AllDepartments {
		rows, err = r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT name, AVG(%s) AS value
FROM developer_rankings
WHERE record_date = $1
GROUP BY name
ORDER BY value %s
`, column, direction), month)
	} else {
		rows, err = r.db.QueryContext(ctx, fmt.Sprintf(`
SELECT name, %s AS value
FROM developer_rankings
WHERE department = $1 AND record_date = $2
ORDER BY value %s
`, column, direction), department, month)
	}
	if err != nil {
		return nil, fmt.Errorf("query rankings: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankingEntry
	for rows.Next() {
		var entry domain.RankingEntry
		var value sql.NullFloat64
		if err := rows.Scan(&entry.Name, &value); err != nil {
			return nil, fmt.Errorf("scan ranking row: %w", err)
		}
		if by == domain.RankBySaturation {
			entry.Value = round1(value.Float64)
		} else {
			entry.Value = math.Trunc(value.Float64)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ranking rows: %w", err)
	}
	return entries, nil
}

func (r *DashboardRepository) ProjectDetails(ctx context.Context, department, month string) ([]domain.ProjectDetail, error) {
	var rows *sql.Rows
	var err error
	if department == "" || department == domain.AllDepartments {
		rows, err = r.db.QueryContext(ctx, `
SELECT person_name, position_name, project_name, saturation, code_equivalent, delivered_requirements, total_hours, ai_usage_days
FROM project_details
WHERE record_date = $1
ORDER BY created_at DESC
`, month)
	} else {
		rows, err = r.db.QueryContext(ctx, `
SELECT person_name, position_name, project_name, saturation, code_equivalent, delivered_requirements, total_hours, ai_usage_days
FROM project_details
WHERE department = $1 AND record_date = $2
ORDER BY created_at DESC
`, department, month)
	}
	if err != nil {
		return nil, fmt.Errorf("query project details: %w", err)
	}
	defer rows.Close()

	var details []domain.ProjectDetail
	for rows.Next() {
		var d domain.ProjectDetail
		var saturation, hours, aiDays sql.NullFloat64
		var codeEq, delivered sql.NullInt64
		if err := rows.Scan(&d.PersonName, &d.PositionName, &d.ProjectName, &saturation, &codeEq, &delivered, &hours, &aiDays); err != nil {
			return nil, fmt.Errorf("scan project detail: %w", err)
		}
		d.Saturation = round1(saturation.Float64)
		d.CodeEquivalent = int(codeEq.Int64)
		d.DeliveredRequirements = int(delivered.Int64)
		d.TotalHours = round1(hours.Float64)
		d.AIUsageDays = round1(aiDays.Float64)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate project details: %w", err)
	}
	return details, nil
}

// Departments lists distinct departments with the all-departments pseudo
// entry first.
func (r *DashboardRepository) Departments(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT department FROM metrics ORDER BY department`)
	if err != nil {
		return nil, fmt.Errorf("query departments: %w", err)
	}
	defer rows.Close()

	departments := []string{domain.AllDepartments}
	for rows.Next() {
		var dept string
		if err := rows.Scan(&dept); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		if dept != domain.AllDepartments {
			departments = append(departments, dept)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate departments: %w", err)
	}
	return departments, nil
}

func (r *DashboardRepository) DateRange(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT DISTINCT record_date FROM metrics WHERE record_date IS NOT NULL ORDER BY record_date DESC
`)
	if err != nil {
		return nil, fmt.Errorf("query date range: %w", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan date: %w", err)
		}
		dates = append(dates, date)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dates: %w", err)
	}
	return dates, nil
}

func (r *DashboardRepository) GetSettings(ctx context.Context) (*domain.Settings, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT refresh_interval, email_notifications FROM settings ORDER BY updated_at DESC LIMIT 1
`)
	var settings domain.Settings
	err := row.Scan(&settings.RefreshInterval, &settings.EmailNotifications)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.Settings{RefreshInterval: 10, EmailNotifications: false}, nil
		}
		return nil, fmt.Errorf("scan settings: %w", err)
	}
	return &settings, nil
}

func (r *DashboardRepository) SaveSettings(ctx context.Context, settings *domain.Settings) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO settings (refresh_interval, email_notifications, updated_at) VALUES ($1,$2,now())
`, settings.RefreshInterval, settings.EmailNotifications)
	if err != nil {
		return fmt.Errorf("insert settings: %w", err)
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
