package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"hilalbot/internal/entities"
)

type UsageRepository struct {
	db *pgxpool.Pool
}

func NewUsageRepository(db *pgxpool.Pool) *UsageRepository {
	return &UsageRepository{db: db}
}

type DailyUsage struct {
	Date     string `json:"date"`
	Requests int    `json:"requests"`
	Errors   int    `json:"errors"`
}

type TopUser struct {
	TelegramID string `json:"telegram_id"`
	Bot        string `json:"bot"`
	Requests   int    `json:"requests"`
}

type UsageTotals struct {
	TotalRequests int     `json:"total_requests"`
	TotalErrors   int     `json:"total_errors"`
	AvgProcessMs  float64 `json:"avg_processing_ms"`
	TodayRequests int     `json:"today_requests"`
}

func (r *UsageRepository) Insert(rec *entities.UsageRecord) error {
	_, err := r.db.Exec(context.Background(), `
		INSERT INTO usage_records (telegram_id, bot, type, original_text, corrected_text, errors_count, processing_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.TelegramID, rec.Bot, rec.Type, rec.OriginalText, rec.CorrectedText,
		rec.ErrorsCount, rec.ProcessingMs)
	return err
}

// Totals aggregates the headline dashboard numbers, optionally filtered to
// one bot variant (empty bot means both).
func (r *UsageRepository) Totals(bot string) (*UsageTotals, error) {
	var t UsageTotals
	err := r.db.QueryRow(context.Background(), `
		SELECT COUNT(*),
			COALESCE(SUM(errors_count), 0),
			COALESCE(AVG(processing_ms), 0),
			COUNT(*) FILTER (WHERE created_at >= CURRENT_DATE)
		FROM usage_records
		WHERE ($1 = '' OR bot = $1)
	`, bot).Scan(&t.TotalRequests, &t.TotalErrors, &t.AvgProcessMs, &t.TodayRequests)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Daily returns a per-day request/error series for the last N days.
func (r *UsageRepository) Daily(bot string, days int) ([]DailyUsage, error) {
	start := time.Now().AddDate(0, 0, -days)
	rows, err := r.db.Query(context.Background(), `
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD'), COUNT(*), COALESCE(SUM(errors_count), 0)
		FROM usage_records
		WHERE created_at >= $1 AND ($2 = '' OR bot = $2)
		GROUP BY created_at::date
		ORDER BY created_at::date ASC
	`, start, bot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	series := []DailyUsage{}
	for rows.Next() {
		var d DailyUsage
		if err := rows.Scan(&d.Date, &d.Requests, &d.Errors); err != nil {
			return nil, err
		}
		series = append(series, d)
	}
	return series, rows.Err()
}

// TopUsers returns the heaviest users by request count.
func (r *UsageRepository) TopUsers(bot string, limit int) ([]TopUser, error) {
	rows, err := r.db.Query(context.Background(), `
		SELECT telegram_id, bot, COUNT(*)
		FROM usage_records
		WHERE ($1 = '' OR bot = $1)
		GROUP BY telegram_id, bot
		ORDER BY COUNT(*) DESC
		LIMIT $2
	`, bot, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []TopUser{}
	for rows.Next() {
		var u TopUser
		if err := rows.Scan(&u.TelegramID, &u.Bot, &u.Requests); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Recent returns the newest processed requests for the admin activity feed.
func (r *UsageRepository) Recent(bot string, limit int) ([]entities.UsageRecord, error) {
	rows, err := r.db.Query(context.Background(), `
		SELECT id, telegram_id, bot, type, original_text, corrected_text, errors_count, processing_ms, created_at
		FROM usage_records
		WHERE ($1 = '' OR bot = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, bot, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []entities.UsageRecord{}
	for rows.Next() {
		var rec entities.UsageRecord
		if err := rows.Scan(&rec.ID, &rec.TelegramID, &rec.Bot, &rec.Type, &rec.OriginalText,
			&rec.CorrectedText, &rec.ErrorsCount, &rec.ProcessingMs, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
