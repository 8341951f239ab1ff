package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"hilalbot/internal/entities"
)

type SubscriberRepository struct {
	db *pgxpool.Pool
}

func NewSubscriberRepository(db *pgxpool.Pool) *SubscriberRepository {
	return &SubscriberRepository{db: db}
}

const subscriberColumns = `id, bot, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''),
	COALESCE(last_name, ''), language, total_requests, text_requests, voice_requests,
	image_requests, is_blocked, is_active, last_active_at, created_at`

func scanSubscriber(row interface{ Scan(...any) error }) (*entities.Subscriber, error) {
	var s entities.Subscriber
	err := row.Scan(&s.ID, &s.Bot, &s.TelegramID, &s.Username, &s.FirstName, &s.LastName,
		&s.Language, &s.TotalRequests, &s.TextRequests, &s.VoiceRequests, &s.ImageRequests,
		&s.IsBlocked, &s.IsActive, &s.LastActiveAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetOrCreate upserts the subscriber on first contact. Profile fields are
// refreshed on every call, so a renamed Telegram account stays current; a
// returning blocked user is unblocked since they clearly reached the bot.
func (r *SubscriberRepository) GetOrCreate(bot, telegramID, username, firstName, lastName, language string) (*entities.Subscriber, error) {
	row := r.db.QueryRow(context.Background(), `
		INSERT INTO subscribers (bot, telegram_id, username, first_name, last_name, language)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (bot, telegram_id)
		DO UPDATE SET username = $3, first_name = $4, last_name = $5,
			is_blocked = FALSE, is_active = TRUE, last_active_at = CURRENT_TIMESTAMP
		RETURNING `+subscriberColumns,
		bot, telegramID, username, firstName, lastName, language)
	return scanSubscriber(row)
}

// IncrementRequests bumps the per-kind counter atomically in SQL so
// concurrent handlers never lose updates.
func (r *SubscriberRepository) IncrementRequests(bot, telegramID, kind string) error {
	column := "text_requests"
	switch kind {
	case entities.RequestVoice, entities.RequestVideoNote, entities.RequestAudio:
		column = "voice_requests"
	case entities.RequestImage:
		column = "image_requests"
	}
	_, err := r.db.Exec(context.Background(), fmt.Sprintf(`
		UPDATE subscribers
		SET total_requests = total_requests + 1, %s = %s + 1,
			last_active_at = CURRENT_TIMESTAMP
		WHERE bot = $1 AND telegram_id = $2
	`, column, column), bot, telegramID)
	return err
}

// ListActive returns broadcast targets: active, non-blocked subscribers of
// one bot variant.
func (r *SubscriberRepository) ListActive(bot string) ([]entities.Subscriber, error) {
	rows, err := r.db.Query(context.Background(),
		`SELECT `+subscriberColumns+` FROM subscribers
		 WHERE bot = $1 AND is_active = TRUE AND is_blocked = FALSE
		 ORDER BY id ASC`, bot)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []entities.Subscriber{}
	for rows.Next() {
		s, err := scanSubscriber(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, *s)
	}
	return subs, rows.Err()
}

func (r *SubscriberRepository) SetBlocked(bot, telegramID string, blocked bool) error {
	_, err := r.db.Exec(context.Background(),
		`UPDATE subscribers SET is_blocked = $3 WHERE bot = $1 AND telegram_id = $2`,
		bot, telegramID, blocked)
	return err
}

// Counts returns total and active subscriber counts per bot variant.
func (r *SubscriberRepository) Counts(bot string) (total, active int, err error) {
	err = r.db.QueryRow(context.Background(), `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active AND NOT is_blocked)
		FROM subscribers WHERE bot = $1
	`, bot).Scan(&total, &active)
	return total, active, err
}
