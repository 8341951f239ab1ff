package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hilalbot/internal/entities"
)

type PostRepository struct {
	db *pgxpool.Pool
}

func NewPostRepository(db *pgxpool.Pool) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `id, content, COALESCE(media_url, ''), COALESCE(media_path, ''), type,
	COALESCE(button_text, ''), COALESCE(button_url, ''), COALESCE(channel_id, ''),
	COALESCE(message_id, ''), status, scheduled_at, sent_at, broadcast_to_users,
	created_at, updated_at`

func scanPost(row interface{ Scan(...any) error }) (*entities.Post, error) {
	var p entities.Post
	err := row.Scan(&p.ID, &p.Content, &p.MediaURL, &p.MediaPath, &p.Type,
		&p.ButtonText, &p.ButtonURL, &p.ChannelID, &p.MessageID, &p.Status,
		&p.ScheduledAt, &p.SentAt, &p.BroadcastToUsers, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostRepository) Create(p *entities.Post) (*entities.Post, error) {
	if p.Status == "" {
		p.Status = entities.PostStatusDraft
	}
	if p.Type == "" {
		p.Type = entities.PostTypeText
	}
	row := r.db.QueryRow(context.Background(), `
		INSERT INTO posts (content, media_url, media_path, type, button_text, button_url,
			channel_id, status, scheduled_at, broadcast_to_users)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+postColumns,
		p.Content, p.MediaURL, p.MediaPath, p.Type, p.ButtonText, p.ButtonURL,
		p.ChannelID, p.Status, p.ScheduledAt, p.BroadcastToUsers)
	return scanPost(row)
}

func (r *PostRepository) GetByID(id int) (*entities.Post, error) {
	row := r.db.QueryRow(context.Background(),
		`SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
	p, err := scanPost(row)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *PostRepository) List() ([]entities.Post, error) {
	rows, err := r.db.Query(context.Background(),
		`SELECT `+postColumns+` FROM posts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []entities.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) Update(p *entities.Post) (*entities.Post, error) {
	row := r.db.QueryRow(context.Background(), `
		UPDATE posts
		SET content = $2, media_url = $3, media_path = $4, type = $5, button_text = $6,
			button_url = $7, channel_id = $8, scheduled_at = $9, broadcast_to_users = $10,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING `+postColumns,
		p.ID, p.Content, p.MediaURL, p.MediaPath, p.Type, p.ButtonText, p.ButtonURL,
		p.ChannelID, p.ScheduledAt, p.BroadcastToUsers)
	updated, err := scanPost(row)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostRepository) Delete(id int) (bool, error) {
	tag, err := r.db.Exec(context.Background(), `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Schedule moves a post into the scheduled state with its fire time.
func (r *PostRepository) Schedule(id int, at time.Time) (*entities.Post, error) {
	row := r.db.QueryRow(context.Background(), `
		UPDATE posts SET status = $2, scheduled_at = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING `+postColumns,
		id, entities.PostStatusScheduled, at)
	p, err := scanPost(row)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindDueBefore returns scheduled posts whose fire time has passed.
func (r *PostRepository) FindDueBefore(now time.Time) ([]entities.Post, error) {
	rows, err := r.db.Query(context.Background(),
		`SELECT `+postColumns+` FROM posts
		 WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		 ORDER BY scheduled_at ASC`,
		entities.PostStatusScheduled, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []entities.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func (r *PostRepository) MarkSent(id int, messageID string) error {
	_, err := r.db.Exec(context.Background(), `
		UPDATE posts SET status = $2, message_id = $3, sent_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`,
		id, entities.PostStatusSent, messageID)
	return err
}

// StatusCounts returns how many posts sit in each lifecycle state.
func (r *PostRepository) StatusCounts() (map[string]int, error) {
	rows, err := r.db.Query(context.Background(),
		`SELECT status, COUNT(*) FROM posts GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *PostRepository) MarkFailed(id int) error {
	_, err := r.db.Exec(context.Background(), `
		UPDATE posts SET status = $2, updated_at = CURRENT_TIMESTAMP WHERE id = $1`,
		id, entities.PostStatusFailed)
	return err
}
