package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hilalbot/internal/entities"
)

type ChannelRepository struct {
	db *pgxpool.Pool
}

func NewChannelRepository(db *pgxpool.Pool) *ChannelRepository {
	return &ChannelRepository{db: db}
}

const channelColumns = `id, channel_id, channel_username, title, COALESCE(photo_url, ''),
	is_mandatory, is_active, created_at, updated_at`

func scanChannel(row interface{ Scan(...any) error }) (*entities.Channel, error) {
	var c entities.Channel
	err := row.Scan(&c.ID, &c.ChannelID, &c.ChannelUsername, &c.Title, &c.PhotoURL,
		&c.IsMandatory, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChannelRepository) Create(c *entities.Channel) (*entities.Channel, error) {
	row := r.db.QueryRow(context.Background(), `
		INSERT INTO channels (channel_id, channel_username, title, photo_url, is_mandatory, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+channelColumns,
		c.ChannelID, c.ChannelUsername, c.Title, c.PhotoURL, c.IsMandatory, c.IsActive)
	return scanChannel(row)
}

func (r *ChannelRepository) GetByID(id int) (*entities.Channel, error) {
	row := r.db.QueryRow(context.Background(),
		`SELECT `+channelColumns+` FROM channels WHERE id = $1`, id)
	c, err := scanChannel(row)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ChannelRepository) List() ([]entities.Channel, error) {
	return r.list(`SELECT ` + channelColumns + ` FROM channels ORDER BY id ASC`)
}

// GetMandatory returns the channels a user must join before the bot
// replies: active AND flagged mandatory.
func (r *ChannelRepository) GetMandatory() ([]entities.Channel, error) {
	return r.list(`SELECT ` + channelColumns + ` FROM channels
		WHERE is_mandatory = TRUE AND is_active = TRUE ORDER BY id ASC`)
}

func (r *ChannelRepository) list(query string) ([]entities.Channel, error) {
	rows, err := r.db.Query(context.Background(), query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	channels := []entities.Channel{}
	for rows.Next() {
		c, err := scanChannel(rows)
		if err != nil {
			return nil, err
		}
		channels = append(channels, *c)
	}
	return channels, rows.Err()
}

func (r *ChannelRepository) Update(c *entities.Channel) (*entities.Channel, error) {
	row := r.db.QueryRow(context.Background(), `
		UPDATE channels
		SET channel_id = $2, channel_username = $3, title = $4, photo_url = $5,
			is_mandatory = $6, is_active = $7, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING `+channelColumns,
		c.ID, c.ChannelID, c.ChannelUsername, c.Title, c.PhotoURL, c.IsMandatory, c.IsActive)
	updated, err := scanChannel(row)
	if err == pgx.ErrNoRows {
		return nil, nil // Not found
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *ChannelRepository) Delete(id int) (bool, error) {
	tag, err := r.db.Exec(context.Background(), `DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
