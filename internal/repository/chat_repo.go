package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"homehelper-backend/internal/models"
)

type ChatRepo struct {
	pool *pgxpool.Pool
}

func NewChatRepo(pool *pgxpool.Pool) *ChatRepo {
	return &ChatRepo{pool: pool}
}

func (r *ChatRepo) Create(ctx context.Context, c *models.Chat) error {
	c.ID = uuid.New()

	query := `INSERT INTO chats (id, title, model)
		VALUES ($1, $2, $3) RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query, c.ID, c.Title, c.Model).
		Scan(&c.CreatedAt, &c.UpdatedAt)
}

// AppendMessage inserts the message and bumps the owning chat's updated_at.
func (r *ChatRepo) AppendMessage(ctx context.Context, m *models.Message) error {
	m.ID = uuid.New()

	err := r.pool.QueryRow(ctx,
		`INSERT INTO messages (id, chat_id, role, content)
		 VALUES ($1, $2, $3, $4) RETURNING timestamp`,
		m.ID, m.ChatID, m.Role, m.Content,
	).Scan(&m.Timestamp)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		"UPDATE chats SET updated_at = NOW() WHERE id = $1", m.ChatID)
	return err
}

// List returns all chats, most recently updated first, each annotated with
// its message count.
func (r *ChatRepo) List(ctx context.Context) ([]*models.Chat, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.title, c.model, c.created_at, c.updated_at,
		       COUNT(m.id) AS message_count
		FROM chats c
		LEFT JOIN messages m ON c.id = m.chat_id
		GROUP BY c.id
		ORDER BY c.updated_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		c := &models.Chat{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Model, &c.CreatedAt, &c.UpdatedAt, &c.MessageCount); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}

	return chats, rows.Err()
}

// GetByID returns the chat with its messages in chronological order, or
// (nil, nil) when no chat has that id.
func (r *ChatRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	c := &models.Chat{}
	err := r.pool.QueryRow(ctx,
		"SELECT id, title, model, created_at, updated_at FROM chats WHERE id = $1", id,
	).Scan(&c.ID, &c.Title, &c.Model, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, chat_id, role, content, timestamp
		 FROM messages WHERE chat_id = $1 ORDER BY timestamp ASC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		m := models.Message{}
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, err
		}
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	c.MessageCount = len(c.Messages)
	return c, nil
}

func (r *ChatRepo) Rename(ctx context.Context, id uuid.UUID, title string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE chats SET title = $1, updated_at = NOW() WHERE id = $2", title, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chat %s does not exist", id)
	}
	return nil
}

// Delete removes the chat; the messages go with it via ON DELETE CASCADE.
func (r *ChatRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM chats WHERE id = $1", id)
	return err
}
