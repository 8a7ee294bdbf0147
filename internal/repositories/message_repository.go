package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"whatsclone/internal/models"
)

type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListByChat(ctx context.Context, chatID string) ([]*models.Message, error)
	// MarkSeen flips SENT messages addressed to receiverID in the chat to SEEN.
	MarkSeen(ctx context.Context, chatID, receiverID string) (int64, error)
}

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) MessageRepository {
	return &messageRepository{DB: db}
}

const messageColumns = `id, chat_id, content, state, type, sender_id, receiver_id, media_file_path, created_at, updated_at`

// scanMessage reads messageColumns followed by any extra columns.
func scanMessage(row rowScanner, extra ...interface{}) (*models.Message, error) {
	m := &models.Message{}
	var content, mediaPath sql.NullString
	dest := append([]interface{}{
		&m.ID, &m.ChatID, &content, &m.State, &m.Type,
		&m.SenderID, &m.ReceiverID, &mediaPath, &m.CreatedAt, &m.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if content.Valid {
		s := content.String
		m.Content = &s
	}
	if mediaPath.Valid {
		s := mediaPath.String
		m.MediaFilePath = &s
	}
	return m, nil
}

func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	const q = `
		INSERT INTO messages (chat_id, content, state, type, sender_id, receiver_id, media_file_path)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q,
		msg.ChatID, msg.Content, msg.State, msg.Type, msg.SenderID, msg.ReceiverID, msg.MediaFilePath,
	).Scan(&msg.ID, &msg.CreatedAt, &msg.UpdatedAt)
	if isForeignKeyViolation(err) {
		return fmt.Errorf("insert message into chat %s: %w", msg.ChatID, ErrReferenceMissing)
	}
	if err != nil {
		return fmt.Errorf("insert message into chat %s: %w", msg.ChatID, err)
	}
	return nil
}

func (r *messageRepository) ListByChat(ctx context.Context, chatID string) ([]*models.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE chat_id = $1
		ORDER BY created_at ASC, id ASC
	`, chatID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *messageRepository) MarkSeen(ctx context.Context, chatID, receiverID string) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE messages
		SET state = $1, updated_at = NOW()
		WHERE chat_id = $2 AND receiver_id = $3 AND state = $4
	`, models.MessageSeen, chatID, receiverID, models.MessageSent)
	if err != nil {
		return 0, fmt.Errorf("mark messages seen in chat %s: %w", chatID, err)
	}
	return res.RowsAffected()
}
