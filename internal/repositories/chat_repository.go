package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"whatsclone/internal/models"
)

type ChatRepository interface {
	GetByID(ctx context.Context, id string) (*models.Chat, error)
	// FindByPair looks the pair up in either order.
	FindByPair(ctx context.Context, userA, userB string) (*models.Chat, error)
	// Create inserts the chat unless one already exists for the unordered pair;
	// it returns the id of whichever row ends up owning the pair.
	Create(ctx context.Context, chat *models.Chat) (string, error)
	// ListByMember returns the user's chats newest first. Each chat carries only
	// its newest message and the user's unread count.
	ListByMember(ctx context.Context, userID string) ([]*models.Chat, error)
}

type chatRepository struct {
	DB *sql.DB
}

func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepository{DB: db}
}

const chatSelect = `
	SELECT c.id, c.created_at, c.updated_at,
	       s.id, s.first_name, s.last_name, s.email, s.last_seen, s.created_at, s.updated_at,
	       r.id, r.first_name, r.last_name, r.email, r.last_seen, r.created_at, r.updated_at
	FROM chats c
	JOIN users s ON s.id = c.sender_id
	JOIN users r ON r.id = c.recipient_id
`

func scanChat(row rowScanner) (*models.Chat, error) {
	c := &models.Chat{Sender: &models.User{}, Recipient: &models.User{}}
	var sSeen, rSeen sql.NullTime
	if err := row.Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt,
		&c.Sender.ID, &c.Sender.FirstName, &c.Sender.LastName, &c.Sender.Email, &sSeen, &c.Sender.CreatedAt, &c.Sender.UpdatedAt,
		&c.Recipient.ID, &c.Recipient.FirstName, &c.Recipient.LastName, &c.Recipient.Email, &rSeen, &c.Recipient.CreatedAt, &c.Recipient.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if sSeen.Valid {
		c.Sender.LastSeen = sSeen.Time
	}
	if rSeen.Valid {
		c.Recipient.LastSeen = rSeen.Time
	}
	return c, nil
}

func (r *chatRepository) GetByID(ctx context.Context, id string) (*models.Chat, error) {
	return scanChat(r.DB.QueryRowContext(ctx, chatSelect+` WHERE c.id = $1`, id))
}

func (r *chatRepository) FindByPair(ctx context.Context, userA, userB string) (*models.Chat, error) {
	return scanChat(r.DB.QueryRowContext(ctx, chatSelect+`
		WHERE (c.sender_id = $1 AND c.recipient_id = $2)
		   OR (c.sender_id = $2 AND c.recipient_id = $1)
	`, userA, userB))
}

func (r *chatRepository) Create(ctx context.Context, chat *models.Chat) (string, error) {
	const q = `
		INSERT INTO chats (id, sender_id, recipient_id)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
		RETURNING id, created_at, updated_at
	`
	err := r.DB.QueryRowContext(ctx, q, chat.ID, chat.Sender.ID, chat.Recipient.ID).
		Scan(&chat.ID, &chat.CreatedAt, &chat.UpdatedAt)
	if err == nil {
		return chat.ID, nil
	}
	if isForeignKeyViolation(err) {
		return "", fmt.Errorf("insert chat: %w", ErrReferenceMissing)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("insert chat: %w", err)
	}

	// lost the race against a concurrent insert for the same pair
	existing, err := r.FindByPair(ctx, chat.Sender.ID, chat.Recipient.ID)
	if err != nil {
		return "", fmt.Errorf("reload chat for pair: %w", err)
	}
	return existing.ID, nil
}

func (r *chatRepository) ListByMember(ctx context.Context, userID string) ([]*models.Chat, error) {
	rows, err := r.DB.QueryContext(ctx, chatSelect+`
		WHERE c.sender_id = $1 OR c.recipient_id = $1
		ORDER BY c.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		chats []*models.Chat
		ids   []string
		byID  = map[string]*models.Chat{}
	)
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, c)
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return chats, nil
	}

	// newest message per chat plus the viewer's unread count, in one pass
	msgRows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT ON (chat_id) `+messageColumns+`,
		       COUNT(*) FILTER (WHERE state = 'SENT' AND receiver_id = $2) OVER (PARTITION BY chat_id)
		FROM messages
		WHERE chat_id = ANY($1::uuid[])
		ORDER BY chat_id, created_at DESC, id DESC
	`, pq.Array(ids), userID)
	if err != nil {
		return nil, fmt.Errorf("load chat previews: %w", err)
	}
	defer msgRows.Close()

	for _, c := range chats {
		c.Unread = map[string]int{userID: 0}
	}
	for msgRows.Next() {
		var unread int
		m, err := scanMessage(msgRows, &unread)
		if err != nil {
			return nil, err
		}
		if c, ok := byID[m.ChatID]; ok {
			c.Messages = []*models.Message{m}
			c.Unread[userID] = unread
		}
	}
	return chats, msgRows.Err()
}
