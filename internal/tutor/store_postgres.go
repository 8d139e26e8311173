package tutor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const dbTimeout = 5 * time.Second

// PostgresStore is a PostgreSQL-backed ConversationStore, for deployments
// that want tutor history to outlive the process. The in-memory store
// remains the default.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed conversation store.
func NewPostgresStore(pool *pgxpool.Pool) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema creates the tutor tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tutor_conversations (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			lesson        TEXT NOT NULL,
			system_prompt TEXT NOT NULL,
			started_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			ended_at      TIMESTAMPTZ
		);
		CREATE TABLE IF NOT EXISTS tutor_messages (
			id              BIGSERIAL PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES tutor_conversations(id) ON DELETE CASCADE,
			role            TEXT NOT NULL,
			content         TEXT NOT NULL,
			model           TEXT,
			input_tokens    INT,
			output_tokens   INT,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS tutor_messages_conversation_idx
			ON tutor_messages (conversation_id, created_at);
	`)
	if err != nil {
		return fmt.Errorf("ensure tutor schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateConversation(conv Conversation) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if conv.Lesson == "" {
		return "", fmt.Errorf("lesson is required")
	}

	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tutor_conversations (lesson, system_prompt)
		 VALUES ($1, $2)
		 RETURNING id::text`,
		conv.Lesson,
		conv.SystemPrompt,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert conversation: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) GetConversation(id string) (*Conversation, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	conv := &Conversation{}
	var endedAt *time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, lesson, system_prompt, started_at, ended_at
		 FROM tutor_conversations
		 WHERE id = $1::uuid`,
		id,
	).Scan(&conv.ID, &conv.Lesson, &conv.SystemPrompt, &conv.StartedAt, &endedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("conversation not found: %s", id)
		}
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	conv.EndedAt = endedAt

	rows, err := s.pool.Query(ctx,
		`SELECT role, content, model, input_tokens, output_tokens, created_at
		 FROM tutor_messages
		 WHERE conversation_id = $1::uuid
		 ORDER BY created_at ASC, id ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg StoredMessage
		var model *string
		var inputTokens, outputTokens *int
		if err := rows.Scan(
			&msg.Role,
			&msg.Content,
			&model,
			&inputTokens,
			&outputTokens,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if model != nil {
			msg.Model = *model
		}
		if inputTokens != nil {
			msg.InputTokens = *inputTokens
		}
		if outputTokens != nil {
			msg.OutputTokens = *outputTokens
		}
		conv.Messages = append(conv.Messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return conv, nil
}

func (s *PostgresStore) AddMessage(conversationID string, msg StoredMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if msg.Role == "" {
		return fmt.Errorf("message role is required")
	}
	if msg.Content == "" {
		return fmt.Errorf("message content is required")
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	cmd, err := s.pool.Exec(ctx,
		`INSERT INTO tutor_messages (conversation_id, role, content, model, input_tokens, output_tokens, created_at)
		 SELECT c.id, $2, $3, $4, $5, $6, $7
		 FROM tutor_conversations c
		 WHERE c.id = $1::uuid`,
		conversationID,
		msg.Role,
		msg.Content,
		nullIfEmpty(msg.Model),
		nullIfZero(msg.InputTokens),
		nullIfZero(msg.OutputTokens),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("conversation not found: %s", conversationID)
	}
	return nil
}

func (s *PostgresStore) EndConversation(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	cmd, err := s.pool.Exec(ctx,
		`UPDATE tutor_conversations
		 SET ended_at = NOW()
		 WHERE id = $1::uuid`,
		id,
	)
	if err != nil {
		return fmt.Errorf("end conversation: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("conversation not found: %s", id)
	}
	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullIfZero(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
