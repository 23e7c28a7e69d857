package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLogger persists changes to the audit_logs table.
type PostgresLogger struct {
	pool *pgxpool.Pool
}

func NewPostgresLogger(pool *pgxpool.Pool) *PostgresLogger {
	return &PostgresLogger{pool: pool}
}

func (l *PostgresLogger) LogChange(ctx context.Context, change Change) error {
	if change.ID == "" {
		change.ID = uuid.New().String()
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now().UTC()
	}

	oldValues, err := marshalSnapshot(change.OldValues)
	if err != nil {
		return fmt.Errorf("marshal old values: %w", err)
	}
	newValues, err := marshalSnapshot(change.NewValues)
	if err != nil {
		return fmt.Errorf("marshal new values: %w", err)
	}

	_, err = l.pool.Exec(ctx, `
		INSERT INTO audit_logs (id, entity_type, entity_id, action, old_values, new_values, actor_id, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		change.ID, change.EntityType, change.EntityID, change.Action,
		oldValues, newValues, change.ActorID, change.IPAddress, change.UserAgent, change.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}

	return nil
}

// History returns the most recent changes for an entity, newest first.
func (l *PostgresLogger) History(ctx context.Context, entityType, entityID string, limit int) ([]Change, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, action, old_values, new_values, actor_id, ip_address, user_agent, created_at
		FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC
		LIMIT $3`,
		entityType, entityID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var changes []Change
	for rows.Next() {
		var change Change
		var oldValues, newValues []byte
		if err := rows.Scan(
			&change.ID, &change.EntityType, &change.EntityID, &change.Action,
			&oldValues, &newValues, &change.ActorID, &change.IPAddress, &change.UserAgent, &change.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		change.OldValues = unmarshalSnapshot(oldValues)
		change.NewValues = unmarshalSnapshot(newValues)
		changes = append(changes, change)
	}

	return changes, rows.Err()
}

func marshalSnapshot(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalSnapshot(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	return v
}
