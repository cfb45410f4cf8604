package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// EmailRecord is a stored donor email.
type EmailRecord struct {
	EmailID   string    `json:"email_id"`
	UserID    string    `json:"user_id"`
	Subject   string    `json:"subject"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

// SaveEmail inserts rec, assigning an id when EmailID is empty. It returns
// the id.
func (s *Store) SaveEmail(ctx context.Context, rec EmailRecord) (string, error) {
	if rec.EmailID == "" {
		rec.EmailID = uuid.NewString()
	}
	if rec.Category == "" {
		rec.Category = "general"
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	ins := builder.Insert("donor_emails").
		Columns("email_id", "user_id", "subject", "sender", "content", "category", "created_at").
		Values(rec.EmailID, rec.UserID, rec.Subject, rec.Sender, rec.Content, rec.Category, formatTime(rec.CreatedAt))
	if _, err := exec(ctx, s.db, ins); err != nil {
		return "", fmt.Errorf("save email: %w", err)
	}
	return rec.EmailID, nil
}

// ListEmails returns a user's emails newest first. limit <= 0 returns all.
func (s *Store) ListEmails(ctx context.Context, userID string, limit int) ([]EmailRecord, error) {
	sel := builder.Select("email_id", "user_id", "subject", "sender", "content", "category", "created_at").
		From(entsql.Table("donor_emails")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("rowid"))
	if limit > 0 {
		sel.Limit(limit)
	}

	rows, err := query(ctx, s.db, sel)
	if err != nil {
		return nil, fmt.Errorf("query emails: %w", err)
	}
	defer rows.Close()

	var out []EmailRecord
	for rows.Next() {
		var (
			rec     EmailRecord
			created string
		)
		if err := rows.Scan(&rec.EmailID, &rec.UserID, &rec.Subject, &rec.Sender, &rec.Content, &rec.Category, &created); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		if rec.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
