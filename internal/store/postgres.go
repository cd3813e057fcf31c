package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- admin accounts ----

func (s *PostgresStore) GetAdminByEmail(ctx context.Context, email string) (AdminAccount, error) {
	const query = `
		SELECT id, email, display_name, password_hash, role, disabled_at, created_at
		FROM admin_accounts WHERE LOWER(email) = LOWER($1)
	`
	var account AdminAccount
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&account.ID, &account.Email, &account.DisplayName, &account.PasswordHash,
		&account.Role, &account.DisabledAt, &account.CreatedAt,
	)
	if err != nil {
		return AdminAccount{}, err
	}
	return account, nil
}

func (s *PostgresStore) GetAdminByID(ctx context.Context, id string) (AdminAccount, error) {
	const query = `
		SELECT id, email, display_name, password_hash, role, disabled_at, created_at
		FROM admin_accounts WHERE id = $1
	`
	var account AdminAccount
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&account.ID, &account.Email, &account.DisplayName, &account.PasswordHash,
		&account.Role, &account.DisabledAt, &account.CreatedAt,
	)
	if err != nil {
		return AdminAccount{}, err
	}
	return account, nil
}

func (s *PostgresStore) EnsureAdminAccount(ctx context.Context, account AdminAccount) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO admin_accounts (id, email, display_name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO NOTHING
	`, account.ID, account.Email, account.DisplayName, account.PasswordHash, account.Role)
	if err != nil {
		return fmt.Errorf("ensure admin account: %w", err)
	}
	return nil
}

// ---- refresh sessions ----

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, accountID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, account_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET account_id=EXCLUDED.account_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, accountID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (AdminAccount, error) {
	const query = `
		SELECT a.id, a.email, a.display_name, a.password_hash, a.role, a.disabled_at, a.created_at
		FROM refresh_sessions rs
		JOIN admin_accounts a ON a.id = rs.account_id
		WHERE rs.token_hash = $1
			AND rs.revoked_at IS NULL
			AND rs.expires_at > NOW()
	`
	var account AdminAccount
	err := s.db.QueryRowContext(ctx, query, tokenHash).Scan(
		&account.ID, &account.Email, &account.DisplayName, &account.PasswordHash,
		&account.Role, &account.DisabledAt, &account.CreatedAt,
	)
	if err != nil {
		return AdminAccount{}, err
	}
	return account, nil
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) RevokeAccessToken(ctx context.Context, jti string, exp time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO revoked_access_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO NOTHING
	`, jti, exp)
	if err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsAccessTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_access_tokens WHERE jti=$1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return revoked, nil
}

// ---- complaints ----

func (s *PostgresStore) ListComplaints(ctx context.Context) ([]Complaint, error) {
	const query = `
		SELECT id, subject, description, customer_name, customer_email, order_ref,
			category, priority, status, assigned_to, resolution, created_at, updated_at
		FROM complaints ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	var complaints []Complaint
	for rows.Next() {
		var c Complaint
		var assignedTo, resolution sql.NullString
		if err := rows.Scan(&c.ID, &c.Subject, &c.Description, &c.CustomerName, &c.CustomerEmail,
			&c.OrderRef, &c.Category, &c.Priority, &c.Status, &assignedTo, &resolution,
			&c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		c.AssignedTo = assignedTo.String
		c.Resolution = resolution.String
		complaints = append(complaints, c)
	}
	return complaints, rows.Err()
}

func (s *PostgresStore) InsertComplaint(ctx context.Context, c Complaint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO complaints (id, subject, description, customer_name, customer_email,
			order_ref, category, priority, status, assigned_to, resolution, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, c.ID, c.Subject, c.Description, c.CustomerName, c.CustomerEmail, c.OrderRef,
		c.Category, c.Priority, c.Status, nullable(c.AssignedTo), nullable(c.Resolution),
		c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateComplaint(ctx context.Context, c Complaint) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE complaints SET subject=$2, description=$3, customer_name=$4, customer_email=$5,
			order_ref=$6, category=$7, priority=$8, status=$9, assigned_to=$10, resolution=$11, updated_at=$12
		WHERE id=$1
	`, c.ID, c.Subject, c.Description, c.CustomerName, c.CustomerEmail, c.OrderRef,
		c.Category, c.Priority, c.Status, nullable(c.AssignedTo), nullable(c.Resolution), c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteComplaint(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM complaint_replies WHERE complaint_id=$1`, id); err != nil {
		return fmt.Errorf("delete complaint replies: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM complaints WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertComplaintReply(ctx context.Context, reply ComplaintReply) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO complaint_replies (id, complaint_id, author, body, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, reply.ID, reply.ComplaintID, reply.Author, reply.Body, reply.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert complaint reply: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListComplaintReplies(ctx context.Context, complaintID string) ([]ComplaintReply, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, complaint_id, author, body, created_at
		FROM complaint_replies WHERE complaint_id=$1 ORDER BY created_at ASC
	`, complaintID)
	if err != nil {
		return nil, fmt.Errorf("list complaint replies: %w", err)
	}
	defer rows.Close()

	var replies []ComplaintReply
	for rows.Next() {
		var r ComplaintReply
		if err := rows.Scan(&r.ID, &r.ComplaintID, &r.Author, &r.Body, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan complaint reply: %w", err)
		}
		replies = append(replies, r)
	}
	return replies, rows.Err()
}

// ---- payments ----

func (s *PostgresStore) ListPayments(ctx context.Context) ([]Payment, error) {
	const query = `
		SELECT id, order_ref, customer_name, seller_name, method, status, failure_reason,
			amount, fee, refund_amount, processed_by, created_at, updated_at
		FROM payments ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		var failureReason, processedBy sql.NullString
		if err := rows.Scan(&p.ID, &p.OrderRef, &p.CustomerName, &p.SellerName, &p.Method,
			&p.Status, &failureReason, &p.Amount, &p.Fee, &p.RefundAmount, &processedBy,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.FailureReason = failureReason.String
		p.ProcessedBy = processedBy.String
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *PostgresStore) InsertPayment(ctx context.Context, p Payment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payments (id, order_ref, customer_name, seller_name, method, status,
			failure_reason, amount, fee, refund_amount, processed_by, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, p.ID, p.OrderRef, p.CustomerName, p.SellerName, p.Method, p.Status,
		nullable(p.FailureReason), p.Amount, p.Fee, p.RefundAmount, nullable(p.ProcessedBy),
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdatePayment(ctx context.Context, p Payment) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE payments SET order_ref=$2, customer_name=$3, seller_name=$4, method=$5,
			status=$6, failure_reason=$7, amount=$8, fee=$9, refund_amount=$10,
			processed_by=$11, updated_at=$12
		WHERE id=$1
	`, p.ID, p.OrderRef, p.CustomerName, p.SellerName, p.Method, p.Status,
		nullable(p.FailureReason), p.Amount, p.Fee, p.RefundAmount, nullable(p.ProcessedBy), p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeletePayment(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM payments WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	return nil
}

// ---- content pages ----

func (s *PostgresStore) ListContentPages(ctx context.Context) ([]ContentPage, error) {
	const query = `
		SELECT id, slug, title, body, status, updated_by, published_at, created_at, updated_at
		FROM content_pages ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list content pages: %w", err)
	}
	defer rows.Close()

	var pages []ContentPage
	for rows.Next() {
		var page ContentPage
		if err := rows.Scan(&page.ID, &page.Slug, &page.Title, &page.Body, &page.Status,
			&page.UpdatedBy, &page.PublishedAt, &page.CreatedAt, &page.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan content page: %w", err)
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func (s *PostgresStore) InsertContentPage(ctx context.Context, page ContentPage) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO content_pages (id, slug, title, body, status, updated_by, published_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, page.ID, page.Slug, page.Title, page.Body, page.Status, page.UpdatedBy,
		page.PublishedAt, page.CreatedAt, page.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert content page: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateContentPage(ctx context.Context, page ContentPage) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE content_pages SET slug=$2, title=$3, body=$4, status=$5, updated_by=$6,
			published_at=$7, updated_at=$8
		WHERE id=$1
	`, page.ID, page.Slug, page.Title, page.Body, page.Status, page.UpdatedBy,
		page.PublishedAt, page.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update content page: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteContentPage(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM content_pages WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete content page: %w", err)
	}
	return nil
}

// ---- settings ----

func (s *PostgresStore) ListSettings(ctx context.Context) ([]Setting, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, setting_group, description, updated_by, updated_at
		FROM settings ORDER BY setting_group, key
	`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var st Setting
		var description, updatedBy sql.NullString
		if err := rows.Scan(&st.Key, &st.Value, &st.Group, &description, &updatedBy, &st.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		st.Description = description.String
		st.UpdatedBy = updatedBy.String
		settings = append(settings, st)
	}
	return settings, rows.Err()
}

func (s *PostgresStore) UpsertSetting(ctx context.Context, st Setting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, setting_group, description, updated_by, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, setting_group=EXCLUDED.setting_group,
			description=EXCLUDED.description, updated_by=EXCLUDED.updated_by, updated_at=EXCLUDED.updated_at
	`, st.Key, st.Value, st.Group, nullable(st.Description), nullable(st.UpdatedBy), st.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteSetting(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key=$1`, key); err != nil {
		return fmt.Errorf("delete setting: %w", err)
	}
	return nil
}

// ---- audit trail ----

func (s *PostgresStore) InsertAuditEvent(ctx context.Context, event AuditEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO audit_events (actor, resource, action, entity_id, payload)
		VALUES ($1,$2,$3,$4,$5)
	`, event.Actor, event.Resource, event.Action, nullable(event.EntityID), payload)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAuditEvents(ctx context.Context, resource string, limit int) ([]AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor, resource, action, entity_id, payload, created_at
		FROM audit_events
		WHERE ($1 = '' OR resource = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`, resource, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	var events []AuditEvent
	for rows.Next() {
		var event AuditEvent
		var entityID sql.NullString
		var payload []byte
		if err := rows.Scan(&event.ID, &event.Actor, &event.Resource, &event.Action,
			&entityID, &payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.EntityID = entityID.String
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &event.Payload); err != nil {
				return nil, fmt.Errorf("decode audit payload: %w", err)
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// ErrNotFound reports a missing row where the caller cares about the
// distinction.
var ErrNotFound = errors.New("not found")

func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound)
}

func nullable(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}
