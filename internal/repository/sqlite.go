package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/flood-response/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating to database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS flood_alerts (
			id TEXT PRIMARY KEY,
			location TEXT NOT NULL,
			status TEXT NOT NULL,
			severity TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			reported_by TEXT NOT NULL,
			FOREIGN KEY (reported_by) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS resources (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			item TEXT NOT NULL,
			quantity INTEGER NOT NULL,
			location TEXT NOT NULL,
			contact TEXT NOT NULL,
			urgency TEXT,
			availability TEXT,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			user_id TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE INDEX IF NOT EXISTS idx_flood_alerts_created_at ON flood_alerts(created_at);
		CREATE INDEX IF NOT EXISTS idx_resources_kind_created_at ON resources(kind, created_at);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting user: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *SQLiteDB) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return &u, nil
}

func (s *SQLiteDB) AddAlert(ctx context.Context, a *models.FloodAlert) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO flood_alerts (id, location, status, severity, created_at, reported_by)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Location, a.Status, a.Severity, a.CreatedAt, a.ReportedBy,
	)
	if err != nil {
		return fmt.Errorf("error inserting flood alert: %w", err)
	}
	return nil
}

func (s *SQLiteDB) ListAlerts(ctx context.Context) ([]models.FloodAlert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, location, status, severity, created_at, reported_by
		 FROM flood_alerts ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("error listing flood alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.FloodAlert{}
	for rows.Next() {
		var a models.FloodAlert
		if err := rows.Scan(&a.ID, &a.Location, &a.Status, &a.Severity, &a.CreatedAt, &a.ReportedBy); err != nil {
			return nil, fmt.Errorf("error scanning flood alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteDB) AddResource(ctx context.Context, r *models.Resource) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO resources (id, kind, item, quantity, location, contact, urgency, availability, status, created_at, user_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.Item, r.Quantity, r.Location, r.Contact,
		nullString(string(r.Urgency)), nullString(string(r.Availability)),
		r.Status, r.CreatedAt, r.UserID,
	)
	if err != nil {
		return fmt.Errorf("error inserting resource: %w", err)
	}
	return nil
}

func (s *SQLiteDB) GetResourceByID(ctx context.Context, id string) (*models.Resource, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, kind, item, quantity, location, contact, urgency, availability, status, created_at, user_id
		 FROM resources WHERE id = ?`, id)

	var r models.Resource
	var urgency, availability sql.NullString
	err := row.Scan(&r.ID, &r.Kind, &r.Item, &r.Quantity, &r.Location, &r.Contact,
		&urgency, &availability, &r.Status, &r.CreatedAt, &r.UserID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning resource: %w", err)
	}
	r.Urgency = models.Urgency(urgency.String)
	r.Availability = models.Availability(availability.String)
	return &r, nil
}

func (s *SQLiteDB) ListResources(ctx context.Context, kind models.ResourceKind) ([]models.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, item, quantity, location, contact, urgency, availability, status, created_at, user_id
		 FROM resources WHERE kind = ? ORDER BY created_at DESC`, kind)
	if err != nil {
		return nil, fmt.Errorf("error listing resources: %w", err)
	}
	defer rows.Close()

	resources := []models.Resource{}
	for rows.Next() {
		var r models.Resource
		var urgency, availability sql.NullString
		if err := rows.Scan(&r.ID, &r.Kind, &r.Item, &r.Quantity, &r.Location, &r.Contact,
			&urgency, &availability, &r.Status, &r.CreatedAt, &r.UserID); err != nil {
			return nil, fmt.Errorf("error scanning resource: %w", err)
		}
		r.Urgency = models.Urgency(urgency.String)
		r.Availability = models.Availability(availability.String)
		resources = append(resources, r)
	}
	return resources, rows.Err()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
