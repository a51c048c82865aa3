// Package pg implements the record-store contract on PostgreSQL for
// self-hosted deployments that do not use the hosted REST backend.
package pg

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"ptaregistry.org/internal/recordstore"
	"ptaregistry.org/internal/registry"
)

type Store struct {
	db *sql.DB
}

var _ recordstore.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection. Used by tests.
func NewWithDB(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) ListPermits(ctx context.Context) ([]registry.Permit, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, permit_number, operator_name, company_id, vehicle_reg,
		       route, issue_date, expiry_date, status, created_at
		from permits
		order by created_at desc
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []registry.Permit
	for rows.Next() {
		var p registry.Permit
		var status string
		if err := rows.Scan(&p.ID, &p.PermitNumber, &p.OperatorName, &p.CompanyID,
			&p.VehicleReg, &p.Route, &p.IssueDate, &p.ExpiryDate, &status, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Status = registry.Status(status)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) InsertPermit(ctx context.Context, p registry.Permit) error {
	_, err := s.db.ExecContext(ctx, `
		insert into permits(id, permit_number, operator_name, company_id,
		                    vehicle_reg, route, issue_date, expiry_date, status, created_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, p.ID, p.PermitNumber, p.OperatorName, p.CompanyID,
		p.VehicleReg, p.Route, p.IssueDate, p.ExpiryDate, string(p.Status), p.CreatedAt)
	return err
}

func (s *Store) DeletePermit(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from permits where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) ListUsers(ctx context.Context) ([]registry.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, username, password, role, name from users
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []registry.User
	for rows.Next() {
		var u registry.User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Password, &role, &u.Name); err != nil {
			return nil, err
		}
		u.Role = registry.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) InsertUser(ctx context.Context, u registry.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(id, username, password, role, name)
		values ($1,$2,$3,$4,$5)
	`, u.ID, u.Username, u.Password, string(u.Role), u.Name)
	return err
}

func (s *Store) UpdateUser(ctx context.Context, id string, upd recordstore.UserUpdate) error {
	// coalesce keeps the stored password when no replacement is supplied.
	var password sql.NullString
	if upd.Password != nil {
		password = sql.NullString{String: *upd.Password, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		update users
		set name=$2, username=$3, role=$4, password=coalesce($5, password)
		where id=$1
	`, id, upd.Name, upd.Username, string(upd.Role), password)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from users where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		// Driver cannot report affected rows; treat the write as applied.
		return nil
	}
	if n == 0 {
		return registry.ErrNotFound
	}
	return nil
}
