package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fact-registration/internal/domain"
)

// PostgresRegistrationRepository RegistrationRepository on PostgreSQL
type PostgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) *PostgresRegistrationRepository {
	return &PostgresRegistrationRepository{db: db}
}

var _ RegistrationRepository = (*PostgresRegistrationRepository)(nil)

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *PostgresRegistrationRepository) ListSchools(ctx context.Context) ([]*domain.School, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT school_id::text, name FROM schools ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schools: %w", err)
	}
	defer rows.Close()

	out := []*domain.School{}
	for rows.Next() {
		var s domain.School
		if err := rows.Scan(&s.SchoolID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan school: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate schools: %w", err)
	}
	return out, nil
}

func (r *PostgresRegistrationRepository) GetSchool(ctx context.Context, schoolID string) (*domain.School, error) {
	var s domain.School
	err := r.db.QueryRowContext(ctx,
		`SELECT school_id::text, name FROM schools WHERE school_id::text = $1`, schoolID).Scan(&s.SchoolID, &s.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("school %s: %w", schoolID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get school: %w", err)
	}
	return &s, nil
}

// upsertUser keeps the gateway's user id and refreshes the profile columns.
func upsertUser(ctx context.Context, ex execer, u domain.User) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO users (user_id, first_name, last_name, email)
		VALUES ($1::uuid, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, email = EXCLUDED.email
	`, u.UserID, u.FirstName, u.LastName, u.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", u.Email, ErrConflict)
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PostgresRegistrationRepository) CreateDelegate(ctx context.Context, p *domain.DelegateProfile) (string, error) {
	if p == nil || p.User.UserID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertUser(ctx, tx, p.User); err != nil {
		return "", err
	}

	var id string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO delegates (user_id, pronouns, year, school_id, other_school)
		VALUES ($1::uuid, $2, $3, $4::uuid, $5)
		RETURNING delegate_id::text
	`, p.User.UserID, p.Delegate.Pronouns, p.Delegate.Year, p.Delegate.SchoolID, p.Delegate.OtherSchool).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("delegate for user %s: %w", p.User.UserID, ErrConflict)
		}
		if isForeignKeyViolation(err) {
			return "", fmt.Errorf("school %s: %w", p.Delegate.SchoolID.String, ErrNotFound)
		}
		return "", fmt.Errorf("failed to create delegate: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit delegate: %w", err)
	}
	return id, nil
}

func (r *PostgresRegistrationRepository) GetDelegateByUser(ctx context.Context, userID string) (*domain.DelegateProfile, error) {
	var p domain.DelegateProfile
	err := r.db.QueryRowContext(ctx, `
		SELECT
			u.user_id::text, u.first_name, u.last_name, u.email,
			d.delegate_id::text, d.pronouns, d.year, d.school_id::text, d.other_school, d.date_created
		FROM delegates d
		JOIN users u ON u.user_id = d.user_id
		WHERE d.user_id::text = $1
	`, userID).Scan(
		&p.User.UserID, &p.User.FirstName, &p.User.LastName, &p.User.Email,
		&p.Delegate.DelegateID, &p.Delegate.Pronouns, &p.Delegate.Year, &p.Delegate.SchoolID,
		&p.Delegate.OtherSchool, &p.Delegate.DateCreated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("delegate for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get delegate: %w", err)
	}
	p.Delegate.UserID = p.User.UserID

	ids, err := r.workshopIDs(ctx, `
		SELECT r.workshop_id::text
		FROM registrations r
		JOIN workshops w ON w.workshop_id = r.workshop_id
		WHERE r.delegate_id::text = $1
		ORDER BY w.session, w.title
	`, p.Delegate.DelegateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	p.WorkshopIDs = ids
	return &p, nil
}

func (r *PostgresRegistrationRepository) workshopIDs(ctx context.Context, query, ownerID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *PostgresRegistrationRepository) UpdateDelegate(ctx context.Context, p *domain.DelegateProfile) error {
	if p == nil || p.Delegate.DelegateID == "" {
		return fmt.Errorf("delegate_id is required")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := updateUser(ctx, tx, p.User); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE delegates
		SET pronouns = $2, year = $3, school_id = $4::uuid, other_school = $5
		WHERE delegate_id::text = $1
	`, p.Delegate.DelegateID, p.Delegate.Pronouns, p.Delegate.Year, p.Delegate.SchoolID, p.Delegate.OtherSchool)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("school %s: %w", p.Delegate.SchoolID.String, ErrNotFound)
		}
		return fmt.Errorf("failed to update delegate: %w", err)
	}
	if err := expectOneRow(res, "delegate", p.Delegate.DelegateID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delegate: %w", err)
	}
	return nil
}

func updateUser(ctx context.Context, ex execer, u domain.User) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE users SET first_name = $2, last_name = $3, email = $4 WHERE user_id::text = $1`,
		u.UserID, u.FirstName, u.LastName, u.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("email %s: %w", u.Email, ErrConflict)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOneRow(res, "user", u.UserID)
}

func (r *PostgresRegistrationRepository) ReplaceRegistrations(ctx context.Context, delegateID string, workshopIDs []string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM registrations WHERE delegate_id::text = $1`, delegateID); err != nil {
		return fmt.Errorf("failed to clear registrations: %w", err)
	}
	for _, wid := range workshopIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO registrations (delegate_id, workshop_id) VALUES ($1::uuid, $2::uuid)`, delegateID, wid)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("workshop %s: %w", wid, ErrNotFound)
			}
			if isUniqueViolation(err) {
				return fmt.Errorf("registration for workshop %s: %w", wid, ErrConflict)
			}
			return fmt.Errorf("failed to register for workshop %s: %w", wid, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit registrations: %w", err)
	}
	return nil
}

func (r *PostgresRegistrationRepository) CreateFacilitator(ctx context.Context, p *domain.FacilitatorProfile) (string, error) {
	if p == nil || p.User.UserID == "" {
		return "", fmt.Errorf("user_id is required")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertUser(ctx, tx, p.User); err != nil {
		return "", err
	}

	var id string
	err = tx.QueryRowContext(ctx, `
		INSERT INTO facilitators (user_id, fa_name, fa_contact)
		VALUES ($1::uuid, $2, $3)
		RETURNING facilitator_id::text
	`, p.User.UserID, p.Facilitator.FaName, p.Facilitator.FaContact).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("facilitator for user %s: %w", p.User.UserID, ErrConflict)
		}
		return "", fmt.Errorf("failed to create facilitator: %w", err)
	}
	if err := linkWorkshops(ctx, tx, id, p.WorkshopIDs); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit facilitator: %w", err)
	}
	return id, nil
}

func linkWorkshops(ctx context.Context, ex execer, facilitatorID string, workshopIDs []string) error {
	for _, wid := range workshopIDs {
		_, err := ex.ExecContext(ctx, `
			INSERT INTO facilitator_workshops (facilitator_id, workshop_id)
			VALUES ($1::uuid, $2::uuid)
			ON CONFLICT DO NOTHING
		`, facilitatorID, wid)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("workshop %s: %w", wid, ErrNotFound)
			}
			return fmt.Errorf("failed to link workshop %s: %w", wid, err)
		}
	}
	return nil
}

func (r *PostgresRegistrationRepository) GetFacilitatorByUser(ctx context.Context, userID string) (*domain.FacilitatorProfile, error) {
	var p domain.FacilitatorProfile
	err := r.db.QueryRowContext(ctx, `
		SELECT u.user_id::text, u.first_name, u.last_name, u.email, f.facilitator_id::text, f.fa_name, f.fa_contact
		FROM facilitators f
		JOIN users u ON u.user_id = f.user_id
		WHERE f.user_id::text = $1
	`, userID).Scan(
		&p.User.UserID, &p.User.FirstName, &p.User.LastName, &p.User.Email,
		&p.Facilitator.FacilitatorID, &p.Facilitator.FaName, &p.Facilitator.FaContact,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("facilitator for user %s: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get facilitator: %w", err)
	}
	p.Facilitator.UserID = p.User.UserID

	ids, err := r.workshopIDs(ctx, `
		SELECT fw.workshop_id::text
		FROM facilitator_workshops fw
		JOIN workshops w ON w.workshop_id = fw.workshop_id
		WHERE fw.facilitator_id::text = $1
		ORDER BY w.session, w.title
	`, p.Facilitator.FacilitatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilitator workshops: %w", err)
	}
	p.WorkshopIDs = ids
	return &p, nil
}

func (r *PostgresRegistrationRepository) UpdateFacilitator(ctx context.Context, p *domain.FacilitatorProfile) error {
	if p == nil || p.Facilitator.FacilitatorID == "" {
		return fmt.Errorf("facilitator_id is required")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := updateUser(ctx, tx, p.User); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE facilitators SET fa_name = $2, fa_contact = $3 WHERE facilitator_id::text = $1`,
		p.Facilitator.FacilitatorID, p.Facilitator.FaName, p.Facilitator.FaContact)
	if err != nil {
		return fmt.Errorf("failed to update facilitator: %w", err)
	}
	if err := expectOneRow(res, "facilitator", p.Facilitator.FacilitatorID); err != nil {
		return err
	}

	if p.WorkshopIDs != nil {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM facilitator_workshops WHERE facilitator_id::text = $1`, p.Facilitator.FacilitatorID); err != nil {
			return fmt.Errorf("failed to clear facilitator workshops: %w", err)
		}
		if err := linkWorkshops(ctx, tx, p.Facilitator.FacilitatorID, p.WorkshopIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit facilitator: %w", err)
	}
	return nil
}

func (r *PostgresRegistrationRepository) DeleteUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE user_id::text = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOneRow(res, "user", userID)
}

func (r *PostgresRegistrationRepository) ListFacilitatorRegistrations(ctx context.Context) ([]*domain.FacilitatorRegistration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT registration_id::text, facilitator_name, workshop_id::text
		FROM facilitator_registrations
		ORDER BY facilitator_name, registration_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilitator registrations: %w", err)
	}
	defer rows.Close()

	out := []*domain.FacilitatorRegistration{}
	for rows.Next() {
		var fr domain.FacilitatorRegistration
		if err := rows.Scan(&fr.RegistrationID, &fr.FacilitatorName, &fr.WorkshopID); err != nil {
			return nil, fmt.Errorf("failed to scan facilitator registration: %w", err)
		}
		out = append(out, &fr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate facilitator registrations: %w", err)
	}
	return out, nil
}

func (r *PostgresRegistrationRepository) CreateFacilitatorRegistration(ctx context.Context, reg *domain.FacilitatorRegistration) (string, error) {
	if reg == nil {
		return "", fmt.Errorf("facilitator registration is required")
	}
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO facilitator_registrations (facilitator_name, workshop_id)
		VALUES ($1, $2::uuid)
		RETURNING registration_id::text
	`, reg.FacilitatorName, reg.WorkshopID).Scan(&id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return "", fmt.Errorf("workshop %s: %w", reg.WorkshopID, ErrNotFound)
		}
		return "", fmt.Errorf("failed to create facilitator registration: %w", err)
	}
	return id, nil
}
