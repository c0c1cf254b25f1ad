package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pawhome/pawhome/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound       = model.ErrUserNotFound
	ErrProfileNotFound    = errors.New("profile not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrShelterNameExists  = errors.New("shelter name already exists")
	ErrAdminNameExists    = errors.New("admin name already exists")
	ErrProfileExists      = errors.New("profile already exists")
	ErrUnsupportedProfile = errors.New("unsupported profile type")
)

// Constraint names from the users migration.
const (
	constraintUserEmail      = "base_user_email_key"
	constraintShelterName    = "shelter_name_key"
	constraintAdminName      = "admin_user_name_key"
	constraintShelterPrimary = "shelter_pkey"
	constraintAdminPrimary   = "admin_user_pkey"
	constraintDirectoryUser  = "user_directory_user_uuid_key"
)

const userColumns = `
	u.uuid, u.email, u.password, u.is_active, u.is_staff, u.is_superuser,
	u.last_login, u.date_joined, COALESCE(d.role_kind, '')
`

// CreateUserWithProfile inserts the identity, its role profile and its
// directory entry in one transaction. Either all three rows exist afterwards
// or none do.
func (r *Repository) CreateUserWithProfile(ctx context.Context, user *model.User, profile model.Profile) error {
	if profile == nil {
		return fmt.Errorf("failed to create user: %w", ErrUnsupportedProfile)
	}

	err := r.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO base_user (uuid, email, password, is_active, is_staff, is_superuser, date_joined)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`,
			user.ID,
			user.Email,
			user.PasswordHash,
			user.IsActive,
			user.IsStaff,
			user.IsSuperuser,
			user.DateJoined,
		)
		if err != nil {
			return err
		}

		switch p := profile.(type) {
		case *model.Shelter:
			p.UserID = user.ID
			_, err = tx.Exec(ctx, `
				INSERT INTO shelter (base_user_id, shelter_name, shelter_address, shelter_phone_number, shelter_responsible, shelter_logo)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, p.UserID, p.Name, p.Address, p.PhoneNumber, p.Responsible, p.Logo)
		case *model.Admin:
			p.UserID = user.ID
			_, err = tx.Exec(ctx, `
				INSERT INTO admin_user (base_user_id, admin_name)
				VALUES ($1, $2)
			`, p.UserID, p.Name)
		default:
			return fmt.Errorf("%w: %T", ErrUnsupportedProfile, profile)
		}
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO user_directory (uuid, role_kind, user_uuid, date_joined)
			VALUES ($1, $2, $3, $4)
		`, uuid.New(), string(profile.Kind()), user.ID, user.DateJoined)
		return err
	})
	if err != nil {
		if mapped := mapUserConstraint(err); mapped != nil {
			return mapped
		}
		if errors.Is(err, ErrUnsupportedProfile) {
			return err
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	user.Role = profile.Kind()
	return nil
}

func mapUserConstraint(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return nil
	}
	switch constraint {
	case constraintUserEmail:
		return ErrEmailExists
	case constraintShelterName:
		return ErrShelterNameExists
	case constraintAdminName:
		return ErrAdminNameExists
	case constraintShelterPrimary, constraintAdminPrimary, constraintDirectoryUser:
		return ErrProfileExists
	default:
		return fmt.Errorf("unique violation on %s: %w", constraint, err)
	}
}

// GetUserByID retrieves a user by their ID, including the role kind.
func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := `SELECT ` + userColumns + `
		FROM base_user u
		LEFT JOIN user_directory d ON d.user_uuid = u.uuid
		WHERE u.uuid = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + `
		FROM base_user u
		LEFT JOIN user_directory d ON d.user_uuid = u.uuid
		WHERE u.email = $1
	`

	user, err := scanUser(r.pool.QueryRow(ctx, query, model.NormalizeEmail(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	var role string
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.IsActive,
		&user.IsStaff,
		&user.IsSuperuser,
		&user.LastLogin,
		&user.DateJoined,
		&role,
	)
	if err != nil {
		return nil, err
	}
	user.Role = model.RoleKind(role)
	return &user, nil
}

// EmailExists reports whether an identity already uses email.
func (r *Repository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM base_user WHERE email = $1)`, model.NormalizeEmail(email))
}

// ShelterNameExists reports whether a shelter already uses name.
func (r *Repository) ShelterNameExists(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM shelter WHERE shelter_name = $1)`, name)
}

// AdminNameExists reports whether an admin already uses name.
func (r *Repository) AdminNameExists(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM admin_user WHERE admin_name = $1)`, name)
}

func (r *Repository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, query, arg).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existence: %w", err)
	}
	return exists, nil
}

// SetPassword replaces the stored password hash.
func (r *Repository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	result, err := r.pool.Exec(ctx, `UPDATE base_user SET password = $2 WHERE uuid = $1`, id, hash)
	if err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin records a successful login.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE base_user SET last_login = $2 WHERE uuid = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// GetProfile loads the role profile referenced by owner.
func (r *Repository) GetProfile(ctx context.Context, owner model.Owner) (model.Profile, error) {
	switch owner.Kind {
	case model.RoleShelter:
		s, err := r.GetShelter(ctx, owner.UserID)
		if err != nil {
			return nil, err
		}
		return s, nil
	case model.RoleAdmin:
		a, err := r.GetAdmin(ctx, owner.UserID)
		if err != nil {
			return nil, err
		}
		return a, nil
	default:
		return nil, ErrProfileNotFound
	}
}

// GetShelter retrieves a shelter profile by its identity.
func (r *Repository) GetShelter(ctx context.Context, id uuid.UUID) (*model.Shelter, error) {
	query := `
		SELECT base_user_id, shelter_name, shelter_address, shelter_phone_number, shelter_responsible, shelter_logo
		FROM shelter
		WHERE base_user_id = $1
	`

	var s model.Shelter
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.UserID,
		&s.Name,
		&s.Address,
		&s.PhoneNumber,
		&s.Responsible,
		&s.Logo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get shelter: %w", err)
	}
	return &s, nil
}

// GetAdmin retrieves an admin profile by its identity.
func (r *Repository) GetAdmin(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	var a model.Admin
	err := r.pool.QueryRow(ctx,
		`SELECT base_user_id, admin_name FROM admin_user WHERE base_user_id = $1`, id,
	).Scan(&a.UserID, &a.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get admin: %w", err)
	}
	return &a, nil
}
