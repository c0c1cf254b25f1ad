package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/pawhome/pawhome/internal/model"
)

// Common errors for pet repository operations.
var (
	ErrPetNotFound     = errors.New("pet not found")
	ErrPetTypeNotFound = errors.New("pet type not found")
	ErrPetSexNotFound  = errors.New("pet sex not found")
	ErrShelterNotFound = errors.New("shelter not found")
)

const petSelect = `
	SELECT p.pet_uuid, p.shelter_id, s.shelter_name,
	       pt.id, pt.type, ps.id, ps.sex,
	       p.pet_name, p.pet_race, p.pet_age,
	       p.pet_observations, p.pet_description, p.pet_image, p.date_joined
	FROM pet p
	JOIN shelter s ON s.base_user_id = p.shelter_id
	LEFT JOIN pet_type pt ON pt.id = p.pet_type_id
	LEFT JOIN pet_sex ps ON ps.id = p.pet_sex_id
`

// petWhere builds the filter clause and its arguments.
func petWhere(filter model.PetFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if len(filter.Types) > 0 {
		args = append(args, pq.Array(filter.Types))
		conds = append(conds, fmt.Sprintf("pt.type = ANY($%d)", len(args)))
	}
	if len(filter.Sexes) > 0 {
		args = append(args, pq.Array(filter.Sexes))
		conds = append(conds, fmt.Sprintf("ps.sex = ANY($%d)", len(args)))
	}
	if filter.ShelterID != nil {
		args = append(args, *filter.ShelterID)
		conds = append(conds, fmt.Sprintf("p.shelter_id = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListPets returns one window of pets matching filter, newest first, and the
// total number of matches.
func (r *Repository) ListPets(ctx context.Context, filter model.PetFilter, limit, offset int) ([]*model.Pet, int, error) {
	where, args := petWhere(filter)

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM pet p
		LEFT JOIN pet_type pt ON pt.id = p.pet_type_id
		LEFT JOIN pet_sex ps ON ps.id = p.pet_sex_id
	` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pets: %w", err)
	}
	if total == 0 || offset >= total {
		return []*model.Pet{}, total, nil
	}

	args = append(args, limit, offset)
	query := petSelect + where + fmt.Sprintf(
		" ORDER BY p.date_joined DESC, p.pet_uuid LIMIT $%d OFFSET $%d", len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pets: %w", err)
	}
	defer rows.Close()

	pets := make([]*model.Pet, 0, limit)
	for rows.Next() {
		pet, err := scanPet(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan pet: %w", err)
		}
		pets = append(pets, pet)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating pets: %w", err)
	}

	return pets, total, nil
}

// GetPet retrieves a pet by its ID.
func (r *Repository) GetPet(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	pet, err := scanPet(r.pool.QueryRow(ctx, petSelect+" WHERE p.pet_uuid = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("failed to get pet: %w", err)
	}
	return pet, nil
}

// CreatePet inserts a pet. Type and sex are referenced by ID when set.
func (r *Repository) CreatePet(ctx context.Context, pet *model.Pet) error {
	var typeID, sexID *int64
	if pet.Type != nil {
		typeID = &pet.Type.ID
	}
	if pet.Sex != nil {
		sexID = &pet.Sex.ID
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO pet (pet_uuid, pet_type_id, pet_sex_id, shelter_id, pet_name, pet_race, pet_age,
		                 pet_observations, pet_description, pet_image, date_joined)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		pet.ID,
		typeID,
		sexID,
		pet.ShelterID,
		pet.Name,
		pet.Race,
		pet.Age,
		pet.Observations,
		pet.Description,
		pet.Image,
		pet.CreatedAt,
	)
	if err != nil {
		if constraint, ok := foreignKeyViolation(err); ok {
			switch constraint {
			case "pet_pet_type_id_fkey":
				return ErrPetTypeNotFound
			case "pet_pet_sex_id_fkey":
				return ErrPetSexNotFound
			default:
				return ErrShelterNotFound
			}
		}
		return fmt.Errorf("failed to create pet: %w", err)
	}
	return nil
}

// GetPetTypeByName resolves a pet type reference.
func (r *Repository) GetPetTypeByName(ctx context.Context, name string) (*model.PetType, error) {
	var t model.PetType
	err := r.pool.QueryRow(ctx, `SELECT id, type FROM pet_type WHERE type = $1`, name).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPetTypeNotFound
		}
		return nil, fmt.Errorf("failed to get pet type: %w", err)
	}
	return &t, nil
}

// GetPetSexByName resolves a pet sex reference.
func (r *Repository) GetPetSexByName(ctx context.Context, name string) (*model.PetSex, error) {
	var s model.PetSex
	err := r.pool.QueryRow(ctx, `SELECT id, sex FROM pet_sex WHERE sex = $1`, name).Scan(&s.ID, &s.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPetSexNotFound
		}
		return nil, fmt.Errorf("failed to get pet sex: %w", err)
	}
	return &s, nil
}

// ListPetTypes returns every pet type ordered by name.
func (r *Repository) ListPetTypes(ctx context.Context) ([]model.PetType, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, type FROM pet_type ORDER BY type`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pet types: %w", err)
	}
	defer rows.Close()

	types := []model.PetType{}
	for rows.Next() {
		var t model.PetType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("failed to scan pet type: %w", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pet types: %w", err)
	}
	return types, nil
}

// ListPetSexes returns every pet sex ordered by name.
func (r *Repository) ListPetSexes(ctx context.Context) ([]model.PetSex, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, sex FROM pet_sex ORDER BY sex`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pet sexes: %w", err)
	}
	defer rows.Close()

	sexes := []model.PetSex{}
	for rows.Next() {
		var s model.PetSex
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan pet sex: %w", err)
		}
		sexes = append(sexes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pet sexes: %w", err)
	}
	return sexes, nil
}

func scanPet(row pgx.Row) (*model.Pet, error) {
	var (
		pet      model.Pet
		typeID   *int64
		typeName *string
		sexID    *int64
		sexName  *string
	)
	err := row.Scan(
		&pet.ID,
		&pet.ShelterID,
		&pet.ShelterName,
		&typeID,
		&typeName,
		&sexID,
		&sexName,
		&pet.Name,
		&pet.Race,
		&pet.Age,
		&pet.Observations,
		&pet.Description,
		&pet.Image,
		&pet.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if typeID != nil && typeName != nil {
		pet.Type = &model.PetType{ID: *typeID, Name: *typeName}
	}
	if sexID != nil && sexName != nil {
		pet.Sex = &model.PetSex{ID: *sexID, Name: *sexName}
	}
	return &pet, nil
}
