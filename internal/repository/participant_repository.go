package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"hackdir/internal/models"
)

var (
	ErrParticipantNotFound = errors.New("participant not found")
	ErrEmailTaken          = errors.New("email already registered")
)

const participantColumns = `
	id, email, hashed_password, name, phone_number, profile, wants_to_build,
	has_built, website, linkedin_handle, github_handle, x_handle, organization,
	avatar_seed, team_name
`

type ParticipantRepository struct {
	db DBTX
}

func NewParticipantRepository(db DBTX) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

func (r *ParticipantRepository) Create(ctx context.Context, p models.Participant) error {
	const query = `
		INSERT INTO participants (` + participantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (email) DO NOTHING
	`

	cmd, err := r.db.Exec(ctx, query,
		p.ID,
		p.Email,
		p.HashedPassword,
		p.Name,
		p.PhoneNumber,
		p.Profile,
		p.WantsToBuild,
		p.HasBuilt,
		p.Website,
		p.LinkedInHandle,
		p.GithubHandle,
		p.XHandle,
		p.Organization,
		p.AvatarSeed,
		p.Team.Nullable(),
	)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrEmailTaken
	}
	return nil
}

func (r *ParticipantRepository) GetByID(ctx context.Context, id string) (models.Participant, error) {
	const query = `SELECT ` + participantColumns + ` FROM participants WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *ParticipantRepository) FindByEmail(ctx context.Context, email string) (models.Participant, error) {
	const query = `SELECT ` + participantColumns + ` FROM participants WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *ParticipantRepository) List(ctx context.Context) ([]models.Participant, error) {
	const query = `SELECT ` + participantColumns + ` FROM participants ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *ParticipantRepository) UpdateProfile(ctx context.Context, id string, u models.ProfileUpdate) (models.Participant, error) {
	const query = `
		UPDATE participants
		SET name = $2,
		    phone_number = $3,
		    profile = $4,
		    wants_to_build = $5,
		    has_built = $6,
		    website = $7,
		    linkedin_handle = $8,
		    github_handle = $9,
		    x_handle = $10,
		    organization = $11,
		    avatar_seed = $12,
		    team_name = $13
		WHERE id = $1
		RETURNING ` + participantColumns

	return r.getOne(ctx, query,
		id,
		u.Name,
		u.PhoneNumber,
		u.Profile,
		u.WantsToBuild,
		u.HasBuilt,
		u.Website,
		u.LinkedInHandle,
		u.GithubHandle,
		u.XHandle,
		u.Organization,
		u.AvatarSeed,
		u.Team.Nullable(),
	)
}

func (r *ParticipantRepository) UpdateTeam(ctx context.Context, id string, team models.TeamAffiliation) (models.Participant, error) {
	const query = `
		UPDATE participants SET team_name = $2 WHERE id = $1
		RETURNING ` + participantColumns
	return r.getOne(ctx, query, id, team.Nullable())
}

func (r *ParticipantRepository) UpdatePasswordHash(ctx context.Context, id string, hash string) error {
	const query = `UPDATE participants SET hashed_password = $2 WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id, hash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

// CountByTeam counts members of team, leaving out excludeID.
func (r *ParticipantRepository) CountByTeam(ctx context.Context, team string, excludeID string) (int, error) {
	const query = `SELECT COUNT(*) FROM participants WHERE team_name = $1 AND id <> $2`
	var count int
	if err := r.db.QueryRow(ctx, query, team, excludeID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count team members: %w", err)
	}
	return count, nil
}

func (r *ParticipantRepository) getOne(ctx context.Context, query string, args ...any) (models.Participant, error) {
	p, err := scanParticipant(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Participant{}, ErrParticipantNotFound
		}
		return models.Participant{}, fmt.Errorf("select participant: %w", err)
	}
	return p, nil
}

func scanParticipant(row pgx.Row) (models.Participant, error) {
	var (
		p        models.Participant
		teamName *string
	)
	if err := row.Scan(
		&p.ID,
		&p.Email,
		&p.HashedPassword,
		&p.Name,
		&p.PhoneNumber,
		&p.Profile,
		&p.WantsToBuild,
		&p.HasBuilt,
		&p.Website,
		&p.LinkedInHandle,
		&p.GithubHandle,
		&p.XHandle,
		&p.Organization,
		&p.AvatarSeed,
		&teamName,
	); err != nil {
		return models.Participant{}, err
	}
	p.Team = models.TeamFromNullable(teamName)
	return p, nil
}
