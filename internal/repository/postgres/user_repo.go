package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

const userColumns = `
	id, email, password_hash, reset_code_hash, reset_code_expires_at,
	name, gender, pronouns, nationality, resident_country, timezone,
	qualification, dream_job_title, branding_statement, phone, interview_mode,
	willing_to_relocate, willing_to_travel,
	known_languages, achievements, skills, hobbies,
	preferred_job_types, preferred_work_environments, preferred_locations,
	education, work_experience, emergency_contact, social_links, expected_salary, address,
	COALESCE(work_domain, ''),
	resumes, resume_url, resume_storage_id, resume_downloadable,
	saved_jobs, not_interested_categories, applied_jobs,
	version, created_at, updated_at`

type userRepo struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) domain.UserRepository {
	return &userRepo{db: db}
}

// resumeRecord is the stored form of a résumé entry; unlike the API form it
// keeps the storage id.
type resumeRecord struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	URL            string    `json:"url"`
	StorageID      string    `json:"storage_id"`
	Size           int64     `json:"size"`
	MimeType       string    `json:"mime_type"`
	Extension      string    `json:"extension"`
	UploadedAt     time.Time `json:"uploaded_at"`
	IsPrimary      bool      `json:"is_primary"`
	IsDownloadable bool      `json:"is_downloadable"`
}

func toResumeRecords(list []domain.Resume) []resumeRecord {
	out := make([]resumeRecord, len(list))
	for i, r := range list {
		out[i] = resumeRecord(r)
	}
	return out
}

func fromResumeRecords(list []resumeRecord) []domain.Resume {
	out := make([]domain.Resume, len(list))
	for i, r := range list {
		out[i] = domain.Resume(r)
	}
	return out
}

// jsonArg encodes v as a text parameter for a ::jsonb cast. Plain []byte
// would be sent as bytea under the simple query protocol.
func jsonArg(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeJSON(raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var (
		u                                                     domain.User
		education, experience, emergency, social, salary, adr []byte
		resumes, notInterested, applied                       []byte
	)

	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.ResetCodeHash, &u.ResetCodeExpiresAt,
		&u.Name, &u.Gender, &u.Pronouns, &u.Nationality, &u.ResidentCountry, &u.Timezone,
		&u.Qualification, &u.DreamJobTitle, &u.BrandingStatement, &u.Phone, &u.InterviewMode,
		&u.WillingToRelocate, &u.WillingToTravel,
		pq.Array(&u.KnownLanguages), pq.Array(&u.Achievements), pq.Array(&u.Skills), pq.Array(&u.Hobbies),
		pq.Array(&u.PreferredJobTypes), pq.Array(&u.PreferredWorkEnvironments), pq.Array(&u.PreferredLocations),
		&education, &experience, &emergency, &social, &salary, &adr,
		&u.WorkDomain,
		&resumes, &u.ResumeURL, &u.ResumeStorageID, &u.ResumeDownloadable,
		pq.Array(&u.SavedJobs), &notInterested, &applied,
		&u.Version, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	var records []resumeRecord
	decoders := []struct {
		raw []byte
		dst any
	}{
		{education, &u.Education},
		{experience, &u.WorkExperience},
		{emergency, &u.EmergencyContact},
		{social, &u.SocialLinks},
		{salary, &u.ExpectedSalary},
		{adr, &u.Address},
		{resumes, &records},
		{notInterested, &u.NotInterestedJobCategories},
		{applied, &u.AppliedJobs},
	}
	for _, d := range decoders {
		if err := decodeJSON(d.raw, d.dst); err != nil {
			return nil, fmt.Errorf("decode user %s: %w", u.ID, err)
		}
	}
	u.Resumes = fromResumeRecords(records)

	return &u, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *userRepo) Create(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (id, email, password_hash, name, version, created_at, updated_at)
              VALUES ($1, $2, $3, $4, 1, $5, $6)`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.Name, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateKey("An account with this email already exists")
		}
		return apperror.Internal(err)
	}
	user.Version = 1
	return nil
}

func (r *userRepo) getOne(ctx context.Context, where string, arg any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *userRepo) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `id = $1 FOR UPDATE`, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `email = $1`, email)
}

// guardedFailure explains why a version-guarded update touched no row.
func (r *userRepo) guardedFailure(ctx context.Context, userID string) error {
	var exists bool
	err := conn(ctx, r.db).QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists)
	if err != nil {
		return apperror.Internal(err)
	}
	if !exists {
		return apperror.NotFound("User not found")
	}
	return apperror.Conflict("User was modified concurrently, reload and retry")
}

func (r *userRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	jsonFields := []any{user.Education, user.WorkExperience, user.EmergencyContact, user.SocialLinks, user.ExpectedSalary, user.Address}
	encoded := make([]any, len(jsonFields))
	for i, v := range jsonFields {
		s, err := jsonArg(v)
		if err != nil {
			return apperror.Internal(err)
		}
		encoded[i] = s
	}
	// nil slices marshal to null; list columns are NOT NULL
	for i := 0; i < 2; i++ {
		if encoded[i] == "null" {
			encoded[i] = "[]"
		}
	}

	query := `
		UPDATE users SET
			email = $2, name = $3, gender = $4, pronouns = $5, nationality = $6,
			resident_country = $7, timezone = $8, qualification = $9, dream_job_title = $10,
			branding_statement = $11, phone = $12, interview_mode = $13,
			willing_to_relocate = $14, willing_to_travel = $15,
			known_languages = $16, achievements = $17, skills = $18, hobbies = $19,
			preferred_job_types = $20, preferred_work_environments = $21, preferred_locations = $22,
			education = $23::jsonb, work_experience = $24::jsonb,
			emergency_contact = NULLIF($25, 'null')::jsonb, social_links = NULLIF($26, 'null')::jsonb,
			expected_salary = NULLIF($27, 'null')::jsonb, address = NULLIF($28, 'null')::jsonb,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $29
		RETURNING version, updated_at`

	err := conn(ctx, r.db).QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.Gender, user.Pronouns, user.Nationality,
		user.ResidentCountry, user.Timezone, user.Qualification, user.DreamJobTitle,
		user.BrandingStatement, user.Phone, user.InterviewMode,
		user.WillingToRelocate, user.WillingToTravel,
		pq.Array(nonNil(user.KnownLanguages)), pq.Array(nonNil(user.Achievements)),
		pq.Array(nonNil(user.Skills)), pq.Array(nonNil(user.Hobbies)),
		pq.Array(nonNil(user.PreferredJobTypes)), pq.Array(nonNil(user.PreferredWorkEnvironments)),
		pq.Array(nonNil(user.PreferredLocations)),
		encoded[0], encoded[1], encoded[2], encoded[3], encoded[4], encoded[5],
		user.Version,
	).Scan(&user.Version, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.guardedFailure(ctx, user.ID)
		}
		if isUniqueViolation(err) {
			return apperror.DuplicateKey("An account with this email already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) UpdateResumes(ctx context.Context, user *domain.User) error {
	resumes, err := jsonArg(toResumeRecords(user.Resumes))
	if err != nil {
		return apperror.Internal(err)
	}

	query := `
		UPDATE users SET
			resumes = $2::jsonb, resume_url = $3, resume_storage_id = $4, resume_downloadable = $5,
			version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $6
		RETURNING version, updated_at`

	err = conn(ctx, r.db).QueryRow(ctx, query,
		user.ID, resumes, user.ResumeURL, user.ResumeStorageID, user.ResumeDownloadable, user.Version,
	).Scan(&user.Version, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.guardedFailure(ctx, user.ID)
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *userRepo) exec(ctx context.Context, query string, args ...any) error {
	tag, err := conn(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func (r *userRepo) SetWorkDomain(ctx context.Context, user *domain.User, workDomain string) error {
	query := `
		UPDATE users SET work_domain = NULLIF($2, ''), version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3
		RETURNING version, updated_at`
	err := conn(ctx, r.db).QueryRow(ctx, query, user.ID, workDomain, user.Version).
		Scan(&user.Version, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.guardedFailure(ctx, user.ID)
		}
		return apperror.Internal(err)
	}
	user.WorkDomain = workDomain
	return nil
}

func (r *userRepo) SetPassword(ctx context.Context, userID, passwordHash string) error {
	return r.exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, passwordHash)
}

func (r *userRepo) SetResetCode(ctx context.Context, userID, codeHash string, expiresAt time.Time) error {
	return r.exec(ctx,
		`UPDATE users SET reset_code_hash = $2, reset_code_expires_at = $3, reset_code_attempts = 0 WHERE id = $1`,
		userID, codeHash, expiresAt)
}

func (r *userRepo) ClearResetCode(ctx context.Context, userID string) error {
	return r.exec(ctx,
		`UPDATE users SET reset_code_hash = '', reset_code_expires_at = NULL, reset_code_attempts = 0 WHERE id = $1`,
		userID)
}

func (r *userRepo) RecordResetFailure(ctx context.Context, userID string, maxAttempts int) (bool, error) {
	query := `
		UPDATE users SET
			reset_code_attempts = reset_code_attempts + 1,
			reset_code_hash = CASE WHEN reset_code_attempts + 1 >= $2 THEN '' ELSE reset_code_hash END,
			reset_code_expires_at = CASE WHEN reset_code_attempts + 1 >= $2 THEN NULL ELSE reset_code_expires_at END
		WHERE id = $1
		RETURNING reset_code_hash = ''`
	var exhausted bool
	if err := conn(ctx, r.db).QueryRow(ctx, query, userID, maxAttempts).Scan(&exhausted); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, apperror.NotFound("User not found")
		}
		return false, apperror.Internal(err)
	}
	return exhausted, nil
}

func (r *userRepo) ListDomainMemberships(ctx context.Context) (map[string]string, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT email, work_domain FROM users WHERE work_domain IS NOT NULL AND work_domain <> ''`)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var email, workDomain string
		if err := rows.Scan(&email, &workDomain); err != nil {
			return nil, apperror.Internal(err)
		}
		out[email] = workDomain
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return out, nil
}

// mutate runs a single-statement update and returns the resulting row.
func (r *userRepo) mutate(ctx context.Context, set string, args ...any) (*domain.User, error) {
	query := `UPDATE users SET ` + set + `, updated_at = NOW() WHERE id = $1 RETURNING ` + userColumns
	user, err := scanUser(conn(ctx, r.db).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("User not found")
		}
		return nil, apperror.Internal(err)
	}
	return user, nil
}

func (r *userRepo) AddSavedJob(ctx context.Context, userID, jobID string) (*domain.User, error) {
	return r.mutate(ctx, `saved_jobs = CASE
			WHEN $2::text = ANY(saved_jobs) THEN saved_jobs
			ELSE array_append(saved_jobs, $2::text) END`,
		userID, jobID)
}

func (r *userRepo) RemoveSavedJob(ctx context.Context, userID, jobID string) (*domain.User, error) {
	return r.mutate(ctx, `saved_jobs = array_remove(saved_jobs, $2::text)`, userID, jobID)
}

func (r *userRepo) AddNotInterested(ctx context.Context, userID string, c domain.NotInterestedCategory) (*domain.User, error) {
	entry, err := jsonArg([]domain.NotInterestedCategory{c})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	// Entries always carry both keys, so containment is equality here
	return r.mutate(ctx, `not_interested_categories = CASE
			WHEN not_interested_categories @> $2::jsonb THEN not_interested_categories
			ELSE not_interested_categories || $2::jsonb END`,
		userID, entry)
}

func (r *userRepo) RemoveNotInterested(ctx context.Context, userID string, c domain.NotInterestedCategory) (*domain.User, error) {
	entry, err := jsonArg(c)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return r.mutate(ctx, `not_interested_categories = COALESCE(
			(SELECT jsonb_agg(e) FROM jsonb_array_elements(not_interested_categories) e WHERE e <> $2::jsonb),
			'[]'::jsonb)`,
		userID, entry)
}

func (r *userRepo) AddAppliedJob(ctx context.Context, userID string, job domain.AppliedJob) (*domain.User, error) {
	entry, err := jsonArg([]domain.AppliedJob{job})
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return r.mutate(ctx, `applied_jobs = CASE
			WHEN applied_jobs @> jsonb_build_array(jsonb_build_object('job_id', $3::text)) THEN applied_jobs
			ELSE applied_jobs || $2::jsonb END`,
		userID, entry, job.JobID)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
