package postgres

import (
	"context"
	"errors"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type workDomainRepo struct {
	db *pgxpool.Pool
}

func NewWorkDomainRepository(db *pgxpool.Pool) domain.WorkDomainRepository {
	return &workDomainRepo{db: db}
}

func (r *workDomainRepo) Upsert(ctx context.Context, name domain.WorkDomain) error {
	_, err := conn(ctx, r.db).Exec(ctx,
		`INSERT INTO work_domains (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`,
		string(name))
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// AddMember is a single upsert so concurrent adds to one entry serialize on its row.
func (r *workDomainRepo) AddMember(ctx context.Context, name domain.WorkDomain, email string) error {
	query := `
		INSERT INTO work_domains (name, user_emails, updated_at)
		VALUES ($1, ARRAY[$2::text], NOW())
		ON CONFLICT (name) DO UPDATE SET
			user_emails = CASE
				WHEN $2::text = ANY(work_domains.user_emails) THEN work_domains.user_emails
				ELSE array_append(work_domains.user_emails, $2::text) END,
			updated_at = NOW()`
	if _, err := conn(ctx, r.db).Exec(ctx, query, string(name), email); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *workDomainRepo) RemoveMember(ctx context.Context, name domain.WorkDomain, email string) error {
	query := `
		UPDATE work_domains
		SET user_emails = array_remove(user_emails, $2::text), updated_at = NOW()
		WHERE name = $1 AND $2::text = ANY(user_emails)`
	if _, err := conn(ctx, r.db).Exec(ctx, query, string(name), email); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *workDomainRepo) Get(ctx context.Context, name domain.WorkDomain) (*domain.DomainEntry, error) {
	var e domain.DomainEntry
	var entryName string
	err := conn(ctx, r.db).QueryRow(ctx,
		`SELECT name, user_emails, updated_at FROM work_domains WHERE name = $1`, string(name),
	).Scan(&entryName, pq.Array(&e.UserEmails), &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Domain entry not found")
		}
		return nil, apperror.Internal(err)
	}
	e.Name = domain.WorkDomain(entryName)
	return &e, nil
}

func (r *workDomainRepo) List(ctx context.Context) ([]domain.DomainEntry, error) {
	rows, err := conn(ctx, r.db).Query(ctx,
		`SELECT name, user_emails, updated_at FROM work_domains ORDER BY name`)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	var entries []domain.DomainEntry
	for rows.Next() {
		var e domain.DomainEntry
		var entryName string
		if err := rows.Scan(&entryName, pq.Array(&e.UserEmails), &e.UpdatedAt); err != nil {
			return nil, apperror.Internal(err)
		}
		e.Name = domain.WorkDomain(entryName)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return entries, nil
}

func (r *workDomainRepo) ReplaceMembers(ctx context.Context, name domain.WorkDomain, emails []string) error {
	query := `
		INSERT INTO work_domains (name, user_emails, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET user_emails = EXCLUDED.user_emails, updated_at = NOW()`
	if _, err := conn(ctx, r.db).Exec(ctx, query, string(name), pq.Array(nonNil(emails))); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
