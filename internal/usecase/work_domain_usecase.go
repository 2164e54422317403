package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/logger"
	"go-jobseeker-backend/pkg/report"
)

type workDomainUsecase struct {
	users   domain.UserRepository
	domains domain.WorkDomainRepository
	tx      domain.Transactor
	now     func() time.Time
}

func NewWorkDomainUsecase(users domain.UserRepository, domains domain.WorkDomainRepository, tx domain.Transactor) domain.WorkDomainUsecase {
	return &workDomainUsecase{
		users:   users,
		domains: domains,
		tx:      tx,
		now:     time.Now,
	}
}

func invalidDomain(name string) error {
	return apperror.InvalidDomain(
		fmt.Sprintf("%q is not a recognized work domain", name),
		domain.WorkDomainNames(),
	)
}

// SetUserDomain writes the user's domain and moves their email between
// registry entries (remove from the old one, then add to the new one) in one
// transaction. The user row is locked for the duration and the write is
// version-guarded, so a racing change fails with Conflict instead of leaving
// the email in two entries. Setting the current domain again changes nothing.
func (u *workDomainUsecase) SetUserDomain(ctx context.Context, actor domain.Identity, userID, name string) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	target, ok := domain.ParseWorkDomain(name)
	if !ok {
		return nil, invalidDomain(name)
	}

	var updated *domain.User
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := u.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		previous := user.WorkDomain
		if previous == string(target) {
			updated = user
			return nil
		}

		if err := u.users.SetWorkDomain(ctx, user, string(target)); err != nil {
			return err
		}
		if previous != "" {
			if err := u.domains.RemoveMember(ctx, domain.WorkDomain(previous), user.Email); err != nil {
				return err
			}
		}
		if err := u.domains.AddMember(ctx, target, user.Email); err != nil {
			return err
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("work domain changed", "user_id", userID, "domain", string(target))
	return updated, nil
}

func (u *workDomainUsecase) ClearUserDomain(ctx context.Context, actor domain.Identity, userID string) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}

	var updated *domain.User
	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := u.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		updated = user
		if user.WorkDomain == "" {
			return nil
		}

		previous := user.WorkDomain
		if err := u.users.SetWorkDomain(ctx, user, ""); err != nil {
			return err
		}
		return u.domains.RemoveMember(ctx, domain.WorkDomain(previous), user.Email)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RenameMember swaps oldEmail for newEmail in one registry entry.
func (u *workDomainUsecase) RenameMember(ctx context.Context, name domain.WorkDomain, oldEmail, newEmail string) error {
	if oldEmail == newEmail || name == "" {
		return nil
	}
	return u.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := u.domains.RemoveMember(ctx, name, oldEmail); err != nil {
			return err
		}
		return u.domains.AddMember(ctx, name, newEmail)
	})
}

// SeedCatalog creates a registry entry for every catalog name. Existing
// entries keep their members.
func (u *workDomainUsecase) SeedCatalog(ctx context.Context) error {
	for _, d := range domain.WorkDomains() {
		if err := u.domains.Upsert(ctx, d); err != nil {
			return fmt.Errorf("seed %s: %w", d, err)
		}
	}
	return nil
}

// entriesByCatalog returns one entry per catalog name, in catalog order.
func (u *workDomainUsecase) entriesByCatalog(ctx context.Context) ([]domain.DomainEntry, error) {
	stored, err := u.domains.List(ctx)
	if err != nil {
		return nil, err
	}
	byName := make(map[domain.WorkDomain]domain.DomainEntry, len(stored))
	for _, e := range stored {
		byName[e.Name] = e
	}

	catalog := domain.WorkDomains()
	out := make([]domain.DomainEntry, 0, len(catalog))
	for _, d := range catalog {
		e, ok := byName[d]
		if !ok {
			e = domain.DomainEntry{Name: d}
		}
		if e.UserEmails == nil {
			e.UserEmails = []string{}
		}
		out = append(out, e)
	}
	return out, nil
}

func (u *workDomainUsecase) Catalog(ctx context.Context) ([]domain.DomainSummary, error) {
	entries, err := u.entriesByCatalog(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DomainSummary, len(entries))
	for i, e := range entries {
		out[i] = domain.DomainSummary{Name: e.Name, MemberCount: len(e.UserEmails)}
	}
	return out, nil
}

func (u *workDomainUsecase) Members(ctx context.Context, name string) ([]string, error) {
	d, ok := domain.ParseWorkDomain(name)
	if !ok {
		return nil, invalidDomain(name)
	}
	entry, err := u.domains.Get(ctx, d)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			return []string{}, nil
		}
		return nil, err
	}
	if entry.UserEmails == nil {
		return []string{}, nil
	}
	return entry.UserEmails, nil
}

// Reconcile rebuilds every catalog entry from the users' work_domain values.
// Entries already matching are left untouched.
func (u *workDomainUsecase) Reconcile(ctx context.Context) (*domain.ReconcileReport, error) {
	memberships, err := u.users.ListDomainMemberships(ctx)
	if err != nil {
		return nil, err
	}

	desired := make(map[domain.WorkDomain][]string)
	invalid := map[string]struct{}{}
	members := 0
	for email, value := range memberships {
		d, ok := domain.ParseWorkDomain(value)
		if !ok {
			invalid[value] = struct{}{}
			continue
		}
		desired[d] = append(desired[d], email)
		members++
	}

	current, err := u.entriesByCatalog(ctx)
	if err != nil {
		return nil, err
	}

	report := &domain.ReconcileReport{
		Domains: len(current),
		Members: members,
	}
	for _, e := range current {
		want := desired[e.Name]
		sort.Strings(want)
		if sameMembers(e.UserEmails, want) {
			continue
		}
		if err := u.domains.ReplaceMembers(ctx, e.Name, want); err != nil {
			return nil, err
		}
		report.Changed++
	}

	for v := range invalid {
		report.InvalidValues = append(report.InvalidValues, v)
	}
	sort.Strings(report.InvalidValues)
	report.ReconciledAt = u.now().UTC()

	if report.Changed > 0 || len(report.InvalidValues) > 0 {
		logger.Log.Warn("domain registry reconciled",
			"changed", report.Changed,
			"members", report.Members,
			"invalid_values", report.InvalidValues,
		)
	}
	return report, nil
}

func sameMembers(have, want []string) bool {
	if len(have) != len(want) {
		return false
	}
	set := make(map[string]struct{}, len(have))
	for _, e := range have {
		set[e] = struct{}{}
	}
	for _, e := range want {
		if _, ok := set[e]; !ok {
			return false
		}
	}
	return true
}

func (u *workDomainUsecase) Export(ctx context.Context) ([]byte, error) {
	entries, err := u.entriesByCatalog(ctx)
	if err != nil {
		return nil, err
	}
	data, err := report.DomainRegistryWorkbook(entries)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return data, nil
}
