package usecase_test

import (
	"context"
	"testing"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/internal/usecase"
	"go-jobseeker-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDomainFixture(t *testing.T, users ...*domain.User) (*memUsers, *memDomains, domain.WorkDomainUsecase) {
	t.Helper()
	repo := newMemUsers(users...)
	domains := newMemDomains()
	uc := usecase.NewWorkDomainUsecase(repo, domains, &passthroughTx{})
	require.NoError(t, uc.SeedCatalog(context.Background()))
	return repo, domains, uc
}

func TestSetUserDomain_MovesMembership(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1", Email: "ada@example.com"}
	users, domains, uc := newDomainFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"})

	_, err := uc.SetUserDomain(ctx, actor, "u1", "Engineering")
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com"}, domains.members(domain.DomainEngineering))

	updated, err := uc.SetUserDomain(ctx, actor, "u1", "Legal")
	require.NoError(t, err)
	assert.Equal(t, "Legal", updated.WorkDomain)
	assert.Equal(t, "Legal", users.get("u1").WorkDomain)
	assert.Empty(t, domains.members(domain.DomainEngineering))
	assert.Equal(t, []string{"ada@example.com"}, domains.members(domain.DomainLegal))
}

// interleavedUsers runs during once, right after the next row read, so a
// competing write lands between read and write of the outer call.
type interleavedUsers struct {
	*memUsers
	during func()
}

func (r *interleavedUsers) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	user, err := r.memUsers.GetByIDForUpdate(ctx, id)
	if fn := r.during; fn != nil {
		r.during = nil
		fn()
	}
	return user, err
}

func TestSetUserDomain_ConcurrentChangeConflicts(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1", Email: "ada@example.com"}
	users := &interleavedUsers{memUsers: newMemUsers(&domain.User{ID: "u1", Email: "ada@example.com", WorkDomain: "Engineering"})}
	domains := newMemDomains()
	uc := usecase.NewWorkDomainUsecase(users, domains, &passthroughTx{})
	require.NoError(t, uc.SeedCatalog(ctx))
	require.NoError(t, domains.AddMember(ctx, domain.DomainEngineering, "ada@example.com"))

	users.during = func() {
		_, err := uc.SetUserDomain(ctx, actor, "u1", "Design")
		require.NoError(t, err)
	}

	_, err := uc.SetUserDomain(ctx, actor, "u1", "Legal")
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))

	assert.Equal(t, "Design", users.get("u1").WorkDomain)
	assert.Equal(t, []string{"ada@example.com"}, domains.members(domain.DomainDesign))
	assert.Empty(t, domains.members(domain.DomainLegal))
	assert.Empty(t, domains.members(domain.DomainEngineering))
}

func TestSetUserDomain_Idempotent(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	_, domains, uc := newDomainFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"})

	for i := 0; i < 3; i++ {
		_, err := uc.SetUserDomain(ctx, actor, "u1", "Design")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"ada@example.com"}, domains.members(domain.DomainDesign))
}

func TestSetUserDomain_InvalidDomainChangesNothing(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users, domains, uc := newDomainFixture(t, &domain.User{ID: "u1", Email: "ada@example.com", WorkDomain: "Finance"})
	require.NoError(t, domains.AddMember(ctx, domain.DomainFinance, "ada@example.com"))

	_, err := uc.SetUserDomain(ctx, actor, "u1", "Astrology")
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidDomain, apperror.KindOf(err))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	details, ok := appErr.Details.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, domain.WorkDomainNames(), details["valid_domains"])

	assert.Equal(t, "Finance", users.get("u1").WorkDomain)
	assert.Equal(t, []string{"ada@example.com"}, domains.members(domain.DomainFinance))
}

func TestSetUserDomain_Ownership(t *testing.T) {
	ctx := context.Background()
	users, _, uc := newDomainFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"})

	_, err := uc.SetUserDomain(ctx, domain.Identity{UserID: "u2"}, "u1", "Legal")
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	_, err = uc.SetUserDomain(ctx, domain.Identity{}, "u1", "Legal")
	assert.Equal(t, apperror.KindUnauthorized, apperror.KindOf(err))

	assert.Empty(t, users.get("u1").WorkDomain)
}

func TestClearUserDomain(t *testing.T) {
	ctx := context.Background()
	actor := domain.Identity{UserID: "u1"}
	users, domains, uc := newDomainFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"})

	_, err := uc.SetUserDomain(ctx, actor, "u1", "Sales")
	require.NoError(t, err)

	updated, err := uc.ClearUserDomain(ctx, actor, "u1")
	require.NoError(t, err)
	assert.Empty(t, updated.WorkDomain)
	assert.Empty(t, users.get("u1").WorkDomain)
	assert.Empty(t, domains.members(domain.DomainSales))

	_, err = uc.ClearUserDomain(ctx, actor, "u1")
	assert.NoError(t, err)
}

func TestCatalogAndMembers(t *testing.T) {
	ctx := context.Background()
	_, _, uc := newDomainFixture(t, &domain.User{ID: "u1", Email: "ada@example.com"})

	_, err := uc.SetUserDomain(ctx, domain.Identity{UserID: "u1"}, "u1", "Research")
	require.NoError(t, err)

	catalog, err := uc.Catalog(ctx)
	require.NoError(t, err)
	require.Len(t, catalog, len(domain.WorkDomains()))
	assert.Equal(t, domain.DomainEngineering, catalog[0].Name)
	for _, s := range catalog {
		if s.Name == domain.DomainResearch {
			assert.Equal(t, 1, s.MemberCount)
		} else {
			assert.Zero(t, s.MemberCount)
		}
	}

	members, err := uc.Members(ctx, "Research")
	require.NoError(t, err)
	assert.Equal(t, []string{"ada@example.com"}, members)

	members, err = uc.Members(ctx, "Arts")
	require.NoError(t, err)
	assert.NotNil(t, members)
	assert.Empty(t, members)

	_, err = uc.Members(ctx, "research")
	assert.Equal(t, apperror.KindInvalidDomain, apperror.KindOf(err))
}

func TestReconcile_RepairsDrift(t *testing.T) {
	ctx := context.Background()
	_, domains, uc := newDomainFixture(t,
		&domain.User{ID: "u1", Email: "ada@example.com", WorkDomain: "Engineering"},
		&domain.User{ID: "u2", Email: "bob@example.com", WorkDomain: "Engineering"},
		&domain.User{ID: "u3", Email: "cy@example.com", WorkDomain: "Wizardry"},
	)
	// Stale membership left behind by an interrupted write
	require.NoError(t, domains.AddMember(ctx, domain.DomainLegal, "ada@example.com"))

	report, err := uc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Changed)
	assert.Equal(t, 2, report.Members)
	assert.Equal(t, []string{"Wizardry"}, report.InvalidValues)

	assert.Equal(t, []string{"ada@example.com", "bob@example.com"}, domains.members(domain.DomainEngineering))
	assert.Empty(t, domains.members(domain.DomainLegal))

	again, err := uc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Changed)
}

func TestRenameMember(t *testing.T) {
	ctx := context.Background()
	_, domains, uc := newDomainFixture(t)
	require.NoError(t, domains.AddMember(ctx, domain.DomainMedia, "old@example.com"))

	require.NoError(t, uc.RenameMember(ctx, domain.DomainMedia, "old@example.com", "new@example.com"))
	assert.Equal(t, []string{"new@example.com"}, domains.members(domain.DomainMedia))
}

func TestExport(t *testing.T) {
	_, _, uc := newDomainFixture(t)

	data, err := uc.Export(context.Background())
	require.NoError(t, err)
	require.Greater(t, len(data), 2)
	assert.Equal(t, "PK", string(data[:2]))
}
