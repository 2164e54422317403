package domain_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"go-jobseeker-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resumes(n int) []domain.Resume {
	var list []domain.Resume
	for i := 0; i < n; i++ {
		list, _ = domain.AppendResume(list, domain.Resume{ID: fmt.Sprintf("r%d", i+1)})
	}
	return list
}

func TestAppendResume_FirstBecomesPrimary(t *testing.T) {
	list := resumes(3)

	assert.True(t, list[0].IsPrimary)
	assert.False(t, list[1].IsPrimary)
	assert.False(t, list[2].IsPrimary)
}

func TestAppendResume_LimitReached(t *testing.T) {
	list := resumes(domain.MaxResumes)
	require.Len(t, list, domain.MaxResumes)

	out, err := domain.AppendResume(list, domain.Resume{ID: "extra"})
	assert.ErrorIs(t, err, domain.ErrResumeLimit)
	assert.Len(t, out, domain.MaxResumes)
}

func TestRemoveResume(t *testing.T) {
	list := resumes(3)

	out, removed, err := domain.RemoveResume(list, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1", removed.ID)
	assert.Len(t, out, 2)

	_, ok := domain.PrimaryResume(out)
	assert.False(t, ok, "removing the primary must not promote another entry")

	_, _, err = domain.RemoveResume(out, "r1")
	assert.ErrorIs(t, err, domain.ErrResumeNotFound)
	assert.Len(t, list, 3, "input slice is not modified")
}

func TestSetPrimaryResume(t *testing.T) {
	list := resumes(3)

	out, err := domain.SetPrimaryResume(list, "r3")
	require.NoError(t, err)

	primaries := 0
	for _, r := range out {
		if r.IsPrimary {
			primaries++
			assert.Equal(t, "r3", r.ID)
		}
	}
	assert.Equal(t, 1, primaries)

	_, err = domain.SetPrimaryResume(list, "missing")
	assert.ErrorIs(t, err, domain.ErrResumeNotFound)
}

func TestSetResumeDownloadable(t *testing.T) {
	list := resumes(2)

	out, err := domain.SetResumeDownloadable(list, "r2", true)
	require.NoError(t, err)
	assert.False(t, out[0].IsDownloadable)
	assert.True(t, out[1].IsDownloadable)
	assert.False(t, list[1].IsDownloadable)
}

func TestMirrorLatestResume(t *testing.T) {
	u := &domain.User{}
	u.Resumes = []domain.Resume{
		{ID: "a", URL: "https://cdn/a.pdf", StorageID: "resumes/a.pdf"},
		{ID: "b", URL: "https://cdn/b.pdf", StorageID: "resumes/b.pdf", IsDownloadable: true},
	}

	u.MirrorLatestResume()
	assert.Equal(t, "https://cdn/b.pdf", u.ResumeURL)
	assert.Equal(t, "resumes/b.pdf", u.ResumeStorageID)
	assert.True(t, u.ResumeDownloadable)

	u.Resumes = nil
	u.MirrorLatestResume()
	assert.Empty(t, u.ResumeURL)
	assert.Empty(t, u.ResumeStorageID)
	assert.False(t, u.ResumeDownloadable)
}

func TestResumeExtension(t *testing.T) {
	assert.Equal(t, "PDF", domain.ResumeExtension("cv.final.pdf"))
	assert.Equal(t, "DOCX", domain.ResumeExtension("Resume.docx"))
	assert.Equal(t, "", domain.ResumeExtension("README"))
}

func TestWorkDomainCatalog(t *testing.T) {
	names := domain.WorkDomainNames()
	assert.Len(t, names, len(domain.WorkDomains()))
	assert.Contains(t, names, "Engineering")
	assert.Contains(t, names, "Legal")

	seen := map[string]bool{}
	for _, n := range names {
		assert.False(t, seen[n], "duplicate catalog entry %q", n)
		seen[n] = true
	}

	d, ok := domain.ParseWorkDomain("Legal")
	assert.True(t, ok)
	assert.Equal(t, domain.DomainLegal, d)

	_, ok = domain.ParseWorkDomain("legal")
	assert.False(t, ok, "matching is exact")
	_, ok = domain.ParseWorkDomain("Astrology")
	assert.False(t, ok)
}

func TestProfileField_Apply(t *testing.T) {
	u := &domain.User{}

	f, ok := domain.LookupProfileField("skills")
	require.True(t, ok)
	assert.Equal(t, domain.FieldList, f.Kind)
	require.NoError(t, f.Apply(u, json.RawMessage(`["go","sql"]`)))
	assert.Equal(t, []string{"go", "sql"}, u.Skills)

	require.NoError(t, f.Apply(u, json.RawMessage(`["rust"]`)))
	assert.Equal(t, []string{"rust"}, u.Skills, "lists are replaced, not merged")

	require.NoError(t, f.Apply(u, json.RawMessage(`null`)))
	assert.Nil(t, u.Skills)

	addr, _ := domain.LookupProfileField("address")
	require.NoError(t, addr.Apply(u, json.RawMessage(`{"city":"Lisbon"}`)))
	require.NotNil(t, u.Address)
	assert.Equal(t, "Lisbon", u.Address.City)

	name, _ := domain.LookupProfileField("name")
	assert.Error(t, name.Apply(u, json.RawMessage(`42`)))
}

func TestProfileField_CopyTo(t *testing.T) {
	src := &domain.User{}
	src.WillingToTravel = true
	dst := &domain.User{}

	f, _ := domain.LookupProfileField("willing_to_travel")
	f.CopyTo(dst, src)
	assert.True(t, dst.WillingToTravel)
}

func TestAllowedProfileFields(t *testing.T) {
	allowed := domain.AllowedProfileFields()
	assert.Contains(t, allowed, "work_domain")
	assert.Contains(t, allowed, "emergency_contact")
	assert.NotContains(t, allowed, "password")
	assert.NotContains(t, allowed, "resumes")

	_, ok := domain.LookupProfileField("id")
	assert.False(t, ok)
}

func TestIdentityOwns(t *testing.T) {
	id := domain.Identity{UserID: "u1"}
	assert.True(t, id.Owns("u1"))
	assert.False(t, id.Owns("u2"))
	assert.False(t, domain.Identity{}.Owns(""))
}
