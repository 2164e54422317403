package report

import (
	"bytes"
	"testing"
	"time"

	"go-jobseeker-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestDomainRegistryWorkbook(t *testing.T) {
	entries := []domain.DomainEntry{
		{Name: domain.DomainEngineering, UserEmails: []string{"a@x.io", "b@x.io"}, UpdatedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)},
		{Name: domain.DomainLegal},
	}

	data, err := DomainRegistryWorkbook(entries)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"DOMAIN", "MEMBERS", "UPDATED AT"}, summary[0])
	assert.Equal(t, "Engineering", summary[1][0])
	assert.Equal(t, "2", summary[1][1])
	assert.Equal(t, "0", summary[2][1])

	members, err := f.GetRows(MembersSheet)
	require.NoError(t, err)
	require.Len(t, members, 3)
	assert.Equal(t, []string{"Engineering", "b@x.io"}, members[2])
}
