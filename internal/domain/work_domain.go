package domain

import (
	"context"
	"time"
)

// WorkDomain is a fixed work-category label. The catalog below is the single
// source of truth for seeding the registry and for validating user input.
type WorkDomain string

const (
	DomainEngineering         WorkDomain = "Engineering"
	DomainSoftwareDevelopment WorkDomain = "Software Development"
	DomainDataScience         WorkDomain = "Data Science"
	DomainDesign              WorkDomain = "Design"
	DomainProductManagement   WorkDomain = "Product Management"
	DomainMarketing           WorkDomain = "Marketing"
	DomainSales               WorkDomain = "Sales"
	DomainCustomerSupport     WorkDomain = "Customer Support"
	DomainFinance             WorkDomain = "Finance"
	DomainAccounting          WorkDomain = "Accounting"
	DomainHumanResources      WorkDomain = "Human Resources"
	DomainOperations          WorkDomain = "Operations"
	DomainLegal               WorkDomain = "Legal"
	DomainHealthcare          WorkDomain = "Healthcare"
	DomainEducation           WorkDomain = "Education"
	DomainResearch            WorkDomain = "Research"
	DomainConsulting          WorkDomain = "Consulting"
	DomainManufacturing       WorkDomain = "Manufacturing"
	DomainLogistics           WorkDomain = "Logistics"
	DomainRetail              WorkDomain = "Retail"
	DomainHospitality         WorkDomain = "Hospitality"
	DomainMedia               WorkDomain = "Media"
	DomainWriting             WorkDomain = "Writing"
	DomainArts                WorkDomain = "Arts"
	DomainConstruction        WorkDomain = "Construction"
	DomainRealEstate          WorkDomain = "Real Estate"
	DomainGovernment          WorkDomain = "Government"
	DomainNonprofit           WorkDomain = "Nonprofit"
	DomainSecurity            WorkDomain = "Security"
	DomainAdministration      WorkDomain = "Administration"
	DomainOther               WorkDomain = "Other"
)

var workDomainCatalog = []WorkDomain{
	DomainEngineering, DomainSoftwareDevelopment, DomainDataScience, DomainDesign,
	DomainProductManagement, DomainMarketing, DomainSales, DomainCustomerSupport,
	DomainFinance, DomainAccounting, DomainHumanResources, DomainOperations,
	DomainLegal, DomainHealthcare, DomainEducation, DomainResearch,
	DomainConsulting, DomainManufacturing, DomainLogistics, DomainRetail,
	DomainHospitality, DomainMedia, DomainWriting, DomainArts,
	DomainConstruction, DomainRealEstate, DomainGovernment, DomainNonprofit,
	DomainSecurity, DomainAdministration, DomainOther,
}

var workDomainIndex = func() map[WorkDomain]struct{} {
	idx := make(map[WorkDomain]struct{}, len(workDomainCatalog))
	for _, d := range workDomainCatalog {
		idx[d] = struct{}{}
	}
	return idx
}()

// WorkDomains returns a copy of the catalog in declaration order.
func WorkDomains() []WorkDomain {
	out := make([]WorkDomain, len(workDomainCatalog))
	copy(out, workDomainCatalog)
	return out
}

// WorkDomainNames returns the catalog as plain strings.
func WorkDomainNames() []string {
	out := make([]string, len(workDomainCatalog))
	for i, d := range workDomainCatalog {
		out[i] = string(d)
	}
	return out
}

// ParseWorkDomain matches name exactly against the catalog.
func ParseWorkDomain(name string) (WorkDomain, bool) {
	d := WorkDomain(name)
	_, ok := workDomainIndex[d]
	return d, ok
}

func (d WorkDomain) Valid() bool {
	_, ok := workDomainIndex[d]
	return ok
}

// DomainEntry is a registry record: a catalog name and its member emails.
type DomainEntry struct {
	Name       WorkDomain `json:"name"`
	UserEmails []string   `json:"user_emails"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

type DomainSummary struct {
	Name        WorkDomain `json:"name"`
	MemberCount int        `json:"member_count"`
}

type ReconcileReport struct {
	Domains       int       `json:"domains"`
	Members       int       `json:"members"`
	Changed       int       `json:"changed"`
	ReconciledAt  time.Time `json:"reconciled_at"`
	InvalidValues []string  `json:"invalid_values,omitempty"`
}

type WorkDomainRepository interface {
	// Upsert creates the entry when missing and leaves members untouched otherwise.
	Upsert(ctx context.Context, name WorkDomain) error
	// AddMember creates the entry when missing; adding a present email is a no-op.
	AddMember(ctx context.Context, name WorkDomain, email string) error
	// RemoveMember is idempotent.
	RemoveMember(ctx context.Context, name WorkDomain, email string) error
	Get(ctx context.Context, name WorkDomain) (*DomainEntry, error)
	List(ctx context.Context) ([]DomainEntry, error)
	// ReplaceMembers overwrites the member set of an entry, creating it when missing.
	ReplaceMembers(ctx context.Context, name WorkDomain, emails []string) error
}

type WorkDomainUsecase interface {
	SetUserDomain(ctx context.Context, actor Identity, userID, name string) (*User, error)
	ClearUserDomain(ctx context.Context, actor Identity, userID string) (*User, error)
	RenameMember(ctx context.Context, name WorkDomain, oldEmail, newEmail string) error
	SeedCatalog(ctx context.Context) error
	Catalog(ctx context.Context) ([]DomainSummary, error)
	Members(ctx context.Context, name string) ([]string, error)
	Reconcile(ctx context.Context) (*ReconcileReport, error)
	Export(ctx context.Context) ([]byte, error)
}
