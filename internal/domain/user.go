package domain

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Identity is the caller resolved by the access gate. It is passed explicitly
// into every usecase that acts on a user's resources.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// Owns reports whether the identity may act on the given user's resources.
func (i Identity) Owns(userID string) bool {
	return i.UserID != "" && i.UserID == userID
}

type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email" validate:"omitempty,email,max=254"`
	PasswordHash       string     `json:"-"`
	ResetCodeHash      string     `json:"-"`
	ResetCodeExpiresAt *time.Time `json:"-"`

	Profile

	// WorkDomain is empty when the user has not picked a domain.
	WorkDomain string `json:"work_domain,omitempty"`

	Resumes []Resume `json:"resumes"`
	// Legacy single-résumé mirror of the most recent upload.
	ResumeURL          string `json:"resume_url,omitempty"`
	ResumeStorageID    string `json:"-"`
	ResumeDownloadable bool   `json:"resume_downloadable"`

	SavedJobs                  []string                `json:"saved_jobs"`
	NotInterestedJobCategories []NotInterestedCategory `json:"not_interested_job_categories"`
	AppliedJobs                []AppliedJob            `json:"applied_jobs"`

	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile holds the user-editable profile fields. Lists and objects are
// always replaced wholesale by updates.
type Profile struct {
	Name              string `json:"name,omitempty" validate:"omitempty,max=100,valid_name,no_emoji"`
	Gender            string `json:"gender,omitempty" validate:"omitempty,oneof=male female non_binary other prefer_not_to_say"`
	Pronouns          string `json:"pronouns,omitempty" validate:"omitempty,max=30,no_emoji"`
	Nationality       string `json:"nationality,omitempty" validate:"omitempty,max=60"`
	ResidentCountry   string `json:"resident_country,omitempty" validate:"omitempty,max=60"`
	Timezone          string `json:"timezone,omitempty" validate:"omitempty,timezone"`
	Qualification     string `json:"qualification,omitempty" validate:"omitempty,max=120"`
	DreamJobTitle     string `json:"dream_job_title,omitempty" validate:"omitempty,max=120,no_emoji"`
	BrandingStatement string `json:"branding_statement,omitempty" validate:"omitempty,max=500"`
	Phone             string `json:"phone,omitempty" validate:"omitempty,valid_phone"`
	InterviewMode     string `json:"interview_mode,omitempty" validate:"omitempty,oneof=online onsite hybrid"`
	WillingToRelocate bool   `json:"willing_to_relocate"`
	WillingToTravel   bool   `json:"willing_to_travel"`

	KnownLanguages            []string         `json:"known_languages,omitempty" validate:"omitempty,max=30,dive,min=1,max=60"`
	Achievements              []string         `json:"achievements,omitempty" validate:"omitempty,max=50,dive,min=1,max=300"`
	Skills                    []string         `json:"skills,omitempty" validate:"omitempty,max=100,dive,min=1,max=60"`
	Hobbies                   []string         `json:"hobbies,omitempty" validate:"omitempty,max=30,dive,min=1,max=60"`
	PreferredJobTypes         []string         `json:"preferred_job_types,omitempty" validate:"omitempty,max=10,dive,min=1,max=60"`
	PreferredWorkEnvironments []string         `json:"preferred_work_environments,omitempty" validate:"omitempty,max=10,dive,min=1,max=60"`
	PreferredLocations        []string         `json:"preferred_locations,omitempty" validate:"omitempty,max=20,dive,min=1,max=100"`
	Education                 []Education      `json:"education,omitempty" validate:"omitempty,max=20,dive"`
	WorkExperience            []WorkExperience `json:"work_experience,omitempty" validate:"omitempty,max=30,dive"`

	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`
	SocialLinks      *SocialLinks      `json:"social_links,omitempty"`
	ExpectedSalary   *ExpectedSalary   `json:"expected_salary,omitempty"`
	Address          *Address          `json:"address,omitempty"`
}

type EmergencyContact struct {
	Name     string `json:"name" validate:"required,max=100,valid_name"`
	Relation string `json:"relation" validate:"omitempty,max=50"`
	Phone    string `json:"phone" validate:"required,valid_phone"`
}

type SocialLinks struct {
	LinkedIn  string `json:"linkedin,omitempty" validate:"omitempty,url"`
	GitHub    string `json:"github,omitempty" validate:"omitempty,url"`
	Portfolio string `json:"portfolio,omitempty" validate:"omitempty,url"`
	Twitter   string `json:"twitter,omitempty" validate:"omitempty,url"`
	Website   string `json:"website,omitempty" validate:"omitempty,url"`
}

type ExpectedSalary struct {
	Currency string `json:"currency" validate:"required,len=3"`
	Min      int64  `json:"min" validate:"gte=0"`
	Max      int64  `json:"max" validate:"gtefield=Min"`
	Period   string `json:"period" validate:"omitempty,oneof=hour month year"`
}

type Address struct {
	Line1      string `json:"line1,omitempty" validate:"omitempty,max=200"`
	City       string `json:"city,omitempty" validate:"omitempty,max=100"`
	State      string `json:"state,omitempty" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Country    string `json:"country,omitempty" validate:"omitempty,max=60"`
}

type Education struct {
	Institution string `json:"institution" validate:"required,max=150"`
	Degree      string `json:"degree,omitempty" validate:"omitempty,max=100"`
	Field       string `json:"field,omitempty" validate:"omitempty,max=100"`
	StartYear   int    `json:"start_year,omitempty" validate:"omitempty,gte=1950,max_current_year"`
	EndYear     int    `json:"end_year,omitempty" validate:"omitempty,gte=1950"`
}

type WorkExperience struct {
	Company     string `json:"company" validate:"required,max=150"`
	Title       string `json:"title" validate:"required,max=120"`
	StartYear   int    `json:"start_year,omitempty" validate:"omitempty,gte=1950,max_current_year"`
	EndYear     int    `json:"end_year,omitempty" validate:"omitempty,gte=1950"`
	Description string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// NotInterestedCategory is deduplicated by equality of the pair.
type NotInterestedCategory struct {
	Category    string `json:"category" validate:"required,max=100"`
	Subcategory string `json:"subcategory" validate:"omitempty,max=100"`
}

type AppliedJob struct {
	JobID     string    `json:"job_id"`
	AppliedAt time.Time `json:"applied_at"`
}

// NormalizeEmail lower-cases and trims an address; emails are unique case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// UpdateProfile writes the profile fields and email, guarded by user.Version.
	// On success user.Version is advanced.
	UpdateProfile(ctx context.Context, user *User) error
	// UpdateResumes writes the résumé list and its legacy mirror, guarded by user.Version.
	UpdateResumes(ctx context.Context, user *User) error
	// SetWorkDomain writes user's domain, guarded by user.Version.
	SetWorkDomain(ctx context.Context, user *User, domain string) error
	SetPassword(ctx context.Context, userID, passwordHash string) error
	SetResetCode(ctx context.Context, userID, codeHash string, expiresAt time.Time) error
	ClearResetCode(ctx context.Context, userID string) error
	// RecordResetFailure counts a wrong reset code. Once maxAttempts is
	// reached the code is discarded and exhausted is true.
	RecordResetFailure(ctx context.Context, userID string, maxAttempts int) (exhausted bool, err error)
	// ListDomainMemberships returns email -> work domain for every user with a domain.
	ListDomainMemberships(ctx context.Context) (map[string]string, error)

	AddSavedJob(ctx context.Context, userID, jobID string) (*User, error)
	RemoveSavedJob(ctx context.Context, userID, jobID string) (*User, error)
	AddNotInterested(ctx context.Context, userID string, c NotInterestedCategory) (*User, error)
	RemoveNotInterested(ctx context.Context, userID string, c NotInterestedCategory) (*User, error)
	AddAppliedJob(ctx context.Context, userID string, job AppliedJob) (*User, error)
}

// Transactor runs fn inside a single storage transaction. Repositories
// called with the ctx handed to fn participate in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      *User     `json:"user"`
}

type AuthUsecase interface {
	Register(ctx context.Context, email, password, name string) (*AuthResult, error)
	Login(ctx context.Context, email, password, ip string) (*AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	Me(ctx context.Context, actor Identity) (*User, error)
	ResolveToken(ctx context.Context, token string) (Identity, error)
}

type ProfileUsecase interface {
	Get(ctx context.Context, actor Identity, userID string) (*User, error)
	ApplyUpdate(ctx context.Context, actor Identity, userID string, fields map[string]json.RawMessage) (*User, error)
}

type JobPreferenceUsecase interface {
	SaveJob(ctx context.Context, actor Identity, userID, jobID string) (*User, error)
	UnsaveJob(ctx context.Context, actor Identity, userID, jobID string) (*User, error)
	MarkNotInterested(ctx context.Context, actor Identity, userID string, c NotInterestedCategory) (*User, error)
	UnmarkNotInterested(ctx context.Context, actor Identity, userID string, c NotInterestedCategory) (*User, error)
	RecordApplication(ctx context.Context, actor Identity, userID, jobID string) (*User, error)
}
