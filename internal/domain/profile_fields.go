package domain

import (
	"encoding/json"
	"fmt"
)

type FieldKind int

const (
	FieldScalar FieldKind = iota
	FieldList
	FieldObject
)

func (k FieldKind) String() string {
	switch k {
	case FieldList:
		return "list"
	case FieldObject:
		return "object"
	default:
		return "scalar"
	}
}

// ProfileFieldWorkDomain is accepted by profile updates but routed through the
// domain registry instead of being written directly.
const ProfileFieldWorkDomain = "work_domain"

// ProfileField describes one key a client may send in a profile update.
type ProfileField struct {
	Key  string
	Kind FieldKind

	decode func(u *User, raw json.RawMessage) error
	copy   func(dst, src *User)
}

// Apply decodes raw into the field on u. A JSON null resets the field to its
// zero value; lists and objects are replaced wholesale.
func (f ProfileField) Apply(u *User, raw json.RawMessage) error {
	if err := f.decode(u, raw); err != nil {
		return fmt.Errorf("%s: expected %s value: %w", f.Key, f.Kind, err)
	}
	return nil
}

// CopyTo copies the field's current value from src into dst.
func (f ProfileField) CopyTo(dst, src *User) {
	f.copy(dst, src)
}

func field[T any](key string, kind FieldKind, ref func(u *User) *T) ProfileField {
	return ProfileField{
		Key:  key,
		Kind: kind,
		decode: func(u *User, raw json.RawMessage) error {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			*ref(u) = v
			return nil
		},
		copy: func(dst, src *User) {
			*ref(dst) = *ref(src)
		},
	}
}

var profileFields = []ProfileField{
	field("name", FieldScalar, func(u *User) *string { return &u.Name }),
	field("email", FieldScalar, func(u *User) *string { return &u.Email }),
	field("gender", FieldScalar, func(u *User) *string { return &u.Gender }),
	field("pronouns", FieldScalar, func(u *User) *string { return &u.Pronouns }),
	field("nationality", FieldScalar, func(u *User) *string { return &u.Nationality }),
	field("resident_country", FieldScalar, func(u *User) *string { return &u.ResidentCountry }),
	field("timezone", FieldScalar, func(u *User) *string { return &u.Timezone }),
	field("qualification", FieldScalar, func(u *User) *string { return &u.Qualification }),
	field("dream_job_title", FieldScalar, func(u *User) *string { return &u.DreamJobTitle }),
	field("branding_statement", FieldScalar, func(u *User) *string { return &u.BrandingStatement }),
	field("phone", FieldScalar, func(u *User) *string { return &u.Phone }),
	field("interview_mode", FieldScalar, func(u *User) *string { return &u.InterviewMode }),
	field("willing_to_relocate", FieldScalar, func(u *User) *bool { return &u.WillingToRelocate }),
	field("willing_to_travel", FieldScalar, func(u *User) *bool { return &u.WillingToTravel }),
	field(ProfileFieldWorkDomain, FieldScalar, func(u *User) *string { return &u.WorkDomain }),

	field("known_languages", FieldList, func(u *User) *[]string { return &u.KnownLanguages }),
	field("achievements", FieldList, func(u *User) *[]string { return &u.Achievements }),
	field("skills", FieldList, func(u *User) *[]string { return &u.Skills }),
	field("hobbies", FieldList, func(u *User) *[]string { return &u.Hobbies }),
	field("preferred_job_types", FieldList, func(u *User) *[]string { return &u.PreferredJobTypes }),
	field("preferred_work_environments", FieldList, func(u *User) *[]string { return &u.PreferredWorkEnvironments }),
	field("preferred_locations", FieldList, func(u *User) *[]string { return &u.PreferredLocations }),
	field("education", FieldList, func(u *User) *[]Education { return &u.Education }),
	field("work_experience", FieldList, func(u *User) *[]WorkExperience { return &u.WorkExperience }),

	field("emergency_contact", FieldObject, func(u *User) **EmergencyContact { return &u.EmergencyContact }),
	field("social_links", FieldObject, func(u *User) **SocialLinks { return &u.SocialLinks }),
	field("expected_salary", FieldObject, func(u *User) **ExpectedSalary { return &u.ExpectedSalary }),
	field("address", FieldObject, func(u *User) **Address { return &u.Address }),
}

var profileFieldIndex = func() map[string]ProfileField {
	idx := make(map[string]ProfileField, len(profileFields))
	for _, f := range profileFields {
		idx[f.Key] = f
	}
	return idx
}()

// LookupProfileField returns the field registered under key.
func LookupProfileField(key string) (ProfileField, bool) {
	f, ok := profileFieldIndex[key]
	return f, ok
}

// AllowedProfileFields lists every key a profile update accepts.
func AllowedProfileFields() []string {
	out := make([]string, len(profileFields))
	for i, f := range profileFields {
		out[i] = f.Key
	}
	return out
}
