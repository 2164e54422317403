package usecase

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"go-jobseeker-backend/internal/domain"
	"go-jobseeker-backend/pkg/apperror"
	"go-jobseeker-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type profileUsecase struct {
	users    domain.UserRepository
	domains  domain.WorkDomainUsecase
	tx       domain.Transactor
	validate *validator.Validate
}

func NewProfileUsecase(users domain.UserRepository, domains domain.WorkDomainUsecase, tx domain.Transactor, validate *validator.Validate) domain.ProfileUsecase {
	return &profileUsecase{
		users:    users,
		domains:  domains,
		tx:       tx,
		validate: validate,
	}
}

func (u *profileUsecase) Get(ctx context.Context, actor domain.Identity, userID string) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}
	return u.users.GetByID(ctx, userID)
}

// profileChange is a decoded and validated update, not yet applied to a stored user.
type profileChange struct {
	candidate *domain.User
	fields    []domain.ProfileField

	hasDomain bool
	domain    string // empty clears the domain
}

func (c *profileChange) touches(key string) bool {
	for _, f := range c.fields {
		if f.Key == key {
			return true
		}
	}
	return false
}

// decode rejects the whole update if any key is unknown, then decodes every
// value onto an empty candidate so only the touched fields are validated.
func (u *profileUsecase) decode(fields map[string]json.RawMessage) (*profileChange, error) {
	if len(fields) == 0 {
		return nil, apperror.BadRequest("No fields to update")
	}

	keys := make([]string, 0, len(fields))
	var unknown []string
	for key := range fields {
		if _, ok := domain.LookupProfileField(key); !ok {
			unknown = append(unknown, key)
		}
		keys = append(keys, key)
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, apperror.UnknownField(unknown, domain.AllowedProfileFields())
	}
	sort.Strings(keys)

	change := &profileChange{candidate: &domain.User{}}
	var messages []string
	for _, key := range keys {
		raw := fields[key]

		if key == domain.ProfileFieldWorkDomain {
			var name *string
			if err := json.Unmarshal(raw, &name); err != nil {
				messages = append(messages, key+": expected a string or null")
				continue
			}
			change.hasDomain = true
			if name != nil {
				change.domain = strings.TrimSpace(*name)
			}
			continue
		}

		f, _ := domain.LookupProfileField(key)
		if err := f.Apply(change.candidate, raw); err != nil {
			messages = append(messages, err.Error())
			continue
		}
		change.fields = append(change.fields, f)
	}
	if len(messages) > 0 {
		return nil, apperror.Validation(messages)
	}

	if change.touches("email") {
		change.candidate.Email = domain.NormalizeEmail(change.candidate.Email)
		if change.candidate.Email == "" {
			return nil, apperror.Validation([]string{"email: is required"})
		}
	}

	if err := u.validate.Struct(change.candidate); err != nil {
		return nil, apperror.Validation(validation.FormatValidationErrors(err))
	}

	if change.hasDomain && change.domain != "" {
		if _, ok := domain.ParseWorkDomain(change.domain); !ok {
			return nil, invalidDomain(change.domain)
		}
	}

	return change, nil
}

// ApplyUpdate writes the given profile fields. Lists and objects replace the
// stored value wholesale. work_domain goes through the domain synchronizer and
// a changed email is carried over in the registry, all in one transaction.
func (u *profileUsecase) ApplyUpdate(ctx context.Context, actor domain.Identity, userID string, fields map[string]json.RawMessage) (*domain.User, error) {
	if err := requireOwner(actor, userID); err != nil {
		return nil, err
	}

	change, err := u.decode(fields)
	if err != nil {
		return nil, err
	}

	var updated *domain.User
	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		user, err := u.users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if len(change.fields) > 0 {
			oldEmail := user.Email
			for _, f := range change.fields {
				f.CopyTo(user, change.candidate)
			}
			if err := u.users.UpdateProfile(ctx, user); err != nil {
				return err
			}
			if user.Email != oldEmail && user.WorkDomain != "" {
				if err := u.domains.RenameMember(ctx, domain.WorkDomain(user.WorkDomain), oldEmail, user.Email); err != nil {
					return err
				}
			}
		}

		updated = user
		if !change.hasDomain {
			return nil
		}

		if change.domain == "" {
			updated, err = u.domains.ClearUserDomain(ctx, actor, userID)
		} else {
			updated, err = u.domains.SetUserDomain(ctx, actor, userID, change.domain)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
