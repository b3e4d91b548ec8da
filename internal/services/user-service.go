package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/SundayYogurt/logistics_service/pkg/utils"
	"go.uber.org/zap"
)

var (
	nationalIDPattern = regexp.MustCompile(`^\d{10}$`)
	shabaPattern      = regexp.MustCompile(`^IR\d{24}$`)
	allowedSex        = map[string]bool{"male": true, "female": true, "other": true}
)

type UserService interface {
	ResolveIdentity(ctx context.Context, userID uint) (Identity, error)

	// Profile
	GetProfile(ctx context.Context, userID uint) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uint, input dto.UpdateUserProfile) (*dto.UserProfileResponse, error)
	UploadAvatar(ctx context.Context, userID uint, file dto.UploadFile) (*dto.MediaResponse, error)

	// Admin: users, roles and permissions
	ListUsers(ctx context.Context, actor Identity, limit, offset int) ([]dto.UserProfileResponse, error)
	AssignRole(ctx context.Context, actor Identity, userID uint, roleName string) error
	ListRoles(ctx context.Context, actor Identity) ([]domain.Role, error)
	CreateRole(ctx context.Context, actor Identity, name string) (*domain.Role, error)
	ListPermissions(ctx context.Context, actor Identity) ([]domain.Permission, error)
	CreatePermission(ctx context.Context, actor Identity, name string) (*domain.Permission, error)
	GrantPermission(ctx context.Context, actor Identity, roleName, permission string) error

	// BootstrapOwner makes the user behind phone an owner, creating it if needed.
	BootstrapOwner(ctx context.Context, phone string) (*domain.User, error)
}

type userService struct {
	base
	media *MediaStore
}

func NewUserService(d Deps, media *MediaStore) UserService {
	return &userService{
		base:  newBase(d, "user"),
		media: media,
	}
}

func (s *userService) ResolveIdentity(ctx context.Context, userID uint) (Identity, error) {
	r := s.store.Repos(ctx)
	user, err := r.Users.FindByID(userID)
	if err != nil {
		return Identity{}, err
	}
	roleName, perms, err := roleOf(r, user)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		UserID:      user.ID,
		Role:        roleName,
		Verified:    user.IsVerified(),
		Permissions: perms,
	}, nil
}

func roleOf(r *repository.Repositories, user *domain.User) (string, []string, error) {
	if user.RoleID == nil {
		return domain.RoleUser, nil, nil
	}
	role, err := r.Roles.FindByID(*user.RoleID)
	if err != nil {
		return "", nil, err
	}
	return role.Name, role.PermissionNames(), nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*dto.UserProfileResponse, error) {
	r := s.store.Repos(ctx)
	user, err := r.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	return s.profile(r, user)
}

func (s *userService) profile(r *repository.Repositories, user *domain.User) (*dto.UserProfileResponse, error) {
	roleName, _, err := roleOf(r, user)
	if err != nil {
		return nil, err
	}

	var avatarURL *string
	if user.AvatarMediaID != nil {
		media, err := r.Media.FindByID(*user.AvatarMediaID)
		if err != nil {
			return nil, err
		}
		avatarURL = s.media.URLPtr(media)
	}

	return &dto.UserProfileResponse{
		ID:                 user.ID,
		PhoneNumber:        user.PhoneNumber,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		Birthdate:          helper.FormatDatePtr(user.Birthdate),
		Sex:                user.Sex,
		NationalID:         user.NationalID,
		ShabaNumber:        user.ShabaNumber,
		Address:            user.Address,
		AvatarURL:          avatarURL,
		Role:               roleName,
		VerificationStatus: string(user.VerificationStatus),
		KYCLocked:          user.IdentityLocked(),
		CreatedAt:          helper.FormatTime(user.CreatedAt),
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, input dto.UpdateUserProfile) (*dto.UserProfileResponse, error) {
	var resp *dto.UserProfileResponse
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		user, err := r.Users.FindByIDForUpdate(userID)
		if err != nil {
			return err
		}
		if err := s.applyProfile(r, user, input); err != nil {
			return err
		}
		if err := r.Users.Save(user); err != nil {
			return err
		}
		resp, err = s.profile(r, user)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(Event{Type: EventProfileUpdated, ActorID: actorRef(userID), Entity: "user", EntityID: userID, OccurredAt: s.clock.Now()})
	return resp, nil
}

func (s *userService) applyProfile(r *repository.Repositories, user *domain.User, in dto.UpdateUserProfile) error {
	var sexIn *string
	if in.Sex != nil {
		v := strings.ToLower(*in.Sex)
		sexIn = &v
	}
	identityChange := changed(user.FirstName, in.FirstName) || changed(user.LastName, in.LastName) ||
		changed(user.Sex, sexIn) || changed(user.NationalID, in.NationalID) ||
		(in.Birthdate != nil && derefDate(user.Birthdate) != strings.TrimSpace(*in.Birthdate))
	if identityChange && user.IdentityLocked() {
		return domain.ErrIdentityLocked
	}

	if in.FirstName != nil {
		user.FirstName = helper.TrimPtr(in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = helper.TrimPtr(in.LastName)
	}
	if in.Address != nil {
		user.Address = helper.TrimPtr(in.Address)
	}
	if in.Sex != nil {
		sex := helper.TrimPtr(in.Sex)
		if sex != nil {
			v := strings.ToLower(*sex)
			if !allowedSex[v] {
				return domain.Validationf("sex must be one of male, female, other")
			}
			sex = &v
		}
		user.Sex = sex
	}
	if in.Birthdate != nil {
		raw := strings.TrimSpace(*in.Birthdate)
		if raw == "" {
			user.Birthdate = nil
		} else {
			d, err := time.Parse(helper.DateLayout, raw)
			if err != nil {
				return domain.Validationf("birthdate must be formatted as YYYY-MM-DD")
			}
			user.Birthdate = &d
		}
	}
	if in.NationalID != nil {
		id := helper.TrimPtr(in.NationalID)
		if id != nil {
			if !nationalIDPattern.MatchString(*id) {
				return domain.Validationf("national_id must be 10 digits")
			}
			if err := ensureUnique(r, "national_id", *id, user.ID); err != nil {
				return err
			}
		}
		user.NationalID = id
	}
	if in.ShabaNumber != nil {
		shaba := helper.TrimPtr(in.ShabaNumber)
		if shaba != nil {
			v := strings.ToUpper(strings.ReplaceAll(*shaba, " ", ""))
			if !shabaPattern.MatchString(v) {
				return domain.Validationf("shaba_number must look like IR followed by 24 digits")
			}
			if err := ensureUnique(r, "shaba_number", v, user.ID); err != nil {
				return err
			}
			shaba = &v
		}
		user.ShabaNumber = shaba
	}
	return nil
}

func ensureUnique(r *repository.Repositories, column, value string, userID uint) error {
	taken, err := r.Users.IsTaken(column, value, userID)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateValue, column)
	}
	return nil
}

func changed(current, next *string) bool {
	if next == nil {
		return false
	}
	n := helper.TrimPtr(next)
	if n == nil {
		return current != nil
	}
	return current == nil || *current != *n
}

func derefDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(helper.DateLayout)
}

func (s *userService) UploadAvatar(ctx context.Context, userID uint, file dto.UploadFile) (*dto.MediaResponse, error) {
	var resp dto.MediaResponse
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		user, err := r.Users.FindByIDForUpdate(userID)
		if err != nil {
			return err
		}
		media, err := s.media.Save(ctx, r, MediaUpload{
			OwnerID: user.ID,
			Type:    domain.MediaTypeAvatar,
			File:    file,
		})
		if err != nil {
			return err
		}
		user.AvatarMediaID = &media.ID
		if err := r.Users.Save(user); err != nil {
			return err
		}
		resp = s.media.Response(media)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *userService) ListUsers(ctx context.Context, actor Identity, limit, offset int) ([]dto.UserProfileResponse, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	r := s.store.Repos(ctx)
	users, err := r.Users.List(limit, offset)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserProfileResponse, 0, len(users))
	for i := range users {
		p, err := s.profile(r, &users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *userService) AssignRole(ctx context.Context, actor Identity, userID uint, roleName string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	roleName = strings.ToLower(strings.TrimSpace(roleName))
	if roleName == domain.RoleOwner && actor.Role != domain.RoleOwner {
		return fmt.Errorf("%w: only owners can grant the owner role", domain.ErrPermission)
	}

	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		role, err := r.Roles.FindByName(roleName)
		if err != nil {
			return err
		}
		return r.Users.SetRole(userID, &role.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info("role assigned", zap.Uint("user_id", userID), zap.String("role", roleName), zap.Uint("by", actor.UserID))
	s.events.publish(Event{Type: EventRoleAssigned, ActorID: actorRef(actor.UserID), Entity: "user", EntityID: userID, Note: roleName, OccurredAt: s.clock.Now()})
	return nil
}

func (s *userService) ListRoles(ctx context.Context, actor Identity) ([]domain.Role, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Repos(ctx).Roles.List(0, 0)
}

func (s *userService) CreateRole(ctx context.Context, actor Identity, name string) (*domain.Role, error) {
	if err := requireOwner(actor); err != nil {
		return nil, err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, domain.Validationf("role name is required")
	}
	role := &domain.Role{Name: name}
	if err := s.store.Repos(ctx).Roles.Create(role); err != nil {
		return nil, err
	}
	return role, nil
}

func (s *userService) ListPermissions(ctx context.Context, actor Identity) ([]domain.Permission, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Repos(ctx).Roles.ListPermissions()
}

func (s *userService) CreatePermission(ctx context.Context, actor Identity, name string) (*domain.Permission, error) {
	if err := requireOwner(actor); err != nil {
		return nil, err
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return nil, domain.Validationf("permission name is required")
	}
	perm := &domain.Permission{Name: name}
	if err := s.store.Repos(ctx).Roles.CreatePermission(perm); err != nil {
		return nil, err
	}
	return perm, nil
}

func (s *userService) GrantPermission(ctx context.Context, actor Identity, roleName, permission string) error {
	if err := requireOwner(actor); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(r *repository.Repositories) error {
		role, err := r.Roles.FindByName(strings.ToLower(strings.TrimSpace(roleName)))
		if err != nil {
			return err
		}
		perm, err := r.Roles.FindPermission(strings.ToLower(strings.TrimSpace(permission)))
		if err != nil {
			return err
		}
		return r.Roles.Grant(role.ID, perm.ID)
	})
}

func (s *userService) BootstrapOwner(ctx context.Context, phone string) (*domain.User, error) {
	phone = utils.NormalizePhone(phone)
	if phone == "" {
		return nil, domain.Validationf("bootstrap phone is required")
	}

	var user *domain.User
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		u, _, err := r.Users.FindOrCreateByPhone(phone)
		if err != nil {
			return err
		}
		role, err := r.Roles.FindByName(domain.RoleOwner)
		if err != nil {
			return err
		}
		if err := r.Users.SetRole(u.ID, &role.ID); err != nil {
			return err
		}
		u.RoleID = &role.ID
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("owner bootstrapped", zap.Uint("user_id", user.ID))
	return user, nil
}

func requireOwner(actor Identity) error {
	if actor.Role != domain.RoleOwner {
		return fmt.Errorf("%w: owner only", domain.ErrPermission)
	}
	return nil
}
