package services

import (
	"context"
	"fmt"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/pkg/utils"
	"go.uber.org/zap"
)

type AuthService interface {
	RequestOTP(ctx context.Context, phone string) error
	Login(ctx context.Context, phone, code string) (*dto.LoginResponse, error)
}

type authService struct {
	base
	otp   OTPService
	users UserService
	auth  helper.Auth
}

func NewAuthService(d Deps, otp OTPService, users UserService, auth helper.Auth) AuthService {
	return &authService{
		base:  newBase(d, "auth"),
		otp:   otp,
		users: users,
		auth:  auth,
	}
}

func (s *authService) RequestOTP(ctx context.Context, phone string) error {
	_, err := s.otp.Issue(ctx, phone)
	return err
}

func (s *authService) Login(ctx context.Context, phone, code string) (*dto.LoginResponse, error) {
	phone = utils.NormalizePhone(phone)
	ok, err := s.otp.Verify(ctx, phone, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: invalid or expired otp", domain.ErrPermission)
	}

	user, created, err := s.store.Repos(ctx).Users.FindOrCreateByPhone(phone)
	if err != nil {
		return nil, err
	}

	identity, err := s.users.ResolveIdentity(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	token, err := s.auth.GenerateToken(user.ID, identity.Role)
	if err != nil {
		return nil, err
	}
	profile, err := s.users.GetProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	if created {
		s.log.Info("user registered", zap.Uint("user_id", user.ID))
		s.events.publish(Event{Type: EventUserRegistered, ActorID: actorRef(user.ID), Entity: "user", EntityID: user.ID, OccurredAt: s.clock.Now()})
	}

	return &dto.LoginResponse{
		Token:     token,
		IsNewUser: created,
		User:      *profile,
	}, nil
}
