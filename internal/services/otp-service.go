package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/interfaces"
	"github.com/SundayYogurt/logistics_service/internal/rate"
	"github.com/SundayYogurt/logistics_service/pkg/utils"
	"go.uber.org/zap"
)

const (
	OTPLength = 6
	OTPTTL    = 2 * time.Minute
)

type OTPService interface {
	// Issue stores a fresh code for phone and hands it to the SMS gateway.
	// Delivery failures are logged and do not fail the call.
	Issue(ctx context.Context, phone string) (*domain.OTP, error)
	// Verify consumes a matching unexpired code. Unknown, used or expired
	// codes yield false without an error.
	Verify(ctx context.Context, phone, code string) (bool, error)
	Peek(ctx context.Context, actor Identity, phone string) (*domain.OTP, error)
}

type otpService struct {
	base
	sms     interfaces.SMSGateway
	limiter rate.Limiter
}

func NewOTPService(d Deps, sms interfaces.SMSGateway, limiter rate.Limiter) OTPService {
	return &otpService{
		base:    newBase(d, "otp"),
		sms:     sms,
		limiter: limiter,
	}
}

func (s *otpService) Issue(ctx context.Context, phone string) (*domain.OTP, error) {
	phone = utils.NormalizePhone(phone)
	if phone == "" {
		return nil, domain.Validationf("phone number is required")
	}

	now := s.clock.Now()
	if s.limiter != nil {
		allowed, retryAfter, err := s.limiter.Allow(ctx, phone, now)
		switch {
		case err != nil:
			s.log.Warn("otp rate limiter unavailable", zap.Error(err))
		case !allowed:
			s.metrics.otpIssued("rate_limited")
			return nil, &domain.RateLimitError{RetryAfter: retryAfter}
		}
	}

	code, err := generateCode(OTPLength)
	if err != nil {
		return nil, fmt.Errorf("generate otp: %w", err)
	}

	otp := &domain.OTP{
		PhoneNumber: phone,
		Code:        code,
		ExpiresAt:   now.Add(OTPTTL),
		CreatedAt:   now,
	}
	if err := s.store.Repos(ctx).OTPs.Create(otp); err != nil {
		return nil, err
	}

	if s.sms != nil {
		if err := s.sms.SendOTP(ctx, phone, code); err != nil {
			s.metrics.otpIssued("delivery_failed")
			s.log.Warn("otp delivery failed",
				zap.String("phone", phone),
				zap.Error(fmt.Errorf("%w: %v", domain.ErrExternalDelivery, err)),
			)
			return otp, nil
		}
	}

	s.metrics.otpIssued("sent")
	s.events.publish(Event{Type: EventOTPIssued, Entity: "otp", EntityID: otp.ID, OccurredAt: now})
	return otp, nil
}

func (s *otpService) Verify(ctx context.Context, phone, code string) (bool, error) {
	phone = utils.NormalizePhone(phone)
	code = strings.TrimSpace(code)
	if phone == "" || code == "" {
		s.metrics.otpVerified("rejected")
		return false, nil
	}

	repos := s.store.Repos(ctx)
	candidates, err := repos.OTPs.FindUnused(phone, code)
	if err != nil {
		return false, err
	}

	now := s.clock.Now()
	for _, c := range candidates {
		if c.ExpiredAt(now) {
			continue
		}
		ok, err := repos.OTPs.MarkUsed(c.ID)
		if err != nil {
			return false, err
		}
		if ok {
			s.metrics.otpVerified("accepted")
			return true, nil
		}
	}

	s.metrics.otpVerified("rejected")
	return false, nil
}

func (s *otpService) Peek(ctx context.Context, actor Identity, phone string) (*domain.OTP, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	phone = utils.NormalizePhone(phone)

	otps, err := s.store.Repos(ctx).OTPs.FindUnused(phone, "")
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	for i := range otps {
		if !otps[i].ExpiredAt(now) {
			return &otps[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no active otp for phone", domain.ErrNotFound)
}

func generateCode(length int) (string, error) {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}

// LogSMSGateway stands in for a real provider in development.
type LogSMSGateway struct {
	Log *zap.Logger
}

func (g LogSMSGateway) SendOTP(_ context.Context, phone, _ string) error {
	if g.Log != nil {
		g.Log.Info("sms gateway not configured, otp not delivered", zap.String("phone", phone))
	}
	return nil
}
