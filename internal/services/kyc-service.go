package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/repository"
)

type KYCService interface {
	// UploadDocument stores an id_card or selfie for the user's current
	// attempt. Once both are active the attempt moves to pending.
	UploadDocument(ctx context.Context, userID uint, docType domain.MediaType, file dto.UploadFile) (*dto.KYCUploadResponse, error)
	Status(ctx context.Context, userID uint) (*dto.KYCStatusResponse, error)

	// Admin
	Decide(ctx context.Context, actor Identity, userID uint, input dto.KYCDecisionRequest) (*dto.AdminKYCSummary, error)
	AdminSummary(ctx context.Context, actor Identity, userID uint) (*dto.AdminKYCSummary, error)
	History(ctx context.Context, actor Identity, userID uint) ([]dto.KYCAttemptResponse, error)
	ListPending(ctx context.Context, actor Identity, limit, offset int) ([]dto.PendingKYCResponse, error)
}

type kycService struct {
	base
	media *MediaStore
}

func NewKYCService(d Deps, media *MediaStore) KYCService {
	return &kycService{
		base:  newBase(d, "kyc"),
		media: media,
	}
}

func (s *kycService) UploadDocument(ctx context.Context, userID uint, docType domain.MediaType, file dto.UploadFile) (*dto.KYCUploadResponse, error) {
	if !docType.IsKYCDocument() {
		return nil, domain.Validationf("document type must be id_card or selfie")
	}

	var (
		resp      dto.KYCUploadResponse
		submitted bool
	)
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		user, err := r.Users.FindByIDForUpdate(userID)
		if err != nil {
			return err
		}

		attempt, err := s.uploadableAttempt(r, user)
		if err != nil {
			return err
		}

		media, err := s.media.Save(ctx, r, MediaUpload{
			OwnerID:      user.ID,
			Type:         docType,
			File:         file,
			KYCAttemptID: &attempt.ID,
		})
		if err != nil {
			return err
		}

		submitted, err = s.submitIfComplete(r, user, attempt)
		if err != nil {
			return err
		}
		if err := r.Users.Save(user); err != nil {
			return err
		}

		resp = dto.KYCUploadResponse{
			Media:              s.media.Response(media),
			AttemptID:          attempt.ID,
			VerificationStatus: string(user.VerificationStatus),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	s.events.publish(Event{Type: EventKYCUploaded, ActorID: actorRef(userID), Entity: "kyc_attempt", EntityID: resp.AttemptID, Note: string(docType), OccurredAt: now})
	if submitted {
		s.metrics.kycTransition(string(domain.VerificationPending))
		s.events.publish(Event{Type: EventKYCSubmitted, ActorID: actorRef(userID), Entity: "kyc_attempt", EntityID: resp.AttemptID, OccurredAt: now})
	}
	return &resp, nil
}

// uploadableAttempt enforces the upload lock and returns the attempt new
// documents belong to, opening one when needed.
func (s *kycService) uploadableAttempt(r *repository.Repositories, user *domain.User) (*domain.KYCAttempt, error) {
	switch user.VerificationStatus {
	case domain.VerificationVerified:
		return nil, domain.ErrKYCLocked
	case domain.VerificationPending:
		return nil, domain.ErrKYCPendingReview
	}

	current, err := s.currentAttempt(r, user)
	if err != nil {
		return nil, err
	}

	if user.VerificationStatus == domain.VerificationRejected {
		if current != nil && !current.AllowResubmission {
			return nil, domain.ErrKYCResubmissionDenied
		}
		return s.startAttempt(r, user)
	}
	if current == nil {
		return s.startAttempt(r, user)
	}
	return current, nil
}

func (s *kycService) currentAttempt(r *repository.Repositories, user *domain.User) (*domain.KYCAttempt, error) {
	if user.CurrentKYCAttemptID == nil {
		return nil, nil
	}
	return r.KYC.FindByID(*user.CurrentKYCAttemptID)
}

// startAttempt opens a fresh unverified attempt and points the user at it.
func (s *kycService) startAttempt(r *repository.Repositories, user *domain.User) (*domain.KYCAttempt, error) {
	attempt := &domain.KYCAttempt{
		UserID:            user.ID,
		Status:            domain.VerificationUnverified,
		AllowResubmission: true,
	}
	if err := r.KYC.CreateAttempt(attempt); err != nil {
		return nil, err
	}

	user.CurrentKYCAttemptID = &attempt.ID
	user.VerificationStatus = domain.VerificationUnverified
	clearLastDecision(user)
	return attempt, nil
}

// decisionAttempt returns the attempt a verdict applies to. Decided attempts
// are never rewritten, a new one is opened instead.
func (s *kycService) decisionAttempt(r *repository.Repositories, user *domain.User) (*domain.KYCAttempt, error) {
	current, err := s.currentAttempt(r, user)
	if err != nil {
		return nil, err
	}
	if current == nil || current.Status == domain.VerificationVerified || current.Status == domain.VerificationRejected {
		return s.startAttempt(r, user)
	}
	return current, nil
}

func (s *kycService) submitIfComplete(r *repository.Repositories, user *domain.User, attempt *domain.KYCAttempt) (bool, error) {
	idCard, selfie, err := activeDocuments(r, user.ID)
	if err != nil {
		return false, err
	}
	if idCard == nil || selfie == nil {
		return false, nil
	}

	now := s.clock.Now()
	attempt.Status = domain.VerificationPending
	attempt.SubmittedAt = &now
	if err := r.KYC.SaveAttempt(attempt); err != nil {
		return false, err
	}
	user.VerificationStatus = domain.VerificationPending
	return true, nil
}

func (s *kycService) Decide(ctx context.Context, actor Identity, userID uint, input dto.KYCDecisionRequest) (*dto.AdminKYCSummary, error) {
	if err := requirePermission(actor, domain.PermissionReviewKYC); err != nil {
		return nil, err
	}

	target := domain.VerificationStatus(strings.ToLower(strings.TrimSpace(input.Status)))
	switch target {
	case domain.VerificationVerified, domain.VerificationRejected, domain.VerificationUnverified:
	case domain.VerificationPending:
		return nil, domain.Validationf("pending is reached by uploading documents and cannot be set directly")
	default:
		return nil, domain.Validationf("invalid kyc status %q", input.Status)
	}

	var attemptID uint
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		user, err := r.Users.FindByIDForUpdate(userID)
		if err != nil {
			return err
		}

		now := s.clock.Now()
		var attempt *domain.KYCAttempt
		switch target {
		case domain.VerificationVerified:
			attempt, err = s.approve(r, user, now)
		case domain.VerificationRejected:
			attempt, err = s.reject(r, user, input, now)
		default:
			attempt, err = s.reset(r, user)
		}
		if err != nil {
			return err
		}
		attemptID = attempt.ID

		return r.Users.Save(user)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.kycTransition(string(target))
	s.events.publish(Event{
		Type:       EventKYCDecided,
		ActorID:    actorRef(actor.UserID),
		Entity:     "kyc_attempt",
		EntityID:   attemptID,
		Note:       string(target),
		OccurredAt: s.clock.Now(),
	})
	return s.AdminSummary(ctx, actor, userID)
}

func (s *kycService) approve(r *repository.Repositories, user *domain.User, now time.Time) (*domain.KYCAttempt, error) {
	if user.VerificationStatus == domain.VerificationVerified {
		return nil, domain.ErrAlreadyVerified
	}

	idCard, selfie, err := activeDocuments(r, user.ID)
	if err != nil {
		return nil, err
	}
	if idCard == nil || selfie == nil {
		return nil, domain.Validationf("approval requires an active id_card and selfie")
	}

	attempt, err := s.decisionAttempt(r, user)
	if err != nil {
		return nil, err
	}
	attempt.Status = domain.VerificationVerified
	attempt.ReasonCodes = nil
	attempt.ReasonText = nil
	attempt.DecidedAt = &now
	attempt.AllowResubmission = false
	if err := r.KYC.SaveAttempt(attempt); err != nil {
		return nil, err
	}

	user.VerificationStatus = domain.VerificationVerified
	user.KYCLockedAt = &now
	user.KYCLastReasonCodes = nil
	user.KYCLastReasonText = nil
	user.KYCLastDecidedAt = &now
	return attempt, nil
}

func (s *kycService) reject(r *repository.Repositories, user *domain.User, input dto.KYCDecisionRequest, now time.Time) (*domain.KYCAttempt, error) {
	attempt, err := s.decisionAttempt(r, user)
	if err != nil {
		return nil, err
	}

	allow := true
	if input.AllowResubmission != nil {
		allow = *input.AllowResubmission
	}
	codes := domain.JoinReasonCodes(input.ReasonCodes)
	text := helper.TrimPtr(input.ReasonText)

	attempt.Status = domain.VerificationRejected
	attempt.ReasonCodes = codes
	attempt.ReasonText = text
	attempt.DecidedAt = &now
	attempt.AllowResubmission = allow
	if err := r.KYC.SaveAttempt(attempt); err != nil {
		return nil, err
	}

	user.VerificationStatus = domain.VerificationRejected
	user.KYCLockedAt = nil
	user.KYCLastReasonCodes = codes
	user.KYCLastReasonText = text
	user.KYCLastDecidedAt = &now
	return attempt, nil
}

// reset returns the user to unverified. A verified user gets a new attempt;
// otherwise the current attempt is cleared in place.
func (s *kycService) reset(r *repository.Repositories, user *domain.User) (*domain.KYCAttempt, error) {
	current, err := s.currentAttempt(r, user)
	if err != nil {
		return nil, err
	}
	if current == nil || user.VerificationStatus == domain.VerificationVerified {
		user.KYCLockedAt = nil
		return s.startAttempt(r, user)
	}

	current.Status = domain.VerificationUnverified
	current.ReasonCodes = nil
	current.ReasonText = nil
	current.DecidedAt = nil
	current.AllowResubmission = true
	if err := r.KYC.SaveAttempt(current); err != nil {
		return nil, err
	}

	user.VerificationStatus = domain.VerificationUnverified
	user.KYCLockedAt = nil
	clearLastDecision(user)
	return current, nil
}

func (s *kycService) Status(ctx context.Context, userID uint) (*dto.KYCStatusResponse, error) {
	r := s.store.Repos(ctx)
	user, err := r.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.currentAttempt(r, user)
	if err != nil {
		return nil, err
	}
	idCard, selfie, err := activeDocuments(r, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.KYCStatusResponse{
		VerificationStatus: string(user.VerificationStatus),
		CurrentAttemptID:   user.CurrentKYCAttemptID,
		IDCardUploaded:     idCard != nil,
		SelfieUploaded:     selfie != nil,
		CanUpload:          canUpload(user, attempt),
		LastDecision:       lastDecision(user, attempt),
	}, nil
}

func (s *kycService) AdminSummary(ctx context.Context, actor Identity, userID uint) (*dto.AdminKYCSummary, error) {
	if err := requirePermission(actor, domain.PermissionReviewKYC); err != nil {
		return nil, err
	}

	r := s.store.Repos(ctx)
	user, err := r.Users.FindByID(userID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.currentAttempt(r, user)
	if err != nil {
		return nil, err
	}
	count, err := r.KYC.CountByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	idCard, selfie, err := activeDocuments(r, user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.AdminKYCSummary{
		UserID:             user.ID,
		PhoneNumber:        user.PhoneNumber,
		VerificationStatus: string(user.VerificationStatus),
		CurrentAttemptID:   user.CurrentKYCAttemptID,
		AttemptsCount:      count,
		IDCardURL:          s.media.URLPtr(idCard),
		SelfieURL:          s.media.URLPtr(selfie),
		LockedAt:           helper.FormatTimePtr(user.KYCLockedAt),
		LastDecision:       lastDecision(user, attempt),
	}, nil
}

func (s *kycService) History(ctx context.Context, actor Identity, userID uint) ([]dto.KYCAttemptResponse, error) {
	if err := requirePermission(actor, domain.PermissionReviewKYC); err != nil {
		return nil, err
	}
	r := s.store.Repos(ctx)
	if _, err := r.Users.FindByID(userID); err != nil {
		return nil, err
	}
	attempts, err := r.KYC.ListByUserID(userID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.KYCAttemptResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, dto.KYCAttemptResponse{
			ID:                a.ID,
			Status:            string(a.Status),
			ReasonCodes:       a.Codes(),
			ReasonText:        a.ReasonText,
			AllowResubmission: a.AllowResubmission,
			SubmittedAt:       helper.FormatTimePtr(a.SubmittedAt),
			DecidedAt:         helper.FormatTimePtr(a.DecidedAt),
			CreatedAt:         helper.FormatTime(a.CreatedAt),
		})
	}
	return out, nil
}

func (s *kycService) ListPending(ctx context.Context, actor Identity, limit, offset int) ([]dto.PendingKYCResponse, error) {
	if err := requirePermission(actor, domain.PermissionReviewKYC); err != nil {
		return nil, err
	}
	r := s.store.Repos(ctx)
	attempts, err := r.KYC.ListPending(limit, offset)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(attempts))
	for _, a := range attempts {
		ids = append(ids, a.UserID)
	}
	users, err := r.Users.ListByIDs(ids)
	if err != nil {
		return nil, err
	}
	phones := make(map[uint]string, len(users))
	for _, u := range users {
		phones[u.ID] = u.PhoneNumber
	}

	out := make([]dto.PendingKYCResponse, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, dto.PendingKYCResponse{
			AttemptID:   a.ID,
			UserID:      a.UserID,
			PhoneNumber: phones[a.UserID],
			SubmittedAt: helper.FormatTimePtr(a.SubmittedAt),
		})
	}
	return out, nil
}

func activeDocuments(r *repository.Repositories, userID uint) (idCard, selfie *domain.MediaFile, err error) {
	idCard, err = activeMedia(r, userID, domain.MediaTypeIDCard)
	if err != nil {
		return nil, nil, err
	}
	selfie, err = activeMedia(r, userID, domain.MediaTypeSelfie)
	if err != nil {
		return nil, nil, err
	}
	return idCard, selfie, nil
}

func activeMedia(r *repository.Repositories, userID uint, t domain.MediaType) (*domain.MediaFile, error) {
	media, err := r.Media.FindActive(userID, t)
	if errors.Is(err, domain.ErrMediaNotFound) {
		return nil, nil
	}
	return media, err
}

func clearLastDecision(user *domain.User) {
	user.KYCLastReasonCodes = nil
	user.KYCLastReasonText = nil
	user.KYCLastDecidedAt = nil
}

func canUpload(user *domain.User, attempt *domain.KYCAttempt) bool {
	switch user.VerificationStatus {
	case domain.VerificationUnverified:
		return true
	case domain.VerificationRejected:
		return attempt == nil || attempt.AllowResubmission
	}
	return false
}

func lastDecision(user *domain.User, attempt *domain.KYCAttempt) *dto.KYCDecisionResponse {
	if attempt != nil && attempt.DecidedAt != nil {
		return &dto.KYCDecisionResponse{
			Status:      string(attempt.Status),
			ReasonCodes: attempt.Codes(),
			ReasonText:  attempt.ReasonText,
			DecidedAt:   helper.FormatTimePtr(attempt.DecidedAt),
		}
	}
	if user.KYCLastDecidedAt != nil {
		return &dto.KYCDecisionResponse{
			Status:      string(user.VerificationStatus),
			ReasonCodes: domain.SplitReasonCodes(user.KYCLastReasonCodes),
			ReasonText:  user.KYCLastReasonText,
			DecidedAt:   helper.FormatTimePtr(user.KYCLastDecidedAt),
		}
	}
	return nil
}
