package services

import (
	"context"
	"strings"

	"github.com/SundayYogurt/logistics_service/internal/domain"
	"github.com/SundayYogurt/logistics_service/internal/dto"
	"github.com/SundayYogurt/logistics_service/internal/helper"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/SundayYogurt/logistics_service/pkg/utils"
)

type BusinessService interface {
	Create(ctx context.Context, actor Identity, input dto.BusinessRequest) (*domain.Business, error)
	Update(ctx context.Context, actor Identity, businessID uint, input dto.BusinessRequest) (*domain.Business, error)
	Get(ctx context.Context, actor Identity, businessID uint) (*domain.Business, error)
	List(ctx context.Context, actor Identity, activeOnly bool, limit, offset int) ([]domain.Business, error)
}

type businessService struct {
	base
}

func NewBusinessService(d Deps) BusinessService {
	return &businessService{base: newBase(d, "business")}
}

func (s *businessService) Create(ctx context.Context, actor Identity, input dto.BusinessRequest) (*domain.Business, error) {
	if err := requirePermission(actor, domain.PermissionManageBusinesses); err != nil {
		return nil, err
	}

	b := &domain.Business{Active: true, CreatedByAdminID: actorRef(actor.UserID)}
	applyBusiness(b, input)
	if b.Name == "" {
		return nil, domain.Validationf("business name is required")
	}
	if err := s.store.Repos(ctx).Businesses.Create(b); err != nil {
		return nil, err
	}

	s.events.publish(Event{Type: EventBusinessSaved, ActorID: actorRef(actor.UserID), Entity: "business", EntityID: b.ID, Note: "created", OccurredAt: s.clock.Now()})
	return b, nil
}

func (s *businessService) Update(ctx context.Context, actor Identity, businessID uint, input dto.BusinessRequest) (*domain.Business, error) {
	if err := requirePermission(actor, domain.PermissionManageBusinesses); err != nil {
		return nil, err
	}

	var b *domain.Business
	err := s.store.Atomic(ctx, func(r *repository.Repositories) error {
		var err error
		b, err = r.Businesses.FindByID(businessID)
		if err != nil {
			return err
		}
		applyBusiness(b, input)
		if b.Name == "" {
			return domain.Validationf("business name cannot be blank")
		}
		return r.Businesses.Save(b)
	})
	if err != nil {
		return nil, err
	}

	s.events.publish(Event{Type: EventBusinessSaved, ActorID: actorRef(actor.UserID), Entity: "business", EntityID: b.ID, Note: "updated", OccurredAt: s.clock.Now()})
	return b, nil
}

func (s *businessService) Get(ctx context.Context, actor Identity, businessID uint) (*domain.Business, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Repos(ctx).Businesses.FindByID(businessID)
}

func (s *businessService) List(ctx context.Context, actor Identity, activeOnly bool, limit, offset int) ([]domain.Business, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.Repos(ctx).Businesses.List(activeOnly, limit, offset)
}

func applyBusiness(b *domain.Business, in dto.BusinessRequest) {
	if in.Name != nil {
		b.Name = strings.TrimSpace(*in.Name)
	}
	if in.ContactPerson != nil {
		b.ContactPerson = helper.TrimPtr(in.ContactPerson)
	}
	if in.PhoneNumber != nil {
		phone := helper.TrimPtr(in.PhoneNumber)
		if phone != nil {
			v := utils.NormalizePhone(*phone)
			phone = &v
		}
		b.PhoneNumber = phone
	}
	if in.Address != nil {
		b.Address = helper.TrimPtr(in.Address)
	}
	if in.Active != nil {
		b.Active = *in.Active
	}
}
