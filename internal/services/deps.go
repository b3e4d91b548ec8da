package services

import (
	"github.com/SundayYogurt/logistics_service/internal/interfaces"
	"github.com/SundayYogurt/logistics_service/internal/repository"
	"github.com/SundayYogurt/logistics_service/pkg/clock"
	"github.com/SundayYogurt/logistics_service/pkg/logger"
	"go.uber.org/zap"
)

// Deps are the collaborators every service shares.
type Deps struct {
	Store    repository.Store
	Clock    clock.Clock
	Log      *zap.Logger
	Metrics  *Metrics
	Producer interfaces.ProducerHandler
}

type base struct {
	store   repository.Store
	clock   clock.Clock
	log     *zap.Logger
	metrics *Metrics
	events  eventPublisher
}

func newBase(d Deps, component string) base {
	clk := d.Clock
	if clk == nil {
		clk = clock.Real()
	}
	log := logger.OrNop(d.Log).With(zap.String("component", component))
	return base{
		store:   d.Store,
		clock:   clk,
		log:     log,
		metrics: d.Metrics,
		events:  eventPublisher{producer: d.Producer, log: log},
	}
}
