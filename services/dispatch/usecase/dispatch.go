package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/evgo/dispatch/internal/pkg/circuitbreaker"
	"github.com/evgo/dispatch/internal/pkg/constants"
	"github.com/evgo/dispatch/internal/pkg/logger"
	"github.com/evgo/dispatch/internal/pkg/metrics"
	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/evgo/dispatch/internal/pkg/requestcontext"
	pkgws "github.com/evgo/dispatch/internal/pkg/websocket"
	"github.com/evgo/dispatch/services/dispatch"
	"golang.org/x/sync/errgroup"
)

// HandleNewRequest persists a rider request, broadcasts it to every driver
// connected at that moment, records who was reached and acknowledges the
// rider. Nothing is broadcast unless the request was stored.
func (uc *DispatchUC) HandleNewRequest(ctx context.Context, req models.NewDispatchRequest) (*models.DispatchOutcome, error) {
	riders := uc.ackTargets(req.Origin, req.RiderID)

	created, err := uc.create(ctx, req)
	if err != nil {
		uc.metrics.RecordRequest(metrics.OutcomeStoreFailed)
		uc.logger.Error("Failed to persist dispatch request",
			logger.String("rider_id", req.RiderID),
			logger.String("origin", req.Origin),
			logger.String("correlation_id", requestcontext.RequestID(ctx)),
			logger.Err(err))
		uc.acknowledge(riders, models.EVResponseFrame{
			Type:    models.FrameEVResponse,
			Status:  models.ResponseStatusError,
			Message: constants.MessageRequestFailed,
		})
		return nil, fmt.Errorf("%w: %w", dispatch.ErrRequestNotPersisted, err)
	}

	// the request is stored; the rest must finish even if the submitter leaves
	ctx = context.WithoutCancel(ctx)

	// indexed before any driver can see the ID, so a status update that
	// closes the request always runs its Remove after this Add
	if uc.cache != nil {
		if err := uc.cache.Add(ctx, created); err != nil {
			uc.logger.Warn("Failed to index open request",
				logger.String("request_id", created.ID),
				logger.Err(err))
		}
	}

	drivers := uc.conns.ListByRole(models.RoleDriver)
	notified := uc.fanOut(created, drivers)
	uc.markNotified(ctx, created, notified)
	uc.metrics.RecordRequest(metrics.OutcomeNotified)

	uc.publishNotified(ctx, created, notified)

	uc.acknowledge(riders, models.EVResponseFrame{
		Type:    models.FrameEVResponse,
		Status:  models.ResponseStatusSuccess,
		Message: constants.MessageRequestSent,
		ID:      created.ID,
	})

	uc.logger.Info("Dispatch request broadcast",
		logger.String("request_id", created.ID),
		logger.String("rider_id", created.RiderID),
		logger.String("correlation_id", requestcontext.RequestID(ctx)),
		logger.Int("attempted", len(drivers)),
		logger.Int("notified", len(notified)))

	return &models.DispatchOutcome{
		Request:   created,
		Attempted: len(drivers),
		Notified:  notified,
	}, nil
}

func (uc *DispatchUC) create(ctx context.Context, req models.NewDispatchRequest) (*models.DispatchRequest, error) {
	if uc.cfg.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.StoreTimeout)
		defer cancel()
	}

	var created *models.DispatchRequest
	err := uc.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		created, err = uc.repo.Create(ctx, req.RiderID, req.Location, req.PickupLocation)
		return err
	})
	if errors.Is(err, circuitbreaker.ErrCircuitBreakerOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %w", dispatch.ErrStoreUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return created, nil
}

// fanOut sends the request to each driver concurrently and returns the
// drivers it reached, ordered by connection ID.
func (uc *DispatchUC) fanOut(req *models.DispatchRequest, drivers []*pkgws.Connection) []models.NotifiedDriver {
	start := uc.now()
	defer func() { uc.metrics.ObserveFanout(uc.now().Sub(start)) }()

	frame := models.NewRequestFrameFrom(req)
	notified := make([]models.NotifiedDriver, 0, len(drivers))
	var mu sync.Mutex

	g := new(errgroup.Group)
	g.SetLimit(uc.cfg.FanoutConcurrency)
	for _, conn := range drivers {
		conn := conn
		g.Go(func() error {
			if err := uc.conns.Send(conn, frame); err != nil {
				outcome := metrics.SendFailed
				if errors.Is(err, pkgws.ErrConnectionNotOpen) {
					outcome = metrics.SendSkipped
				}
				uc.metrics.RecordSend(models.RoleDriver, outcome)
				uc.logger.Debug("Driver not reached",
					logger.String("request_id", req.ID),
					logger.String("connection_id", conn.ID()),
					logger.Err(err))
				return nil
			}
			uc.metrics.RecordSend(models.RoleDriver, metrics.SendDelivered)

			mu.Lock()
			notified = append(notified, models.NotifiedDriver{
				RequestID:    req.ID,
				ConnectionID: conn.ID(),
				DriverID:     conn.Identity(),
				NotifiedAt:   uc.now().UTC(),
			})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(notified, func(i, j int) bool {
		return notified[i].ConnectionID < notified[j].ConnectionID
	})
	return notified
}

// markNotified records the recipients. Failure leaves the request pending
// and is only logged.
func (uc *DispatchUC) markNotified(ctx context.Context, req *models.DispatchRequest, notified []models.NotifiedDriver) {
	if uc.cfg.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.StoreTimeout)
		defer cancel()
	}

	err := uc.retrier.Execute(ctx, func(ctx context.Context) error {
		return uc.repo.MarkNotified(ctx, req.ID, notified)
	})
	if err != nil {
		uc.logger.Error("Failed to mark request notified",
			logger.String("request_id", req.ID),
			logger.Int("recipients", len(notified)),
			logger.Err(err))
		return
	}

	at := uc.now().UTC()
	req.Status = models.DispatchStatusNotified
	req.NotifiedAt = &at
	req.UpdatedAt = at
	req.NotifiedDrivers = notified
}

func (uc *DispatchUC) publishNotified(ctx context.Context, req *models.DispatchRequest, notified []models.NotifiedDriver) {
	driverIDs := make([]string, 0, len(notified))
	for _, n := range notified {
		id := n.DriverID
		if id == "" {
			id = n.ConnectionID
		}
		driverIDs = append(driverIDs, id)
	}

	event := models.DispatchNotifiedEvent{
		RequestID:      req.ID,
		RiderID:        req.RiderID,
		PickupLocation: req.PickupLocation,
		DriverIDs:      driverIDs,
		NotifiedAt:     uc.now().UTC(),
	}
	if err := uc.gw.PublishNotified(ctx, event); err != nil {
		uc.logger.Warn("Failed to publish notified event",
			logger.String("request_id", req.ID),
			logger.Err(err))
	}
}

// ackTargets returns the rider connections that should see the outcome: the
// origin when it is a rider, and every rider connection of riderID.
func (uc *DispatchUC) ackTargets(origin, riderID string) []*pkgws.Connection {
	targets := uc.conns.Riders(riderID)
	if origin == "" {
		return targets
	}
	conn, ok := uc.conns.Get(origin)
	if !ok || conn.Role() != models.RoleRider {
		return targets
	}
	for _, t := range targets {
		if t.ID() == origin {
			return targets
		}
	}
	return append([]*pkgws.Connection{conn}, targets...)
}

func (uc *DispatchUC) acknowledge(riders []*pkgws.Connection, frame models.EVResponseFrame) {
	for _, conn := range riders {
		outcome := metrics.SendDelivered
		if err := uc.conns.Send(conn, frame); err != nil {
			outcome = metrics.SendFailed
			if errors.Is(err, pkgws.ErrConnectionNotOpen) {
				outcome = metrics.SendSkipped
			}
		}
		uc.metrics.RecordSend(models.RoleRider, outcome)
	}
}
