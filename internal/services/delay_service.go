package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/seatrace/backend/internal/logger"
	"github.com/seatrace/backend/internal/models"
	"gorm.io/gorm"
)

// DelayService owns the periodic incident-to-shipment reconciliation: it
// matches unprocessed incidents against the fleet and maintains the
// per-shipment delay documents.
type DelayService struct {
	db         *gorm.DB
	thresholds Thresholds
	running    atomic.Bool
}

func NewDelayService(db *gorm.DB, thresholds Thresholds) *DelayService {
	return &DelayService{db: db, thresholds: thresholds}
}

// ErrRunInFlight is returned when a reconciliation tick fires while the
// previous run is still going. The caller is expected to skip, not queue.
var ErrRunInFlight = errors.New("reconciliation run already in flight")

// RunReconciliation executes one reconciliation batch: load everything,
// match in memory, persist the touched documents. Re-running over the same
// data is safe; the delay_updated flag guards reprocessing and every write
// is an upsert keyed by a stable business identifier.
func (ds *DelayService) RunReconciliation(ctx context.Context) error {
	if !ds.running.CompareAndSwap(false, true) {
		logger.Info("Reconciliation already running, skipping tick", nil)
		return ErrRunInFlight
	}
	defer ds.running.Store(false)

	start := time.Now()
	st, err := ds.loadState(ctx)
	if err != nil {
		return fmt.Errorf("loading reconciliation state: %w", err)
	}

	matchIncidents(st)

	if err := ds.persistState(ctx, st); err != nil {
		return fmt.Errorf("persisting reconciliation state: %w", err)
	}

	logger.Info("Reconciliation run completed", map[string]interface{}{
		"incidents_processed": len(st.dirtyIncidents),
		"delays_written":      len(st.dirtyDelays),
		"duration":            time.Since(start).String(),
	})
	return nil
}

// loadState batch-fetches the run's working set and builds the lookup maps
// the matcher needs. One query per entity, no per-record fetching.
func (ds *DelayService) loadState(ctx context.Context) (*reconcileState, error) {
	st := newReconcileState(time.Now(), ds.thresholds)

	var pending []models.Incident
	if err := ds.db.WithContext(ctx).
		Where("delay_updated = ? AND status = ?", false, models.IncidentOngoing).
		Order("created_at ASC").
		Find(&pending).Error; err != nil {
		return nil, err
	}
	for i := range pending {
		st.incidents = append(st.incidents, &pending[i])
	}

	if err := ds.db.WithContext(ctx).
		Where("delay_updated = ?", true).
		Find(&st.processed).Error; err != nil {
		return nil, err
	}

	if err := ds.db.WithContext(ctx).Find(&st.vessels).Error; err != nil {
		return nil, err
	}

	var shipments []models.Shipment
	if err := ds.db.WithContext(ctx).Find(&shipments).Error; err != nil {
		return nil, err
	}
	for i := range shipments {
		st.shipments[shipments[i].TrackingID] = &shipments[i]
	}

	var delays []models.Delay
	if err := ds.db.WithContext(ctx).Find(&delays).Error; err != nil {
		return nil, err
	}
	for i := range delays {
		st.delays[delays[i].ShipmentID] = &delays[i]
	}

	return st, nil
}

// persistState writes every touched delay document and incident in one
// transaction. A failure aborts the run; the next tick retries from scratch.
func (ds *DelayService) persistState(ctx context.Context, st *reconcileState) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for shipmentID := range st.dirtyDelays {
			if err := tx.Save(st.delays[shipmentID]).Error; err != nil {
				return err
			}
		}
		for _, incident := range st.incidents {
			if !st.dirtyIncidents[incident.ID] {
				continue
			}
			if err := tx.Save(incident).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetShipmentDelay returns the shipment's delay document, or nil when the
// shipment has no recorded delay.
func (ds *DelayService) GetShipmentDelay(shipmentID uint) (*models.Delay, error) {
	var delay models.Delay
	err := ds.db.Where("shipment_id = ?", shipmentID).First(&delay).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &delay, nil
}

// TotalDelayDays aggregates the shipment's merged delay estimates across all
// affected locations. Shipments without a delay document report zero.
func (ds *DelayService) TotalDelayDays(shipmentID uint) (int, error) {
	delay, err := ds.GetShipmentDelay(shipmentID)
	if err != nil {
		return 0, err
	}
	return totalDelayDays(delay), nil
}
