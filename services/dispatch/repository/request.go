package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/evgo/dispatch/internal/pkg/models"
	"github.com/evgo/dispatch/internal/utils"
	"github.com/evgo/dispatch/services/dispatch"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const requestColumns = `id, rider_id, location, pickup_location, pickup_geohash, status, created_at, updated_at, notified_at`

// DispatchRepo implements dispatch.DispatchRepo on Postgres
type DispatchRepo struct {
	cfg *models.Config
	db  *sqlx.DB
}

// NewDispatchRepository creates a new dispatch repository
func NewDispatchRepository(cfg *models.Config, db *sqlx.DB) *DispatchRepo {
	return &DispatchRepo{
		cfg: cfg,
		db:  db,
	}
}

// requestRow is the scan target for dispatch_requests. JSONB columns come
// back as raw bytes.
type requestRow struct {
	ID             string         `db:"id"`
	RiderID        string         `db:"rider_id"`
	Location       []byte         `db:"location"`
	PickupLocation []byte         `db:"pickup_location"`
	PickupGeohash  sql.NullString `db:"pickup_geohash"`
	Status         string         `db:"status"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	NotifiedAt     sql.NullTime   `db:"notified_at"`
}

func (r requestRow) toModel() *models.DispatchRequest {
	req := &models.DispatchRequest{
		ID:             r.ID,
		RiderID:        r.RiderID,
		Location:       json.RawMessage(r.Location),
		PickupLocation: json.RawMessage(r.PickupLocation),
		Status:         models.DispatchStatus(r.Status),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.PickupGeohash.Valid {
		hash := r.PickupGeohash.String
		req.PickupGeohash = &hash
	}
	if r.NotifiedAt.Valid {
		at := r.NotifiedAt.Time
		req.NotifiedAt = &at
	}
	return req
}

type notificationRow struct {
	RequestID    string         `db:"request_id"`
	ConnectionID string         `db:"connection_id"`
	DriverID     sql.NullString `db:"driver_id"`
	NotifiedAt   time.Time      `db:"notified_at"`
}

// Create stores a new pending request and returns it with its assigned ID
func (r *DispatchRepo) Create(ctx context.Context, riderID string, location, pickupLocation json.RawMessage) (*models.DispatchRequest, error) {
	now := time.Now().UTC()
	req := &models.DispatchRequest{
		ID:             uuid.NewString(),
		RiderID:        riderID,
		Location:       location,
		PickupLocation: pickupLocation,
		PickupGeohash:  utils.PickupGeohash(pickupLocation),
		Status:         models.DispatchStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	query := `
		INSERT INTO dispatch_requests (id, rider_id, location, pickup_location, pickup_geohash, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.RiderID,
		jsonArg(req.Location),
		jsonArg(req.PickupLocation),
		req.PickupGeohash,
		req.Status,
		req.CreatedAt,
		req.UpdatedAt,
	)
	if err != nil {
		return nil, storeErr("create request", err)
	}
	return req, nil
}

// MarkNotified moves a pending request to notified and records the
// recipients. A request that is already notified only gains recipients.
func (r *DispatchRepo) MarkNotified(ctx context.Context, requestID string, recipients []models.NotifiedDriver) error {
	if err := checkID(requestID); err != nil {
		return err
	}
	return r.withTx(ctx, "mark notified", func(tx *sqlx.Tx) error {
		current, err := lockStatus(ctx, tx, requestID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		switch current {
		case models.DispatchStatusPending:
			_, err := tx.ExecContext(ctx, `
				UPDATE dispatch_requests SET status = $2, notified_at = $3, updated_at = $3
				WHERE id = $1
			`, requestID, models.DispatchStatusNotified, now)
			if err != nil {
				return storeErr("mark notified", err)
			}
		case models.DispatchStatusNotified:
		default:
			return fmt.Errorf("%w: %s -> %s", dispatch.ErrInvalidTransition, current, models.DispatchStatusNotified)
		}

		for _, recipient := range recipients {
			notifiedAt := recipient.NotifiedAt
			if notifiedAt.IsZero() {
				notifiedAt = now
			}
			_, err := tx.ExecContext(ctx, `
				INSERT INTO dispatch_request_notifications (request_id, connection_id, driver_id, notified_at)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (request_id, connection_id) DO NOTHING
			`, requestID, recipient.ConnectionID, nullString(recipient.DriverID), notifiedAt)
			if err != nil {
				return storeErr("record recipient", err)
			}
		}
		return nil
	})
}

// UpdateStatus applies an external status change. Only forward transitions
// are accepted.
func (r *DispatchRepo) UpdateStatus(ctx context.Context, requestID string, status models.DispatchStatus) (*models.DispatchRequest, error) {
	if err := checkID(requestID); err != nil {
		return nil, err
	}
	var updated *models.DispatchRequest
	err := r.withTx(ctx, "update status", func(tx *sqlx.Tx) error {
		current, err := lockStatus(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if !current.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", dispatch.ErrInvalidTransition, current, status)
		}

		var row requestRow
		query := `UPDATE dispatch_requests SET status = $2, updated_at = $3 WHERE id = $1 RETURNING ` + requestColumns
		if err := tx.GetContext(ctx, &row, query, requestID, status, time.Now().UTC()); err != nil {
			return storeErr("update status", err)
		}
		updated = row.toModel()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetByID returns a request together with its recipients
func (r *DispatchRepo) GetByID(ctx context.Context, requestID string) (*models.DispatchRequest, error) {
	if err := checkID(requestID); err != nil {
		return nil, err
	}
	var row requestRow
	query := `SELECT ` + requestColumns + ` FROM dispatch_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, requestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", dispatch.ErrRequestNotFound, requestID)
		}
		return nil, storeErr("get request", err)
	}
	req := row.toModel()

	var rows []notificationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT request_id, connection_id, driver_id, notified_at
		FROM dispatch_request_notifications
		WHERE request_id = $1
		ORDER BY notified_at, connection_id
	`, requestID)
	if err != nil {
		return nil, storeErr("list recipients", err)
	}
	for _, n := range rows {
		req.NotifiedDrivers = append(req.NotifiedDrivers, models.NotifiedDriver{
			RequestID:    n.RequestID,
			ConnectionID: n.ConnectionID,
			DriverID:     n.DriverID.String,
			NotifiedAt:   n.NotifiedAt,
		})
	}
	return req, nil
}

func (r *DispatchRepo) withTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return storeErr(op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr(op, err)
	}
	return nil
}

func lockStatus(ctx context.Context, tx *sqlx.Tx, requestID string) (models.DispatchStatus, error) {
	var status string
	err := tx.GetContext(ctx, &status, `SELECT status FROM dispatch_requests WHERE id = $1 FOR UPDATE`, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", dispatch.ErrRequestNotFound, requestID)
		}
		return "", storeErr("lock request", err)
	}
	return models.DispatchStatus(status), nil
}

// checkID rejects IDs the id column could never hold, so they read as not
// found instead of a failed query.
func checkID(requestID string) error {
	if _, err := uuid.Parse(requestID); err != nil {
		return fmt.Errorf("%w: %q", dispatch.ErrRequestNotFound, requestID)
	}
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, dispatch.ErrStoreUnavailable, err)
}

// jsonArg passes raw JSON as text so the driver casts it to jsonb. Absent
// values become NULL.
func jsonArg(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
