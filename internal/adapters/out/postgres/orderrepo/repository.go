package orderrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
)

// NumberSequence backs NextNumber. It is created by the schema migration.
const NumberSequence = "order_number_seq"

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts the order row, its lines and its initial history.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	dto := fromDomain(aggregate)
	if err := db.Omit(clause.Associations).Create(&dto).Error; err != nil {
		return err
	}

	if items := itemsFromDomain(aggregate); len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			return err
		}
	}
	if err := r.appendHistory(ctx, aggregate); err != nil {
		return err
	}

	aggregate.MarkPersisted(dto.Version)
	return nil
}

// Update rewrites the order row if nobody else changed it since it was loaded, then
// appends the history entries recorded in the meantime. Lines never change.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	loaded := dto.Version
	dto.Version = loaded + 1

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND version = ?", dto.ID, loaded).
		Select("*").
		Omit("id", "number", "customer_id", "supplier_id", "created_at", clause.Associations).
		Updates(&dto)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewVersionIsInvalidErrorWithCause("order")
	}

	if err := r.appendHistory(ctx, aggregate); err != nil {
		return err
	}

	aggregate.MarkPersisted(dto.Version)
	return nil
}

func (r *GormOrderRepository) appendHistory(ctx context.Context, aggregate *order.Order) error {
	history := historyFromDomain(aggregate)
	if len(history) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&history).Error
}

// Get retrieves an order with its lines and full history.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("seq") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormOrderRepository) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Raw("SELECT nextval(?::regclass)", NumberSequence).Scan(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ClaimDelivery sets the agent with a single conditional UPDATE so that of several
// concurrent claims exactly one matches a row.
func (r *GormOrderRepository) ClaimDelivery(
	ctx context.Context,
	orderID, agentID kernel.UUID,
	at time.Time,
	allowed []order.Status,
) (bool, error) {
	if len(allowed) == 0 {
		return false, errs.NewValueIsRequiredError("allowed")
	}

	statuses := make([]string, 0, len(allowed))
	for _, s := range allowed {
		statuses = append(statuses, s.String())
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND delivery_agent_id IS NULL AND status IN ?", orderID.Bytes(), statuses).
		Updates(map[string]any{
			"delivery_agent_id":    agentID.Bytes(),
			"delivery_assigned_at": at,
			"delivery_status":      order.DeliveryAssigned.String(),
			"version":              gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormOrderRepository) SetInvoiceRef(ctx context.Context, orderID kernel.UUID, ref string) (bool, error) {
	if ref == "" {
		return false, errs.NewValueIsRequiredError("ref")
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND invoice_ref IS NULL", orderID.Bytes()).
		Updates(map[string]any{
			"invoice_ref": ref,
			"version":     gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormOrderRepository) ListInvoicePending(ctx context.Context, limit int) ([]kernel.UUID, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}

	prepaid := []string{
		order.PaymentPrepaidCard.String(),
		order.PaymentPrepaidUPI.String(),
		order.PaymentPrepaidWallet.String(),
	}

	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("invoice_ref IS NULL").
		Where(r.db.Where("status = ?", order.StatusDelivered.String()).
			Or("payment_method IN ? AND payment_status = ?", prepaid, order.PaymentPaid.String())).
		Order("created_at").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}

	result := make([]kernel.UUID, 0, len(ids))
	for _, id := range ids {
		kid, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		result = append(result, kid)
	}
	return result, nil
}

// ClearExpiredChallenges drops every challenge that expired before now.
func (r *GormOrderRepository) ClearExpiredChallenges(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("challenge_expires_at IS NOT NULL AND challenge_expires_at < ?", now).
		Updates(map[string]any{
			"challenge_code_hash":  nil,
			"challenge_qr_nonce":   nil,
			"challenge_issued_at":  nil,
			"challenge_expires_at": nil,
			"challenge_attempts":   nil,
			"version":              gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
