package payment

import (
	"errors"
	"time"

	"github.com/bewear-pt/storefront/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the payment service.
type Repository interface {
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	MarkOrderPaid(webhookEventID uint, orderID string) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a payment repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	return markProcessed(r.db, id, processingError)
}

func markProcessed(db *gorm.DB, id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

// MarkOrderPaid sets the order to paid unless it already is and marks the
// webhook event processed, in one transaction. It reports whether the order
// status changed.
func (r *gormRepository) MarkOrderPaid(webhookEventID uint, orderID string) (bool, error) {
	changed := false
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Select("id", "status").Where("id = ?", orderID).Take(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status <> ?", orderID, models.OrderStatusPaid).
			Update("status", models.OrderStatusPaid)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected > 0

		return markProcessed(tx, webhookEventID, "")
	})
	if err != nil {
		return false, err
	}
	return changed, nil
}
