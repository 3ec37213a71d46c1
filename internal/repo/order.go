package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.DB.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

// DeletePendingOrder removes an order that never reached the gateway. Paid
// orders are never touched.
func (r *GormRepo) DeletePendingOrder(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).
		Where("id = ? AND status = ?", id, models.OrderStatusPending).
		Delete(&models.Order{}).Error
}

func (r *GormRepo) SetPaymentSession(ctx context.Context, id uuid.UUID, sessionID string) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("payment_session_id", sessionID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) orderDetails(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Preload("ShippingAddress").
		Preload("Items").
		Preload("Items.Product")
}

func (r *GormRepo) GetOrderForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	var o models.Order
	if err := r.orderDetails(ctx).Where("id = ? AND user_id = ?", id, userID).First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) GetOrderBySessionForUser(ctx context.Context, userID uuid.UUID, sessionID string) (*models.Order, error) {
	var o models.Order
	if err := r.orderDetails(ctx).
		Where("payment_session_id = ? AND user_id = ?", sessionID, userID).
		First(&o).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormRepo) ListOrders(ctx context.Context, userID uuid.UUID, limit, offset int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// FulfillOrder moves a PENDING order to PAID and, in the same transaction,
// snapshots the owner's cart into order items, takes the stock and empties
// the cart. The status change is a compare-and-swap on PENDING: a second
// delivery finds zero rows and gets ErrAlreadyProcessed with nothing written.
func (r *GormRepo) FulfillOrder(ctx context.Context, order *models.Order, paymentID string) ([]models.OrderItem, error) {
	var created []models.OrderItem

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"status": models.OrderStatusPaid}
		if paymentID != "" {
			updates["payment_id"] = paymentID
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		var cart []models.CartItem
		if err := tx.Preload("Product").
			Where("user_id = ?", order.UserID).
			Order("created_at ASC").
			Find(&cart).Error; err != nil {
			return err
		}

		for _, ci := range cart {
			if ci.Product == nil {
				return &StockError{ProductID: ci.ProductID, Name: ci.ProductID.String()}
			}
			item := models.OrderItem{
				OrderID:              order.ID,
				ProductID:            ci.ProductID,
				Quantity:             ci.Quantity,
				PriceAtPurchaseCents: ci.Product.PriceCents,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}

			dec := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", ci.ProductID, ci.Quantity).
				Update("stock", gorm.Expr("stock - ?", ci.Quantity))
			if dec.Error != nil {
				return dec.Error
			}
			if dec.RowsAffected == 0 {
				return &StockError{ProductID: ci.ProductID, Name: ci.Product.Name}
			}
			created = append(created, item)
		}

		return tx.Where("user_id = ?", order.UserID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	order.Status = models.OrderStatusPaid
	if paymentID != "" {
		order.PaymentID = &paymentID
	}
	return created, nil
}
