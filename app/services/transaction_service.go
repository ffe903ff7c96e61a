package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/uniformhub/app/models"
	"github.com/shashiranjanraj/uniformhub/app/repositories"
	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
	"github.com/shashiranjanraj/uniformhub/pkg/orm"
)

type TransactionInput struct {
	ListingID uint `json:"listingId" validate:"required"`
}

type MessageInput struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

type TransactionFilter struct {
	Status string
	Role   string // "buyer", "seller" or empty for both
}

// Publisher fans a payload out to every subscriber of a room.
type Publisher interface {
	Publish(room string, data []byte)
}

type TransactionService struct {
	txs      repositories.Repo[models.Transaction]
	messages repositories.Repo[models.TransactionMessage]
	db       *gorm.DB
	pub      Publisher
}

func NewTransactionService(db *gorm.DB, pub Publisher) *TransactionService {
	return &TransactionService{
		txs:      repositories.NewRepo[models.Transaction](db),
		messages: repositories.NewRepo[models.TransactionMessage](db),
		db:       db,
		pub:      pub,
	}
}

// Room names the websocket room carrying a transaction's messages.
func Room(txID uint) string { return fmt.Sprintf("transaction:%d", txID) }

// Create reserves the listing and opens a pending transaction at its price.
func (s *TransactionService) Create(ctx context.Context, actor *auth.Principal, in TransactionInput) (*models.Transaction, error) {
	var out *models.Transaction
	err := orm.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		var l models.Listing
		if err := tx.First(&l, in.ListingID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return invalid("listingId", "The selected listing does not exist.")
			}
			return err
		}
		if l.SellerID == actor.UserID {
			return invalid("listingId", "You cannot buy your own listing.")
		}
		res := tx.Model(&models.Listing{}).
			Where("id = ? AND status = ?", l.ID, models.ListingActive).
			Update("status", models.ListingReserved)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictf("listing %d is not available", l.ID)
		}
		t := &models.Transaction{
			ListingID:   l.ID,
			BuyerID:     actor.UserID,
			SellerID:    l.SellerID,
			AmountCents: l.PriceCents,
			Status:      models.TransactionPending,
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.WithCtx(ctx).Info("transaction opened", "transaction_id", out.ID, "listing_id", out.ListingID)
	return out, nil
}

// List returns the actor's transactions, or everyone's for transactions.view.
func (s *TransactionService) List(ctx context.Context, actor *auth.Principal, f TransactionFilter, page orm.PageRequest) ([]models.Transaction, orm.Pagination, error) {
	q := s.txs.DB(ctx).Model(&models.Transaction{})
	switch f.Role {
	case "buyer":
		q = q.Where("buyer_id = ?", actor.UserID)
	case "seller":
		q = q.Where("seller_id = ?", actor.UserID)
	case "":
		if !actor.Can(models.PermTransactionsView) {
			q = q.Where("buyer_id = ? OR seller_id = ?", actor.UserID, actor.UserID)
		}
	default:
		return nil, orm.Pagination{}, invalid("role", "The role must be buyer or seller.")
	}
	if f.Status != "" {
		if !contains([]string{models.TransactionPending, models.TransactionCompleted, models.TransactionCancelled}, f.Status) {
			return nil, orm.Pagination{}, invalid("status", "The status must be one of pending, completed, cancelled.")
		}
		q = q.Where("status = ?", f.Status)
	}
	var out []models.Transaction
	p, err := orm.Paginate(q.Order("id desc"), page, &out)
	return out, p, err
}

func (s *TransactionService) Get(ctx context.Context, actor *auth.Principal, id uint) (*models.Transaction, error) {
	t, err := s.txs.Find(ctx, id)
	if err != nil {
		return nil, notFound(err, "transaction")
	}
	if !t.IsParty(actor.UserID) && !actor.Can(models.PermTransactionsView) {
		return nil, forbiddenf("transaction %d", id)
	}
	return t, nil
}

// Complete marks the sale done. Only the seller or a manager may do it.
func (s *TransactionService) Complete(ctx context.Context, actor *auth.Principal, id uint) (*models.Transaction, error) {
	return s.settle(ctx, actor, id, models.TransactionCompleted, models.ListingSold, func(t *models.Transaction) bool {
		return t.SellerID == actor.UserID
	})
}

// Cancel releases the listing back to active.
func (s *TransactionService) Cancel(ctx context.Context, actor *auth.Principal, id uint) (*models.Transaction, error) {
	return s.settle(ctx, actor, id, models.TransactionCancelled, models.ListingActive, func(t *models.Transaction) bool {
		return t.IsParty(actor.UserID)
	})
}

func (s *TransactionService) settle(ctx context.Context, actor *auth.Principal, id uint, status, listingStatus string, allowed func(*models.Transaction) bool) (*models.Transaction, error) {
	t, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !allowed(t) && !actor.Can(models.PermTransactionsManage) {
		return nil, forbiddenf("transaction %d", id)
	}
	err = orm.Transaction(ctx, s.db, func(tx *gorm.DB) error {
		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status = ?", id, models.TransactionPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return conflictf("transaction %d is no longer pending", id)
		}
		return tx.Model(&models.Listing{}).
			Where("id = ? AND status = ?", t.ListingID, models.ListingReserved).
			Update("status", listingStatus).Error
	})
	if err != nil {
		return nil, err
	}
	t.Status = status
	s.broadcast(ctx, id, map[string]any{"type": "status", "status": status})
	return t, nil
}

func (s *TransactionService) Messages(ctx context.Context, actor *auth.Principal, id uint) ([]models.TransactionMessage, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.messages.Where(ctx, "id asc", "transaction_id = ?", id)
}

// PostMessage stores a message from a participant and pushes it to the room.
func (s *TransactionService) PostMessage(ctx context.Context, actor *auth.Principal, id uint, in MessageInput) (*models.TransactionMessage, error) {
	t, err := s.txs.Find(ctx, id)
	if err != nil {
		return nil, notFound(err, "transaction")
	}
	if !t.IsParty(actor.UserID) {
		return nil, forbiddenf("only the buyer and seller may post on transaction %d", id)
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, invalid("body", "The body field is required.")
	}
	m := &models.TransactionMessage{TransactionID: id, SenderID: actor.UserID, Body: body}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, err
	}
	s.broadcast(ctx, id, map[string]any{"type": "message", "message": m})
	return m, nil
}

// CanWatch reports whether actor may subscribe to the transaction's room.
func (s *TransactionService) CanWatch(ctx context.Context, actor *auth.Principal, id uint) error {
	_, err := s.Get(ctx, actor, id)
	return err
}

func (s *TransactionService) broadcast(ctx context.Context, id uint, payload map[string]any) {
	if s.pub == nil {
		return
	}
	payload["transactionId"] = id
	data, err := json.Marshal(payload)
	if err != nil {
		logger.WithCtx(ctx).Warn("transaction broadcast encode failed", "error", err)
		return
	}
	s.pub.Publish(Room(id), data)
}
