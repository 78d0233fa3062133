package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CartService stages per-user cart entries and converts a cart into an
// outstanding request.
type CartService interface {
	AddToCart(ctx context.Context, cartItem *models.CartItem) error
	RemoveFromCart(ctx context.Context, itemID uuid.UUID) error
	GetCart(ctx context.Context) ([]*models.CartItem, error)
	// SubmitCart turns the acting user's cart into a single outstanding
	// request and empties the cart, all in one transaction.
	SubmitCart(ctx context.Context, openComment string) (*models.Request, error)
}

type cartService struct {
	db            repositories.DB
	cartsRepo     repositories.CartsRepository
	itemsRepo     repositories.ItemsRepository
	requestsRepo  repositories.RequestsRepository
	logsRepo      repositories.LogsRepository
	notifications NotificationService
}

func NewCartService(
	db repositories.DB,
	cartsRepo repositories.CartsRepository,
	itemsRepo repositories.ItemsRepository,
	requestsRepo repositories.RequestsRepository,
	logsRepo repositories.LogsRepository,
	notifications NotificationService,
) CartService {
	return &cartService{
		db:            db,
		cartsRepo:     cartsRepo,
		itemsRepo:     itemsRepo,
		requestsRepo:  requestsRepo,
		logsRepo:      logsRepo,
		notifications: notifications,
	}
}

// AddToCart upserts a cart entry: adding an item already in the cart
// replaces its quantity, type and due date.
func (s *cartService) AddToCart(ctx context.Context, cartItem *models.CartItem) error {
	actor, err := requireUser(ctx)
	if err != nil {
		return err
	}
	if cartItem.Quantity <= 0 {
		return &common.InvalidQuantityError{Quantity: cartItem.Quantity, Reason: "cart quantity must be positive"}
	}
	if !cartItem.RequestType.Valid() {
		return &common.ValidationError{Field: "request_type", Message: fmt.Sprintf("unknown request type %q", cartItem.RequestType)}
	}
	if cartItem.RequestType == models.RequestTypeDisbursement && cartItem.DueDate != nil {
		return &common.ValidationError{Field: "due_date", Message: "due dates only apply to loans"}
	}

	if _, err := s.itemsRepo.GetByID(ctx, cartItem.ItemID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &common.NotFoundError{Resource: "item", Key: cartItem.ItemID.String()}
		}
		return err
	}

	cartItem.OwnerID = actor.ID
	if cartItem.ID == uuid.Nil {
		cartItem.ID = uuid.New()
	}
	return s.cartsRepo.Upsert(ctx, cartItem)
}

func (s *cartService) RemoveFromCart(ctx context.Context, itemID uuid.UUID) error {
	actor, err := requireUser(ctx)
	if err != nil {
		return err
	}
	return s.cartsRepo.Delete(ctx, actor.ID, itemID)
}

func (s *cartService) GetCart(ctx context.Context) ([]*models.CartItem, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.cartsRepo.ListByOwner(ctx, actor.ID)
}

func (s *cartService) SubmitCart(ctx context.Context, openComment string) (*models.Request, error) {
	actor, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	carts := s.cartsRepo.WithTx(tx)
	cartItems, err := carts.ListByOwner(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, &common.EmptyCartError{}
	}

	request := &models.Request{
		ID:          uuid.New(),
		RequesterID: actor.ID,
		Status:      models.RequestOutstanding,
		DateOpen:    time.Now(),
		OpenComment: openComment,
	}
	requests := s.requestsRepo.WithTx(tx)
	if err := requests.Create(ctx, request); err != nil {
		return nil, err
	}

	logs := s.logsRepo.WithTx(tx)
	for _, cartItem := range cartItems {
		requestedItem := &models.RequestedItem{
			ID:          uuid.New(),
			RequestID:   request.ID,
			ItemID:      cartItem.ItemID,
			Quantity:    cartItem.Quantity,
			RequestType: cartItem.RequestType,
			DueDate:     cartItem.DueDate,
		}
		if err := requests.CreateRequestedItem(ctx, requestedItem); err != nil {
			return nil, err
		}
		request.Items = append(request.Items, requestedItem)

		if err := logs.Create(ctx, &models.Log{
			ItemID:           &cartItem.ItemID,
			RequestID:        &request.ID,
			InitiatingUserID: actor.ID,
			Category:         models.LogRequestItemCreation,
			Quantity:         &cartItem.Quantity,
			Message: fmt.Sprintf("%s requested %d unit(s) as %s",
				actor.Username, cartItem.Quantity, cartItem.RequestType),
		}); err != nil {
			return nil, err
		}
	}

	if err := carts.DeleteByOwner(ctx, actor.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.notifications.RequestOpened(ctx, request, actor)
	return request, nil
}
