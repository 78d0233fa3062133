package services

import (
	"context"
	"testing"
	"time"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CartServiceTestSuite struct {
	suite.Suite
	db                *fakeDB
	mockCartsRepo     *MockCartsRepository
	mockItemsRepo     *MockItemsRepository
	mockRequestsRepo  *MockRequestsRepository
	mockLogsRepo      *MockLogsRepository
	mockNotifications *MockNotificationService
	service           CartService
	user              *models.User
}

func (suite *CartServiceTestSuite) SetupTest() {
	suite.db = &fakeDB{}
	suite.mockCartsRepo = &MockCartsRepository{}
	suite.mockItemsRepo = &MockItemsRepository{}
	suite.mockRequestsRepo = &MockRequestsRepository{}
	suite.mockLogsRepo = &MockLogsRepository{}
	suite.mockNotifications = &MockNotificationService{}
	suite.service = NewCartService(suite.db, suite.mockCartsRepo, suite.mockItemsRepo, suite.mockRequestsRepo, suite.mockLogsRepo, suite.mockNotifications)
	suite.user = newTestUser("jsmith", false)
}

func (suite *CartServiceTestSuite) TearDownTest() {
	suite.mockCartsRepo.AssertExpectations(suite.T())
	suite.mockItemsRepo.AssertExpectations(suite.T())
	suite.mockRequestsRepo.AssertExpectations(suite.T())
	suite.mockLogsRepo.AssertExpectations(suite.T())
	suite.mockNotifications.AssertExpectations(suite.T())
}

func TestCartServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CartServiceTestSuite))
}

func (suite *CartServiceTestSuite) TestAddToCart_Success() {
	itemID := uuid.New()
	cartItem := &models.CartItem{
		ItemID:      itemID,
		Quantity:    3,
		RequestType: models.RequestTypeDisbursement,
	}

	suite.mockItemsRepo.On("GetByID", mock.Anything, itemID).Return(&models.Item{ID: itemID, Name: "Resistor"}, nil).Once()
	suite.mockCartsRepo.On("Upsert", mock.Anything, cartItem).Return(nil).Once()

	err := suite.service.AddToCart(ctxWithUser(suite.user), cartItem)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.user.ID, cartItem.OwnerID)
	assert.NotEqual(suite.T(), uuid.Nil, cartItem.ID)
}

func (suite *CartServiceTestSuite) TestAddToCart_RejectsNonPositiveQuantity() {
	err := suite.service.AddToCart(ctxWithUser(suite.user), &models.CartItem{
		ItemID:      uuid.New(),
		Quantity:    0,
		RequestType: models.RequestTypeLoan,
	})

	var invalidQuantity *common.InvalidQuantityError
	assert.ErrorAs(suite.T(), err, &invalidQuantity)
}

func (suite *CartServiceTestSuite) TestAddToCart_RejectsDueDateOnDisbursement() {
	due := time.Now().Add(24 * time.Hour)
	err := suite.service.AddToCart(ctxWithUser(suite.user), &models.CartItem{
		ItemID:      uuid.New(),
		Quantity:    1,
		RequestType: models.RequestTypeDisbursement,
		DueDate:     &due,
	})

	var validation *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validation)
	assert.Equal(suite.T(), "due_date", validation.Field)
}

func (suite *CartServiceTestSuite) TestAddToCart_RejectsUnknownRequestType() {
	err := suite.service.AddToCart(ctxWithUser(suite.user), &models.CartItem{
		ItemID:      uuid.New(),
		Quantity:    1,
		RequestType: "borrow",
	})

	var validation *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validation)
	assert.Equal(suite.T(), "request_type", validation.Field)
}

func (suite *CartServiceTestSuite) TestAddToCart_UnknownItem() {
	itemID := uuid.New()
	suite.mockItemsRepo.On("GetByID", mock.Anything, itemID).Return(nil, pgx.ErrNoRows).Once()

	err := suite.service.AddToCart(ctxWithUser(suite.user), &models.CartItem{
		ItemID:      itemID,
		Quantity:    1,
		RequestType: models.RequestTypeLoan,
	})

	var notFound *common.NotFoundError
	assert.ErrorAs(suite.T(), err, &notFound)
}

func (suite *CartServiceTestSuite) TestAddToCart_RequiresUser() {
	err := suite.service.AddToCart(context.Background(), &models.CartItem{
		ItemID:      uuid.New(),
		Quantity:    1,
		RequestType: models.RequestTypeLoan,
	})

	var permission *common.PermissionError
	assert.ErrorAs(suite.T(), err, &permission)
}

func (suite *CartServiceTestSuite) TestSubmitCart_Success() {
	due := time.Now().Add(7 * 24 * time.Hour)
	loanItemID := uuid.New()
	disburseItemID := uuid.New()
	cartItems := []*models.CartItem{
		{ID: uuid.New(), OwnerID: suite.user.ID, ItemID: loanItemID, Quantity: 2, RequestType: models.RequestTypeLoan, DueDate: &due},
		{ID: uuid.New(), OwnerID: suite.user.ID, ItemID: disburseItemID, Quantity: 1, RequestType: models.RequestTypeDisbursement},
	}

	suite.mockCartsRepo.On("ListByOwner", mock.Anything, suite.user.ID).Return(cartItems, nil).Once()
	suite.mockRequestsRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *models.Request) bool {
		return r.RequesterID == suite.user.ID && r.Status == models.RequestOutstanding
	})).Return(nil).Once()
	suite.mockRequestsRepo.On("CreateRequestedItem", mock.Anything, mock.AnythingOfType("*models.RequestedItem")).Return(nil).Twice()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.Log) bool {
		return l.Category == models.LogRequestItemCreation
	})).Return(nil).Twice()
	suite.mockCartsRepo.On("DeleteByOwner", mock.Anything, suite.user.ID).Return(nil).Once()
	suite.mockNotifications.On("RequestOpened", mock.Anything, mock.AnythingOfType("*models.Request"), suite.user).Once()

	request, err := suite.service.SubmitCart(ctxWithUser(suite.user), "need parts for lab 3")

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), request.Items, 2)
	assert.Equal(suite.T(), "need parts for lab 3", request.OpenComment)
	assert.Equal(suite.T(), loanItemID, request.Items[0].ItemID)
	assert.Equal(suite.T(), models.RequestTypeLoan, request.Items[0].RequestType)
	assert.Equal(suite.T(), disburseItemID, request.Items[1].ItemID)
	assert.True(suite.T(), suite.db.tx.committed)
}

func (suite *CartServiceTestSuite) TestSubmitCart_EmptyCart() {
	suite.mockCartsRepo.On("ListByOwner", mock.Anything, suite.user.ID).Return([]*models.CartItem{}, nil).Once()

	_, err := suite.service.SubmitCart(ctxWithUser(suite.user), "")

	var emptyCart *common.EmptyCartError
	assert.ErrorAs(suite.T(), err, &emptyCart)
	assert.False(suite.T(), suite.db.tx.committed)
}
