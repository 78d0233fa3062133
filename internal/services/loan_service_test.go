package services

import (
	"testing"
	"time"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LoanServiceTestSuite struct {
	suite.Suite
	db                    *fakeDB
	mockLoansRepo         *MockLoansRepository
	mockItemsRepo         *MockItemsRepository
	mockAssetsRepo        *MockAssetsRepository
	mockDisbursementsRepo *MockDisbursementsRepository
	mockBackfillsRepo     *MockBackfillsRepository
	mockRequestsRepo      *MockRequestsRepository
	mockUsersRepo         *MockUsersRepository
	mockRemindersRepo     *MockLoanRemindersRepository
	mockLogsRepo          *MockLogsRepository
	mockCache             *MockCacheService
	mockNotifications     *MockNotificationService
	service               LoanService
	admin                 *models.User
	requester             *models.User
	request               *models.Request
}

func (suite *LoanServiceTestSuite) SetupTest() {
	suite.db = &fakeDB{}
	suite.mockLoansRepo = &MockLoansRepository{}
	suite.mockItemsRepo = &MockItemsRepository{}
	suite.mockAssetsRepo = &MockAssetsRepository{}
	suite.mockDisbursementsRepo = &MockDisbursementsRepository{}
	suite.mockBackfillsRepo = &MockBackfillsRepository{}
	suite.mockRequestsRepo = &MockRequestsRepository{}
	suite.mockUsersRepo = &MockUsersRepository{}
	suite.mockRemindersRepo = &MockLoanRemindersRepository{}
	suite.mockLogsRepo = &MockLogsRepository{}
	suite.mockCache = &MockCacheService{}
	suite.mockNotifications = &MockNotificationService{}
	suite.service = NewLoanService(
		suite.db,
		suite.mockLoansRepo,
		suite.mockItemsRepo,
		suite.mockAssetsRepo,
		suite.mockDisbursementsRepo,
		suite.mockBackfillsRepo,
		suite.mockRequestsRepo,
		suite.mockUsersRepo,
		suite.mockRemindersRepo,
		suite.mockLogsRepo,
		suite.mockCache,
		suite.mockNotifications,
	)
	suite.admin = newTestUser("admin", true)
	suite.requester = newTestUser("jsmith", false)
	suite.request = &models.Request{
		ID:          uuid.New(),
		RequesterID: suite.requester.ID,
		Status:      models.RequestApproved,
	}
}

func (suite *LoanServiceTestSuite) TearDownTest() {
	suite.mockLoansRepo.AssertExpectations(suite.T())
	suite.mockItemsRepo.AssertExpectations(suite.T())
	suite.mockAssetsRepo.AssertExpectations(suite.T())
	suite.mockDisbursementsRepo.AssertExpectations(suite.T())
	suite.mockBackfillsRepo.AssertExpectations(suite.T())
	suite.mockRemindersRepo.AssertExpectations(suite.T())
	suite.mockLogsRepo.AssertExpectations(suite.T())
	suite.mockCache.AssertExpectations(suite.T())
	suite.mockNotifications.AssertExpectations(suite.T())
}

func TestLoanServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LoanServiceTestSuite))
}

func (suite *LoanServiceTestSuite) newLoan(loaned, returned int) *models.Loan {
	return &models.Loan{
		ID:               uuid.New(),
		RequestID:        suite.request.ID,
		ItemID:           uuid.New(),
		QuantityLoaned:   loaned,
		QuantityReturned: returned,
		DateLoaned:       time.Now().Add(-48 * time.Hour),
	}
}

// expectLoanNotification covers the post-commit reminder fan-out.
func (suite *LoanServiceTestSuite) expectLoanNotification() {
	suite.mockRequestsRepo.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil).Once()
	suite.mockUsersRepo.On("GetByID", mock.Anything, suite.requester.ID).Return(suite.requester, nil).Once()
	suite.mockNotifications.On("SendReminder", mock.Anything, mock.AnythingOfType("*models.LoanReminder"), []*models.User{suite.requester}).Once()
}

func (suite *LoanServiceTestSuite) expectBackfillNotification() {
	suite.mockRequestsRepo.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil).Once()
	suite.mockUsersRepo.On("GetByID", mock.Anything, suite.requester.ID).Return(suite.requester, nil).Once()
	suite.mockNotifications.On("BackfillRequestResolved", mock.Anything, mock.AnythingOfType("*models.BackfillRequest"), suite.requester).Once()
}

func (suite *LoanServiceTestSuite) TestReturnLoan_Partial() {
	loan := suite.newLoan(3, 0)

	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.Log) bool {
		return l.Category == models.LogLoanModify
	})).Return(nil).Once()
	suite.mockLoansRepo.On("Update", mock.Anything, loan).Return(nil).Once()
	suite.expectLoanNotification()

	returned, err := suite.service.ReturnLoan(ctxWithUser(suite.admin), loan.ID, 2)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, returned.QuantityReturned)
	assert.Nil(suite.T(), returned.DateReturned)
	assert.True(suite.T(), suite.db.tx.committed)
	suite.mockLoansRepo.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestReturnLoan_FullReturnDeletesLoan() {
	loan := suite.newLoan(2, 0)

	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Log")).Return(nil).Once()
	suite.mockLoansRepo.On("Delete", mock.Anything, loan.ID).Return(nil).Once()
	suite.expectLoanNotification()

	returned, err := suite.service.ReturnLoan(ctxWithUser(suite.admin), loan.ID, 2)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, returned.QuantityReturned)
	assert.NotNil(suite.T(), returned.DateReturned)
	assert.True(suite.T(), suite.db.tx.committed)
	// Loans never touched aggregate stock, so returning one must not either.
	suite.mockItemsRepo.AssertNotCalled(suite.T(), "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestReturnLoan_AssetGoesBackInStock() {
	loan := suite.newLoan(1, 0)
	assetID := uuid.New()
	loan.AssetID = &assetID

	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockAssetsRepo.On("UpdateStatus", mock.Anything, assetID, models.AssetInStock).Return(nil).Once()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Log")).Return(nil).Once()
	suite.mockLoansRepo.On("Delete", mock.Anything, loan.ID).Return(nil).Once()
	suite.expectLoanNotification()

	_, err := suite.service.ReturnLoan(ctxWithUser(suite.admin), loan.ID, 1)
	assert.NoError(suite.T(), err)
}

func (suite *LoanServiceTestSuite) TestReturnLoan_OverReturn() {
	loan := suite.newLoan(5, 4)

	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()

	_, err := suite.service.ReturnLoan(ctxWithUser(suite.admin), loan.ID, 2)

	var overReturn *common.OverReturnError
	assert.ErrorAs(suite.T(), err, &overReturn)
	assert.False(suite.T(), suite.db.tx.committed)
}

func (suite *LoanServiceTestSuite) TestReturnLoan_RejectsNonPositiveDelta() {
	_, err := suite.service.ReturnLoan(ctxWithUser(suite.admin), uuid.New(), 0)

	var invalidQuantity *common.InvalidQuantityError
	assert.ErrorAs(suite.T(), err, &invalidQuantity)
}

func (suite *LoanServiceTestSuite) TestReturnLoan_RequiresAdmin() {
	_, err := suite.service.ReturnLoan(ctxWithUser(suite.requester), uuid.New(), 1)

	var permission *common.PermissionError
	assert.ErrorAs(suite.T(), err, &permission)
}

func (suite *LoanServiceTestSuite) TestConvert_RejectsMoreThanUnreturned() {
	loan := suite.newLoan(5, 1)

	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()

	_, err := suite.service.ConvertLoanToDisbursement(ctxWithUser(suite.admin), loan.ID, 5)

	var invalidQuantity *common.InvalidQuantityError
	assert.ErrorAs(suite.T(), err, &invalidQuantity)
	assert.False(suite.T(), suite.db.tx.committed)
}

func (suite *LoanServiceTestSuite) TestConvert_PartialLeavesLoanOpen() {
	loan := suite.newLoan(5, 1)

	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockDisbursementsRepo.On("CreateOrIncrement", mock.Anything, mock.MatchedBy(func(d *models.Disbursement) bool {
		return d.RequestID == loan.RequestID && d.ItemID == loan.ItemID && d.Quantity == 3
	})).Return(nil).Once()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.Log) bool {
		return l.Category == models.LogLoanToDisburse
	})).Return(nil).Once()
	suite.mockLoansRepo.On("Update", mock.Anything, loan).Return(nil).Once()
	suite.mockCache.On("DeleteItem", mock.Anything, loan.ItemID).Return(nil).Once()
	suite.expectLoanNotification()

	disbursement, err := suite.service.ConvertLoanToDisbursement(ctxWithUser(suite.admin), loan.ID, 3)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, disbursement.Quantity)
	assert.Equal(suite.T(), 2, loan.QuantityLoaned)
	assert.Equal(suite.T(), 1, loan.QuantityReturned)
	assert.True(suite.T(), suite.db.tx.committed)
	// Conversion moves already-loaned stock, never the aggregate quantity.
	suite.mockItemsRepo.AssertNotCalled(suite.T(), "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestConvert_FullRemainderDeletesLoan() {
	loan := suite.newLoan(2, 0)

	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockDisbursementsRepo.On("CreateOrIncrement", mock.Anything, mock.AnythingOfType("*models.Disbursement")).Return(nil).Once()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Log")).Return(nil).Once()
	suite.mockLoansRepo.On("Delete", mock.Anything, loan.ID).Return(nil).Once()
	suite.mockCache.On("DeleteItem", mock.Anything, loan.ItemID).Return(nil).Once()
	suite.expectLoanNotification()

	_, err := suite.service.ConvertLoanToDisbursement(ctxWithUser(suite.admin), loan.ID, 2)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), suite.db.tx.committed)
}

func (suite *LoanServiceTestSuite) TestConvert_AssetLoanMarksAssetDisbursed() {
	loan := suite.newLoan(1, 0)
	assetID := uuid.New()
	loan.AssetID = &assetID
	item := &models.Item{ID: loan.ItemID, Name: "Multimeter", Quantity: 3, HasAssets: true}

	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockItemsRepo.On("GetByIDForUpdate", mock.Anything, loan.ItemID).Return(item, nil).Once()
	suite.mockDisbursementsRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *models.Disbursement) bool {
		return d.AssetID != nil && *d.AssetID == assetID && d.Quantity == 1
	})).Return(nil).Once()
	suite.mockAssetsRepo.On("UpdateStatus", mock.Anything, assetID, models.AssetDisbursed).Return(nil).Once()
	suite.mockAssetsRepo.On("CountActive", mock.Anything, loan.ItemID).Return(2, nil).Once()
	suite.mockItemsRepo.On("UpdateQuantity", mock.Anything, loan.ItemID, 2).Return(nil).Once()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Log")).Return(nil).Once()
	suite.mockLoansRepo.On("Delete", mock.Anything, loan.ID).Return(nil).Once()
	suite.mockCache.On("DeleteItem", mock.Anything, loan.ItemID).Return(nil).Once()
	suite.expectLoanNotification()

	_, err := suite.service.ConvertLoanToDisbursement(ctxWithUser(suite.admin), loan.ID, 1)
	assert.NoError(suite.T(), err)
}

func (suite *LoanServiceTestSuite) TestCreateBackfillRequest_Success() {
	loan := suite.newLoan(3, 1)

	suite.mockLoansRepo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockRequestsRepo.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil).Once()
	suite.mockBackfillsRepo.On("CreateBackfillRequest", mock.Anything, mock.MatchedBy(func(b *models.BackfillRequest) bool {
		return b.LoanID == loan.ID && b.Status == models.RequestOutstanding
	})).Return(nil).Once()

	backfillRequest, err := suite.service.CreateBackfillRequest(ctxWithUser(suite.requester), loan.ID, "lost two probes", "receipts/abc")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "lost two probes", backfillRequest.RequesterComment)
	assert.Equal(suite.T(), "receipts/abc", backfillRequest.Receipt)
}

func (suite *LoanServiceTestSuite) TestCreateBackfillRequest_NothingUnreturned() {
	loan := suite.newLoan(3, 3)

	suite.mockLoansRepo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockRequestsRepo.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil).Once()

	_, err := suite.service.CreateBackfillRequest(ctxWithUser(suite.requester), loan.ID, "", "")

	var invalidState *common.InvalidStateError
	assert.ErrorAs(suite.T(), err, &invalidState)
}

func (suite *LoanServiceTestSuite) TestCreateBackfillRequest_OnlyRequester() {
	loan := suite.newLoan(3, 0)
	stranger := newTestUser("stranger", false)

	suite.mockLoansRepo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockRequestsRepo.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil).Once()

	_, err := suite.service.CreateBackfillRequest(ctxWithUser(stranger), loan.ID, "", "")

	var permission *common.PermissionError
	assert.ErrorAs(suite.T(), err, &permission)
}

func (suite *LoanServiceTestSuite) TestResolveBackfillRequest_ApproveCoversRemainder() {
	loan := suite.newLoan(3, 1)
	backfillRequest := &models.BackfillRequest{
		ID:               uuid.New(),
		LoanID:           loan.ID,
		Status:           models.RequestOutstanding,
		RequesterComment: "lost them",
		Receipt:          "receipts/abc",
		DateOpen:         time.Now().Add(-time.Hour),
	}

	suite.mockBackfillsRepo.On("GetBackfillRequestForUpdate", mock.Anything, backfillRequest.ID).Return(backfillRequest, nil).Once()
	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockBackfillsRepo.On("CreateBackfill", mock.Anything, mock.MatchedBy(func(b *models.Backfill) bool {
		return b.RequestID == loan.RequestID && b.ItemID == loan.ItemID &&
			b.Quantity == 2 && b.Status == models.BackfillAwaitingItems && b.Receipt == "receipts/abc"
	})).Return(nil).Once()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.Log) bool {
		return l.Category == models.LogBackfillApproval
	})).Return(nil).Once()
	suite.mockDisbursementsRepo.On("CreateOrIncrement", mock.Anything, mock.MatchedBy(func(d *models.Disbursement) bool {
		return d.Quantity == 2
	})).Return(nil).Once()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.Log) bool {
		return l.Category == models.LogLoanToDisburse
	})).Return(nil).Once()
	// The backfill consumed everything unreturned, so the loan goes away and
	// the backfill request goes with it.
	suite.mockLoansRepo.On("Delete", mock.Anything, loan.ID).Return(nil).Once()
	suite.mockCache.On("DeleteItem", mock.Anything, loan.ItemID).Return(nil).Once()
	suite.expectBackfillNotification()

	resolved, err := suite.service.ResolveBackfillRequest(ctxWithUser(suite.admin), backfillRequest.ID, models.DecisionApprove, "approved")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RequestApproved, resolved.Status)
	assert.NotNil(suite.T(), resolved.DateClosed)
	assert.True(suite.T(), suite.db.tx.committed)
}

func (suite *LoanServiceTestSuite) TestResolveBackfillRequest_Deny() {
	loan := suite.newLoan(3, 0)
	backfillRequest := &models.BackfillRequest{
		ID:       uuid.New(),
		LoanID:   loan.ID,
		Status:   models.RequestOutstanding,
		DateOpen: time.Now().Add(-time.Hour),
	}

	suite.mockBackfillsRepo.On("GetBackfillRequestForUpdate", mock.Anything, backfillRequest.ID).Return(backfillRequest, nil).Once()
	suite.mockLoansRepo.On("GetByIDForUpdate", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockBackfillsRepo.On("UpdateBackfillRequest", mock.Anything, backfillRequest).Return(nil).Once()
	suite.expectBackfillNotification()

	resolved, err := suite.service.ResolveBackfillRequest(ctxWithUser(suite.admin), backfillRequest.ID, models.DecisionDeny, "no receipt")

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.RequestDenied, resolved.Status)
	assert.Equal(suite.T(), 3, loan.QuantityLoaned)
	suite.mockBackfillsRepo.AssertNotCalled(suite.T(), "CreateBackfill", mock.Anything, mock.Anything)
	suite.mockLoansRepo.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestResolveBackfillRequest_AlreadyResolved() {
	backfillRequest := &models.BackfillRequest{
		ID:     uuid.New(),
		LoanID: uuid.New(),
		Status: models.RequestDenied,
	}

	suite.mockBackfillsRepo.On("GetBackfillRequestForUpdate", mock.Anything, backfillRequest.ID).Return(backfillRequest, nil).Once()

	_, err := suite.service.ResolveBackfillRequest(ctxWithUser(suite.admin), backfillRequest.ID, models.DecisionApprove, "")

	var invalidState *common.InvalidStateError
	assert.ErrorAs(suite.T(), err, &invalidState)
	assert.False(suite.T(), suite.db.tx.committed)
}

func (suite *LoanServiceTestSuite) TestDeleteBackfillRequest_RequesterWhileOutstanding() {
	loan := suite.newLoan(3, 0)
	backfillRequest := &models.BackfillRequest{
		ID:     uuid.New(),
		LoanID: loan.ID,
		Status: models.RequestOutstanding,
	}

	suite.mockBackfillsRepo.On("GetBackfillRequestForUpdate", mock.Anything, backfillRequest.ID).Return(backfillRequest, nil).Once()
	suite.mockLoansRepo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockRequestsRepo.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil).Once()
	suite.mockBackfillsRepo.On("DeleteBackfillRequest", mock.Anything, backfillRequest.ID).Return(nil).Once()

	err := suite.service.DeleteBackfillRequest(ctxWithUser(suite.requester), backfillRequest.ID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), suite.db.tx.committed)
}

func (suite *LoanServiceTestSuite) TestDeleteBackfillRequest_ResolvedIsImmutable() {
	loan := suite.newLoan(3, 0)
	backfillRequest := &models.BackfillRequest{
		ID:     uuid.New(),
		LoanID: loan.ID,
		Status: models.RequestApproved,
	}

	suite.mockBackfillsRepo.On("GetBackfillRequestForUpdate", mock.Anything, backfillRequest.ID).Return(backfillRequest, nil).Once()
	suite.mockLoansRepo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockRequestsRepo.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil).Once()

	err := suite.service.DeleteBackfillRequest(ctxWithUser(suite.requester), backfillRequest.ID)

	var permission *common.PermissionError
	assert.ErrorAs(suite.T(), err, &permission)
	suite.mockBackfillsRepo.AssertNotCalled(suite.T(), "DeleteBackfillRequest", mock.Anything, mock.Anything)
}

func (suite *LoanServiceTestSuite) TestSatisfyBackfill_Success() {
	backfill := &models.Backfill{
		ID:        uuid.New(),
		RequestID: suite.request.ID,
		ItemID:    uuid.New(),
		Quantity:  2,
		Status:    models.BackfillAwaitingItems,
	}

	suite.mockBackfillsRepo.On("GetBackfill", mock.Anything, backfill.ID).Return(backfill, nil).Once()
	suite.mockBackfillsRepo.On("UpdateBackfill", mock.Anything, backfill).Return(nil).Once()
	suite.mockLogsRepo.On("Create", mock.Anything, mock.MatchedBy(func(l *models.Log) bool {
		return l.Category == models.LogBackfillSatisfied
	})).Return(nil).Once()

	satisfied, err := suite.service.SatisfyBackfill(ctxWithUser(suite.admin), backfill.ID)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.BackfillSatisfied, satisfied.Status)
	assert.True(suite.T(), suite.db.tx.committed)
}

func (suite *LoanServiceTestSuite) TestSatisfyBackfill_AlreadySatisfied() {
	backfill := &models.Backfill{
		ID:     uuid.New(),
		Status: models.BackfillSatisfied,
	}

	suite.mockBackfillsRepo.On("GetBackfill", mock.Anything, backfill.ID).Return(backfill, nil).Once()

	_, err := suite.service.SatisfyBackfill(ctxWithUser(suite.admin), backfill.ID)

	var invalidState *common.InvalidStateError
	assert.ErrorAs(suite.T(), err, &invalidState)
}

func (suite *LoanServiceTestSuite) TestGetLoan_OtherUsersLoanHidden() {
	loan := suite.newLoan(2, 0)
	stranger := newTestUser("stranger", false)

	suite.mockLoansRepo.On("GetByID", mock.Anything, loan.ID).Return(loan, nil).Once()
	suite.mockRequestsRepo.On("GetByID", mock.Anything, suite.request.ID).Return(suite.request, nil).Once()

	_, err := suite.service.GetLoan(ctxWithUser(stranger), loan.ID)

	var permission *common.PermissionError
	assert.ErrorAs(suite.T(), err, &permission)
}

func (suite *LoanServiceTestSuite) TestCreateLoanReminder_RequiresSubject() {
	err := suite.service.CreateLoanReminder(ctxWithUser(suite.admin), &models.LoanReminder{
		Body:     "return your gear",
		SendDate: time.Now().Add(24 * time.Hour),
	})

	var validation *common.ValidationError
	assert.ErrorAs(suite.T(), err, &validation)
}

func (suite *LoanServiceTestSuite) TestCreateLoanReminder_Success() {
	reminder := &models.LoanReminder{
		Subject:  "Loans due Friday",
		Body:     "return your gear",
		SendDate: time.Now().Add(24 * time.Hour),
	}

	suite.mockRemindersRepo.On("Create", mock.Anything, reminder).Return(nil).Once()

	err := suite.service.CreateLoanReminder(ctxWithUser(suite.admin), reminder)

	assert.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), uuid.Nil, reminder.ID)
}
