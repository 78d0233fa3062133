package services

import (
	"context"
	"time"

	"github.com/nbv3/kip-ventory/internal/common"
	"github.com/nbv3/kip-ventory/internal/models"
	"github.com/nbv3/kip-ventory/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

func newTestUser(username string, admin bool) *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@example.com",
		IsStaff:  admin,
	}
}

func ctxWithUser(user *models.User) context.Context {
	return common.WithActingUser(context.Background(), user)
}

// fakeTx stands in for a pgx transaction. The repositories are mocked, so
// nothing ever queries through it; only Commit and Rollback are real.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	tx *fakeTx
}

func (d *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (d *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	d.tx = &fakeTx{}
	return d.tx, nil
}

// Mock repositories. WithTx returns the mock itself so expectations set on
// it cover both transactional and non-transactional calls.

type MockItemsRepository struct {
	mock.Mock
}

func (m *MockItemsRepository) WithTx(tx pgx.Tx) repositories.ItemsRepository { return m }

func (m *MockItemsRepository) Create(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemsRepository) GetByName(ctx context.Context, name string) (*models.Item, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemsRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockItemsRepository) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemsRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockItemsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemsRepository) List(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Item), args.Error(1)
}

func (m *MockItemsRepository) SetTags(ctx context.Context, itemID uuid.UUID, tags []string) error {
	args := m.Called(ctx, itemID, tags)
	return args.Error(0)
}

func (m *MockItemsRepository) ListTags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockItemsRepository) CreateCustomField(ctx context.Context, field *models.CustomField) error {
	args := m.Called(ctx, field)
	return args.Error(0)
}

func (m *MockItemsRepository) ListCustomFields(ctx context.Context, includePrivate bool) ([]*models.CustomField, error) {
	args := m.Called(ctx, includePrivate)
	return args.Get(0).([]*models.CustomField), args.Error(1)
}

func (m *MockItemsRepository) DeleteCustomField(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockItemsRepository) SetFieldValue(ctx context.Context, value *models.CustomFieldValue) error {
	args := m.Called(ctx, value)
	return args.Error(0)
}

func (m *MockItemsRepository) GetFieldValues(ctx context.Context, itemID uuid.UUID, includePrivate bool) ([]*models.CustomFieldValue, error) {
	args := m.Called(ctx, itemID, includePrivate)
	return args.Get(0).([]*models.CustomFieldValue), args.Error(1)
}

type MockAssetsRepository struct {
	mock.Mock
}

func (m *MockAssetsRepository) WithTx(tx pgx.Tx) repositories.AssetsRepository { return m }

func (m *MockAssetsRepository) Create(ctx context.Context, asset *models.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *MockAssetsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockAssetsRepository) GetByTag(ctx context.Context, tag string) (*models.Asset, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockAssetsRepository) ListByItem(ctx context.Context, itemID uuid.UUID, status models.AssetStatus) ([]*models.Asset, error) {
	args := m.Called(ctx, itemID, status)
	return args.Get(0).([]*models.Asset), args.Error(1)
}

func (m *MockAssetsRepository) SelectAvailableForUpdate(ctx context.Context, itemID uuid.UUID, limit int) ([]*models.Asset, error) {
	args := m.Called(ctx, itemID, limit)
	return args.Get(0).([]*models.Asset), args.Error(1)
}

func (m *MockAssetsRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.AssetStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAssetsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAssetsRepository) CountActive(ctx context.Context, itemID uuid.UUID) (int, error) {
	args := m.Called(ctx, itemID)
	return args.Int(0), args.Error(1)
}

type MockCartsRepository struct {
	mock.Mock
}

func (m *MockCartsRepository) WithTx(tx pgx.Tx) repositories.CartsRepository { return m }

func (m *MockCartsRepository) Upsert(ctx context.Context, cartItem *models.CartItem) error {
	args := m.Called(ctx, cartItem)
	return args.Error(0)
}

func (m *MockCartsRepository) GetByOwnerAndItem(ctx context.Context, ownerID, itemID uuid.UUID) (*models.CartItem, error) {
	args := m.Called(ctx, ownerID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartsRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.CartItem, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).([]*models.CartItem), args.Error(1)
}

func (m *MockCartsRepository) Delete(ctx context.Context, ownerID, itemID uuid.UUID) error {
	args := m.Called(ctx, ownerID, itemID)
	return args.Error(0)
}

func (m *MockCartsRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) error {
	args := m.Called(ctx, ownerID)
	return args.Error(0)
}

type MockRequestsRepository struct {
	mock.Mock
}

func (m *MockRequestsRepository) WithTx(tx pgx.Tx) repositories.RequestsRepository { return m }

func (m *MockRequestsRepository) Create(ctx context.Context, request *models.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestsRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockRequestsRepository) Update(ctx context.Context, request *models.Request) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestsRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRequestsRepository) List(ctx context.Context, filter *repositories.RequestSearchFilter) ([]*models.Request, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Request), args.Error(1)
}

func (m *MockRequestsRepository) CountOutstandingByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	args := m.Called(ctx, itemID)
	return args.Int(0), args.Error(1)
}

func (m *MockRequestsRepository) CreateRequestedItem(ctx context.Context, requestedItem *models.RequestedItem) error {
	args := m.Called(ctx, requestedItem)
	return args.Error(0)
}

func (m *MockRequestsRepository) ListRequestedItems(ctx context.Context, requestID uuid.UUID) ([]*models.RequestedItem, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).([]*models.RequestedItem), args.Error(1)
}

type MockLoansRepository struct {
	mock.Mock
}

func (m *MockLoansRepository) WithTx(tx pgx.Tx) repositories.LoansRepository { return m }

func (m *MockLoansRepository) Create(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoansRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoansRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoansRepository) Update(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoansRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLoansRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Loan, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *MockLoansRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.Loan, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *MockLoansRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]*models.Loan, error) {
	args := m.Called(ctx, requesterID)
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *MockLoansRepository) ListOpen(ctx context.Context) ([]*models.Loan, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *MockLoansRepository) CountOpenByItem(ctx context.Context, itemID uuid.UUID) (int, error) {
	args := m.Called(ctx, itemID)
	return args.Int(0), args.Error(1)
}

type MockDisbursementsRepository struct {
	mock.Mock
}

func (m *MockDisbursementsRepository) WithTx(tx pgx.Tx) repositories.DisbursementsRepository {
	return m
}

func (m *MockDisbursementsRepository) Create(ctx context.Context, disbursement *models.Disbursement) error {
	args := m.Called(ctx, disbursement)
	return args.Error(0)
}

func (m *MockDisbursementsRepository) CreateOrIncrement(ctx context.Context, disbursement *models.Disbursement) error {
	args := m.Called(ctx, disbursement)
	return args.Error(0)
}

func (m *MockDisbursementsRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Disbursement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Disbursement), args.Error(1)
}

func (m *MockDisbursementsRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]*models.Disbursement, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).([]*models.Disbursement), args.Error(1)
}

func (m *MockDisbursementsRepository) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.Disbursement, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).([]*models.Disbursement), args.Error(1)
}

type MockBackfillsRepository struct {
	mock.Mock
}

func (m *MockBackfillsRepository) WithTx(tx pgx.Tx) repositories.BackfillsRepository { return m }

func (m *MockBackfillsRepository) CreateBackfill(ctx context.Context, backfill *models.Backfill) error {
	args := m.Called(ctx, backfill)
	return args.Error(0)
}

func (m *MockBackfillsRepository) GetBackfill(ctx context.Context, id uuid.UUID) (*models.Backfill, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Backfill), args.Error(1)
}

func (m *MockBackfillsRepository) UpdateBackfill(ctx context.Context, backfill *models.Backfill) error {
	args := m.Called(ctx, backfill)
	return args.Error(0)
}

func (m *MockBackfillsRepository) ListBackfillsByRequest(ctx context.Context, requestID uuid.UUID, status models.BackfillStatus) ([]*models.Backfill, error) {
	args := m.Called(ctx, requestID, status)
	return args.Get(0).([]*models.Backfill), args.Error(1)
}

func (m *MockBackfillsRepository) CreateBackfillRequest(ctx context.Context, backfillRequest *models.BackfillRequest) error {
	args := m.Called(ctx, backfillRequest)
	return args.Error(0)
}

func (m *MockBackfillsRepository) GetBackfillRequest(ctx context.Context, id uuid.UUID) (*models.BackfillRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackfillRequest), args.Error(1)
}

func (m *MockBackfillsRepository) GetBackfillRequestForUpdate(ctx context.Context, id uuid.UUID) (*models.BackfillRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BackfillRequest), args.Error(1)
}

func (m *MockBackfillsRepository) UpdateBackfillRequest(ctx context.Context, backfillRequest *models.BackfillRequest) error {
	args := m.Called(ctx, backfillRequest)
	return args.Error(0)
}

func (m *MockBackfillsRepository) DeleteBackfillRequest(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBackfillsRepository) ListBackfillRequestsByRequest(ctx context.Context, requestID uuid.UUID, status models.RequestStatus) ([]*models.BackfillRequest, error) {
	args := m.Called(ctx, requestID, status)
	return args.Get(0).([]*models.BackfillRequest), args.Error(1)
}

func (m *MockBackfillsRepository) ListBackfillRequestsByLoan(ctx context.Context, loanID uuid.UUID) ([]*models.BackfillRequest, error) {
	args := m.Called(ctx, loanID)
	return args.Get(0).([]*models.BackfillRequest), args.Error(1)
}

type MockTransactionsRepository struct {
	mock.Mock
}

func (m *MockTransactionsRepository) WithTx(tx pgx.Tx) repositories.TransactionsRepository {
	return m
}

func (m *MockTransactionsRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockTransactionsRepository) ListByItem(ctx context.Context, itemID uuid.UUID, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, itemID, limit, offset)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

func (m *MockTransactionsRepository) List(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Transaction), args.Error(1)
}

type MockLogsRepository struct {
	mock.Mock
}

func (m *MockLogsRepository) WithTx(tx pgx.Tx) repositories.LogsRepository { return m }

func (m *MockLogsRepository) Create(ctx context.Context, log *models.Log) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockLogsRepository) List(ctx context.Context, filter *models.LogFilter) ([]*models.Log, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Log), args.Error(1)
}

type MockUsersRepository struct {
	mock.Mock
}

func (m *MockUsersRepository) WithTx(tx pgx.Tx) repositories.UsersRepository { return m }

func (m *MockUsersRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsersRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsersRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUsersRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsersRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUsersRepository) ListSubscribedAdmins(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockLoanRemindersRepository struct {
	mock.Mock
}

func (m *MockLoanRemindersRepository) WithTx(tx pgx.Tx) repositories.LoanRemindersRepository {
	return m
}

func (m *MockLoanRemindersRepository) Create(ctx context.Context, reminder *models.LoanReminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *MockLoanRemindersRepository) Update(ctx context.Context, reminder *models.LoanReminder) error {
	args := m.Called(ctx, reminder)
	return args.Error(0)
}

func (m *MockLoanRemindersRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLoanRemindersRepository) List(ctx context.Context) ([]*models.LoanReminder, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.LoanReminder), args.Error(1)
}

func (m *MockLoanRemindersRepository) ListPending(ctx context.Context, asOf time.Time) ([]*models.LoanReminder, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]*models.LoanReminder), args.Error(1)
}

func (m *MockLoanRemindersRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Item), args.Error(1)
}

func (m *MockCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	args := m.Called(ctx, item, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *MockCacheService) GetRequest(ctx context.Context, requestID uuid.UUID) (*models.Request, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Request), args.Error(1)
}

func (m *MockCacheService) SetRequest(ctx context.Context, request *models.Request, ttl time.Duration) error {
	args := m.Called(ctx, request, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteRequest(ctx context.Context, requestID uuid.UUID) error {
	args := m.Called(ctx, requestID)
	return args.Error(0)
}

func (m *MockCacheService) PushNotification(ctx context.Context, payload []byte) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

func (m *MockCacheService) PopNotification(ctx context.Context, timeout time.Duration) ([]byte, error) {
	args := m.Called(ctx, timeout)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheService) InvalidateItems(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) SubjectPrefix(ctx context.Context) string {
	args := m.Called(ctx)
	return args.String(0)
}

func (m *MockNotificationService) SetSubjectPrefix(ctx context.Context, prefix string) error {
	args := m.Called(ctx, prefix)
	return args.Error(0)
}

func (m *MockNotificationService) RequestOpened(ctx context.Context, request *models.Request, requester *models.User) {
	m.Called(ctx, request, requester)
}

func (m *MockNotificationService) RequestResolved(ctx context.Context, request *models.Request, requester *models.User) {
	m.Called(ctx, request, requester)
}

func (m *MockNotificationService) BackfillRequestResolved(ctx context.Context, backfillRequest *models.BackfillRequest, requester *models.User) {
	m.Called(ctx, backfillRequest, requester)
}

func (m *MockNotificationService) LowStockAlert(ctx context.Context, item *models.Item) {
	m.Called(ctx, item)
}

func (m *MockNotificationService) SendReminder(ctx context.Context, reminder *models.LoanReminder, recipients []*models.User) {
	m.Called(ctx, reminder, recipients)
}
