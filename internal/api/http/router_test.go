package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/auth"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/domain"
	"github.com/spec-kit/commerce-service/internal/observability"
	"github.com/spec-kit/commerce-service/internal/repository"
	"github.com/spec-kit/commerce-service/internal/service"
)

// memTxnRepo is a minimal in-memory ledger store; when fail is set every
// operation reports a storage error.
type memTxnRepo struct {
	fail bool
	rows map[string]*domain.Transaction
}

func newMemTxnRepo() *memTxnRepo {
	return &memTxnRepo{rows: make(map[string]*domain.Transaction)}
}

var errStorage = errors.New("storage unavailable")

func (m *memTxnRepo) Insert(_ context.Context, txn *domain.Transaction) error {
	if m.fail {
		return errStorage
	}
	txn.ID = txn.TransactionID
	txn.CreatedAt = time.Now()
	m.rows[txn.ID] = txn
	return nil
}

func (m *memTxnRepo) GetByID(_ context.Context, id string) (*domain.Transaction, error) {
	if m.fail {
		return nil, errStorage
	}
	txn, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return txn, nil
}

func (m *memTxnRepo) GetByExternalID(_ context.Context, externalID string) (*domain.Transaction, error) {
	if m.fail {
		return nil, errStorage
	}
	for _, txn := range m.rows {
		if txn.TransactionID == externalID {
			return txn, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memTxnRepo) AppendStatus(_ context.Context, id string, entry domain.StatusEntry[domain.TransactionStatus]) (*domain.Transaction, error) {
	if m.fail {
		return nil, errStorage
	}
	txn, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	txn.Status = entry.Status
	txn.StatusHistory = append(txn.StatusHistory, entry)
	return txn, nil
}

func (m *memTxnRepo) AppendShipping(_ context.Context, id string, status *domain.ShippingStatus, trackingNumber *string, entry domain.StatusEntry[domain.ShippingStatus]) (*domain.Transaction, error) {
	if m.fail {
		return nil, errStorage
	}
	txn, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if status != nil {
		txn.ShippingStatus = status
	}
	if trackingNumber != nil {
		txn.TrackingNumber = trackingNumber
	}
	txn.ShippingHistory = append(txn.ShippingHistory, entry)
	return txn, nil
}

func (m *memTxnRepo) UpdateNotes(_ context.Context, id, notes string) (*domain.Transaction, error) {
	if m.fail {
		return nil, errStorage
	}
	txn, ok := m.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	txn.Notes = &notes
	return txn, nil
}

func (m *memTxnRepo) List(context.Context, repository.TransactionFilter) ([]domain.Transaction, error) {
	if m.fail {
		return nil, errStorage
	}
	var result []domain.Transaction
	for _, txn := range m.rows {
		result = append(result, *txn)
	}
	return result, nil
}

func (m *memTxnRepo) Count(context.Context, repository.TransactionFilter) (int64, error) {
	if m.fail {
		return 0, errStorage
	}
	return int64(len(m.rows)), nil
}

func (m *memTxnRepo) TallyByStatus(context.Context, *time.Time, *time.Time) ([]repository.StatusTally, error) {
	if m.fail {
		return nil, errStorage
	}
	return nil, nil
}

// memUserRepo holds fixed users for middleware tests.
type memUserRepo struct {
	users map[string]*domain.User
}

func (m *memUserRepo) Create(context.Context, *domain.User) error { return nil }

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (m *memUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	var result []domain.User
	for _, user := range m.users {
		result = append(result, *user)
	}
	return result, nil
}

func (m *memUserRepo) UpdateProfile(context.Context, *domain.User) error { return nil }

func (m *memUserRepo) UpdateRole(context.Context, string, domain.Role) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) SetPassword(context.Context, string, string) error { return nil }

func (m *memUserRepo) SetResetToken(context.Context, string, string, time.Time) error { return nil }

func (m *memUserRepo) GetByResetToken(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) ResetPassword(context.Context, string, string) error { return nil }

type testEnv struct {
	app    *fiber.App
	txns   *memTxnRepo
	tokens *auth.TokenManager
	users  *memUserRepo
}

func buildTestApp(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()

	txnRepo := newMemTxnRepo()
	userRepo := &memUserRepo{users: map[string]*domain.User{
		"u-user":  {ID: "u-user", Email: "user@example.com", Role: domain.RoleUser},
		"u-admin": {ID: "u-admin", Email: "admin@example.com", Role: domain.RoleAdmin},
	}}

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:  "test-secret",
		BcryptCost: 4,
	}, service.AuthDependencies{
		UserRepo: userRepo,
		Mailer:   service.NewLogMailer(logger, config.MailConfig{}),
		Logger:   logger,
	})
	ledger := service.NewLedgerService(txnRepo, nil, nil, logger)

	app := fiber.New()
	RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("test", "test", nil, nil),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(authService),
		Products:       handlers.NewProductsHandler(service.NewCatalogService(nil, nil, logger)),
		Settings:       handlers.NewSettingsHandler(nil),
		Payments:       handlers.NewPaymentsHandler(ledger, logger),
		Transactions:   handlers.NewTransactionsHandler(ledger),
		Uploads:        handlers.NewUploadsHandler(config.UploadConfig{Dir: t.TempDir(), MaxSizeBytes: 1024}, logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), userRepo),
	})

	return &testEnv{app: app, txns: txnRepo, tokens: authService.TokenManager(), users: userRepo}
}

func (e *testEnv) tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := e.tokens.GenerateToken(e.users.users[userID])
	require.NoError(t, err)
	return token
}

func postJSON(t *testing.T, path string, payload any) *http.Request {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestWebhookCreatesTransaction(t *testing.T) {
	env := buildTestApp(t)

	req := postJSON(t, "/payments/webhook", map[string]any{
		"transaction_id": "P1",
		"status":         "approved",
		"items": []map[string]any{
			{"title": "A", "unit_price": 10, "quantity": 2},
		},
	})
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := env.txns.GetByExternalID(context.Background(), "P1")
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusApproved, stored.Status)
	assert.Equal(t, 20.0, stored.Amount)
}

func TestWebhookReturns200OnStorageFailure(t *testing.T) {
	env := buildTestApp(t)
	env.txns.fail = true

	req := postJSON(t, "/payments/webhook", map[string]any{
		"transaction_id": "P2",
		"status":         "approved",
	})
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestWebhookReturns200OnGarbageBody(t *testing.T) {
	env := buildTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStaffRoutesRequireRole(t *testing.T) {
	env := buildTestApp(t)

	// No token.
	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Plain user token.
	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, "u-user"))
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Admin token.
	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, "u-admin"))
	resp, err = env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMyOrdersRequiresOnlyBearer(t *testing.T) {
	env := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/transactions/my-orders", nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, "u-user"))
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestTransactionListIsStaffOnly(t *testing.T) {
	env := buildTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+env.tokenFor(t, "u-user"))
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequestTimeoutReachesHandlerContext(t *testing.T) {
	app := fiber.New()
	RegisterMiddlewares(app, zap.NewNop(), observability.NewMetrics(), 5*time.Second)
	app.Get("/deadline-check", func(c *fiber.Ctx) error {
		deadline, ok := c.UserContext().Deadline()
		if !ok {
			return c.SendStatus(http.StatusInternalServerError)
		}
		if time.Until(deadline) > 5*time.Second {
			return c.SendStatus(http.StatusInternalServerError)
		}
		return c.SendStatus(http.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/deadline-check", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorEnvelopeShape(t *testing.T) {
	env := buildTestApp(t)

	req := postJSON(t, "/auth/register", map[string]any{"email": "", "password": ""})
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_FAILED", body.Error.Code)
	assert.NotEmpty(t, body.Error.Message)
}
