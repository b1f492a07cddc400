package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathards133/apiless/internal/middleware"
	"github.com/nathards133/apiless/internal/model"
	"github.com/nathards133/apiless/internal/service"
)

// stubRegisterService lets each test pin the service outcome it wants.
type stubRegisterService struct {
	openFn     func(ctx context.Context, ownerID uuid.UUID, initialAmount decimal.Decimal, cashLimit *decimal.Decimal) (*model.RegisterSession, error)
	statusFn   func(ctx context.Context, ownerID uuid.UUID) (*model.RegisterSession, error)
	withdrawFn func(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal, reason string) (decimal.Decimal, error)
	saleFn     func(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal, paymentMethod string, reference *uuid.UUID) error
	closeFn    func(ctx context.Context, ownerID uuid.UUID, counted model.MethodAmounts, observation *string) (*model.ClosingSummary, error)
	listFn     func(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]model.RegisterSession, error)
}

func (s *stubRegisterService) Open(ctx context.Context, ownerID uuid.UUID, initialAmount decimal.Decimal, cashLimit *decimal.Decimal) (*model.RegisterSession, error) {
	return s.openFn(ctx, ownerID, initialAmount, cashLimit)
}

func (s *stubRegisterService) Status(ctx context.Context, ownerID uuid.UUID) (*model.RegisterSession, error) {
	return s.statusFn(ctx, ownerID)
}

func (s *stubRegisterService) Withdraw(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	return s.withdrawFn(ctx, ownerID, amount, reason)
}

func (s *stubRegisterService) RecordSale(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal, paymentMethod string, reference *uuid.UUID) error {
	return s.saleFn(ctx, ownerID, amount, paymentMethod, reference)
}

func (s *stubRegisterService) Close(ctx context.Context, ownerID uuid.UUID, counted model.MethodAmounts, observation *string) (*model.ClosingSummary, error) {
	return s.closeFn(ctx, ownerID, counted, observation)
}

func (s *stubRegisterService) ListForDay(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]model.RegisterSession, error) {
	return s.listFn(ctx, ownerID, day)
}

var _ service.RegisterService = (*stubRegisterService)(nil)

func newTestRouter(svc service.RegisterService, ownerID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &middleware.JWTClaims{
			UserID:   ownerID,
			Username: "operador",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
	})

	h := NewRegisterHandler(svc)
	r.POST("/v1/register/open", h.Open)
	r.POST("/v1/register/withdrawal", h.Withdraw)
	r.POST("/v1/register/sale", h.RecordSale)
	r.POST("/v1/register/close", h.Close)
	r.GET("/v1/register/status", h.Status)
	r.GET("/v1/register/daily", h.Daily)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOpenEndpointCreated(t *testing.T) {
	owner := uuid.New()
	svc := &stubRegisterService{
		openFn: func(_ context.Context, gotOwner uuid.UUID, initialAmount decimal.Decimal, cashLimit *decimal.Decimal) (*model.RegisterSession, error) {
			assert.Equal(t, owner, gotOwner)
			assert.Equal(t, "150.5", initialAmount.String())
			require.NotNil(t, cashLimit)
			assert.Equal(t, "500", cashLimit.String())
			return &model.RegisterSession{
				ID:            uuid.New(),
				OwnerID:       gotOwner,
				InitialAmount: initialAmount,
				CurrentAmount: initialAmount,
				CashLimit:     cashLimit,
				Status:        model.StatusOpen,
				OpenedAt:      time.Now().UTC(),
			}, nil
		},
	}
	r := newTestRouter(svc, owner.String())

	w := doJSON(t, r, http.MethodPost, "/v1/register/open", `{"initialAmount": "150,50", "cashLimit": 500}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "open", resp["status"])
	assert.Equal(t, owner.String(), resp["ownerId"])
}

func TestOpenEndpointConflict(t *testing.T) {
	svc := &stubRegisterService{
		openFn: func(_ context.Context, _ uuid.UUID, _ decimal.Decimal, _ *decimal.Decimal) (*model.RegisterSession, error) {
			return nil, service.ErrRegisterAlreadyOpen
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/v1/register/open", `{"initialAmount": 100}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Já existe um caixa aberto")
}

func TestOpenEndpointRejectsMissingAmount(t *testing.T) {
	svc := &stubRegisterService{
		openFn: func(_ context.Context, _ uuid.UUID, _ decimal.Decimal, _ *decimal.Decimal) (*model.RegisterSession, error) {
			t.Fatal("service must not be called on invalid payload")
			return nil, nil
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/v1/register/open", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestWithdrawEndpoint(t *testing.T) {
	svc := &stubRegisterService{
		withdrawFn: func(_ context.Context, _ uuid.UUID, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
			assert.Equal(t, "50", amount.String())
			assert.Equal(t, "sangria de rotina", reason)
			return decimal.NewFromInt(130), nil
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/v1/register/withdrawal", `{"amount": 50, "reason": "sangria de rotina"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"currentAmount":"130"`)
	assert.Contains(t, w.Body.String(), "Sangria realizada com sucesso")
}

func TestWithdrawEndpointInsufficientFunds(t *testing.T) {
	svc := &stubRegisterService{
		withdrawFn: func(_ context.Context, _ uuid.UUID, _ decimal.Decimal, _ string) (decimal.Decimal, error) {
			return decimal.Zero, service.ErrInsufficientFunds
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/v1/register/withdrawal", `{"amount": 9999, "reason": "teste"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Saldo insuficiente")
}

func TestSaleEndpointRejectsUnknownMethod(t *testing.T) {
	svc := &stubRegisterService{
		saleFn: func(_ context.Context, _ uuid.UUID, _ decimal.Decimal, _ string, _ *uuid.UUID) error {
			t.Fatal("service must not be called on invalid payload")
			return nil
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/v1/register/sale", `{"amount": 10, "paymentMethod": "cheque"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSaleEndpointPassesReference(t *testing.T) {
	ref := uuid.New()
	svc := &stubRegisterService{
		saleFn: func(_ context.Context, _ uuid.UUID, amount decimal.Decimal, method string, reference *uuid.UUID) error {
			assert.Equal(t, "80", amount.String())
			assert.Equal(t, model.MethodPix, method)
			require.NotNil(t, reference)
			assert.Equal(t, ref, *reference)
			return nil
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/v1/register/sale",
		`{"amount": 80, "paymentMethod": "pix", "reference": "`+ref.String()+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCloseEndpointNotFound(t *testing.T) {
	svc := &stubRegisterService{
		closeFn: func(_ context.Context, _ uuid.UUID, _ model.MethodAmounts, _ *string) (*model.ClosingSummary, error) {
			return nil, service.ErrNoOpenRegister
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/v1/register/close", `{"values": {"cash": 100}}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Nenhum caixa aberto encontrado")
}

func TestCloseEndpointReturnsSummary(t *testing.T) {
	svc := &stubRegisterService{
		closeFn: func(_ context.Context, _ uuid.UUID, counted model.MethodAmounts, observation *string) (*model.ClosingSummary, error) {
			assert.Equal(t, "125", counted.Get(model.MethodCash).String())
			require.NotNil(t, observation)
			assert.Equal(t, "conferência", *observation)
			return &model.ClosingSummary{
				InitialAmount:   decimal.NewFromInt(100),
				TotalSales:      decimal.NewFromInt(80),
				ExpectedBalance: model.MethodAmounts{model.MethodCash: decimal.NewFromInt(130)},
				FinalAmounts:    counted,
				Differences:     model.MethodAmounts{model.MethodCash: decimal.NewFromInt(-5)},
			}, nil
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodPost, "/v1/register/close",
		`{"values": {"cash": "125,00"}, "observation": "conferência"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Caixa fechado com sucesso")
	assert.Contains(t, w.Body.String(), `"differences"`)
}

func TestStatusEndpointWhenClosed(t *testing.T) {
	svc := &stubRegisterService{
		statusFn: func(_ context.Context, _ uuid.UUID) (*model.RegisterSession, error) {
			return nil, nil
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodGet, "/v1/register/status", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		IsOpen bool            `json:"isOpen"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.IsOpen)
	assert.Equal(t, "null", string(resp.Data))
}

func TestDailyEndpointParsesDate(t *testing.T) {
	var gotDay time.Time
	svc := &stubRegisterService{
		listFn: func(_ context.Context, _ uuid.UUID, day time.Time) ([]model.RegisterSession, error) {
			gotDay = day
			return nil, nil
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodGet, "/v1/register/daily?date=2026-08-30", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2026, gotDay.Year())
	assert.Equal(t, time.August, gotDay.Month())
	assert.Equal(t, 30, gotDay.Day())
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestDailyEndpointRejectsBadDate(t *testing.T) {
	svc := &stubRegisterService{
		listFn: func(_ context.Context, _ uuid.UUID, _ time.Time) ([]model.RegisterSession, error) {
			t.Fatal("service must not be called on invalid date")
			return nil, nil
		},
	}
	r := newTestRouter(svc, uuid.NewString())

	w := doJSON(t, r, http.MethodGet, "/v1/register/daily?date=30-08-2026", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvalidOwnerClaimIsUnauthorized(t *testing.T) {
	svc := &stubRegisterService{
		statusFn: func(_ context.Context, _ uuid.UUID) (*model.RegisterSession, error) {
			t.Fatal("service must not be called without a valid owner id")
			return nil, nil
		},
	}
	r := newTestRouter(svc, "not-a-uuid")

	w := doJSON(t, r, http.MethodGet, "/v1/register/status", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
