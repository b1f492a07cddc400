package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nathards133/apiless/internal/apierror"
	"github.com/nathards133/apiless/internal/dto"
	"github.com/nathards133/apiless/internal/middleware"
	"github.com/nathards133/apiless/internal/service"
)

type RegisterHandler struct{ svc service.RegisterService }

func NewRegisterHandler(svc service.RegisterService) *RegisterHandler {
	return &RegisterHandler{svc: svc}
}

// ownerID resolves the authenticated owner from the JWT claims.
func ownerID(c *gin.Context) (uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, apierror.New("Identificador de usuário inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// Open godoc
// @Summary Abre um novo caixa para o usuário autenticado
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.OpenRegisterRequest true "Dados de abertura"
// @Success 201 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/register/open [post]
func (h *RegisterHandler) Open(c *gin.Context) {
	var req dto.OpenRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var cashLimit *decimal.Decimal
	if req.CashLimit != nil {
		cashLimit = &req.CashLimit.Decimal
	}
	session, err := h.svc.Open(c.Request.Context(), owner, req.InitialAmount.Decimal, cashLimit)
	if err != nil {
		if isDomainErr(err) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao abrir caixa"))
		return
	}
	c.JSON(http.StatusCreated, dto.NewSessionResponse(session))
}

// Withdraw godoc
// @Summary Realiza uma sangria no caixa aberto
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.WithdrawalRequest true "Dados da sangria"
// @Success 200 {object} dto.WithdrawalResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/register/withdrawal [post]
func (h *RegisterHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawalRequest
	if !bindAndValidate(c, &req) {
		return
	}
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	current, err := h.svc.Withdraw(c.Request.Context(), owner, req.Amount.Decimal, req.Reason)
	if err != nil {
		if isDomainErr(err) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao realizar sangria"))
		return
	}
	c.JSON(http.StatusOK, dto.WithdrawalResponse{
		Message:       "Sangria realizada com sucesso",
		CurrentAmount: current,
	})
}

// RecordSale godoc
// @Summary Registra uma venda concluída no caixa aberto
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.RecordSaleRequest true "Dados da venda"
// @Success 200 {object} dto.SessionResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/register/sale [post]
func (h *RegisterHandler) RecordSale(c *gin.Context) {
	var req dto.RecordSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	var reference *uuid.UUID
	if req.Reference != nil {
		if id, err := uuid.Parse(*req.Reference); err == nil {
			reference = &id
		}
	}

	err := h.svc.RecordSale(c.Request.Context(), owner, req.Amount.Decimal, req.PaymentMethod, reference)
	if err != nil {
		if isDomainErr(err) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao registrar venda"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Venda registrada no caixa"})
}

// Close godoc
// @Summary Fecha o caixa aberto e executa a conferência
// @Tags register
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CloseRegisterRequest true "Valores contados por método"
// @Success 200 {object} dto.CloseRegisterResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/register/close [post]
func (h *RegisterHandler) Close(c *gin.Context) {
	var req dto.CloseRegisterRequest
	if !bindAndValidate(c, &req) {
		return
	}
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	summary, err := h.svc.Close(c.Request.Context(), owner, req.CountedAmounts(), req.Observation)
	if err != nil {
		if errors.Is(err, service.ErrNoOpenRegister) {
			c.JSON(http.StatusNotFound, apierror.New("Nenhum caixa aberto encontrado"))
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao fechar caixa"))
		return
	}
	c.JSON(http.StatusOK, dto.CloseRegisterResponse{
		Message: "Caixa fechado com sucesso",
		Summary: summary,
	})
}

// Status godoc
// @Summary Consulta o status do caixa do usuário autenticado
// @Tags register
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.StatusResponse
// @Router /v1/register/status [get]
func (h *RegisterHandler) Status(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	session, err := h.svc.Status(c.Request.Context(), owner)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao verificar status do caixa"))
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{
		IsOpen: session != nil,
		Data:   dto.NewSessionResponse(session),
	})
}

// Daily godoc
// @Summary Lista os caixas do dia, mais recentes primeiro
// @Tags register
// @Produce json
// @Security BearerAuth
// @Param date query string false "Dia no formato YYYY-MM-DD (padrão: hoje)"
// @Success 200 {array} dto.SessionResponse
// @Router /v1/register/daily [get]
func (h *RegisterHandler) Daily(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	day := time.Now()
	if raw := c.Query("date"); raw != "" {
		parsed, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Data inválida, use o formato YYYY-MM-DD"))
			return
		}
		day = parsed
	}

	sessions, err := h.svc.ListForDay(c.Request.Context(), owner, day)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao buscar caixas do dia"))
		return
	}
	out := make([]*dto.SessionResponse, 0, len(sessions))
	for i := range sessions {
		out = append(out, dto.NewSessionResponse(&sessions[i]))
	}
	c.JSON(http.StatusOK, out)
}

// isDomainErr reports whether err is a recoverable validation failure that is
// safe to surface to the caller verbatim.
func isDomainErr(err error) bool {
	for _, domain := range []error{
		service.ErrRegisterAlreadyOpen,
		service.ErrNoOpenRegister,
		service.ErrSaleWithoutRegister,
		service.ErrInsufficientFunds,
		service.ErrInvalidAmount,
		service.ErrInvalidInitialAmount,
		service.ErrInvalidCashLimit,
		service.ErrInvalidPaymentMethod,
	} {
		if errors.Is(err, domain) {
			return true
		}
	}
	return false
}
