package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nathards133/apiless/internal/apierror"
	"github.com/nathards133/apiless/internal/dto"
	"github.com/nathards133/apiless/internal/repository"
)

type AlertsHandler struct{ repo repository.AlertRepository }

func NewAlertsHandler(repo repository.AlertRepository) *AlertsHandler {
	return &AlertsHandler{repo: repo}
}

// List godoc
// @Summary Lista os alertas de limite de caixa do usuário autenticado
// @Tags alerts
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Máximo de alertas (padrão 50)"
// @Success 200 {array} dto.LimitAlertResponse
// @Router /v1/alerts [get]
func (h *AlertsHandler) List(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit < 1 || limit > 200 {
		limit = 50
	}

	alerts, err := h.repo.ListByOwner(c.Request.Context(), owner, limit)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Erro ao buscar alertas"))
		return
	}

	out := make([]dto.LimitAlertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, dto.LimitAlertResponse{
			ID:         a.ID.String(),
			SessionID:  a.SessionID.String(),
			CashAmount: a.CashAmount,
			CashLimit:  a.CashLimit,
			Message:    a.Message,
			CreatedAt:  a.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}
