package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"livraria/internal/domains/activity/model"
	"livraria/internal/domains/activity/service"
	"livraria/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{service: s}
}

// Report handles GET /reports/activity
func (h *Handler) Report(c *gin.Context) {
	q, violations := model.ParseReportQuery(c.Request.URL.Query())
	if len(violations) > 0 {
		response.InvalidInput(c, violations)
		return
	}

	report, err := h.service.Report(c.Request.Context(), q)
	if err != nil {
		log.Error().Err(err).Str("request_id", c.GetString("request_id")).Msg("activity report failed")
		response.InternalServerError(c)
		return
	}

	response.Success(c, http.StatusOK, report)
}
