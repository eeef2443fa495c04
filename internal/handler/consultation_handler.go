package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/corvidian/backend/internal/service"
)

type consultationPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Company  string `json:"company"`
	Question string `json:"question"`
}

// SubmitConsultation 接收咨询表单，保存线索并通知运营邮箱。
// When a WhatsApp number is configured the response also carries a
// pre-filled chat link so the frontend can offer a direct follow-up.
func (a *API) SubmitConsultation(c *gin.Context) {
	var payload consultationPayload
	if !bindJSON(c, &payload, "invalid consultation payload") {
		return
	}

	lead, err := a.leads.Create(service.LeadInput{
		Name:     payload.Name,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Company:  payload.Company,
		Question: payload.Question,
	})
	if err != nil {
		var validation *service.ValidationError
		if errors.As(err, &validation) {
			respondError(c, http.StatusBadRequest, validation.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to save consultation")
		return
	}

	a.delivery.QueueLeadNotification(lead)

	response := gin.H{"message": "consultation received"}
	if a.whatsAppNumber != "" {
		prefill := fmt.Sprintf("Hi, I am %s from %s. %s", lead.Name, lead.Company, lead.Question)
		response["whatsapp_url"] = fmt.Sprintf("https://wa.me/%s?text=%s", a.whatsAppNumber, url.QueryEscape(prefill))
	}

	c.JSON(http.StatusCreated, response)
}

// ListConsultations 返回后台咨询线索列表，按时间倒序。
func (a *API) ListConsultations(c *gin.Context) {
	leads, err := a.leads.List()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list consultations")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": leads, "total": len(leads)})
}
