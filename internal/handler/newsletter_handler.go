package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/corvidian/backend/internal/db"
	"github.com/corvidian/backend/internal/service"
)

type newsletterPayload struct {
	Subject      string `json:"subject"`
	Body         string `json:"body"`
	HeroImage    string `json:"hero_image"`
	IsActive     *bool  `json:"is_active"`
	ScheduledFor string `json:"scheduled_for"`
}

func (p newsletterPayload) toInput() (service.NewsletterInput, error) {
	input := service.NewsletterInput{
		Subject:   p.Subject,
		Body:      p.Body,
		HeroImage: p.HeroImage,
		IsActive:  true,
	}
	if p.IsActive != nil {
		input.IsActive = *p.IsActive
	}
	if p.ScheduledFor != "" {
		scheduledFor, err := time.Parse(time.RFC3339, p.ScheduledFor)
		if err != nil {
			return input, err
		}
		input.ScheduledFor = &scheduledFor
	}
	return input, nil
}

func (a *API) serializeWelcomeMessage(c *gin.Context, message db.WelcomeMessage) gin.H {
	return gin.H{
		"id":         message.ID,
		"subject":    message.Subject,
		"body":       message.Body,
		"hero_image": a.mediaURL(c, message.HeroImage),
		"is_active":  message.IsActive,
		"created_at": message.CreatedAt,
		"updated_at": message.UpdatedAt,
	}
}

func (a *API) serializeCampaign(c *gin.Context, campaign db.Campaign) gin.H {
	return gin.H{
		"id":            campaign.ID,
		"subject":       campaign.Subject,
		"body":          campaign.Body,
		"hero_image":    a.mediaURL(c, campaign.HeroImage),
		"is_sent":       campaign.IsSent,
		"scheduled_for": campaign.ScheduledFor,
		"sent_at":       campaign.SentAt,
		"created_at":    campaign.CreatedAt,
		"updated_at":    campaign.UpdatedAt,
	}
}

// ListWelcomeMessages 返回欢迎邮件列表。
func (a *API) ListWelcomeMessages(c *gin.Context) {
	messages, err := a.newsletters.ListWelcomeMessages()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list welcome messages")
		return
	}

	items := make([]gin.H, 0, len(messages))
	for _, message := range messages {
		items = append(items, a.serializeWelcomeMessage(c, message))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// GetWelcomeMessage 返回指定欢迎邮件。
func (a *API) GetWelcomeMessage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	message, err := a.newsletters.GetWelcomeMessage(id)
	if err != nil {
		a.respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"welcome_message": a.serializeWelcomeMessage(c, *message)})
}

// CreateWelcomeMessage 创建欢迎邮件。
func (a *API) CreateWelcomeMessage(c *gin.Context) {
	var payload newsletterPayload
	if !bindJSON(c, &payload, "invalid welcome message payload") {
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "scheduled_for must be RFC 3339")
		return
	}

	message, err := a.newsletters.CreateWelcomeMessage(input)
	if err != nil {
		a.respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"welcome_message": a.serializeWelcomeMessage(c, *message)})
}

// UpdateWelcomeMessage 更新欢迎邮件。
func (a *API) UpdateWelcomeMessage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload newsletterPayload
	if !bindJSON(c, &payload, "invalid welcome message payload") {
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "scheduled_for must be RFC 3339")
		return
	}

	message, err := a.newsletters.UpdateWelcomeMessage(id, input)
	if err != nil {
		a.respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"welcome_message": a.serializeWelcomeMessage(c, *message)})
}

// DeleteWelcomeMessage 删除欢迎邮件。
func (a *API) DeleteWelcomeMessage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.newsletters.DeleteWelcomeMessage(id); err != nil {
		a.respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "welcome message deleted"})
}

// TestSendWelcomeMessage 将欢迎邮件发送到当前管理员邮箱。
func (a *API) TestSendWelcomeMessage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	message, err := a.newsletters.GetWelcomeMessage(id)
	if err != nil {
		a.respondNewsletterError(c, err)
		return
	}

	a.testSend(c, service.WelcomeContent(message))
}

// ListCampaigns 返回群发活动列表。
func (a *API) ListCampaigns(c *gin.Context) {
	campaigns, err := a.newsletters.ListCampaigns()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list campaigns")
		return
	}

	items := make([]gin.H, 0, len(campaigns))
	for _, campaign := range campaigns {
		items = append(items, a.serializeCampaign(c, campaign))
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// GetCampaign 返回指定群发活动。
func (a *API) GetCampaign(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := a.newsletters.GetCampaign(id)
	if err != nil {
		a.respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign": a.serializeCampaign(c, *campaign)})
}

// CreateCampaign 创建群发活动。
func (a *API) CreateCampaign(c *gin.Context) {
	var payload newsletterPayload
	if !bindJSON(c, &payload, "invalid campaign payload") {
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "scheduled_for must be RFC 3339")
		return
	}

	campaign, err := a.newsletters.CreateCampaign(input)
	if err != nil {
		a.respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"campaign": a.serializeCampaign(c, *campaign)})
}

// UpdateCampaign 更新群发活动。
func (a *API) UpdateCampaign(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload newsletterPayload
	if !bindJSON(c, &payload, "invalid campaign payload") {
		return
	}

	input, err := payload.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, "scheduled_for must be RFC 3339")
		return
	}

	campaign, err := a.newsletters.UpdateCampaign(id, input)
	if err != nil {
		a.respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign": a.serializeCampaign(c, *campaign)})
}

// DeleteCampaign 删除群发活动。
func (a *API) DeleteCampaign(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.newsletters.DeleteCampaign(id); err != nil {
		a.respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "campaign deleted"})
}

// SendCampaign 向全部订阅者群发活动邮件。
func (a *API) SendCampaign(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	sent, err := a.delivery.SendCampaign(c.Request.Context(), id, requestBaseURL(c))
	if err != nil {
		a.respondNewsletterError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent_count": sent})
}

// TestSendCampaign 将活动邮件发送到当前管理员邮箱。
func (a *API) TestSendCampaign(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := a.newsletters.GetCampaign(id)
	if err != nil {
		a.respondNewsletterError(c, err)
		return
	}

	a.testSend(c, service.CampaignContent(campaign))
}

func (a *API) testSend(c *gin.Context, content service.EmailContent) {
	session := sessions.Default(c)
	adminID, ok := session.Get(sessionUserIDKey).(uint)
	if !ok {
		respondError(c, http.StatusUnauthorized, "authentication required")
		return
	}

	err := a.delivery.SendTest(c.Request.Context(), content, adminID, requestBaseURL(c))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAdminEmailMissing):
			respondError(c, http.StatusBadRequest, "admin account has no email address")
		case errors.Is(err, service.ErrAdminNotFound):
			respondError(c, http.StatusUnauthorized, "authentication required")
		default:
			respondError(c, http.StatusBadGateway, "test send failed")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "test email sent"})
}

func (a *API) respondNewsletterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrWelcomeMessageNotFound):
		respondError(c, http.StatusNotFound, "welcome message not found")
	case errors.Is(err, service.ErrCampaignNotFound):
		respondError(c, http.StatusNotFound, "campaign not found")
	case errors.Is(err, service.ErrSubjectRequired):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "failed to save newsletter content")
	}
}
