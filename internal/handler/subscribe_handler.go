package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corvidian/backend/internal/service"
)

type subscribePayload struct {
	Email  string `json:"email"`
	Source string `json:"source"`
}

// Subscribe 订阅邮件列表。重复订阅幂等返回 created=false。
// Only a first-time subscription triggers the welcome email and the
// operator notification.
func (a *API) Subscribe(c *gin.Context) {
	var payload subscribePayload
	if !bindJSON(c, &payload, "invalid subscribe payload") {
		return
	}

	subscriber, created, err := a.subscribers.Subscribe(payload.Email, payload.Source)
	if err != nil {
		var validation *service.ValidationError
		if errors.As(err, &validation) {
			respondError(c, http.StatusBadRequest, validation.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to subscribe")
		return
	}

	if created {
		a.delivery.QueueWelcome(subscriber.Email, requestBaseURL(c))
		a.delivery.QueueSubscriberNotification(subscriber)
	}

	c.JSON(http.StatusOK, gin.H{"created": created})
}

// ListSubscribers 返回后台订阅者邮箱列表。
func (a *API) ListSubscribers(c *gin.Context) {
	emails, err := a.subscribers.ListEmails()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list subscribers")
		return
	}

	total, err := a.subscribers.Count()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to list subscribers")
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": emails, "total": total})
}
