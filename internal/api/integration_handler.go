package api

import (
	"alcyxob/getsfit/internal/clients/calcom"
	"alcyxob/getsfit/internal/clients/telegram"
	"alcyxob/getsfit/internal/service"
	"crypto/subtle"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const maxWebhookBody = 1 << 20

// IntegrationHandler serves the Telegram, Fitbit and Cal.com glue.
type IntegrationHandler struct {
	botService      service.BotService
	fitbitService   service.FitbitService
	calendarService service.CalendarService
	appURL          string
	telegramSecret  string
}

func NewIntegrationHandler(bot service.BotService, fitbit service.FitbitService, calendar service.CalendarService, appURL, telegramSecret string) *IntegrationHandler {
	return &IntegrationHandler{
		botService:      bot,
		fitbitService:   fitbit,
		calendarService: calendar,
		appURL:          strings.TrimRight(appURL, "/"),
		telegramSecret:  telegramSecret,
	}
}

type LinkCodeResponse struct {
	Code string `json:"code"`
}

type AuthURLResponse struct {
	URL string `json:"url"`
}

type SyncResponse struct {
	Synced bool `json:"synced"`
}

// TelegramLinkCode godoc
// @Summary Generate a Telegram link code
// @Description The user sends /link CODE to the bot to connect the chat.
// @Tags Integrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} LinkCodeResponse
// @Router /telegram/link-code [post]
func (h *IntegrationHandler) TelegramLinkCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	code, err := h.botService.GenerateLinkCode(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, LinkCodeResponse{Code: code})
}

// TelegramWebhook godoc
// @Summary Telegram bot webhook
// @Description Receives bot updates. Command failures are logged and still
// @Description acknowledged so Telegram does not redeliver them.
// @Tags Integrations
// @Accept json
// @Produce json
// @Param secret query string false "Webhook secret"
// @Success 200 {object} gin.H
// @Failure 400 {object} gin.H "Malformed update"
// @Failure 401 {object} gin.H "Wrong secret"
// @Router /telegram/webhook [post]
func (h *IntegrationHandler) TelegramWebhook(c *gin.Context) {
	if h.telegramSecret != "" && subtle.ConstantTimeCompare([]byte(c.Query("secret")), []byte(h.telegramSecret)) != 1 {
		abortWithError(c, http.StatusUnauthorized, "Invalid webhook secret")
		return
	}
	msg, ok, err := telegram.ParseUpdate(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	if ok && msg.Text != "" {
		if err := h.botService.HandleMessage(c.Request.Context(), msg.ChatID, msg.Text); err != nil {
			log.WithError(err).WithField("chatId", msg.ChatID).Error("bot command failed")
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// FitbitAuthURL godoc
// @Summary Start Fitbit linking
// @Tags Integrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AuthURLResponse
// @Failure 503 {object} gin.H "Fitbit not configured"
// @Router /fitbit/auth [get]
func (h *IntegrationHandler) FitbitAuthURL(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	u, err := h.fitbitService.AuthURL(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, AuthURLResponse{URL: u})
}

// FitbitCallback godoc
// @Summary Fitbit OAuth redirect target
// @Description Stores the tokens and sends the browser back to the settings page.
// @Tags Integrations
// @Param code query string true "Authorization code"
// @Param state query string true "Signed state from /fitbit/auth"
// @Success 302
// @Router /fitbit/callback [get]
func (h *IntegrationHandler) FitbitCallback(c *gin.Context) {
	if e := c.Query("error"); e != "" {
		c.Redirect(http.StatusFound, h.appURL+"/settings?fitbit=denied")
		return
	}
	userID, err := h.fitbitService.Connect(c.Request.Context(), c.Query("state"), c.Query("code"))
	if err != nil {
		log.WithError(err).Warn("fitbit callback failed")
		c.Redirect(http.StatusFound, h.appURL+"/settings?fitbit=error")
		return
	}
	log.WithField("userId", userID.Hex()).Debug("fitbit callback completed")
	c.Redirect(http.StatusFound, h.appURL+"/settings?fitbit=connected")
}

// FitbitSync godoc
// @Summary Sync yesterday's Fitbit data now
// @Tags Integrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SyncResponse
// @Failure 409 {object} gin.H "Fitbit not linked"
// @Router /fitbit/sync [post]
func (h *IntegrationHandler) FitbitSync(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	synced, err := h.fitbitService.SyncYesterday(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SyncResponse{Synced: synced})
}

// CalcomWebhook godoc
// @Summary Cal.com webhook
// @Description Verifies the HMAC signature; a cancelled workout booking triggers a rebook reminder.
// @Tags Integrations
// @Accept json
// @Produce json
// @Success 200 {object} gin.H
// @Failure 401 {object} gin.H "Invalid signature"
// @Router /calcom/webhook [post]
func (h *IntegrationHandler) CalcomWebhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read body")
		return
	}
	if err := h.calendarService.HandleWebhook(c.Request.Context(), body, c.GetHeader(calcom.SignatureHeader)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

// ScheduleWeek godoc
// @Summary Book this week's workout slots
// @Tags Integrations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ScheduleResult
// @Failure 503 {object} gin.H "Cal.com not configured"
// @Router /calcom/schedule-week [post]
func (h *IntegrationHandler) ScheduleWeek(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	res, err := h.calendarService.ScheduleWeek(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
