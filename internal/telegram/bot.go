package telegram

import (
	"encoding/json"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

type Bot struct {
	api *tgbotapi.BotAPI
	h   *Handlers
}

// NewBot connects to the Bot API, registers the webhook and wires the handlers.
// d.API is filled in with the connected client.
func NewBot(token, webhookURL string, d Deps) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	// set webhook
	webhook, err := tgbotapi.NewWebhook(webhookURL)
	if err != nil {
		return nil, err
	}
	if _, err := api.Request(webhook); err != nil {
		return nil, err
	}
	log.Info().Str("component", "telegram").Str("webhook", webhookURL).Str("bot", api.Self.UserName).Msg("webhook set")

	d.API = api
	return &Bot{api: api, h: NewHandlers(d)}, nil
}

// Webhook HTTP handler (registered at /telegram/webhook)
func (b *Bot) WebhookHandler(w http.ResponseWriter, r *http.Request) {
	webhookHandler(b.h)(w, r)
}

func webhookHandler(h *Handlers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		if update.Message == nil {
			log.Debug().Str("component", "telegram").Int("update_id", update.UpdateID).Msg("non-message update received")
			w.WriteHeader(http.StatusOK)
			return
		}
		log.Debug().
			Str("component", "telegram").
			Int64("chat_id", update.Message.Chat.ID).
			Str("text", update.Message.Text).
			Msg("webhook message")
		go h.HandleMessage(update.Message)
		w.WriteHeader(http.StatusOK)
	}
}
