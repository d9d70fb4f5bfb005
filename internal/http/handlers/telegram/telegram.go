package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"remindbot/internal/core/domain/chat"
	e "remindbot/internal/core/domain/errors"
	"remindbot/internal/core/domain/logging"
	"remindbot/internal/core/services"
	handlechatmessage "remindbot/internal/core/services/handle_chat_message"
	"remindbot/internal/http/handlers/response"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	log     logging.Logger
	secret  string
	service services.Service[handlechatmessage.Input, handlechatmessage.Result]
	sender  chat.Sender
}

func New(
	log logging.Logger,
	secret string,
	service services.Service[handlechatmessage.Input, handlechatmessage.Result],
	sender chat.Sender,
) *Handler {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if secret == "" {
		panic(e.NewInvalidStateError("webhook secret must not be empty"))
	}
	if service == nil {
		panic(e.NewNilArgumentError("service"))
	}
	if sender == nil {
		panic(e.NewNilArgumentError("sender"))
	}
	return &Handler{
		log:     log,
		secret:  secret,
		service: service,
		sender:  sender,
	}
}

type user struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
}

type chatInfo struct {
	ID int64 `json:"id"`
}

type message struct {
	ID   int64    `json:"message_id"`
	From *user    `json:"from"`
	Chat chatInfo `json:"chat"`
	Date int64    `json:"date"`
	Text string   `json:"text"`
}

type update struct {
	ID      int64    `json:"update_id"`
	Message *message `json:"message"`
}

func (u *update) FromJSON(r io.Reader) error {
	e := json.NewDecoder(r)
	return e.Decode(u)
}

func (h *Handler) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "secret")
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) != 1 {
		response.RenderNotFound(rw)
		return
	}

	// Telegram retries every update that is not answered with 200.
	defer response.Render(rw, struct{}{}, http.StatusOK)

	update := update{}
	if err := update.FromJSON(r.Body); err != nil {
		h.log.Error(
			r.Context(),
			"Could not decode Telegram update.",
			logging.Entry("err", err),
		)
		return
	}

	input, ok := parseInput(update)
	if !ok {
		h.log.Info(
			r.Context(),
			"Skip Telegram update.",
			logging.Entry("updateID", update.ID),
		)
		return
	}
	h.log.Info(
		r.Context(),
		"Got Telegram update.",
		logging.Entry("updateID", update.ID),
		logging.Entry("userID", input.UserID),
		logging.Entry("channelID", input.ChannelID),
	)

	result, err := h.service.Run(r.Context(), input)
	if err != nil {
		h.log.Warning(
			r.Context(),
			"Chat message handled with error.",
			logging.Entry("updateID", update.ID),
			logging.Entry("err", err),
		)
	}
	for _, reply := range result.Replies {
		h.sendReply(r.Context(), input.ChannelID, reply)
	}
}

func (h *Handler) sendReply(ctx context.Context, channelID chat.ChannelID, text string) {
	err := h.sender.SendMessage(ctx, chat.Message{ChannelID: channelID, Text: text})
	if err != nil {
		h.log.Error(
			ctx,
			"Could not send Telegram reply due to unexpected error.",
			logging.Entry("channelID", channelID),
			logging.Entry("err", err),
		)
		return
	}
	h.log.Info(
		ctx,
		"Telegram reply successfully sent.",
		logging.Entry("channelID", channelID),
	)
}

func parseInput(u update) (input handlechatmessage.Input, ok bool) {
	if u.Message == nil || u.Message.From == nil || u.Message.From.IsBot {
		return input, false
	}
	if u.Message.Text == "" {
		return input, false
	}

	userName := u.Message.From.Username
	if userName == "" {
		userName = u.Message.From.FirstName
	}
	return handlechatmessage.Input{
		UserID:    chat.UserID(strconv.FormatInt(u.Message.From.ID, 10)),
		UserName:  userName,
		ChannelID: chat.ChannelID(strconv.FormatInt(u.Message.Chat.ID, 10)),
		Text:      u.Message.Text,
	}, true
}
