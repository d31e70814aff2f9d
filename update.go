// Package canoe is a compositional library for building interactive chat
// bots against a hosted messaging-bot HTTP API. It treats the API as an
// opaque external service (see the telegram package for a concrete binding)
// and focuses on the scenario engine: composable, suspendable descriptions
// of multi-step per-chat conversations, run concurrently across many chats
// against a single shared update stream.
package canoe

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Update is one externally delivered event: a received or edited message, a
// channel post, a callback query, an inline query, a poll update, or one of
// the other variants the Bot API defines. canoe treats it as opaque except
// through the classifier pipes in pipes.go and the Expect predicates user
// code builds on top of them.
type Update = tgbotapi.Update

// Message is an opaque chat message. The runtime only interprets chat.id
// and from.id; of the content, only the Text and Command expectations read
// the message text.
type Message = tgbotapi.Message

// Chat identifies the conversation a message belongs to.
type Chat = tgbotapi.Chat

// User identifies a message's sender.
type User = tgbotapi.User

// CallbackQuery is an inline keyboard button press.
type CallbackQuery = tgbotapi.CallbackQuery

// ChatIDOf returns the chat a message belongs to, or 0 if m is nil.
func ChatIDOf(m *Message) int64 {
	if m == nil {
		return 0
	}
	return m.Chat.ID
}

// SenderIDOf returns the user id that sent m, or 0 if unknown.
func SenderIDOf(m *Message) int64 {
	if m == nil || m.From == nil {
		return 0
	}
	return m.From.ID
}
