package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Update aliases the same underlying type the root canoe package uses, so
// values produced by a telegram update source pass straight into
// canoe.Stream implementations without conversion.
type Update = tgbotapi.Update
