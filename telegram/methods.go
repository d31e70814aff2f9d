package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// GetUpdatesParams are getUpdates' request parameters (§4.A).
type GetUpdatesParams struct {
	Offset  int
	Limit   int
	Timeout int
}

// GetUpdates builds the getUpdates method the polling source drives.
func GetUpdates(p GetUpdatesParams) Method[[]tgbotapi.Update] {
	return Method[[]tgbotapi.Update]{
		Name: "getUpdates",
		Encode: func() (map[string]any, error) {
			fields := map[string]any{
				"timeout": p.Timeout,
				"limit":   p.Limit,
			}
			if p.Offset != 0 {
				fields["offset"] = p.Offset
			}
			return fields, nil
		},
		Decode: func(raw json.RawMessage) ([]tgbotapi.Update, error) {
			var updates []tgbotapi.Update
			if err := json.Unmarshal(raw, &updates); err != nil {
				return nil, err
			}
			return updates, nil
		},
	}
}

// SendMessage builds the sendMessage method.
func SendMessage(chatID int64, text string) Method[tgbotapi.Message] {
	return Method[tgbotapi.Message]{
		Name: "sendMessage",
		Encode: func() (map[string]any, error) {
			return map[string]any{
				"chat_id": chatID,
				"text":    text,
			}, nil
		},
		Decode: decodeMessage,
	}
}

// EditMessageText builds the editMessageText method.
func EditMessageText(chatID int64, messageID int, text string) Method[tgbotapi.Message] {
	return Method[tgbotapi.Message]{
		Name: "editMessageText",
		Encode: func() (map[string]any, error) {
			return map[string]any{
				"chat_id":    chatID,
				"message_id": messageID,
				"text":       text,
			}, nil
		},
		Decode: decodeMessage,
	}
}

// AnswerCallbackQuery builds the answerCallbackQuery method.
func AnswerCallbackQuery(callbackQueryID, text string) Method[bool] {
	return Method[bool]{
		Name: "answerCallbackQuery",
		Encode: func() (map[string]any, error) {
			fields := map[string]any{"callback_query_id": callbackQueryID}
			if text != "" {
				fields["text"] = text
			}
			return fields, nil
		},
		Decode: func(raw json.RawMessage) (bool, error) {
			var ok bool
			if err := json.Unmarshal(raw, &ok); err != nil {
				return false, err
			}
			return ok, nil
		},
	}
}

// SendPhoto builds the sendPhoto method, exercising the Upload path: photo
// may be an existing file_id or freshly streamed bytes.
func SendPhoto(chatID int64, caption string, photo Upload) Method[tgbotapi.Message] {
	photo.Field = "photo"
	return Method[tgbotapi.Message]{
		Name: "sendPhoto",
		Encode: func() (map[string]any, error) {
			fields := map[string]any{"chat_id": chatID}
			if caption != "" {
				fields["caption"] = caption
			}
			if photo.isExisting() {
				fields["photo"] = photo.FileID
			}
			return fields, nil
		},
		Uploads: func() ([]Upload, error) {
			if photo.isExisting() {
				return nil, nil
			}
			return []Upload{photo}, nil
		},
		Decode: decodeMessage,
	}
}

func decodeMessage(raw json.RawMessage) (tgbotapi.Message, error) {
	var m tgbotapi.Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("decode message: %w", err)
	}
	return m, nil
}
