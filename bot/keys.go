package bot

import (
	"strconv"

	"github.com/jacke/canoe"
)

// keyFor derives the identity a chatRegistry partitions live instances by.
// Most update kinds carry a chat; the handful that don't (inline queries,
// chosen inline results, shipping/pre-checkout queries) are partitioned by
// the user who triggered them instead. Polls carry neither and fall back to
// a single shared key per scenario — there is no per-conversation identity
// to isolate them by.
func keyFor(u canoe.Update) string {
	if id, ok := chatIDFor(u); ok {
		return "chat:" + strconv.FormatInt(id, 10)
	}
	if id, ok := userIDFor(u); ok {
		return "user:" + strconv.FormatInt(id, 10)
	}
	return "global"
}

func chatIDFor(u canoe.Update) (int64, bool) {
	switch {
	case u.Message != nil:
		return u.Message.Chat.ID, true
	case u.EditedMessage != nil:
		return u.EditedMessage.Chat.ID, true
	case u.ChannelPost != nil:
		return u.ChannelPost.Chat.ID, true
	case u.EditedChannelPost != nil:
		return u.EditedChannelPost.Chat.ID, true
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		return u.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}

func userIDFor(u canoe.Update) (int64, bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		return u.CallbackQuery.From.ID, true
	case u.InlineQuery != nil && u.InlineQuery.From != nil:
		return u.InlineQuery.From.ID, true
	case u.ChosenInlineResult != nil && u.ChosenInlineResult.From != nil:
		return u.ChosenInlineResult.From.ID, true
	case u.ShippingQuery != nil && u.ShippingQuery.From != nil:
		return u.ShippingQuery.From.ID, true
	case u.PreCheckoutQuery != nil && u.PreCheckoutQuery.From != nil:
		return u.PreCheckoutQuery.From.ID, true
	}
	return 0, false
}

// chatIDOrZero returns the chat id for telemetry attribution, or 0 when u
// carries none.
func chatIDOrZero(u canoe.Update) int64 {
	if id, ok := chatIDFor(u); ok {
		return id
	}
	return 0
}
