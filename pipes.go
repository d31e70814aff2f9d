package canoe

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// Messages projects an Update to its received-message payload.
func Messages(u Update) (*Message, bool) {
	if u.Message == nil {
		return nil, false
	}
	return u.Message, true
}

// EditedMessages projects an Update to an edited-message payload.
func EditedMessages(u Update) (*Message, bool) {
	if u.EditedMessage == nil {
		return nil, false
	}
	return u.EditedMessage, true
}

// ChannelPosts projects an Update to a channel-post payload.
func ChannelPosts(u Update) (*Message, bool) {
	if u.ChannelPost == nil {
		return nil, false
	}
	return u.ChannelPost, true
}

// EditedChannelPosts projects an Update to an edited-channel-post payload.
func EditedChannelPosts(u Update) (*Message, bool) {
	if u.EditedChannelPost == nil {
		return nil, false
	}
	return u.EditedChannelPost, true
}

// CallbackQueries projects an Update to a callback-query payload.
func CallbackQueries(u Update) (*CallbackQuery, bool) {
	if u.CallbackQuery == nil {
		return nil, false
	}
	return u.CallbackQuery, true
}

// InlineQueries projects an Update to an inline-query payload.
func InlineQueries(u Update) (*tgbotapi.InlineQuery, bool) {
	if u.InlineQuery == nil {
		return nil, false
	}
	return u.InlineQuery, true
}

// ChosenInlineResults projects an Update to a chosen-inline-result payload.
func ChosenInlineResults(u Update) (*tgbotapi.ChosenInlineResult, bool) {
	if u.ChosenInlineResult == nil {
		return nil, false
	}
	return u.ChosenInlineResult, true
}

// ShippingQueries projects an Update to a shipping-query payload.
func ShippingQueries(u Update) (*tgbotapi.ShippingQuery, bool) {
	if u.ShippingQuery == nil {
		return nil, false
	}
	return u.ShippingQuery, true
}

// PreCheckoutQueries projects an Update to a pre-checkout-query payload.
func PreCheckoutQueries(u Update) (*tgbotapi.PreCheckoutQuery, bool) {
	if u.PreCheckoutQuery == nil {
		return nil, false
	}
	return u.PreCheckoutQuery, true
}

// PollUpdates projects an Update to a poll payload.
func PollUpdates(u Update) (*tgbotapi.Poll, bool) {
	if u.Poll == nil {
		return nil, false
	}
	return u.Poll, true
}
