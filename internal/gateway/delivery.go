package gateway

import (
	"time"

	"github.com/mvasilev/concord/internal/models"
	"github.com/mvasilev/concord/internal/notify"
)

// Delivery is how one message should be surfaced to one recipient.
type Delivery struct {
	// Notify is false when the recipient's effective level suppresses any
	// notification for this message.
	Notify bool
	// Silent is true when the recipient should get the notification
	// without sound or banner (quiet hours).
	Silent bool
}

// classifyDelivery resolves a recipient's notification outcome for one
// message. Level selection and quiet hours are independent decisions: a
// muted channel suppresses the notification outright, while quiet hours
// only downgrade it to silent. Called with a fresh "now" per message; the
// outcome must never be cached, since mute expiry alone can change it.
func classifyDelivery(settings models.NotificationSettings, ctx notify.Context, mentioned bool, now time.Time) Delivery {
	level := notify.ResolveLevel(settings, ctx, now)

	var wants bool
	switch level {
	case notify.LevelAll:
		wants = true
	case notify.LevelMentions:
		wants = mentioned
	case notify.LevelNothing:
		wants = false
	}

	return Delivery{
		Notify: wants,
		Silent: notify.QuietHoursActive(settings, now),
	}
}

// mentionsUser reports whether userID appears in a message's mention list.
func mentionsUser(mentions []int64, userID int64) bool {
	for _, id := range mentions {
		if id == userID {
			return true
		}
	}
	return false
}
