package notify

import (
	"testing"
	"time"

	"github.com/mvasilev/concord/internal/models"
)

func settingsWithGlobal(level string) models.NotificationSettings {
	s := models.DefaultNotificationSettings(42)
	s.GlobalNotifications = level
	return s
}

func TestResolveLevel_GlobalFallback(t *testing.T) {
	s := settingsWithGlobal("mentions")
	contexts := []Context{
		ChannelContext(100, 200),
		ConversationContext(300),
	}
	for _, ctx := range contexts {
		if got := ResolveLevel(s, ctx, baseTime); got != LevelMentions {
			t.Errorf("context %+v: want mentions, got %q", ctx, got)
		}
	}
}

func TestResolveLevel_ChannelOverride(t *testing.T) {
	s := settingsWithGlobal("mentions")
	s.ChannelOverrides[100] = models.NotificationOverride{Level: "nothing"}

	if got := ResolveLevel(s, ChannelContext(100, 200), baseTime); got != LevelNothing {
		t.Errorf("overridden channel: want nothing, got %q", got)
	}
	if got := ResolveLevel(s, ChannelContext(101, 200), baseTime); got != LevelMentions {
		t.Errorf("other channel should still use the global level, got %q", got)
	}
}

func TestResolveLevel_ExpiredOverrideFallsThrough(t *testing.T) {
	past := baseTime.Add(-time.Minute)
	s := settingsWithGlobal("all")
	s.ChannelOverrides[100] = models.NotificationOverride{Level: "nothing", MutedUntil: &past}
	s.ServerOverrides[200] = models.NotificationOverride{Level: "mentions"}

	if got := ResolveLevel(s, ChannelContext(100, 200), baseTime); got != LevelMentions {
		t.Errorf("expired channel override should fall through to server tier, got %q", got)
	}

	delete(s.ServerOverrides, 200)
	if got := ResolveLevel(s, ChannelContext(100, 200), baseTime); got != LevelAll {
		t.Errorf("with no server override the global level applies, got %q", got)
	}
}

func TestResolveLevel_ChannelBeatsServer(t *testing.T) {
	s := settingsWithGlobal("all")
	s.ChannelOverrides[100] = models.NotificationOverride{Level: "all"}
	s.ServerOverrides[200] = models.NotificationOverride{Level: "nothing"}

	if got := ResolveLevel(s, ChannelContext(100, 200), baseTime); got != LevelAll {
		t.Errorf("channel override outranks server override, got %q", got)
	}
}

func TestResolveLevel_ServerTier(t *testing.T) {
	s := settingsWithGlobal("all")
	s.ServerOverrides[200] = models.NotificationOverride{Level: "nothing"}

	if got := ResolveLevel(s, ChannelContext(100, 200), baseTime); got != LevelNothing {
		t.Errorf("server override should apply when the channel has none, got %q", got)
	}
}

func TestResolveLevel_MutedForever(t *testing.T) {
	s := settingsWithGlobal("all")
	s.ServerOverrides[200] = models.NotificationOverride{Level: "nothing"} // no deadline

	if got := ResolveLevel(s, ChannelContext(100, 200), baseTime.Add(100000*time.Hour)); got != LevelNothing {
		t.Errorf("a mute without a deadline never expires, got %q", got)
	}
}

func TestResolveLevel_ConversationTier(t *testing.T) {
	s := settingsWithGlobal("all")
	s.ConversationOverrides[300] = models.NotificationOverride{Level: "nothing"}

	if got := ResolveLevel(s, ConversationContext(300), baseTime); got != LevelNothing {
		t.Errorf("conversation override should apply to DMs, got %q", got)
	}
	if got := ResolveLevel(s, ConversationContext(301), baseTime); got != LevelAll {
		t.Errorf("other conversations use the global level, got %q", got)
	}
}

func TestResolveLevel_ContextsAreExclusive(t *testing.T) {
	s := settingsWithGlobal("all")
	s.ConversationOverrides[300] = models.NotificationOverride{Level: "nothing"}
	s.ChannelOverrides[100] = models.NotificationOverride{Level: "nothing"}

	// A channel context never consults conversation overrides, and a
	// conversation context never consults channel overrides.
	if got := ResolveLevel(s, ChannelContext(101, 200), baseTime); got != LevelAll {
		t.Errorf("channel context leaked into conversation overrides: %q", got)
	}
	if got := ResolveLevel(s, ConversationContext(301), baseTime); got != LevelAll {
		t.Errorf("conversation context leaked into channel overrides: %q", got)
	}
}

func TestResolveLevel_InvalidGlobalDegrades(t *testing.T) {
	s := settingsWithGlobal("loud")
	if got := ResolveLevel(s, ConversationContext(300), baseTime); got != LevelAll {
		t.Errorf("unrecognized global level should degrade to all, got %q", got)
	}
}

func TestResolveLevel_InvalidOverrideLevelSkipped(t *testing.T) {
	s := settingsWithGlobal("mentions")
	s.ChannelOverrides[100] = models.NotificationOverride{Level: "sometimes"}
	if got := ResolveLevel(s, ChannelContext(100, 200), baseTime); got != LevelMentions {
		t.Errorf("an override with an unknown level should be skipped, got %q", got)
	}
}

func TestQuietHoursActive(t *testing.T) {
	s := settingsWithGlobal("all")
	if QuietHoursActive(s, baseTime) {
		t.Error("unset quiet hours should be inactive")
	}
	s.QuietHoursStart = "22:00"
	s.QuietHoursEnd = "08:00"
	if !QuietHoursActive(s, at(23, 30)) {
		t.Error("23:30 should be inside quiet hours")
	}
	if QuietHoursActive(s, at(12, 0)) {
		t.Error("12:00 should be outside quiet hours")
	}
}
