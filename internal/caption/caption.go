// Package caption renders the HTML captions attached to relayed media.
package caption

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
)

const (
	// Loading is shown on freshly uploaded media until metadata arrives.
	Loading = "⏳ <i>Loading details...</i>"

	// analyzing is appended while the video file is being measured.
	analyzing = "\n\n⚙️ <i>Analyzing video...</i>"

	// Waiting is the text of the status message posted before resolution.
	Waiting = "⏳ Resolving link..."

	partSeparator = "\n\n"
)

// shortNames keeps the compact country names users already know from
// earlier captions where CLDR spells them out.
var shortNames = map[string]string{
	"US": "USA",
	"AE": "UAE",
	"CZ": "Czech Republic",
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// EscapeHTML escapes the characters Telegram's HTML parse mode treats as markup.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FormatCount abbreviates large counters: 999, 1.2k, 3m.
func FormatCount(n int64) string {
	switch {
	case n < 1000:
		return fmt.Sprintf("%d", n)
	case n < 1_000_000:
		return tenths((n*10+500)/1000) + "k"
	default:
		return tenths((n*10+500_000)/1_000_000) + "m"
	}
}

func tenths(v int64) string {
	if v%10 == 0 {
		return fmt.Sprintf("%d", v/10)
	}
	return fmt.Sprintf("%d.%d", v/10, v%10)
}

// CountryName returns the English name of an ISO region code.
// An empty code yields "N/A"; an unknown one is returned upper-cased.
func CountryName(code string) string {
	if code == "" {
		return "N/A"
	}
	upper := strings.ToUpper(code)
	if name, ok := shortNames[upper]; ok {
		return name
	}
	region, err := language.ParseRegion(upper)
	if err != nil {
		return upper
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return upper
}

// FormatDate renders a unix timestamp as DD.MM.YYYY in UTC.
func FormatDate(unix int64) string {
	if unix == 0 {
		return "N/A"
	}
	return time.Unix(unix, 0).UTC().Format("02.01.2006")
}

// Build renders the shared base caption. tech may be nil when the video
// was not measured or the content is an album.
func Build(meta model.Metadata, tech *model.VideoStats) string {
	parts := []string{authorLine(meta.Author)}

	if meta.Description != "" {
		parts = append(parts, "\n<blockquote expandable>"+EscapeHTML(meta.Description)+"</blockquote>")
	}

	parts = append(parts, fmt.Sprintf("♥ %s · 💬 %s · ↱ %s · ▷ %s",
		FormatCount(meta.Stats.Likes),
		FormatCount(meta.Stats.Comments),
		FormatCount(meta.Stats.Shares),
		FormatCount(meta.Stats.Plays),
	))

	if line := techLine(meta, tech); line != "" {
		parts = append(parts, line)
	}

	parts = append(parts,
		fmt.Sprintf("◷ %s · ⌖ %s", FormatDate(meta.CreateTime), CountryName(meta.Region)),
		"♪ "+soundTitle(meta.MusicTitle),
	)

	return strings.Join(parts, partSeparator)
}

func authorLine(a model.Author) string {
	name := a.UniqueID
	if name == "" {
		name = a.Nickname
	}
	line := "› @" + EscapeHTML(name)
	if a.FollowerCount != nil && a.TotalFavorited != nil {
		line += fmt.Sprintf("\n  └ Followers: %s · Total Likes: %s",
			FormatCount(*a.FollowerCount), FormatCount(*a.TotalFavorited))
	}
	return line
}

func techLine(meta model.Metadata, tech *model.VideoStats) string {
	var parts []string
	if meta.DurationMS > 0 {
		parts = append(parts, fmt.Sprintf("%ds", (meta.DurationMS+500)/1000))
	}
	if meta.Width > 0 && meta.Height > 0 {
		parts = append(parts, fmt.Sprintf("%dx%d", meta.Width, meta.Height))
	}
	if tech != nil {
		if tech.FPS > 0 {
			parts = append(parts, fmt.Sprintf("%d FPS", tech.FPS))
		}
		if tech.SizeMB != "" {
			parts = append(parts, tech.SizeMB)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "[ " + strings.Join(parts, " | ") + " ]"
}

func soundTitle(title string) string {
	if title == "" || strings.HasPrefix(title, "original sound") {
		return "Original Sound"
	}
	return EscapeHTML(title)
}

// SenderLine credits the chat member who shared the link.
func SenderLine(sender model.Sender) string {
	return "\n\n🔗 via " + EscapeHTML(sender.DisplayName())
}

// CommentBlock quotes the text the sender posted alongside the link.
func CommentBlock(comment string) string {
	if comment == "" {
		return ""
	}
	return "\n\n<blockquote expandable>" + EscapeHTML(comment) + "</blockquote>"
}

// Personal is the per-recipient tail appended to a base caption.
func Personal(sender model.Sender, comment string) string {
	return SenderLine(sender) + CommentBlock(comment)
}

// Analyzing is the caption shown while the video file is measured.
func Analyzing(base, personal string) string {
	return base + personal + analyzing
}

// Final is the caption left on a freshly uploaded message.
func Final(base, personal string, elapsed time.Duration) string {
	return base + personal + fmt.Sprintf("\n\n⏱️ Processed in %.2fs", elapsed.Seconds())
}

// Cached is the caption used when media is re-sent from the cache.
func Cached(base, personal string) string {
	return strings.TrimSpace(base + personal)
}

// Error is the text reported to the chat when relaying fails.
func Error(detail string, elapsed time.Duration) string {
	return fmt.Sprintf("❌ Error: %s\n⏱️ Time: %.2fs", detail, elapsed.Seconds())
}
