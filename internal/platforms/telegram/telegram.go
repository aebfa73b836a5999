// Package telegram registers the Telegram link platform (t.me and its aliases).
package telegram

import (
	"regexp"
	"strings"

	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/platforms"
)

// privateMessage matches the path of a private-channel message permalink and
// captures the numeric channel id: /c/<id>/<message>.
var privateMessage = regexp.MustCompile(`^/c/(\d+)(?:/|$)`)

var numericSegment = regexp.MustCompile(`^\d+$`)

// Platform classifies t.me links into channels, groups, bots and messages.
type Platform struct{}

// New creates the Telegram platform.
func New() *Platform {
	return &Platform{}
}

// Name returns the platform name.
func (p *Platform) Name() string {
	return "telegram"
}

// Description returns a human-readable description.
func (p *Platform) Description() string {
	return "Telegram public channels, invite links, bots and message permalinks"
}

// Hosts returns the Telegram link domains.
func (p *Platform) Hosts() []string {
	return []string{"t.me", "telegram.me", "telegram.dog"}
}

// Priority returns the platform priority.
func (p *Platform) Priority() int {
	return 100
}

// DeadMarkers returns phrases shown on Telegram pages for unusable links.
func (p *Platform) DeadMarkers() []string {
	return []string{
		"if you have telegram",
		"join telegram",
		"sorry, this link is invalid",
		"this channel is private",
		"username not found",
		"page not found",
	}
}

// Rules returns the Telegram rules. Order matters: a message permalink under a
// channel whose name ends in "bot" is still a message, and a bot name wins over
// an invite marker.
func (p *Platform) Rules() []platforms.Rule {
	return []platforms.Rule{
		{Name: "message", Category: platforms.CategoryMessage, Match: IsMessage, Key: GroupID},
		{Name: "bot", Category: platforms.CategoryBot, Match: IsBot},
		{Name: "group-join", Category: platforms.CategoryGroup, Match: IsGroupJoin},
		{Name: "channel", Category: platforms.CategoryChannel, Match: func(extractor.Link) bool { return true }},
	}
}

// IsMessage reports whether the link is a message permalink: a private-channel
// path (/c/<id>/...) or a path of two or more segments ending in a number.
func IsMessage(link extractor.Link) bool {
	if privateMessage.MatchString(strings.ToLower(link.Path)) {
		return true
	}

	segments := link.Segments()

	return len(segments) >= 2 && numericSegment.MatchString(segments[len(segments)-1])
}

// GroupID returns the chat a message link belongs to: the numeric channel id
// for private links, the lower-cased username for public ones.
func GroupID(link extractor.Link) string {
	if m := privateMessage.FindStringSubmatch(strings.ToLower(link.Path)); m != nil {
		return m[1]
	}

	segments := link.Segments()
	if len(segments) == 0 {
		return ""
	}

	// /s/<username>/<id> is the web preview of a public message
	if strings.EqualFold(segments[0], "s") && len(segments) >= 3 {
		return strings.ToLower(segments[1])
	}

	return strings.ToLower(segments[0])
}

// IsBot reports whether the last path segment ends with "bot".
func IsBot(link extractor.Link) bool {
	segments := link.Segments()
	if len(segments) == 0 {
		return false
	}

	return strings.HasSuffix(strings.ToLower(segments[len(segments)-1]), "bot")
}

// IsGroupJoin reports whether the link is an invite: a joinchat path or a
// "+"-prefixed invite code.
func IsGroupJoin(link extractor.Link) bool {
	if strings.Contains(strings.ToLower(link.Path), "joinchat") {
		return true
	}

	for _, segment := range link.Segments() {
		if strings.HasPrefix(segment, "+") {
			return true
		}
	}

	return false
}
