// Package whatsapp registers the WhatsApp link platform.
package whatsapp

import (
	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/platforms"
)

// groupInviteHost is the dedicated subdomain for group invite links.
const groupInviteHost = "chat.whatsapp.com"

// Platform classifies WhatsApp group invites and contact links.
type Platform struct{}

// New creates the WhatsApp platform.
func New() *Platform {
	return &Platform{}
}

// Name returns the platform name.
func (p *Platform) Name() string {
	return "whatsapp"
}

// Description returns a human-readable description.
func (p *Platform) Description() string {
	return "WhatsApp group invites (chat.whatsapp.com) and contact links (wa.me)"
}

// Hosts returns the WhatsApp link domains.
func (p *Platform) Hosts() []string {
	return []string{"chat.whatsapp.com", "wa.me", "whatsapp.com"}
}

// Priority returns the platform priority. Telegram is consulted first.
func (p *Platform) Priority() int {
	return 90
}

// DeadMarkers returns phrases shown on WhatsApp pages for revoked or deleted invites.
func (p *Platform) DeadMarkers() []string {
	return []string{
		"invite link reset",
		"this group no longer exists",
		"this link is no longer valid",
	}
}

// Rules returns the WhatsApp rules. Group invites are tried before the
// catch-all contact rule.
func (p *Platform) Rules() []platforms.Rule {
	return []platforms.Rule{
		{Name: "group-invite", Category: platforms.CategoryWhatsAppGroup, Match: IsGroupInvite},
		{Name: "contact", Category: platforms.CategoryWhatsAppNumber, Match: func(extractor.Link) bool { return true }},
	}
}

// IsGroupInvite reports whether the link is on the group-invite subdomain.
func IsGroupInvite(link extractor.Link) bool {
	return link.Hostname() == groupInviteHost
}
