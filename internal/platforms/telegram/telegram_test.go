package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/platforms"
)

func mustLink(t *testing.T, raw string) extractor.Link {
	t.Helper()
	link, ok := extractor.Normalize(raw)
	require.True(t, ok, raw)
	return link
}

func TestPredicates(t *testing.T) {
	testCases := []struct {
		url     string
		message bool
		bot     bool
		join    bool
	}{
		{url: "https://t.me/c/12345/999", message: true},
		{url: "https://t.me/C/12345", message: true},
		{url: "https://t.me/publicchannel/42", message: true},
		{url: "https://t.me/SomeBot/12", message: true, bot: false},
		{url: "https://t.me/SomeBot", bot: true},
		{url: "https://t.me/helper_BOT", bot: true},
		{url: "https://t.me/joinchat/AAAA", join: true},
		{url: "https://t.me/+AbCdEf", join: true},
		{url: "https://t.me/publicchannel"},
		{url: "https://t.me/c/notanid/5", message: true},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			link := mustLink(t, tc.url)
			assert.Equal(t, tc.message, IsMessage(link), "message")
			if !tc.message {
				assert.Equal(t, tc.bot, IsBot(link), "bot")
			}
			assert.Equal(t, tc.join, IsGroupJoin(link), "join")
		})
	}
}

func TestGroupID(t *testing.T) {
	testCases := []struct {
		url  string
		want string
	}{
		{url: "https://t.me/c/12345/999", want: "12345"},
		{url: "https://t.me/c/12345/111?single", want: "12345"},
		{url: "https://t.me/PublicChannel/42", want: "publicchannel"},
		{url: "https://t.me/s/PublicChannel/42", want: "publicchannel"},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			assert.Equal(t, tc.want, GroupID(mustLink(t, tc.url)))
		})
	}
}

func TestPlatformRegistered(t *testing.T) {
	for _, host := range []string{"t.me", "telegram.me", "www.telegram.dog"} {
		p := platforms.Detect(host)
		require.NotNil(t, p, host)
		assert.Equal(t, "telegram", p.Name())
	}
}

func TestRulesEndWithCatchAll(t *testing.T) {
	rules := New().Rules()
	require.NotEmpty(t, rules)

	last := rules[len(rules)-1]
	assert.Equal(t, platforms.CategoryChannel, last.Category)
	assert.True(t, last.Match(extractor.Link{}))
}

func TestDeadMarkersLowerCase(t *testing.T) {
	for _, m := range New().DeadMarkers() {
		assert.Equal(t, strings.ToLower(m), m)
	}
}
