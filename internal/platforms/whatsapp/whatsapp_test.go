package whatsapp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/platforms"
)

func TestIsGroupInvite(t *testing.T) {
	testCases := []struct {
		url  string
		want bool
	}{
		{url: "https://chat.whatsapp.com/KxYz123", want: true},
		{url: "https://CHAT.WHATSAPP.COM/KxYz123", want: true},
		{url: "https://wa.me/15551234567", want: false},
		{url: "https://api.whatsapp.com/send?phone=15551234567", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.url, func(t *testing.T) {
			link, ok := extractor.Normalize(tc.url)
			require.True(t, ok)
			assert.Equal(t, tc.want, IsGroupInvite(link))
		})
	}
}

func TestPlatformRegistered(t *testing.T) {
	for _, host := range []string{"chat.whatsapp.com", "wa.me", "api.whatsapp.com"} {
		p := platforms.Detect(host)
		require.NotNil(t, p, host)
		assert.Equal(t, "whatsapp", p.Name())
	}
}

func TestDeadMarkers(t *testing.T) {
	markers := New().DeadMarkers()
	require.Len(t, markers, 3)
	for _, m := range markers {
		assert.Equal(t, strings.ToLower(m), m)
	}
}
