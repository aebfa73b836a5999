package platforms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btraven00/linksift/internal/extractor"
)

type fakePlatform struct {
	name     string
	hosts    []string
	priority int
}

func (f *fakePlatform) Name() string          { return f.name }
func (f *fakePlatform) Description() string   { return "fake " + f.name }
func (f *fakePlatform) Hosts() []string       { return f.hosts }
func (f *fakePlatform) DeadMarkers() []string { return []string{"gone"} }
func (f *fakePlatform) Priority() int         { return f.priority }
func (f *fakePlatform) Rules() []Rule {
	return []Rule{{Name: "all", Category: CategoryChannel, Match: func(extractor.Link) bool { return true }}}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakePlatform{name: "a", hosts: []string{"a.example"}}))

	err := r.Register(&fakePlatform{name: "a"})
	require.Error(t, err)

	var regErr *RegistryError
	require.True(t, errors.As(err, &regErr))
	assert.Equal(t, ErrorTypeDuplicate, regErr.Type)

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name())
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakePlatform{name: "a", hosts: []string{"a.example"}}))
	require.NoError(t, r.Unregister("a"))

	assert.Nil(t, r.Detect("a.example"))

	var regErr *RegistryError
	require.ErrorAs(t, r.Unregister("a"), &regErr)
	assert.Equal(t, ErrorTypeNotFound, regErr.Type)
}

func TestRegistryDetect(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakePlatform{name: "chat", hosts: []string{"chat.example"}, priority: 10}))
	require.NoError(t, r.Register(&fakePlatform{name: "wide", hosts: []string{"example"}, priority: 1}))

	testCases := []struct {
		host string
		want string
	}{
		{host: "chat.example", want: "chat"},
		{host: "WWW.Chat.Example:443", want: "chat"},
		{host: "sub.chat.example", want: "chat"},
		{host: "other.example", want: "wide"},
		{host: "notexample", want: ""},
		{host: "", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.host, func(t *testing.T) {
			p := r.Detect(tc.host)
			if tc.want == "" {
				assert.Nil(t, p)
				return
			}
			require.NotNil(t, p)
			assert.Equal(t, tc.want, p.Name())
		})
	}
}

func TestRegistryOrderAndList(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(&fakePlatform{name: "b", priority: 5}))
	require.NoError(t, r.Register(&fakePlatform{name: "a", priority: 5}))
	require.NoError(t, r.Register(&fakePlatform{name: "z", priority: 50}))

	var names []string
	for _, p := range r.All() {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"z", "a", "b"}, names)

	info := r.List()
	require.Len(t, info, 3)
	assert.Equal(t, []string{"all -> channel"}, info[0].Rules)
	assert.Equal(t, []string{"gone"}, info[0].DeadMarkers)
}

func TestCategories(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range Categories() {
		assert.True(t, c.Valid())
		assert.NotEmpty(t, c.Title())
		assert.False(t, seen[c.FileName()], "duplicate file name %s", c.FileName())
		seen[c.FileName()] = true
	}

	c, ok := ParseCategory("bots.txt")
	require.True(t, ok)
	assert.Equal(t, CategoryBot, c)

	c, ok = ParseCategory("whatsapp-group")
	require.True(t, ok)
	assert.Equal(t, CategoryWhatsAppGroup, c)

	c, ok = ParseCategory(" Channels ")
	require.True(t, ok)
	assert.Equal(t, CategoryChannel, c)

	_, ok = ParseCategory("stickers")
	assert.False(t, ok)
	assert.False(t, Category("stickers").Valid())
}
