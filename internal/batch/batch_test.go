package batch

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/btraven00/linksift/internal/classifier"
	"github.com/btraven00/linksift/internal/extractor"
	"github.com/btraven00/linksift/internal/platforms"
)

func entries(t *testing.T, urls ...string) []Entry {
	t.Helper()

	c := classifier.New(nil)
	out := make([]Entry, 0, len(urls))

	for _, u := range urls {
		link, ok := extractor.Normalize(u)
		require.True(t, ok, u)
		out = append(out, Entry{Link: link, Class: c.Classify(link)})
	}

	return out
}

func TestDedupeMessagesByGroup(t *testing.T) {
	got := Dedupe(slices.Values(entries(t,
		"https://t.me/c/12345/111",
		"https://t.me/c/12345/222",
		"https://t.me/c/67890/1",
	)))

	require.Len(t, got, 2)
	assert.Equal(t, "https://t.me/c/12345/111", got[0].Rendered())
	assert.Equal(t, "https://t.me/c/67890/1", got[1].Rendered())
}

func TestDedupeCanonicalVariants(t *testing.T) {
	got := Dedupe(slices.Values(entries(t,
		"https://t.me/SomeChannel",
		"https://t.me/somechannel/",
		"http://www.t.me/SOMECHANNEL?utm_source=x",
		"https://t.me/other",
	)))

	require.Len(t, got, 2)
	assert.Equal(t, "https://t.me/SomeChannel", got[0].Rendered(), "first seen wins")
}

func TestDeduplicatorKeepsLinkInOneCategory(t *testing.T) {
	d := NewDeduplicator()
	link, ok := extractor.Normalize("https://t.me/x")
	require.True(t, ok)

	first := Entry{Link: link, Class: classifier.Classification{Category: platforms.CategoryChannel, Key: link.Canonical()}}
	forged := Entry{Link: link, Class: classifier.Classification{Category: platforms.CategoryBot, Key: link.Canonical()}}

	assert.True(t, d.Add(first))
	assert.False(t, d.Add(forged))
}

func TestMessageRenderKeepsQuery(t *testing.T) {
	got := entries(t, "https://t.me/c/1/2?single&utm_source=a", "https://t.me/chan?start=x")
	assert.Equal(t, "https://t.me/c/1/2?single", got[0].Rendered())
	assert.Equal(t, "https://t.me/chan", got[1].Rendered())
}

func TestPartitionAndArtifacts(t *testing.T) {
	b := Build(slices.Values(entries(t,
		"https://t.me/zeta",
		"https://t.me/alpha",
		"https://t.me/HelperBot",
		"https://t.me/joinchat/AAAA",
		"https://t.me/c/12345/999",
		"https://chat.whatsapp.com/abc",
	)))

	assert.Equal(t, 6, b.Len())
	assert.Equal(t, []platforms.Category{
		platforms.CategoryChannel,
		platforms.CategoryGroup,
		platforms.CategoryMessage,
		platforms.CategoryBot,
		platforms.CategoryWhatsAppGroup,
	}, b.Categories())

	artifacts := b.Artifacts()
	require.Len(t, artifacts, 5)
	assert.Equal(t, "channels.txt", artifacts[0].FileName)
	assert.Equal(t, []string{"https://t.me/alpha", "https://t.me/zeta"}, artifacts[0].Links)
	assert.Equal(t, "https://t.me/alpha\nhttps://t.me/zeta\n", artifacts[0].Content())

	for _, a := range artifacts {
		assert.NotEmpty(t, a.Links, "no empty artifacts")
	}
}

func TestPartitionOrderIndependent(t *testing.T) {
	urls := []string{"https://t.me/b", "https://t.me/a", "https://t.me/xbot", "https://wa.me/1"}
	reversed := slices.Clone(urls)
	slices.Reverse(reversed)

	a := Build(slices.Values(entries(t, urls...)))
	b := Build(slices.Values(entries(t, reversed...)))

	assert.Equal(t, a.Artifacts(), b.Artifacts())
}

func TestEmptyBatch(t *testing.T) {
	b := Build(slices.Values([]Entry(nil)))
	assert.True(t, b.Empty())
	assert.Empty(t, b.Artifacts())

	var nilBatch *LinkBatch
	assert.True(t, nilBatch.Empty())
	assert.Zero(t, nilBatch.Len())
}

func TestLookup(t *testing.T) {
	b := Build(slices.Values(entries(t, "https://t.me/a", "https://t.me/b")))

	c, links, err := b.Lookup("channels.txt")
	require.NoError(t, err)
	assert.Equal(t, platforms.CategoryChannel, c)
	assert.Len(t, links, 2)

	_, _, err = b.Lookup("bot")
	assert.True(t, errors.Is(err, ErrEmptyCategory))

	_, _, err = b.Lookup("stickers")
	assert.True(t, errors.Is(err, ErrUnknownCategory))
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore(time.Hour)
	b := Build(slices.Values(entries(t, "https://t.me/a")))

	id := s.Create(b)
	require.NotEmpty(t, id)

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Same(t, b, got)

	got, err = s.Consume(id)
	require.NoError(t, err)
	assert.Same(t, b, got)

	_, err = s.Get(id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, s.Delete(id))
}

func TestStoreExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute)
	s.now = func() time.Time { return now }

	old := s.Create(&LinkBatch{})
	now = now.Add(30 * time.Second)
	fresh := s.Create(&LinkBatch{})
	now = now.Add(45 * time.Second)

	_, err := s.Get(old)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Get(fresh)
	assert.NoError(t, err)

	now = now.Add(time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Zero(t, s.Len())
}

func TestStoreNoTTL(t *testing.T) {
	now := time.Now()
	s := NewStore(0)
	s.now = func() time.Time { return now }

	id := s.Create(&LinkBatch{})
	now = now.Add(1000 * time.Hour)

	_, err := s.Get(id)
	assert.NoError(t, err)
	assert.Zero(t, s.Sweep())
}
