package target

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySurface(t *testing.T) {
	m := NewMemory("youtube-feed", "footer-placeholder")

	tg, ok := m.Target("youtube-feed")
	require.True(t, ok)
	tg.SetContent("<a>one</a>")

	_, ok = m.Target("library-grid")
	assert.False(t, ok, "undeclared container must not resolve")

	got, ok := m.Content("youtube-feed")
	require.True(t, ok)
	assert.Equal(t, "<a>one</a>", got)

	_, ok = m.Content("footer-placeholder")
	assert.False(t, ok, "declared but unwritten container has no content")
	assert.Equal(t, map[string]string{"youtube-feed": "<a>one</a>"}, m.Snapshot())
}

func TestMemorySurfaceConcurrentWrites(t *testing.T) {
	m := NewMemory("a", "b")
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "a"
			if i%2 == 0 {
				id = "b"
			}
			tg, _ := m.Target(id)
			tg.SetContent(id)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, map[string]string{"a": "a", "b": "b"}, m.Snapshot())
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Publish(ctx, "home", map[string]string{
		"youtube-feed":        "<a>feed</a>",
		"home-deepdives-grid": "<a>study</a>",
	}))
	require.NoError(t, s.Publish(ctx, "home", map[string]string{
		"youtube-feed": "<a>feed v2</a>",
	}))

	got, err := s.Fragments(ctx, "home")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"youtube-feed": "<a>feed v2</a>"}, got)

	require.NoError(t, s.SetFragment(ctx, "live", "next-service-time", "Live in 03:00:00"))
	got, err = s.Fragments(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "Live in 03:00:00", got["next-service-time"])

	pages, err := s.Pages(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"home", "live"}, pages)

	got, err = s.Fragments(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()

	s := &RedisStore{Client: client, TTL: time.Hour}
	exerciseStore(t, s)

	assert.True(t, mr.Exists(KeyForPage("home")))
	assert.Equal(t, time.Hour, mr.TTL(KeyForPage("home")))
}

func TestRedisStoreNilClient(t *testing.T) {
	var s *RedisStore
	assert.Error(t, s.Publish(context.Background(), "home", nil))
}

func TestDirStore(t *testing.T) {
	root := t.TempDir()
	exerciseStore(t, &DirStore{Root: root})

	b, err := os.ReadFile(filepath.Join(root, "home", "youtube-feed.html"))
	require.NoError(t, err)
	assert.Equal(t, "<a>feed v2</a>", string(b))
	_, err = os.Stat(filepath.Join(root, "home", "home-deepdives-grid.html"))
	assert.True(t, os.IsNotExist(err), "stale fragment should be removed")
}

func TestDirStoreRejectsTraversal(t *testing.T) {
	s := &DirStore{Root: t.TempDir()}
	assert.Error(t, s.Publish(context.Background(), "..", nil))
	assert.Error(t, s.SetFragment(context.Background(), "home", "../escape", "x"))
}

func TestStoreSurface(t *testing.T) {
	store := NewMemoryStore()
	s := &StoreSurface{Store: store, Page: "live", Containers: []string{"next-service-time"}, Logger: zerolog.Nop()}

	tg, ok := s.Target("next-service-time")
	require.True(t, ok)
	tg.SetContent("● LIVE NOW")

	_, ok = s.Target("local-timezone")
	assert.False(t, ok)

	got, err := store.Fragments(context.Background(), "live")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"next-service-time": "● LIVE NOW"}, got)
}
