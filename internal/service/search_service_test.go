package service

import (
	"context"
	"testing"

	"vidshare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedVideos(t *testing.T, e *env, titles ...string) []*model.Video {
	t.Helper()
	out := make([]*model.Video, 0, len(titles))
	for _, title := range titles {
		v := &model.Video{Title: title, URL: "https://blob.test/" + title, Hashtags: "#" + title}
		require.NoError(t, e.videos.Create(v))
		out = append(out, v)
	}
	return out
}

func TestSearchVideos_KeepsIndexOrder(t *testing.T) {
	e := newEnv(t)
	vs := seedVideos(t, e, "alpha", "beta", "gamma")
	svc := NewSearchService(fakeSearcher{ids: []int64{vs[2].ID, 999, vs[0].ID}}, e.videos)

	got, err := svc.SearchVideos(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "gamma", got[0].Title)
	assert.Equal(t, "alpha", got[1].Title)
}

func TestSearchVideos_FallbackToDB(t *testing.T) {
	e := newEnv(t)
	seedVideos(t, e, "surfing", "skiing")
	svc := NewSearchService(fakeSearcher{err: errBoom}, e.videos)

	got, err := svc.SearchVideos(context.Background(), "SURF")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "surfing", got[0].Title)
}

func TestSearchVideos_NoSearcher(t *testing.T) {
	e := newEnv(t)
	seedVideos(t, e, "surfing")
	svc := NewSearchService(nil, e.videos)

	got, err := svc.SearchVideos(context.Background(), "nothing-matches")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	got, err = svc.SearchVideos(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}
