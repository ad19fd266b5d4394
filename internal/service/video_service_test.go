package service

import (
	"testing"
	"time"

	"vidshare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListVideos(t *testing.T) {
	e := newEnv(t)
	svc := NewVideoService(e.videos, e.comments, e.users)

	author := seedUser(t, e, "a@x.com")
	base := time.Now().Add(-time.Hour)
	older := &model.Video{Title: "older", URL: "https://blob.test/1.mp4", CreatedAt: base}
	newer := &model.Video{Title: "newer", URL: "https://blob.test/2.mp4", CreatedAt: base.Add(time.Minute)}
	require.NoError(t, e.videos.Create(older))
	require.NoError(t, e.videos.Create(newer))

	require.NoError(t, e.comments.Create(&model.Comment{VideoID: older.ID, UserID: author.ID, Comment: "first", CreatedAt: base}))
	require.NoError(t, e.comments.Create(&model.Comment{VideoID: older.ID, UserID: 9999, Comment: "ghost", CreatedAt: base.Add(time.Second)}))

	list, err := svc.ListVideos()
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, "newer", list[0].Title)
	assert.NotNil(t, list[0].Comments)
	assert.Empty(t, list[0].Comments)

	require.Len(t, list[1].Comments, 2)
	assert.Equal(t, author.Username, list[1].Comments[0].User.Username)
	assert.Equal(t, AnonymousUsername, list[1].Comments[1].User.Username)
}

func TestListVideos_Empty(t *testing.T) {
	e := newEnv(t)
	svc := NewVideoService(e.videos, e.comments, e.users)

	list, err := svc.ListVideos()
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGetVideoWithComments(t *testing.T) {
	e := newEnv(t)
	svc := NewVideoService(e.videos, e.comments, e.users)

	_, err := svc.GetVideoWithComments(42, "http://api.test")
	assert.ErrorIs(t, err, ErrVideoNotFound)

	v := &model.Video{Title: "rel", URL: "/media/clip.mp4"}
	require.NoError(t, e.videos.Create(v))

	got, err := svc.GetVideoWithComments(v.ID, "http://api.test:5000")
	require.NoError(t, err)
	assert.Equal(t, "http://api.test:5000/media/clip.mp4", got.URL)
	assert.NotNil(t, got.Comments)
}

func TestAbsoluteURL(t *testing.T) {
	cases := []struct {
		raw, base, want string
	}{
		{"https://cdn/x.mp4", "http://h", "https://cdn/x.mp4"},
		{"http://cdn/x.mp4", "http://h", "http://cdn/x.mp4"},
		{"videos/x.mp4", "http://h:1", "http://h:1/videos/x.mp4"},
		{"/videos/x.mp4", "https://h", "https://h/videos/x.mp4"},
		{"videos/x.mp4", "", "videos/x.mp4"},
		{"", "http://h", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AbsoluteURL(c.raw, c.base), c.raw)
	}
}
