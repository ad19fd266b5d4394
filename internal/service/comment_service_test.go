package service

import (
	"testing"

	"vidshare/internal/api/dto"
	"vidshare/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment_BlankRejectedBeforeCatalog(t *testing.T) {
	// nil 仓库：若访问数据库会直接 panic
	svc := NewCommentService(nil, nil)

	for _, text := range []string{"", "   ", "\n\t "} {
		_, err := svc.AddComment(1, &dto.AddCommentRequest{VideoID: 1, Comment: text})
		assert.ErrorIs(t, err, ErrEmptyComment)
	}
}

func TestAddComment_UnknownVideo(t *testing.T) {
	e := newEnv(t)
	svc := NewCommentService(e.comments, e.videos)

	_, err := svc.AddComment(1, &dto.AddCommentRequest{VideoID: 12345, Comment: "hello"})
	assert.ErrorIs(t, err, ErrVideoNotFound)

	list, err := e.comments.ListByVideoIDs([]int64{12345})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAddComment(t *testing.T) {
	e := newEnv(t)
	svc := NewCommentService(e.comments, e.videos)
	v := &model.Video{Title: "clip", URL: "https://blob.test/v.mp4"}
	require.NoError(t, e.videos.Create(v))

	c, err := svc.AddComment(7, &dto.AddCommentRequest{VideoID: v.ID, Comment: "  nice  "})
	require.NoError(t, err)
	assert.NotZero(t, c.ID)
	assert.Equal(t, "nice", c.Comment)
	assert.Equal(t, int64(7), c.UserID)
}
