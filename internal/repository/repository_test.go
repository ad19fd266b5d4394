package repository

import (
	"testing"
	"time"

	"vidshare/internal/model"
	"vidshare/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)

	user := &model.User{Username: "alice", Email: "a@x.com", Password: "hash", Role: model.RoleAdmin}
	require.NoError(t, repo.Create(user))
	assert.NotZero(t, user.ID)

	exists, err := repo.ExistsByEmail("a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByEmail("b@x.com")
	require.NoError(t, err)
	assert.False(t, exists)

	found, err := repo.GetByEmail("a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	role, err := repo.GetRole(user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, role)

	updated, err := repo.Update(user.ID, map[string]interface{}{"bio": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", updated.Bio)
	assert.Equal(t, "alice", updated.Username)

	_, err = repo.Update(9999, map[string]interface{}{"bio": "x"})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.GetByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	users, err := repo.GetByIDs([]int64{user.ID, 9999})
	require.NoError(t, err)
	assert.Len(t, users, 1)

	users, err = repo.GetByIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_UniqueEmail(t *testing.T) {
	repo := NewUserRepository(testutil.NewDB(t))

	require.NoError(t, repo.Create(&model.User{Username: "a", Email: "dup@x.com", Password: "h", Role: model.RoleUser}))
	assert.Error(t, repo.Create(&model.User{Username: "b", Email: "dup@x.com", Password: "h", Role: model.RoleUser}))
}

func TestVideoRepository_ListOrder(t *testing.T) {
	repo := NewVideoRepository(testutil.NewDB(t))

	base := time.Now().Add(-time.Hour)
	for i, title := range []string{"first", "second", "third"} {
		v := &model.Video{Title: title, URL: "http://blob/" + title, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(v))
	}

	videos, err := repo.List()
	require.NoError(t, err)
	require.Len(t, videos, 3)
	assert.Equal(t, "third", videos[0].Title)
	assert.Equal(t, "first", videos[2].Title)

	got, err := repo.GetByID(videos[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Title)

	_, err = repo.GetByID(12345)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestVideoRepository_Search(t *testing.T) {
	repo := NewVideoRepository(testutil.NewDB(t))

	require.NoError(t, repo.Create(&model.Video{Title: "Cat Compilation", URL: "u1", Hashtags: "#funny #pets"}))
	require.NoError(t, repo.Create(&model.Video{Title: "Cooking pasta", URL: "u2", Hashtags: "#food"}))
	require.NoError(t, repo.Create(&model.Video{Title: "100% real", URL: "u3"}))

	videos, err := repo.Search("cat", 10)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "Cat Compilation", videos[0].Title)

	videos, err = repo.Search("FOOD", 10)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "Cooking pasta", videos[0].Title)

	videos, err = repo.Search("%", 10)
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, "100% real", videos[0].Title)
}

func TestVideoRepository_FindInBatches(t *testing.T) {
	repo := NewVideoRepository(testutil.NewDB(t))
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(&model.Video{Title: "v", URL: "u"}))
	}

	var seen, batches int
	err := repo.FindInBatches(2, func(videos []model.Video) error {
		batches++
		seen += len(videos)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, seen)
	assert.Equal(t, 3, batches)
}

func TestCommentRepository(t *testing.T) {
	db := testutil.NewDB(t)
	videos := NewVideoRepository(db)
	comments := NewCommentRepository(db)

	v1 := &model.Video{Title: "a", URL: "u"}
	v2 := &model.Video{Title: "b", URL: "u"}
	require.NoError(t, videos.Create(v1))
	require.NoError(t, videos.Create(v2))

	require.NoError(t, comments.Create(&model.Comment{VideoID: v1.ID, UserID: 1, Comment: "one"}))
	require.NoError(t, comments.Create(&model.Comment{VideoID: v1.ID, UserID: 2, Comment: "two"}))
	require.NoError(t, comments.Create(&model.Comment{VideoID: v2.ID, UserID: 1, Comment: "three"}))

	list, err := comments.ListByVideoIDs([]int64{v1.ID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Comment)
	assert.Equal(t, "two", list[1].Comment)

	list, err = comments.ListByVideoIDs([]int64{v1.ID, v2.ID})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = comments.ListByVideoIDs(nil)
	require.NoError(t, err)
	assert.Empty(t, list)
}
