package jsondb

import (
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngoduykhanh/flatpost/model"
	"github.com/ngoduykhanh/flatpost/store"
)

func newTestDB(t *testing.T) (*JsonDB, string) {
	t.Helper()
	dir := t.TempDir()
	db, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, db.Init())
	return db, dir
}

func TestInit_CreatesEmptyCollections(t *testing.T) {
	db, dir := newTestDB(t)

	for _, name := range []string{model.UserCollectionName, model.PostCollectionName} {
		data, err := os.ReadFile(filepath.Join(dir, name, name+".json"))
		require.NoError(t, err)
		assert.JSONEq(t, "[]", string(data))
	}

	posts, err := db.GetPosts()
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NotNil(t, posts)
}

func TestInit_KeepsExistingRecords(t *testing.T) {
	db, dir := newTestDB(t)
	_, err := db.CreatePost(model.Post{Title: "t", Details: "d", Author: "a"})
	require.NoError(t, err)

	again, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, again.Init())

	posts, err := again.GetPosts()
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestAppend_AssignsSequentialIDs(t *testing.T) {
	db, _ := newTestDB(t)

	for i := 1; i <= 3; i++ {
		p, err := db.CreatePost(model.Post{ID: 99, Title: "t", Details: "d", Author: "a"})
		require.NoError(t, err)
		assert.Equal(t, i, p.ID)
	}

	posts, err := db.GetPosts()
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for i, p := range posts {
		assert.Equal(t, i+1, p.ID)
	}
}

func TestAppend_IDFollowsMaximum(t *testing.T) {
	db, _ := newTestDB(t)
	for i := 0; i < 3; i++ {
		_, err := db.CreatePost(model.Post{Title: "t"})
		require.NoError(t, err)
	}

	removed, err := db.DeletePost(2)
	require.NoError(t, err)
	require.True(t, removed)

	p, err := db.CreatePost(model.Post{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, 4, p.ID)
}

func TestUpdate_KeepsID(t *testing.T) {
	db, _ := newTestDB(t)
	created, err := db.CreatePost(model.Post{Title: "old", Details: "d", Author: "a"})
	require.NoError(t, err)

	updated, err := db.UpdatePost(created.ID, func(p model.Post) model.Post {
		p.ID = 42
		p.Title = "new"
		return p
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "new", updated.Title)

	got, err := db.GetPostByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	_, err = db.GetPostByID(42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUpdate_Missing(t *testing.T) {
	db, _ := newTestDB(t)

	_, err := db.UpdatePost(7, func(p model.Post) model.Post { return p })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRemove_IsIdempotent(t *testing.T) {
	db, _ := newTestDB(t)
	p, err := db.CreatePost(model.Post{Title: "t"})
	require.NoError(t, err)

	removed, err := db.DeletePost(p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = db.DeletePost(p.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	posts, err := db.GetPosts()
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestAppend_ConcurrentWritersGetDistinctIDs(t *testing.T) {
	db, dir := newTestDB(t)
	const writers = 64

	ids := make([]int, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := db.CreatePost(model.Post{Title: "t", Details: "d", Author: "a"})
			assert.NoError(t, err)
			ids[i] = p.ID
		}(i)
	}
	wg.Wait()

	sort.Ints(ids)
	for i, id := range ids {
		assert.Equal(t, i+1, id)
	}

	// a fresh handle sees exactly what was written
	reopened, err := New(dir)
	require.NoError(t, err)
	posts, err := reopened.GetPosts()
	require.NoError(t, err)
	assert.Len(t, posts, writers)

	leftovers, err := filepath.Glob(filepath.Join(dir, model.PostCollectionName, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestCorruptCollectionIsNotOverwritten(t *testing.T) {
	db, dir := newTestDB(t)
	file := filepath.Join(dir, model.PostCollectionName, model.PostCollectionName+".json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0644))

	_, err := db.GetPosts()
	assert.Error(t, err)

	_, err = db.CreatePost(model.Post{Title: "t"})
	assert.Error(t, err)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestListWithoutFile(t *testing.T) {
	db, err := New(t.TempDir())
	require.NoError(t, err)

	posts, err := db.GetPosts()
	require.NoError(t, err)
	assert.Empty(t, posts)

	_, err = db.GetPostByID(1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}
