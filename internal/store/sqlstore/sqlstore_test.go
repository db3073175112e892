package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"whatsnext/internal/store"
	"whatsnext/internal/validate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "mysql", "dsn")
	assert.Error(t, err)

	_, err = Open(context.Background(), DriverSQLite, " ")
	assert.Error(t, err)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestRebind(t *testing.T) {
	pg := &Store{driver: DriverPostgres}
	assert.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))

	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "x = ?", lite.rebind("x = ?"))
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	u := store.User{Handle: "ada", Email: "ada@example.com", UserID: "uid-1", CreatedAt: "2024-01-01T00:00:00.000Z"}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.ErrorIs(t, s.CreateUser(ctx, u), store.ErrAlreadyExists)

	got, err := s.GetUser(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, u, *got)

	_, err = s.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	records, err := s.FindByUserID(ctx, "uid-1", 2)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ada", records[0].Handle)
	assert.Equal(t, "uid-1", records[0].UserID)

	records, err = s.FindByUserID(ctx, "uid-unknown", 2)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, s.UpdateUserDetails(ctx, "ada", validate.UserDetails{Website: "http://ada.dev", Location: "London"}))
	require.NoError(t, s.SetUserImage(ctx, "ada", "http://img/ada.png"))
	got, err = s.GetUser(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "http://ada.dev", got.Website)
	assert.Equal(t, "London", got.Location)
	assert.Equal(t, "", got.Bio)
	assert.Equal(t, "http://img/ada.png", got.ImageURL)

	assert.ErrorIs(t, s.UpdateUserDetails(ctx, "nobody", validate.UserDetails{Bio: "x"}), store.ErrNotFound)
	assert.ErrorIs(t, s.SetUserImage(ctx, "nobody", "u"), store.ErrNotFound)
}

func TestFindByUserIDRespectsLimit(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, h := range []string{"a", "b", "c"} {
		require.NoError(t, s.CreateUser(ctx, store.User{Handle: h, Email: h + "@x.io", UserID: "dup", CreatedAt: "2024-01-01T00:00:00.000Z"}))
	}

	records, err := s.FindByUserID(ctx, "dup", 2)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestItems(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	items := []store.Item{
		{ItemID: "i1", UserID: "u1", Body: "first", CreatedAt: "2024-01-01T00:00:00.000Z"},
		{ItemID: "i2", UserID: "u1", Body: "second", CreatedAt: "2024-01-02T00:00:00.000Z"},
		{ItemID: "i3", UserID: "u2", Body: "other", CreatedAt: "2024-01-03T00:00:00.000Z"},
	}
	for _, it := range items {
		require.NoError(t, s.CreateItem(ctx, it))
	}

	list, err := s.ListItems(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "i2", list[0].ItemID)
	assert.Equal(t, "i1", list[1].ItemID)

	empty, err := s.ListItems(ctx, "u3")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	require.NoError(t, s.UpdateItemBody(ctx, "i1", "edited"))
	got, err := s.GetItem(ctx, "i1")
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Body)

	assert.ErrorIs(t, s.UpdateItemBody(ctx, "missing", "x"), store.ErrNotFound)

	require.NoError(t, s.DeleteItem(ctx, "i1"))
	_, err = s.GetItem(ctx, "i1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteItem(ctx, "i1"), store.ErrNotFound)
}

func TestLikes(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	require.NoError(t, s.addLike(ctx, store.Like{LikeID: "l1", UserHandle: "ada", ItemID: "i1", CreatedAt: "2024-01-01T00:00:00.000Z"}))
	require.NoError(t, s.addLike(ctx, store.Like{LikeID: "l2", UserHandle: "bob", ItemID: "i1", CreatedAt: "2024-01-01T00:00:00.000Z"}))

	likes, err := s.ListLikesByHandle(ctx, "ada")
	require.NoError(t, err)
	require.Len(t, likes, 1)
	assert.Equal(t, "l1", likes[0].LikeID)
}

func TestAccounts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	a := store.Account{UserID: "u1", Email: "Ada@Example.com", PasswordHash: "hash", CreatedAt: "2024-01-01T00:00:00.000Z"}
	require.NoError(t, s.CreateAccount(ctx, a))
	assert.ErrorIs(t, s.CreateAccount(ctx, store.Account{UserID: "u2", Email: "ada@example.com", PasswordHash: "h", CreatedAt: a.CreatedAt}), store.ErrAlreadyExists)

	got, err := s.GetAccountByEmail(ctx, "ADA@example.COM")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = s.GetAccountByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteAccount(ctx, "u1"))
	_, err = s.GetAccountByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteAccount(ctx, "u1"), store.ErrNotFound)
	require.NoError(t, s.CreateAccount(ctx, store.Account{UserID: "u3", Email: "ada@example.com", PasswordHash: "h", CreatedAt: a.CreatedAt}))
}
