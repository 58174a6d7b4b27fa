package services

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"testing"

	"sport_bet/internal/access"
	"sport_bet/internal/config"
	"sport_bet/internal/models"
	"sport_bet/internal/storage"
	"sport_bet/internal/storage/sqldb"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
)

func setupMockDB(t *testing.T) (*sqldb.Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	storage, err := sqldb.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}))
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}

	return storage, mock
}

func setupSQLite(t *testing.T) *sqldb.Storage {
	t.Helper()

	storage, err := sqldb.New(config.Database{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "games.sqlite"),
	})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate())

	t.Cleanup(func() { _ = storage.Close() })

	return storage
}

func createUser(t *testing.T, s *sqldb.Storage, username string) *models.User {
	t.Helper()

	u, err := NewUserService(s, nil, bcrypt.MinCost).Register(context.Background(), username, "password")
	require.NoError(t, err)

	return u
}

func TestGameService_Create_SQL(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		st, mock := setupMockDB(t)
		service := NewGameService(st, nil)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `games`")).
			WithArgs("  Derby ", "", "2024-05-01", int64(1), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(7, 1))
		mock.ExpectCommit()

		game, err := service.Create(ctx, 1, GameInput{Title: "  Derby ", Tipoff: "2024-05-01"})

		require.NoError(t, err)
		assert.Equal(t, int64(7), game.ID)
		assert.Equal(t, "  Derby ", game.Title)
		assert.Equal(t, int64(1), game.AuthorID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty title touches nothing", func(t *testing.T) {
		st, mock := setupMockDB(t)
		service := NewGameService(st, nil)

		game, err := service.Create(ctx, 1, GameInput{Title: "", Body: "x"})

		assert.ErrorIs(t, err, ErrTitleRequired)
		assert.Nil(t, game)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("store error", func(t *testing.T) {
		st, mock := setupMockDB(t)
		service := NewGameService(st, nil)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `games`")).
			WillReturnError(errors.New("insert failed"))
		mock.ExpectRollback()

		game, err := service.Create(ctx, 1, GameInput{Title: "Derby"})

		assert.Error(t, err)
		assert.Nil(t, game)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGameService_ListAll_SQL(t *testing.T) {
	st, mock := setupMockDB(t)
	service := NewGameService(st, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM `games` LEFT JOIN `users` `Author`")).
		WillReturnError(errors.New("db down"))

	games, err := service.ListAll(context.Background())

	assert.Error(t, err)
	assert.Nil(t, games)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameService_GetByID_SQL(t *testing.T) {
	st, mock := setupMockDB(t)
	service := NewGameService(st, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE games.id = ?")).
		WithArgs(int64(999), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	game, err := service.GetByID(context.Background(), 999)

	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, game)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGameService_Update_SQL(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		st, mock := setupMockDB(t)
		service := NewGameService(st, nil)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `games` SET")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := service.Update(ctx, 7, GameInput{Title: "Final", Tipoff: "2024-06-01"})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no such id", func(t *testing.T) {
		st, mock := setupMockDB(t)
		service := NewGameService(st, nil)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("UPDATE `games` SET")).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := service.Update(ctx, 404, GameInput{Title: "Final"})

		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty title touches nothing", func(t *testing.T) {
		st, mock := setupMockDB(t)
		service := NewGameService(st, nil)

		err := service.Update(ctx, 7, GameInput{Title: ""})

		assert.ErrorIs(t, err, ErrTitleRequired)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGameService_Delete_SQL(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		st, mock := setupMockDB(t)
		service := NewGameService(st, nil)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `games` WHERE `games`.`id` = ?")).
			WithArgs(int64(7)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, service.Delete(ctx, 7))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("error", func(t *testing.T) {
		st, mock := setupMockDB(t)
		service := NewGameService(st, nil)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM `games`")).
			WillReturnError(errors.New("delete failed"))
		mock.ExpectRollback()

		err := service.Delete(ctx, 7)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, storage.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGameService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	st := setupSQLite(t)
	service := NewGameService(st, nil)

	alice := createUser(t, st, "alice")
	bob := createUser(t, st, "bob")

	created, err := service.Create(ctx, alice.ID, GameInput{Title: "Derby", Tipoff: "2024-05-01"})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	games, err := service.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, created.ID, games[0].ID)
	assert.Equal(t, "Derby", games[0].Title)
	assert.Equal(t, "", games[0].Body)
	assert.Equal(t, "2024-05-01", games[0].Tipoff)
	assert.Equal(t, alice.ID, games[0].AuthorID)
	assert.Equal(t, "alice", games[0].AuthorName())

	t.Run("update by author", func(t *testing.T) {
		g, err := service.GetForModify(ctx, alice, created.ID)
		require.NoError(t, err)

		require.NoError(t, service.Update(ctx, g.ID, GameInput{Title: "Derby day", Body: "home", Tipoff: "2024-05-02"}))

		got, err := service.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Derby day", got.Title)
		assert.Equal(t, "home", got.Body)
		assert.Equal(t, "2024-05-02", got.Tipoff)
		assert.Equal(t, alice.ID, got.AuthorID)
	})

	t.Run("unchanged update still found", func(t *testing.T) {
		assert.NoError(t, service.Update(ctx, created.ID, GameInput{Title: "Derby day", Body: "home", Tipoff: "2024-05-02"}))
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		_, err := service.GetForModify(ctx, bob, created.ID)
		assert.ErrorIs(t, err, access.ErrForbidden)
	})

	t.Run("missing id is not found for anyone", func(t *testing.T) {
		for _, u := range []*models.User{alice, bob, nil} {
			_, err := service.GetForModify(ctx, u, 9999)
			assert.ErrorIs(t, err, storage.ErrNotFound)
		}
		assert.ErrorIs(t, service.Update(ctx, 9999, GameInput{Title: "x"}), storage.ErrNotFound)
	})

	t.Run("delete removes exactly one row", func(t *testing.T) {
		other, err := service.Create(ctx, bob.ID, GameInput{Title: "Cup", Tipoff: "2024-01-01"})
		require.NoError(t, err)

		require.NoError(t, service.Delete(ctx, created.ID))

		_, err = service.GetByID(ctx, created.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		games, err := service.ListAll(ctx)
		require.NoError(t, err)
		require.Len(t, games, 1)
		assert.Equal(t, other.ID, games[0].ID)

		assert.ErrorIs(t, service.Delete(ctx, created.ID), storage.ErrNotFound)
	})
}

func TestGameService_FieldsStoredAsTyped(t *testing.T) {
	ctx := context.Background()
	st := setupSQLite(t)
	service := NewGameService(st, nil)

	alice := createUser(t, st, "alice")

	created, err := service.Create(ctx, alice.ID, GameInput{Title: "  Derby ", Body: " notes\n", Tipoff: "2024-05-01"})
	require.NoError(t, err)

	games, err := service.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "  Derby ", games[0].Title)
	assert.Equal(t, " notes\n", games[0].Body)

	blank, err := service.Create(ctx, alice.ID, GameInput{Title: "   "})
	require.NoError(t, err)

	got, err := service.GetByID(ctx, blank.ID)
	require.NoError(t, err)
	assert.Equal(t, "   ", got.Title)

	require.NoError(t, service.Update(ctx, created.ID, GameInput{Title: " Derby II ", Tipoff: "2024-05-02"}))

	got, err = service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, " Derby II ", got.Title)

	err = service.Update(ctx, created.ID, GameInput{Title: "", Tipoff: "2024-05-03"})
	assert.ErrorIs(t, err, ErrTitleRequired)

	got, err = service.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-02", got.Tipoff)
}

func TestGameService_ListAll_Order(t *testing.T) {
	ctx := context.Background()
	st := setupSQLite(t)
	service := NewGameService(st, nil)

	author := createUser(t, st, "alice")

	for _, tipoff := range []string{"2024-03-01", "2024-05-01", "2023-12-31", "2024-04-15T18:30"} {
		_, err := service.Create(ctx, author.ID, GameInput{Title: "game " + tipoff, Tipoff: tipoff})
		require.NoError(t, err)
	}

	games, err := service.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, games, 4)

	var got []string
	for _, g := range games {
		got = append(got, g.Tipoff)
	}
	assert.Equal(t, []string{"2024-05-01", "2024-04-15T18:30", "2024-03-01", "2023-12-31"}, got)
}

func TestGameService_IDsNotReused(t *testing.T) {
	ctx := context.Background()
	st := setupSQLite(t)
	service := NewGameService(st, nil)

	author := createUser(t, st, "alice")

	first, err := service.Create(ctx, author.ID, GameInput{Title: "one"})
	require.NoError(t, err)
	require.NoError(t, service.Delete(ctx, first.ID))

	second, err := service.Create(ctx, author.ID, GameInput{Title: "two"})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
}

func TestGameService_UnknownAuthor(t *testing.T) {
	st := setupSQLite(t)
	service := NewGameService(st, nil)

	_, err := service.Create(context.Background(), 4242, GameInput{Title: "orphan"})
	assert.Error(t, err)
}
