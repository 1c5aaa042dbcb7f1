package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chandan-Choudhury/ImageHub-Backend/internal/models"
)

func TestStorage_CreateUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	uid, err := storage.CreateUser(ctx, models.User{
		Name:         "A",
		Email:        "a@x.com",
		PasswordHash: "hashedpassword",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, uid)

	got, err := storage.GetUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, uid, got.UID)
	assert.Equal(t, "A", got.Name)
	assert.False(t, got.IsSubscribed)
	assert.Nil(t, got.SubscriptionExpiry)
}

func TestStorage_CreateUser_DuplicateEmail(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	_, err := storage.CreateUser(ctx, models.User{
		Name: "first", Email: "dup@x.com", PasswordHash: "h1",
	})
	require.NoError(t, err)

	_, err = storage.CreateUser(ctx, models.User{
		Name: "second", Email: "dup@x.com", PasswordHash: "h2",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestStorage_CreateUser_ConcurrentDuplicates(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	const workers = 5
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = storage.CreateUser(ctx, models.User{
				Name:         fmt.Sprintf("racer-%d", i),
				Email:        "race@x.com",
				PasswordHash: "h",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrEmailTaken)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent signup must win")
}

func TestStorage_GetUser_NotFound(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	_, err := storage.GetUser(ctx, "11111111-2222-3333-4444-555555555555")
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = storage.GetUserByEmail(ctx, "nobody@x.com")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_UpdateSubscriptionFields(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := factory.CreateUser(t, "sub-user", "sub@x.com", "h")
	expiry := time.Now().UTC().AddDate(0, 0, 30).Truncate(time.Second)

	err := storage.UpdateSubscriptionFields(ctx, uid,
		"cus_123", "sub_456", "price_789", true, &expiry)
	require.NoError(t, err)

	got, err := storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, "cus_123", got.CustomerID)
	assert.Equal(t, "sub_456", got.SubscriptionID)
	assert.Equal(t, "price_789", got.PriceID)
	assert.True(t, got.IsSubscribed)
	require.NotNil(t, got.SubscriptionExpiry)
	assert.WithinDuration(t, expiry, *got.SubscriptionExpiry, time.Second)
}

func TestStorage_UpdateSubscriptionFields_UnknownUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	err := storage.UpdateSubscriptionFields(context.Background(),
		"11111111-2222-3333-4444-555555555555", "c", "s", "p", true, nil)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_SetSubscribed(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := factory.CreateSubscribedUser(t, "pro", "pro@x.com", "h",
		"cus_1", "sub_1", "price_1", time.Now().AddDate(0, 0, 30))

	require.NoError(t, storage.SetSubscribed(ctx, uid, false))

	got, err := storage.GetUser(ctx, uid)
	require.NoError(t, err)
	assert.False(t, got.IsSubscribed)
	// Дата истечения при переключении флага не трогается
	assert.NotNil(t, got.SubscriptionExpiry)

	err = storage.SetSubscribed(ctx, "11111111-2222-3333-4444-555555555555", true)
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestStorage_ImageLibrary_AppendAndList(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)

	uid := factory.CreateUser(t, "uploader", "uploader@x.com", "h")

	// Свежий пользователь без библиотеки
	_, err := storage.ListImageURLs(ctx, uid)
	require.ErrorIs(t, err, ErrLibraryNotFound)

	// N последовательных одиночных загрузок
	var want []string
	for i := range 4 {
		url := fmt.Sprintf("https://cdn.example.com/%s/img-%d.png", uid, i)
		require.NoError(t, storage.AppendImageURLs(ctx, uid, []string{url}))
		want = append(want, url)
	}

	// Пакетная дозапись сохраняет порядок внутри пакета
	batch := []string{
		"https://cdn.example.com/" + uid + "/batch-0.png",
		"https://cdn.example.com/" + uid + "/batch-1.png",
		"https://cdn.example.com/" + uid + "/batch-2.png",
	}
	require.NoError(t, storage.AppendImageURLs(ctx, uid, batch))
	want = append(want, batch...)

	got, err := storage.ListImageURLs(ctx, uid)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStorage_AppendImageURLs_EmptyBatch(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()
	factory := NewTestDataFactory(storage)
	uid := factory.CreateUser(t, "empty", "empty@x.com", "h")

	require.NoError(t, storage.AppendImageURLs(ctx, uid, nil))

	_, err := storage.ListImageURLs(ctx, uid)
	require.ErrorIs(t, err, ErrLibraryNotFound)
}

func TestStorage_AppendImageURLs_UnknownUser(t *testing.T) {
	storage, cleanup := setupTestDatabase(t)
	defer cleanup()

	ctx := context.Background()

	err := storage.AppendImageURLs(ctx, "00000000-0000-0000-0000-000000000001",
		[]string{"https://img.test/x/1.png"})
	require.ErrorIs(t, err, ErrUserNotFound)
}
