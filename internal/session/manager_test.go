package session

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeAPI направляет вызовы в функции-поля и считает обращения к сети.
type fakeAPI struct {
	loginFn   func(ctx context.Context, role Role, identifier, password string) (LoginPayload, error)
	meFn      func(ctx context.Context, token string) (User, error)
	refreshFn func(ctx context.Context, token string) (LoginPayload, error)
	logoutFn  func(ctx context.Context, token string) error

	loginCalls   atomic.Int32
	meCalls      atomic.Int32
	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32
}

func (f *fakeAPI) Login(ctx context.Context, role Role, identifier, password string) (LoginPayload, error) {
	f.loginCalls.Add(1)
	if f.loginFn == nil {
		return LoginPayload{}, errors.New("login not stubbed")
	}
	return f.loginFn(ctx, role, identifier, password)
}

func (f *fakeAPI) Me(ctx context.Context, token string) (User, error) {
	f.meCalls.Add(1)
	if f.meFn == nil {
		return User{}, errors.New("me not stubbed")
	}
	return f.meFn(ctx, token)
}

func (f *fakeAPI) Refresh(ctx context.Context, token string) (LoginPayload, error) {
	f.refreshCalls.Add(1)
	if f.refreshFn == nil {
		return LoginPayload{}, errors.New("refresh not stubbed")
	}
	return f.refreshFn(ctx, token)
}

func (f *fakeAPI) Logout(ctx context.Context, token string) error {
	f.logoutCalls.Add(1)
	if f.logoutFn == nil {
		return nil
	}
	return f.logoutFn(ctx, token)
}

func unauthorized() error {
	return &APIError{StatusCode: http.StatusUnauthorized, Message: "token expired"}
}

var testUser = User{ID: "u-1", Name: "Анна", Email: "anna@example.com", Role: "employee"}

func TestInitializeWithoutTokenSkipsNetwork(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{}
	m := NewManager(api, NewMemoryStore(), nil)

	require.NoError(t, m.Initialize(context.Background()))

	snap := m.Snapshot()
	require.Equal(t, Anonymous, snap.State)
	require.False(t, snap.IsAuthenticated())
	require.Zero(t, api.meCalls.Load())
	require.Zero(t, api.refreshCalls.Load())
}

func TestInitializeRestoresValidToken(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			require.Equal(t, "stored-token", token)
			return testUser, nil
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("stored-token"))
	m := NewManager(api, store, nil)

	require.NoError(t, m.Initialize(context.Background()))

	snap := m.Snapshot()
	require.True(t, snap.IsAuthenticated())
	require.Equal(t, "stored-token", snap.Token)
	require.Equal(t, testUser.ID, snap.User.ID)
	require.Zero(t, api.refreshCalls.Load())
}

func TestInitializeExpiredTokenRefreshesOnce(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			return User{}, unauthorized()
		},
		refreshFn: func(ctx context.Context, token string) (LoginPayload, error) {
			require.Equal(t, "stale-token", token)
			return LoginPayload{AccessToken: "fresh-token", User: testUser}, nil
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("stale-token"))
	m := NewManager(api, store, nil)

	require.NoError(t, m.Initialize(context.Background()))

	snap := m.Snapshot()
	require.True(t, snap.IsAuthenticated())
	require.Equal(t, "fresh-token", snap.Token)
	require.Equal(t, int32(1), api.refreshCalls.Load())

	// Новый токен сохранён
	stored, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "fresh-token", stored)
}

func TestInitializeRefreshFailureClearsEverything(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			return User{}, unauthorized()
		},
		refreshFn: func(ctx context.Context, token string) (LoginPayload, error) {
			return LoginPayload{}, unauthorized()
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("dead-token"))
	m := NewManager(api, store, nil)

	require.NoError(t, m.Initialize(context.Background()))

	snap := m.Snapshot()
	require.Equal(t, Anonymous, snap.State)
	require.Empty(t, snap.Token)
	require.Nil(t, snap.User)
	// Ровно одна попытка продления, без повторов
	require.Equal(t, int32(1), api.refreshCalls.Load())

	stored, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestInitializeNetworkFailureKeepsStoredToken(t *testing.T) {
	t.Parallel()
	var serverUp atomic.Bool
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			if !serverUp.Load() {
				return User{}, errors.New("connection refused")
			}
			return testUser, nil
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("stored-token"))
	m := NewManager(api, store, nil)

	err := m.Initialize(context.Background())
	require.Error(t, err)
	require.False(t, IsUnauthorized(err))

	// Сбой сети — не выход из сессии: токен в хранилище жив,
	// а охрана маршрутов не гонит на login
	snap := m.Snapshot()
	require.Equal(t, Uninitialized, snap.State)
	require.Equal(t, Wait, Decide(snap, RoleEmployee))

	stored, lerr := store.Load()
	require.NoError(t, lerr)
	require.Equal(t, "stored-token", stored)

	// Повторная инициализация после восстановления сети
	serverUp.Store(true)
	require.NoError(t, m.Initialize(context.Background()))
	require.True(t, m.Snapshot().IsAuthenticated())
}

func TestLoginSuccessPublishesAtomicPair(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		loginFn: func(ctx context.Context, role Role, identifier, password string) (LoginPayload, error) {
			require.Equal(t, RoleEmployee, role)
			return LoginPayload{AccessToken: "login-token", User: testUser}, nil
		},
	}
	store := NewMemoryStore()
	m := NewManager(api, store, nil)
	require.NoError(t, m.Initialize(context.Background()))

	result := m.Login(context.Background(), RoleEmployee, "anna@example.com", "secret")
	require.True(t, result.Success)
	require.NotNil(t, result.User)

	snap := m.Snapshot()
	require.True(t, snap.IsAuthenticated())
	require.Equal(t, "login-token", snap.Token)
	require.Equal(t, testUser.Email, snap.User.Email)

	stored, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "login-token", stored)
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			return testUser, nil
		},
		loginFn: func(ctx context.Context, role Role, identifier, password string) (LoginPayload, error) {
			return LoginPayload{}, unauthorized()
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("existing-token"))
	m := NewManager(api, store, nil)
	require.NoError(t, m.Initialize(context.Background()))
	require.True(t, m.Snapshot().IsAuthenticated())

	result := m.Login(context.Background(), RoleEmployee, "anna@example.com", "wrong")
	require.False(t, result.Success)
	require.Error(t, result.Error)

	// Действующая сессия пережила неудачный вход
	snap := m.Snapshot()
	require.True(t, snap.IsAuthenticated())
	require.Equal(t, "existing-token", snap.Token)
	require.False(t, snap.Loading)
}

func TestLogoutClearsLocallyEvenIfServerFails(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			return testUser, nil
		},
		logoutFn: func(ctx context.Context, token string) error {
			return errors.New("server unreachable")
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("existing-token"))
	m := NewManager(api, store, nil)
	require.NoError(t, m.Initialize(context.Background()))

	m.Logout(context.Background())

	snap := m.Snapshot()
	require.Equal(t, Anonymous, snap.State)
	require.Empty(t, snap.Token)
	require.Nil(t, snap.User)
	require.Equal(t, int32(1), api.logoutCalls.Load())

	stored, err := store.Load()
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestLogoutSupersedesInflightLogin(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{
		loginFn: func(ctx context.Context, role Role, identifier, password string) (LoginPayload, error) {
			close(started)
			<-release
			return LoginPayload{AccessToken: "slow-token", User: testUser}, nil
		},
	}
	m := NewManager(api, NewMemoryStore(), nil)
	require.NoError(t, m.Initialize(context.Background()))

	done := make(chan LoginResult, 1)
	go func() {
		done <- m.Login(context.Background(), RoleEmployee, "anna@example.com", "secret")
	}()

	<-started
	m.Logout(context.Background())
	close(release)

	result := <-done
	require.False(t, result.Success)

	// Результат устаревшего login не воскресил сессию
	snap := m.Snapshot()
	require.Equal(t, Anonymous, snap.State)
	require.Empty(t, snap.Token)
	require.Nil(t, snap.User)
}

func TestRefreshFailureExpiresSession(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			return testUser, nil
		},
		refreshFn: func(ctx context.Context, token string) (LoginPayload, error) {
			return LoginPayload{}, unauthorized()
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("existing-token"))
	m := NewManager(api, store, nil)
	require.NoError(t, m.Initialize(context.Background()))

	err := m.RefreshAuthToken(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)

	snap := m.Snapshot()
	require.Equal(t, Anonymous, snap.State)
	require.Empty(t, snap.Token)
	require.Nil(t, snap.User)

	stored, lerr := store.Load()
	require.NoError(t, lerr)
	require.Empty(t, stored)
}

func TestLoginDuringRefreshKeepsNewerToken(t *testing.T) {
	t.Parallel()
	started := make(chan struct{})
	release := make(chan struct{})
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			return testUser, nil
		},
		refreshFn: func(ctx context.Context, token string) (LoginPayload, error) {
			close(started)
			<-release
			return LoginPayload{}, unauthorized()
		},
		loginFn: func(ctx context.Context, role Role, identifier, password string) (LoginPayload, error) {
			return LoginPayload{AccessToken: "token-B", User: testUser}, nil
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("token-A"))
	m := NewManager(api, store, nil)
	require.NoError(t, m.Initialize(context.Background()))

	done := make(chan error, 1)
	go func() {
		done <- m.RefreshAuthToken(context.Background())
	}()

	<-started
	result := m.Login(context.Background(), RoleEmployee, "anna@example.com", "secret")
	require.True(t, result.Success)
	close(release)
	<-done

	// Провал устаревшего refresh не тронул ни сессию нового login,
	// ни его сохранённый токен
	snap := m.Snapshot()
	require.True(t, snap.IsAuthenticated())
	require.Equal(t, "token-B", snap.Token)

	stored, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, "token-B", stored)
}

func TestRefreshCancellationKeepsSession(t *testing.T) {
	t.Parallel()
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			return testUser, nil
		},
		refreshFn: func(ctx context.Context, token string) (LoginPayload, error) {
			return LoginPayload{}, context.Canceled
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("existing-token"))
	m := NewManager(api, store, nil)
	require.NoError(t, m.Initialize(context.Background()))

	err := m.RefreshAuthToken(context.Background())
	require.ErrorIs(t, err, context.Canceled)

	// Отмена запроса не повод терять сессию
	snap := m.Snapshot()
	require.True(t, snap.IsAuthenticated())
	require.Equal(t, "existing-token", snap.Token)
}

func TestRefreshSwapsTokenAndUserTogether(t *testing.T) {
	t.Parallel()
	renewed := User{ID: "u-1", Name: "Анна", Email: "anna@example.com", Role: "employee", Department: "qa"}
	api := &fakeAPI{
		meFn: func(ctx context.Context, token string) (User, error) {
			return testUser, nil
		},
		refreshFn: func(ctx context.Context, token string) (LoginPayload, error) {
			require.Equal(t, "existing-token", token)
			return LoginPayload{AccessToken: "renewed-token", User: renewed}, nil
		},
	}
	store := NewMemoryStore()
	require.NoError(t, store.Save("existing-token"))
	m := NewManager(api, store, nil)
	require.NoError(t, m.Initialize(context.Background()))

	require.NoError(t, m.RefreshAuthToken(context.Background()))

	snap := m.Snapshot()
	require.Equal(t, "renewed-token", snap.Token)
	require.Equal(t, "qa", snap.User.Department)
}

func TestRefreshWithoutSession(t *testing.T) {
	t.Parallel()
	m := NewManager(&fakeAPI{}, NewMemoryStore(), nil)
	require.NoError(t, m.Initialize(context.Background()))

	err := m.RefreshAuthToken(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
}
