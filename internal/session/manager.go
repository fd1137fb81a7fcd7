package session

import (
	"context"
	"errors"
	"log"
	"sync"
)

// State — фаза жизненного цикла сессии.
type State int

const (
	// Uninitialized: Initialize ещё не вызывался, о сессии ничего не известно.
	Uninitialized State = iota
	// Checking: идёт восстановление сессии, решений о доступе принимать нельзя.
	Checking
	// Authenticated: есть токен и идентичность пользователя.
	Authenticated
	// Anonymous: пользователь точно не вошёл.
	Anonymous
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Checking:
		return "checking"
	case Authenticated:
		return "authenticated"
	case Anonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// ErrSessionExpired возвращается, когда refresh не смог продлить сессию.
var ErrSessionExpired = errors.New("session: expired")

// API — серверные вызовы, которые нужны менеджеру сессии.
type API interface {
	Login(ctx context.Context, role Role, identifier, password string) (LoginPayload, error)
	Me(ctx context.Context, token string) (User, error)
	Refresh(ctx context.Context, token string) (LoginPayload, error)
	Logout(ctx context.Context, token string) error
}

// Snapshot — согласованный срез состояния сессии. Токен и пользователь
// всегда меняются парой, наблюдатель никогда не увидит токен без владельца.
type Snapshot struct {
	State   State
	Token   string
	User    *User
	Loading bool
}

// IsAuthenticated: токен и пользователь присутствуют одновременно.
func (s Snapshot) IsAuthenticated() bool {
	return s.State == Authenticated && s.Token != "" && s.User != nil
}

// LoginResult — исход попытки входа.
type LoginResult struct {
	Success bool
	User    *User
	Error   error
}

// Manager владеет состоянием сессии: восстановление при старте,
// вход, выход, тихое продление токена.
//
// Мьютекс защищает только состояние и никогда не удерживается на время
// сетевого вызова. Вместо этого каждый вызов запоминает поколение gen
// перед уходом в сеть и коммитит результат только если поколение не
// сменилось: logout или повторный login обесценивают результаты всех
// запросов, стартовавших до них.
type Manager struct {
	api   API
	store TokenStore
	log   *log.Logger

	mu      sync.Mutex
	state   State
	token   string
	user    *User
	loading bool
	gen     uint64
}

func NewManager(api API, store TokenStore, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		api:   api,
		store: store,
		log:   logger,
		state: Uninitialized,
	}
}

// Snapshot возвращает текущее состояние одним атомарным срезом.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:   m.state,
		Token:   m.token,
		User:    m.user,
		Loading: m.loading,
	}
}

// Initialize восстанавливает сессию из сохранённого токена. Вызывается
// один раз при старте. Без токена сессия сразу Anonymous — ни одного
// сетевого запроса не делается. С токеном: Me, при 401 ровно одна
// попытка Refresh, при неудаче — чистый Anonymous и стертый store.
func (m *Manager) Initialize(ctx context.Context) error {
	stored, err := m.store.Load()
	if err != nil {
		m.log.Printf("session: load token: %v", err)
		stored = ""
	}

	if stored == "" {
		m.mu.Lock()
		m.state = Anonymous
		m.mu.Unlock()
		return nil
	}

	m.mu.Lock()
	m.state = Checking
	m.loading = true
	gen := m.gen
	m.mu.Unlock()

	user, err := m.api.Me(ctx, stored)
	if err == nil {
		m.commit(gen, stored, &user, false)
		return nil
	}

	if !IsUnauthorized(err) {
		// Сеть или сервер: токен в хранилище остаётся, состояние
		// возвращается в Uninitialized — это сбой восстановления,
		// а не выход из сессии; повторный Initialize попробует снова
		m.settle(gen, Uninitialized)
		return err
	}

	// Токен протух: единственная попытка тихого продления
	payload, rerr := m.api.Refresh(ctx, stored)
	if rerr != nil {
		m.log.Printf("session: silent refresh failed: %v", rerr)
		m.expire(gen)
		return nil
	}

	if serr := m.store.Save(payload.AccessToken); serr != nil {
		m.log.Printf("session: save token: %v", serr)
	}
	m.commit(gen, payload.AccessToken, &payload.User, false)
	return nil
}

// Login выполняет вход. Неудача не трогает текущее состояние:
// пользователь, у которого уже была сессия, её не теряет из-за
// опечатки в пароле.
func (m *Manager) Login(ctx context.Context, role Role, identifier, password string) LoginResult {
	m.mu.Lock()
	gen := m.gen
	m.loading = true
	m.mu.Unlock()

	payload, err := m.api.Login(ctx, role, identifier, password)
	if err != nil {
		m.mu.Lock()
		if m.gen == gen {
			m.loading = false
		}
		m.mu.Unlock()
		return LoginResult{Success: false, Error: err}
	}

	m.mu.Lock()
	if m.gen != gen {
		// Пока шёл запрос, случился logout или другой login:
		// его результат не публикуется и не сохраняется
		m.mu.Unlock()
		return LoginResult{Success: false, Error: errors.New("session: superseded")}
	}
	m.gen++
	m.state = Authenticated
	m.token = payload.AccessToken
	user := payload.User
	m.user = &user
	m.loading = false
	if serr := m.store.Save(payload.AccessToken); serr != nil {
		m.log.Printf("session: save token: %v", serr)
	}
	m.mu.Unlock()

	return LoginResult{Success: true, User: &user}
}

// Logout завершает сессию. Серверный вызов best-effort: его неудача
// логируется и не мешает локальной очистке. Локальное состояние
// очищается всегда.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	token := m.token
	m.gen++
	m.state = Anonymous
	m.token = ""
	m.user = nil
	m.loading = false
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.log.Printf("session: clear token: %v", err)
	}

	if token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			m.log.Printf("session: server logout: %v", err)
		}
	}
}

// RefreshAuthToken продлевает сессию по текущему токену. При любой
// неудаче, кроме отмены контекста, сессия полностью очищается:
// полуживых состояний с токеном без пользователя не бывает.
func (m *Manager) RefreshAuthToken(ctx context.Context) error {
	m.mu.Lock()
	token := m.token
	gen := m.gen
	m.mu.Unlock()

	if token == "" {
		return ErrSessionExpired
	}

	payload, err := m.api.Refresh(ctx, token)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		m.expire(gen)
		return ErrSessionExpired
	}

	if serr := m.store.Save(payload.AccessToken); serr != nil {
		m.log.Printf("session: save token: %v", serr)
	}
	m.commit(gen, payload.AccessToken, &payload.User, false)
	return nil
}

// Token возвращает текущий токен доступа; пустая строка — сессии нет.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// commit публикует пару (токен, пользователь), если поколение совпало.
func (m *Manager) commit(gen uint64, token string, user *User, loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	m.state = Authenticated
	m.token = token
	m.user = user
	m.loading = loading
}

// settle переводит сессию в состояние без пользователя, не трогая
// хранилище, если поколение совпало.
func (m *Manager) settle(gen uint64, state State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	m.state = state
	m.token = ""
	m.user = nil
	m.loading = false
}

// expire очищает сессию вместе с хранилищем. Проверка поколения и
// очистка идут под одним мьютексом: провал устаревшего refresh не
// сотрёт токен, который успел сохранить более поздний login.
func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen != gen {
		return
	}
	m.state = Anonymous
	m.token = ""
	m.user = nil
	m.loading = false
	if err := m.store.Clear(); err != nil {
		m.log.Printf("session: clear token: %v", err)
	}
}
