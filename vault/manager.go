// Package vault 是建立在 skip list 與 double hash 表上的記憶體內密碼管理器。
// 使用者依名稱存放在 skip list，每位使用者另有一張固定容量的 app 密碼表。
package vault

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Hakuto4838/skipvault/config"
	"github.com/Hakuto4838/skipvault/container"
	"github.com/Hakuto4838/skipvault/container/doublehash"
	"github.com/Hakuto4838/skipvault/container/skiplist"
)

var (
	ErrUserExists     = errors.New("user already exists")
	ErrNoSuchUser     = errors.New("no such user exists")
	ErrAuthFailed     = errors.New("failed to authenticate user")
	ErrNoPassword     = errors.New("no password found")
	ErrPasswordExists = errors.New("password already set up")
)

// UserInfo 是對外公開的使用者摘要，不含任何密碼資料
type UserInfo struct {
	Username string    `json:"username"`
	ID       uuid.UUID `json:"id"`
	Apps     int       `json:"apps"`
}

type Manager struct {
	mu     sync.Mutex
	users  *skiplist.SkipList[string, *User]
	apps   doublehash.Config
	logger *zap.Logger
}

func NewManager(cfg config.StoreConfig, logger *zap.Logger) (*Manager, error) {
	if err := cfg.Apps.Validate(); err != nil {
		return nil, errors.Wrap(err, "app table config")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		users:  skiplist.New[string, *User](cfg.Seed),
		apps:   cfg.Apps,
		logger: logger,
	}, nil
}

func checkName(kind, name string) error {
	if name == "" {
		return errors.Wrapf(container.ErrInvalidArgument, "empty %s", kind)
	}
	return nil
}

// lookup 必須在持有 mu 時呼叫
func (m *Manager) lookup(username string) (*User, error) {
	if err := checkName("username", username); err != nil {
		return nil, err
	}
	u, ok, err := m.users.Get(username)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrNoSuchUser, "user %q", username)
	}
	return u, nil
}

// authenticate 必須在持有 mu 時呼叫
func (m *Manager) authenticate(username, password string) (*User, error) {
	u, err := m.lookup(username)
	if err != nil {
		return nil, err
	}
	if !u.matches(password) {
		m.logger.Warn("authentication failed", zap.String("user", username))
		return nil, errors.Wrapf(ErrAuthFailed, "user %q", username)
	}
	return u, nil
}

// authenticateApp 必須在持有 mu 時呼叫
func (m *Manager) authenticateApp(username, password, app string) (*User, error) {
	if err := checkName("app name", app); err != nil {
		return nil, err
	}
	u, err := m.lookup(username)
	if err != nil {
		return nil, err
	}
	d, ok, err := u.appDigest(app)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrNoPassword, "user %q app %q", username, app)
	}
	if d != Digest(password) {
		m.logger.Warn("app authentication failed", zap.String("user", username), zap.String("app", app))
		return nil, errors.Wrapf(ErrAuthFailed, "user %q app %q", username, app)
	}
	return u, nil
}

// AddUser 建立新使用者並回傳其 ID
func (m *Manager) AddUser(username, password string) (uuid.UUID, error) {
	if err := checkName("username", username); err != nil {
		return uuid.Nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	exists, err := m.users.ContainsKey(username)
	if err != nil {
		return uuid.Nil, err
	}
	if exists {
		return uuid.Nil, errors.Wrapf(ErrUserExists, "user %q", username)
	}
	u, err := newUser(username, password, m.apps)
	if err != nil {
		return uuid.Nil, err
	}
	if _, _, err := m.users.Put(username, u); err != nil {
		return uuid.Nil, err
	}
	m.logger.Info("user added", zap.String("user", username), zap.Stringer("id", u.ID))
	return u.ID, nil
}

// DeleteUser 驗證密碼後移除使用者
func (m *Manager) DeleteUser(username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.authenticate(username, password); err != nil {
		return err
	}
	if _, _, err := m.users.Remove(username); err != nil {
		return err
	}
	m.logger.Info("user deleted", zap.String("user", username))
	return nil
}

// Authenticate 驗證使用者本身的密碼
func (m *Manager) Authenticate(username, password string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.authenticate(username, password)
	return err
}

// AuthenticateApp 驗證使用者在某個 app 的密碼，不檢查使用者本身的密碼
func (m *Manager) AuthenticateApp(username, password, app string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.authenticateApp(username, password, app)
	return err
}

func (m *Manager) ResetPassword(username, oldPassword, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.authenticate(username, oldPassword)
	if err != nil {
		return err
	}
	u.setPassword(newPassword)
	m.logger.Info("password reset", zap.String("user", username))
	return nil
}

// ResetAppPassword 只能修改已經存在的 app 密碼
func (m *Manager) ResetAppPassword(username, app, oldPassword, newPassword string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.authenticateApp(username, oldPassword, app)
	if err != nil {
		return err
	}
	if err := u.setAppPassword(app, newPassword); err != nil {
		return err
	}
	m.logger.Info("app password reset", zap.String("user", username), zap.String("app", app))
	return nil
}

// NewAppPassword 以使用者密碼驗證後新增 app 密碼。
// app 表已滿時回傳 container.ErrCapacityExhausted。
func (m *Manager) NewAppPassword(username, userPassword, app, appPassword string) error {
	if err := checkName("app name", app); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	u, err := m.authenticate(username, userPassword)
	if err != nil {
		return err
	}
	exists, err := u.apps.ContainsKey(app)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(ErrPasswordExists, "user %q app %q", username, app)
	}
	if err := u.setAppPassword(app, appPassword); err != nil {
		m.logger.Warn("app password rejected", zap.String("user", username), zap.String("app", app), zap.Error(err))
		return errors.Wrapf(err, "user %q app %q", username, app)
	}
	m.logger.Info("app password added", zap.String("user", username), zap.String("app", app))
	return nil
}

// ListUsers 依字典序回傳所有使用者名稱
func (m *Manager) ListUsers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users.Keys()
}

func (m *Manager) NumberUsers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users.Size()
}

// Users 依字典序回傳使用者摘要
func (m *Manager) Users() []UserInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	infos := make([]UserInfo, 0, m.users.Size())
	for _, u := range m.users.All() {
		infos = append(infos, UserInfo{Username: u.Username, ID: u.ID, Apps: u.apps.Size()})
	}
	return infos
}

// AppStats 回傳使用者 app 密碼表的碰撞統計
func (m *Manager) AppStats(username string) (doublehash.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, err := m.lookup(username)
	if err != nil {
		return doublehash.Stats{}, err
	}
	return u.apps.Stats(), nil
}
