package vault

import (
	"github.com/google/uuid"

	"github.com/Hakuto4838/skipvault/container/doublehash"
)

// User 保存使用者自己的密碼摘要以及每個 app 的密碼摘要
type User struct {
	Username string
	ID       uuid.UUID

	digest uint64
	apps   *doublehash.Table[string, uint64]
}

func newUser(username, password string, apps doublehash.Config) (*User, error) {
	tbl, err := doublehash.New[string, uint64](apps, doublehash.StringHash)
	if err != nil {
		return nil, err
	}
	return &User{
		Username: username,
		ID:       uuid.New(),
		digest:   Digest(password),
		apps:     tbl,
	}, nil
}

func (u *User) matches(password string) bool {
	return u.digest == Digest(password)
}

func (u *User) setPassword(password string) {
	u.digest = Digest(password)
}

// appDigest 回傳 app 的密碼摘要，沒有設定時 ok 為 false
func (u *User) appDigest(app string) (d uint64, ok bool, err error) {
	return u.apps.Get(app)
}

func (u *User) setAppPassword(app, password string) error {
	_, _, err := u.apps.Put(app, Digest(password))
	return err
}

// Apps 依 slot 順序回傳已設定密碼的 app 名稱
func (u *User) Apps() []string {
	return u.apps.Keys()
}
