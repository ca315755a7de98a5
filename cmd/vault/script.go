package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/Hakuto4838/skipvault/vault"
)

var errUsage = errors.New("usage")

// result 是腳本中單一指令的執行結果
type result struct {
	Line    int    `json:"line"`
	Command string `json:"command"`
	Target  string `json:"target,omitempty"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type command struct {
	args  []string // 參數名稱，只用於錯誤訊息
	apply func(m *vault.Manager, a []string) (string, any, error)
}

var commands = map[string]command{
	"adduser": {[]string{"user", "password"}, func(m *vault.Manager, a []string) (string, any, error) {
		id, err := m.AddUser(a[0], a[1])
		if err != nil {
			return "", nil, err
		}
		return "user added", id.String(), nil
	}},
	"deluser": {[]string{"user", "password"}, func(m *vault.Manager, a []string) (string, any, error) {
		return "user deleted", nil, m.DeleteUser(a[0], a[1])
	}},
	"auth": {[]string{"user", "password"}, func(m *vault.Manager, a []string) (string, any, error) {
		return "authenticated", nil, m.Authenticate(a[0], a[1])
	}},
	"authapp": {[]string{"user", "app", "password"}, func(m *vault.Manager, a []string) (string, any, error) {
		return "authenticated", nil, m.AuthenticateApp(a[0], a[2], a[1])
	}},
	"reset": {[]string{"user", "old", "new"}, func(m *vault.Manager, a []string) (string, any, error) {
		return "password reset", nil, m.ResetPassword(a[0], a[1], a[2])
	}},
	"resetapp": {[]string{"user", "app", "old", "new"}, func(m *vault.Manager, a []string) (string, any, error) {
		return "app password reset", nil, m.ResetAppPassword(a[0], a[1], a[2], a[3])
	}},
	"addapp": {[]string{"user", "password", "app", "app-password"}, func(m *vault.Manager, a []string) (string, any, error) {
		return "app password added", nil, m.NewAppPassword(a[0], a[1], a[2], a[3])
	}},
	"users": {nil, func(m *vault.Manager, a []string) (string, any, error) {
		return "users listed", m.Users(), nil
	}},
	"stats": {[]string{"user"}, func(m *vault.Manager, a []string) (string, any, error) {
		st, err := m.AppStats(a[0])
		if err != nil {
			return "", nil, err
		}
		return "app table stats", st, nil
	}},
}

func (c command) usage(name string) string {
	parts := make([]string, 0, len(c.args)+1)
	parts = append(parts, name)
	for _, a := range c.args {
		parts = append(parts, "<"+a+">")
	}
	return strings.Join(parts, " ")
}

// runScript 逐行執行指令。單一指令失敗不會中斷腳本，只有讀取失敗會回傳錯誤。
// 空行與 # 開頭的行會被略過。
func runScript(m *vault.Manager, r io.Reader) ([]result, error) {
	var results []result
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		results = append(results, execute(m, lineNo, fields))
	}
	if err := sc.Err(); err != nil {
		return results, errors.Wrap(err, "read script")
	}
	return results, nil
}

func execute(m *vault.Manager, lineNo int, fields []string) result {
	name, args := strings.ToLower(fields[0]), fields[1:]
	res := result{Line: lineNo, Command: name}
	if len(args) > 0 {
		res.Target = args[0]
	}

	cmd, ok := commands[name]
	var err error
	switch {
	case !ok:
		err = errors.Newf("unknown command %q", name)
	case len(args) != len(cmd.args):
		err = errors.Wrapf(errUsage, "%s", cmd.usage(name))
	default:
		res.Message, res.Data, err = cmd.apply(m, args)
	}
	if err != nil {
		res.Message = err.Error()
		res.Data = nil
		return res
	}
	res.OK = true
	return res
}
