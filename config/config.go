// Package config 讀取 vault 與 benchmark 工具共用的 TOML 設定檔
package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"

	"github.com/Hakuto4838/skipvault/container/doublehash"
	"github.com/Hakuto4838/skipvault/logutil"
)

type Config struct {
	Log   logutil.LogConfig `toml:"log"`
	Store StoreConfig       `toml:"store"`
}

// StoreConfig 控制 skip list 的亂數種子與每位使用者的 app 密碼表大小
type StoreConfig struct {
	Seed int64             `toml:"seed"`
	Apps doublehash.Config `toml:"apps"`
}

// DefaultAppTable 是每位使用者 app 密碼表的預設參數
var DefaultAppTable = doublehash.Config{
	Capacity:         20,
	Multiplier:       1,
	Modulus:          23,
	SecondaryModulus: 11,
}

func Default() Config {
	return Config{
		Log: logutil.DefaultConfig(),
		Store: StoreConfig{
			Seed: 1,
			Apps: DefaultAppTable,
		},
	}
}

// Load 以預設值為底讀入 path，未知的欄位視為錯誤
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "load config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.Newf("config %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return err
	}
	return errors.Wrap(c.Store.Apps.Validate(), "store.apps")
}
