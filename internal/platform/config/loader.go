package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "APP_"

// Load layers configuration sources, lowest precedence first:
//  1. defaults from New
//  2. a YAML file when APP_CONFIG is set
//  3. environment variables prefixed with APP_ (a .env file is read first when present)
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	k := koanf.New(".")

	if path := os.Getenv(envPrefix + "CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, err
		}
	}

	// APP_DATABASE_URL -> database_url, matching the koanf tags.
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, err
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, err
	}
	cfg.ImportDateOrder = normalizeDateOrder(cfg.ImportDateOrder)
	return cfg, nil
}

func normalizeDateOrder(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "mdy", "":
		return DateOrderMDY
	case "dmy":
		return DateOrderDMY
	case "strict":
		return DateOrderStrict
	default:
		return value
	}
}
