package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

const (
	DriverFS     = "fs"
	DriverSQLite = "sqlite"
)

const (
	DefaultPort              = 8080
	DefaultStorageRoot       = "data"
	DefaultMigrationsFolder  = "migrations"
	DefaultOutboxConcurrency = 8
)

var (
	ErrMissingURL  = errors.New("url is required")
	ErrInvalidURL  = errors.New("url must be an absolute http or https url")
	ErrInvalidPort = errors.New("port out of range")
	ErrDriver      = errors.New("unknown storage driver")
)

// Identity is the server's public identity. It is established once at startup and only read afterwards.
type Identity struct {
	// Url is the public base url of the instance; actor, inbox and outbox IRIs are derived from it.
	Url *url.URL
	// Domain is the host this server vouches for in acct: handles. It is trusted as configured.
	Domain string
}

type Configuration struct {
	Identity
	// Port on which the HTTP server listens.
	Port uint16
	// Debug, if true, switches logging to a human readable console writer at debug level.
	Debug bool
	// Driver selects the storage backend: "fs" or "sqlite".
	Driver string
	// FsRoot is the root of the directory tree holding users' keys and posts when Driver is "fs".
	FsRoot string
	// DbUrl is the path to the SQLite database file when Driver is "sqlite".
	DbUrl            string
	MigrationsFolder string
	// OutboxConcurrency bounds how many posts are loaded at once while assembling an outbox.
	OutboxConcurrency int
}

// ReadConfig loads the configuration from path, or from config.toml in the working directory or /etc/gosocial
// when path is empty. Every key can be overridden by a GOSOCIAL_ prefixed environment variable.
func ReadConfig(path string) (Configuration, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("gosocial")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/gosocial")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Without an explicit path the file is optional; the environment may carry everything.
		if path != "" || !errors.As(err, &notFound) {
			return Configuration{}, fmt.Errorf("reading config: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", DefaultPort)
	v.SetDefault("debug", false)
	v.SetDefault("storage.driver", DriverFS)
	v.SetDefault("storage.root", DefaultStorageRoot)
	v.SetDefault("storage.dsn", "gosocial.db")
	v.SetDefault("migrations", DefaultMigrationsFolder)
	v.SetDefault("outbox.concurrency", DefaultOutboxConcurrency)
}

func fromViper(v *viper.Viper) (cfg Configuration, err error) {
	raw := strings.TrimSpace(v.GetString("url"))
	if raw == "" {
		return cfg, ErrMissingURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return cfg, fmt.Errorf("%w: %s", ErrInvalidURL, err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return cfg, ErrInvalidURL
	}

	domain := strings.TrimSpace(v.GetString("domain"))
	if domain == "" {
		domain = u.Host
	}

	port := v.GetInt("port")
	if port <= 0 || port > 65535 {
		return cfg, ErrInvalidPort
	}

	driver := v.GetString("storage.driver")
	if driver != DriverFS && driver != DriverSQLite {
		return cfg, fmt.Errorf("%w: %q", ErrDriver, driver)
	}

	concurrency := v.GetInt("outbox.concurrency")
	if concurrency <= 0 {
		concurrency = DefaultOutboxConcurrency
	}

	cfg = Configuration{
		Identity: Identity{
			Url:    u,
			Domain: domain,
		},
		Port:              uint16(port),
		Debug:             v.GetBool("debug"),
		Driver:            driver,
		FsRoot:            v.GetString("storage.root"),
		DbUrl:             v.GetString("storage.dsn"),
		MigrationsFolder:  v.GetString("migrations"),
		OutboxConcurrency: concurrency,
	}
	return cfg, nil
}

// ActorIRI returns the IRI of the local actor with the given username.
func (i Identity) ActorIRI(username string) *url.URL {
	return i.Url.JoinPath("users", username)
}

// InboxIRI returns the IRI of the instance's shared inbox.
func (i Identity) InboxIRI() *url.URL {
	return i.Url.JoinPath("inbox")
}
