package config

import (
	"fmt"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "TRAFFIC_ATLAS"

type ServerSettings struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type SessionSettings struct {
	Secret string `mapstructure:"secret"`
	MaxAge int    `mapstructure:"max_age"`
}

type LogSettings struct {
	Level string `mapstructure:"level"`
}

type ProfilesSettings struct {
	Path string `mapstructure:"path"`
}

type SnapshotSettings struct {
	Path string `mapstructure:"path"`
	Mode string `mapstructure:"mode"`
}

type ExportSettings struct {
	Bucket string `mapstructure:"bucket"`
	Region string `mapstructure:"region"`
	Prefix string `mapstructure:"prefix"`
}

type PaginationSettings struct {
	DefaultSize int `mapstructure:"default_size"`
}

type Settings struct {
	Server     ServerSettings     `mapstructure:"server"`
	Session    SessionSettings    `mapstructure:"session"`
	Log        LogSettings        `mapstructure:"log"`
	Profiles   ProfilesSettings   `mapstructure:"profiles"`
	Snapshot   SnapshotSettings   `mapstructure:"snapshot"`
	Export     ExportSettings     `mapstructure:"export"`
	Pagination PaginationSettings `mapstructure:"pagination"`
	// Users maps a username to its bcrypt password hash.
	Users map[string]string `mapstructure:"users"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("session.max_age", 8*60*60)
	v.SetDefault("log.level", "info")
	v.SetDefault("profiles.path", defaultProfilesPath())
	v.SetDefault("snapshot.path", "traffic-atlas.db")
	v.SetDefault("snapshot.mode", "off")
	v.SetDefault("export.prefix", "reports")
	v.SetDefault("pagination.default_size", 10)
}

func defaultProfilesPath() string {
	usr, err := user.Current()
	if err != nil {
		return ".traffic-atlas.ini"
	}
	return filepath.Join(usr.HomeDir, ".traffic-atlas.ini")
}

// LoadSettings reads path (when non-empty) and overlays TRAFFIC_ATLAS_*
// environment variables, e.g. TRAFFIC_ATLAS_SERVER_PORT.
func LoadSettings(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return &s, nil
}
