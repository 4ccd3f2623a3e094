package configuration

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		panic(err)
	}
	return c
})

func Use() *Configuration {
	return singleton()
}

type DatabaseOptions struct {
	Name     string `env:"DB_NAME" envDefault:"workplan"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

// GovernanceOptions carries the tunables of the approval workflow.
//
// ImminentDeadlineDays is the window (in days until the task's current target
// date) inside which an otherwise-free edit is routed through approval. The
// default of 7 matches observed behavior; the exact intended threshold is
// still awaiting product confirmation, which is why it is configuration and
// not a constant.
type GovernanceOptions struct {
	ImminentDeadlineDays int `env:"GOVERNANCE_IMMINENT_DEADLINE_DAYS" envDefault:"7"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	Database   DatabaseOptions
	Governance GovernanceOptions
	Prometheus PrometheusOptions

	ServerAddress string `env:"SERVER_ADDRESS" envDefault:":8080"`
	Env           string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`

	// Comma-separated role names treated as global administrators. Read once
	// here so the admin-equivalent set is configured in a single place.
	AdminRoles string `env:"ADMIN_ROLES" envDefault:"Admin,Administrador,SuperAdmin"`
}

func (c *Configuration) AdminRoleSet() map[string]struct{} {
	out := make(map[string]struct{})
	for _, r := range strings.Split(c.AdminRoles, ",") {
		r = strings.TrimSpace(r)
		if r != "" {
			out[r] = struct{}{}
		}
	}
	return out
}

func (c *Configuration) LogrusLevel() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

func (c *Configuration) load(envFiles []string) error {
	if _, err := LoadEnv(envFiles); err != nil {
		return err
	}
	return env.Parse(c)
}

// LoadEnv loads the env files that exist and reports how many were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}
