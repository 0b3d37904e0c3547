package env_mode

import (
	"os"
	"strings"
	"sync"
)

// ENV_MODE_KEY selects which config.<env>.yaml overlays are read.
const ENV_MODE_KEY = "RESIZER_ENV"

type ENV_MODE string

const (
	DevMode  ENV_MODE = "development"
	ProMode  ENV_MODE = "production"
	TestMode ENV_MODE = "test"
)

var (
	currentEnv ENV_MODE
	modeMu     sync.Mutex
)

func ParseEnv(env string) ENV_MODE {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "pro":
		return ProMode
	case "test", "testing":
		return TestMode
	default:
		return DevMode
	}
}

// Mode returns the process mode, read once from RESIZER_ENV.
func Mode() ENV_MODE {
	modeMu.Lock()
	defer modeMu.Unlock()

	if currentEnv == "" {
		currentEnv = ParseEnv(os.Getenv(ENV_MODE_KEY))
	}
	return currentEnv
}

// SetMode overrides the process mode.
func SetMode(mode ENV_MODE) {
	modeMu.Lock()
	defer modeMu.Unlock()

	currentEnv = mode
	_ = os.Setenv(ENV_MODE_KEY, string(mode))
}
