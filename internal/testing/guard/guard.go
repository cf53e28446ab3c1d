// Package guard flips the binaries into test mode when blank-imported by a
// test, so calling main never dials Postgres or Redis.
package guard

import (
	"os"
	"sync"
)

// EnvVar is the variable read by app.InTestMode.
const EnvVar = "AMEXING_TEST_MODE"

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv(EnvVar) == "" {
			_ = os.Setenv(EnvVar, "1")
		}
	})
}
