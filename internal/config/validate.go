// Public domain.

package config

import (
	"sync"

	"github.com/vivekvenkris/CandyWeb/internal/logger"
	"github.com/vivekvenkris/CandyWeb/internal/valid"
)

var (
	vOnce   sync.Once
	checker *valid.Checker
)

func getChecker() *valid.Checker {
	vOnce.Do(func() {
		checker = valid.New("yaml")
		_ = checker.Register("loglevel", func(fl valid.FieldLevel) bool {
			return logger.ValidLevel(fl.Field().String())
		}, "{0} {1} is not a known level")
	})
	return checker
}

// Validate checks that all values are usable.  The error describes the
// first bad value, named by its dotted key path.
func (c *Config) Validate() error {
	return getChecker().Struct(c)
}
