package providers

import (
	"fmt"
	"time"

	"github.com/gookit/validate"

	"livenotes/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the struct tags and the fields tags cannot express.
func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}
	if tz := cv.conf.Export.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("export.timezone: %w", err)
		}
	}
	if cv.conf.Cache.Enabled && cv.conf.Cache.Size < 0 {
		return fmt.Errorf("cache.size must not be negative")
	}
	return nil
}
