package providers

import (
	"fmt"

	"github.com/gookit/validate"

	"fivemon/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks the decoded config against its validate tags. Sub-structs
// are validated separately because gookit/validate does not descend into
// nested structs on its own.
func (cv *CnfValidator) Validate() error {
	sections := map[string]interface{}{
		"fivem":       cv.conf.FiveM,
		"monitor":     cv.conf.Monitor,
		"database":    cv.conf.Database,
		"persistence": cv.conf.Persistence,
		"webServer":   cv.conf.WebServer,
		"logger":      cv.conf.Logger,
	}

	for name, section := range sections {
		v := validate.Struct(section)
		if !v.Validate() {
			return fmt.Errorf("invalid %s config: %s", name, v.Errors.One())
		}
	}
	return nil
}
