package middleware

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/eston/admissions/internal/pkg/logger"
	"github.com/eston/admissions/internal/pkg/validation"
)

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator engine.
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			logger.Warn().Msg("Binding engine is not go-playground/validator, custom rules not registered")
			return
		}
		if err := validation.Register(v); err != nil {
			logger.Fatal().Err(err).Msg("Failed to register validation rules")
		}
	})
}

func init() {
	RegisterValidators()
}
