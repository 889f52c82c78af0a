package constants

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	PoolKey   ContextKey = "pool"
	TxKey     ContextKey = "tx"
	ActorKey  ContextKey = "actor"
	LoggerKey ContextKey = "logger"
)

var platePattern = regexp.MustCompile(`^[A-Z0-9\-\s.]{5,20}$`)

// Validate is the shared validator instance. The gate_plate rule matches
// normalized (uppercase, trimmed) license plates.
var Validate = func() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("gate_plate", func(fl validator.FieldLevel) bool {
		return platePattern.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}()
