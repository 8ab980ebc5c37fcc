package config

import (
	_ "embed"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"
	AppDirName        = "mshell"
)

// Color modes for diagnostics.
const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	MaxLoopIterations int    `json:"max_loop_iterations" validate:"gte=1"`
	StopOnError       bool   `json:"stop_on_error"`
	Color             string `json:"color" validate:"oneof=always auto never"`
	Trace             bool   `json:"trace"`

	REPL REPL `json:"repl"`
}

type REPL struct {
	Prompt      string `json:"prompt"`
	HistoryFile string `json:"history_file"` // Empty disables history.
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// Default returns the built-in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// DefaultData returns the contents of the built-in config.yaml.
func DefaultData() []byte {
	return append([]byte(nil), defaultConfigData...)
}
