// Package config is the Decider Loop and SWF Client's configuration
// surface (spec.md §6 "Environment"): a small, flat settings struct loaded
// the way the teacher's pkg/config layers knadh/koanf providers — struct
// defaults, then environment variables — scoped to just what this core
// needs to run. Workflow semantics never live here; those come from
// internal/specloader.
package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/mitchellh/mapstructure"

	"github.com/EpicWink/seddy/internal/errs"
)

// EnvPrefix is the environment-variable prefix this loader strips before
// matching a Config field (e.g. SEDDY_DOMAIN -> Domain).
const EnvPrefix = "SEDDY_"

// Config is the decider process's full set of runtime settings.
type Config struct {
	// Domain is the SWF domain to poll and schedule against.
	Domain string `koanf:"domain" validate:"required"`
	// TaskList is the decision task list polled. It is not applied to
	// activity tasks: a task without its own task_list is scheduled with no
	// task list attribute.
	TaskList string `koanf:"task_list" validate:"required"`
	// Identity overrides the generated FQDN+short-uuid decider identity
	// (spec.md §4.7); empty means auto-generate.
	Identity string `koanf:"identity"`
	// PollTimeout is passed to Loop.PollTimeout, which the loop does not
	// apply to the long-poll call; the service bounds each poll.
	PollTimeout time.Duration `koanf:"poll_timeout" validate:"min=1s"`
	// EndpointURL overrides the SWF endpoint (e.g. for a local emulator).
	// Empty selects the default regional endpoint.
	EndpointURL string `koanf:"endpoint_url"`
	// Region is the AWS region used to resolve the default endpoint and
	// sign requests.
	Region string `koanf:"region" validate:"required"`
	// MetricsAddr is the listen address cmd/seddy serves
	// promhttp.Handler() on. Empty disables the metrics server.
	MetricsAddr string `koanf:"metrics_addr"`
}

func defaults() Config {
	return Config{
		PollTimeout: 60 * time.Second,
		MetricsAddr: ":9090",
	}
}

var validate = validator.New()

// Load builds a Config from built-in defaults overlaid with SEDDY_*
// environment variables, then validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "loading default configuration")
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
			return key, v
		},
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "loading environment configuration")
	}

	var cfg Config
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, conf); err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "unmarshalling configuration")
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "validating configuration")
	}
	return &cfg, nil
}
