package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/vk/movegen/internal/network"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string // hcl files or directories
	OutputDir     string   // overrides the manifest's output dir

	// Network selects where single package commands read from. GraphQL and
	// MVR override that network's endpoints.
	Network string `validate:"required"`
	GraphQL string `validate:"omitempty,url"`
	MVR     string `validate:"omitempty,url"`

	LogFormat string `validate:"oneof=text json"`
	LogLevel  string `validate:"oneof=debug info warn error"`
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Network == "" {
		cfg.Network = network.Mainnet
	}
	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("invalid %s %q: must satisfy %s", fe.Field(), fe.Value(), rule(fe)))
		}
		return nil, errors.New(strings.Join(msgs, "; "))
	}
	return &cfg, nil
}

func rule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

// endpoints returns the table single package commands dial, with the
// configured overrides applied to the selected network.
func (c *Config) endpoints() (network.Table, error) {
	table := network.DefaultTable()
	if c.GraphQL != "" || c.MVR != "" {
		table.Override(c.Network, network.Endpoints{GraphQL: c.GraphQL, MVR: c.MVR})
	}
	e, err := table.Lookup(c.Network)
	if err != nil {
		return nil, err
	}
	if err := validator.New().Struct(e); err != nil {
		return nil, fmt.Errorf("network %q is missing endpoints: %w", c.Network, err)
	}
	return table, nil
}
