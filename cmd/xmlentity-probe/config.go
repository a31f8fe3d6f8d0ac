package main

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// config is what a --config file may contain. Command line flags are
// applied on top of it.
type config struct {
	AccessExternalDTD string            `toml:"access_external_dtd"`
	ExpansionLimit    int               `toml:"expansion_limit"`
	Catalogs          []string          `toml:"catalogs"`
	CatalogPrefer     string            `toml:"catalog_prefer"`
	CatalogResolve    string            `toml:"catalog_resolve"`
	Encoding          string            `toml:"encoding"`
	Entities          map[string]string `toml:"entities"`
	Expand            []string          `toml:"expand"`
	Jobs              int               `toml:"jobs"`
}

func defaultConfig() *config {
	return &config{
		AccessExternalDTD: "all",
		ExpansionLimit:    64000,
		CatalogPrefer:     "public",
		CatalogResolve:    "continue",
		Entities:          make(map[string]string),
		Jobs:              4,
	}
}

func loadConfig(cfg *config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return errors.Wrapf(err, `failed to read config file %q`, path)
	}
	return nil
}

// apply merges the command line options into cfg
func (opts *cmdopts) apply(cfg *config) error {
	if opts.AccessExternalDTD != "" {
		cfg.AccessExternalDTD = opts.AccessExternalDTD
	}
	if opts.ExpansionLimit >= 0 {
		cfg.ExpansionLimit = opts.ExpansionLimit
	}
	cfg.Catalogs = append(cfg.Catalogs, opts.Catalogs...)
	if opts.CatalogResolve != "" {
		cfg.CatalogResolve = opts.CatalogResolve
	}
	if opts.Encoding != "" {
		cfg.Encoding = opts.Encoding
	}
	if cfg.Entities == nil {
		cfg.Entities = make(map[string]string)
	}
	for _, def := range opts.Entities {
		name, systemID, ok := strings.Cut(def, "=")
		if !ok || name == "" || systemID == "" {
			return errors.Errorf(`invalid entity definition %q (expected NAME=SYSTEMID)`, def)
		}
		cfg.Entities[name] = systemID
	}
	cfg.Expand = append(cfg.Expand, opts.Expand...)
	if opts.Jobs > 0 {
		cfg.Jobs = opts.Jobs
	}
	return nil
}
