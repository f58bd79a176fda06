// Package config holds the static matching configuration: compound key
// templates, field weights, the acceptance threshold and the transaction
// vocabulary. A Config is loaded once and passed into the engine; nothing
// in this module reads configuration from globals.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/linkage/internal/record"
)

// Config is the matching configuration.
type Config struct {
	// Templates in declaration order. Order breaks ties between equally
	// long templates.
	Templates []string `yaml:"compound_key_templates" json:"compound_key_templates"`

	// Weights maps a field name to its positive scoring weight. Fields
	// without a weight never take part in scoring.
	Weights map[string]float64 `yaml:"weights" json:"weights"`

	// Threshold is the minimum similarity for joining an existing group.
	Threshold float64 `yaml:"threshold" json:"threshold"`

	// TransactionTypes lists the accepted transaction kinds. Empty accepts
	// any kind.
	TransactionTypes []string `yaml:"transaction_types" json:"transaction_types"`

	// PotentialColumns names the positions of a headerless input row.
	PotentialColumns []string `yaml:"potential_columns" json:"potential_columns"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Templates: []string{
			"FirstName_LastName",
			"PhoneNumber",
			"DriversLicense",
			"Email",
			"FirstName_LastName_DOB",
			"FirstName_LastName_Zipcode",
			"FirstName_LastName_PhoneNumber",
			"FirstName_LastName_Email_PhoneNumber",
			"FirstName_LastName_DOB_DriversLicense",
			"FirstName_LastName_Address_Zipcode_DOB",
			"FirstName_LastName_Email_PhoneNumber_Zipcode_DriversLicense_Address_DOB",
		},
		Weights: map[string]float64{
			"FirstName":      0.4,
			"LastName":       0.5,
			"Email":          0.8,
			"PhoneNumber":    0.8,
			"Zipcode":        0.3,
			"DriversLicense": 1.0,
			"Address":        0.5,
			"DOB":            0.6,
		},
		Threshold: 0.6,
		TransactionTypes: []string{
			string(record.KindSend),
			string(record.KindReceive),
			string(record.KindBuyGiftCard),
			string(record.KindBillPay),
			string(record.KindBillPayed),
			string(record.KindOwnBusiness),
		},
		PotentialColumns: []string{
			ColumnType, ColumnID, ColumnTransaction,
			"FirstName", "LastName", "Email", "PhoneNumber",
			"Zipcode", "DriversLicense", "Address", "DOB",
		},
	}
}

// Reserved column names that carry record identity rather than attributes.
const (
	ColumnType        = "Type"
	ColumnID          = "ID"
	ColumnTransaction = "Transaction"
)

// Load reads a configuration file. The format follows the extension:
// .yaml/.yml is decoded with yaml.v3, .cue is evaluated with CUE against
// the built-in schema.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".cue":
		cfg, err = decodeCUE(path, data)
		if err != nil {
			return Config{}, err
		}
	default:
		return Config{}, fmt.Errorf("config %s: unsupported extension %q", path, filepath.Ext(path))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the invariants the engine relies on.
func (c Config) Validate() error {
	var errs []error
	if len(c.Templates) == 0 {
		errs = append(errs, errors.New("compound_key_templates: at least one template required"))
	}
	for i, t := range c.Templates {
		if t == "" {
			errs = append(errs, fmt.Errorf("compound_key_templates[%d]: empty template", i))
			continue
		}
		for _, f := range record.ParseTemplate(t) {
			if f == "" {
				errs = append(errs, fmt.Errorf("compound_key_templates[%d]: empty field in %q", i, t))
			}
		}
	}
	for field, w := range c.Weights {
		if !(w > 0) || math.IsInf(w, 0) {
			errs = append(errs, fmt.Errorf("weights.%s: must be positive and finite, got %v", field, w))
		}
	}
	// Written so NaN fails too.
	if !(c.Threshold >= 0 && c.Threshold <= 1) {
		errs = append(errs, fmt.Errorf("threshold: must be within [0,1], got %v", c.Threshold))
	}
	return errors.Join(errs...)
}

// ParsedTemplates returns the templates split into field lists, in
// declaration order.
func (c Config) ParsedTemplates() []record.Template {
	return record.ParseTemplates(c.Templates)
}

// KnownKind reports whether kind is an accepted transaction kind.
func (c Config) KnownKind(kind record.Kind) bool {
	if len(c.TransactionTypes) == 0 {
		return true
	}
	for _, k := range c.TransactionTypes {
		if record.Kind(k) == kind {
			return true
		}
	}
	return false
}
