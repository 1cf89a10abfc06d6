// Package config loads the optional YAML rules file that overrides the
// seeded tax constants and bracket tables.
package config

import (
	"fmt"
	"os"

	"github.com/moneysplit/moneysplit/internal/domain"
	"github.com/moneysplit/moneysplit/internal/registry"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// CountryTable is one bracket table override in the rules file.
type CountryTable struct {
	Country  string              `yaml:"country"`
	TaxType  string              `yaml:"taxType"`
	Brackets []domain.TaxBracket `yaml:"brackets"`
}

// FileConfig is the on-disk shape of a rules file. Every section is
// optional; omitted sections keep their defaults.
type FileConfig struct {
	Rules  *rulesOverride `yaml:"rules"`
	Tables []CountryTable `yaml:"tables"`
}

// rulesOverride mirrors domain.TaxRules with optional scalar fields so a
// file can override one constant without restating the rest.
type rulesOverride struct {
	StandardDeductions   map[string]decimal.Decimal                `yaml:"standardDeductions"`
	StateDeductions      map[string]decimal.Decimal                `yaml:"stateDeductions"`
	DividendRates        map[string]decimal.Decimal                `yaml:"dividendRates"`
	DefaultDividendRate  *decimal.Decimal                          `yaml:"defaultDividendRate"`
	SelfEmployment       map[string]domain.SelfEmploymentRules     `yaml:"selfEmployment"`
	RegionalTables       map[string]domain.RegionalTax             `yaml:"regionalTables"`
	MixedSplit           map[string]domain.MixedSplitRules         `yaml:"mixedSplit"`
	QBIRate              *decimal.Decimal                          `yaml:"qbiRate"`
	QBIEnabled           *bool                                     `yaml:"qbiEnabled"`
	MaterialityThreshold *decimal.Decimal                          `yaml:"materialityThreshold"`
}

// LoadRules reads a rules file and merges it over the defaults. An empty
// path returns the defaults untouched.
func LoadRules(path string) (*domain.TaxRules, []CountryTable, error) {
	rules := domain.DefaultTaxRules()
	if path == "" {
		return rules, nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}

	var file FileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}

	if file.Rules != nil {
		mergeRules(rules, file.Rules)
	}

	for _, table := range file.Tables {
		taxType, err := domain.ParseTaxType(table.TaxType)
		if err != nil {
			return nil, nil, fmt.Errorf("rules file %s: %w", path, err)
		}
		if err := domain.ValidateBrackets(table.Country, taxType, table.Brackets); err != nil {
			return nil, nil, fmt.Errorf("rules file %s: %w", path, err)
		}
	}

	return rules, file.Tables, nil
}

// ApplyTables registers every table override, replacing seeded defaults.
func ApplyTables(reg *registry.Registry, tables []CountryTable) error {
	for _, table := range tables {
		taxType, err := domain.ParseTaxType(table.TaxType)
		if err != nil {
			return err
		}
		if err := reg.Register(table.Country, taxType, table.Brackets); err != nil {
			return err
		}
	}
	return nil
}

func mergeRules(rules *domain.TaxRules, o *rulesOverride) {
	for k, v := range o.StandardDeductions {
		rules.StandardDeductions[k] = v
	}
	for k, v := range o.StateDeductions {
		rules.StateDeductions[k] = v
	}
	for k, v := range o.DividendRates {
		rules.DividendRates[k] = v
	}
	if o.DefaultDividendRate != nil {
		rules.DefaultDividendRate = *o.DefaultDividendRate
	}
	for k, v := range o.SelfEmployment {
		rules.SelfEmployment[k] = v
	}
	for k, v := range o.RegionalTables {
		rules.RegionalTables[k] = v
	}
	for k, v := range o.MixedSplit {
		rules.MixedSplit[k] = v
	}
	if o.QBIRate != nil {
		rules.QBIRate = *o.QBIRate
	}
	if o.QBIEnabled != nil {
		rules.QBIEnabled = *o.QBIEnabled
	}
	if o.MaterialityThreshold != nil {
		rules.MaterialityThreshold = *o.MaterialityThreshold
	}
}
