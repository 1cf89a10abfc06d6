package domain

import "fmt"

// InvalidInputError covers malformed caller input: nonsensical counts,
// negative money amounts, unknown identifiers. Never retried.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input for %s: %s", e.Field, e.Reason)
}

// UnsupportedCountryError means no bracket table is registered for the
// requested (country, tax type) pair. The engine does not guess a default.
type UnsupportedCountryError struct {
	Country string
	TaxType TaxType
}

func (e *UnsupportedCountryError) Error() string {
	return fmt.Sprintf("no %s bracket table registered for country %q", e.TaxType, e.Country)
}

// UnsupportedStrategyError means a distribution method is not valid for the
// given country or tax structure.
type UnsupportedStrategyError struct {
	Strategy string
	Country  string
	Reason   string
}

func (e *UnsupportedStrategyError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("strategy %s not supported for %s: %s", e.Strategy, e.Country, e.Reason)
	}
	return fmt.Sprintf("strategy %s not supported for %s", e.Strategy, e.Country)
}

// ConfigurationError is a data-integrity failure in a bracket table or rule
// set. It is fatal to any computation that depends on the broken table and
// must surface rather than produce wrong numbers.
type ConfigurationError struct {
	Country string
	TaxType TaxType
	Reason  string
}

func (e *ConfigurationError) Error() string {
	if e.Country == "" {
		return fmt.Sprintf("configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("configuration error in %s %s table: %s", e.Country, e.TaxType, e.Reason)
}
