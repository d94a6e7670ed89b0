package model

import (
	"context"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Company is one employer whose board gets crawled. The pipeline treats it as
// read-only input for the duration of a pass.
type Company struct {
	ID        string        `json:"id" yaml:"id"`
	Name      string        `json:"name" yaml:"name"`
	Connector string        `json:"connector" yaml:"connector"` // selects a Connector, e.g. "greenhouse"
	Config    CompanyConfig `json:"config" yaml:"config"`
	Active    bool          `json:"active" yaml:"active"`
}

// CompanyConfig holds the connector-specific crawl settings for a company.
type CompanyConfig struct {
	Board         string   `json:"board" yaml:"board"`                   // board identifier on the job board
	ExtraKeywords []string `json:"extra_keywords" yaml:"extra_keywords"` // force-include terms, case-insensitive
}

// companyConfigKeys is the decoded form of CompanyConfig. Rows written by
// older crawlers name the keyword list force_ib_keywords; both keys are read
// and merged.
type companyConfigKeys struct {
	Board           string   `json:"board" yaml:"board"`
	ExtraKeywords   []string `json:"extra_keywords" yaml:"extra_keywords"`
	ForceIBKeywords []string `json:"force_ib_keywords" yaml:"force_ib_keywords"`
}

func (k companyConfigKeys) config() CompanyConfig {
	return CompanyConfig{
		Board:         k.Board,
		ExtraKeywords: append(k.ExtraKeywords, k.ForceIBKeywords...),
	}
}

// UnmarshalJSON accepts force_ib_keywords as an alias for extra_keywords.
func (c *CompanyConfig) UnmarshalJSON(data []byte) error {
	var k companyConfigKeys
	if err := json.Unmarshal(data, &k); err != nil {
		return err
	}
	*c = k.config()
	return nil
}

// UnmarshalYAML accepts force_ib_keywords as an alias for extra_keywords.
func (c *CompanyConfig) UnmarshalYAML(value *yaml.Node) error {
	var k companyConfigKeys
	if err := value.Decode(&k); err != nil {
		return err
	}
	*c = k.config()
	return nil
}

// CompanyDirectory lists the companies that should be crawled.
type CompanyDirectory interface {
	ActiveCompanies(ctx context.Context) ([]Company, error)
}
