// Package fraud scores leads against known fake-data indicators.
package fraud

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Indicators holds the pattern lists the engine matches leads against.
// Teams tune these per campaign, so they load from a YAML file when one is
// configured and fall back to the built-in defaults otherwise.
type Indicators struct {
	// FakeEmailPatterns are regular expressions matched against the start
	// of the lowercased email address.
	FakeEmailPatterns []string `yaml:"fake_email_patterns"`

	// DisposableDomains are substrings matched against the email domain.
	DisposableDomains []string `yaml:"disposable_domains"`

	// FakePhones are known fake numbers, compared digits-only.
	FakePhones []string `yaml:"fake_phones"`

	// SequentialPhones are digit runs scored as sequential dialing patterns.
	SequentialPhones []string `yaml:"sequential_phones"`

	// FakeNameTokens are substrings matched against the lowercased full name.
	FakeNameTokens []string `yaml:"fake_name_tokens"`

	// GenericCompanies are exact matches against the lowercased company name.
	GenericCompanies []string `yaml:"generic_companies"`
}

// DefaultIndicators returns the built-in pattern lists.
func DefaultIndicators() Indicators {
	return Indicators{
		FakeEmailPatterns: []string{
			`test.*@.*`,
			`fake.*@.*`,
			`.*@test\.com`,
			`.*@fake\.com`,
			`.*@example\.com`,
			`.*@temp.*\.com`,
			`.*@throwaway.*`,
			`.*@guerrilla.*`,
			`.*@mailinator.*`,
		},
		DisposableDomains: []string{
			"10minutemail", "tempmail", "throwaway", "guerrillamail",
			"mailinator", "yopmail", "temp-mail",
		},
		FakePhones: []string{
			"1234567890", "0000000000", "1111111111",
			"5555555555", "8888888888", "9999999999",
		},
		SequentialPhones: []string{
			"1234567890", "0123456789", "9876543210",
		},
		FakeNameTokens: []string{
			"test", "fake", "john doe", "jane doe", "admin",
			"user", "sample", "demo", "example", "unknown",
			"asdf", "qwerty", "temp", "temporary",
		},
		GenericCompanies: []string{
			"test", "fake", "company", "corp", "inc", "llc",
			"business", "enterprise", "solutions", "services",
			"consulting", "group", "organization", "n/a", "none",
		},
	}
}

// LoadIndicators reads pattern lists from a YAML file. Lists omitted from
// the file keep their defaults.
func LoadIndicators(path string) (Indicators, error) {
	ind := DefaultIndicators()

	data, err := os.ReadFile(path)
	if err != nil {
		return ind, eris.Wrapf(err, "fraud: read indicators %s", path)
	}
	if err := yaml.Unmarshal(data, &ind); err != nil {
		return ind, eris.Wrapf(err, "fraud: parse indicators %s", path)
	}
	return ind, nil
}
