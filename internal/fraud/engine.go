package fraud

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadval-cli/internal/model"
)

// Check weights. They sum to 1.0 so the combined score stays on [0, 1].
const (
	weightEmail       = 0.30
	weightPhone       = 0.25
	weightName        = 0.20
	weightCompany     = 0.15
	weightConsistency = 0.10
)

const likelyFakeThreshold = 0.7

// Engine evaluates leads against compiled indicator patterns.
type Engine struct {
	ind           Indicators
	emailPatterns []*regexp.Regexp
}

// NewEngine compiles the indicator patterns. Email patterns are anchored at
// the start of the address.
func NewEngine(ind Indicators) (*Engine, error) {
	e := &Engine{ind: ind}
	for _, p := range ind.FakeEmailPatterns {
		re, err := regexp.Compile("^" + p)
		if err != nil {
			return nil, eris.Wrapf(err, "fraud: compile email pattern %q", p)
		}
		e.emailPatterns = append(e.emailPatterns, re)
	}
	return e, nil
}

// Assess scores one lead. Missing fields contribute nothing, so an empty
// lead scores 0 with MINIMAL risk.
func (e *Engine) Assess(lead model.Lead) model.FraudAssessment {
	var score float64
	var indicators []string

	s, ind := e.checkEmail(lead.Email)
	score += s * weightEmail
	indicators = append(indicators, ind...)

	s, ind = e.checkPhone(lead.Phone)
	score += s * weightPhone
	indicators = append(indicators, ind...)

	s, ind = e.checkName(lead.FirstName, lead.LastName)
	score += s * weightName
	indicators = append(indicators, ind...)

	s, ind = e.checkCompany(lead.Company)
	score += s * weightCompany
	indicators = append(indicators, ind...)

	s, ind = e.checkConsistency(lead)
	score += s * weightConsistency
	indicators = append(indicators, ind...)

	return model.FraudAssessment{
		Score:      min(score, 1.0),
		Indicators: indicators,
		LikelyFake: score >= likelyFakeThreshold,
		Risk:       riskLevel(score),
	}
}

func (e *Engine) checkEmail(email string) (float64, []string) {
	if email == "" {
		return 0, nil
	}
	lower := strings.ToLower(email)

	for _, re := range e.emailPatterns {
		if re.MatchString(lower) {
			return 1.0, []string{fmt.Sprintf("Fake email pattern: %s", email)}
		}
	}

	var score float64
	var indicators []string

	domain := ""
	if i := strings.Index(lower, "@"); i >= 0 {
		domain = lower[i+1:]
	}
	for _, disposable := range e.ind.DisposableDomains {
		if strings.Contains(domain, disposable) {
			score = 0.9
			indicators = append(indicators, fmt.Sprintf("Disposable email domain: %s", domain))
			break
		}
	}

	if longDigitRun.MatchString(lower) {
		score = max(score, 0.6)
		indicators = append(indicators, "Email contains long number sequence")
	}

	return score, indicators
}

var (
	longDigitRun = regexp.MustCompile(`\d{8,}`)
	nonDigit     = regexp.MustCompile(`[^\d]`)
)

func (e *Engine) checkPhone(phone string) (float64, []string) {
	if phone == "" {
		return 0, nil
	}
	digits := nonDigit.ReplaceAllString(phone, "")

	for _, fake := range e.ind.FakePhones {
		if digits == fake {
			return 1.0, []string{fmt.Sprintf("Fake phone pattern: %s", phone)}
		}
	}

	var score float64
	var indicators []string

	if distinctDigits(digits) <= 2 && len(digits) >= 10 {
		score = 0.9
		indicators = append(indicators, "Phone has too few unique digits")
	}

	for _, seq := range e.ind.SequentialPhones {
		if digits == seq {
			score = 0.95
			indicators = append(indicators, "Sequential phone number pattern")
			break
		}
	}

	return score, indicators
}

func (e *Engine) checkName(first, last string) (float64, []string) {
	if first == "" || last == "" {
		return 0, nil
	}
	full := strings.ToLower(first + " " + last)

	var score float64
	var indicators []string

	for _, token := range e.ind.FakeNameTokens {
		if strings.Contains(full, token) {
			score = 0.8
			indicators = append(indicators, fmt.Sprintf("Suspicious name pattern: %s", token))
			break
		}
	}

	if strings.EqualFold(first, last) {
		score = max(score, 0.7)
		indicators = append(indicators, "Identical first and last name")
	}

	if len(strings.TrimSpace(first)) == 1 || len(strings.TrimSpace(last)) == 1 {
		score = max(score, 0.5)
		indicators = append(indicators, "Single character name")
	}

	return score, indicators
}

func (e *Engine) checkCompany(company string) (float64, []string) {
	if company == "" {
		return 0, nil
	}
	lower := strings.ToLower(strings.TrimSpace(company))

	var score float64
	var indicators []string

	for _, generic := range e.ind.GenericCompanies {
		if lower == generic {
			score = 0.6
			indicators = append(indicators, fmt.Sprintf("Generic company name: %s", company))
			break
		}
	}

	if len(lower) <= 2 {
		score = max(score, 0.4)
		indicators = append(indicators, "Company name too short")
	}

	return score, indicators
}

// checkConsistency flags leads whose name is completely absent from the
// email address. It only fires when all three fields are present.
func (e *Engine) checkConsistency(lead model.Lead) (float64, []string) {
	email := strings.ToLower(lead.Email)
	first := strings.ToLower(lead.FirstName)
	last := strings.ToLower(lead.LastName)

	if email == "" || first == "" || last == "" {
		return 0, nil
	}
	if !strings.Contains(email, first) && !strings.Contains(email, last) {
		return 0.3, []string{"Name not reflected in email address"}
	}
	return 0, nil
}

func distinctDigits(s string) int {
	seen := map[rune]struct{}{}
	for _, r := range s {
		seen[r] = struct{}{}
	}
	return len(seen)
}

func riskLevel(score float64) model.RiskLevel {
	switch {
	case score >= 0.8:
		return model.RiskCritical
	case score >= 0.6:
		return model.RiskHigh
	case score >= 0.4:
		return model.RiskMedium
	case score >= 0.2:
		return model.RiskLow
	default:
		return model.RiskMinimal
	}
}
