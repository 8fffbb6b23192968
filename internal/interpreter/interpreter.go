package interpreter

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"interview-chatter/internal/interview"
)

const (
	DefaultTopic       = "Software Engineering"
	DefaultDifficulty  = interview.DifficultyMidLevel
	DefaultDuration    = 30
	DefaultCompanyType = interview.CompanyStartup
)

// DefaultFocusAreas is not derived from the utterance.
var DefaultFocusAreas = []string{"technical", "behavioral"}

// predicate reports whether a lower-cased utterance carries a signal.
type predicate func(s string) bool

// rule maps a signal to the value it selects. Rules are evaluated in
// order and the first match wins.
type rule struct {
	match predicate
	value string
}

func contains(keywords ...string) predicate {
	return func(s string) bool {
		for _, k := range keywords {
			if strings.Contains(s, k) {
				return true
			}
		}
		return false
	}
}

var topicRules = []rule{
	{contains("frontend", "front-end"), "Frontend Engineering"},
	{contains("backend", "back-end"), "Backend Engineering"},
	{contains("product", "pm"), "Product Management"},
	{contains("data science", "data scientist"), "Data Science"},
	{contains("devops"), "DevOps Engineering"},
	{contains("mobile"), "Mobile Development"},
}

var difficultyRules = []rule{
	{contains("junior", "entry"), interview.DifficultyJunior},
	{contains("senior"), interview.DifficultySenior},
	{contains("staff", "principal"), interview.DifficultyStaff},
}

var companyRules = []rule{
	{contains("big tech", "big-tech", "faang"), interview.CompanyBigTech},
	{contains("enterprise"), interview.CompanyEnterprise},
	{contains("consulting"), interview.CompanyConsulting},
}

var durationPattern = regexp.MustCompile(`(\d+)[\s-]*min`)

func firstMatch(s string, rules []rule, def string) string {
	for _, r := range rules {
		if r.match(s) {
			return r.value
		}
	}
	return def
}

// Topic returns the interview topic named in s.
func Topic(s string) string {
	return firstMatch(strings.ToLower(s), topicRules, DefaultTopic)
}

// Difficulty returns the seniority level named in s.
func Difficulty(s string) string {
	return firstMatch(strings.ToLower(s), difficultyRules, DefaultDifficulty)
}

// CompanyType returns the kind of hiring company named in s.
func CompanyType(s string) string {
	return firstMatch(strings.ToLower(s), companyRules, DefaultCompanyType)
}

// Duration returns N for the first "<N> min"/"<N> minutes" in s, or the
// default when there is none or N does not fit an int.
func Duration(s string) int {
	m := durationPattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return DefaultDuration
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n > math.MaxInt32 {
		return DefaultDuration
	}
	return int(n)
}

// Parse turns a free-text instruction into a request. It never fails:
// every field falls back to its default when no signal is found.
func Parse(utterance string) interview.Request {
	focus := make([]string, len(DefaultFocusAreas))
	copy(focus, DefaultFocusAreas)
	return interview.Request{
		Topic:           Topic(utterance),
		Difficulty:      Difficulty(utterance),
		DurationMinutes: Duration(utterance),
		CompanyType:     CompanyType(utterance),
		FocusAreas:      focus,
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that a request can be submitted as is.
func Validate(req interview.Request) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid interview request: %w", err)
	}
	return nil
}
