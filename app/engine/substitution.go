package engine

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Placeholder tokens recognised in template files.
const (
	TokenAppName     = "{{APP_NAME}}"
	TokenAppSlug     = "{{APP_SLUG}}"
	TokenPort        = "{{PORT}}"
	TokenDescription = "{{DESCRIPTION}}"
)

// Port bounds accepted for the generated app.
const (
	MinPort = 3000
	MaxPort = 9999
)

var (
	namePattern        = regexp.MustCompile(`^[a-z0-9-]+$`)
	placeholderPattern = regexp.MustCompile(`\{\{[A-Z][A-Z0-9_]*\}\}`)
)

// Params are the user inputs a project is generated from.
type Params struct {
	Name        string
	Port        int
	Description string
}

// Validate checks the name format and port range.
func (p Params) Validate() error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}
	return ValidatePort(p.Port)
}

// ValidateName accepts lowercase alphanumerics and dashes only.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "project name", Reason: "must not be empty"}
	}
	if !namePattern.MatchString(name) {
		return &ValidationError{Field: "project name", Value: name, Reason: "must be lowercase alphanumeric with dashes only"}
	}
	return nil
}

// ValidatePort checks the port is within MinPort..MaxPort.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return &ValidationError{
			Field:  "port",
			Value:  strconv.Itoa(port),
			Reason: fmt.Sprintf("must be between %d-%d", MinPort, MaxPort),
		}
	}
	return nil
}

// Slugify lowercases s and replaces every character outside [a-z0-9] with a dash.
func Slugify(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// Pair is one token and the literal text that replaces it.
type Pair struct {
	Token string
	Value string
}

// Table is an ordered, immutable set of substitutions.
// Replacement is literal and single pass: a value that itself contains a
// token is written as is.
type Table struct {
	pairs    []Pair
	replacer *strings.Replacer
}

// NewTable builds a table from pairs, rejecting empty or overlapping tokens.
func NewTable(pairs ...Pair) (*Table, error) {
	for i, p := range pairs {
		if p.Token == "" {
			return nil, fmt.Errorf("substitution %d has an empty token", i)
		}
	}
	for i, p := range pairs {
		for _, q := range pairs[i+1:] {
			if strings.Contains(p.Token, q.Token) || strings.Contains(q.Token, p.Token) {
				return nil, fmt.Errorf("substitution tokens %q and %q overlap", p.Token, q.Token)
			}
		}
	}
	oldnew := make([]string, 0, len(pairs)*2)
	for _, p := range pairs {
		oldnew = append(oldnew, p.Token, p.Value)
	}
	return &Table{
		pairs:    append([]Pair(nil), pairs...),
		replacer: strings.NewReplacer(oldnew...),
	}, nil
}

// TableFor builds the generation table for validated params.
func TableFor(p Params) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return NewTable(
		Pair{Token: TokenAppName, Value: p.Name},
		Pair{Token: TokenAppSlug, Value: Slugify(p.Name)},
		Pair{Token: TokenPort, Value: strconv.Itoa(p.Port)},
		Pair{Token: TokenDescription, Value: p.Description},
	)
}

// Pairs returns a copy of the table in iteration order.
func (t *Table) Pairs() []Pair {
	return append([]Pair(nil), t.pairs...)
}

// Apply replaces every non-overlapping occurrence of every token.
func (t *Table) Apply(content string) string {
	return t.replacer.Replace(content)
}

// Lookup returns the value for token.
func (t *Table) Lookup(token string) (string, bool) {
	for _, p := range t.pairs {
		if p.Token == token {
			return p.Value, true
		}
	}
	return "", false
}

// FindPlaceholders lists the distinct {{TOKEN}} markers present in content, sorted.
func FindPlaceholders(content []byte) []string {
	seen := map[string]bool{}
	for _, m := range placeholderPattern.FindAll(content, -1) {
		seen[string(m)] = true
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]string, 0, len(seen))
	for tok := range seen {
		out = append(out, tok)
	}
	sort.Strings(out)
	return out
}
