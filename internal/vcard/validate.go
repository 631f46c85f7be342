package vcard

import "regexp"

// space is the whitespace class of ECMAScript regular expressions. RE2's \s
// covers only the ASCII subset.
const space = `\s\v\x{00a0}\x{1680}\x{2000}-\x{200a}\x{2028}\x{2029}\x{202f}\x{205f}\x{3000}\x{feff}`

const textChars = `[\w` + space + `.,'-]`

var (
	textPattern = regexp.MustCompile(`^` + textChars + `+$`)

	// valuePatterns holds the value rule for each bare property name. Names
	// without an entry accept any value.
	valuePatterns = map[string]*regexp.Regexp{
		"FN":        textPattern,
		"N":         regexp.MustCompile(`^` + textChars + `+;` + textChars + `+;` + textChars + `*;` + textChars + `*;` + textChars + `*$`),
		"EMAIL":     regexp.MustCompile(`^[\w._%+-]+@[\w.-]+\.[a-zA-Z]{2,}$`),
		"TEL":       regexp.MustCompile(`^\+?[0-9` + space + `()-]+$`),
		"ADR":       regexp.MustCompile(`^` + textChars + `+;` + textChars + `+;` + textChars + `*;` + textChars + `*;` + textChars + `*;` + textChars + `*;` + textChars + `*$`),
		"ORG":       textPattern,
		"TITLE":     textPattern,
		"URL":       regexp.MustCompile(`^(https?://[^` + space + `]+)$`),
		"NOTE":      regexp.MustCompile(`^` + textChars + `*$`),
		"BDAY":      regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		"GENDER":    regexp.MustCompile(`^(M|F|O)$`),
		"IMPP":      textPattern,
		"X-ABLABEL": textPattern,
	}
)

// Validate checks value against the pattern registered for key's bare name.
func Validate(key, value string) bool {
	pattern, ok := valuePatterns[BareKey(key)]
	if !ok {
		return true
	}
	return pattern.MatchString(value)
}

// ValidateEntity validates every property of e, keyed by property key.
func ValidateEntity(e *Entity) map[string]bool {
	result := make(map[string]bool, e.Properties.Len())
	for _, p := range e.Properties.Pairs() {
		result[p.Key] = Validate(p.Key, p.Value)
	}
	return result
}
