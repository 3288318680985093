package interview

import (
	"regexp"
	"strconv"
	"strings"

	"student-agent/internal/domain"
)

// ParsedAnswer is the outcome of validating one free-text answer. When OK is
// false, Clarification tells the user how to answer instead.
type ParsedAnswer struct {
	Value         string
	OK            bool
	Clarification string
}

type parseFunc func(f domain.Field, text string) ParsedAnswer

var parsers = map[domain.FieldKind]parseFunc{
	domain.KindEnum:       parseEnum,
	domain.KindYesNo:      parseYesNo,
	domain.KindBoundedInt: parseBoundedInt,
	domain.KindFreeText:   parseFreeText,
}

var (
	yesPattern    = regexp.MustCompile(`\b(yes|yeah|yep|true|correct)\b`)
	noPattern     = regexp.MustCompile(`\b(no|nope|false|not really)\b`)
	digitsPattern = regexp.MustCompile(`-?\d+`)
)

var numberWords = map[string]int{
	"none": 0, "zero": 0, "no": 0,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5, "six": 6,
	"seven": 7, "eight": 8, "nine": 9, "ten": 10, "eleven": 11, "twelve": 12,
}

const (
	clarifyYesNo    = "Please answer with yes or no."
	clarifyNumber   = "Please give a number like 0, 1, or 2."
	clarifyFreeText = "Please share a short answer so I can note it down."
)

// Parse validates raw against the field's kind. It depends only on its inputs.
func Parse(id domain.FieldID, raw string) ParsedAnswer {
	f, ok := Lookup(id)
	if !ok {
		f = domain.Field{ID: id, Kind: domain.KindFreeText}
	}
	p, ok := parsers[f.Kind]
	if !ok {
		p = parseFreeText
	}
	return p(f, raw)
}

// parseYesNo checks the yes pattern before the no pattern, so text carrying
// both resolves to "1".
func parseYesNo(_ domain.Field, raw string) ParsedAnswer {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return clarify(clarifyYesNo)
	}
	if yesPattern.MatchString(text) {
		return accept("1")
	}
	if noPattern.MatchString(text) {
		return accept("0")
	}
	return clarify(clarifyYesNo)
}

func parseBoundedInt(f domain.Field, raw string) ParsedAnswer {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return clarify(clarifyNumber)
	}
	if m := digitsPattern.FindString(text); m != "" {
		n, err := strconv.Atoi(m)
		if err != nil {
			// Only overflow gets here; the sign says which bound applies.
			if strings.HasPrefix(m, "-") {
				n = 0
			} else {
				n = f.Max
			}
		}
		return accept(strconv.Itoa(clamp(n, 0, f.Max)))
	}
	for _, word := range strings.FieldsFunc(text, notLetter) {
		if n, ok := numberWords[word]; ok {
			return accept(strconv.Itoa(clamp(n, 0, f.Max)))
		}
	}
	return clarify(clarifyNumber)
}

func parseEnum(f domain.Field, raw string) ParsedAnswer {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text != "" {
		for _, opt := range f.Options {
			if matchesOption(text, opt) {
				return accept(opt.Value)
			}
		}
	}
	labels := make([]string, 0, len(f.Options))
	for _, opt := range f.Options {
		labels = append(labels, opt.Label)
	}
	return clarify("Please choose one: " + joinOr(labels) + ".")
}

func parseFreeText(_ domain.Field, raw string) ParsedAnswer {
	text := strings.TrimSpace(raw)
	if text == "" {
		return clarify(clarifyFreeText)
	}
	return accept(text)
}

func matchesOption(text string, opt domain.EnumOption) bool {
	for _, group := range opt.Match {
		if len(group) == 0 {
			continue
		}
		all := true
		for _, kw := range group {
			if !strings.Contains(text, kw) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func accept(v string) ParsedAnswer {
	return ParsedAnswer{Value: v, OK: true}
}

func clarify(msg string) ParsedAnswer {
	return ParsedAnswer{Clarification: msg}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if hi > 0 && n > hi {
		return hi
	}
	return n
}

func notLetter(r rune) bool {
	return (r < 'a' || r > 'z') && r != '\''
}

func joinOr(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " or " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
}
