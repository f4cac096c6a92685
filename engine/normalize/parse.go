package normalize

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JobSwipeAI/jobswipe-mvp/engine/domain"
)

// List fields arrive either as a JSON-encoded array or a delimited string.
// Parsing is an ordered fallback chain: tryJSONList, then tryDelimitedSplit
// for plain strings. The empty default applies only to absent fields; a
// present field that fits no tier fails the record. Each tier is its own
// function so the tiers can be tested in isolation.

// tryJSONList decodes v as a list of strings. It accepts an already-decoded
// []any (from a JSON document) or a string containing a JSON array. Non-string
// elements are stringified via their JSON form being rejected; only string
// elements survive.
func tryJSONList(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return t, true
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	case string:
		trimmed := strings.TrimSpace(t)
		if !strings.HasPrefix(trimmed, "[") {
			return nil, false
		}
		var decoded []string
		if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
			return nil, false
		}
		out := decoded[:0]
		for _, s := range decoded {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

// tryDelimitedSplit splits s on the delimiter, trimming whitespace and
// dropping empty parts. Returns false when nothing survives.
func tryDelimitedSplit(s, sep string) ([]string, bool) {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out, len(out) > 0
}

// listField runs the full fallback chain over a raw field value. An absent
// field defaults to an empty list; a field that is present but parses as
// neither a JSON list nor delimited text poisons the whole record, and the
// caller drops it.
func listField(v any) ([]string, error) {
	if v == nil {
		return nil, nil
	}
	if list, ok := tryJSONList(v); ok {
		return list, nil
	}
	if s, ok := v.(string); ok && !strings.HasPrefix(strings.TrimSpace(s), "[") {
		list, _ := tryDelimitedSplit(s, ",")
		return list, nil
	}
	return nil, fmt.Errorf("unparseable list value %v", v)
}

// parseEmploymentType matches employment-type strings case-insensitively by
// substring. Anything unmatched defaults to full_time.
func parseEmploymentType(s string) domain.EmploymentType {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "part"):
		return domain.PartTime
	case strings.Contains(lower, "contract"):
		return domain.Contract
	case strings.Contains(lower, "intern"):
		return domain.Internship
	default:
		return domain.FullTime
	}
}

// parseLocation parses a comma-separated location string positionally into
// city/state/country. Country falls back to defaultCountry when fewer than
// three parts are present.
func parseLocation(s, defaultCountry string) domain.Location {
	parts, _ := tryDelimitedSplit(s, ",")
	loc := domain.Location{Country: defaultCountry}
	switch {
	case len(parts) >= 3:
		loc.City, loc.State, loc.Country = parts[0], parts[1], parts[2]
	case len(parts) == 2:
		loc.City, loc.State = parts[0], parts[1]
	case len(parts) == 1:
		loc.City = parts[0]
	}
	return loc
}

// affirmatives are the free-text values that mark a crawled posting remote.
var affirmatives = map[string]bool{
	"yes": true, "true": true, "remote": true, "hybrid": true,
}

// isAffirmative reports whether a free-text remote field counts as remote.
func isAffirmative(s string) bool {
	return affirmatives[strings.ToLower(strings.TrimSpace(s))]
}

// parseCrawledSalary applies the crawled-source currency heuristic to a
// free-text salary field. Indian locale markers switch the currency to INR.
// No numeric range is extracted; Visible is a conservative disclosure flag
// set whenever any salary text is present.
func parseCrawledSalary(text string) domain.Salary {
	sal := domain.Salary{Currency: defaultCurrency}
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return sal
	}
	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "lakh") || strings.Contains(lower, "lpa") {
		sal.Currency = "INR"
	}
	sal.Visible = true
	return sal
}
