package evidence

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/custodia-labs/artid/internal/core/domain"
)

// ErrUnparseable indicates a model reply held no usable evidence object.
var ErrUnparseable = errors.New("evidence: reply is not a valid evidence object")

// ParseOutcome is the tagged result of parsing one model reply.
// When Ok is false, Result is negative evidence and Err says why.
type ParseOutcome struct {
	Ok     bool
	Result domain.EvidenceResult
	Err    error
}

func parseFailed(err error) ParseOutcome {
	return ParseOutcome{Ok: false, Result: domain.NegativeEvidence(""), Err: err}
}

var fencePattern = regexp.MustCompile("(?s)```(?:[a-zA-Z]+)?\\s*(.*?)```")

// ParseReply decodes a model reply into evidence. It tolerates markdown
// fences and prose around the JSON object. A reply whose "identified"
// field is missing or not a boolean is a failure.
func ParseReply(raw string) ParseOutcome {
	text := strings.TrimSpace(raw)
	if text == "" {
		return parseFailed(domain.ErrEmptyReply)
	}
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	fields, err := decodeObject(text)
	if err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return parseFailed(fmt.Errorf("%w: no JSON object found", ErrUnparseable))
		}
		fields, err = decodeObject(text[start : end+1])
		if err != nil {
			return parseFailed(fmt.Errorf("%w: %w", ErrUnparseable, err))
		}
	}

	identified, ok := fields["identified"].(bool)
	if !ok {
		return parseFailed(fmt.Errorf("%w: identified is missing or not a boolean", ErrUnparseable))
	}

	result := domain.EvidenceResult{
		Identified:  identified,
		Confidence:  toConfidence(fields["confidence"]),
		Title:       toString(fields["title"]),
		Artist:      firstString(fields, "artist", "artistName", "author"),
		Year:        toString(fields["year"]),
		Period:      firstString(fields, "period", "style", "movement"),
		Technique:   firstString(fields, "technique", "medium"),
		Dimensions:  toString(fields["dimensions"]),
		Description: toString(fields["description"]),
		Tags:        toTags(fields["tags"]),
		IsMonument:  toBool(fields["isMonument"]),
		Country:     toString(fields["country"]),
	}
	return ParseOutcome{Ok: true, Result: result.Sanitize()}
}

func decodeObject(s string) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, errors.New("null object")
	}
	return fields, nil
}

// toConfidence accepts 0.85, 85, "0.85" and "85%".
func toConfidence(v any) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		percent := strings.HasSuffix(s, "%")
		s = strings.TrimSuffix(s, "%")
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0
		}
		f = parsed
		if percent {
			f /= 100
		}
	default:
		return 0
	}
	if f > 1 && f <= 100 {
		f /= 100
	}
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return math.Min(f, 1)
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func firstString(fields map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := toString(fields[k]); s != "" {
			return s
		}
	}
	return ""
}

func toBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(t))
		return err == nil && b
	default:
		return false
	}
}

func toTags(v any) []string {
	switch t := v.(type) {
	case []any:
		tags := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	case string:
		return strings.Split(t, ",")
	default:
		return nil
	}
}
