package llm

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/nachoal/parts-agent-go/internal/metrics"
)

// ParseStage names the step of the argument parser that produced a result.
// Anything other than StageStrict means the model emitted a malformed payload.
type ParseStage string

const (
	StageStrict    ParseStage = "strict"
	StageTruncated ParseStage = "truncated"
	StageRecovered ParseStage = "recovered"
	StageEmpty     ParseStage = "empty"
)

// ParsedArgs is the outcome of ParseToolArguments
type ParsedArgs struct {
	Args  map[string]interface{}
	Stage ParseStage
}

// Legacy single-field call shape
const (
	LegacyFieldKey = "campo"
	LegacyValueKey = "valor"
)

var (
	legacyFieldRe = regexp.MustCompile(`"campo"\s*:\s*"([^"]*)"`)
	legacyValueRe = regexp.MustCompile(`"valor"\s*:\s*(?:"([^"]*)"|([^",}\s]+))`)
	quotedPairRe  = regexp.MustCompile(`"([^"\\]+)"\s*:\s*"([^"\\]*)"`)
)

// ParseToolArguments decodes the arguments string of a model-issued function
// call. It walks Strict -> Truncate-Concatenated -> Regex-Recover -> Empty and
// stops at the first stage that yields data. knownFields drives the recovery
// probes. It never fails; the worst case is an empty map.
func ParseToolArguments(raw string, knownFields []string) ParsedArgs {
	trimmed := strings.TrimSpace(raw)
	if isEmptyArgs(trimmed) {
		return done(map[string]interface{}{}, StageStrict)
	}

	// Some providers return tool args as a JSON string. Unquote once first.
	if trimmed[0] == '"' {
		var unquoted string
		if err := json.Unmarshal([]byte(trimmed), &unquoted); err == nil {
			trimmed = strings.TrimSpace(unquoted)
			if isEmptyArgs(trimmed) {
				return done(map[string]interface{}{}, StageStrict)
			}
		}
	}

	var v interface{}
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		if args, ok := v.(map[string]interface{}); ok {
			return done(args, StageStrict)
		}
		slog.Warn("tool arguments are valid JSON but not an object", "raw", truncateForLog(raw))
		return done(map[string]interface{}{}, StageEmpty)
	}

	if strings.Contains(trimmed, "}{") {
		if args, ok := decodeFirstObject(trimmed); ok {
			slog.Warn("tool arguments contained concatenated objects, kept the first", "raw", truncateForLog(raw))
			return done(args, StageTruncated)
		}
	}

	if args, ok := recoverLegacyPair(trimmed, knownFields); ok {
		slog.Warn("tool arguments recovered heuristically", "raw", truncateForLog(raw),
			"campo", args[LegacyFieldKey])
		return done(args, StageRecovered)
	}

	slog.Warn("tool arguments could not be parsed", "raw", truncateForLog(raw))
	return done(map[string]interface{}{}, StageEmpty)
}

func done(args map[string]interface{}, stage ParseStage) ParsedArgs {
	metrics.RecordToolArgsParse(string(stage))
	return ParsedArgs{Args: args, Stage: stage}
}

func isEmptyArgs(s string) bool {
	return s == "" || s == "{}" || s == "null"
}

// decodeFirstObject reads one JSON object from the head of s and ignores the
// rest. When the head itself is broken it falls back to cutting at the first
// closing brace.
func decodeFirstObject(s string) (map[string]interface{}, bool) {
	var args map[string]interface{}
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(&args); err == nil && args != nil {
		return args, true
	}

	end := strings.Index(s, "}")
	if end < 0 {
		return nil, false
	}
	args = nil
	if err := json.Unmarshal([]byte(s[:end+1]), &args); err != nil || args == nil {
		return nil, false
	}
	return args, true
}

// recoverLegacyPair extracts a {campo, valor} pair from text that is not valid
// JSON. Strategies run in order: explicit campo/valor keys, any quoted pair
// whose key is a known field, then a loose probe per known field.
func recoverLegacyPair(s string, knownFields []string) (map[string]interface{}, bool) {
	if f := legacyFieldRe.FindStringSubmatch(s); f != nil {
		if v := legacyValueRe.FindStringSubmatch(s); v != nil {
			value := v[1]
			if value == "" {
				value = v[2]
			}
			if strings.TrimSpace(f[1]) != "" && strings.TrimSpace(value) != "" {
				return legacyPair(f[1], value), true
			}
		}
	}

	known := make(map[string]bool, len(knownFields))
	for _, f := range knownFields {
		known[f] = true
	}
	for _, m := range quotedPairRe.FindAllStringSubmatch(s, -1) {
		if known[m[1]] && strings.TrimSpace(m[2]) != "" {
			return legacyPair(m[1], m[2]), true
		}
	}

	for _, field := range knownFields {
		probe, err := regexp.Compile(`"?` + regexp.QuoteMeta(field) + `"?\s*[:=]\s*"?([^",{}]+)`)
		if err != nil {
			continue
		}
		if m := probe.FindStringSubmatch(s); m != nil {
			if value := strings.TrimSpace(m[1]); value != "" {
				return legacyPair(field, value), true
			}
		}
	}

	return nil, false
}

func legacyPair(field, value string) map[string]interface{} {
	return map[string]interface{}{
		LegacyFieldKey: strings.TrimSpace(field),
		LegacyValueKey: strings.TrimSpace(value),
	}
}

func truncateForLog(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
