package extract

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// Skip stages.
const (
	StageJSONLD = "json-ld"
	StageScript = "script"
	StageBuild  = "build"
	StageDedup  = "dedup"
)

// Skip records one item dropped on the way from page to records.
type Skip struct {
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// reviewFragment matches the shortest brace block around a "review" token.
var reviewFragment = regexp.MustCompile(`(?is)\{.*?"review".*?\}`)

// ParseJSONLD parses the body of a JSON-LD script. When the body is not a
// single document it is retried wrapped in [ ], which recovers scripts that
// hold several objects back to back; the elements are then returned one by one.
func ParseJSONLD(text string) ([]Node, error) {
	n, err := ParseJSON(text)
	if err == nil {
		return []Node{n}, nil
	}
	wrapped, werr := ParseJSON("[" + text + "]")
	if werr != nil {
		return nil, err
	}
	return wrapped.Items, nil
}

// LocateCandidates returns every JSON value that may carry review data in
// an inline script: the whole text when it parses as one document, plus
// each brace fragment around a "review" token that parses on its own.
// Parse failures never abort; they come back as skips.
func LocateCandidates(scriptText string) ([]Node, []Skip) {
	var (
		out   []Node
		skips []Skip
	)

	stripped := strings.TrimSpace(scriptText)
	if strings.HasPrefix(stripped, "{") || strings.HasPrefix(stripped, "[") {
		if n, err := ParseJSON(stripped); err == nil {
			out = append(out, n)
		} else {
			skips = append(skips, Skip{Stage: StageScript, Reason: "whole script: " + err.Error()})
		}
	}

	for _, frag := range reviewFragment.FindAllString(scriptText, -1) {
		n, err := ParseJSON(frag)
		if err != nil {
			log.Debug().Err(err).Int("len", len(frag)).Msg("script fragment is not JSON")
			skips = append(skips, Skip{Stage: StageScript, Reason: "fragment: " + err.Error()})
			continue
		}
		out = append(out, n)
	}
	return out, skips
}
