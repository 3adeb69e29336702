package report

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"

	"github.com/johnqtcg/spoon/internal/insight"
)

// ErrParseFailure indicates a document that is not an exported report.
var ErrParseFailure = errors.New("failed to parse report")

var languagePattern = regexp.MustCompile(`^(.+) \((\d+)\)$`)

// Parsed is a report read back from Markdown.
type Parsed struct {
	Kind       insight.Kind
	Source     string
	SourceSize string
	Report     insight.Report
}

type section struct {
	paragraphs []string
	items      []string
}

// Parse reads a document produced by Render.
func Parse(data []byte) (Parsed, error) {
	rawFM, body, err := splitFrontMatter(data)
	if err != nil {
		return Parsed{}, err
	}

	var fm frontMatter
	if err := yaml.Unmarshal(rawFM, &fm); err != nil {
		return Parsed{}, fmt.Errorf("%w: front matter: %v", ErrParseFailure, err)
	}

	sections := collectSections(body)
	for _, name := range sectionOrder {
		if _, ok := sections[name]; !ok {
			return Parsed{}, fmt.Errorf("%w: missing section %q", ErrParseFailure, name)
		}
	}

	analytics, err := parseAnalytics(pairs(sections[sectionAnalytics].items))
	if err != nil {
		return Parsed{}, err
	}
	assessment := pairs(sections[sectionAssessment].items)

	r := insight.Report{
		Summary:          strings.Join(sections[sectionSummary].paragraphs, "\n\n"),
		AIInsight:        fm.AIInsight,
		Features:         sections[sectionFeatures].items,
		UseCases:         sections[sectionUseCases].items,
		TechStack:        sections[sectionTechStack].items,
		Analytics:        analytics,
		Challenges:       sections[sectionChallenges].items,
		Humor:            unquote(strings.Join(sections[sectionTake].paragraphs, "\n")),
		EffortLevel:      insight.EffortLevel(assessment[keyEffort]),
		ReadmeQuality:    insight.ReadmeQuality(assessment[keyReadme]),
		CodeQuality:      insight.CodeQuality(assessment[keyCode]),
		ActivityLevel:    insight.ActivityLevel(assessment[keyActivity]),
		LiveDemo:         fromNA(assessment[keyLiveDemo]),
		DeploymentStatus: insight.DeploymentStatus(assessment[keyDeployment]),
	}

	return Parsed{
		Kind:       insight.Kind(fm.Kind),
		Source:     fm.Source,
		SourceSize: fm.SourceSize,
		Report:     r,
	}, nil
}

func splitFrontMatter(data []byte) ([]byte, []byte, error) {
	s := strings.ReplaceAll(string(data), "\r\n", "\n")
	if !strings.HasPrefix(s, "---\n") {
		return nil, nil, fmt.Errorf("%w: missing front matter", ErrParseFailure)
	}
	rest := s[len("---\n"):]
	end := strings.Index(rest, "\n---\n")
	if end < 0 {
		return nil, nil, fmt.Errorf("%w: unterminated front matter", ErrParseFailure)
	}
	return []byte(rest[:end+1]), []byte(rest[end+len("\n---\n"):]), nil
}

// collectSections groups top-level blocks under their level-two heading.
// Values are taken from source lines so inline markup survives verbatim.
func collectSections(body []byte) map[string]*section {
	root := goldmark.New().Parser().Parse(text.NewReader(body))

	sections := make(map[string]*section)
	var current *section
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *gmast.Heading:
			current = nil
			if node.Level == 2 {
				current = &section{}
				sections[rawText(node, body)] = current
			}
		case *gmast.Paragraph:
			if current != nil {
				current.paragraphs = append(current.paragraphs, rawText(node, body))
			}
		case *gmast.Blockquote:
			if current != nil {
				for c := node.FirstChild(); c != nil; c = c.NextSibling() {
					current.paragraphs = append(current.paragraphs, rawText(c, body))
				}
			}
		case *gmast.List:
			if current != nil {
				for item := node.FirstChild(); item != nil; item = item.NextSibling() {
					current.items = append(current.items, rawText(item.FirstChild(), body))
				}
			}
		}
	}
	return sections
}

func rawText(n gmast.Node, src []byte) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(src))
	}
	return strings.TrimRight(b.String(), " \t\r\n")
}

func pairs(items []string) map[string]string {
	out := make(map[string]string, len(items))
	for _, item := range items {
		key, value, ok := strings.Cut(item, ": ")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

func parseAnalytics(kv map[string]string) (insight.Analytics, error) {
	if kv[keyStars] == na || kv[keyStars] == "" {
		return insight.Analytics{}, nil
	}

	a := insight.Analytics{Available: true}
	ints := []struct {
		key string
		dst *int
	}{
		{keyStars, &a.Stars},
		{keyForks, &a.Forks},
		{keyContributors, &a.Contributors},
		{keyCommits, &a.Commits},
		{keyOpenIssues, &a.OpenIssues},
		{keyPullRequests, &a.PullRequests},
		{keyReleases, &a.Releases},
	}
	for _, f := range ints {
		v, err := strconv.Atoi(kv[f.key])
		if err != nil {
			return insight.Analytics{}, fmt.Errorf("%w: analytics %s: %v", ErrParseFailure, f.key, err)
		}
		*f.dst = v
	}

	langs, err := parseLanguages(kv[keyLanguages])
	if err != nil {
		return insight.Analytics{}, err
	}
	a.Languages = langs
	a.CodeSize = fromNA(kv[keyCodeSize])
	a.LastUpdated = fromNA(kv[keyLastUpdated])
	return a, nil
}

func parseLanguages(v string) (map[string]int, error) {
	out := map[string]int{}
	if v == none || v == na || v == "" {
		return out, nil
	}
	for _, part := range strings.Split(v, ", ") {
		m := languagePattern.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("%w: language entry %q", ErrParseFailure, part)
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, fmt.Errorf("%w: language bytes %q: %v", ErrParseFailure, part, err)
		}
		out[m[1]] = n
	}
	return out, nil
}

func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

func fromNA(v string) string {
	if v == na {
		return ""
	}
	return v
}
