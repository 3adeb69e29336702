package insight

import (
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	gh "github.com/johnqtcg/spoon/internal/github"
)

const (
	maxTechStack  = 8
	maxFeatures   = 6
	maxUseCases   = 4
	maxChallenges = 4
	topLanguages  = 3

	// noUpdateDays stands in for a repository without an update timestamp.
	noUpdateDays = 365
)

var demoURLPattern = regexp.MustCompile(`https?://[^\s)]+`)

type options struct {
	now   func() time.Time
	intn  func(n int) int
	rules *Rules
}

// Option customizes one Classify call.
type Option func(*options)

// WithClock sets the time source used for the activity level.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRand sets the random source used for the humor pick.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		if r != nil {
			o.intn = r.IntN
		}
	}
}

// WithRules replaces the embedded rule set.
func WithRules(r *Rules) Option {
	return func(o *options) {
		if r != nil {
			o.rules = r
		}
	}
}

// Classify derives a Report from in. Apart from the humor pick and the
// activity level, the result depends only on in.
func Classify(in Input, opts ...Option) Report {
	o := options{
		now:   time.Now,
		intn:  rand.IntN,
		rules: defaultRules,
	}
	for _, opt := range opts {
		opt(&o)
	}
	rules := o.rules

	lower := strings.ToLower(in.Text)
	length := utf8.RuneCountInString(in.Text)
	flags := rules.evalFlags(lower)
	meta := in.Metadata

	techStack := techStackFor(rules, flags, meta)
	effort := effortLevel(meta)
	liveDemo := detectLiveDemo(rules, in.Text, meta)

	return Report{
		Summary:          summarize(effort, techStack, meta),
		Features:         withFallback(rules.Features, flags, maxFeatures),
		UseCases:         withFallback(rules.UseCases, flags, maxUseCases),
		TechStack:        techStack,
		Analytics:        analyticsFor(meta),
		Challenges:       withFallback(rules.Challenges, flags, maxChallenges),
		Humor:            pickHumor(rules.Humor, meta, length, o.intn),
		EffortLevel:      effort,
		ReadmeQuality:    readmeQuality(length),
		CodeQuality:      codeQuality(flags, length),
		ActivityLevel:    activityLevel(meta, o.now()),
		LiveDemo:         liveDemo,
		DeploymentStatus: deploymentStatus(liveDemo, flags),
	}
}

func withFallback(s Section, flags map[string]bool, limit int) []string {
	out := s.collect(flags)
	if len(out) == 0 {
		out = append([]string(nil), s.Fallback...)
	}
	return truncate(out, limit)
}

func techStackFor(rules *Rules, flags map[string]bool, meta *gh.RepositoryMetadata) []string {
	detected := rules.TechStack.collect(flags)
	if meta != nil {
		detected = append(detected, rankLanguages(meta.Languages, topLanguages)...)
	}
	if len(detected) == 0 {
		detected = append(detected, rules.TechStack.Fallback...)
	}
	return truncate(dedupe(detected), maxTechStack)
}

// rankLanguages orders languages by byte count, larger first, ties by name.
func rankLanguages(langs map[string]int, n int) []string {
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if langs[names[i]] != langs[names[j]] {
			return langs[names[i]] > langs[names[j]]
		}
		return names[i] < names[j]
	})
	return truncate(names, n)
}

func pickHumor(h Humor, meta *gh.RepositoryMetadata, length int, intn func(int) int) string {
	pick := h.Pool[intn(len(h.Pool))]
	if meta == nil {
		return pick
	}
	switch {
	case meta.Stars > 1000:
		return h.Popular
	case meta.Stars == 0:
		return h.Unstarred
	case meta.Forks > meta.Stars:
		return h.Forked
	case length < 100:
		return h.Short
	}
	return pick
}

func effortLevel(meta *gh.RepositoryMetadata) EffortLevel {
	if meta == nil {
		return EffortSideProject
	}
	total := meta.Stars + meta.Forks + meta.Contributors
	switch {
	case total > 500:
		return EffortEnterpriseBeast
	case total > 100:
		return EffortProductionReady
	case total > 10:
		return EffortSideProject
	default:
		return EffortWeekendHack
	}
}

func readmeQuality(length int) ReadmeQuality {
	switch {
	case length > 2000:
		return ReadmeDocumentationGod
	case length > 1000:
		return ReadmeChefsKiss
	case length > 300:
		return ReadmeAcceptable
	default:
		return ReadmeNeedsCPR
	}
}

func codeQuality(flags map[string]bool, length int) CodeQuality {
	switch {
	case flags["testing"] && flags["ci"] && flags["eslint"]:
		return CodePristine
	case flags["testing"] || flags["ci"]:
		return CodeClean
	case length < 200:
		return CodeNeedsRefactoring
	default:
		return CodeDecent
	}
}

func activityLevel(meta *gh.RepositoryMetadata, now time.Time) ActivityLevel {
	if meta == nil {
		return ActivityOccasional
	}
	days := noUpdateDays
	if meta.UpdatedAt != nil {
		days = int(math.Floor(now.Sub(*meta.UpdatedAt).Hours() / 24))
	}
	switch {
	case days < 7:
		return ActivityVeryActive
	case days < 30:
		return ActivityActive
	case days < 90:
		return ActivityOccasional
	default:
		return ActivityDormant
	}
}

// detectLiveDemo returns the URL from the first demo pattern that matches,
// falling back to the conventional pages URL for *.github.io repositories.
func detectLiveDemo(rules *Rules, text string, meta *gh.RepositoryMetadata) string {
	for _, re := range rules.DemoPatterns {
		match := re.FindString(text)
		if match == "" {
			continue
		}
		if u := demoURLPattern.FindString(match); u != "" {
			return u
		}
	}
	if meta != nil && strings.Contains(meta.Name, ".github.io") {
		return fmt.Sprintf("https://%s.github.io/%s", meta.Owner.Login, meta.Name)
	}
	return ""
}

func deploymentStatus(liveDemo string, flags map[string]bool) DeploymentStatus {
	if liveDemo != "" || flags["deployed"] {
		return DeploymentLive
	}
	return DeploymentUnknown
}

func summarize(effort EffortLevel, techStack []string, meta *gh.RepositoryMetadata) string {
	focus := strings.Join(truncate(techStack, 2), " and ")
	closing := "The codebase reflects careful planning and execution."
	if meta != nil {
		closing = fmt.Sprintf("With %d stars and %d forks, it has gained solid community traction.", meta.Stars, meta.Forks)
	}
	return fmt.Sprintf(
		"This project demonstrates %s level engineering with a focus on %s development. "+
			"The architecture shows thoughtful consideration of modern development practices, "+
			"making it both maintainable and scalable. %s",
		strings.ToLower(string(effort)), focus, closing,
	)
}

func analyticsFor(meta *gh.RepositoryMetadata) Analytics {
	if meta == nil {
		return Analytics{}
	}
	a := Analytics{
		Available:    true,
		Stars:        meta.Stars,
		Forks:        meta.Forks,
		Contributors: meta.Contributors,
		Commits:      meta.Commits,
		OpenIssues:   meta.OpenIssues,
		PullRequests: meta.PullRequests,
		Releases:     meta.Releases,
		Languages:    map[string]int{},
		CodeSize:     fmt.Sprintf("%d MB", int(math.Round(float64(meta.SizeKB)/1024))),
	}
	maps.Copy(a.Languages, meta.Languages)
	if meta.UpdatedAt != nil {
		a.LastUpdated = meta.UpdatedAt.UTC().Format("1/2/2006")
	}
	return a
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func truncate(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
