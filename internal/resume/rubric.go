package resume

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/GradPipeOrg/showoff/internal/rubric"
)

const DefaultRubricVersion = "v1.5"

// Rubric is a versioned weight table for the resume heuristic.
type Rubric struct {
	Version string

	// Presentation.
	SinglePagePoints int
	TwoPagePoints    int
	LongPagePoints   int

	Sections               []string
	ProfileLinks           []string
	SecondaryLinks         []string
	StructureFullPoints    int
	StructurePartialPoints int
	StructureNonePoints    int

	// Technical proficiency.
	Keywords     []string
	KeywordTiers rubric.Tiers

	// Impact.
	QuantifiedPoints  int
	ImprovementPoints int
	ImprovementWords  []string
	ActionVerbs       []string
	VerbTiers         rubric.Tiers

	// Growth and leadership.
	InitiativeWords  []string
	InitiativePoints int
	LeadershipWords  []string
	LeadershipPoints int
}

var rubricV15 = Rubric{
	Version: "v1.5",

	SinglePagePoints: 5,
	TwoPagePoints:    3,
	LongPagePoints:   1,

	Sections:               []string{"experience", "education", "skills"},
	ProfileLinks:           []string{"github.com"},
	SecondaryLinks:         []string{"linkedin.com"},
	StructureFullPoints:    5,
	StructurePartialPoints: 3,
	StructureNonePoints:    1,

	Keywords: []string{
		"python", "java", "javascript", "typescript", "golang", "rust", "c++", "c#",
		"kotlin", "swift", "react", "angular", "vue", "node.js", "next.js", "django", "flask",
		"fastapi", "spring", "aws", "gcp", "azure", "docker", "kubernetes", "terraform",
		"postgresql", "mysql", "mongodb", "redis", "kafka", "graphql", "pytorch", "tensorflow",
		"sql", "linux",
	},
	KeywordTiers: rubric.Tiers{{AtLeast: 6, Points: 20}, {AtLeast: 3, Points: 10}, {AtLeast: 1, Points: 5}},

	QuantifiedPoints:  20,
	ImprovementPoints: 10,
	ImprovementWords:  []string{"increased", "reduced", "improved", "decreased", "boosted", "cut", "accelerated"},
	ActionVerbs: []string{
		"architected", "automated", "built", "created", "deployed", "designed", "developed",
		"engineered", "implemented", "integrated", "launched", "led", "migrated", "optimized",
		"refactored", "scaled", "shipped", "spearheaded",
	},
	VerbTiers: rubric.Tiers{{AtLeast: 5, Points: 20}, {AtLeast: 2, Points: 10}, {AtLeast: 1, Points: 5}},

	InitiativeWords: []string{
		"hackathon", "hackathons", "open source", "open-source", "club", "competition",
		"olympiad", "volunteer", "personal project", "side project", "meetup",
	},
	InitiativePoints: 5,
	LeadershipWords: []string{
		"led", "lead", "captain", "president", "founder", "co-founder", "head", "mentor",
		"mentored", "organizer", "coordinator",
	},
	LeadershipPoints: 5,
}

var rubrics = map[string]Rubric{
	rubricV15.Version: rubricV15,
}

// LookupRubric returns the registered rubric for version, defaulting to
// DefaultRubricVersion when version is empty.
func LookupRubric(version string) (Rubric, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		version = DefaultRubricVersion
	}

	r, ok := rubrics[version]
	if !ok {
		return Rubric{}, fmt.Errorf("unknown resume rubric %q (known: %s)", version, strings.Join(RubricVersions(), ", "))
	}
	return r, nil
}

// RubricVersions lists registered rubric versions in sorted order.
func RubricVersions() []string {
	versions := make([]string, 0, len(rubrics))
	for v := range rubrics {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return versions
}

var quantifiedPattern = regexp.MustCompile(`\d+(?:\.\d+)?\s?%|\b\d+(?:\.\d+)?(?:x|×)(?:[^a-z0-9]|$)`)

// termSet matches whole words or phrases in lower-cased text.
type termSet struct {
	terms    []string
	patterns []*regexp.Regexp
}

func newTermSet(terms []string) termSet {
	set := termSet{
		terms:    make([]string, 0, len(terms)),
		patterns: make([]*regexp.Regexp, 0, len(terms)),
	}
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		set.terms = append(set.terms, term)
		set.patterns = append(set.patterns, regexp.MustCompile(`(?:^|[^a-z0-9])`+regexp.QuoteMeta(term)+`(?:$|[^a-z0-9+#])`))
	}
	return set
}

// distinct counts how many terms occur at least once.
func (s termSet) distinct(text string) int {
	n := 0
	for _, p := range s.patterns {
		if p.MatchString(text) {
			n++
		}
	}
	return n
}

func (s termSet) any(text string) bool {
	for _, p := range s.patterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func containsAll(text string, words termSet) bool {
	return len(words.patterns) > 0 && words.distinct(text) == len(words.patterns)
}

func containsAnySubstring(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}

// Rules compiles the rubric into rule-engine form.
func (r Rubric) Rules() []rubric.Rule[Document] {
	sections := newTermSet(r.Sections)
	keywords := newTermSet(r.Keywords)
	improvements := newTermSet(r.ImprovementWords)
	verbs := newTermSet(r.ActionVerbs)
	initiative := newTermSet(r.InitiativeWords)
	leadership := newTermSet(r.LeadershipWords)

	return []rubric.Rule[Document]{
		{
			Name: "presentation.pages",
			Max:  r.SinglePagePoints,
			Award: func(d Document) int {
				switch d.Pages {
				case 1:
					return r.SinglePagePoints
				case 2:
					return r.TwoPagePoints
				default:
					return r.LongPagePoints
				}
			},
		},
		{
			Name: "presentation.structure",
			Max:  r.StructureFullPoints,
			Award: func(d Document) int {
				hasSections := containsAll(d.Text, sections)
				hasProfile := containsAnySubstring(d.Text, r.ProfileLinks)
				switch {
				case hasSections && hasProfile:
					return r.StructureFullPoints
				case hasSections || hasProfile || containsAnySubstring(d.Text, r.SecondaryLinks):
					return r.StructurePartialPoints
				default:
					return r.StructureNonePoints
				}
			},
		},
		{
			Name:  "technical.keywords",
			Max:   maxTier(r.KeywordTiers),
			Award: func(d Document) int { return r.KeywordTiers.Points(keywords.distinct(d.Text)) },
		},
		{
			Name: "impact.quantification",
			Max:  r.QuantifiedPoints,
			Award: func(d Document) int {
				if quantifiedPattern.MatchString(d.Text) {
					return r.QuantifiedPoints
				}
				if improvements.any(d.Text) {
					return r.ImprovementPoints
				}
				return 0
			},
		},
		{
			Name:  "impact.verbs",
			Max:   maxTier(r.VerbTiers),
			Award: func(d Document) int { return r.VerbTiers.Points(verbs.distinct(d.Text)) },
		},
		{
			Name: "growth.initiative",
			Max:  r.InitiativePoints,
			Award: func(d Document) int {
				if initiative.any(d.Text) {
					return r.InitiativePoints
				}
				return 0
			},
		},
		{
			Name: "growth.leadership",
			Max:  r.LeadershipPoints,
			Award: func(d Document) int {
				if leadership.any(d.Text) {
					return r.LeadershipPoints
				}
				return 0
			},
		},
	}
}

func maxTier(t rubric.Tiers) int {
	best := 0
	for _, tier := range t {
		if tier.Points > best {
			best = tier.Points
		}
	}
	return best
}
