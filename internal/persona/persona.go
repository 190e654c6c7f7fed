// Package persona picks the persona and task an analysis is run for.
package persona

import (
	"path/filepath"
	"strings"
)

// Profile is a persona with the task it wants done.
type Profile struct {
	Persona string
	Job     string
}

type rule struct {
	keywords []string
	profile  Profile
}

// rules are checked in order; the first rule with a keyword found in any
// filename wins.
var rules = []rule{
	{
		keywords: []string{"paper", "research", "study", "journal", "ieee", "acm", "proceedings", "conference"},
		profile: Profile{"PhD Researcher",
			"Conduct comprehensive literature review and identify key methodologies, findings, and research gaps"},
	},
	{
		keywords: []string{"annual", "report", "financial", "earnings", "quarterly", "revenue", "investor"},
		profile: Profile{"Investment Analyst",
			"Analyze financial performance, revenue trends, market positioning, and investment opportunities"},
	},
	{
		keywords: []string{"chapter", "textbook", "chemistry", "physics", "math", "biology", "learn", "guide"},
		profile: Profile{"Graduate Student",
			"Extract key concepts, methodologies, and important information for comprehensive understanding"},
	},
	{
		keywords: []string{"travel", "guide", "city", "hotel", "restaurant", "tourism", "trip"},
		profile: Profile{"Travel Planner",
			"Plan comprehensive itinerary with activities, accommodations, and practical recommendations"},
	},
	{
		keywords: []string{"recipe", "cooking", "cuisine", "dinner", "lunch", "breakfast", "food"},
		profile: Profile{"Food Contractor",
			"Design comprehensive menu with diverse options including dietary restrictions and preparation guidelines"},
	},
	{
		keywords: []string{"software", "api", "programming", "development", "technical", "manual", "documentation"},
		profile: Profile{"Software Developer",
			"Extract technical specifications, implementation guidelines, and best practices"},
	},
}

// Default is used when no filename matches a rule.
var Default = Profile{
	Persona: "Business Analyst",
	Job:     "Extract key insights, important information, and actionable recommendations",
}

// Infer guesses a profile from the lower-cased basenames of the inputs.
func Infer(filenames []string) Profile {
	names := make([]string, len(filenames))
	for i, f := range filenames {
		names[i] = strings.ToLower(filepath.Base(f))
	}
	all := strings.Join(names, " ")

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(all, kw) {
				return r.profile
			}
		}
	}
	return Default
}

// Resolve infers a profile and replaces each field with its override when
// the override is non-empty.
func Resolve(filenames []string, personaOverride, jobOverride string) Profile {
	p := Infer(filenames)
	if personaOverride != "" {
		p.Persona = personaOverride
	}
	if jobOverride != "" {
		p.Job = jobOverride
	}
	return p
}
