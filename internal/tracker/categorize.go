package tracker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sadopc/vigil/internal/config"
)

type Category string

const (
	CategoryWork     Category = "Work"
	CategoryPersonal Category = "Personal"
	CategoryNeutral  Category = "Neutral"
)

// Method is the rule tier that produced a category decision.
type Method string

const (
	MethodApp     Method = "App"
	MethodDomain  Method = "Domain"
	MethodKeyword Method = "Keyword"
	MethodDefault Method = "Default"
)

// Rules is a compiled snapshot of the category pattern lists. A snapshot
// is taken at the start of each categorization batch and never swapped
// mid-batch. Each matcher is the case-insensitive OR-combination of its
// list; an empty list matches nothing.
type Rules struct {
	workApps         *regexp.Regexp
	personalApps     *regexp.Regexp
	workDomains      *regexp.Regexp
	personalDomains  *regexp.Regexp
	workKeywords     *regexp.Regexp
	personalKeywords *regexp.Regexp

	HiddenApps     []string
	FullscreenApps []string
}

// CompileRules builds matchers from the configured pattern lists. A
// malformed pattern is a hard error: silently dropping a list would
// mis-categorize everything it covers as Neutral.
func CompileRules(c config.Categories) (*Rules, error) {
	r := &Rules{
		HiddenApps:     c.HiddenApps,
		FullscreenApps: c.FullscreenApps,
	}
	for _, p := range []struct {
		name     string
		patterns []string
		dst      **regexp.Regexp
	}{
		{"work_apps", c.WorkApps, &r.workApps},
		{"personal_apps", c.PersonalApps, &r.personalApps},
		{"work_domains", c.WorkDomains, &r.workDomains},
		{"personal_domains", c.PersonalDomains, &r.personalDomains},
		{"work_keywords", c.WorkKeywords, &r.workKeywords},
		{"personal_keywords", c.PersonalKeywords, &r.personalKeywords},
	} {
		re, err := compileList(p.patterns)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", p.name, err)
		}
		*p.dst = re
	}
	return r, nil
}

func compileList(patterns []string) (*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	return regexp.Compile("(?i)" + strings.Join(patterns, "|"))
}

func match(re *regexp.Regexp, s string) bool {
	return re != nil && re.MatchString(s)
}

// Categorize assigns a category to one observed activity. Rules are
// evaluated in a fixed precedence order, first match wins: work apps,
// personal apps, work domains, personal domains, bare domain, work
// keywords, personal keywords, default Neutral. The subtitle is the
// domain when present, otherwise the full title unless the decision came
// from an app rule.
func (r *Rules) Categorize(processName, domain, info string) (Category, Method, string) {
	category, method := r.decide(processName, domain, info)

	subtitle := ""
	switch {
	case domain != "":
		subtitle = domain
	case method != MethodApp:
		subtitle = info
	}
	return category, method, subtitle
}

func (r *Rules) decide(processName, domain, info string) (Category, Method) {
	switch {
	case match(r.workApps, processName):
		return CategoryWork, MethodApp
	case match(r.personalApps, processName):
		return CategoryPersonal, MethodApp
	case match(r.workDomains, domain):
		return CategoryWork, MethodDomain
	case match(r.personalDomains, domain):
		return CategoryPersonal, MethodDomain
	case domain != "":
		return CategoryNeutral, MethodDomain
	case match(r.workKeywords, info):
		return CategoryWork, MethodKeyword
	case match(r.personalKeywords, info):
		return CategoryPersonal, MethodKeyword
	default:
		return CategoryNeutral, MethodDefault
	}
}

// Conflict reports a value matched by both a Work and a Personal list.
// Precedence already resolves these to Work; the report exists so the
// user can fix their configuration, never as a categorizer error.
type Conflict struct {
	Value string
	Field string // "process" or "domain"
}

// Conflicts scans observed process names and domains for values matching
// both sides of a pattern pair.
func (r *Rules) Conflicts(processes, domains []string) []Conflict {
	var out []Conflict
	seen := make(map[string]bool)
	for _, p := range processes {
		if p == "" || seen["p:"+p] {
			continue
		}
		seen["p:"+p] = true
		if match(r.workApps, p) && match(r.personalApps, p) {
			out = append(out, Conflict{Value: p, Field: "process"})
		}
	}
	for _, d := range domains {
		if d == "" || seen["d:"+d] {
			continue
		}
		seen["d:"+d] = true
		if match(r.workDomains, d) && match(r.personalDomains, d) {
			out = append(out, Conflict{Value: d, Field: "domain"})
		}
	}
	return out
}
