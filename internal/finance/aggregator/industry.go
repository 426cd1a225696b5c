package aggregator

import (
	"strings"

	pstrings "civicfin/pkg/platform/strings"
)

// Industry labels.
const (
	IndustryRetired      = "Retired"
	IndustrySelfEmployed = "Self-Employed"
	IndustryNotEmployed  = "Not Employed"
	IndustryOther        = "Other"
)

// placeholders are employer values filers use instead of an answer. Records
// carrying one are treated as lacking an employer.
var placeholders = map[string]struct{}{
	"INFORMATION REQUESTED":                  {},
	"INFORMATION REQUESTED PER BEST EFFORTS": {},
	"REQUESTED":                              {},
	"REQUESTED PER BEST EFFORTS":             {},
	"BEST EFFORTS":                           {},
	"N/A":                                    {},
	"NA":                                     {},
	"NONE":                                   {},
	"NOT PROVIDED":                           {},
	"NOT GIVEN":                              {},
	"UNKNOWN":                                {},
	"REFUSED":                                {},
	"-":                                      {},
}

type industryRule struct {
	industry string
	keywords []string
}

// industryRules are checked in order against the normalized employer, then
// the occupation. The first keyword hit wins.
var industryRules = []industryRule{
	{IndustryRetired, []string{"RETIRED"}},
	{IndustrySelfEmployed, []string{"SELF-EMPLOYED", "SELF EMPLOYED", "SELF"}},
	{IndustryNotEmployed, []string{"NOT EMPLOYED", "UNEMPLOYED", "HOMEMAKER", "STUDENT"}},
	{"Legal", []string{"LAW", "LEGAL", "ATTORNEY", "LAWYER", "LLP", "COUNSEL", "PARALEGAL"}},
	{"Health", []string{"HOSPITAL", "HEALTH", "MEDICAL", "CLINIC", "PHARMA", "PHYSICIAN", "DOCTOR", "NURSE", "DENTAL", "DENTIST", "SURGEON", "MD"}},
	{"Finance & Insurance", []string{"BANK", "CAPITAL", "FINANCIAL", "INVEST", "INSURANCE", "SECURITIES", "ASSET", "EQUITY", "FUND", "CREDIT", "ACCOUNTANT", "CPA"}},
	{"Real Estate", []string{"REAL ESTATE", "REALTY", "REALTOR", "PROPERTIES", "HOMES"}},
	{"Technology", []string{"SOFTWARE", "GOOGLE", "MICROSOFT", "APPLE", "AMAZON", "META PLATFORMS", "TECH", "DIGITAL", "DATA", "ENGINEER", "COMPUTER", "ORACLE", "INTEL CORP"}},
	{"Education", []string{"UNIVERSITY", "COLLEGE", "SCHOOL", "ACADEMY", "EDUCATION", "TEACHER", "PROFESSOR"}},
	{"Government", []string{"STATE OF", "CITY OF", "COUNTY", "FEDERAL", "GOVERNMENT", "DEPARTMENT OF", "U.S.", "US ARMY", "US NAVY", "PUBLIC SCHOOLS"}},
	{"Energy", []string{"ENERGY", "OIL", "GAS", "PETROLEUM", "ELECTRIC", "POWER", "SOLAR", "UTILITY"}},
	{"Manufacturing", []string{"MANUFACTURING", "MOTOR", "AUTOMOTIVE", "GENERAL MOTORS", "FORD", "STELLANTIS", "INDUSTRIES", "STEEL", "CHEMICAL"}},
	{"Construction", []string{"CONSTRUCTION", "CONTRACTOR", "BUILDERS", "ARCHITECT", "PLUMBING", "ROOFING"}},
	{"Agriculture", []string{"FARM", "AGRICULTURE", "RANCH", "DAIRY", "GROWER"}},
	{"Transportation", []string{"AIRLINE", "TRUCKING", "LOGISTICS", "RAILROAD", "TRANSPORT", "SHIPPING"}},
	{"Media & Entertainment", []string{"MEDIA", "ENTERTAINMENT", "STUDIOS", "PUBLISHING", "NEWS", "FILM", "MUSIC"}},
	{"Retail & Food", []string{"RETAIL", "RESTAURANT", "FOOD", "STORES", "SUPERMARKET", "GROCERY"}},
	{"Labor", []string{"UNION", "LOCAL ", "BROTHERHOOD", "AFL-CIO", "WORKERS"}},
	{"Nonprofit", []string{"FOUNDATION", "NONPROFIT", "NON-PROFIT", "CHARITY", "CHURCH", "ASSOCIATION"}},
	{"Consulting & Lobbying", []string{"CONSULTING", "CONSULTANT", "STRATEGIES", "LOBBY", "GOVERNMENT RELATIONS", "ADVISORS"}},
}

// NormalizeEmployer upper-cases and collapses whitespace. It returns ""
// for empty or placeholder values.
func NormalizeEmployer(raw string) string {
	e := strings.ToUpper(pstrings.CollapseSpaces(raw))
	e = strings.TrimRight(e, ".,")
	if e == "" {
		return ""
	}
	if _, ok := placeholders[e]; ok {
		return ""
	}
	return e
}

// ClassifyIndustry maps a normalized employer (and, failing that, the
// occupation) to an industry label. Unmatched employers land in Other.
func ClassifyIndustry(employer, occupation string) string {
	if label, ok := matchRules(employer); ok {
		return label
	}
	if label, ok := matchRules(strings.ToUpper(pstrings.CollapseSpaces(occupation))); ok {
		return label
	}
	return IndustryOther
}

func matchRules(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	padded := " " + s + " "
	for _, rule := range industryRules {
		for _, kw := range rule.keywords {
			if containsWord(padded, kw) {
				return rule.industry, true
			}
		}
	}
	return "", false
}

// containsWord matches kw at the start of a word. Keywords of three
// letters or fewer must match the whole word (plurals allowed) so "MD" does
// not hit "MDX"; longer ones match as prefixes so "BANK" hits "BANKING".
// Keywords ending in a space or carrying punctuation match as substrings.
func containsWord(padded, kw string) bool {
	if strings.HasSuffix(kw, " ") || strings.ContainsAny(kw, ".-/") {
		return strings.Contains(padded, kw)
	}
	idx := 0
	for {
		i := strings.Index(padded[idx:], kw)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(kw)
		if isBoundary(padded[start-1]) {
			if len(kw) > 3 || end >= len(padded) || isBoundary(padded[end]) || isPlural(padded, end) {
				return true
			}
		}
		idx = start + 1
	}
}

func isBoundary(b byte) bool {
	return b == ' ' || b == ',' || b == '.' || b == '&' || b == '/' || b == '-' || b == '(' || b == ')'
}

// isPlural lets "LAW" match "LAWS".
func isPlural(s string, end int) bool {
	return s[end] == 'S' && end+1 < len(s) && isBoundary(s[end+1])
}
