package namematch

import (
	"strings"

	pstrings "civicfin/pkg/platform/strings"
)

// Variants derives the search strings tried for a display name, most
// specific first: the original, "First Last", "Last, First", the last name
// alone, then middle-initial forms when a middle token exists.
func Variants(displayName string) []string {
	original := pstrings.CollapseSpaces(displayName)
	if original == "" {
		return nil
	}

	tokens := displayTokens(original)
	out := []string{original}
	if len(tokens) >= 2 {
		first, last := tokens[0], tokens[len(tokens)-1]
		out = append(out,
			first+" "+last,
			last+", "+first,
			last,
		)
		if len(tokens) >= 3 {
			mid := strings.TrimSuffix(tokens[1], ".")
			if mid != "" {
				initial := string([]rune(mid)[0])
				out = append(out,
					first+" "+initial+" "+last,
					first+" "+initial+". "+last,
				)
			}
		}
	} else if len(tokens) == 1 {
		out = append(out, tokens[0])
	}
	return pstrings.DedupeFold(out)
}

// displayTokens keeps original casing but applies the same reordering and
// suffix filtering as Score.
func displayTokens(name string) []string {
	name = reorder(name)
	name = strings.ReplaceAll(name, ",", " ")
	raw := strings.Fields(name)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		key := strings.ToLower(strings.TrimSuffix(tok, "."))
		if _, skip := ignoredTokens[key]; skip {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
