package evidence

import (
	"regexp"
	"strings"
)

// Provenance marker patterns. These are static heuristics over the evidence
// text; nothing is resolved or fetched.
var (
	urlRE   = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+)`)
	doiRE   = regexp.MustCompile(`(?i)\b10\.\d{4,9}/[-._;()/:a-z0-9]+\b`)
	pmidRE  = regexp.MustCompile(`(?i)\bPMID\s*:\s*\d+\b|\bPMID\s+\d+\b|\bpubmed\s*:\s*\d+\b`)
	arxivRE = regexp.MustCompile(`(?i)\barxiv\s*:\s*\d{4}\.\d{4,5}\b|\b\d{4}\.\d{4,5}\s*\[`)
	isbnRE  = regexp.MustCompile(`(?i)\bISBN(?:-13)?\s*:\s*[\d-]{10,17}\b`)
	yearRE  = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)

	sourcePrefixRE = regexp.MustCompile(`(?i)^\s*(source|sources|ref|reference|citation)\s*:\s*`)
	bracketCitRE   = regexp.MustCompile(`\[\s*\d+\s*\]`)
	parenYearRE    = regexp.MustCompile(`\(\s*\d{4}\s*\)`)

	schemeRE   = regexp.MustCompile(`(?i)^https?://`)
	digitsRE   = regexp.MustCompile(`\d+`)
	arxivIDRE  = regexp.MustCompile(`\d{4}\.\d{4,5}`)
	nonDigitRE = regexp.MustCompile(`[^0-9]`)

	wordRE = regexp.MustCompile(`[A-Za-z0-9]+`)
)

// authorityTokens is a fixed vocabulary of standards bodies, journals, and
// institutional publishers whose mention counts as a provenance signal.
var authorityTokens = []string{
	"britannica", "nature", "science", "nejm", "jama", "thelancet", "lancet",
	"pubmed", "ncbi", "nih", "who", "cdc", "fda", "ema", "gov", "acm", "ieee",
	"springer", "elsevier", "oxford", "cambridge", "arxiv",
}

// internalSourceRE matches internal workflow artifacts (interview notes,
// rubrics, job descriptions, panel feedback) that serve as legitimate
// evidence for HR and review-style requests.
var internalSourceRE = regexp.MustCompile(`(?i)\b(` +
	`interview notes?|hiring notes?|scorecard|rubric|role requires|role need[s]?|job description|` +
	`jd|panel feedback|assessment|take[- ]home|case study|` +
	`stakeholder|product sense|tradeoffs?|candidate|sql tasks?` +
	`)\b`)

// Intent detectors over the user text.
var (
	intentFeedbackRE = regexp.MustCompile(`(?i)\b(rejection|reject|feedback|actionable|improve|strengths?|gaps?|areas to improve|interview|candidate|hiring)\b`)
	intentFactoidRE  = regexp.MustCompile(`(?i)\b(capital|population|date|who is|what is)\b`)
)

// sourceSignals reports which provenance markers appear in a single evidence
// item.
type sourceSignals struct {
	url, doi, pmid, arxiv, isbn       bool
	year, sourcePrefix                bool
	bracketCit, parenYear             bool
	authority, internal               bool
}

func detectSourceSignals(text string) sourceSignals {
	t := strings.TrimSpace(text)
	low := strings.ToLower(t)

	s := sourceSignals{
		url:          urlRE.MatchString(t),
		doi:          doiRE.MatchString(t),
		pmid:         pmidRE.MatchString(t),
		arxiv:        arxivRE.MatchString(t),
		isbn:         isbnRE.MatchString(t),
		year:         yearRE.MatchString(t),
		sourcePrefix: sourcePrefixRE.MatchString(t),
		bracketCit:   bracketCitRE.MatchString(t),
		parenYear:    parenYearRE.MatchString(t),
		internal:     internalSourceRE.MatchString(t),
	}
	for _, tok := range authorityTokens {
		if strings.Contains(low, tok) {
			s.authority = true
			break
		}
	}
	return s
}

// countUniqueSources counts distinct provenance sources across the evidence
// set: unique URL domains, DOIs, PMIDs, arXiv IDs, ISBNs, authority tokens,
// and a single flag for internal workflow artifacts.
func countUniqueSources(evidence []string) int {
	seen := make(map[string]struct{})

	for _, e := range evidence {
		low := strings.ToLower(e)

		for _, m := range urlRE.FindAllString(e, -1) {
			dom := schemeRE.ReplaceAllString(m, "")
			if i := strings.IndexByte(dom, '/'); i >= 0 {
				dom = dom[:i]
			}
			dom = strings.ToLower(strings.TrimSpace(dom))
			if dom != "" {
				seen["url|"+dom] = struct{}{}
			}
		}
		for _, m := range doiRE.FindAllString(e, -1) {
			seen["doi|"+strings.ToLower(m)] = struct{}{}
		}
		for _, m := range pmidRE.FindAllString(e, -1) {
			if d := digitsRE.FindString(m); d != "" {
				seen["pmid|"+d] = struct{}{}
			}
		}
		for _, m := range arxivRE.FindAllString(e, -1) {
			if id := arxivIDRE.FindString(m); id != "" {
				seen["arxiv|"+id] = struct{}{}
			}
		}
		for _, m := range isbnRE.FindAllString(e, -1) {
			if d := nonDigitRE.ReplaceAllString(m, ""); d != "" {
				seen["isbn|"+d] = struct{}{}
			}
		}
		for _, tok := range authorityTokens {
			if strings.Contains(low, tok) {
				seen["auth|"+tok] = struct{}{}
			}
		}
		if internalSourceRE.MatchString(e) {
			seen["internal|artifact"] = struct{}{}
		}
	}

	return len(seen)
}

// tokens lowercases and splits text into alphanumeric tokens.
func tokens(s string) []string {
	raw := wordRE.FindAllString(s, -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		out = append(out, strings.ToLower(t))
	}
	return out
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range tokens(s) {
		set[t] = struct{}{}
	}
	return set
}
