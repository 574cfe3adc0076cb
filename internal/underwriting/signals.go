package underwriting

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wonny/realdeal/internal/contracts"
)

// Signal extraction is a rule engine over the listing description: an
// ordered set of matchers with explicit precedence (exclusion tokens are
// checked before acceptance), not one monolithic regex. Pure and
// deterministic; the worst case is an all-unknown signals record.

// Sane ranges for parsed amounts (CAD).
const (
	minParsedRent  = 500
	maxParsedRent  = 15_000
	minPerUnitRent = 800
	maxPerUnitRent = 8_000
	maxUnitsSummed = 3

	minCondoFee = 50
	maxCondoFee = 2_000

	// contextWindow is how many characters around a dollar amount are
	// scanned for accept/exclude tokens.
	contextWindow = 40
)

// rentContextTokens suggest a nearby dollar amount is rent.
var rentContextTokens = []string{
	"rent", "tenant", "lease", "/mo", "month", "monthly",
	"upstairs", "basement", "unit", "suite", "income",
	"upper", "lower", "main", "floor",
}

// rentExcludeTokens disqualify a nearby dollar amount as rent. Checked
// before the accept tokens.
var rentExcludeTokens = []string{
	"deposit", "damage", "security", "down", "closing",
	"tax", "taxes", "hoa", "condo fee", "fees",
	"sqft", "square", "year", "annual", "/yr",
	"assessment", "renovation", "reno",
}

// multiUnitTokens trigger the rent-sum rule and the multi-unit signal.
var multiUnitTokens = []string{
	"duplex", "triplex", "fourplex", "4plex",
	"2 units", "two units", "3 units", "three units",
	"separate suite", "secondary suite", "in-law suite",
	"basement apartment", "separate entrance",
	"unit a", "unit b", "upper unit", "lower unit",
	"upstairs", "basement", "main floor",
}

// unitCountTokens map a keyword to an implied unit count.
var unitCountTokens = []struct {
	token string
	count int
}{
	{"fourplex", 4},
	{"4plex", 4},
	{"triplex", 3},
	{"3 units", 3},
	{"three units", 3},
	{"duplex", 2},
	{"2 units", 2},
	{"two units", 2},
}

var condoTokens = []string{
	"condo", "condominium", "strata", "maintenance fee", "condo fee", "hoa",
}

var utilitiesIncludedTokens = []string{
	"utilities included", "all inclusive", "incl utilities",
	"includes hydro", "includes heat", "hydro included",
}

var tenantPaysTokens = []string{
	"tenant pays", "tenant to pay", "hydro extra", "utilities extra",
	"plus utilities", "+ utilities", "tenant responsible for utilities",
}

var legalPositiveTokens = []string{
	"legal", "registered", "licensed", "permitted", "code compliant",
}

// legalNegativeTokens win over positive ones: "not legal" contains "legal".
var legalNegativeTokens = []string{
	"non-conforming", "non conforming", "not legal", "unpermitted", "illegal",
}

// suiteContextTokens gate the legal-suite matcher so "legal description"
// boilerplate does not read as a legal suite.
var suiteContextTokens = []string{
	"suite", "apartment", "unit", "basement", "in-law", "secondary",
}

var (
	dollarAmountRe   = regexp.MustCompile(`\$([\d,]+)`)
	perMonthAmountRe = regexp.MustCompile(`([\d,]+)\s*(?:/|\s)(?:mo|month)`)
	rentLabelRe      = regexp.MustCompile(`rents?(?:\s*(?:of|:|=|at))?\s*\$?([\d,]+)`)

	condoFeeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:condo|maintenance)\s+fees?\s*[:\s]*\$?\s*([\d,]+)`),
		regexp.MustCompile(`hoa\s*[:\s]*\$?\s*([\d,]+)`),
		regexp.MustCompile(`\$?\s*([\d,]+)\s*(?:/mo|/month)\s*(?:condo|maintenance)\s+fee`),
	}
)

// ExtractSignals parses a listing description into structured signals.
// Never fails; empty or malformed text yields an all-unknown record.
func ExtractSignals(description string) contracts.ListingSignals {
	signals := contracts.ListingSignals{
		UtilitiesStatus:  contracts.UtilitiesUnknown,
		LegalSuiteStatus: contracts.SuiteUnknown,
	}

	text := normalizeText(description)
	if text == "" {
		return signals
	}

	signals.MultiUnitSignal = containsAny(text, multiUnitTokens)
	if count, ok := unitCountFromKeywords(text); ok {
		signals.UnitCountHint = &count
	}

	if rent, units, ok := parseRent(text); ok {
		signals.ExplicitRentMonthly = &rent
		if units >= 2 {
			// The text-derived mention count wins over keyword inference.
			signals.UnitCountHint = &units
		}
	}

	signals.CondoSignal = containsAny(text, condoTokens)
	if signals.CondoSignal {
		if fee, ok := parseCondoFee(text); ok {
			signals.CondoFeeMonthly = &fee
		}
	}

	included := containsAny(text, utilitiesIncludedTokens)
	tenantPays := containsAny(text, tenantPaysTokens)
	switch {
	case included && tenantPays:
		// Contradictory text stays unknown.
	case included:
		signals.UtilitiesStatus = contracts.UtilitiesIncluded
	case tenantPays:
		signals.UtilitiesStatus = contracts.UtilitiesTenantPays
	}

	if containsAny(text, suiteContextTokens) {
		switch {
		case containsAny(text, legalNegativeTokens):
			signals.LegalSuiteStatus = contracts.SuiteNonConforming
		case containsAny(text, legalPositiveTokens):
			signals.LegalSuiteStatus = contracts.SuiteLegal
		}
	}

	return signals
}

// rentCandidate is a dollar amount with the position of its digits,
// used to scan the surrounding context.
type rentCandidate struct {
	amount float64
	pos    int
}

// parseRent returns the explicit monthly rent, the number of per-unit
// mentions summed (0 when a single amount was used), and whether any
// rent was found.
func parseRent(text string) (rent float64, units int, ok bool) {
	validated := validatedCandidates(text)
	if len(validated) == 0 {
		return 0, 0, false
	}

	// Multi-unit sum rule: with a multi-unit signal and 2+ validated
	// per-unit amounts, the mentions are summed. A "total"-labeled amount
	// beats the sum.
	if containsAny(text, multiUnitTokens) && len(validated) >= 2 {
		var totals, perUnit []float64
		for _, c := range validated {
			ctx := contextAround(text, c.pos)
			if strings.Contains(ctx, "total") {
				totals = append(totals, c.amount)
			} else if c.amount >= minPerUnitRent && c.amount <= maxPerUnitRent {
				perUnit = append(perUnit, c.amount)
			}
		}
		if len(totals) > 0 {
			return maxFloat(totals), 0, true
		}
		if len(perUnit) >= 2 {
			if len(perUnit) > maxUnitsSummed {
				perUnit = perUnit[:maxUnitsSummed]
			}
			return sumFloat(perUnit), len(perUnit), true
		}
	}

	// Single or ambiguous: take the maximum validated amount so a smaller
	// unrelated figure is not mistaken for the rent.
	amounts := make([]float64, len(validated))
	for i, c := range validated {
		amounts[i] = c.amount
	}
	return maxFloat(amounts), 0, true
}

// validatedCandidates extracts dollar amounts and keeps those inside the
// sane range whose context contains a rent token and no exclusion token.
func validatedCandidates(text string) []rentCandidate {
	var validated []rentCandidate
	for _, c := range extractAmounts(text) {
		if c.amount < minParsedRent || c.amount > maxParsedRent {
			continue
		}
		ctx := contextAround(text, c.pos)
		if containsAny(ctx, rentExcludeTokens) {
			continue
		}
		if containsAny(ctx, rentContextTokens) {
			validated = append(validated, c)
		}
	}
	return validated
}

// extractAmounts collects candidate amounts from three pattern families,
// deduplicated by the position of the captured digits so "$1800/mo" does
// not yield two entries.
func extractAmounts(text string) []rentCandidate {
	seen := make(map[int]float64)

	for _, re := range []*regexp.Regexp{dollarAmountRe, perMonthAmountRe, rentLabelRe} {
		for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
			start, end := m[2], m[3]
			amount, err := parseAmount(text[start:end])
			if err != nil {
				continue
			}
			if _, dup := seen[start]; !dup {
				seen[start] = amount
			}
		}
	}

	candidates := make([]rentCandidate, 0, len(seen))
	for pos, amount := range seen {
		candidates = append(candidates, rentCandidate{amount: amount, pos: pos})
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].pos < candidates[j].pos })
	return candidates
}

// parseCondoFee matches fee-context tokens with an adjacent amount and
// accepts it only inside the sane range.
func parseCondoFee(text string) (float64, bool) {
	for _, re := range condoFeeRes {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		fee, err := parseAmount(m[1])
		if err != nil {
			continue
		}
		if fee >= minCondoFee && fee <= maxCondoFee {
			return fee, true
		}
	}
	return 0, false
}

func unitCountFromKeywords(text string) (int, bool) {
	for _, uc := range unitCountTokens {
		if strings.Contains(text, uc.token) {
			return uc.count, true
		}
	}
	return 0, false
}

// normalizeText lowercases and collapses whitespace.
func normalizeText(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func contextAround(text string, pos int) string {
	start := pos - contextWindow
	if start < 0 {
		start = 0
	}
	end := pos + contextWindow
	if end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

func containsAny(text string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(text, token) {
			return true
		}
	}
	return false
}

func parseAmount(digits string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(digits, ",", ""), 64)
}

func maxFloat(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func sumFloat(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum
}
