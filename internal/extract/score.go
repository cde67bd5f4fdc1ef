package extract

import (
	"github.com/octobees/leads-generator/sitescan/internal/address"
)

const (
	signalPostalCode    = "postal_code"
	signalStreetKeyword = "street_keyword"
	signalStreetNumber  = "street_number"
	signalCityStateZip  = "city_state_zip"
	signalCountry       = "country"
	signalLocation      = "location_bonus"

	minAddressScore = 25
)

// addressCandidate is a block of text that may hold a postal address.
type addressCandidate struct {
	Text string
	// Tagged marks text taken from a footer, <address> or address-named element.
	Tagged bool
}

type addressSignal struct {
	Name   string
	Weight int
	Match  func(addressCandidate) bool
}

// addressSignals is evaluated in order; every matching signal adds its weight.
var addressSignals = []addressSignal{
	{Name: signalPostalCode, Weight: 30, Match: func(c addressCandidate) bool { return address.HasPostalCode(c.Text) }},
	{Name: signalStreetKeyword, Weight: 15, Match: func(c addressCandidate) bool { return address.HasStreetKeyword(c.Text) }},
	{Name: signalStreetNumber, Weight: 15, Match: func(c addressCandidate) bool { return address.HasStreetNumber(c.Text) }},
	{Name: signalCityStateZip, Weight: 10, Match: func(c addressCandidate) bool { return address.HasCityStateZip(c.Text) }},
	{Name: signalCountry, Weight: 5, Match: func(c addressCandidate) bool { return address.FindCountry(c.Text) != "" }},
	{Name: signalLocation, Weight: 10, Match: func(c addressCandidate) bool { return c.Tagged }},
}

// ScoreResult reports the aggregate score and the per-signal breakdown.
type ScoreResult struct {
	Total     int
	Breakdown map[string]int
}

func scoreCandidate(c addressCandidate) ScoreResult {
	breakdown := make(map[string]int, len(addressSignals))
	total := 0
	for _, signal := range addressSignals {
		if signal.Match(c) {
			breakdown[signal.Name] = signal.Weight
			total += signal.Weight
		}
	}
	return ScoreResult{Total: total, Breakdown: breakdown}
}

// bestCandidate picks the highest scoring candidate. Ties keep the earlier one and
// anything under minAddressScore is ignored.
func bestCandidate(candidates []addressCandidate) (addressCandidate, ScoreResult, bool) {
	var (
		best      addressCandidate
		bestScore ScoreResult
		found     bool
	)
	for _, c := range candidates {
		score := scoreCandidate(c)
		if score.Total < minAddressScore {
			continue
		}
		if !found || score.Total > bestScore.Total {
			best, bestScore, found = c, score, true
		}
	}
	return best, bestScore, found
}
