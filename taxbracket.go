package portfolio

// TaxBracket is one marginal-rate row of a tax-bracket table. No loader in
// this repository reads these tables and the engine never consults them
// during rebalancing; they exist purely for external report collaborators.
type TaxBracket struct {
	Filing     FilingStatus
	LowerBound Money
	Rate       Percent
}

// TaxBracketTable is an ordered set of brackets for one filing status,
// sorted ascending by LowerBound.
type TaxBracketTable []TaxBracket

// RateFor returns the marginal rate applicable to income, or zero if
// income falls below every bracket's lower bound. Unused by the engine
// itself; kept for report collaborators that display an investor's
// marginal rate alongside the rebalance proposal.
func (t TaxBracketTable) RateFor(income Money) Percent {
	var rate Percent
	for _, b := range t {
		if income.LessThan(b.LowerBound) {
			break
		}
		rate = b.Rate
	}
	return rate
}
