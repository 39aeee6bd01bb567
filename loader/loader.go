// Package loader ingests the engine's CSV input kinds into the domain types
// rebalance.Engine consumes. A malformed row never fails the whole load: it
// is skipped and surfaced as a portfolio.Diagnostic. One Load function
// covers each input kind.
package loader

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	portfolio "github.com/etnz/rebalance"
	"github.com/etnz/rebalance/date"
)

// TickerRow is one row of the tickers CSV input.
type TickerRow struct {
	Symbol    string `csv:"symbol"`
	Kind      string `csv:"kind"`
	Currency  string `csv:"currency"`
	MinInvest string `csv:"min_invest"`
	Rounding  string `csv:"rounding"`
	Type      string `csv:"type"`
	Region    string `csv:"region"`
	Size      string `csv:"size"`
	Style     string `csv:"style"`
}

// LoadTickers parses the tickers CSV input into a symbol-keyed catalog.
func LoadTickers(r io.Reader) (map[string]portfolio.Ticker, []portfolio.Diagnostic, error) {
	var rows []TickerRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, err
	}
	catalog := make(map[string]portfolio.Ticker, len(rows))
	var diags []portfolio.Diagnostic
	for _, row := range rows {
		t, err := tickerFromRow(row)
		if err != nil {
			diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticValidation, row.Symbol, err.Error()))
			continue
		}
		catalog[t.Symbol] = t
	}
	return catalog, diags, nil
}

func tickerFromRow(row TickerRow) (portfolio.Ticker, error) {
	kind, err := parseTickerKind(row.Kind)
	if err != nil {
		return portfolio.Ticker{}, err
	}
	minInvest, err := parseMoney(row.MinInvest, row.Currency)
	if err != nil {
		return portfolio.Ticker{}, fmt.Errorf("min_invest: %w", err)
	}
	rounding, err := parseQuantity(row.Rounding)
	if err != nil {
		return portfolio.Ticker{}, fmt.Errorf("rounding: %w", err)
	}
	subcodes := portfolio.Subcodes{
		Type:   subcodeOf(row.Type),
		Region: subcodeOf(row.Region),
		Size:   subcodeOf(row.Size),
		Style:  subcodeOf(row.Style),
	}
	return portfolio.NewTicker(row.Symbol, kind, minInvest, rounding, subcodes)
}

func parseTickerKind(s string) (portfolio.TickerKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fund-rebalanceable", "":
		return portfolio.FundRebalanceable, nil
	case "fund-not-rebalanceable":
		return portfolio.FundNotRebalanceable, nil
	case "single-security":
		return portfolio.SingleSecurity, nil
	case "etf":
		return portfolio.ETF, nil
	default:
		return 0, fmt.Errorf("unknown ticker kind %q", s)
	}
}

// HoldingRow is one row of the holdings CSV input.
type HoldingRow struct {
	Institution string `csv:"institution"`
	Number      string `csv:"number"`
	Ticker      string `csv:"ticker"`
	Currency    string `csv:"currency"`
	Shares      string `csv:"shares"`
	Price       string `csv:"price"`
	Value       string `csv:"value"`
	Weight      string `csv:"weight"`
}

// LoadHoldings parses the holdings CSV input, grouped by the account key
// they belong to.
func LoadHoldings(r io.Reader) (map[portfolio.AccountKey][]portfolio.Holding, []portfolio.Diagnostic, error) {
	var rows []HoldingRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, err
	}
	out := make(map[portfolio.AccountKey][]portfolio.Holding)
	var diags []portfolio.Diagnostic
	for _, row := range rows {
		h, key, err := holdingFromRow(row)
		if err != nil {
			diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticValidation, row.Ticker, err.Error()))
			continue
		}
		out[key] = append(out[key], h)
	}
	return out, diags, nil
}

func holdingFromRow(row HoldingRow) (portfolio.Holding, portfolio.AccountKey, error) {
	key := portfolio.AccountKey{Institution: row.Institution, Number: row.Number}
	shares, err := parseQuantity(row.Shares)
	if err != nil {
		return portfolio.Holding{}, key, fmt.Errorf("shares: %w", err)
	}
	price, err := parseMoney(row.Price, row.Currency)
	if err != nil {
		return portfolio.Holding{}, key, fmt.Errorf("price: %w", err)
	}
	value, err := parseMoney(row.Value, row.Currency)
	if err != nil {
		return portfolio.Holding{}, key, fmt.Errorf("value: %w", err)
	}
	h := portfolio.NewHolding(key, row.Ticker, shares, price, value)
	if row.Weight != "" {
		w, err := parsePercent(row.Weight)
		if err != nil {
			return portfolio.Holding{}, key, fmt.Errorf("weight: %w", err)
		}
		h.SetWeight(w)
	}
	return h, key, nil
}

// AccountRow is one row of the accounts CSV input.
type AccountRow struct {
	PortfolioKey        string `csv:"portfolio_key"`
	Institution         string `csv:"institution"`
	Number              string `csv:"number"`
	Order               string `csv:"order"`
	Procedure           string `csv:"procedure"`
	TaxType             string `csv:"tax_type"`
	Stock               string `csv:"stock"`
	Bond                string `csv:"bond"`
	Cash                string `csv:"cash"`
	RealEstate          string `csv:"real_estate"`
	Synthesizer         string `csv:"synthesizer"`
	SynthesizerAccounts string `csv:"synthesizer_accounts"` // "inst/number;inst/number"
}

// LoadAccounts parses the accounts CSV input, grouped by the portfolio
// key they belong to.
func LoadAccounts(r io.Reader) (map[string][]portfolio.Account, []portfolio.Diagnostic, error) {
	var rows []AccountRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, err
	}
	out := make(map[string][]portfolio.Account)
	var diags []portfolio.Diagnostic
	for _, row := range rows {
		a, err := accountFromRow(row)
		if err != nil {
			diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticValidation, row.Institution+"/"+row.Number, err.Error()))
			continue
		}
		out[row.PortfolioKey] = append(out[row.PortfolioKey], a)
	}
	return out, diags, nil
}

func accountFromRow(row AccountRow) (portfolio.Account, error) {
	order, err := parseInt(row.Order)
	if err != nil {
		return portfolio.Account{}, fmt.Errorf("order: %w", err)
	}
	procedure, err := parseProcedure(row.Procedure)
	if err != nil {
		return portfolio.Account{}, err
	}
	taxType, err := parseTaxType(row.TaxType)
	if err != nil {
		return portfolio.Account{}, err
	}
	synth, err := parseSynthesizerKind(row.Synthesizer)
	if err != nil {
		return portfolio.Account{}, err
	}
	l1, err := parseLevel1(row.Stock, row.Bond, row.Cash, row.RealEstate)
	if err != nil {
		return portfolio.Account{}, err
	}
	var refs []portfolio.AccountKey
	for _, tok := range splitNonEmpty(row.SynthesizerAccounts, ";") {
		refs = append(refs, parseAccountKeyToken(tok))
	}
	return portfolio.Account{
		Key:                 portfolio.AccountKey{Institution: row.Institution, Number: row.Number},
		Order:               order,
		Procedure:           procedure,
		TaxType:             taxType,
		Level1Weights:       l1,
		Synthesizer:         synth,
		SynthesizerAccounts: refs,
	}, nil
}

func parseAccountKeyToken(tok string) portfolio.AccountKey {
	inst, num, _ := strings.Cut(tok, "/")
	return portfolio.AccountKey{Institution: inst, Number: num}
}

func parseProcedure(s string) (portfolio.RebalanceProcedure, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "percent", "":
		return portfolio.ProcedurePercent, nil
	case "redistribute":
		return portfolio.ProcedureRedistribute, nil
	default:
		return 0, fmt.Errorf("unknown rebalance procedure %q", s)
	}
}

func parseTaxType(s string) (portfolio.TaxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "credit", "":
		return portfolio.TaxCredit, nil
	case "hsa":
		return portfolio.TaxHSA, nil
	case "inherited-ira":
		return portfolio.TaxInheritedIRA, nil
	case "non-roth-401k":
		return portfolio.TaxNonRothFourOhOneK, nil
	case "non-roth-annuity":
		return portfolio.TaxNonRothAnnuity, nil
	case "non-roth-ira":
		return portfolio.TaxNonRothIRA, nil
	case "pension":
		return portfolio.TaxPension, nil
	case "real-estate":
		return portfolio.TaxRealEstate, nil
	case "roth-401k":
		return portfolio.TaxRothFourOhOneK, nil
	case "roth-annuity":
		return portfolio.TaxRothAnnuity, nil
	case "roth-ira":
		return portfolio.TaxRothIRA, nil
	case "taxable":
		return portfolio.TaxTaxable, nil
	default:
		return 0, fmt.Errorf("unknown tax type %q", s)
	}
}

func parseSynthesizerKind(s string) (portfolio.SynthesizerKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return portfolio.SynthesizerNone, nil
	case "averaging":
		return portfolio.SynthesizerAveraging, nil
	case "cpi-annuity":
		return portfolio.SynthesizerCPIAnnuity, nil
	case "negation":
		return portfolio.SynthesizerNegation, nil
	case "no-cpi-annuity":
		return portfolio.SynthesizerNoCPIAnnuity, nil
	case "social-security":
		return portfolio.SynthesizerSocialSecurity, nil
	default:
		return 0, fmt.Errorf("unknown synthesizer kind %q", s)
	}
}

// OverrideRow is one row of the detailed-override CSV input: every
// weight-tree node for one account, flattened.
type OverrideRow struct {
	Institution            string `csv:"institution"`
	Number                 string `csv:"number"`
	Stock                  string `csv:"stock"`
	Bond                   string `csv:"bond"`
	Cash                   string `csv:"cash"`
	RealEstate             string `csv:"real_estate"`
	StockDomestic          string `csv:"stock_domestic"`
	StockForeign           string `csv:"stock_foreign"`
	StockLarge             string `csv:"stock_large"`
	StockNotLarge          string `csv:"stock_not_large"`
	StockMedium            string `csv:"stock_medium"`
	StockSmall             string `csv:"stock_small"`
	StockGrowthAndValue    string `csv:"stock_growth_and_value"`
	StockGrowthOrValue     string `csv:"stock_growth_or_value"`
	StockGrowth            string `csv:"stock_growth"`
	StockValue             string `csv:"stock_value"`
	BondCorporate          string `csv:"bond_corporate"`
	BondForeign            string `csv:"bond_foreign"`
	BondGovernment         string `csv:"bond_government"`
	BondHighYield          string `csv:"bond_high_yield"`
	BondInflationProtected string `csv:"bond_inflation_protected"`
	BondMortgage           string `csv:"bond_mortgage"`
	BondShort              string `csv:"bond_short"`
	BondUncategorized      string `csv:"bond_uncategorized"`
	CashGovernment         string `csv:"cash_government"`
	CashUncategorized      string `csv:"cash_uncategorized"`
}

// LoadOverrides parses the detailed-override CSV input, keyed by account.
func LoadOverrides(r io.Reader) (map[portfolio.AccountKey]portfolio.DetailWeights, []portfolio.Diagnostic, error) {
	var rows []OverrideRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, err
	}
	out := make(map[portfolio.AccountKey]portfolio.DetailWeights, len(rows))
	var diags []portfolio.Diagnostic
	for _, row := range rows {
		key := portfolio.AccountKey{Institution: row.Institution, Number: row.Number}
		d, err := overrideFromRow(row)
		if err != nil {
			diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticValidation, key.String(), err.Error()))
			continue
		}
		out[key] = d
	}
	return out, diags, nil
}

func overrideFromRow(row OverrideRow) (portfolio.DetailWeights, error) {
	var d portfolio.DetailWeights
	assignments := map[*portfolio.Percent]string{
		&d.Level1.Stock: row.Stock, &d.Level1.Bond: row.Bond, &d.Level1.Cash: row.Cash, &d.Level1.RealEstate: row.RealEstate,
		&d.StockDomestic: row.StockDomestic, &d.StockForeign: row.StockForeign,
		&d.StockLarge: row.StockLarge, &d.StockNotLarge: row.StockNotLarge,
		&d.StockMedium: row.StockMedium, &d.StockSmall: row.StockSmall,
		&d.StockGrowthAndValue: row.StockGrowthAndValue, &d.StockGrowthOrValue: row.StockGrowthOrValue,
		&d.StockGrowth: row.StockGrowth, &d.StockValue: row.StockValue,
		&d.BondCorporate: row.BondCorporate, &d.BondForeign: row.BondForeign, &d.BondGovernment: row.BondGovernment,
		&d.BondHighYield: row.BondHighYield, &d.BondInflationProtected: row.BondInflationProtected,
		&d.BondMortgage: row.BondMortgage, &d.BondShort: row.BondShort, &d.BondUncategorized: row.BondUncategorized,
		&d.CashGovernment: row.CashGovernment, &d.CashUncategorized: row.CashUncategorized,
	}
	for dst, src := range assignments {
		if src == "" {
			continue
		}
		v, err := parsePercent(src)
		if err != nil {
			return portfolio.DetailWeights{}, err
		}
		*dst = v
	}
	return d, nil
}

// PortfolioRow is one row of the portfolios CSV input.
type PortfolioRow struct {
	Key                         string `csv:"key"` // blank: a new key is minted
	Filing                      string `csv:"filing"`
	BirthDate                   string `csv:"birth_date"`
	MortalityDate               string `csv:"mortality_date"`
	Currency                    string `csv:"currency"`
	MonthlyAnnuityIncome        string `csv:"monthly_annuity_income"`
	MonthlySocialSecurityIncome string `csv:"monthly_social_security_income"`
	TaxableIncome               string `csv:"taxable_income"`
	Stock                       string `csv:"stock"`
	Bond                        string `csv:"bond"`
	Cash                        string `csv:"cash"`
	RealEstate                  string `csv:"real_estate"`
	IncreaseAtZero              string `csv:"increase_at_zero"`
	IncreaseAtBear              string `csv:"increase_at_bear"`
}

// LoadPortfolios parses the portfolios CSV input.
func LoadPortfolios(r io.Reader) ([]portfolio.Portfolio, []portfolio.Diagnostic, error) {
	var rows []PortfolioRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, nil, err
	}
	var out []portfolio.Portfolio
	var diags []portfolio.Diagnostic
	for _, row := range rows {
		p, err := portfolioFromRow(row)
		if err != nil {
			diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticValidation, row.Key, err.Error()))
			continue
		}
		out = append(out, p)
	}
	return out, diags, nil
}

func portfolioFromRow(row PortfolioRow) (portfolio.Portfolio, error) {
	var key portfolio.PortfolioKey
	if row.Key == "" {
		key = portfolio.NewPortfolioKey()
	} else {
		var err error
		key, err = portfolio.ParsePortfolioKey(row.Key)
		if err != nil {
			return portfolio.Portfolio{}, fmt.Errorf("key: %w", err)
		}
	}
	filing, err := parseFilingStatus(row.Filing)
	if err != nil {
		return portfolio.Portfolio{}, err
	}
	birth, err := parseDate(row.BirthDate)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("birth_date: %w", err)
	}
	mortality, err := parseDate(row.MortalityDate)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("mortality_date: %w", err)
	}
	annuity, err := parseMoney(row.MonthlyAnnuityIncome, row.Currency)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("monthly_annuity_income: %w", err)
	}
	ss, err := parseMoney(row.MonthlySocialSecurityIncome, row.Currency)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("monthly_social_security_income: %w", err)
	}
	taxable, err := parseMoney(row.TaxableIncome, row.Currency)
	if err != nil {
		return portfolio.Portfolio{}, fmt.Errorf("taxable_income: %w", err)
	}
	l1, err := parseLevel1(row.Stock, row.Bond, row.Cash, row.RealEstate)
	if err != nil {
		return portfolio.Portfolio{}, err
	}
	p := portfolio.Portfolio{
		Key:                         key,
		Filing:                      filing,
		BirthDate:                   birth,
		MortalityDate:               mortality,
		MonthlyAnnuityIncome:        annuity,
		MonthlySocialSecurityIncome: ss,
		TaxableIncome:               taxable,
		Level1Weights:               l1,
	}
	if row.IncreaseAtZero != "" {
		v, err := parsePercent(row.IncreaseAtZero)
		if err != nil {
			return portfolio.Portfolio{}, fmt.Errorf("increase_at_zero: %w", err)
		}
		p.SetIncreaseAtZero(v)
	}
	if row.IncreaseAtBear != "" {
		v, err := parsePercent(row.IncreaseAtBear)
		if err != nil {
			return portfolio.Portfolio{}, fmt.Errorf("increase_at_bear: %w", err)
		}
		p.SetIncreaseAtBear(v)
	}
	return p, nil
}

func parseFilingStatus(s string) (portfolio.FilingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "single", "":
		return portfolio.FilingSingle, nil
	case "married-joint":
		return portfolio.FilingMarriedJoint, nil
	case "married-separate":
		return portfolio.FilingMarriedSeparate, nil
	case "head-of-household":
		return portfolio.FilingHeadOfHousehold, nil
	default:
		return 0, fmt.Errorf("unknown filing status %q", s)
	}
}

// CodeRow, KeyMappingRow, BasisRow and GainIncomeRow carry the four
// informational CSV input kinds: read and kept for downstream reporting,
// never consumed by the engine's arithmetic.

type CodeRow struct {
	Code        string `csv:"code"`
	Description string `csv:"description"`
}

type KeyMappingRow struct {
	DistinguishedKey string `csv:"distinguished_key"`
	Institution      string `csv:"institution"`
	Number           string `csv:"number"`
}

type BasisRow struct {
	Institution string `csv:"institution"`
	Number      string `csv:"number"`
	Ticker      string `csv:"ticker"`
	CostBasis   string `csv:"cost_basis"`
	AcquiredOn  string `csv:"acquired_on"`
}

type GainIncomeRow struct {
	Institution string `csv:"institution"`
	Number      string `csv:"number"`
	Year        string `csv:"year"`
	Kind        string `csv:"kind"`
	Amount      string `csv:"amount"`
}

// LoadCodes, LoadKeyMappings, LoadBases and LoadGainsIncome load the
// informational input kinds verbatim: malformed rows here cannot affect
// rebalancing, so the whole-file gocsv error is returned as-is rather
// than diagnosed row by row.

func LoadCodes(r io.Reader) ([]CodeRow, error) {
	var rows []CodeRow
	err := gocsv.Unmarshal(r, &rows)
	return rows, err
}

func LoadKeyMappings(r io.Reader) ([]KeyMappingRow, error) {
	var rows []KeyMappingRow
	err := gocsv.Unmarshal(r, &rows)
	return rows, err
}

func LoadBases(r io.Reader) ([]BasisRow, error) {
	var rows []BasisRow
	err := gocsv.Unmarshal(r, &rows)
	return rows, err
}

func LoadGainsIncome(r io.Reader) ([]GainIncomeRow, error) {
	var rows []GainIncomeRow
	err := gocsv.Unmarshal(r, &rows)
	return rows, err
}

func parseMoney(s, currency string) (portfolio.Money, error) {
	if s == "" {
		return portfolio.M(0, currency), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return portfolio.Money{}, err
	}
	return portfolio.M(v, currency), nil
}

func parseQuantity(s string) (portfolio.Quantity, error) {
	if s == "" {
		return portfolio.Zero, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return portfolio.Quantity{}, err
	}
	return portfolio.Q(v), nil
}

func parsePercent(s string) (portfolio.Percent, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return portfolio.Percent(v), nil
}

func parseLevel1(stock, bond, cash, realEstate string) (portfolio.Level1Weights, error) {
	var l1 portfolio.Level1Weights
	var err error
	if l1.Stock, err = parsePercentOrZero(stock); err != nil {
		return l1, fmt.Errorf("stock: %w", err)
	}
	if l1.Bond, err = parsePercentOrZero(bond); err != nil {
		return l1, fmt.Errorf("bond: %w", err)
	}
	if l1.Cash, err = parsePercentOrZero(cash); err != nil {
		return l1, fmt.Errorf("cash: %w", err)
	}
	if l1.RealEstate, err = parsePercentOrZero(realEstate); err != nil {
		return l1, fmt.Errorf("real_estate: %w", err)
	}
	return l1, nil
}

func parsePercentOrZero(s string) (portfolio.Percent, error) {
	if s == "" {
		return 0, nil
	}
	return parsePercent(s)
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseDate(s string) (date.Date, error) {
	if s == "" {
		return date.Date{}, nil
	}
	return date.Parse(s)
}

func subcodeOf(s string) portfolio.Subcode {
	s = strings.TrimSpace(s)
	if s == "" {
		return portfolio.SubcodeNone
	}
	return portfolio.Subcode([]rune(s)[0])
}

func splitNonEmpty(s, sep string) []string {
	var out []string
	for _, tok := range strings.Split(s, sep) {
		tok = strings.TrimSpace(tok)
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// Assemble joins the independently loaded CSV tables into complete
// portfolios: each portfolio gets its accounts (matched by the portfolio_key
// column), and each account gets its holdings and, if present, its override.
// An account row whose portfolio_key matches no loaded portfolio is dropped
// with a validation diagnostic; it cannot be rebalanced without a parent.
func Assemble(
	portfolios []portfolio.Portfolio,
	accountsByPortfolio map[string][]portfolio.Account,
	holdingsByAccount map[portfolio.AccountKey][]portfolio.Holding,
	overridesByAccount map[portfolio.AccountKey]portfolio.DetailWeights,
) ([]portfolio.Portfolio, []portfolio.Diagnostic) {
	var diags []portfolio.Diagnostic
	claimed := make(map[string]bool, len(accountsByPortfolio))

	out := make([]portfolio.Portfolio, len(portfolios))
	for i, p := range portfolios {
		accounts := accountsByPortfolio[p.Key.String()]
		claimed[p.Key.String()] = true
		p.Accounts = make([]portfolio.Account, len(accounts))
		for j, a := range accounts {
			a.Holdings = holdingsByAccount[a.Key]
			if ov, ok := overridesByAccount[a.Key]; ok {
				a.Override = &ov
			}
			p.Accounts[j] = a
		}
		out[i] = p
	}

	for key, accounts := range accountsByPortfolio {
		if claimed[key] {
			continue
		}
		for _, a := range accounts {
			diags = append(diags, portfolio.NewDiagnostic(portfolio.DiagnosticValidation, a.Key.String(), fmt.Sprintf("orphaned: no portfolio with key %q", key)))
		}
	}
	return out, diags
}
