package portfolio

import "github.com/google/uuid"

// PortfolioKey is the opaque identifier of a Portfolio. It is backed by a
// UUID so portfolios can be created offline, merged across CSV exports, and
// referenced by synthesizers without a central allocator.
type PortfolioKey uuid.UUID

// NewPortfolioKey generates a fresh, random PortfolioKey.
func NewPortfolioKey() PortfolioKey { return PortfolioKey(uuid.New()) }

// ParsePortfolioKey parses a PortfolioKey from its canonical string form.
func ParsePortfolioKey(s string) (PortfolioKey, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return PortfolioKey{}, err
	}
	return PortfolioKey(id), nil
}

func (k PortfolioKey) String() string { return uuid.UUID(k).String() }

func (k PortfolioKey) IsZero() bool { return uuid.UUID(k) == uuid.Nil }

func (k PortfolioKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k *PortfolioKey) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return err
	}
	*k = PortfolioKey(id)
	return nil
}

// AccountKey identifies an Account by (institution, account-number).
type AccountKey struct {
	Institution string
	Number      string
}

func (k AccountKey) String() string { return k.Institution + "/" + k.Number }

func (k AccountKey) IsZero() bool { return k.Institution == "" && k.Number == "" }
