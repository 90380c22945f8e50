package prover

import (
	"fmt"
	"strconv"
)

// Statement is the private solvency claim: assets and liabilities stay on
// the proving machine, only the threshold becomes public. A Statement is
// consumed once by Attest and never persisted.
type Statement struct {
	Assets      uint64
	Liabilities uint64
	Threshold   uint64
}

// ParseStatement builds a Statement from decimal string fields, as they
// arrive from reporting documents. Values must be unsigned integers below
// 2^64 or the parse fails with ErrMalformedInput.
func ParseStatement(assets, liabilities, threshold string) (Statement, error) {
	var st Statement
	var err error
	if st.Assets, err = parseValue("assets", assets); err != nil {
		return Statement{}, err
	}
	if st.Liabilities, err = parseValue("liabilities", liabilities); err != nil {
		return Statement{}, err
	}
	if st.Threshold, err = parseValue("threshold", threshold); err != nil {
		return Statement{}, err
	}
	return st, nil
}

func parseValue(field, s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformedInput, field, s)
	}
	return v, nil
}

// Capital returns assets - liabilities and whether the subtraction is
// defined (assets >= liabilities).
func (st Statement) Capital() (uint64, bool) {
	if st.Assets < st.Liabilities {
		return 0, false
	}
	return st.Assets - st.Liabilities, true
}
