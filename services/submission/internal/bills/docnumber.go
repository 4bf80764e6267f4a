package bills

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

var docNumberPattern = regexp.MustCompile(`^\d{6}$`)

// nextDocNumber derives the next sequential document number from the newest
// bill whose DocNumber follows the six-digit convention. Bills numbered
// outside the convention are skipped.
func (p *Pipeline) nextDocNumber(ctx context.Context) (string, error) {
	billsDesc, err := p.qb.QueryBillsByDocNumberDesc(ctx)
	if err != nil {
		return "", fmt.Errorf("bill query: %w", err)
	}
	for _, b := range billsDesc {
		if !docNumberPattern.MatchString(b.DocNumber) {
			continue
		}
		n, err := strconv.Atoi(b.DocNumber)
		if err != nil {
			continue
		}
		return fmt.Sprintf("%06d", n+1), nil
	}
	return "", ErrNoBillNumber
}
