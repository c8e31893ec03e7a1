package join

import (
	tabular "github.com/go-tabular/tabular"
	"github.com/go-tabular/tabular/errors"
)

// Fold joins a sequence of Tables pairwise, left to right, on a
// shared key list. For inner, outer and cross joins the result's
// content does not depend on the fold order, though row order may.
func Fold(kind Kind, keys []Key, opts *Options, tables ...tabular.Table) (tabular.Table, error) {
	if len(tables) == 0 {
		return nil, errors.ValidationError{Subject: "join fold", Reason: "at least one table is required"}
	}
	result := tables[0]
	for _, t := range tables[1:] {
		next, err := Join(kind, result, t, keys, opts)
		if err != nil {
			return nil, err
		}
		result = next
	}
	return result, nil
}
