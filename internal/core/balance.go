package core

// ComputeBalance folds a set of transactions into income, outcome and
// total. The fold is commutative: the result does not depend on the
// order of the slice. Transactions with an unknown type are ignored
// rather than counted into either bucket.
func ComputeBalance(transactions []Transaction) Balance {
	var income, outcome int64
	for _, t := range transactions {
		switch t.Type {
		case Income:
			income += t.Value.Cents
		case Outcome:
			outcome += t.Value.Cents
		}
	}
	return Balance{
		Income:  Money{Cents: income},
		Outcome: Money{Cents: outcome},
		Total:   Money{Cents: income - outcome},
	}
}
