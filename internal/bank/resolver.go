package bank

// lookupFunc answers a rate query for a directional pair.
type lookupFunc func(from, to string) (float64, bool)

// withInverse derives from→to as 1/(to→from) when only the inverse is known
// and memoizes the result.
func withInverse(next lookupFunc, table *RateTable) lookupFunc {
	return func(from, to string) (float64, bool) {
		if rate, ok := next(from, to); ok {
			return rate, true
		}
		inverse, ok := next(to, from)
		if !ok || !usableRate(inverse) {
			return 0, false
		}
		return table.AddIfAbsent(from, to, 1/inverse), true
	}
}

// withTriangulation derives from→to as (source→to)/(source→from). Both legs
// go through next only, so triangulation never recurses into itself.
func withTriangulation(next lookupFunc, table *RateTable, source string) lookupFunc {
	return func(from, to string) (float64, bool) {
		if rate, ok := next(from, to); ok {
			return rate, true
		}
		toBase, ok := next(source, to)
		if !ok {
			return 0, false
		}
		fromBase, ok := next(source, from)
		if !ok || !usableRate(fromBase) {
			return 0, false
		}
		return table.AddIfAbsent(from, to, toBase/fromBase), true
	}
}

func newResolver(table *RateTable, source string) lookupFunc {
	return withTriangulation(withInverse(table.Get, table), table, source)
}
