package schema

// Identity columns lead every output row.
const (
	ColumnNr       = "Nr"
	ColumnFirmName = "Firm name"
)

// Ranking columns are inserted right after the identity columns.
const (
	ColumnScore          = "GPT Score"
	ColumnExplanation    = "GPT Score Explanation"
	ColumnEcosystemFit   = "GPT Dutch Ecosystem Fit & Chain Partners"
	ColumnSourcesDetails = "GPT Sources Details"
)

// IdentityColumns returns the leading columns in output order.
func IdentityColumns() []string {
	return []string{ColumnNr, ColumnFirmName}
}

// RankingColumns returns the generated columns in output order.
func RankingColumns() []string {
	return []string{ColumnScore, ColumnExplanation, ColumnEcosystemFit, ColumnSourcesDetails}
}

// OutputHeader derives the output column order from the input header:
// identity columns, ranking columns, then every other input column in its
// original relative order. The result depends only on original.
func OutputHeader(original []string) []string {
	out := make([]string, 0, len(original)+len(RankingColumns())+len(IdentityColumns()))
	out = append(out, IdentityColumns()...)
	out = append(out, RankingColumns()...)
	for _, col := range original {
		if col == ColumnNr || col == ColumnFirmName {
			continue
		}
		out = append(out, col)
	}
	return out
}
