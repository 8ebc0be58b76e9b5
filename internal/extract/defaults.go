package extract

// Sentinel values written when a field could not be recovered from a reply.
const (
	ScoreNotAvailable  = "N/A"
	NoDutchMention     = "No specific Dutch market mention found"
	NoSourcesMentioned = "No specific sources mentioned"

	// Ellipsis is appended to any fallback text that had to be truncated.
	Ellipsis = "..."
)

// Limits applied by the prose fallbacks.
const (
	minTableCells = 5

	maxExplanationLines  = 3
	minExplanationRunes  = 20
	maxEcosystemLines    = 2
	maxSourceLines       = 4
	maxFallbackWords     = 100
	maxSourcesRunes      = 250
	analysisHeaderMarker = "ANALYSIS:"
)

// dutchKeywords select lines that talk about the Netherlands market.
var dutchKeywords = []string{"dutch", "netherlands", "amsterdam", "rotterdam", "eindhoven"}

// sourceKeywords select lines that cite where evidence came from.
var sourceKeywords = []string{
	"linkedin",
	"website",
	"news",
	"source",
	"patent",
	"trade",
	"industry",
	"regulatory",
	"publication",
	"database",
	"project",
	"accelerator",
	"portxl",
	"buccaneer",
	"horizon",
	"interreg",
	"emsa",
	"imo",
}
