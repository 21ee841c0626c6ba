package domain

// Record store field names of the submissions table.
const (
	FieldStartupName      = "Startup Name"
	FieldPitchDeck        = "Non-Confidential Pitch Deck"
	FieldStatus           = "AI Analysis Status"
	FieldOverallScore     = "Overall Score"
	FieldTechnologyScore  = "Technology Score"
	FieldMarketScore      = "Market Score"
	FieldTeamScore        = "Team Score"
	FieldTechnologyReason = "Technology Score Reasoning"
	FieldMarketReason     = "Market Score Reasoning"
	FieldTeamReason       = "Team Score Reasoning"
	FieldSummary          = "AI Analysis Summary"
	FieldInvestmentThesis = "Investment Thesis"
	FieldDifferentiation  = "Competitive Differentiation"
	FieldTherapeuticFocus = "AI Detected Therapeutic Focus"
	FieldLastUpdated      = "Analysis Last Updated"
	FieldNotes            = "Analysis Notes"
)

// Maximum lengths of the free-text fields.
const (
	MaxReasoningChars = 2000
	MaxSummaryChars   = 5000
	MaxThesisChars    = 2000
	MaxFocusChars     = 500
	MaxNotesChars     = 2000
)
