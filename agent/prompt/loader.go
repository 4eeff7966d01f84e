package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/system.txt
	systemRaw string

	//go:embed template/final_thoughts.txt
	finalThoughtsRaw string

	//go:embed template/extract_entities.txt
	extractEntitiesRaw string

	//go:embed template/summarize_state.txt
	summarizeStateRaw string

	//go:embed template/check_confirmation.txt
	checkConfirmationRaw string
)

// Set holds loaded prompt content.
type Set struct {
	System            string
	FinalThoughts     string
	ExtractEntities   string
	SummarizeState    string
	CheckConfirmation string
}

// Load returns a Set with trimmed prompt strings. Safe to call
// concurrently; the embed is compile-time and trimming is cheap.
func Load() Set {
	return Set{
		System:            strings.TrimSpace(systemRaw),
		FinalThoughts:     strings.TrimSpace(finalThoughtsRaw),
		ExtractEntities:   strings.TrimSpace(extractEntitiesRaw),
		SummarizeState:    strings.TrimSpace(summarizeStateRaw),
		CheckConfirmation: strings.TrimSpace(checkConfirmationRaw),
	}
}
