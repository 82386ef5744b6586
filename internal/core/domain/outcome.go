package domain

// Stage is a state of the identification state machine.
type Stage string

// Pipeline stages.
const (
	StageStart          Stage = "START"
	StageVisionHighConf Stage = "VISION_HIGH_CONF"
	StageWebCollect     Stage = "WEB_COLLECT"
	StageTextAnalysis   Stage = "TEXT_ANALYSIS"
	StageVisionFallback Stage = "VISION_FALLBACK"
	StageNotIdentified  Stage = "NOT_IDENTIFIED"
)

// String returns the string representation.
func (s Stage) String() string {
	return string(s)
}

// CategoryUnknown is the category assigned when inference finds no match.
const CategoryUnknown = "unknown"

// Outcome is the terminal value of one identification run.
// Stage is the accepting stage, or StageNotIdentified.
type Outcome struct {
	Identified bool
	Reason     string
	Stage      Stage
	Evidence   EvidenceResult
	Match      *CatalogEntry
	Category   string
	Trace      []Stage
}

// IdentifiedAt builds an accepted outcome.
func IdentifiedAt(stage Stage, evidence EvidenceResult, trace []Stage) Outcome {
	return Outcome{
		Identified: true,
		Stage:      stage,
		Evidence:   evidence,
		Trace:      append(append([]Stage(nil), trace...), stage),
	}
}

// NotIdentified builds a rejected outcome. No partial evidence is kept.
func NotIdentified(reason string, trace []Stage) Outcome {
	return Outcome{
		Identified: false,
		Reason:     reason,
		Stage:      StageNotIdentified,
		Evidence:   NegativeEvidence(""),
		Trace:      append(append([]Stage(nil), trace...), StageNotIdentified),
	}
}

// Visited reports whether the run passed through the given stage.
func (o Outcome) Visited(stage Stage) bool {
	for _, s := range o.Trace {
		if s == stage {
			return true
		}
	}
	return false
}
