package executor

// LegState is the lifecycle of one bridge leg.
type LegState string

const (
	LegPending   LegState = "pending"
	LegExecuting LegState = "executing"
	LegCompleted LegState = "completed"
	LegFailed    LegState = "failed"
	// LegSkipped marks legs abandoned after a fatal failure earlier in the
	// sequence.
	LegSkipped LegState = "skipped"
)

// Per-leg completion percentages reported while executing.
const (
	PhasePreparing = 0
	PhaseQuoted    = 25
	PhaseSubmitted = 50
	PhaseConfirmed = 100
)

// ProgressEvent is one state-machine transition of a run. Events for a leg
// are strictly ordered: preparing, quoted, submitted, then confirmed or a
// terminal failure.
type ProgressEvent struct {
	RunID     string
	LegIndex  int
	TotalLegs int
	State     LegState
	Percent   int
	Detail    string
	TxHash    string
}

// LegResult is the terminal record of one leg.
type LegResult struct {
	Index     int
	State     LegState
	TxHash    string
	OutputUSD float64
	Failure   FailureKind
}

// Result summarizes a full execution run, including the settlement transfer.
type Result struct {
	RunID            string
	Legs             []LegResult
	BridgedOutputUSD float64
	SettledUSD       float64
	SettlementTx     string
	Completed        bool
	Failure          FailureKind
}
