package models

import "fmt"

// SignalLabel is the raw value reported by the upstream TrafficLight feed.
type SignalLabel string

const (
	LabelBlue      SignalLabel = "BLUE"
	LabelGreenPos  SignalLabel = "GREEN_POS"
	LabelGreenNeg  SignalLabel = "GREEN_NEG"
	LabelYellowPos SignalLabel = "YELLOW_POS"
	LabelYellowNeg SignalLabel = "YELLOW_NEG"
	LabelRedPos    SignalLabel = "RED_POS"
	LabelRedNeg    SignalLabel = "RED_NEG"
)

// Bucket is the indicator color a signal renders as.
type Bucket string

const (
	BucketBlue   Bucket = "blue"
	BucketGreen  Bucket = "green"
	BucketYellow Bucket = "yellow"
	BucketRed    Bucket = "red"
)

// SignalState is a known signal label resolved to its magnitude and color bucket.
type SignalState struct {
	Label     SignalLabel
	Magnitude int // -3..3
	Bucket    Bucket
}

var signalTable = map[SignalLabel]SignalState{
	LabelBlue:      {Label: LabelBlue, Magnitude: 0, Bucket: BucketBlue},
	LabelGreenPos:  {Label: LabelGreenPos, Magnitude: 1, Bucket: BucketGreen},
	LabelGreenNeg:  {Label: LabelGreenNeg, Magnitude: -1, Bucket: BucketGreen},
	LabelYellowPos: {Label: LabelYellowPos, Magnitude: 2, Bucket: BucketYellow},
	LabelYellowNeg: {Label: LabelYellowNeg, Magnitude: -2, Bucket: BucketYellow},
	LabelRedPos:    {Label: LabelRedPos, Magnitude: 3, Bucket: BucketRed},
	LabelRedNeg:    {Label: LabelRedNeg, Magnitude: -3, Bucket: BucketRed},
}

// LookupSignal maps a raw label to its SignalState.
// Labels outside the table return ErrUnknownLabel, never a zero state.
func LookupSignal(label string) (SignalState, error) {
	s, ok := signalTable[SignalLabel(label)]
	if !ok {
		return SignalState{}, fmt.Errorf("%w: %s", ErrUnknownLabel, label)
	}
	return s, nil
}

// IsKnownSignal reports whether label is one of the seven known labels.
func IsKnownSignal(label string) bool {
	_, ok := signalTable[SignalLabel(label)]
	return ok
}

func (s SignalState) String() string {
	return fmt.Sprintf("%s(%d)", s.Label, s.Magnitude)
}
