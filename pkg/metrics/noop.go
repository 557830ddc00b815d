package metrics

// Noop discards all measurements.
type Noop struct{}

func (Noop) RecordPoll(string)             {}
func (Noop) RecordFailure(string)          {}
func (Noop) RecordFailureState(bool)       {}
func (Noop) RecordApplied(int)             {}
func (Noop) RecordLatency(string, float64) {}
func (Noop) RecordTokenAcquired(string)    {}
func (Noop) RecordSettleHold()             {}
func (Noop) RecordError(string)            {}
