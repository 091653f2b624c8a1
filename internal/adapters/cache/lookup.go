package cache

// LookupOutcome classifies a store read. Every outcome other than
// LookupHit is handled as a miss; the distinction feeds diagnostics.
type LookupOutcome int

const (
	LookupHit LookupOutcome = iota
	LookupMiss
	LookupMissError
	LookupMissCorrupt
)

func (o LookupOutcome) String() string {
	switch o {
	case LookupHit:
		return "hit"
	case LookupMiss:
		return "miss"
	case LookupMissError:
		return "miss_error"
	case LookupMissCorrupt:
		return "miss_corrupt"
	}
	return "unknown"
}
