package domain

import "time"

// Rating is a single citizen's rating of a service actor. Ratings are
// immutable facts: created once at submission time and only ever read back
// as part of a snapshot.
type Rating struct {
	ID                string
	UserID            string
	ActorName         string
	Governorate       string
	Delegation        string
	MacroSector       string
	MesoSector        string
	IndicatorCategory string
	IndicatorType     string
	Rating            float64
	Comment           string
	SubmittedAt       time.Time
}

// Dimension names one of the seven filterable rating fields.
type Dimension string

const (
	DimGovernorate       Dimension = "governorate"
	DimDelegation        Dimension = "delegation"
	DimMacroSector       Dimension = "macroSector"
	DimMesoSector        Dimension = "mesoSector"
	DimIndicatorCategory Dimension = "indicatorCategory"
	DimIndicatorType     Dimension = "indicatorType"
	DimActorName         Dimension = "actorName"
)

// Value returns the rating's field value for the given dimension. Unknown
// dimensions yield the empty string.
func (r Rating) Value(d Dimension) string {
	switch d {
	case DimGovernorate:
		return r.Governorate
	case DimDelegation:
		return r.Delegation
	case DimMacroSector:
		return r.MacroSector
	case DimMesoSector:
		return r.MesoSector
	case DimIndicatorCategory:
		return r.IndicatorCategory
	case DimIndicatorType:
		return r.IndicatorType
	case DimActorName:
		return r.ActorName
	default:
		return ""
	}
}
