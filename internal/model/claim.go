package model

// ClaimStatus is the verdict lifecycle for a claim: created pending,
// settled exactly once by evidence mapping, read-only afterward.
type ClaimStatus string

const (
	ClaimPending          ClaimStatus = "pending"
	ClaimSupported        ClaimStatus = "supported"
	ClaimContradicted     ClaimStatus = "contradicted"
	ClaimUnclear          ClaimStatus = "unclear"
	ClaimInsufficientData ClaimStatus = "insufficient_data"
)

// Entities are the drivers and teams a claim names.
type Entities struct {
	Drivers []string `json:"drivers,omitempty"`
	Teams   []string `json:"teams,omitempty"`
}

// Claim is one verifiable statement extracted from a document. Evidence
// holds the telemetry records that settled it; Citations point back at
// the document passages that state it.
type Claim struct {
	ID         string      `json:"id"`
	Text       string      `json:"claim_text"`
	Type       string      `json:"claim_type"`
	Entities   Entities    `json:"entities"`
	LapStart   int         `json:"lap_start,omitempty"`
	LapEnd     int         `json:"lap_end,omitempty"`
	Confidence float64     `json:"confidence"`
	Rationale  string      `json:"rationale,omitempty"`
	Evidence   []Evidence  `json:"evidence,omitempty"`
	Citations  []Citation  `json:"document_citations,omitempty"`
	Status     ClaimStatus `json:"status"`
}

// ClaimStats aggregates verdicts across a brief's claims.
type ClaimStats struct {
	Total            int     `json:"total"`
	Supported        int     `json:"supported"`
	Contradicted     int     `json:"contradicted"`
	Unclear          int     `json:"unclear"`
	InsufficientData int     `json:"insufficient_data"`
	AvgConfidence    float64 `json:"avg_confidence"`
}

// TallyClaims computes verdict counts and mean confidence.
func TallyClaims(claims []Claim) ClaimStats {
	stats := ClaimStats{Total: len(claims)}
	var sum float64
	for i := range claims {
		sum += claims[i].Confidence
		switch claims[i].Status {
		case ClaimSupported:
			stats.Supported++
		case ClaimContradicted:
			stats.Contradicted++
		case ClaimUnclear:
			stats.Unclear++
		case ClaimInsufficientData:
			stats.InsufficientData++
		}
	}
	if len(claims) > 0 {
		stats.AvgConfidence = sum / float64(len(claims))
	}
	return stats
}
