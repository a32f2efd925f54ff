package risk

import "math"

// Level classifies the aggregated risk score.
type Level string

const (
	LevelLow        Level = "low"
	LevelSuspicious Level = "suspicious"
	LevelHigh       Level = "high"
	LevelMalicious  Level = "malicious"
)

// Action is the admission verdict derived from the level.
type Action string

const (
	ActionAllow     Action = "allow"
	ActionChallenge Action = "challenge"
	ActionBlock     Action = "block"
)

// Signal is the input bag for a risk assessment. Every field is optional;
// missing signals are neutral and contribute nothing to the score. Pointer
// fields distinguish "not measured" from an explicit false/zero.
type Signal struct {
	// FingerprintSimilarity is the similarity to the stored device baseline
	// in [0, 1]. Nil when no fingerprint was computed.
	FingerprintSimilarity *float64

	// NewDevice marks a fingerprint with no stored baseline.
	NewDevice bool

	// IsBot is the browser attestor's bot verdict.
	IsBot bool

	// SignatureValid is the request-signing outcome. Only an explicit false
	// contributes to risk.
	SignatureValid *bool

	// OriginValid is the origin-guard outcome. Only an explicit false
	// contributes to risk.
	OriginValid *bool

	// IPReputation is an externally supplied reputation score in [0, 1],
	// 1 being clean. Nil when no reputation source is wired.
	IPReputation *float64
}

// Assessment is the aggregated verdict. Factors names every contributing
// signal individually so operators can diagnose false positives instead of
// staring at an opaque number.
type Assessment struct {
	Score   int      `json:"score"`
	Level   Level    `json:"level"`
	Factors []string `json:"factors"`
	Action  Action   `json:"action"`
}

// Score contributions and decision thresholds. Additive, capped at 100.
const (
	scoreFingerprintMismatch = 35
	scoreNewDevice           = 5
	scoreBot                 = 50
	scoreBadSignature        = 60
	scoreBadOrigin           = 40
	scoreReputationMax       = 30

	similarityThreshold = 0.6
	reputationThreshold = 0.5

	thresholdMalicious  = 75
	thresholdHigh       = 40
	thresholdSuspicious = 20
)

// Assess reduces the signal bag to a score, level, and admission action.
// Pure function: no side effects, never fails, safe for concurrent use.
func Assess(s Signal) Assessment {
	score := 0
	var factors []string

	if s.FingerprintSimilarity != nil {
		if *s.FingerprintSimilarity < similarityThreshold {
			score += scoreFingerprintMismatch
			factors = append(factors, "fingerprint mismatch")
		}
	} else if s.NewDevice {
		score += scoreNewDevice
		factors = append(factors, "new device")
	}

	if s.IsBot {
		score += scoreBot
		factors = append(factors, "bot-like client")
	}

	if s.SignatureValid != nil && !*s.SignatureValid {
		score += scoreBadSignature
		factors = append(factors, "invalid request signature")
	}

	if s.OriginValid != nil && !*s.OriginValid {
		score += scoreBadOrigin
		factors = append(factors, "invalid origin")
	}

	if s.IPReputation != nil && *s.IPReputation < reputationThreshold {
		score += int(math.Round((1 - *s.IPReputation) * scoreReputationMax))
		factors = append(factors, "poor IP reputation")
	}

	if score > 100 {
		score = 100
	}

	a := Assessment{Score: score, Factors: factors}
	switch {
	case score >= thresholdMalicious:
		a.Level = LevelMalicious
		a.Action = ActionBlock
	case score >= thresholdHigh:
		a.Level = LevelHigh
		a.Action = ActionChallenge
	case score >= thresholdSuspicious:
		a.Level = LevelSuspicious
		a.Action = ActionChallenge
	default:
		a.Level = LevelLow
		a.Action = ActionAllow
	}

	return a
}
