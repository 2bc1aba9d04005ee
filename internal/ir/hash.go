package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainPlan   = "ctmigrate/plan/v1"
	DomainAction = "ctmigrate/action/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PlanHash computes the content-addressed identity of an action log.
// Callsites are excluded: moving a statement to another line of the script
// does not change what the plan does.
func PlanHash(log ActionLog) (string, error) {
	stripped := make(ActionLog, len(log))
	for i, a := range log {
		a.Callsite = nil
		stripped[i] = a
	}

	canonical, err := MarshalCanonical(stripped)
	if err != nil {
		return "", fmt.Errorf("PlanHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPlan, canonical), nil
}

// ActionID computes the content-addressed identity of one action at a given
// position in its plan.
func ActionID(planHash string, seq int64, a Action) (string, error) {
	a.Callsite = nil
	obj := Object{
		"plan":   String(planHash),
		"seq":    Int(seq),
		"action": a.Object(),
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ActionID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAction, canonical), nil
}

// MustPlanHash is like PlanHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPlanHash(log ActionLog) string {
	h, err := PlanHash(log)
	if err != nil {
		panic(err)
	}
	return h
}
