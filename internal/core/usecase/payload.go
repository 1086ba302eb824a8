package usecase

import "strings"

// Action payload verbs. Payloads are "<verb>_<query>" strings carried
// opaquely by the transport.
const (
	ResearchPrefix   = "recheck"
	EscalationPrefix = "request"
)

func researchPayload(query string) string {
	return ResearchPrefix + "_" + query
}

func escalationPayload(query string) string {
	return EscalationPrefix + "_" + query
}

// researchQuery splits the payload at the last delimiter, escalationQuery
// at the first. The asymmetry is intentional and matches the deployed
// payload contract; do not unify.
func researchQuery(payload string) string {
	idx := strings.LastIndex(payload, "_")
	if idx < 0 {
		return ""
	}
	return payload[idx+1:]
}

func escalationQuery(payload string) string {
	idx := strings.Index(payload, "_")
	if idx < 0 {
		return ""
	}
	return payload[idx+1:]
}
