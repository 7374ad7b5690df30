package parser

import (
	"encoding/json"
	"strings"

	"github.com/sandevgo/zhipukit/internal/core"
)

const (
	RiskLow    = "low"
	RiskMedium = "medium"
	RiskHigh   = "high"
)

type RiskResult struct {
	ContentType string   `json:"content_type"`
	RiskLevel   string   `json:"risk_level"`
	RiskTypes   []string `json:"risk_type"`
}

// Level normalizes the vendor level, which may be English or Chinese.
func (r RiskResult) Level() string {
	switch strings.ToLower(strings.TrimSpace(r.RiskLevel)) {
	case "high", "高":
		return RiskHigh
	case "medium", "中":
		return RiskMedium
	default:
		return RiskLow
	}
}

type ModerationVerdict struct {
	core.Envelope
	Results []RiskResult `json:"results"`
}

// Safe is false when any entry is high risk.
func (v ModerationVerdict) Safe() bool {
	for _, r := range v.Results {
		if r.Level() == RiskHigh {
			return false
		}
	}
	return true
}

type RiskSummary struct {
	// Flagged is set by any medium or high entry.
	Flagged      bool         `json:"flagged"`
	RiskCount    int          `json:"risk_count"`
	HighestLevel string       `json:"highest_risk_level"`
	RiskTypes    []string     `json:"risk_types"`
	Details      []RiskResult `json:"details"`
}

func (v ModerationVerdict) Summary() RiskSummary {
	s := RiskSummary{HighestLevel: RiskLow, RiskTypes: []string{}}
	seen := make(map[string]struct{})
	for _, r := range v.Results {
		level := r.Level()
		if level == RiskLow {
			continue
		}
		s.Flagged = true
		s.RiskCount++
		if level == RiskHigh || s.HighestLevel != RiskHigh {
			s.HighestLevel = level
		}
		for _, t := range r.RiskTypes {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			s.RiskTypes = append(s.RiskTypes, t)
		}
		s.Details = append(s.Details, r)
	}
	return s
}

func ParseModeration(body []byte) (*ModerationVerdict, error) {
	var raw struct {
		envelope
		ResultList *[]struct {
			ContentType string          `json:"content_type"`
			RiskLevel   *string         `json:"risk_level"`
			RiskType    json.RawMessage `json:"risk_type"`
		} `json:"result_list"`
	}
	if err := decode(body, &raw); err != nil {
		return nil, err
	}
	if raw.ResultList == nil {
		return nil, missing("result_list")
	}

	results := make([]RiskResult, 0, len(*raw.ResultList))
	for _, entry := range *raw.ResultList {
		if entry.RiskLevel == nil {
			return nil, missing("result_list[].risk_level")
		}
		results = append(results, RiskResult{
			ContentType: entry.ContentType,
			RiskLevel:   *entry.RiskLevel,
			RiskTypes:   riskTypes(entry.RiskType),
		})
	}
	return &ModerationVerdict{Envelope: raw.envelope.core(), Results: results}, nil
}

// riskTypes accepts a list or a single string.
func riskTypes(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	var one string
	if err := json.Unmarshal(raw, &one); err == nil && one != "" {
		return []string{one}
	}
	return nil
}
