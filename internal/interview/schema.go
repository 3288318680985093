// Package interview implements the adaptive onboarding interview: the field
// schema, answer parsing, flow construction and the turn-by-turn engine.
package interview

import (
	"strconv"

	"student-agent/internal/domain"
)

// schema is the persisted field list in storage order. The flow builder asks
// these fields and the profile store writes them; both read this table.
var schema = []domain.Field{
	{
		ID:   domain.FieldAttemptedExam,
		Kind: domain.KindEnum,
		Options: []domain.EnumOption{
			{Value: "both", Label: "both", Match: [][]string{{"both"}, {"neet", "jee"}}},
			{Value: "neet", Label: "NEET", Match: [][]string{{"neet"}}},
			{Value: "jee", Label: "JEE", Match: [][]string{{"jee"}}},
			{Value: "none", Label: "neither", Match: [][]string{{"neither"}, {"none"}, {"never"}, {"no"}}},
		},
		Fallback: "none",
	},
	{ID: domain.FieldTargetStream, Kind: domain.KindFreeText},
	{ID: domain.FieldCurrentStream, Kind: domain.KindFreeText},
	{ID: domain.FieldStreamMismatch, Kind: domain.KindYesNo},
	{ID: domain.FieldFinancialIssues, Kind: domain.KindYesNo},
	{ID: domain.FieldWorkedAfterSchool, Kind: domain.KindYesNo},
	{ID: domain.FieldWorkHistoryNote, Kind: domain.KindFreeText},
	{ID: domain.FieldStudyGapMonths, Kind: domain.KindBoundedInt, Max: 120},
	{ID: domain.FieldGapYears, Kind: domain.KindBoundedInt, Max: 15},
	{ID: domain.FieldGapYearReason, Kind: domain.KindFreeText},
	{
		ID:   domain.FieldFeelingAboutStudies,
		Kind: domain.KindEnum,
		Options: []domain.EnumOption{
			{Value: "burned_out", Label: "burned out", Match: [][]string{{"burn"}, {"exhaust"}, {"drain"}}},
			{Value: "stressed", Label: "stressed", Match: [][]string{{"stress"}, {"anx"}, {"pressure"}}},
			{Value: "motivated", Label: "motivated", Match: [][]string{{"motivat"}, {"good"}, {"positive"}}},
			{Value: "neutral", Label: "neutral", Match: [][]string{{"neutral"}, {"okay"}, {"fine"}}},
		},
		Fallback: "neutral",
	},
	{ID: domain.FieldDiscomfortDueToIssues, Kind: domain.KindYesNo},
	{ID: domain.FieldDiscomfortReason, Kind: domain.KindFreeText},
	{
		ID:   domain.FieldConfidenceLevel,
		Kind: domain.KindEnum,
		Options: []domain.EnumOption{
			{Value: "low", Label: "low", Match: [][]string{{"not confident"}, {"not very"}, {"low"}}},
			{Value: "medium", Label: "medium", Match: [][]string{{"medium"}, {"moderate"}, {"average"}}},
			{Value: "high", Label: "high", Match: [][]string{{"very confident"}, {"high"}, {"strong"}}},
		},
		Fallback: "medium",
	},
	{ID: domain.FieldPrimaryChallenge, Kind: domain.KindFreeText},
	{ID: domain.FieldGoals, Kind: domain.KindFreeText},
}

var conversational = []domain.Field{
	{ID: domain.FieldStreamFeelings, Kind: domain.KindFreeText},
	{ID: domain.FieldStudyDrain, Kind: domain.KindFreeText},
}

// Fields returns the persisted fields in storage order.
func Fields() []domain.Field {
	out := make([]domain.Field, len(schema))
	copy(out, schema)
	return out
}

// Lookup finds a persisted field or a conversational-only field.
func Lookup(id domain.FieldID) (domain.Field, bool) {
	for _, f := range schema {
		if f.ID == id {
			return f, true
		}
	}
	for _, f := range conversational {
		if f.ID == id {
			return f, true
		}
	}
	return domain.Field{}, false
}

// DefaultValue is the value persisted for a field that was never asked.
func DefaultValue(f domain.Field) string {
	switch f.Kind {
	case domain.KindEnum:
		return f.Fallback
	case domain.KindYesNo, domain.KindBoundedInt:
		return "0"
	default:
		return ""
	}
}

// Finalize returns the profile to persist: every schema field, answered or defaulted.
func Finalize(answers domain.AnswerMap) domain.AnswerMap {
	out := make(domain.AnswerMap, len(schema))
	for _, f := range schema {
		if v, ok := answers[f.ID]; ok && v != "" {
			out[f.ID] = v
			continue
		}
		out[f.ID] = DefaultValue(f)
	}
	return out
}

// Seed builds an AnswerMap from a stored profile. Unknown fields, empty values
// and values that do not fit the field kind are dropped so they get asked again.
func Seed(stored domain.AnswerMap) domain.AnswerMap {
	out := make(domain.AnswerMap, len(stored))
	for _, f := range schema {
		v, ok := stored[f.ID]
		if !ok || v == "" {
			continue
		}
		if !validStored(f, v) {
			continue
		}
		out[f.ID] = v
	}
	return out
}

func validStored(f domain.Field, v string) bool {
	switch f.Kind {
	case domain.KindEnum:
		for _, o := range f.Options {
			if o.Value == v {
				return true
			}
		}
		return false
	case domain.KindYesNo:
		return v == "0" || v == "1"
	case domain.KindBoundedInt:
		n, err := strconv.Atoi(v)
		return err == nil && n >= 0 && n <= f.Max
	default:
		return true
	}
}
