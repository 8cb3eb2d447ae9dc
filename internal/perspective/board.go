package perspective

import "github.com/fentz26/focus/internal/models"

// BoardFilter returns the one-condition filter set equivalent to b.
// An unknown board kind yields an empty OR set, which matches nothing.
func BoardFilter(b models.Board) models.FilterSet {
	var cond models.FilterCondition
	switch b.Kind {
	case models.BoardContext:
		cond = models.FilterCondition{Field: models.FieldContext, Operator: models.OpEquals, Value: b.Value}
	case models.BoardProject:
		cond = models.FilterCondition{Field: models.FieldProject, Operator: models.OpEquals, Value: b.Value}
	case models.BoardTag:
		cond = models.FilterCondition{Field: models.FieldTag, Operator: models.OpHasTag, Value: b.Value}
	default:
		return models.FilterSet{Logic: models.LogicOr}
	}
	return models.FilterSet{Conditions: []models.FilterCondition{cond}, Logic: models.LogicAnd}
}

// BoardPerspective wraps b as a smart perspective so boards share the
// apply, group and count paths with perspectives.
func BoardPerspective(b models.Board) models.Perspective {
	return models.Perspective{
		ID:        b.ID,
		Name:      b.Name,
		Filter:    BoardFilter(b),
		Sort:      models.SortKey{Field: models.SortDue, Direction: models.Ascending},
		Group:     models.GroupNone,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.CreatedAt,
	}
}
