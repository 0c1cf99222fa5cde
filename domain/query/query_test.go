package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuild_CollectsConditionsInOrder(t *testing.T) {
	q := Build(
		WithCondition("property_id", int64(7)),
		WithAtLeast("overall_similarity", 0.5),
		WithBetween("latitude", 1.0, 2.0),
		WithIDIn([]int64{1, 2}),
	)

	conds := q.Conditions()
	assert.Len(t, conds, 4)
	assert.Equal(t, OpEqual, conds[0].Operator())
	assert.Equal(t, OpGreaterEqual, conds[1].Operator())
	assert.Equal(t, OpBetween, conds[2].Operator())
	assert.Equal(t, 2.0, conds[2].Upper())
	assert.Equal(t, OpIn, conds[3].Operator())
	assert.Equal(t, "latitude BETWEEN 1 AND 2", conds[2].String())
	assert.Equal(t, "property_id = 7", conds[0].String())
}

func TestWithOutside_ComplementsRange(t *testing.T) {
	c := Build(WithOutside("longitude", -179.5, 179.5)).Conditions()[0]

	assert.Equal(t, OpOutside, c.Operator())
	assert.Equal(t, -179.5, c.Value())
	assert.Equal(t, 179.5, c.Upper())
	assert.Equal(t, "(longitude <= -179.5 OR longitude >= 179.5)", c.String())
}

func TestBuild_Pagination(t *testing.T) {
	q := Build(append(WithPagination(10, 20), WithOrderDesc("date"), WithOrderAsc("id"))...)

	assert.Equal(t, 10, q.LimitValue())
	assert.Equal(t, 20, q.OffsetValue())
	orders := q.Orders()
	assert.Len(t, orders, 2)
	assert.False(t, orders[0].Ascending())
	assert.True(t, orders[1].Ascending())
}

func TestConditions_ReturnsCopy(t *testing.T) {
	q := Build(WithID(1))
	conds := q.Conditions()
	conds[0] = Condition{}

	assert.Equal(t, "id", q.Conditions()[0].Field())
}

func TestParam(t *testing.T) {
	q := Build(WithParam("without_relationships", true))

	v, ok := q.Param("without_relationships")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = Build().Param("missing")
	assert.False(t, ok)
}
