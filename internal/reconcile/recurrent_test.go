package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"improvehub/internal/model"
)

func TestRecurrentDemands_FromJSONText(t *testing.T) {
	row := Row{"id": "p1", "Demandas_Recorrentes": `[
		{"id": "d1", "tema": "Auditoria 5S", "meses": ["OK", "Falha", "N/A"]},
		{"theme": "Kanban review", "months": {"jan": "ok", "12": "falha", "bogus": "ok"}}
	]`}

	got, _ := New(nil, WithIDGenerator(func() string { return "gen" })).Reconcile([]Row{row}, nil)
	demands := got[0].RecurrentDemands
	require.Len(t, demands, 2)

	assert.Equal(t, "d1", demands[0].ID)
	assert.Equal(t, "Auditoria 5S", demands[0].Theme)
	assert.Equal(t, model.MonthOK, demands[0].Months[0])
	assert.Equal(t, model.MonthFailed, demands[0].Months[1])
	assert.Equal(t, model.MonthNotApplicable, demands[0].Months[2])
	for i := 3; i < 12; i++ {
		assert.Equal(t, model.MonthPending, demands[0].Months[i])
	}

	assert.Equal(t, "gen", demands[1].ID)
	assert.Equal(t, model.MonthOK, demands[1].Months[0])
	assert.Equal(t, model.MonthFailed, demands[1].Months[11])
}

func TestRecurrentDemands_DecodedJSONAndOverflow(t *testing.T) {
	months := make([]any, 14)
	for i := range months {
		months[i] = "OK"
	}
	row := Row{"id": "p1", "recurrent_demands": []any{
		map[string]any{"id": "d1", "tema": "x", "meses": months},
		"not an object",
	}}

	got, _ := New(nil).Reconcile([]Row{row}, nil)
	require.Len(t, got[0].RecurrentDemands, 1)
	assert.Equal(t, model.MonthOK, got[0].RecurrentDemands[0].Months[11])
}

func TestRecurrentDemands_MalformedIsEmpty(t *testing.T) {
	got, _ := New(nil).Reconcile([]Row{
		{"id": "p1", "Demandas_Recorrentes": "{not json"},
		{"id": "p2", "Demandas_Recorrentes": 12},
		{"id": "p3"},
	}, nil)
	for _, p := range got {
		assert.NotNil(t, p.RecurrentDemands)
		assert.Empty(t, p.RecurrentDemands)
	}
}
