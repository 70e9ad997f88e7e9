package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"improvehub/internal/model"
)

func TestReconcile_EndToEndExample(t *testing.T) {
	projects := []Row{{"ID_Supabase_Projetos": "p1", "Nome_do_Projeto": "Reduce Scrap"}}
	demands := []Row{
		{"ID_Projeto": "p1", "Titulo_Demanda": "Mapping", "Sub_Demanda": "Interview ops", "Status": "Concluído"},
		{"ID_Projeto": "p1", "Titulo_Demanda": "Mapping", "Sub_Demanda": "Draft SOP", "Status": "Não Iniciado"},
	}

	got, stats := New(nil).Reconcile(projects, demands)

	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Reduce Scrap", p.Title)
	require.Len(t, p.Activities, 1)
	assert.Equal(t, "Mapping", p.Activities[0].Name)
	require.Len(t, p.Activities[0].SubActivities, 2)
	assert.Equal(t, "Interview ops", p.Activities[0].SubActivities[0].Name)
	assert.Equal(t, model.TaskDone, p.Activities[0].SubActivities[0].Status)
	assert.Equal(t, "Draft SOP", p.Activities[0].SubActivities[1].Name)
	assert.Equal(t, 50, p.Progress)

	assert.Equal(t, 1, stats.Projects)
	assert.Equal(t, 2, stats.Tasks)
	assert.Zero(t, stats.OrphanDemands)
}

func TestReconcile_MissingIDsAreGeneratedAndUnique(t *testing.T) {
	malformed := Row{"Nome_do_Projeto": "No id"}
	got, stats := New(nil).Reconcile([]Row{malformed, malformed, malformed}, nil)

	require.Len(t, got, 3)
	seen := map[string]bool{}
	for _, p := range got {
		assert.NotEmpty(t, p.ID)
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
	}
	assert.Equal(t, 3, stats.GeneratedIDs)
}

func TestReconcile_IDPreference(t *testing.T) {
	got, _ := New(nil).Reconcile([]Row{
		{"ID_Supabase_Projetos": 7, "id": 99},
		{"id": 99},
	}, nil)

	assert.Equal(t, "7", got[0].ID)
	assert.Equal(t, "99", got[1].ID)
}

func TestReconcile_DefaultGroupName(t *testing.T) {
	projects := []Row{{"id": "p1"}}
	demands := []Row{
		{"ID_Projeto": "p1", "Sub_Demanda": "a"},
		{"ID_Projeto": "p1", "Sub_Demanda": "b", "Titulo_Demanda": ""},
		{"ID_Projeto": "p1", "Sub_Demanda": "c"},
	}

	got, _ := New(nil).Reconcile(projects, demands)
	require.Len(t, got[0].Activities, 1)
	assert.Equal(t, DefaultActivityName, got[0].Activities[0].Name)
	assert.Len(t, got[0].Activities[0].SubActivities, 3)
}

func TestReconcile_GroupOrderFollowsFirstOccurrence(t *testing.T) {
	projects := []Row{{"id": "p1"}}
	demands := []Row{
		{"ID_Projeto": "p1", "Titulo_Demanda": "B"},
		{"ID_Projeto": "p1", "Titulo_Demanda": "A"},
		{"ID_Projeto": "p1", "Titulo_Demanda": "B"},
		{"ID_Projeto": "p1", "Titulo_Demanda": "C"},
	}

	got, _ := New(nil).Reconcile(projects, demands)
	var names []string
	for _, a := range got[0].Activities {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"B", "A", "C"}, names)
	assert.Len(t, got[0].Activities[0].SubActivities, 2)
}

func TestReconcile_ActivityKeyIsStableAndSeparateFromName(t *testing.T) {
	projects := []Row{{"id": "p1"}, {"id": "p2"}}
	demands := []Row{
		{"ID_Projeto": "p1", "Titulo_Demanda": "Mapping"},
		{"ID_Projeto": "p2", "Titulo_Demanda": "Mapping"},
	}

	first, _ := New(nil).Reconcile(projects, demands)
	second, _ := New(nil).Reconcile(projects, demands)

	a1 := first[0].Activities[0]
	a2 := first[1].Activities[0]
	assert.NotEqual(t, "Mapping", a1.ID)
	assert.NotEqual(t, a1.ID, a2.ID, "same label in different projects must not share a key")
	assert.Equal(t, a1.ID, second[0].Activities[0].ID, "key survives a refresh")
	assert.Equal(t, ActivityID("p1", "Mapping"), a1.ID)
}

func TestReconcile_ProgressFormula(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for c := 0; c <= n; c++ {
			var demands []Row
			for i := 0; i < n; i++ {
				status := "Em Andamento"
				if i < c {
					status = "Concluído"
				}
				demands = append(demands, Row{"ID_Projeto": "p", "Status": status})
			}
			got, _ := New(nil).Reconcile([]Row{{"id": "p", "Progresso": 3}}, demands)
			want := int(float64(100*c)/float64(n) + 0.5)
			assert.Equal(t, want, got[0].Progress, fmt.Sprintf("%d/%d", c, n))
		}
	}
}

func TestReconcile_NoTasksKeepsRawProgress(t *testing.T) {
	got, _ := New(nil).Reconcile([]Row{
		{"id": "p1", "Progresso": "42"},
		{"id": "p2"},
	}, nil)

	assert.Equal(t, 42, got[0].Progress)
	assert.Equal(t, 0, got[1].Progress)
	assert.NotNil(t, got[0].Activities)
}

func TestReconcile_DemandMatchesByTitle(t *testing.T) {
	projects := []Row{{"id": "p1", "Nome_do_Projeto": "Reduce Scrap"}}
	demands := []Row{
		{"Projeto": "Reduce Scrap", "Sub_Demanda": "by name"},
		{"ID_Projeto": "p1", "Sub_Demanda": "by id"},
		{"ID_Projeto": "other", "Sub_Demanda": "orphan"},
		{"Sub_Demanda": "no ref"},
	}

	got, stats := New(nil).Reconcile(projects, demands)
	total, _ := got[0].TaskCounts()
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, stats.OrphanDemands)
}

func TestReconcile_SharedTitleAttachesToAll(t *testing.T) {
	projects := []Row{
		{"id": "p1", "Nome_do_Projeto": "Kaizen"},
		{"id": "p2", "Nome_do_Projeto": "Kaizen"},
	}
	demands := []Row{{"Projeto": "Kaizen", "Sub_Demanda": "shared"}}

	got, stats := New(nil).Reconcile(projects, demands)
	for _, p := range got {
		total, _ := p.TaskCounts()
		assert.Equal(t, 1, total, p.ID)
	}
	assert.Equal(t, 2, stats.SharedTitleHit)
}

func TestReconcile_RepeatedProjectIDKeepsFirstRow(t *testing.T) {
	projects := []Row{
		{"id": "p1", "Nome_do_Projeto": "First"},
		{"id": "p2", "Nome_do_Projeto": "Other"},
		{"ID_Supabase_Projetos": "p1", "Nome_do_Projeto": "Second"},
	}
	demands := []Row{{"ID_Projeto": "p1", "Sub_Demanda": "only once"}}

	got, stats := New(nil).Reconcile(projects, demands)

	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Title)
	assert.Equal(t, "p2", got[1].ID)
	total, _ := got[0].TaskCounts()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, stats.DuplicateIDs)
	assert.Equal(t, 2, stats.Projects)
	assert.Equal(t, 1, stats.Tasks)
}

func TestReconcile_TaskDefaultsAndIDs(t *testing.T) {
	ids := []string{"gen-1", "gen-2"}
	next := 0
	r := New(nil, WithIDGenerator(func() string {
		id := ids[next]
		next++
		return id
	}))

	got, _ := r.Reconcile([]Row{{"id": "p1"}}, []Row{
		{"ID_Projeto": "p1", "ID_Demanda": 17, "Fase_DMAIC": "Medir", "Prazo": "2026-08-01", "Responsável": "Ana"},
		{"ID_Projeto": "p1", "Status": "gibberish"},
	})

	tasks := got[0].Activities[0].SubActivities
	assert.Equal(t, "17", tasks[0].ID)
	assert.Equal(t, model.PhaseMeasure, tasks[0].DMAIC)
	assert.Equal(t, "2026-08-01", tasks[0].Deadline.String())
	assert.Equal(t, "Ana", tasks[0].Responsible)
	assert.Equal(t, model.TaskNotStarted, tasks[0].Status)

	assert.Equal(t, "gen-1", tasks[1].ID)
	assert.Equal(t, model.TaskNotStarted, tasks[1].Status)
	assert.Equal(t, model.PhaseDefine, tasks[1].DMAIC)
	assert.Nil(t, tasks[1].Deadline)
}

func TestReconcile_ProjectFields(t *testing.T) {
	got, _ := New(nil).Reconcile([]Row{{
		"id":              "p1",
		"Status":          "Ativo",
		"status":          "Em Espera",
		"Tipo_de_Projeto": "Kaizen",
		"Justificativa":   "scrap too high",
		"Objetivo":        "halve scrap",
		"Benefícios":      "savings",
		"Líder":           "Bruno",
		"Data_de_Inicio":  "2026-02-10",
	}}, nil)

	p := got[0]
	assert.Equal(t, model.ProjectActive, p.Status)
	assert.Equal(t, "Kaizen", p.Category)
	assert.Equal(t, "scrap too high", p.Justification)
	assert.Equal(t, "halve scrap", p.Objective)
	assert.Equal(t, "savings", p.Benefits)
	assert.Equal(t, "Bruno", p.Leader)
	assert.Equal(t, "2026-02-10", p.StartDate.String())
}

func TestReconcile_NeverPanicsOnGarbage(t *testing.T) {
	assert.NotPanics(t, func() {
		got, _ := New(nil).Reconcile(
			[]Row{nil, {}, {"id": []any{1, 2}}, {"Progresso": map[string]any{"x": 1}}},
			[]Row{nil, {"ID_Projeto": nil}},
		)
		assert.Len(t, got, 4)
	})
}
