package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ProjectStatus is the lifecycle status of a project. Values are the labels
// stored in the remote projects table.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "Ativo"
	ProjectOnHold    ProjectStatus = "Em Espera"
	ProjectCompleted ProjectStatus = "Concluído"
)

// TaskStatus is the completion status of a sub-activity.
type TaskStatus string

const (
	TaskNotStarted TaskStatus = "Não Iniciado"
	TaskInProgress TaskStatus = "Em Andamento"
	TaskDone       TaskStatus = "Concluído"
	TaskBlocked    TaskStatus = "Bloqueado"
)

// DMAICPhase tags a task with the improvement phase it belongs to.
type DMAICPhase string

const (
	PhaseDefine  DMAICPhase = "Definir"
	PhaseMeasure DMAICPhase = "Medir"
	PhaseAnalyze DMAICPhase = "Analisar"
	PhaseImprove DMAICPhase = "Melhorar"
	PhaseControl DMAICPhase = "Controlar"
)

// MonthStatus is one cell of a recurrent demand checklist.
type MonthStatus string

const (
	MonthOK            MonthStatus = "OK"
	MonthFailed        MonthStatus = "Falha"
	MonthNotApplicable MonthStatus = "N/A"
	MonthPending       MonthStatus = "Pendente"
)

var (
	AllProjectStatuses = []ProjectStatus{ProjectActive, ProjectOnHold, ProjectCompleted}
	AllTaskStatuses    = []TaskStatus{TaskNotStarted, TaskInProgress, TaskDone, TaskBlocked}
	AllPhases          = []DMAICPhase{PhaseDefine, PhaseMeasure, PhaseAnalyze, PhaseImprove, PhaseControl}
	AllMonthStatuses   = []MonthStatus{MonthOK, MonthFailed, MonthNotApplicable, MonthPending}
)

var projectStatusAliases = map[string]ProjectStatus{
	"ativo":      ProjectActive,
	"active":     ProjectActive,
	"emespera":   ProjectOnHold,
	"onhold":     ProjectOnHold,
	"pausado":    ProjectOnHold,
	"concluido":  ProjectCompleted,
	"completed":  ProjectCompleted,
	"finalizado": ProjectCompleted,
}

var taskStatusAliases = map[string]TaskStatus{
	"naoiniciado": TaskNotStarted,
	"notstarted":  TaskNotStarted,
	"todo":        TaskNotStarted,
	"pendente":    TaskNotStarted,
	"emandamento": TaskInProgress,
	"inprogress":  TaskInProgress,
	"andamento":   TaskInProgress,
	"concluido":   TaskDone,
	"concluida":   TaskDone,
	"done":        TaskDone,
	"completed":   TaskDone,
	"bloqueado":   TaskBlocked,
	"bloqueada":   TaskBlocked,
	"blocked":     TaskBlocked,
}

var phaseAliases = map[string]DMAICPhase{
	"definir":   PhaseDefine,
	"define":    PhaseDefine,
	"d":         PhaseDefine,
	"medir":     PhaseMeasure,
	"measure":   PhaseMeasure,
	"m":         PhaseMeasure,
	"analisar":  PhaseAnalyze,
	"analyze":   PhaseAnalyze,
	"analyse":   PhaseAnalyze,
	"a":         PhaseAnalyze,
	"melhorar":  PhaseImprove,
	"improve":   PhaseImprove,
	"i":         PhaseImprove,
	"controlar": PhaseControl,
	"control":   PhaseControl,
	"c":         PhaseControl,
}

var monthStatusAliases = map[string]MonthStatus{
	"ok":            MonthOK,
	"feito":         MonthOK,
	"falha":         MonthFailed,
	"failed":        MonthFailed,
	"nok":           MonthFailed,
	"na":            MonthNotApplicable,
	"naoaplicavel":  MonthNotApplicable,
	"notapplicable": MonthNotApplicable,
	"pendente":      MonthPending,
	"pending":       MonthPending,
}

// ParseProjectStatus maps a loosely spelled label onto a ProjectStatus.
// The second result is false when the label was not recognised and the
// default (Ativo) was returned.
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	if v, ok := projectStatusAliases[foldKey(s)]; ok {
		return v, true
	}
	return ProjectActive, false
}

// ParseTaskStatus maps a loosely spelled label onto a TaskStatus, defaulting to Não Iniciado.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	if v, ok := taskStatusAliases[foldKey(s)]; ok {
		return v, true
	}
	return TaskNotStarted, false
}

// ParseDMAICPhase maps a loosely spelled label onto a DMAICPhase, defaulting to Definir.
func ParseDMAICPhase(s string) (DMAICPhase, bool) {
	if v, ok := phaseAliases[foldKey(s)]; ok {
		return v, true
	}
	return PhaseDefine, false
}

// ParseMonthStatus maps a loosely spelled label onto a MonthStatus, defaulting to Pendente.
func ParseMonthStatus(s string) (MonthStatus, bool) {
	if v, ok := monthStatusAliases[foldKey(s)]; ok {
		return v, true
	}
	return MonthPending, false
}

// foldKey lowercases, strips diacritics and drops every non alphanumeric rune,
// so "Não Iniciado", "nao-iniciado" and "NAO_INICIADO" share a key.
func foldKey(s string) string {
	// transform.Chain keeps internal buffers, so build one per call
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
