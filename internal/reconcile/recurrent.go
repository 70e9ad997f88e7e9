package reconcile

import (
	"encoding/json"
	"strconv"
	"strings"

	"improvehub/internal/model"
)

var (
	recurrentID     = F("id", "id", "ID", "ID_Demanda")
	recurrentTheme  = F("theme", "tema", "Tema", "theme", "nome", "name")
	recurrentMonths = F("months", "meses", "Meses", "months", "status")
)

// month keys accepted when the checklist is an object instead of a list
var monthKeys = map[string]int{
	"jan": 0, "fev": 1, "feb": 1, "mar": 2, "abr": 3, "apr": 3, "mai": 4, "may": 4,
	"jun": 5, "jul": 6, "ago": 7, "aug": 7, "set": 8, "sep": 8, "out": 9, "oct": 9,
	"nov": 10, "dez": 11, "dec": 11,
}

// recurrentDemands decodes the optional checklist column of a project row.
// Anything that is not a list of objects yields an empty slice.
func (r *Reconciler) recurrentDemands(row Row) []model.RecurrentDemand {
	out := []model.RecurrentDemand{}

	v, ok := row.Lookup(ProjectRecurrent)
	if !ok {
		return out
	}

	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case string, []byte:
		if err := json.Unmarshal([]byte(Stringify(t)), &items); err != nil {
			return out
		}
	default:
		return out
	}

	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		fields := Row(obj)

		id, ok := fields.String(recurrentID)
		if !ok {
			id = r.newID()
		}
		d := model.NewRecurrentDemand(id, fields.StringOr(recurrentTheme, ""))

		if months, ok := fields.Lookup(recurrentMonths); ok {
			fillMonths(&d, months)
		}
		out = append(out, d)
	}
	return out
}

// fillMonths copies at most twelve statuses; missing months stay pending.
func fillMonths(d *model.RecurrentDemand, v any) {
	switch t := v.(type) {
	case []any:
		for i, m := range t {
			if i >= len(d.Months) {
				break
			}
			d.Months[i], _ = model.ParseMonthStatus(Stringify(m))
		}
	case map[string]any:
		for k, m := range t {
			i, ok := monthIndex(k)
			if !ok {
				continue
			}
			d.Months[i], _ = model.ParseMonthStatus(Stringify(m))
		}
	}
}

func monthIndex(key string) (int, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= 12 {
		return n - 1, true
	}
	if len(key) >= 3 {
		if i, ok := monthKeys[key[:3]]; ok {
			return i, true
		}
	}
	return 0, false
}
