package reconcile

import "improvehub/internal/model"

// Profile maps a profiles row. A missing role is left empty for the caller
// to default.
func Profile(row Row) *model.UserProfile {
	return &model.UserProfile{
		ID:       row.StringOr(ProfileID, ""),
		Username: row.StringOr(ProfileUsername, ""),
		Password: row.StringOr(ProfilePassword, ""),
		Role:     row.StringOr(ProfileRole, ""),
	}
}
