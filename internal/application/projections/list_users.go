package projections

import (
	"sort"
	"strings"

	"fitgympro/internal/application/listutil"
	"fitgympro/internal/domain/account"
)

// User list columns and filters accepted from the query string.
var (
	UserSortColumns = []string{"username", "role", "joined"}
	UserFilterKeys  = []string{"role", "status"}
)

// UserList is one page of the admin user table.
type UserList struct {
	Users  []account.User
	Page   listutil.PageInfo
	Params listutil.Params
}

// ListUsers filters, sorts and pages users for the admin table.
// Search matches username and email. Without a sort column the newest join comes first.
// POST: users is not modified
func ListUsers(users []account.User, p listutil.Params) UserList {
	var out []account.User
	for _, u := range users {
		if role := p.Filters["role"]; role != "" && u.Role != role {
			continue
		}
		if status := p.Filters["status"]; status != "" && u.Status != status {
			continue
		}
		if !p.Matches(u.Username, u.Email) {
			continue
		}
		out = append(out, u)
	}

	less := func(i, j int) bool { return out[i].JoinDate.After(out[j].JoinDate) }
	switch p.Sort {
	case "username":
		less = func(i, j int) bool { return strings.ToLower(out[i].Username) < strings.ToLower(out[j].Username) }
	case "role":
		less = func(i, j int) bool { return out[i].Role < out[j].Role }
	case "joined":
		less = func(i, j int) bool { return out[i].JoinDate.Before(out[j].JoinDate) }
	}
	if p.Dir == listutil.Desc && p.Sort != "" {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(out, less)

	page, info := listutil.Window(out, p)
	return UserList{Users: page, Page: info, Params: p}
}
