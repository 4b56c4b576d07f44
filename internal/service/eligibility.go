// internal/service/eligibility.go
package service

import (
    "github.com/dicodehq/campaign-engine/internal/model"
)

// Matches reports whether a member belongs to a campaign's audience.
//
// With no filters configured every organization member matches. Otherwise
// the filters combine with OR: hitting any one dimension is enough.
func Matches(c *model.Campaign, m *model.Member) bool {
    if len(c.Departments) == 0 && len(c.MemberIDs) == 0 &&
        len(c.CohortIDs) == 0 && len(c.Roles) == 0 {
        return true
    }

    if m.Department != "" && containsString(c.Departments, m.Department) {
        return true
    }
    if containsInt64(c.MemberIDs, int64(m.ID)) {
        return true
    }
    for _, cohort := range m.CohortIDs {
        if containsInt64(c.CohortIDs, cohort) {
            return true
        }
    }
    if m.Role != "" && containsString(c.Roles, m.Role) {
        return true
    }
    return false
}

func containsString(list []string, v string) bool {
    for _, item := range list {
        if item == v {
            return true
        }
    }
    return false
}

func containsInt64(list []int64, v int64) bool {
    for _, item := range list {
        if item == v {
            return true
        }
    }
    return false
}
