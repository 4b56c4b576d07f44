// internal/model/member.go
package model

// Member is an organization member provisioned by the admin console.
// The engine only reads members; it never creates or mutates them.
type Member struct {
    ID             int     `db:"id" json:"id"`
    OrganizationID int     `db:"organization_id" json:"organization_id"`
    Email          string  `db:"email" json:"email"`
    DisplayName    string  `db:"display_name" json:"display_name"`
    Department     string  `db:"department" json:"department"`
    Role           string  `db:"role" json:"role"`
    CohortIDs      []int64 `db:"cohort_ids" json:"cohort_ids"`
}
