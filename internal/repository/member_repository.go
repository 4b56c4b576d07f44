package repository

import (
    "database/sql"

    "github.com/lib/pq"

    "github.com/dicodehq/campaign-engine/internal/model"
)

// MemberRepositoryInterface defines the read-only member access the engine needs.
type MemberRepositoryInterface interface {
    GetByID(id int) (*model.Member, error)
    ListByOrganization(orgID int) ([]model.Member, error)
}

type MemberRepository struct {
    DB *sql.DB
}

func (r *MemberRepository) GetByID(id int) (*model.Member, error) {
    query := `
        SELECT id, organization_id, email, display_name, department, role, cohort_ids
        FROM members
        WHERE id = $1
    `
    var m model.Member
    err := r.DB.QueryRow(query, id).Scan(
        &m.ID, &m.OrganizationID, &m.Email, &m.DisplayName,
        &m.Department, &m.Role, pq.Array(&m.CohortIDs),
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil // not found
        }
        return nil, err
    }
    return &m, nil
}

// ListByOrganization fetches the audience the enrollment manager fans out over.
func (r *MemberRepository) ListByOrganization(orgID int) ([]model.Member, error) {
    query := `
        SELECT id, organization_id, email, display_name, department, role, cohort_ids
        FROM members
        WHERE organization_id = $1
        ORDER BY id
    `
    rows, err := r.DB.Query(query, orgID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    members := []model.Member{}
    for rows.Next() {
        var m model.Member
        if err := rows.Scan(
            &m.ID, &m.OrganizationID, &m.Email, &m.DisplayName,
            &m.Department, &m.Role, pq.Array(&m.CohortIDs),
        ); err != nil {
            return nil, err
        }
        members = append(members, m)
    }
    return members, rows.Err()
}

var _ MemberRepositoryInterface = (*MemberRepository)(nil)
