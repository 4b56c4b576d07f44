package repository

import (
    "database/sql"
    "time"

    "github.com/dicodehq/campaign-engine/internal/model"
)

type EnrollmentRepositoryInterface interface {
    // CreateIfAbsent inserts an enrollment keyed by (campaign_id, member_id)
    // and reports whether a new row was created. Duplicate trigger
    // deliveries land on the unique constraint and report false.
    CreateIfAbsent(e *model.Enrollment) (bool, error)
    GetByCampaignAndMember(campaignID, memberID int) (*model.Enrollment, error)
    ListActiveByCampaign(campaignID int) ([]model.Enrollment, error)

    // Complete flips the enrollment to completed and reports whether this
    // call won the transition. Re-invocations return false.
    Complete(campaignID, memberID int, at time.Time) (bool, error)

    CountByStatus(campaignID int) (map[model.EnrollmentStatus]int, error)
}

type EnrollmentRepository struct {
    DB *sql.DB
}

const enrollmentColumns = `
    id, campaign_id, member_id, organization_id, status,
    enrolled_at, completed_at, access_count, auto_enrolled, enrolled_by
`

func (r *EnrollmentRepository) CreateIfAbsent(e *model.Enrollment) (bool, error) {
    if e.Status == "" {
        e.Status = model.EnrollmentNotStarted
    }
    if e.EnrolledAt.IsZero() {
        e.EnrolledAt = time.Now()
    }
    query := `
        INSERT INTO campaign_enrollments
            (campaign_id, member_id, organization_id, status, enrolled_at, access_count, auto_enrolled, enrolled_by)
        VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
        ON CONFLICT (campaign_id, member_id) DO NOTHING
        RETURNING id
    `
    err := r.DB.QueryRow(
        query,
        e.CampaignID, e.MemberID, e.OrganizationID, e.Status,
        e.EnrolledAt, e.AutoEnrolled, e.EnrolledBy,
    ).Scan(&e.ID)
    if err != nil {
        if err == sql.ErrNoRows {
            return false, nil // already enrolled
        }
        return false, err
    }
    return true, nil
}

func (r *EnrollmentRepository) GetByCampaignAndMember(campaignID, memberID int) (*model.Enrollment, error) {
    query := `SELECT ` + enrollmentColumns + `
              FROM campaign_enrollments
              WHERE campaign_id=$1 AND member_id=$2`
    var e model.Enrollment
    err := r.DB.QueryRow(query, campaignID, memberID).Scan(
        &e.ID, &e.CampaignID, &e.MemberID, &e.OrganizationID, &e.Status,
        &e.EnrolledAt, &e.CompletedAt, &e.AccessCount, &e.AutoEnrolled, &e.EnrolledBy,
    )
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, nil
        }
        return nil, err
    }
    return &e, nil
}

// ListActiveByCampaign returns enrollments still eligible for reminders.
func (r *EnrollmentRepository) ListActiveByCampaign(campaignID int) ([]model.Enrollment, error) {
    query := `SELECT ` + enrollmentColumns + `
              FROM campaign_enrollments
              WHERE campaign_id=$1 AND status IN ('not_started', 'in_progress')
              ORDER BY id`
    rows, err := r.DB.Query(query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    enrollments := []model.Enrollment{}
    for rows.Next() {
        var e model.Enrollment
        if err := rows.Scan(
            &e.ID, &e.CampaignID, &e.MemberID, &e.OrganizationID, &e.Status,
            &e.EnrolledAt, &e.CompletedAt, &e.AccessCount, &e.AutoEnrolled, &e.EnrolledBy,
        ); err != nil {
            return nil, err
        }
        enrollments = append(enrollments, e)
    }
    return enrollments, rows.Err()
}

func (r *EnrollmentRepository) Complete(campaignID, memberID int, at time.Time) (bool, error) {
    res, err := r.DB.Exec(
        `UPDATE campaign_enrollments
         SET status='completed', completed_at=$1
         WHERE campaign_id=$2 AND member_id=$3 AND status <> 'completed'`,
        at, campaignID, memberID,
    )
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

func (r *EnrollmentRepository) CountByStatus(campaignID int) (map[model.EnrollmentStatus]int, error) {
    query := `SELECT status, COUNT(*) FROM campaign_enrollments WHERE campaign_id=$1 GROUP BY status`
    rows, err := r.DB.Query(query, campaignID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    counts := map[model.EnrollmentStatus]int{
        model.EnrollmentNotStarted: 0,
        model.EnrollmentInProgress: 0,
        model.EnrollmentCompleted:  0,
    }
    for rows.Next() {
        var status model.EnrollmentStatus
        var count int
        if err := rows.Scan(&status, &count); err != nil {
            return nil, err
        }
        counts[status] = count
    }
    return counts, rows.Err()
}

var _ EnrollmentRepositoryInterface = (*EnrollmentRepository)(nil)
