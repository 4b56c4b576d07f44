// internal/service/render.go
package service

import (
    "strings"

    "github.com/dicodehq/campaign-engine/internal/model"
)

const (
    invitationTemplate = `<p>Hi {member_name},</p>
<p>You have been enrolled in <strong>{campaign_title}</strong>. Head over to your dashboard to get started.</p>`

    reminderTemplate = `<p>Hi {member_name},</p>
<p>Just a reminder that <strong>{campaign_title}</strong> is waiting for you. Pick up where you left off when you have a moment.</p>`

    completionTemplate = `<p>Hi {member_name},</p>
<p>Congratulations, you have completed <strong>{campaign_title}</strong>!</p>`
)

// Render builds the subject and HTML body for a notification, keyed by its
// type. The campaign title is taken from the live campaign so renames show
// up; the member name from the metadata captured at queue time.
func Render(n *model.Notification, campaign *model.Campaign) (subject, body string) {
    title := campaign.Title
    if title == "" {
        title = n.CampaignTitle
    }
    name := n.MemberName
    if name == "" {
        name = "there"
    }

    data := map[string]string{
        "member_name":    name,
        "campaign_title": title,
    }

    switch n.Type {
    case model.NotificationInvitation:
        return "You're invited: " + title, renderTemplate(invitationTemplate, data)
    case model.NotificationReminder:
        return "Reminder: " + title, renderTemplate(reminderTemplate, data)
    case model.NotificationCompletion:
        return "Completed: " + title, renderTemplate(completionTemplate, data)
    }
    return title, renderTemplate(reminderTemplate, data)
}

func renderTemplate(template string, data map[string]string) string {
    result := template
    for k, v := range data {
        result = strings.ReplaceAll(result, "{"+k+"}", v)
    }
    return result
}
