package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/white/sales-tracker/internal/models"
	"github.com/white/sales-tracker/pkg/smtp"
)

// EmailNotifier delivers next-action reminders over SMTP.
type EmailNotifier struct {
	client *smtp.Client
	loc    *time.Location
}

func NewEmailNotifier(client *smtp.Client, calendar *BusinessCalendar) *EmailNotifier {
	return &EmailNotifier{client: client, loc: calendar.Location()}
}

// SendNextActionReminder emails the owning user about a next action due
// tomorrow. The context bounds the attempt: if it is already done the send
// is not started.
func (n *EmailNotifier) SendNextActionReminder(ctx context.Context, user *models.User, prospect *models.Prospect, activity *models.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("Reminder: %s due tomorrow", describeNextAction(activity))

	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", user.Name)
	fmt.Fprintf(&b, "Your next action %q is due", describeNextAction(activity))
	if activity.NextActionDate != nil {
		fmt.Fprintf(&b, " on %s", activity.NextActionDate.In(n.loc).Format("Mon, 02 Jan 2006 15:04"))
	}
	b.WriteString(".\n")
	if prospect != nil {
		fmt.Fprintf(&b, "Prospect: %s", prospect.Name)
		if prospect.Company != "" {
			fmt.Fprintf(&b, " (%s)", prospect.Company)
		}
		b.WriteString("\n")
	}
	if activity.NextActionDetails != "" {
		fmt.Fprintf(&b, "Details: %s\n", activity.NextActionDetails)
	}
	b.WriteString("\n- Sales Tracker")

	return n.client.Send([]string{user.Email}, subject, b.String())
}

func describeNextAction(activity *models.Activity) string {
	if activity.NextActionType == models.NextActionCustomTask && activity.NextActionDetails != "" {
		return activity.NextActionDetails
	}
	if activity.NextActionType != "" {
		return strings.ReplaceAll(string(activity.NextActionType), "-", " ")
	}
	return activity.NextActionDetails
}
