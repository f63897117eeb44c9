package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"gopkg.in/gomail.v2"

	"cohortly/config"
)

type EmailData struct {
	Subject   string
	To        []string
	Template  string
	Data      interface{}
	Year      int
	FromName  string
	FromEmail string
}

// Embedded email templates
var emailTemplates = map[string]string{
	"session_reminder": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .session { font-size: 18px; font-weight: bold; color: #3498db; margin: 20px 0; }
        .button { display: inline-block; padding: 10px 20px; background-color: #3498db; color: white; text-decoration: none; border-radius: 4px; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>Upcoming Session Reminder</h2>
    </div>

    <div class="content">
        <p>Hi {{.ParticipantName}},</p>
        <p>Your session is starting soon:</p>

        <div class="session">{{.SessionTitle}}</div>
        <p>{{.StartsAt}}</p>

        {{if .MeetingURL}}
        <p style="text-align: center;">
            <a href="{{.MeetingURL}}" class="button">Join Session</a>
        </p>
        {{end}}
    </div>

    <div class="footer">
        <p>You are receiving this because you are enrolled in this program.</p>
        <p>© {{.Year}} Cohortly. All rights reserved.</p>
    </div>
</body>
</html>`,

	"broadcast": `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>{{.Subject}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { color: #2c3e50; border-bottom: 1px solid #eee; padding-bottom: 10px; }
        .content { margin: 20px 0; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h2>{{.Title}}</h2>
    </div>

    <div class="content">
        <p>Hi {{.ParticipantName}},</p>
        <p>{{.Body}}</p>
    </div>

    <div class="footer">
        <p>You are receiving this because you are enrolled in this program.</p>
        <p>© {{.Year}} Cohortly. All rights reserved.</p>
    </div>
</body>
</html>`,
}

func SendEmail(data EmailData) error {
	if data.FromEmail == "" {
		data.FromEmail = config.AppConfig.FromEmail
	}
	if data.FromName == "" {
		data.FromName = config.AppConfig.FromName
	}
	if data.Year == 0 {
		data.Year = time.Now().Year()
	}

	tmplContent, ok := emailTemplates[data.Template]
	if !ok {
		return fmt.Errorf("template '%s' not found", data.Template)
	}

	tmpl, err := template.New("email").Parse(tmplContent)
	if err != nil {
		return fmt.Errorf("error parsing template: %v", err)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data.Data); err != nil {
		return fmt.Errorf("error executing template: %v", err)
	}

	smtpPort, err := strconv.Atoi(config.AppConfig.SMTPPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP_PORT: %v", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fmt.Sprintf("%s <%s>", data.FromName, data.FromEmail))
	m.SetHeader("To", data.To...)
	m.SetHeader("Subject", data.Subject)
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		smtpPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %v", err)
	}

	return nil
}

// SendSessionReminderEmail emails one participant about an upcoming session
func SendSessionReminderEmail(email, participantName, sessionTitle, meetingURL string, startsAt time.Time) error {
	data := EmailData{
		Subject:  "Reminder: " + sessionTitle,
		To:       []string{email},
		Template: "session_reminder",
		Data: struct {
			Subject         string
			ParticipantName string
			SessionTitle    string
			StartsAt        string
			MeetingURL      string
			Year            int
		}{
			Subject:         "Reminder: " + sessionTitle,
			ParticipantName: participantName,
			SessionTitle:    sessionTitle,
			StartsAt:        startsAt.Format("Monday, January 2 at 15:04 MST"),
			MeetingURL:      meetingURL,
			Year:            time.Now().Year(),
		},
	}

	return SendEmail(data)
}

// SendBroadcastEmail emails one participant an admin announcement
func SendBroadcastEmail(email, participantName, title, bodyText string) error {
	data := EmailData{
		Subject:  title,
		To:       []string{email},
		Template: "broadcast",
		Data: struct {
			Subject         string
			ParticipantName string
			Title           string
			Body            string
			Year            int
		}{
			Subject:         title,
			ParticipantName: participantName,
			Title:           title,
			Body:            bodyText,
			Year:            time.Now().Year(),
		},
	}

	return SendEmail(data)
}
