package notify

import (
	"bytes"
	htmltemplate "html/template"
	"text/template"
	"time"

	"github.com/example/lessonsched/internal/lesson"
)

type messageData struct {
	Name       string
	Date       string
	Hour       string
	Instructor string
	Location   string
	Attempts   int
	Year       int
}

func newMessageData(l lesson.Lesson, loc *time.Location) messageData {
	start := l.Start.In(loc)
	return messageData{
		Name:       l.TypeName,
		Date:       start.Format("Monday, January 02, 2006"),
		Hour:       start.Format("15:04"),
		Instructor: l.Instructor,
		Location:   l.Location,
		Year:       start.Year(),
	}
}

var successText = template.Must(template.New("success").Parse(`Sportivity Boeking Bevestigd!

Les: {{.Name}}
Datum: {{.Date}}
Tijd: {{.Hour}}
{{- if .Instructor}}
Instructeur: {{.Instructor}}{{end}}
{{- if .Location}}
Locatie: {{.Location}}{{end}}

Deze boeking is automatisch gemaakt.
Controleer de Sportivity app om te bevestigen of wijzigingen aan te brengen.
`))

var successHTML = htmltemplate.Must(htmltemplate.New("success").Parse(`<html>
<head><meta charset="UTF-8"></head>
<body style="margin:0;padding:0;background-color:#f5f5f5;font-family:-apple-system,'Segoe UI',Roboto,Arial,sans-serif;">
  <div style="max-width:600px;margin:0 auto;background-color:white;">
    <div style="background-color:#f7aa0f;padding:32px 20px;text-align:center;">
      <h1 style="color:white;margin:0;font-size:26px;">Boeking Bevestigd!</h1>
      <p style="color:white;margin:8px 0 0;">Je les is gereserveerd</p>
    </div>
    <div style="padding:32px 28px;">
      <table style="width:100%;font-size:15px;color:#333;">
        <tr><td style="color:#666;">Les</td><td><strong>{{.Name}}</strong></td></tr>
        <tr><td style="color:#666;">Datum</td><td>{{.Date}}</td></tr>
        <tr><td style="color:#666;">Tijd</td><td>{{.Hour}}</td></tr>
        {{- if .Instructor}}
        <tr><td style="color:#666;">Instructeur</td><td>{{.Instructor}}</td></tr>
        {{- end}}
        {{- if .Location}}
        <tr><td style="color:#666;">Locatie</td><td>{{.Location}}</td></tr>
        {{- end}}
      </table>
      <p style="color:#999;font-size:13px;margin-top:28px;">Controleer de Sportivity app om je boeking te bevestigen of wijzigingen aan te brengen.</p>
    </div>
    <div style="background-color:#2d3436;color:#b2bec3;padding:18px;text-align:center;font-size:12px;">&copy; {{.Year}} lessonsched</div>
  </div>
</body>
</html>
`))

var stillTryingText = template.Must(template.New("retry").Parse(`Sportivity Boeking Update

Er wordt nog steeds geprobeerd je les te boeken:

Les: {{.Name}}
Datum: {{.Date}} om {{.Hour}}
Pogingen: {{.Attempts}}

De les zit momenteel vol, er wordt de hele dag opnieuw geprobeerd.

Status: Bezig...
`))

func successMessage(l lesson.Lesson, loc *time.Location) (Message, error) {
	data := newMessageData(l, loc)
	var text, html bytes.Buffer
	if err := successText.Execute(&text, data); err != nil {
		return Message{}, err
	}
	if err := successHTML.Execute(&html, data); err != nil {
		return Message{}, err
	}
	return Message{
		Subject: "✅ Les geboekt: " + l.TypeName,
		Text:    text.String(),
		HTML:    html.String(),
	}, nil
}

func stillTryingMessage(l lesson.Lesson, attempts int, loc *time.Location) (Message, error) {
	data := newMessageData(l, loc)
	data.Attempts = attempts
	var text bytes.Buffer
	if err := stillTryingText.Execute(&text, data); err != nil {
		return Message{}, err
	}
	return Message{
		Subject: "⏳ Nog bezig met boeken: " + l.TypeName,
		Text:    text.String(),
	}, nil
}
