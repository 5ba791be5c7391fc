// Package views holds the embedded page templates.
package views

import (
	"embed"
	"html/template"
	"time"

	"github.com/geocoder89/todohub/internal/domain/todo"
)

//go:embed templates/*.html
var files embed.FS

const dateInputLayout = "2006-01-02"

// Funcs are the helpers every page template can call. now is injectable so
// due-date colors are testable.
func Funcs(now func() time.Time) template.FuncMap {
	return template.FuncMap{
		"dueColor": func(due *time.Time) string {
			return string(todo.DueDateColor(due, now()))
		},
		"formatDate": func(t any) string {
			switch v := t.(type) {
			case time.Time:
				if v.IsZero() {
					return ""
				}
				return v.Local().Format("Jan 2, 2006")
			case *time.Time:
				if v == nil || v.IsZero() {
					return ""
				}
				return v.Local().Format("Jan 2, 2006")
			default:
				return ""
			}
		},
		"dateInput": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.UTC().Format(dateInputLayout)
		},
		"today": func() string {
			return now().UTC().Format(dateInputLayout)
		},
	}
}

func Load() (*template.Template, error) {
	return LoadWithClock(time.Now)
}

func LoadWithClock(now func() time.Time) (*template.Template, error) {
	return template.New("").Funcs(Funcs(now)).ParseFS(files, "templates/*.html")
}

func MustLoad() *template.Template {
	t, err := Load()
	if err != nil {
		panic(err)
	}
	return t
}
