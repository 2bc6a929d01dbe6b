// Package web renders the browser dashboard. The markup lives in
// dashboard.templ; regenerate dashboard_templ.go with `templ generate`.
package web

//go:generate go run github.com/a-h/templ/cmd/templ@v0.2.707 generate

import (
	"net/url"

	"github.com/a-h/templ"
)

func toggleURL(habitID string) templ.SafeURL {
	return templ.URL("/web/habits/" + url.PathEscape(habitID) + "/toggle")
}

func completeURL(objectiveID string) templ.SafeURL {
	return templ.URL("/web/objectives/" + url.PathEscape(objectiveID) + "/complete")
}
