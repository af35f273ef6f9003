// Package views renders the quiz pages as templ components.
package views

import (
	"context"
	"fmt"

	"github.com/a-h/templ"

	appI18n "github.com/pavelanni/dumpquiz/internal/i18n"
	"github.com/pavelanni/dumpquiz/internal/model"
	"github.com/pavelanni/dumpquiz/internal/qa"
)

// href resolves an application path against the deployment base path.
func href(ctx context.Context, path string) templ.SafeURL {
	return templ.URL(model.BasePathFromContext(ctx) + path)
}

// hxPath is href for htmx attributes, which templ renders as plain strings.
func hxPath(ctx context.Context, path string) string {
	return string(href(ctx, path))
}

func quizPath(v model.QuestionView, suffix string) string {
	return fmt.Sprintf("/quiz/%d%s", v.Index+1, suffix)
}

func prevPath(v model.QuestionView) string {
	return fmt.Sprintf("/quiz/%d", v.Index)
}

func nextPath(v model.QuestionView) string {
	return fmt.Sprintf("/quiz/%d", v.Index+2)
}

func optionPath(v model.QuestionView, opt string) string {
	return quizPath(v, "/select/"+qa.OptionLetter(opt))
}

func isSelected(v model.QuestionView, opt string) bool {
	return v.Selected.Contains(qa.OptionLetter(opt))
}

func pressed(v model.QuestionView, opt string) string {
	if isSelected(v, opt) {
		return "true"
	}
	return "false"
}

func pageTitle(ctx context.Context, title string) string {
	if title == "" {
		return appI18n.T(ctx, "AppTitle")
	}
	return title
}

func isAdmin(ctx context.Context) bool {
	u := model.UserFromContext(ctx)
	return u != nil && u.Role == model.UserRoleAdmin
}

func questionHeading(ctx context.Context, v model.QuestionView) string {
	return appI18n.Td(ctx, "QuestionNOfM", map[string]any{"N": v.Index + 1, "Total": v.Total})
}

func selectHint(ctx context.Context, q model.Question) string {
	if q.Record().IsMultiChoice() {
		return appI18n.T(ctx, "SelectMany")
	}
	return appI18n.T(ctx, "SelectOne")
}

// wrongAnswer names the correct letters in sorted order, comma separated.
func wrongAnswer(ctx context.Context, q model.Question) string {
	return appI18n.Td(ctx, "Wrong", map[string]any{"Answer": q.Answer.Sorted().Display()})
}

func roleLabel(ctx context.Context, r model.UserRole) string {
	if r == model.UserRoleAdmin {
		return appI18n.T(ctx, "RoleAdmin")
	}
	return appI18n.T(ctx, "RoleStudent")
}

func yesNo(ctx context.Context, b bool) string {
	if b {
		return appI18n.T(ctx, "Yes")
	}
	return appI18n.T(ctx, "No")
}

func toggleUserPath(u model.User) string {
	return fmt.Sprintf("/admin/users/%d/toggle", u.ID)
}
