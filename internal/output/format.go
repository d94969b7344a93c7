// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskdeck/internal/collab"
	"taskdeck/internal/service"
)

// FormatTask formats one task line of the sorted view.
// Format: "{N:>4} {FLAG} {TITLE}  [{PRIORITY}] due {DUE}\n" where FLAG is
// "x" for completed tasks and "-" otherwise.
func FormatTask(w io.Writer, num int, task service.Task) {
	flag := "-"
	if task.Completed {
		flag = "x"
	}
	due := task.DueDateTime
	if strings.TrimSpace(due) == "" {
		due = "?"
	}
	fmt.Fprintf(w, "%4d %s %s  [%s] due %s\n", num, flag, normalizeTitle(task.Title), task.Priority, due)
}

// FormatListName formats one line of the lists command: the name, a kind
// marker for the personal list, and the active-list marker.
func FormatListName(w io.Writer, list service.List, active bool, role string) {
	name := normalizeTitle(list.Name)
	if list.Kind == service.ListPersonal {
		name += " [personal]"
	}
	if role != "" {
		name += fmt.Sprintf(" (%s)", role)
	}
	marker := "  "
	if active {
		marker = "* "
	}
	fmt.Fprintf(w, "%s%s\n", marker, name)
}

// FormatListHeader prints the section header above a task view.
func FormatListHeader(w io.Writer, list service.List) {
	const sep = "------------"
	fmt.Fprintln(w, sep)
	fmt.Fprintln(w, normalizeTitle(list.Name))
	fmt.Fprintln(w, sep)
}

// FormatMember formats one roster entry. The owner is always first and
// tagged; collaborators are plain email lines.
func FormatMember(w io.Writer, m collab.Member) {
	if m.IsOwner {
		fmt.Fprintf(w, "%s (owner)\n", m.User.Email)
		return
	}
	fmt.Fprintln(w, m.User.Email)
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
