package dispatch

import (
	"strings"

	"golang.org/x/text/width"

	"courtq/internal/access"
)

// Normalize folds full-width characters to ASCII, trims, collapses inner
// whitespace, and upper-cases the text.
func Normalize(text string) string {
	folded := width.Fold.String(text)
	return strings.ToUpper(strings.Join(strings.Fields(folded), " "))
}

type commandKind int

const (
	cmdUnknown commandKind = iota
	cmdShowGroupID
	cmdAdmin
	cmdEnroll
	cmdPromote
	cmdList
	cmdStatus
	cmdCancel
	cmdCheck
	cmdShowUserID
)

type command struct {
	kind     commandKind
	resource string
	action   access.Action
}

// classify parses normalized text. Court letters are returned unvalidated.
func classify(text string) command {
	switch text {
	case "SHOW GROUP ID":
		return command{kind: cmdShowGroupID}
	case "STATUS":
		return command{kind: cmdStatus}
	case "CANCEL":
		return command{kind: cmdCancel}
	case "CHECK":
		return command{kind: cmdCheck}
	case "SHOW USER ID":
		return command{kind: cmdShowUserID}
	}

	if action, ok := access.ParseAction(text); ok {
		return command{kind: cmdAdmin, action: action}
	}

	if court, ok := strings.CutSuffix(text, "+1"); ok {
		court = strings.TrimSpace(court)
		if isCourtLetter(court) {
			return command{kind: cmdEnroll, resource: court}
		}
		return command{kind: cmdUnknown}
	}
	if court, ok := strings.CutSuffix(text, " NEXT"); ok && isCourtLetter(court) {
		return command{kind: cmdPromote, resource: court}
	}
	if isCourtLetter(text) {
		return command{kind: cmdList, resource: text}
	}
	return command{kind: cmdUnknown}
}

func isCourtLetter(value string) bool {
	return len(value) == 1 && value[0] >= 'A' && value[0] <= 'Z'
}
