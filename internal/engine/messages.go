package engine

import (
	"fmt"
	"strings"

	"courtq/internal/queue"
)

func msgEnrolledElsewhere(res queue.Resource, listing string) string {
	return fmt.Sprintf("You are already enrolled on court %s and cannot enroll again\n\n%s", res, listing)
}

func msgAlreadyOnCourt(res queue.Resource) string {
	return fmt.Sprintf("You should be playing on court %s now, enroll again after you finish", res)
}

func msgEnrolledFirst(name string, res queue.Resource, listing string) string {
	return fmt.Sprintf("%s enrolled on court %s!\nNo one on court, go ahead\n\n%s", name, res, listing)
}

func msgEnrolled(name string, res queue.Resource, ahead int, listing string) string {
	return fmt.Sprintf("%s enrolled on court %s!\n%d ahead of you\n\n%s", name, res, ahead, listing)
}

func msgAlreadyWaiting(res queue.Resource, ahead int, listing string) string {
	return fmt.Sprintf("You are already enrolled on court %s\n%d ahead of you\n\n%s", res, ahead, listing)
}

func msgNothingToPromote(res queue.Resource) string {
	return fmt.Sprintf("No one has enrolled on court %s yet", res)
}

func msgPromoted(name string, res queue.Resource) string {
	return fmt.Sprintf("Please %s take court %s", name, res)
}

func msgEmptied(res queue.Resource) string {
	return fmt.Sprintf("Court %s is now empty", res)
}

func msgCancelNote(name string, res queue.Resource) string {
	return fmt.Sprintf("Cancelled %s's enrollment on court %s", name, res)
}

func msgCancelled(name string, res queue.Resource, listing string) string {
	return msgCancelNote(name, res) + "\n\n" + listing
}

func msgNoEnrollment() string {
	return "No enrollment found for you"
}

func msgCheckWaiting(res queue.Resource, ahead int, listing string) string {
	return fmt.Sprintf("You are enrolled on court %s\n%d ahead of you\n\n%s", res, ahead, listing)
}

func msgCheckNotEnrolled() string {
	return "You have not enrolled yet"
}

func msgCleared() string {
	return "All court queues have been cleared."
}

func withPrefix(prefix, text string) string {
	if prefix == "" {
		return text
	}
	return prefix + "\n" + text
}

// renderListing formats a roster: the head under [On court] and 1-based waiters under [Waiting].
func renderListing(roster Roster) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Court %s roster:\n\n", roster.Resource)
	b.WriteString("[On court]\n")
	if head := roster.Head(); head != nil {
		b.WriteString("  " + head.DisplayName + "\n\n")
	} else {
		b.WriteString("  Nobody on court\n\n")
	}
	if len(roster.Entries) > 1 {
		b.WriteString("[Waiting]")
		for i, entry := range roster.Entries[1:] {
			fmt.Fprintf(&b, "\n  %d. %s", i+1, entry.DisplayName)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderStatus(rosters []Roster) string {
	lines := make([]string, 0, len(rosters))
	for _, roster := range rosters {
		lines = append(lines, fmt.Sprintf("%s. %d waiting", roster.Resource, roster.Waiting()))
	}
	return strings.Join(lines, "\n")
}
