package dispatch

import (
	"fmt"
	"strings"

	"courtq/internal/queue"
)

const (
	robot = "🤖"

	replyNoPermission = "No permission"
	replyUnknown      = "Unknown command"
	replyShutdown     = "Bot has been shut down, type 'start' to start again."
)

func adminReply(text string) string {
	return robot + text
}

func queueReply(text string) string {
	return robot + "\n" + strings.TrimSpace(text)
}

func helpText(resources []queue.Resource) string {
	first, last := "A", "D"
	if len(resources) > 0 {
		first = string(resources[0])
		last = string(resources[len(resources)-1])
	}
	var b strings.Builder
	b.WriteString("Court queue bot\n\n")
	b.WriteString("🏸Enrollment is open!\n")
	b.WriteString("You are enrolled under your LINE display name\n\n")
	if len(resources) > 1 {
		fmt.Fprintf(&b, "🗣️Commands (%s can be %s~%s)\n", first, string(resources[1]), last)
	} else {
		b.WriteString("🗣️Commands\n")
	}
	fmt.Fprintf(&b, "%-9s: enroll on court %s\n", first+"+1", first)
	fmt.Fprintf(&b, "%-9s: show court %s roster\n", first, first)
	fmt.Fprintf(&b, "%-9s: next group onto court %s\n", first+" Next", first)
	fmt.Fprintf(&b, "%-9s: waiting counts\n", "Status")
	fmt.Fprintf(&b, "%-9s: your place in line\n", "Check")
	fmt.Fprintf(&b, "%-9s: cancel your enrollment\n\n", "Cancel")
	b.WriteString("👇Use the quick replies below")
	return b.String()
}

func greeting(name string) string {
	if name == "" {
		name = "there"
	}
	return fmt.Sprintf("Hi! %s\nI am the court queue bot🤖\n\n"+
		"⚠️I only work in groups that have been registered⚠️\n"+
		"Ask the group admin to register the group and type 'start'.", name)
}

func introduction() string {
	return robot + "Court queue bot\n\n" +
		"⚠️I stay silent until this group is registered⚠️\n" +
		"Send 'show group id' and give the id to the bot admin."
}
