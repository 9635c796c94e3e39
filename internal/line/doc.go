// Package line adapts the LINE Messaging API to the dispatcher.
//
// It verifies and parses webhook deliveries, turns them into
// dispatch.Event values, looks up display names, and sends replies and push
// messages. Display-name lookups never fail: any error yields the "User"
// placeholder.
package line
