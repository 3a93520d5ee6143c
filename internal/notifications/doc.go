// Package notifications delivers session events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and degrades to a no-op when notifications are disabled. Event
// types cover the session milestones the daemon reports: a script activated,
// playback reaching the end of the timeline, and a session being ended.
package notifications
