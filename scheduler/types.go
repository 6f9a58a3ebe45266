package scheduler

// Kind discriminates the schedule specification variants.
type Kind string

const (
	KindNone      Kind = "no-schedule" // nothing to schedule
	KindScheduled Kind = "scheduled"   // absolute date
	KindDelayed   Kind = "delayed"     // relative delay in seconds
	KindCron      Kind = "cron"        // cron expression
)

// Spec is the tagged schedule specification accepted by the service.
// Exactly one of Date, DelaySeconds or Cron is meaningful, per Kind.
type Spec struct {
	Kind         Kind   `json:"type"`
	Date         string `json:"date,omitempty"`         // RFC3339 or a JS date expression
	DelaySeconds int    `json:"delayInSeconds,omitempty"`
	Cron         string `json:"cron,omitempty"`
}
