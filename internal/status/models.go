// Package status provides service status tracking: services, their
// append-only status history, and the aggregate status computation.
package status

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrServiceNotFound = errors.New("service not found")
	ErrUpdateNotFound  = errors.New("status update not found")
)

// Level is the status level of a service at a point in time.
type Level string

// Status levels, least to most severe. Maintenance participates in the
// severity order between stable and degraded: a maintenance window
// overrides an otherwise stable banner but never masks a real incident.
const (
	LevelStable      Level = "stable"
	LevelMaintenance Level = "maintenance"
	LevelDegraded    Level = "degraded"
	LevelPartial     Level = "partial"
	LevelDown        Level = "down"
)

// DefaultLevel is the level reported for a service with no recorded history.
const DefaultLevel = LevelStable

var severity = map[Level]int{
	LevelStable:      0,
	LevelMaintenance: 1,
	LevelDegraded:    2,
	LevelPartial:     3,
	LevelDown:        4,
}

var displayNames = map[Level]string{
	LevelStable:      "Stable",
	LevelMaintenance: "Maintenance",
	LevelDegraded:    "Degraded Performance",
	LevelPartial:     "Partial Outage",
	LevelDown:        "Major Outage",
}

// Levels returns all valid levels in ascending severity order.
func Levels() []Level {
	return []Level{LevelStable, LevelMaintenance, LevelDegraded, LevelPartial, LevelDown}
}

// Valid reports whether l is one of the closed set of levels.
func (l Level) Valid() bool {
	_, ok := severity[l]
	return ok
}

// Severity returns the rank of l in the severity order, 0 being least severe.
func (l Level) Severity() int {
	return severity[l]
}

// Display returns the human-readable name for l.
func (l Level) Display() string {
	if name, ok := displayNames[l]; ok {
		return name
	}
	return string(l)
}

// Worse returns the more severe of a and b.
func Worse(a, b Level) Level {
	if severity[b] > severity[a] {
		return b
	}
	return a
}

// Service is a monitored unit of infrastructure or application.
type Service struct {
	ID          int64
	Name        string
	Description string
	Order       int
	Active      bool
	CreatedAt   time.Time
}

// Update is one immutable status observation for a service. Once persisted
// it is never mutated or deleted. ID and CreatedAt are assigned by the
// repository inside the same transaction as the insert; together they define
// the total order of a service's history (CreatedAt, then ID ascending).
type Update struct {
	ID          int64
	ServiceID   int64
	ServiceName string
	Status      Level
	Comments    string
	Plan        string
	CreatedBy   *string
	CreatedAt   time.Time
}

// ActorKind discriminates the identity behind a status write.
type ActorKind int

// Actor kinds.
const (
	ActorAnonymous ActorKind = iota
	ActorAPIClient
	ActorOperator
)

// Actor is the identity performing a write. API-authenticated callers are
// deliberately not recorded as creators: the credential authenticates the
// request, not the author field. Only interactive operators are recorded.
type Actor struct {
	kind     ActorKind
	operator string
}

// Anonymous returns an actor with no identity.
func Anonymous() Actor {
	return Actor{kind: ActorAnonymous}
}

// APIClient returns the actor for an API-key-authenticated caller.
func APIClient() Actor {
	return Actor{kind: ActorAPIClient}
}

// Operator returns the actor for an interactive operator.
func Operator(name string) Actor {
	return Actor{kind: ActorOperator, operator: name}
}

// Kind returns the actor's kind.
func (a Actor) Kind() ActorKind {
	return a.kind
}

// CreatedBy returns the creator identity to record on an observation:
// the operator name for operators, nil for API clients and anonymous actors.
func (a Actor) CreatedBy() *string {
	if a.kind == ActorOperator {
		name := a.operator
		return &name
	}
	return nil
}
