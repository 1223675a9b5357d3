// Package workflow defines the legal state transitions for applications,
// rounds, and exit requests. Services consult Next before persisting any
// status change, so the transition tables are the only mutation paths.
package workflow

import (
	"fmt"

	"github.com/radionhq/revshare-engine/internal/domain"
)

type Kind string

const (
	KindApplication Kind = "application"
	KindRound       Kind = "round"
	KindExit        Kind = "exit"
)

type Action string

const (
	ActionSubmit     Action = "submit"
	ActionWithdraw   Action = "withdraw"
	ActionApprove    Action = "approve"
	ActionDeny       Action = "deny"
	ActionAssignTier Action = "assign_tier"
	ActionPublish    Action = "publish"
	ActionClose      Action = "close"
	ActionSettle     Action = "settle"
	ActionReject     Action = "reject"
)

type key struct {
	kind   Kind
	from   string
	action Action
}

var transitions = map[key]string{
	{KindApplication, "draft", ActionSubmit}:      "submitted",
	{KindApplication, "draft", ActionWithdraw}:    "withdrawn",
	{KindApplication, "submitted", ActionApprove}: "approved",
	{KindApplication, "submitted", ActionDeny}:    "denied",

	{KindRound, "draft", ActionAssignTier}:         "tier_assigned",
	{KindRound, "tier_assigned", ActionAssignTier}: "tier_assigned",
	{KindRound, "tier_assigned", ActionPublish}:    "published",
	{KindRound, "published", ActionClose}:          "closed",

	{KindExit, "requested", ActionSettle}: "settled",
	{KindExit, "requested", ActionReject}: "rejected",
}

// Next returns the state reached by applying action to from, or
// domain.ErrInvalidTransition when the move is not in the table.
func Next(kind Kind, from string, action Action) (string, error) {
	to, ok := transitions[key{kind, from, action}]
	if !ok {
		return "", fmt.Errorf("workflow.Next: %s %q on %q: %w", kind, action, from, domain.ErrInvalidTransition)
	}
	return to, nil
}
