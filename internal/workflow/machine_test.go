package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radionhq/revshare-engine/internal/domain"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		from   string
		action Action
		want   string
	}{
		{"submit draft application", KindApplication, "draft", ActionSubmit, "submitted"},
		{"withdraw draft application", KindApplication, "draft", ActionWithdraw, "withdrawn"},
		{"approve submitted application", KindApplication, "submitted", ActionApprove, "approved"},
		{"deny submitted application", KindApplication, "submitted", ActionDeny, "denied"},
		{"assign tiers to draft round", KindRound, "draft", ActionAssignTier, "tier_assigned"},
		{"re-propose tiers", KindRound, "tier_assigned", ActionAssignTier, "tier_assigned"},
		{"publish round", KindRound, "tier_assigned", ActionPublish, "published"},
		{"close round", KindRound, "published", ActionClose, "closed"},
		{"settle exit", KindExit, "requested", ActionSettle, "settled"},
		{"reject exit", KindExit, "requested", ActionReject, "rejected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.kind, tt.from, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		from   string
		action Action
	}{
		{"submit twice", KindApplication, "submitted", ActionSubmit},
		{"withdraw after submit", KindApplication, "submitted", ActionWithdraw},
		{"submit withdrawn", KindApplication, "withdrawn", ActionSubmit},
		{"approve draft", KindApplication, "draft", ActionApprove},
		{"approve approved", KindApplication, "approved", ActionApprove},
		{"deny denied", KindApplication, "denied", ActionDeny},
		{"publish draft round", KindRound, "draft", ActionPublish},
		{"publish published round", KindRound, "published", ActionPublish},
		{"re-propose after publish", KindRound, "published", ActionAssignTier},
		{"close closed round", KindRound, "closed", ActionClose},
		{"settle settled exit", KindExit, "settled", ActionSettle},
		{"reject settled exit", KindExit, "settled", ActionReject},
		{"settle rejected exit", KindExit, "rejected", ActionSettle},
		{"unknown state", KindRound, "bogus", ActionPublish},
		{"wrong kind", KindExit, "draft", ActionSubmit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Next(tt.kind, tt.from, tt.action)
			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}
}
