package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radionhq/revshare-engine/internal/auth"
	"github.com/radionhq/revshare-engine/internal/domain"
)

type mockExitService struct {
	requested *domain.ExitRequest
	err       error
}

func (m *mockExitService) Request(_ context.Context, contractID, investorID uuid.UUID, exitType domain.ExitType) (*domain.ExitRequest, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.requested = &domain.ExitRequest{
		ID:             uuid.New(),
		ContractID:     contractID,
		InvestorUserID: investorID,
		ExitType:       exitType,
		Status:         domain.ExitStatusRequested,
		QuotedFeeCents: 800,
		RequestedAt:    time.Now().UTC(),
	}
	return m.requested, nil
}

func (m *mockExitService) Settle(_ context.Context, _, _ uuid.UUID, _ domain.SettlementMethod) (*domain.ExitRequest, error) {
	return nil, m.err
}

func (m *mockExitService) Reject(_ context.Context, _, _ uuid.UUID, _ string) (*domain.ExitRequest, error) {
	return nil, m.err
}

func (m *mockExitService) ListByInvestor(_ context.Context, _ uuid.UUID) ([]domain.ExitRequest, error) {
	return nil, m.err
}

func (m *mockExitService) ListPending(_ context.Context) ([]domain.ExitRequest, error) {
	return nil, m.err
}

func exitRequestWith(t *testing.T, body string, identity *auth.Identity) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/exits", strings.NewReader(body))
	if identity != nil {
		req = req.WithContext(auth.ContextWithIdentity(req.Context(), *identity))
	}
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestExitHandler_Request(t *testing.T) {
	investor := auth.Identity{UserID: uuid.New(), Role: domain.RoleInvestor}
	contractID := uuid.New()
	body := fmt.Sprintf(`{"contract_id":%q,"exit_type":"quarterly"}`, contractID)

	t.Run("created", func(t *testing.T) {
		svc := &mockExitService{}
		h := NewExitHandler(svc)
		rec := httptest.NewRecorder()

		h.Request(rec, exitRequestWith(t, body, &investor))

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		require.NotNil(t, svc.requested)
		assert.Equal(t, contractID, svc.requested.ContractID)
		assert.Equal(t, investor.UserID, svc.requested.InvestorUserID)
	})

	t.Run("missing identity", func(t *testing.T) {
		h := NewExitHandler(&mockExitService{})
		rec := httptest.NewRecorder()

		h.Request(rec, exitRequestWith(t, body, nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid exit type", func(t *testing.T) {
		h := NewExitHandler(&mockExitService{})
		rec := httptest.NewRecorder()

		bad := fmt.Sprintf(`{"contract_id":%q,"exit_type":"yearly"}`, contractID)
		h.Request(rec, exitRequestWith(t, bad, &investor))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_FAILED", resp.Error.Code)
	})
}

func TestExitHandler_DomainErrorMapping(t *testing.T) {
	investor := auth.Identity{UserID: uuid.New(), Role: domain.RoleInvestor}
	contractID := uuid.New()
	body := fmt.Sprintf(`{"contract_id":%q,"exit_type":"offcycle"}`, contractID)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"hold not met", domain.ErrMinHoldNotMet, http.StatusUnprocessableEntity, "MIN_HOLD_NOT_MET"},
		{"exit pending", domain.ErrExitPending, http.StatusConflict, "EXIT_PENDING"},
		{"contract not active", domain.ErrContractNotActive, http.StatusUnprocessableEntity, "CONTRACT_NOT_ACTIVE"},
		{"not the owner", domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"unknown contract", domain.ErrNotFound, http.StatusNotFound, "RESOURCE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewExitHandler(&mockExitService{err: fmt.Errorf("Request: %w", tt.err)})
			rec := httptest.NewRecorder()

			h.Request(rec, exitRequestWith(t, body, &investor))

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeResponse(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}
