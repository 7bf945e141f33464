package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/acquisitions/acquisitions-api/internal/core/domain"
	"github.com/acquisitions/acquisitions-api/internal/core/ports"
)

func TestAdmissionService_QuotaByRole(t *testing.T) {
	cases := []struct {
		role   domain.Role
		bucket string
		max    int
	}{
		{domain.RoleAdmin, "admin", 20},
		{domain.RoleUser, "user", 10},
		{domain.RoleGuest, "guest", 5},
		{"", "guest", 5},
		{"owner", "guest", 5},
	}

	for _, tc := range cases {
		engine := &stubEngine{}
		svc := NewAdmissionService(engine, zerolog.Nop())

		d := svc.Evaluate(context.Background(), ports.AdmissionRequest{Role: tc.role, ClientIP: "10.0.0.1", Path: "/api"})
		if !d.Allowed() {
			t.Fatalf("role %q: expected allow, got %s", tc.role, d.Outcome)
		}
		if engine.lastQuota.MaxRequests != tc.max {
			t.Fatalf("role %q: expected quota %d, got %d", tc.role, tc.max, engine.lastQuota.MaxRequests)
		}
		if engine.lastReq.Bucket != tc.bucket || engine.lastReq.ClientIP != "10.0.0.1" {
			t.Fatalf("role %q: unexpected protect request %+v", tc.role, engine.lastReq)
		}
	}
}

func TestAdmissionService_Precedence(t *testing.T) {
	cases := []struct {
		name string
		res  ports.ProtectResult
		want domain.Outcome
	}{
		{"clean", ports.ProtectResult{}, domain.OutcomeAllow},
		{"rate only", ports.ProtectResult{RateLimit: true}, domain.OutcomeDenyRateLimit},
		{"shield only", ports.ProtectResult{Shield: true}, domain.OutcomeDenyShield},
		{"bot only", ports.ProtectResult{Bot: true}, domain.OutcomeDenyBot},
		{"shield and rate", ports.ProtectResult{Shield: true, RateLimit: true}, domain.OutcomeDenyShield},
		{"all three", ports.ProtectResult{Bot: true, Shield: true, RateLimit: true}, domain.OutcomeDenyBot},
		{"bot and rate", ports.ProtectResult{Bot: true, RateLimit: true}, domain.OutcomeDenyBot},
	}

	for _, tc := range cases {
		svc := NewAdmissionService(&stubEngine{result: tc.res}, zerolog.Nop())
		d := svc.Evaluate(context.Background(), ports.AdmissionRequest{ClientIP: "1.2.3.4"})
		if d.Outcome != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, d.Outcome)
		}
	}
}

func TestAdmissionService_EngineFailureFailsClosed(t *testing.T) {
	boom := errors.New("rules backend unreachable")
	svc := NewAdmissionService(&stubEngine{err: boom}, zerolog.Nop())

	d := svc.Evaluate(context.Background(), ports.AdmissionRequest{ClientIP: "1.2.3.4"})
	if d.Outcome != domain.OutcomeEngineError {
		t.Fatalf("expected engine error outcome, got %s", d.Outcome)
	}
	if d.Allowed() {
		t.Fatalf("engine failure must not allow the request")
	}
	if !errors.Is(d.Err, boom) {
		t.Fatalf("expected underlying error to be kept, got %v", d.Err)
	}
}

func TestAdmissionService_CarriesRemaining(t *testing.T) {
	svc := NewAdmissionService(&stubEngine{result: ports.ProtectResult{Remaining: 3}}, zerolog.Nop())

	d := svc.Evaluate(context.Background(), ports.AdmissionRequest{Role: domain.RoleUser})
	if d.Remaining != 3 || d.Role != domain.RoleUser || d.Quota.MaxRequests != 10 {
		t.Fatalf("unexpected decision: %+v", d)
	}
}
