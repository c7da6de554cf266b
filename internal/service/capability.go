package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"salonhub/internal/domain"
)

// CapabilityService orchestrates grant, revoke, validation, query, and
// cleanup operations against the capability ledger. Ledger mutations are
// authoritative; notification dispatch and realtime push are best-effort
// side effects that never affect the outcome.
type CapabilityService struct {
	ledger      domain.CapabilityLedger
	employments domain.EmploymentRepository
	tenants     domain.TenantRepository
	audit       domain.AuditRepository
	notifier    domain.NotificationDispatcher
	pusher      domain.RealtimePusher
	effects     *SideEffectRunner
	logger      *slog.Logger
	now         func() time.Time
}

// NewCapabilityService creates a CapabilityService.
func NewCapabilityService(
	ledger domain.CapabilityLedger,
	employments domain.EmploymentRepository,
	tenants domain.TenantRepository,
	audit domain.AuditRepository,
	notifier domain.NotificationDispatcher,
	pusher domain.RealtimePusher,
	effects *SideEffectRunner,
	logger *slog.Logger,
) *CapabilityService {
	return &CapabilityService{
		ledger:      ledger,
		employments: employments,
		tenants:     tenants,
		audit:       audit,
		notifier:    notifier,
		pusher:      pusher,
		effects:     effects,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Test hook.
func (s *CapabilityService) SetClock(now func() time.Time) {
	s.now = now
}

// GrantValidation is the result of a non-throwing eligibility pre-check.
type GrantValidation struct {
	Valid  bool
	Reason string
}

// CleanupReport summarizes one consistency sweep.
type CleanupReport struct {
	CleanedCount int
	Reasons      []string
}

// Cleanup reasons, one per way an employment can stop being eligible.
const (
	reasonMembershipDeleted     = "membership deleted"
	reasonMembershipDeactivated = "membership deactivated"
	reasonMembershipTerminated  = "membership terminated"
)

// Grant grants the given capability codes to an employment. Codes that are
// already active are skipped (idempotent, not an error); only newly created
// rows are returned. Preconditions, each with its own error: the employment
// must be an eligible member of the tenant, grantedBy must be the tenant's
// owner (or the system actor), and every code must belong to the closed
// enumeration.
func (s *CapabilityService) Grant(ctx context.Context, tenantID, employmentID string, codes []string, grantedBy string, notes *string, metadata map[string]string) ([]domain.CapabilityGrant, error) {
	emp, err := s.eligibleEmployment(ctx, tenantID, employmentID)
	if err != nil {
		return nil, err
	}

	tenant, err := s.requireAuthority(ctx, tenantID, grantedBy)
	if err != nil {
		return nil, err
	}

	codes, err = normalizeCodes(codes)
	if err != nil {
		return nil, err
	}

	var created []domain.CapabilityGrant
	for _, code := range codes {
		active, err := s.ledger.HasActive(ctx, employmentID, tenantID, code)
		if err != nil {
			return nil, err
		}
		if active {
			continue
		}

		g, err := s.ledger.Insert(ctx, &domain.CapabilityGrant{
			EmploymentID: employmentID,
			TenantID:     tenantID,
			Code:         code,
			GrantedBy:    grantedBy,
			GrantedAt:    s.now(),
			Notes:        notes,
			Metadata:     metadata,
		})
		if err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				// Lost a race against an identical grant: the row is already
				// active, which is exactly the skip case.
				s.logger.Info("grant already active, skipping",
					"employment_id", employmentID, "tenant_id", tenantID, "code", code)
				continue
			}
			return created, err
		}
		created = append(created, *g)
	}

	if len(created) == 0 {
		return created, nil
	}

	requestID := domain.RequestIDFromContext(ctx)
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		ActorID:      grantedBy,
		Action:       "GRANT",
		TenantID:     tenantID,
		EmploymentID: employmentID,
		Detail:       strings.Join(grantCodes(created), ","),
		RequestID:    requestID,
	})

	s.announce(domain.NotifyCapabilityGranted, domain.EventGranted, tenant, emp, grantCodes(created), grantedBy, requestID)
	return created, nil
}

// Revoke flips all matching active grants to inactive, stamping the
// revocation fields. Codes without an active grant are skipped silently.
// Preconditions mirror Grant's: an ineligible employment is rejected with the
// same specific errors, and grants stranded on one are the cleanup sweep's
// job, not manual revocation's.
func (s *CapabilityService) Revoke(ctx context.Context, tenantID, employmentID string, codes []string, revokedBy string) error {
	emp, err := s.eligibleEmployment(ctx, tenantID, employmentID)
	if err != nil {
		return err
	}

	tenant, err := s.requireAuthority(ctx, tenantID, revokedBy)
	if err != nil {
		return err
	}

	codes, err = normalizeCodes(codes)
	if err != nil {
		return err
	}

	flipped, err := s.ledger.RevokeActive(ctx, employmentID, tenantID, codes, revokedBy, nil)
	if err != nil {
		return err
	}
	if len(flipped) == 0 {
		return nil
	}

	requestID := domain.RequestIDFromContext(ctx)
	_ = s.audit.Insert(ctx, &domain.AuditEntry{
		ActorID:      revokedBy,
		Action:       "REVOKE",
		TenantID:     tenantID,
		EmploymentID: employmentID,
		Detail:       strings.Join(grantCodes(flipped), ","),
		RequestID:    requestID,
	})

	s.announce(domain.NotifyCapabilityRevoked, domain.EventRevoked, tenant, emp, grantCodes(flipped), revokedBy, requestID)
	return nil
}

// HasPermission reports whether the employment holds an active grant of code.
func (s *CapabilityService) HasPermission(ctx context.Context, employmentID, tenantID, code string) (bool, error) {
	return s.ledger.HasActive(ctx, employmentID, tenantID, code)
}

// HasAny reports whether the employment holds any of the codes, stopping at
// the first hit.
func (s *CapabilityService) HasAny(ctx context.Context, employmentID, tenantID string, codes []string) (bool, error) {
	for _, code := range codes {
		ok, err := s.ledger.HasActive(ctx, employmentID, tenantID, code)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// HasAll reports whether the employment holds every code, stopping at the
// first miss.
func (s *CapabilityService) HasAll(ctx context.Context, employmentID, tenantID string, codes []string) (bool, error) {
	for _, code := range codes {
		ok, err := s.ledger.HasActive(ctx, employmentID, tenantID, code)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ListGrants returns the grant history of one employment, newest first.
func (s *CapabilityService) ListGrants(ctx context.Context, tenantID, employmentID string, page domain.PageRequest) ([]domain.CapabilityGrant, int64, error) {
	return s.ledger.ListForEmployment(ctx, employmentID, tenantID, page)
}

// ValidateForGrant exposes the eligibility rules Grant applies, without
// raising: callers get a verdict and a reason instead of an error.
func (s *CapabilityService) ValidateForGrant(ctx context.Context, tenantID, employmentID string) (GrantValidation, error) {
	_, err := s.eligibleEmployment(ctx, tenantID, employmentID)
	if err != nil {
		var notFound *domain.NotFoundError
		var validation *domain.ValidationError
		if errors.As(err, &notFound) || errors.As(err, &validation) {
			return GrantValidation{Valid: false, Reason: err.Error()}, nil
		}
		return GrantValidation{}, err
	}
	return GrantValidation{Valid: true}, nil
}

// CleanupOrphanedPermissions sweeps all active grants and revokes those whose
// employment is no longer eligible. Idempotent: a second run with no
// intervening membership changes revokes nothing.
func (s *CapabilityService) CleanupOrphanedPermissions(ctx context.Context) (CleanupReport, error) {
	active, err := s.ledger.ListActive(ctx)
	if err != nil {
		return CleanupReport{}, err
	}

	report := CleanupReport{}
	now := s.now()
	// One eligibility verdict per employment, not per grant row.
	verdicts := map[string]string{}

	for _, g := range active {
		reason, checked := verdicts[g.EmploymentID]
		if !checked {
			reason, err = s.employmentCleanupReason(ctx, g.EmploymentID, now)
			if err != nil {
				return report, err
			}
			verdicts[g.EmploymentID] = reason
		}
		if reason == "" {
			continue
		}

		notes := "auto-revoked: " + reason
		flipped, err := s.ledger.RevokeActive(ctx, g.EmploymentID, g.TenantID, []string{g.Code}, domain.SystemActor, &notes)
		if err != nil {
			return report, err
		}
		if len(flipped) == 0 {
			continue
		}

		report.CleanedCount++
		report.Reasons = append(report.Reasons, fmt.Sprintf("%s/%s %s: %s", g.TenantID, g.EmploymentID, g.Code, reason))

		_ = s.audit.Insert(ctx, &domain.AuditEntry{
			ActorID:      domain.SystemActor,
			Action:       "CLEANUP",
			TenantID:     g.TenantID,
			EmploymentID: g.EmploymentID,
			Detail:       g.Code + ": " + reason,
		})
	}

	return report, nil
}

// EmploymentForUser returns the user's employment in the given tenant, or a
// NotFoundError. Used by the capability guard to map a principal onto the
// employment the ledger is keyed by.
func (s *CapabilityService) EmploymentForUser(ctx context.Context, userID, tenantID string) (*domain.Employment, error) {
	employments, err := s.employments.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range employments {
		if employments[i].TenantID == tenantID && employments[i].IsActive {
			return &employments[i], nil
		}
	}
	return nil, domain.ErrNotFound("user %s is not employed in tenant %s", userID, tenantID)
}

// IsTenantOwner reports whether userID is the owning authority of the tenant.
func (s *CapabilityService) IsTenantOwner(ctx context.Context, userID, tenantID string) (bool, error) {
	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return tenant.OwnerUserID == userID, nil
}

// eligibleEmployment loads the employment and applies the eligibility rules,
// each failure with its own specific, actionable error.
func (s *CapabilityService) eligibleEmployment(ctx context.Context, tenantID, employmentID string) (*domain.Employment, error) {
	emp, err := s.employments.Find(ctx, employmentID, tenantID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return nil, domain.ErrNotFound("employment %s not found in tenant %s", employmentID, tenantID)
		}
		return nil, err
	}
	if !emp.IsActive {
		return nil, domain.ErrValidation("employment %s is deactivated and cannot receive capabilities", employmentID)
	}
	if emp.TerminationDate != nil && !emp.TerminationDate.After(s.now()) {
		return nil, domain.ErrValidation("employment %s was terminated on %s", employmentID, emp.TerminationDate.Format("2006-01-02"))
	}
	return emp, nil
}

// requireAuthority checks that actor is the tenant's owner or the system actor.
func (s *CapabilityService) requireAuthority(ctx context.Context, tenantID, actor string) (*domain.Tenant, error) {
	tenant, err := s.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if actor != tenant.OwnerUserID && actor != domain.SystemActor {
		return nil, domain.ErrAccessDenied("only the owner of %s can change capabilities", tenant.Name)
	}
	return tenant, nil
}

// employmentCleanupReason returns the reason a sweep should revoke the
// employment's grants, or "" when the employment is still eligible.
func (s *CapabilityService) employmentCleanupReason(ctx context.Context, employmentID string, now time.Time) (string, error) {
	emp, err := s.employments.FindByID(ctx, employmentID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return reasonMembershipDeleted, nil
		}
		return "", err
	}
	if !emp.IsActive {
		return reasonMembershipDeactivated, nil
	}
	if emp.TerminationDate != nil && !emp.TerminationDate.After(now) {
		return reasonMembershipTerminated, nil
	}
	return "", nil
}

// announce fires the best-effort side effects of a successful mutation. Both
// channels are failure-isolated: errors are observed by the runner's callback
// and never reach the caller.
func (s *CapabilityService) announce(kind, eventType string, tenant *domain.Tenant, emp *domain.Employment, codes []string, actorID, requestID string) {
	labels := make([]string, len(codes))
	for i, code := range codes {
		labels[i] = domain.CapabilityLabel(code)
	}
	nc := domain.NotificationContext{
		UserID:          emp.UserID,
		TenantID:        tenant.ID,
		TenantName:      tenant.Name,
		Capabilities:    labels,
		CapabilityCodes: codes,
		ActorID:         actorID,
	}
	s.effects.Go("notify:"+kind, requestID, func(ctx context.Context) error {
		return s.notifier.Notify(ctx, kind, nc, domain.NotificationOptions{})
	})

	ev := domain.CapabilityEvent{
		Type:            eventType,
		CapabilityCodes: codes,
		TenantID:        tenant.ID,
		TenantName:      tenant.Name,
		At:              s.now(),
		ActorID:         actorID,
	}
	userID := emp.UserID
	s.effects.Go("push:"+eventType, requestID, func(ctx context.Context) error {
		s.pusher.Push(userID, ev)
		return nil
	})
}

// normalizeCodes deduplicates while preserving order and validates every code
// against the closed enumeration. Duplicates are not an error.
func normalizeCodes(codes []string) ([]string, error) {
	seen := map[string]bool{}
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if !domain.ValidCapabilityCode(code) {
			return nil, domain.ErrValidation("unknown capability code %q", code)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out, nil
}

func grantCodes(grants []domain.CapabilityGrant) []string {
	codes := make([]string, len(grants))
	for i, g := range grants {
		codes[i] = g.Code
	}
	return codes
}
