// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package cert

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/taibuivan/certly/internal/mailqueue"
	"github.com/taibuivan/certly/internal/platform/apperr"
	"github.com/taibuivan/certly/internal/platform/config"
	"github.com/taibuivan/certly/internal/platform/ctxutil"
	"github.com/taibuivan/certly/internal/platform/dberr"
	"github.com/taibuivan/certly/internal/platform/validate"
	"github.com/taibuivan/certly/internal/ratelimit"
	"github.com/taibuivan/certly/internal/verification"
	"github.com/taibuivan/certly/pkg/shortid"
	uuidv7 "github.com/taibuivan/certly/pkg/uuid"
)

// Service implements the certificate use cases on top of the verification
// lifecycle and the rate limiter.
type Service struct {
	repo     Repository
	stats    *StatsCache
	limiter  *ratelimit.Limiter
	records  *verification.Store
	verifier *verification.Verifier
	guard    *verification.Guard
	emitter  *mailqueue.Emitter
	policy   config.Policy
}

// Deps groups the collaborators of [Service].
type Deps struct {
	Repo    Repository
	Stats   *StatsCache
	Limiter *ratelimit.Limiter
	Records *verification.Store
	Emitter *mailqueue.Emitter
	Policy  config.Policy
}

// NewService wires a [Service]. The verifier and lockout guard are built over
// the shared record store and limiter.
func NewService(deps Deps) *Service {
	return &Service{
		repo:     deps.Repo,
		stats:    deps.Stats,
		limiter:  deps.Limiter,
		records:  deps.Records,
		verifier: verification.NewVerifier(deps.Records),
		guard:    verification.NewGuard(deps.Records, deps.Limiter, deps.Policy.MaxTries, deps.Policy.LockoutDuration),
		emitter:  deps.Emitter,
		policy:   deps.Policy,
	}
}

// # Inputs

// SendCodeInput asks for a confirmation code. CertID is required for delete.
type SendCodeInput struct {
	Email    string
	Purpose  verification.Purpose
	CertID   string
	ClientIP string
}

// CodeSent is returned after a code was queued for delivery.
type CodeSent struct {
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// CreateInput confirms a create code and carries the certificate fields.
type CreateInput struct {
	Email string
	Name  string
	Title string
	Code  string
	Token string
}

// ConfirmInput confirms a delete code.
type ConfirmInput struct {
	Email string
	Code  string
	Token string
}

// # Code Issuance

/*
SendCode issues a confirmation code for in.Purpose and queues it for mailing.

Order of checks:

 1. Per-IP then per-email issuance limits (read only).
 2. Create: no certificate may exist for the email.
    Delete: the id must parse, resolve, and belong to the email.
 3. Counters are bumped, then the code and token are generated and stored,
    replacing any pending code for the email.
 4. The mail task is queued. The token goes back to the caller; the code
    only travels by email.
*/
func (service *Service) SendCode(context context.Context, in SendCodeInput) (*CodeSent, error) {
	logger := ctxutil.GetLogger(context)

	validator := &validate.Validator{}
	validator.
		OneOf(FieldPurpose, string(in.Purpose), string(verification.PurposeCreate), string(verification.PurposeDelete)).
		Custom(FieldID, in.Purpose == verification.PurposeDelete && in.CertID == "", "Required for delete")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// 1. Issuance limits
	if err := service.throttled(context, service.policy.CodeIPRule(), in.ClientIP, apperr.IPRateLimit); err != nil {
		return nil, err
	}
	if err := service.throttled(context, service.policy.CodeEmailRule(), in.Email, apperr.EmailRateLimit); err != nil {
		return nil, err
	}

	// 2. Purpose preconditions
	switch in.Purpose {
	case verification.PurposeCreate:
		if err := service.ensureNoCert(context, in.Email); err != nil {
			return nil, err
		}
	case verification.PurposeDelete:
		if err := service.ensureOwner(context, in.Email, in.CertID); err != nil {
			return nil, err
		}
	}

	// 3. Count the issuance; failures only weaken throttling
	service.hit(context, service.policy.CodeIPRule(), in.ClientIP)
	service.hit(context, service.policy.CodeEmailRule(), in.Email)

	code, err := verification.GenerateCode()
	if err != nil {
		return nil, apperr.Internal(err)
	}
	token, err := verification.GenerateToken()
	if err != nil {
		return nil, apperr.Internal(err)
	}

	expiresAt, err := service.records.Save(context, in.Email, in.Purpose, code, token)
	if err != nil {
		return nil, apperr.InternalServer("cache storage", err)
	}

	// 4. Hand the code to the mail worker
	if in.Purpose == verification.PurposeCreate {
		err = service.emitter.SendCreateCode(context, in.Email, code)
	} else {
		err = service.emitter.SendDeleteCode(context, in.Email, code)
	}
	if err != nil {
		return nil, apperr.InternalServer("broker", err)
	}

	logger.InfoContext(context, "code_sent",
		slog.String("purpose", string(in.Purpose)),
		slog.Time("expires_at", expiresAt),
	)

	return &CodeSent{Email: in.Email, Token: token, ExpiresAt: expiresAt.Unix()}, nil
}

func (service *Service) ensureNoCert(context context.Context, email string) error {
	_, err := service.repo.FindByEmail(context, email)
	switch {
	case err == nil:
		return apperr.AlreadyExists("certificate with this email")
	case errors.Is(err, dberr.ErrNotFound):
		return nil
	default:
		return err
	}
}

func (service *Service) ensureOwner(context context.Context, email, rawID string) error {
	id, err := shortid.Parse(rawID)
	if err != nil {
		return apperr.BadRequest("id field value")
	}

	existing, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.ResourceNotFound("certificate with this ID")
	}
	if err != nil {
		return err
	}

	if existing.Email != email {
		return apperr.InvalidEmail()
	}
	return nil
}

// # Confirmation

/*
Create consumes a create code and stores the certificate.

The pending code is consumed before the insert, so a failed insert requires
a new code. A duplicate email reports already_exists.
*/
func (service *Service) Create(context context.Context, in CreateInput) (*Cert, error) {
	validator := &validate.Validator{}
	validator.
		MinLen(FieldTitle, in.Title, MinTitleLength).
		MaxLen(FieldTitle, in.Title, MaxTitleLength).
		Required(FieldName, in.Name).
		MaxLen(FieldName, in.Name, MaxNameLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.confirm(context, in.Email, in.Token, in.Code, verification.PurposeCreate); err != nil {
		return nil, err
	}

	created := &Cert{ID: uuidv7.New(), Email: in.Email, Name: in.Name, Title: in.Title}
	if err := service.repo.Create(context, created); err != nil {
		if errors.Is(err, dberr.ErrConflict) {
			return nil, apperr.AlreadyExists("certificate with this email")
		}
		return nil, err
	}

	service.adjustUsersCount(context, 1)

	ctxutil.GetLogger(context).InfoContext(context, "cert_created", slog.String("cert_id", created.ShortID()))
	return created, nil
}

// Delete consumes a delete code and removes the email's certificate.
func (service *Service) Delete(context context.Context, in ConfirmInput) (*Cert, error) {
	if err := service.confirm(context, in.Email, in.Token, in.Code, verification.PurposeDelete); err != nil {
		return nil, err
	}

	deleted, err := service.repo.DeleteByEmail(context, in.Email)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.ResourceNotFound("certificate")
	}
	if err != nil {
		return nil, err
	}

	service.adjustUsersCount(context, -1)

	ctxutil.GetLogger(context).WarnContext(context, "cert_deleted", slog.String("cert_id", deleted.ShortID()))
	return deleted, nil
}

// confirm runs the verification state machine and maps each outcome to the
// API error taxonomy. A nil return means the code was valid for want and
// has been consumed.
func (service *Service) confirm(context context.Context, email, token, code string, want verification.Purpose) error {
	result := service.verifier.Verify(context, email, token, code)

	switch result.Outcome {
	case verification.OutcomeOK:
		if result.Purpose != want {
			return apperr.InvalidRoute(routeFor(result.Purpose))
		}
		if err := service.guard.OnSuccess(context, email, token); err != nil {
			return apperr.InternalServer("cache storage", err)
		}
		return nil

	case verification.OutcomeInvalidToken:
		return apperr.InvalidToken()

	case verification.OutcomeInvalidCode:
		lockout := service.guard.OnInvalidCode(context, email, token)
		if lockout.TriesOut {
			return apperr.TriesOut(lockout.RetryAfter, lockout.BlockedUntil)
		}
		return apperr.InvalidCode()

	case verification.OutcomeNotFound:
		return apperr.ResourceNotFound("code record")

	case verification.OutcomeUnknownError:
		return apperr.InternalServer("code verification", result.Err)

	default:
		return apperr.InternalServer("code verification", nil)
	}
}

func routeFor(purpose verification.Purpose) string {
	if purpose == verification.PurposeDelete {
		return RouteDelete
	}
	return RouteCreate
}

// # Recovery

// Forgot mails the certificate id to its owner, under its own per-IP and
// per-email limits.
func (service *Service) Forgot(context context.Context, email, clientIP string) error {
	if err := service.throttled(context, service.policy.ForgotIPRule(), clientIP, apperr.IPRateLimit); err != nil {
		return err
	}
	if err := service.throttled(context, service.policy.ForgotEmailRule(), email, apperr.EmailRateLimit); err != nil {
		return err
	}

	existing, err := service.repo.FindByEmail(context, email)
	if errors.Is(err, dberr.ErrNotFound) {
		return apperr.ResourceNotFound("certificate linked with this email")
	}
	if err != nil {
		return err
	}

	service.hit(context, service.policy.ForgotIPRule(), clientIP)
	service.hit(context, service.policy.ForgotEmailRule(), email)

	if err := service.emitter.SendForgotCert(context, email, existing.ShortID()); err != nil {
		return apperr.InternalServer("broker", err)
	}

	ctxutil.GetLogger(context).InfoContext(context, "cert_reminder_sent")
	return nil
}

// # Queries

// Get resolves a certificate by short id or canonical UUID.
func (service *Service) Get(context context.Context, rawID string) (*Cert, error) {
	id, err := shortid.Parse(rawID)
	if err != nil {
		return nil, apperr.BadRequest("serial number")
	}

	found, err := service.repo.FindByID(context, id)
	if errors.Is(err, dberr.ErrNotFound) {
		return nil, apperr.ResourceNotFound("certificate")
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

// UsersCount returns the number of certificates, cached for a day.
func (service *Service) UsersCount(context context.Context) (int64, error) {
	logger := ctxutil.GetLogger(context)

	cached, found, err := service.stats.UsersCount(context)
	if err == nil && found {
		return cached, nil
	}
	if err != nil {
		logger.WarnContext(context, "users_count_cache_read_failed", slog.Any("error", err))
	}

	count, err := service.repo.Count(context)
	if err != nil {
		return 0, err
	}

	if err := service.stats.StoreUsersCount(context, count); err != nil {
		logger.WarnContext(context, "users_count_cache_write_failed", slog.Any("error", err))
	}
	return count, nil
}

// # Helpers

// throttled returns nil while subject is below the rule, otherwise the
// error built by limitErr with the remaining block.
func (service *Service) throttled(context context.Context, rule ratelimit.Rule, subject string, limitErr func(time.Duration, time.Time) *apperr.AppError) error {
	if service.limiter.Allowed(context, rule, subject) {
		return nil
	}

	remaining, until, err := service.limiter.RetryAfter(context, rule, subject)
	if err != nil {
		return apperr.InternalServer("cache storage", err)
	}
	return limitErr(remaining, until)
}

func (service *Service) hit(context context.Context, rule ratelimit.Rule, subject string) {
	if _, err := service.limiter.Hit(context, rule, subject); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "rate_counter_increment_failed",
			slog.String("realm", rule.Realm),
			slog.Any("error", err),
		)
	}
}

func (service *Service) adjustUsersCount(context context.Context, delta int64) {
	if err := service.stats.AdjustUsersCount(context, delta); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "users_count_cache_adjust_failed", slog.Any("error", err))
	}
}
