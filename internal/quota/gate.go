// Package quota admits or denies generation attempts against the plan
// catalog. Enforcement is check-then-insert: in the default soft mode
// two concurrent requests may both pass the check and briefly overshoot
// the limit by one, which is accepted. Hard mode serializes the window
// per user through a distributed lock.
package quota

import (
	"context"
	"errors"
	"time"

	"github.com/copyadhq/copyad/internal/config"
	"github.com/copyadhq/copyad/internal/plan"
	profiledomain "github.com/copyadhq/copyad/internal/profile/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrQuotaExceeded = errors.New("generation quota exceeded")

const lockTTL = 10 * time.Second

// UsageCounter reports how many persisted generations a user has.
type UsageCounter interface {
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// Decision is the outcome of an admission check.
type Decision struct {
	Plan      plan.Plan `json:"plan"`
	Limit     int64     `json:"limit"`
	Unbounded bool      `json:"unbounded"`
	Used      int64     `json:"used"`
	Remaining int64     `json:"remaining"`
}

type Params struct {
	fx.In

	Config   config.Config
	Log      *zap.Logger
	Holder   *plan.CatalogHolder
	Profiles profiledomain.Service
	Usage    UsageCounter
	Locker   *Locker `optional:"true"`
}

type Gate struct {
	log      *zap.Logger
	holder   *plan.CatalogHolder
	profiles profiledomain.Service
	usage    UsageCounter
	locker   *Locker
	hard     bool
}

func NewGate(p Params) *Gate {
	hard := p.Config.Quota.HardEnforcement
	if hard && p.Locker == nil {
		p.Log.Warn("hard quota enforcement requested without redis, falling back to soft mode")
		hard = false
	}
	return &Gate{
		log:      p.Log.Named("quota.gate"),
		holder:   p.Holder,
		profiles: p.Profiles,
		usage:    p.Usage,
		locker:   p.Locker,
		hard:     hard,
	}
}

// Admit checks the user's usage against the plan limit. On success the
// returned release function must be called once the caller has finished
// (or abandoned) its insert; in soft mode it is a no-op. A denial
// returns ErrQuotaExceeded together with the decision that denied.
func (g *Gate) Admit(ctx context.Context, userID string) (*Decision, func(), error) {
	release := func() {}

	if g.hard {
		key := "quota:lock:" + userID
		token, ok, err := g.locker.TryLock(ctx, key, lockTTL)
		if err != nil {
			return nil, release, err
		}
		if !ok {
			// Another request holds the user's window. Denying is safer
			// than waiting: the client retries after the in-flight
			// generation settles.
			return nil, release, ErrQuotaExceeded
		}
		release = func() {
			if err := g.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
				g.log.Warn("quota lock release failed", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}

	decision, err := g.Inspect(ctx, userID)
	if err != nil {
		release()
		return nil, func() {}, err
	}

	if !decision.Unbounded && decision.Used >= decision.Limit {
		release()
		return decision, func() {}, ErrQuotaExceeded
	}
	return decision, release, nil
}

// Inspect computes the current decision without admitting anything.
func (g *Gate) Inspect(ctx context.Context, userID string) (*Decision, error) {
	userPlan, err := g.profiles.ResolvePlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	limit, unbounded := g.holder.Catalog().LimitFor(userPlan)
	used, err := g.usage.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	decision := &Decision{
		Plan:      userPlan,
		Limit:     limit,
		Unbounded: unbounded,
		Used:      used,
	}
	if !unbounded {
		decision.Remaining = limit - used
		if decision.Remaining < 0 {
			decision.Remaining = 0
		}
	}
	return decision, nil
}
