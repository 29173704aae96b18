// Package plan holds the static plan catalog: quota limits per plan and the
// payment-provider price map.
package plan

import "strings"

// Plan is a named service tier governing generation quota.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// DefaultPlan applies when a user has no plan record.
const DefaultPlan = PlanFree

// Unbounded marks a tier without a generation limit.
const Unbounded int64 = -1

// Interval is a billing interval for a purchasable price.
type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

// Catalog maps plans to quota limits and provider price identifiers to plans.
// It is a pure lookup table; the only failure mode is "identifier not found".
type Catalog struct {
	limits   map[Plan]int64
	prices   map[string]Plan
	checkout map[Plan]map[Interval]string
}

// Entry configures a single plan in the catalog.
type Entry struct {
	Plan     Plan
	Limit    int64
	PriceIDs map[Interval]string
}

// NewCatalog builds a catalog from entries. A free entry is always present.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		limits:   map[Plan]int64{PlanFree: defaultFreeLimit},
		prices:   map[string]Plan{},
		checkout: map[Plan]map[Interval]string{},
	}
	for _, entry := range entries {
		if entry.Plan == "" {
			continue
		}
		c.limits[entry.Plan] = entry.Limit
		for interval, priceID := range entry.PriceIDs {
			priceID = strings.TrimSpace(priceID)
			if priceID == "" {
				continue
			}
			c.prices[priceID] = entry.Plan
			if c.checkout[entry.Plan] == nil {
				c.checkout[entry.Plan] = map[Interval]string{}
			}
			c.checkout[entry.Plan][interval] = priceID
		}
	}
	return c
}

const defaultFreeLimit = 5

// DefaultCatalog returns the built-in tiers: free (5), pro (500) and
// enterprise (unbounded), with monthly and yearly prices per paid tier.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Entry{
		{Plan: PlanFree, Limit: defaultFreeLimit},
		{
			Plan:  PlanPro,
			Limit: 500,
			PriceIDs: map[Interval]string{
				IntervalMonthly: "price_pro_monthly",
				IntervalYearly:  "price_pro_yearly",
			},
		},
		{
			Plan:  PlanEnterprise,
			Limit: Unbounded,
			PriceIDs: map[Interval]string{
				IntervalMonthly: "price_enterprise_monthly",
				IntervalYearly:  "price_enterprise_yearly",
			},
		},
	})
}

// LimitFor returns the generation limit for a plan. Unknown plans fall back
// to the free limit: an unrecognized plan must never grant unlimited
// generation.
func (c *Catalog) LimitFor(p Plan) (limit int64, unbounded bool) {
	value, ok := c.limits[p]
	if !ok {
		value = c.limits[PlanFree]
	}
	if value == Unbounded {
		return 0, true
	}
	return value, false
}

// PlanFor maps a provider price identifier to a plan. The second result is
// false when the price is unknown; callers must leave the user's plan
// untouched in that case rather than defaulting to free.
func (c *Catalog) PlanFor(priceID string) (Plan, bool) {
	p, ok := c.prices[strings.TrimSpace(priceID)]
	return p, ok
}

// PriceFor returns the purchasable price for a plan and interval. Free has
// no prices.
func (c *Catalog) PriceFor(p Plan, interval Interval) (string, bool) {
	intervals, ok := c.checkout[p]
	if !ok {
		return "", false
	}
	priceID, ok := intervals[interval]
	return priceID, ok
}

// Known reports whether p is a configured plan identifier.
func (c *Catalog) Known(p Plan) bool {
	_, ok := c.limits[p]
	return ok
}
