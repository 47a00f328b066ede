package ratelimit

import (
	"fmt"
	"time"
)

// Rule names one admission bucket and its fixed-window quota.
type Rule struct {
	Name        string
	Max         int
	Window      time.Duration
	Description string
}

// String renders the quota the way clients see it in 429 bodies and the
// /rate-limits payload, e.g. "10/minute".
func (r Rule) String() string {
	switch r.Window {
	case time.Second:
		return fmt.Sprintf("%d/second", r.Max)
	case time.Minute:
		return fmt.Sprintf("%d/minute", r.Max)
	case time.Hour:
		return fmt.Sprintf("%d/hour", r.Max)
	}
	return fmt.Sprintf("%d/%s", r.Max, r.Window)
}

// Per-endpoint quotas, all counted per client address.
var (
	RuleChat          = Rule{Name: "chat", Max: 10, Window: time.Minute, Description: "AI chat processing"}
	RuleSearch        = Rule{Name: "search", Max: 30, Window: time.Minute, Description: "Movie search"}
	RuleLists         = Rule{Name: "lists", Max: 60, Window: time.Minute, Description: "Popular/trending lists"}
	RuleDetails       = Rule{Name: "details", Max: 50, Window: time.Minute, Description: "Detailed movie info"}
	RuleProviders     = Rule{Name: "providers", Max: 40, Window: time.Minute, Description: "Streaming availability"}
	RuleRecommend     = Rule{Name: "recommendations", Max: 30, Window: time.Minute, Description: "Movie recommendations"}
	RuleTrending      = Rule{Name: "trending", Max: 50, Window: time.Minute, Description: "Trending movies"}
	RuleDiscover      = Rule{Name: "discover", Max: 40, Window: time.Minute, Description: "Genre discovery"}
	RuleSessionsList  = Rule{Name: "sessions-list", Max: 20, Window: time.Minute, Description: "Session listing"}
	RuleSessionMsgs   = Rule{Name: "session-messages", Max: 30, Window: time.Minute, Description: "Session transcript"}
	RuleSessionReset  = Rule{Name: "session-reset", Max: 15, Window: time.Minute, Description: "Session reset"}
	RuleSessionDelete = Rule{Name: "session-delete", Max: 10, Window: time.Minute, Description: "Session deletion"}
	RuleSessionsClear = Rule{Name: "sessions-clear", Max: 5, Window: time.Minute, Description: "Clearing all sessions"}
	RuleHealth        = Rule{Name: "health", Max: 100, Window: time.Minute, Description: "Health checks"}
	RuleInfo          = Rule{Name: "rate-limit-info", Max: 10, Window: time.Minute, Description: "Rate limit info"}
)

// Defaults lists every configured rule, in the order the info endpoint
// reports them.
func Defaults() []Rule {
	return []Rule{
		RuleChat,
		RuleSearch,
		RuleLists,
		RuleDetails,
		RuleProviders,
		RuleRecommend,
		RuleTrending,
		RuleDiscover,
		RuleSessionsList,
		RuleSessionMsgs,
		RuleSessionReset,
		RuleSessionDelete,
		RuleSessionsClear,
		RuleHealth,
		RuleInfo,
	}
}
