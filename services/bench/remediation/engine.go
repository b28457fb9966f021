// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package remediation turns a benchmark summary into a prioritized plan of
// operational actions.
//
// # Description
//
// Independent threshold rules evaluate a single current summary — no
// baseline involved. Each rule that trips appends one action; rules never
// deduplicate against each other, because they represent independent
// escalation paths (the combined rule intentionally stacks on top of the
// individual ones). The resulting plan is declarative: nothing in this
// package executes a command unless the caller explicitly asks for it via
// ExecutePlan.
//
// # Thread Safety
//
// Engine is immutable after construction. Plans are ephemeral values owned
// by the caller.
package remediation

import (
	"fmt"
	"sort"

	"github.com/AleutianAI/AleutianBench/services/bench/stats"
	"github.com/AleutianAI/AleutianBench/services/bench/thresholds"
)

// Priority ranks an action's urgency. Lower is more urgent.
type Priority int

const (
	// PriorityCritical actions demand immediate execution.
	PriorityCritical Priority = 1

	// PriorityHigh actions should run soon.
	PriorityHigh Priority = 2

	// PriorityMedium actions are advisory.
	PriorityMedium Priority = 3
)

// Label returns the operator-facing label for the priority.
func (p Priority) Label() string {
	switch p {
	case PriorityCritical:
		return "CRITICAL"
	case PriorityHigh:
		return "HIGH"
	case PriorityMedium:
		return "MEDIUM"
	default:
		return "UNKNOWN"
	}
}

// ActionType tags the kind of operational change an action performs.
type ActionType int

const (
	// ActionScale adds replicas to a deployment.
	ActionScale ActionType = iota

	// ActionRollback reverts to the previous stable version.
	ActionRollback

	// ActionConfig reduces load through a configuration change.
	ActionConfig

	// ActionInvestigate gathers diagnostics without changing anything.
	ActionInvestigate

	// ActionCombined couples scaling with a rollback when multiple metrics
	// degrade at once.
	ActionCombined
)

// String returns the wire/report name of the action type.
func (t ActionType) String() string {
	switch t {
	case ActionScale:
		return "scale"
	case ActionRollback:
		return "rollback"
	case ActionConfig:
		return "config"
	case ActionInvestigate:
		return "investigate"
	case ActionCombined:
		return "combined"
	default:
		return "unknown"
	}
}

// Action is one declarative remediation step.
type Action struct {
	Priority    Priority
	Type        ActionType
	Description string
	Command     string
	Rationale   string
}

// Plan is the ordered action list produced by one evaluation pass.
type Plan struct {
	// Actions are sorted by priority ascending; ties keep rule order.
	Actions []Action
}

// ShouldRemediate reports whether the plan contains any critical action.
func (p Plan) ShouldRemediate() bool {
	for _, a := range p.Actions {
		if a.Priority == PriorityCritical {
			return true
		}
	}
	return false
}

// Engine evaluates remediation rules with an injected threshold set.
type Engine struct {
	limits thresholds.Thresholds
}

// NewEngine creates an engine bound to the given thresholds.
func NewEngine(limits thresholds.Thresholds) *Engine {
	return &Engine{limits: limits}
}

// Evaluate runs every rule against the current summary.
//
// Rule order (also the tiebreak order for equal priorities): p95 latency,
// p99 latency, error rate, throughput, combined. The p95 critical rule
// suppresses its own warning variant; every other pairing stacks.
func (e *Engine) Evaluate(current *stats.RunSummary) Plan {
	var actions []Action

	p95 := current.Latency.P95Ms
	p99 := current.Latency.P99Ms
	errorRate := current.ErrorRate
	throughput := current.ThroughputRPS

	switch {
	case p95 >= e.limits.P95LatencyCriticalMs:
		actions = append(actions, Action{
			Priority:    PriorityCritical,
			Type:        ActionScale,
			Description: "Scale gateway replicas to handle increased load",
			Command:     "kubectl scale deployment llm-gateway --replicas=5",
			Rationale: fmt.Sprintf("P95 latency (%.2fms) exceeds critical threshold (%.0fms)",
				p95, e.limits.P95LatencyCriticalMs),
		})
	case p95 >= e.limits.P95LatencyWarningMs:
		actions = append(actions, Action{
			Priority:    PriorityHigh,
			Type:        ActionScale,
			Description: "Increase gateway replicas",
			Command:     "kubectl scale deployment llm-gateway --replicas=4",
			Rationale: fmt.Sprintf("P95 latency (%.2fms) exceeds warning threshold (%.0fms)",
				p95, e.limits.P95LatencyWarningMs),
		})
	}

	// p99 targets the backend tier; fires alongside the p95 rules.
	if p99 >= e.limits.P99LatencyCriticalMs {
		actions = append(actions, Action{
			Priority:    PriorityCritical,
			Type:        ActionScale,
			Description: "Scale backend replicas for tail latency",
			Command:     "kubectl scale deployment llm-backend --replicas=5",
			Rationale:   fmt.Sprintf("P99 latency (%.2fms) indicates backend bottleneck", p99),
		})
	}

	switch {
	case errorRate >= e.limits.ErrorRateCritical:
		actions = append(actions, Action{
			Priority:    PriorityCritical,
			Type:        ActionRollback,
			Description: "Rollback to previous stable version",
			Command:     "kubectl rollout undo deployment llm-gateway && kubectl rollout undo deployment llm-backend",
			Rationale: fmt.Sprintf("Error rate (%.2f%%) exceeds critical threshold (%.0f%%)",
				errorRate*100, e.limits.ErrorRateCritical*100),
		})
	case errorRate >= e.limits.ErrorRateWarning:
		actions = append(actions, Action{
			Priority:    PriorityHigh,
			Type:        ActionConfig,
			Description: "Reduce load by lowering max_tokens",
			Command:     `kubectl patch configmap llm-config -p '{"data":{"MAX_TOKENS":"50"}}'`,
			Rationale:   fmt.Sprintf("Error rate (%.2f%%) indicates system overload", errorRate*100),
		})
	}

	switch {
	case throughput <= e.limits.ThroughputMinCriticalRPS:
		actions = append(actions, Action{
			Priority:    PriorityCritical,
			Type:        ActionScale,
			Description: "Emergency scaling - throughput critically low",
			Command:     "kubectl scale deployment llm-gateway --replicas=10",
			Rationale:   fmt.Sprintf("Throughput (%.2f req/s) critically low", throughput),
		})
	case throughput <= e.limits.ThroughputMinWarningRPS:
		actions = append(actions, Action{
			Priority:    PriorityMedium,
			Type:        ActionInvestigate,
			Description: "Investigate throughput degradation",
			Command:     "kubectl logs -l app=gateway --tail=100",
			Rationale:   fmt.Sprintf("Throughput (%.2f req/s) below expected baseline", throughput),
		})
	}

	// Combined escalation path: stacks on top of whatever already fired.
	if p95 >= e.limits.P95LatencyWarningMs && errorRate >= e.limits.ErrorRateWarning {
		actions = append(actions, Action{
			Priority:    PriorityCritical,
			Type:        ActionCombined,
			Description: "Combined remediation: scale and rollback",
			Command:     "kubectl scale deployment llm-gateway --replicas=6 && kubectl rollout undo deployment llm-gateway",
			Rationale:   "Multiple degraded metrics detected - combined approach needed",
		})
	}

	sort.SliceStable(actions, func(i, j int) bool {
		return actions[i].Priority < actions[j].Priority
	})
	return Plan{Actions: actions}
}
