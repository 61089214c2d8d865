package duplicate

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/domain/documents"
	"stockhouse/pkg/logger"
)

// MatchPolicy configures which candidates count as duplicates.
//
// The base predicate is same counterparty on the same calendar day with a
// committed (pending or completed) status. RequireLineOverlap narrows it
// further. Expression replaces the struct flags entirely with a CEL
// predicate evaluated per candidate over the variables:
//
//	sameSupplier bool   counterparty matches (supplier for entry, destination for exit)
//	sameDay      bool   business date falls on the same calendar day
//	lineOverlap  bool   at least one product+quantity line matches
//	status       string candidate status ("pending" or "completed")
type MatchPolicy struct {
	RequireLineOverlap bool
	Expression         string
}

// DefaultPolicy matches on counterparty and day only.
func DefaultPolicy() MatchPolicy {
	return MatchPolicy{}
}

// Detector finds advisory duplicate candidates. Reads run outside workflow
// transactions and are never serialized with document creation.
type Detector struct {
	repo    Repository
	policy  MatchPolicy
	program cel.Program // nil unless policy.Expression is set
}

// NewDetector creates a detector, compiling the policy expression if present.
func NewDetector(repo Repository, policy MatchPolicy) (*Detector, error) {
	d := &Detector{repo: repo, policy: policy}

	if policy.Expression != "" {
		env, err := cel.NewEnv(
			cel.Variable("sameSupplier", cel.BoolType),
			cel.Variable("sameDay", cel.BoolType),
			cel.Variable("lineOverlap", cel.BoolType),
			cel.Variable("status", cel.StringType),
		)
		if err != nil {
			return nil, fmt.Errorf("create cel env: %w", err)
		}

		ast, issues := env.Compile(policy.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile match expression: %w", issues.Err())
		}
		if ast.OutputType() != cel.BoolType {
			return nil, fmt.Errorf("match expression must return bool, got %s", ast.OutputType())
		}

		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("build match program: %w", err)
		}
		d.program = program
	}

	return d, nil
}

// FindCandidates returns committed same-day documents that match the policy,
// ordered by date descending then reference ascending.
func (d *Detector) FindCandidates(ctx context.Context, kind documents.Kind, q Query) ([]*Candidate, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidation("document kind must be entry or exit").
			WithDetail("kind", string(kind))
	}
	if q.Date.IsZero() {
		return nil, apperror.NewValidation("date is required")
	}

	candidates, err := d.repo.FindCommittedByDay(ctx, kind, q.Date)
	if err != nil {
		return nil, err
	}

	matched := make([]*Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.DocumentID == q.ExcludeID {
			continue
		}

		ok, err := d.matches(q, c)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].Reference < matched[j].Reference
	})

	if len(matched) > 0 {
		logger.Debug(ctx, "duplicate candidates found",
			"kind", kind,
			"count", len(matched),
		)
	}
	return matched, nil
}

func (d *Detector) matches(q Query, c *Candidate) (bool, error) {
	sameCounterparty := q.sameCounterparty(c)
	overlap := q.lineOverlap(c)

	if d.program == nil {
		if !sameCounterparty {
			return false, nil
		}
		if d.policy.RequireLineOverlap && !overlap {
			return false, nil
		}
		return true, nil
	}

	// Candidate retrieval is already scoped to the same calendar day.
	out, _, err := d.program.Eval(map[string]any{
		"sameSupplier": sameCounterparty,
		"sameDay":      true,
		"lineOverlap":  overlap,
		"status":       string(c.Status),
	})
	if err != nil {
		return false, fmt.Errorf("eval match expression: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("match expression returned %T, want bool", out.Value())
	}
	return result, nil
}
