package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// Parameters are kept strictly inside (0, 1) so the logit stays finite
const paramEpsilon = 1e-4

// Coarse search grid used to seed the refinement
var (
	alphaGrid = gridSteps(0.1, 0.1, 9)
	trendGrid = gridSteps(0.01, 0.05, 10)
)

func gridSteps(start, step float64, n int) []float64 {
	steps := make([]float64, n)
	for i := range steps {
		steps[i] = start + float64(i)*step
	}
	return steps
}

// gridSearch returns the grid point with the lowest SSE. Ties keep the first
// point in alpha, beta, gamma order.
func gridSearch(ctx context.Context, s *smoother) (Params, float64, error) {
	best := Params{}
	bestSSE := math.Inf(1)

	for _, alpha := range alphaGrid {
		if err := ctx.Err(); err != nil {
			return Params{}, 0, err
		}
		for _, beta := range trendGrid {
			for _, gamma := range trendGrid {
				p := Params{Alpha: alpha, Beta: beta, Gamma: gamma}
				if sse := s.sse(p); sse < bestSSE {
					best, bestSSE = p, sse
				}
			}
		}
	}

	if !finite(bestSSE) {
		return Params{}, 0, errors.New("objective is not finite on the search grid")
	}
	return best, bestSSE, nil
}

// refine minimises the SSE with Nelder-Mead starting from seed. The search
// runs on logit-transformed parameters so every trial point maps into (0, 1).
func refine(s *smoother, seed Params, maxIterations int) (Params, optimize.Status, int, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return s.sse(fromLogits(x))
		},
	}
	settings := &optimize.Settings{
		MajorIterations: maxIterations,
		FuncEvaluations: maxIterations * 4,
	}

	result, err := optimize.Minimize(problem, toLogits(seed), settings, &optimize.NelderMead{})
	if err != nil {
		return Params{}, optimize.Failure, 0, err
	}
	if result.Status == optimize.Failure {
		return Params{}, result.Status, result.Stats.FuncEvaluations, fmt.Errorf("optimizer status %s", result.Status)
	}
	if !finite(result.F) {
		return Params{}, result.Status, result.Stats.FuncEvaluations, errors.New("objective is not finite at the optimum")
	}
	return fromLogits(result.X), result.Status, result.Stats.FuncEvaluations, nil
}

// limitReached reports statuses where the budget ran out before convergence
func limitReached(status optimize.Status) bool {
	switch status {
	case optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
		return true
	}
	return false
}

func toLogits(p Params) []float64 {
	return []float64{logit(p.Alpha), logit(p.Beta), logit(p.Gamma)}
}

func fromLogits(x []float64) Params {
	return Params{Alpha: sigmoid(x[0]), Beta: sigmoid(x[1]), Gamma: sigmoid(x[2])}
}

func logit(p float64) float64 {
	p = math.Min(math.Max(p, paramEpsilon), 1-paramEpsilon)
	return math.Log(p / (1 - p))
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
