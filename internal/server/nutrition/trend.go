package nutrition

import "math"

// Projection methods.
const (
	MethodLinear        = "linear_regression"
	MethodMovingAverage = "moving_average"
)

// ProjectionNote is attached to every projection returned to callers.
const ProjectionNote = "statistical estimate from recent daily totals, not a guaranteed forecast"

// Projection is an estimate of the next day's totals.
type Projection struct {
	Method string `json:"method"`
	Window int    `json:"window"`
	Next   Totals `json:"next"`
	// Slope is the per-day change of the fitted line; zero for moving averages.
	Slope Totals `json:"slope"`
	Note  string `json:"note"`
}

// LinearTrend fits an ordinary least-squares line through history (oldest
// first, most recent last) for each metric and evaluates it one step past
// the last point. Negative estimates are clamped to zero. A single point
// projects itself; an empty history projects zeros.
func LinearTrend(history []Totals) Projection {
	p := Projection{Method: MethodLinear, Window: len(history), Note: ProjectionNote}
	if len(history) == 0 {
		return p
	}

	metric := func(get func(Totals) float64) (next, slope float64) {
		ys := make([]float64, len(history))
		for i, h := range history {
			ys[i] = get(h)
		}
		slope, intercept := fitLine(ys)
		return math.Max(0, intercept+slope*float64(len(ys))), slope
	}

	p.Next.Kcal, p.Slope.Kcal = metric(func(t Totals) float64 { return t.Kcal })
	p.Next.Protein, p.Slope.Protein = metric(func(t Totals) float64 { return t.Protein })
	p.Next.Fat, p.Slope.Fat = metric(func(t Totals) float64 { return t.Fat })
	p.Next.Carb, p.Slope.Carb = metric(func(t Totals) float64 { return t.Carb })
	return p
}

// fitLine returns slope and intercept of y = a*x + b over x = 0..n-1.
func fitLine(ys []float64) (slope, intercept float64) {
	n := float64(len(ys))
	if len(ys) == 1 {
		return 0, ys[0]
	}
	var sx, sy, sxx, sxy float64
	for i, y := range ys {
		x := float64(i)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	den := n*sxx - sx*sx
	if den == 0 {
		return 0, sy / n
	}
	slope = (n*sxy - sx*sy) / den
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

// MovingAverage averages the last window entries of history.
// window <= 0 or larger than the history means the whole history.
func MovingAverage(history []Totals, window int) Projection {
	if window <= 0 || window > len(history) {
		window = len(history)
	}
	p := Projection{Method: MethodMovingAverage, Window: window, Note: ProjectionNote}
	if window == 0 {
		return p
	}
	var sum Totals
	for _, h := range history[len(history)-window:] {
		sum = sum.Add(h)
	}
	p.Next = sum.Scale(1 / float64(window))
	return p
}
