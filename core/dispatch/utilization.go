package dispatch

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/couriersim/core/model"
)

// Utilization summarises the daily distance of every courier in the pool.
// Mean and standard deviation are taken over the whole population.
func Utilization(pool []model.Courier) model.Utilization {
	u := model.Utilization{Couriers: len(pool)}
	if len(pool) == 0 {
		return u
	}
	dist := make([]float64, len(pool))
	for i, c := range pool {
		dist[i] = c.Distance()
		if dist[i] > 0 {
			u.ActiveCouriers++
		}
	}
	u.TotalDistance = floats.Sum(dist)
	u.MaxDistance = floats.Max(dist)
	u.MeanDistance, u.StdDevDistance = stat.PopMeanStdDev(dist, nil)
	return u
}
