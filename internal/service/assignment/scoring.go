package assignment

import (
	"math"
	"sort"

	"courier-dispatch/internal/domain"
	"courier-dispatch/internal/geo"
)

// Candidate is a scored available courier.
type Candidate struct {
	CourierID    string
	Point        domain.Point
	DistanceKm   float64
	ToRestaurant int // minutes
	ToCustomer   int // minutes
	TotalETA     int
	Slack        int
	Score        float64
}

// Score is the priority of a candidate:
// 100 + bonus(slack) - distanceKm*5 - totalETA*2, floored at 0, where
// bonus is min(slack*10, 50) for positive slack and -|slack|*20 otherwise.
func Score(slack int, distanceKm float64, totalETA int) float64 {
	var bonus float64
	if slack > 0 {
		bonus = math.Min(float64(slack)*10, 50)
	} else {
		bonus = -math.Abs(float64(slack)) * 20
	}
	s := 100 + bonus - distanceKm*5 - float64(totalETA)*2
	if s < 0 {
		return 0
	}
	return s
}

// Evaluate scores courier c for req. Each leg is rounded up separately with
// the geo.MinETAMinutes floor.
func Evaluate(est geo.Estimator, req domain.AssignmentRequest, c domain.NearbyCourier) Candidate {
	toRestaurant := geo.Minutes(est.EstimateTravelTime(c.Point, req.Restaurant))
	toCustomer := geo.Minutes(est.EstimateTravelTime(req.Restaurant, req.Customer))
	total := toRestaurant + toCustomer
	slack := req.PreparationTime - toRestaurant
	dist := geo.Distance(c.Point, req.Restaurant)
	return Candidate{
		CourierID:    c.CourierID,
		Point:        c.Point,
		DistanceKm:   dist,
		ToRestaurant: toRestaurant,
		ToCustomer:   toCustomer,
		TotalETA:     total,
		Slack:        slack,
		Score:        Score(slack, dist, total),
	}
}

// Rank orders candidates by descending score, then ascending distance, then
// courier id.
func Rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.DistanceKm != b.DistanceKm {
			return a.DistanceKm < b.DistanceKm
		}
		return a.CourierID < b.CourierID
	})
}
