// Package dispatch implements the courier dispatch simulation.
//
// An Engine owns a fixed courier pool and processes a time-ordered stream of
// orders one at a time:
//  1. couriers whose return minute has passed leave the in-flight Registry and
//     join the tail of the availability Queue
//  2. the Queue is scanned front to back and the first courier whose
//     eligibility rules accept the order takes it (first fit, not best fit)
//  3. the courier's mileage is charged, the flat fee is added to the daily
//     statistics and the courier is registered in flight until the order time
//     plus its rounded round-trip duration
//  4. when no courier qualifies the order is counted as missed and dropped
//
// BeginDay closes the previous day, resets statistics and mileage, forgets
// couriers in flight and refills the queue in pool order. EndDay closes the
// last day of a run.
//
// Couriers are stored once in the engine; the Queue and Registry hold
// CourierID indices so a courier is owned by exactly one of them at a time.
//
// The engine is single threaded. Outcomes are reported through an optional
// metrics.MetricsSink and an optional event bus, and counted in package-level
// Prometheus collectors.
package dispatch
