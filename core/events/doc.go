// Package events defines the dispatch events emitted on the event bus.
//
// Available event types:
//   - OrderAssigned: an order was given to a courier
//   - OrderMissed: no courier could take an order
//   - DayClosed: a simulated day ended and its summary is final
package events
