// Package events decouples the services from what happens to the learning
// events they produce.
//
// Services hand each domain.LearningEvent to an EventEmitter once the
// change it describes has been committed. Handlers registered on the
// emitter decide what to do with it; the only one shipped is the
// StoreRecorder, which appends the event to the learning_events table.
// A failing handler never fails the request that produced the event.
package events
