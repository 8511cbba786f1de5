// Package guard suppresses duplicate fetches.
//
// A Guard remembers the last key it let through and when. A repeat of that
// key inside the window is suppressed; any other key, or the same key after
// the window, proceeds and becomes the remembered record. It is not a rate
// limiter: unrelated keys are never throttled.
//
// A Sequencer orders responses of one request stream so a slow, older
// response is never applied over a newer one.
package guard
