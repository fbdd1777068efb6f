// Package session coordinates one learner's quiz: it owns the word pool,
// the per-round rotation, the quiz and image caches and the phase machine
// IDLE -> QUIZ -> RESULT -> IDLE.
//
// Advance draws a word and resolves its quiz record and illustration. The
// text branch is mandatory: if it fails the call fails and the word stays
// eligible. The image branch is optional: it runs under a short deadline
// and any failure just leaves the question without a picture.
package session
