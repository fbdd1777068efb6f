// Package quiz defines the multiple-choice question produced for a word,
// its validation rules, and the evaluation of a submitted answer.
package quiz
