// Package features derives the engineered feature vector the scoring model
// consumes from a battery's rolling-window snapshot.
package features
