// Package matching scores catalog courses against a learner profile.
//
// Everything here is a pure function of its inputs: the caller owns the catalog index and
// the profile vector, and may call Score for different courses from many goroutines.
package matching
