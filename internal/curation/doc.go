// Package curation derives the home-page carousels and the staff-pick admin
// view from a catalog snapshot and a user profile.
//
// Every function here is pure: results are views that share the input
// *models.Movie pointers, nothing is cached between calls, and no record is
// ever mutated. Fetching the snapshot and writing staff-pick changes belong
// to the caller.
package curation
