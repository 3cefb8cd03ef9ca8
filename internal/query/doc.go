// Package query models one interaction cycle of the query page.
//
// A cycle is a pure function of the current control values and the action
// that triggered it: Panel.Bind turns raw values into an immutable Input,
// Decide picks the outbound request (or none), Submit performs at most one
// call through a Generator, and Render turns the Outcome into a View.
// Nothing is retained between cycles.
package query
