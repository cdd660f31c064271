// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for paper-rec.
// The recommendation fetcher produces them, the state store persists them,
// and the agent tool hands them back to the orchestrator.
package types

// NotAvailable is the sentinel stored in a Recommendation field when the
// recommendation service omitted the value.
const NotAvailable = "N/A"

// Recommendation is the normalized record for one recommended paper. Only
// papers with a title and at least one author are turned into a
// Recommendation; every other field falls back to NotAvailable.
type Recommendation struct {
	// Title is the paper title as returned by the service.
	Title string `json:"Title" yaml:"Title"`

	// Abstract is the paper abstract, or NotAvailable.
	Abstract string `json:"Abstract" yaml:"Abstract"`

	// Year is the publication year rendered as a string, or NotAvailable.
	Year string `json:"Year" yaml:"Year"`

	// CitationCount is the citation count rendered as a string, or NotAvailable.
	CitationCount string `json:"Citation Count" yaml:"Citation Count"`

	// URL is the Semantic Scholar page for the paper, or NotAvailable.
	URL string `json:"URL" yaml:"URL"`
}

// Papers maps a Semantic Scholar paper ID to its normalized record. It is
// the value stored in the "papers" slot of conversation state.
type Papers map[string]Recommendation

// Message is a tool response addressed to the conversation turn that
// issued CallID.
type Message struct {
	CallID  string `json:"tool_call_id" yaml:"tool_call_id"`
	Content string `json:"content" yaml:"content"`
}
