// Package cartex extracts product attributes (title, price, image) from
// arbitrary e-commerce pages that follow no common schema. Many independent
// strategies propose candidate values; prices are normalized, corrected for
// common misparses, and reconciled by majority vote behind a sanity gate.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, rod/).
package cartex
