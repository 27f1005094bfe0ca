// Package cryptofund computes how to split some capital across a basket of crypto
// assets, given a maximum weight per asset.
//
// The user describes the basket as a list of rows (ticker, market cap, price).
// Rows that only have a ticker are completed by an Enricher: the price comes from
// an exchange, the ticker is resolved to a stable coin id, and the market cap is
// fetched for that id. A Session then validates the rows and submits them to an
// Allocator, usually the allocation service in package allocator.
//
// Resolution and enrichment are best effort: they never abort a calculation, a
// row that cannot be enriched is simply left as typed.
package cryptofund
