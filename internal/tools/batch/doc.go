// Package batch runs one read operation over several ids, for tools that
// accept either a single id or an array of ids.
//
// Items run concurrently with a bounded fan-out. A failed item does not fail
// the batch; it is reported in its own result.
package batch
