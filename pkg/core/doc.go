/*
Package core implements the claim engine ledger.

It's built around the Ledger structure that owns the state of the allocation
tree, collection quotas, the randomness request, the reveal and the minted
units. Every state-changing call runs against a cached layer of the store
and is persisted only if it succeeds, so a rejected call leaves no trace.

# Callouts

Some operations call external collaborators (ownership reader, fee token,
randomness coordinator). They are never called with the ledger locked:
collection ownership is looked up before the claim is applied and the
randomness request is marked as in flight, made, and then stored. A
collaborator calling back into the Ledger gets an ordinary answer, other
callers don't wait for it.
*/
package core
