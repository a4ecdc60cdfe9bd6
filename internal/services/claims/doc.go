// Package claims resolves an AID's role assignments into permission claims
// and answers claim-inclusion queries.
//
// The schema is the classic role/permission many-to-many; what a caller
// receives is the flattened, dereferenced claim set. A claim's scope is a
// closed type (unrestricted, or an explicit id set), so a single permission
// key like "message:group" can carry per-resource scoping without
// per-resource role rows. An AID with no roles resolves to the empty set,
// which callers treat as the lowest-privilege default.
package claims
