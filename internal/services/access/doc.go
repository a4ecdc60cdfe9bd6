// Package access decides whether a sender may message a recipient, from the
// recipient's allow and deny lists.
//
// The rule is three-step and short-circuiting: a deny-list hit blocks
// unconditionally (deny beats allow); otherwise a non-empty allow list is
// "active" and only its members pass; an empty allow list means
// default-allow. Lists are owned and edited by the recipient only.
package access
