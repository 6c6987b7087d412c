// Package core holds the client session, its configuration and the
// confirmation engine that drives setup, payment, token and source calls.
// Page concerns (elements, documents, modal challenges) live in sibling
// packages and reach core only through ValueSource and ChallengePresenter.
package core
