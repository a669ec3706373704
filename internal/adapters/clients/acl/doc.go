// Package acl translates between the remote feed's records and domain quotes.
//
// Nothing outside this package sees the feed's JSON shape. Every failure the
// feed can produce is mapped to one of the domain errors:
//   - 404 → [domain.ErrNotFound]
//   - 400/422 → [domain.ErrValidation]
//   - any other status, transport error, open circuit → [domain.ErrUnavailable]
//
// [FeedClient] embeds [Upstream] and uses [TranslateAll] so that records
// without a title are dropped instead of failing the whole fetch.
package acl
