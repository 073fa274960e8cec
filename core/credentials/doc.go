// Package credentials loads backend credentials produced by the external
// OAuth tooling.
//
// Tokens live in "<dir>/<backend>_tokens.json" with the fields
// access_token, account_id (retail), shop_id (ecom) and expires_at. The
// package never writes or refreshes them. Configured tokens take
// precedence over the files.
package credentials
